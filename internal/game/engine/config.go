package engine

import (
	"github.com/palemoky/cartas-online/internal/config"
	"github.com/palemoky/cartas-online/internal/game/room"
)

// SettingsFrom 由游戏配置生成引擎配置，未设置的规则开关沿用玩法默认值
func SettingsFrom(cfg config.GameConfig) Settings {
	return Settings{
		MinPlayers:     cfg.MinPlayers,
		CardsPerPlayer: cfg.CardsPerPlayer,
		Rules: map[room.GameType]Rules{
			room.GameTypeA: mergeRules(DefaultRules(room.GameTypeA), cfg.RulesetA),
			room.GameTypeB: mergeRules(DefaultRules(room.GameTypeB), cfg.RulesetB),
		},
	}
}

func mergeRules(rules Rules, rs config.RulesetConfig) Rules {
	set := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	set(&rules.OpeningThreeOfBastos, rs.OpeningThreeOfBastos)
	set(&rules.NoBeatShortCircuit, rs.NoBeatShortCircuit)
	set(&rules.AutoPass, rs.AutoPass)
	set(&rules.DealAll, rs.DealAll)
	set(&rules.RoleExchange, rs.RoleExchange)
	if rs.MaxComboSize > 0 {
		rules.MaxComboSize = rs.MaxComboSize
	}
	return rules
}
