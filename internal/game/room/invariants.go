package room

import (
	"fmt"
	"slices"

	"github.com/palemoky/cartas-online/internal/game/card"
)

// CheckIntegrity 校验一手牌进行中的房间不变量：
// 牌守恒，活跃玩家都未出完，当前玩家在活跃集合中，组合张数在 [1,4]
func CheckIntegrity(r *Room) error {
	if r.Status == StatusWaiting {
		return nil
	}

	seen := make(map[card.Card]int, card.DeckSize)
	total := 0
	collect := func(cards []card.Card) {
		for _, c := range cards {
			seen[c]++
			total++
		}
	}
	for _, p := range r.Players {
		collect(p.Hand)
	}
	collect(r.DiscardPile)
	collect(r.ClearedPile)
	collect(r.CurrentDeck)

	if total != card.DeckSize {
		return fmt.Errorf("牌数不守恒: %d 张", total)
	}
	for _, c := range card.NewDeck() {
		if seen[c] != 1 {
			return fmt.Errorf("牌 %v 出现 %d 次", c, seen[c])
		}
	}

	for i, id := range r.FinishedOrder {
		if slices.Contains(r.FinishedOrder[:i], id) {
			return fmt.Errorf("玩家 %s 在出完顺序中重复", id)
		}
		// 一手牌结束时最后一名是被自动补上的，手里可能还有牌
		if r.Status == StatusFinished && i == len(r.FinishedOrder)-1 {
			continue
		}
		if p := r.Player(id); p != nil && len(p.Hand) > 0 {
			return fmt.Errorf("已出完的玩家 %s 仍有 %d 张牌", id, len(p.Hand))
		}
	}

	for _, id := range r.RoundActivePlayerIDs {
		if r.IsFinished(id) {
			return fmt.Errorf("已出完的玩家 %s 仍在本轮活跃列表中", id)
		}
	}

	if r.CurrentTurnPlayerID != "" && !slices.Contains(r.RoundActivePlayerIDs, r.CurrentTurnPlayerID) {
		return fmt.Errorf("当前玩家 %s 不在本轮活跃列表中", r.CurrentTurnPlayerID)
	}

	if r.RoundComboSize < 1 || r.RoundComboSize > 4 {
		return fmt.Errorf("组合张数越界: %d", r.RoundComboSize)
	}

	return nil
}
