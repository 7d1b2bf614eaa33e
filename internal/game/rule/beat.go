package rule

import "github.com/palemoky/cartas-online/internal/game/card"

// MeetsTop 检查出牌是否不低于桌面上的点数（金币 2 总是可以）
func MeetsTop(play ParsedPlay, top card.Value) bool {
	return play.Rank() >= ValueRank(top)
}

// HandAnalysis 对一手牌进行预分析
type HandAnalysis struct {
	counts    map[card.Value]int
	hasTopTwo bool
}

// AnalyzeHand 统计手牌中每个点数的张数
func AnalyzeHand(hand []card.Card) HandAnalysis {
	analysis := HandAnalysis{counts: card.CountValues(hand)}
	for _, c := range hand {
		if IsTopTwo(c) {
			analysis.hasTopTwo = true
			break
		}
	}
	return analysis
}

// CanBeat 判断这手牌能否压住当前回合：
// 持有金币 2，或者能凑出 comboSize 张点数不低于 top 的同点数牌
func (a HandAnalysis) CanBeat(comboSize int, top card.Value) bool {
	if a.hasTopTwo {
		return true
	}
	topRank := ValueRank(top)
	for v, count := range a.counts {
		if count >= comboSize && ValueRank(v) >= topRank {
			return true
		}
	}
	return false
}

// CanBeat 判断手牌能否应对当前回合
func CanBeat(hand []card.Card, comboSize int, top card.Value) bool {
	return AnalyzeHand(hand).CanBeat(comboSize, top)
}
