package rule

import (
	"cmp"
	"slices"

	"github.com/palemoky/cartas-online/internal/game/card"
)

// compareCards 先按强度，再按花色排序，保证结果稳定
func compareCards(a, b card.Card) int {
	if c := cmp.Compare(Rank(a), Rank(b)); c != 0 {
		return c
	}
	return cmp.Compare(a.Suit, b.Suit)
}

// SortByRank 返回按强度从小到大排序后的副本
func SortByRank(cards []card.Card) []card.Card {
	sorted := slices.Clone(cards)
	slices.SortFunc(sorted, compareCards)
	return sorted
}

// Lowest 返回手牌中最弱的 n 张（不足 n 张时返回全部）
func Lowest(hand []card.Card, n int) []card.Card {
	sorted := SortByRank(hand)
	return sorted[:min(n, len(sorted))]
}

// Highest 返回手牌中最强的 n 张，强者在前
func Highest(hand []card.Card, n int) []card.Card {
	sorted := SortByRank(hand)
	slices.Reverse(sorted)
	return sorted[:min(n, len(sorted))]
}

// FindSmallestBeatingCards 找到能应对当前回合的最小牌组
// 如果找不到，返回 nil
func FindSmallestBeatingCards(hand []card.Card, comboSize int, top card.Value) []card.Card {
	topRank := ValueRank(top)
	sorted := SortByRank(hand)

	for i, c := range sorted {
		if ValueRank(c.Value) < topRank || (i > 0 && sorted[i-1].Value == c.Value) {
			continue
		}
		group := make([]card.Card, 0, comboSize)
		for _, other := range sorted[i:] {
			if other.Value == c.Value {
				group = append(group, other)
			}
		}
		if len(group) >= comboSize {
			return group[:comboSize]
		}
	}

	// 最后才用金币 2
	for _, c := range sorted {
		if IsTopTwo(c) {
			return []card.Card{c}
		}
	}
	return nil
}
