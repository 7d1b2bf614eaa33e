package card

import "slices"

// CountValues 统计手牌中各牌面值的数量
func CountValues(hand []Card) map[Value]int {
	counts := make(map[Value]int)
	for _, c := range hand {
		counts[c.Value]++
	}
	return counts
}

// ContainsAll 检查 cards 中的每一张牌是否都在手牌中（按张数计）
func ContainsAll(hand, cards []Card) bool {
	available := make(map[Card]int, len(hand))
	for _, c := range hand {
		available[c]++
	}
	for _, c := range cards {
		if available[c] == 0 {
			return false
		}
		available[c]--
	}
	return true
}

// Contains 检查手牌中是否有指定的牌
func Contains(hand []Card, c Card) bool {
	return slices.Contains(hand, c)
}

// RemoveCards 从手牌中移除指定的牌，每张只移除一次
func RemoveCards(hand, toRemove []Card) []Card {
	if len(toRemove) == 0 {
		return slices.Clone(hand)
	}

	removeCounts := make(map[Card]int, len(toRemove))
	for _, c := range toRemove {
		removeCounts[c]++
	}

	result := make([]Card, 0, len(hand))
	for _, c := range hand {
		if removeCounts[c] > 0 {
			removeCounts[c]--
			continue
		}
		result = append(result, c)
	}
	return result
}

// AllSameValue 检查所有牌是否同一牌面值
func AllSameValue(cards []Card) bool {
	if len(cards) == 0 {
		return false
	}
	for _, c := range cards[1:] {
		if c.Value != cards[0].Value {
			return false
		}
	}
	return true
}
