package rule

import (
	"errors"
	"slices"

	"github.com/palemoky/cartas-online/internal/game/card"
)

// TopSuit 王牌花色，该花色的 2 是全场最大的牌
const TopSuit = card.Oros

const (
	RankInvalid  = -1  // 未知牌
	RankPlainTwo = 90  // 非金币花色的 2
	RankTopTwo   = 100 // 金币 2
)

// valueOrder 从弱到强的牌面值顺序，下标即基础强度
var valueOrder = []card.Value{3, 4, 5, 6, 7, 10, 11, 12, 1, 2}

// ValueRank 返回不考虑花色时牌面值的强度，2 一律按普通 2 计算
func ValueRank(v card.Value) int {
	if v == 2 {
		return RankPlainTwo
	}
	i := slices.Index(valueOrder, v)
	if i == -1 {
		return RankInvalid
	}
	return i
}

// Rank 返回一张牌的强度：3 < 4 < ... < 12 < 1 < 2 < 金币 2
func Rank(c card.Card) int {
	if IsTopTwo(c) {
		return RankTopTwo
	}
	if !c.IsValid() {
		return RankInvalid
	}
	return ValueRank(c.Value)
}

// IsTopTwo 判断是否为金币 2
func IsTopTwo(c card.Card) bool {
	return c.Suit == TopSuit && c.Value == 2
}

// PlayType 定义出牌组合类型
type PlayType int

const (
	Invalid PlayType = iota
	Single           // 单张
	Pair             // 对子
	Trio             // 三张
	Quad             // 四张
	TopTwo           // 金币 2（单独出）
)

// playTypeNames 组合名称映射表
var playTypeNames = map[PlayType]string{
	Single: "single",
	Pair:   "pair",
	Trio:   "trio",
	Quad:   "quad",
	TopTwo: "top_two",
}

func (t PlayType) String() string {
	if name, ok := playTypeNames[t]; ok {
		return name
	}
	return "invalid"
}

// MaxComboSize 同一牌面值最多四张
const MaxComboSize = 4

var (
	ErrEmptyPlay     = errors.New("没有选择要出的牌")
	ErrMixedValues   = errors.New("组合中的牌必须点数相同")
	ErrComboTooLarge = errors.New("一次最多出四张牌")
	ErrUnknownCard   = errors.New("无法识别的牌")
	ErrDuplicateCard = errors.New("同一张牌不能出两次")
)

// ParsedPlay 解析后的出牌，用于比较
type ParsedPlay struct {
	Type  PlayType
	Value card.Value  // 组合的牌面值
	Size  int         // 张数
	Cards []card.Card // 这手牌包含的卡牌
}

// IsSpecial 是否为单独打出的金币 2
func (p ParsedPlay) IsSpecial() bool {
	return p.Type == TopTwo
}

// Rank 组合的强度（金币 2 为最高）
func (p ParsedPlay) Rank() int {
	if p.IsSpecial() {
		return RankTopTwo
	}
	return ValueRank(p.Value)
}

// ParsePlay 解析一手牌：单独的金币 2，或 1-4 张同点数的牌
func ParsePlay(cards []card.Card) (ParsedPlay, error) {
	if len(cards) == 0 {
		return ParsedPlay{}, ErrEmptyPlay
	}
	for i, c := range cards {
		if !c.IsValid() {
			return ParsedPlay{}, ErrUnknownCard
		}
		if slices.Contains(cards[:i], c) {
			return ParsedPlay{}, ErrDuplicateCard
		}
	}

	if len(cards) == 1 && IsTopTwo(cards[0]) {
		return ParsedPlay{Type: TopTwo, Value: 2, Size: 1, Cards: cards}, nil
	}
	if !card.AllSameValue(cards) {
		return ParsedPlay{}, ErrMixedValues
	}
	if len(cards) > MaxComboSize {
		return ParsedPlay{}, ErrComboTooLarge
	}

	return ParsedPlay{
		Type:  PlayType(len(cards)),
		Value: cards[0].Value,
		Size:  len(cards),
		Cards: cards,
	}, nil
}
