package card

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
)

// Suit 定义花色（西班牙牌）
type Suit int

// Value 定义牌面值
type Value int

// Card 定义一张牌
type Card struct {
	Suit  Suit  `json:"suit"`
	Value Value `json:"value"`
}

// 零值不是合法花色，缺少 suit 字段的牌会被判为无效
const (
	Oros    Suit = iota + 1 // 金币
	Copas               // 圣杯
	Espadas             // 宝剑
	Bastos              // 权杖
)

// Suits 按发牌顺序排列的全部花色
var Suits = []Suit{Oros, Copas, Espadas, Bastos}

// suitNames 花色名称映射表
var suitNames = map[Suit]string{
	Oros:    "oros",
	Copas:   "copas",
	Espadas: "espadas",
	Bastos:  "bastos",
}

func (s Suit) String() string {
	if name, ok := suitNames[s]; ok {
		return name
	}
	return "suit(" + strconv.Itoa(int(s)) + ")"
}

// ParseSuit 解析花色名称（不区分大小写）
func ParseSuit(name string) (Suit, error) {
	lower := strings.ToLower(strings.TrimSpace(name))
	for s, n := range suitNames {
		if n == lower {
			return s, nil
		}
	}
	return 0, fmt.Errorf("无法识别的花色: %q", name)
}

// MarshalText 以花色名称序列化
func (s Suit) MarshalText() ([]byte, error) {
	name, ok := suitNames[s]
	if !ok {
		return nil, fmt.Errorf("无效的花色: %d", int(s))
	}
	return []byte(name), nil
}

// UnmarshalText 从花色名称反序列化
func (s *Suit) UnmarshalText(text []byte) error {
	parsed, err := ParseSuit(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Values 一副西班牙牌中出现的全部牌面值（没有 8 和 9）
var Values = []Value{1, 2, 3, 4, 5, 6, 7, 10, 11, 12}

// IsValid 判断牌面值是否属于 40 张牌
func (v Value) IsValid() bool {
	for _, known := range Values {
		if v == known {
			return true
		}
	}
	return false
}

func (v Value) String() string {
	return strconv.Itoa(int(v))
}

// IsValid 判断是否为一张合法的牌
func (c Card) IsValid() bool {
	_, ok := suitNames[c.Suit]
	return ok && c.Value.IsValid()
}

func (c Card) String() string {
	return c.Value.String() + " de " + c.Suit.String()
}

// DeckSize 一副牌的张数
const DeckSize = 40

// Deck 定义一副牌
type Deck []Card

// NewDeck 创建一副按花色排列的 40 张牌
func NewDeck() Deck {
	deck := make(Deck, 0, DeckSize)
	for _, s := range Suits {
		for _, v := range Values {
			deck = append(deck, Card{Suit: s, Value: v})
		}
	}
	return deck
}

func (d Deck) Shuffle() {
	rand.Shuffle(len(d), func(i, j int) {
		d[i], d[j] = d[j], d[i]
	})
}

// NewShuffledDeck 创建并洗好一副牌
func NewShuffledDeck() Deck {
	deck := NewDeck()
	deck.Shuffle()
	return deck
}
