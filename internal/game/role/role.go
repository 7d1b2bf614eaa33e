// Package role 将一手牌的出完顺序转换为身份，并计算下一手牌开始前的换牌
package role

import (
	"fmt"
	"slices"

	"github.com/palemoky/cartas-online/internal/game/card"
	"github.com/palemoky/cartas-online/internal/game/room"
	"github.com/palemoky/cartas-online/internal/game/rule"
)

// 换牌张数
const (
	PresidentExchange = 2 // 总统 <-> 屁股
	ViceExchange      = 1 // 副总统 <-> 副屁股
)

// Resolve 根据完整的出完顺序分配身份。
// 人数很少时位置会重叠，后写入的身份生效（最后一名总是 culo）。
func Resolve(order []string) map[string]room.Role {
	roles := make(map[string]room.Role, len(order))
	n := len(order)
	if n == 0 {
		return roles
	}
	roles[order[0]] = room.RolePresidente
	if n >= 2 {
		roles[order[1]] = room.RoleVicepresidente
	}
	if n >= 3 {
		roles[order[n-2]] = room.RoleViceculo
	}
	roles[order[n-1]] = room.RoleCulo
	return roles
}

// Holder 返回持有某个身份的玩家 ID
func Holder(roles map[string]room.Role, r room.Role) (string, bool) {
	for id, held := range roles {
		if held == r {
			return id, true
		}
	}
	return "", false
}

// Transfer 一次换牌：From 把 Cards 交给 To
type Transfer struct {
	From  string      `json:"from"`
	To    string      `json:"to"`
	Cards []card.Card `json:"cards"`
}

// Exchanges 计算本手牌需要执行的换牌。
// 所有要交出的牌都基于换牌前的手牌计算。
func Exchanges(r *room.Room, roles map[string]room.Role) []Transfer {
	var transfers []Transfer

	pair := func(high, low room.Role, n int) {
		highID, ok1 := Holder(roles, high)
		lowID, ok2 := Holder(roles, low)
		if !ok1 || !ok2 || highID == lowID {
			return
		}
		highP, lowP := r.Player(highID), r.Player(lowID)
		if highP == nil || lowP == nil {
			return
		}
		transfers = append(transfers,
			Transfer{From: highID, To: lowID, Cards: rule.Lowest(highP.Hand, n)},
			Transfer{From: lowID, To: highID, Cards: rule.Highest(lowP.Hand, n)},
		)
	}

	pair(room.RolePresidente, room.RoleCulo, PresidentExchange)
	pair(room.RoleVicepresidente, room.RoleViceculo, ViceExchange)
	return transfers
}

// Apply 在房间上执行换牌，返回实际执行的换牌
func Apply(r *room.Room, roles map[string]room.Role) ([]Transfer, error) {
	transfers := Exchanges(r, roles)
	for _, t := range transfers {
		from, to := r.Player(t.From), r.Player(t.To)
		if !card.ContainsAll(from.Hand, t.Cards) {
			return nil, fmt.Errorf("玩家 %s 换牌时缺少牌 %v", t.From, t.Cards)
		}
		from.Hand = card.RemoveCards(from.Hand, t.Cards)
		to.Hand = append(to.Hand, t.Cards...)
	}
	return transfers, nil
}

// CompleteOrder 判断出完顺序是否覆盖了房间里的所有玩家
func CompleteOrder(r *room.Room) bool {
	if len(r.FinishedOrder) != len(r.Players) || len(r.Players) == 0 {
		return false
	}
	for _, id := range r.FinishedOrder {
		if r.Player(id) == nil {
			return false
		}
	}
	return true
}

// Standing 排名中的一项
type Standing struct {
	PlayerID string    `json:"playerId"`
	Name     string    `json:"name"`
	Place    int       `json:"place"`
	Role     room.Role `json:"role,omitempty"`
}

// Ranking 由出完顺序生成排名；只差最后一名时自动补上。
// 顺序完整时附带身份，返回排名和身份表。
func Ranking(r *room.Room) ([]Standing, map[string]room.Role) {
	order := slices.Clone(r.FinishedOrder)
	ids := r.PlayerIDs()
	if len(ids) > 0 && len(order) == len(ids)-1 {
		for _, id := range ids {
			if !slices.Contains(order, id) {
				order = append(order, id)
				break
			}
		}
	}

	roles := map[string]room.Role{}
	if len(ids) > 0 && len(order) == len(ids) {
		roles = Resolve(order)
	}

	standings := make([]Standing, 0, len(order))
	for i, id := range order {
		name := fmt.Sprintf("Jugador %d", slices.Index(ids, id)+1)
		if p := r.Player(id); p != nil && p.Name != "" {
			name = p.Name
		}
		standings = append(standings, Standing{PlayerID: id, Name: name, Place: i + 1, Role: roles[id]})
	}
	return standings, roles
}
