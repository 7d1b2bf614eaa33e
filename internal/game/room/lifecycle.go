package room

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/palemoky/cartas-online/internal/apperrors"
)

// GenerateCode 生成房间号，exists 用于检查冲突
func GenerateCode(exists func(code string) bool) string {
	for {
		code := make([]byte, roomCodeLength)
		for i := range code {
			code[i] = roomCodeChars[rand.IntN(len(roomCodeChars))]
		}
		codeStr := string(code)
		if exists == nil || !exists(codeStr) {
			return codeStr
		}
	}
}

// UniqueName 在房间内解析一个不重复的名字：
// 名字未被占用时原样返回，否则在末尾追加最大序号 +1（Ana, Ana2, Ana3…）
func UniqueName(desired string, existing []string, fallback string) string {
	base := strings.TrimSpace(desired)
	if base == "" {
		base = fallback
	}

	re := regexp.MustCompile(`^` + regexp.QuoteMeta(base) + `(\d+)?$`)
	maxSuffix := 0
	hasExact := false
	for _, name := range existing {
		m := re.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		if m[1] == "" {
			hasExact = true
			maxSuffix = max(maxSuffix, 1)
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil {
			maxSuffix = max(maxSuffix, n)
		}
	}
	if !hasExact {
		return base
	}
	return fmt.Sprintf("%s%d", base, maxSuffix+1)
}

// AddPlayer 玩家加入房间，只允许在等待状态下加入
func (r *Room) AddPlayer(id, desiredName string, now time.Time) (*Player, error) {
	if !r.Joinable() {
		return nil, apperrors.ErrGameStarted
	}

	names := make([]string, 0, len(r.Players))
	for _, p := range r.Players {
		names = append(names, p.Name)
	}
	fallback := fmt.Sprintf("Jugador %d", len(r.Players)+1)

	player := &Player{
		ID:       id,
		Name:     UniqueName(desiredName, names, fallback),
		JoinedAt: now,
	}
	r.Players = append(r.Players, player)
	r.UpdatedAt = now
	return player, nil
}

// RemovePlayer 玩家离开房间；房主离开时由下一个座位的玩家接任
func (r *Room) RemovePlayer(id string, now time.Time) error {
	if !r.Joinable() {
		return apperrors.ErrGameStarted
	}
	idx := r.PlayerIndex(id)
	if idx == -1 {
		return apperrors.ErrNotInRoom
	}

	r.Players = append(r.Players[:idx], r.Players[idx+1:]...)
	if r.HostID == id {
		r.HostID = ""
		if len(r.Players) > 0 {
			r.HostID = r.Players[0].ID
		}
	}
	r.UpdatedAt = now
	return nil
}

// IsEmpty 房间里是否已经没有玩家
func (r *Room) IsEmpty() bool {
	return len(r.Players) == 0
}

// ResetToWaiting 结束对局：回到等待状态，清空手牌与所有牌局状态
func (r *Room) ResetToWaiting(now time.Time) {
	for _, p := range r.Players {
		p.Hand = nil
	}
	r.Status = StatusWaiting
	r.DiscardPile = nil
	r.ClearedPile = nil
	r.CurrentDeck = nil
	r.TurnsStarted = false
	r.CurrentTurnPlayerID = ""
	r.RoundNumber = 0
	r.RoundActivePlayerIDs = nil
	r.RoundAwaitingLead = false
	r.RoundComboSize = 1
	r.RoundTopValue = nil
	r.LastTopPlayedBy = ""
	r.FinishedOrder = nil
	r.Roles = map[string]Role{}
	r.UpdatedAt = now
}
