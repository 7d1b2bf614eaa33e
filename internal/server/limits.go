package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"golang.org/x/time/rate"

	"github.com/palemoky/cartas-online/internal/config"
	"github.com/palemoky/cartas-online/internal/game/room"
	"github.com/palemoky/cartas-online/internal/server/handler"
)

// seatActions 按“房间 + 玩家”限流的接口，客户端轮询 state 也在其中
var seatActions = map[string]bool{
	"play":  true,
	"pass":  true,
	"state": true,
	"hint":  true,
}

// requestLimits 三层限流：每个 IP 的总量、每个 IP 的建房、每个座位的对局操作
type requestLimits struct {
	perIP  *Throttle
	create *Throttle
	seat   *Throttle
}

func newRequestLimits(cfg config.RateLimitConfig) *requestLimits {
	return &requestLimits{
		perIP:  NewThrottle("ip", rate.Limit(float64(cfg.MaxPerMinute)/60), cfg.MaxPerSecond, cfg.BanDurationTime()),
		create: NewThrottle("create", rate.Limit(float64(cfg.CreatePerMinute)/60), cfg.CreatePerMinute, 0),
		seat:   NewThrottle("seat", rate.Limit(cfg.SeatPerSecond), cfg.SeatPerSecond, 0),
	}
}

func (l *requestLimits) all() []*Throttle {
	return []*Throttle{l.perIP, l.create, l.seat}
}

// scoped 建房按 IP 限流，对局接口按座位限流，其余请求放行
func (l *requestLimits) scoped(r *http.Request, ip string) bool {
	if r.Method == http.MethodPost && strings.TrimSuffix(r.URL.Path, "/") == "/api/rooms" {
		return l.create.Allow(ip)
	}
	code, action, ok := roomAction(r.URL.Path)
	if !ok || !seatActions[action] {
		return true
	}
	return l.seat.Allow(seatKey(r, code, ip))
}

// roomAction 解析 /api/rooms/{code}/{action}
func roomAction(path string) (code, action string, ok bool) {
	rest, found := strings.CutPrefix(path, "/api/rooms/")
	if !found {
		return "", "", false
	}
	code, action, found = strings.Cut(rest, "/")
	if !found || code == "" || action == "" || strings.Contains(action, "/") {
		return "", "", false
	}
	return room.NormalizeCode(code), action, true
}

// seatKey 带 playerId 时按玩家计数，否则退回到房间内的 IP
func seatKey(r *http.Request, code, ip string) string {
	if id := requestPlayerID(r); id != "" {
		return code + "/" + id
	}
	return code + "@" + ip
}

// requestPlayerID 从查询参数或 JSON 请求体读取 playerId，读过的请求体原样放回
func requestPlayerID(r *http.Request) string {
	if id := r.URL.Query().Get("playerId"); id != "" {
		return id
	}
	if r.Method != http.MethodPost || r.Body == nil {
		return ""
	}

	head, err := io.ReadAll(io.LimitReader(r.Body, handler.MaxBodyBytes))
	r.Body = readCloser{Reader: io.MultiReader(bytes.NewReader(head), r.Body), Closer: r.Body}
	if err != nil {
		return ""
	}

	var body struct {
		PlayerID string `json:"playerId"`
	}
	if json.Unmarshal(head, &body) != nil {
		return ""
	}
	return body.PlayerID
}

type readCloser struct {
	io.Reader
	io.Closer
}
