package protocol

// 错误码
const (
	ErrCodeUnknown        = 1000
	ErrCodeInvalidRequest = 1001
	ErrCodeRateLimit      = 1002 // 速率限制
	ErrCodeInternal       = 1003 // 存储等内部故障
	ErrCodeUnavailable    = 1004 // 功能未启用
	ErrCodeMaintenance    = 1005 // 服务器维护中

	ErrCodeRoomNotFound   = 2001
	ErrCodePlayerNotFound = 2002
	ErrCodeGameStarted    = 2004 // 游戏已开始
	ErrCodeNotEnoughPlay  = 2005 // 玩家人数不足
	ErrCodeNotEnoughCards = 2006 // 牌不够发

	ErrCodeGameNotStart   = 3001
	ErrCodeNotYourTurn    = 3002
	ErrCodeInvalidCards   = 3003 // 组合不合法或张数不对
	ErrCodeCannotBeat     = 3004
	ErrCodeMustPlay       = 3005 // 领出者不能过
	ErrCodeCardNotHeld    = 3006
	ErrCodeInvalidOpening = 3007 // 首出必须包含权杖 3
	ErrCodeTurnsNotStart  = 3008
)

// 稳定的错误类别，客户端据此判断
const (
	CategoryNotFound           = "not-found"
	CategoryInvalidState       = "invalid-state"
	CategoryInvalidTurn        = "invalid-turn"
	CategoryInvalidCombo       = "invalid-combo"
	CategoryInvalidRank        = "invalid-rank"
	CategoryInvalidOpening     = "invalid-opening"
	CategoryCardNotHeld        = "card-not-held"
	CategoryPreconditionFailed = "precondition-failed"
	CategoryInvalidRequest     = "invalid-request"
	CategoryInternal           = "internal"
)

// 只在 HTTP 层出现的类别
const (
	CategoryRateLimited = "rate-limited"
	CategoryUnavailable = "unavailable"
	CategoryForbidden   = "forbidden"
)

// ErrorMessages 错误码对应的默认消息
var ErrorMessages = map[int]string{
	ErrCodeUnknown:        "未知错误",
	ErrCodeInvalidRequest: "无效的请求",
	ErrCodeRateLimit:      "请求过于频繁",
	ErrCodeInternal:       "服务器内部错误",
	ErrCodeUnavailable:    "该功能未启用",
	ErrCodeMaintenance:    "服务器维护中，暂停创建房间",
	ErrCodeRoomNotFound:   "房间不存在",
	ErrCodePlayerNotFound: "玩家不在房间中",
	ErrCodeGameStarted:    "游戏已开始",
	ErrCodeNotEnoughPlay:  "玩家人数不足",
	ErrCodeNotEnoughCards: "没有足够的牌可发",
	ErrCodeGameNotStart:   "游戏尚未开始",
	ErrCodeNotYourTurn:    "还没轮到您",
	ErrCodeInvalidCards:   "无效的牌型",
	ErrCodeCannotBeat:     "必须出相同或更大的牌",
	ErrCodeMustPlay:       "您必须出牌",
	ErrCodeCardNotHeld:    "有牌不在您的手中",
	ErrCodeInvalidOpening: "第一手牌必须包含权杖 3",
	ErrCodeTurnsNotStart:  "还没有开始轮流出牌",
}
