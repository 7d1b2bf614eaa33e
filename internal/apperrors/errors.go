package apperrors

import (
	"errors"
	"fmt"

	"github.com/palemoky/cartas-online/internal/protocol"
)

// Kind 错误大类
type Kind int

const (
	KindNotFound Kind = iota
	KindInvalidState
	KindRuleViolation
	KindPrecondition
	KindInvalidRequest
	KindInternal
)

// GameError 游戏错误：被拒绝的操作不会修改房间
type GameError struct {
	Code     int
	Category string
	Message  string
}

func (e *GameError) Error() string {
	return e.Message
}

// Is 按错误码比较，便于 errors.Is 匹配带自定义消息的副本
func (e *GameError) Is(target error) bool {
	var t *GameError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// Kind 返回错误大类
func (e *GameError) Kind() Kind {
	switch e.Category {
	case protocol.CategoryNotFound:
		return KindNotFound
	case protocol.CategoryInvalidState:
		return KindInvalidState
	case protocol.CategoryPreconditionFailed:
		return KindPrecondition
	case protocol.CategoryInvalidRequest:
		return KindInvalidRequest
	case protocol.CategoryInternal:
		return KindInternal
	default:
		return KindRuleViolation
	}
}

// WithMessage 返回一个消息不同、错误码相同的副本
func (e *GameError) WithMessage(format string, args ...any) *GameError {
	return &GameError{Code: e.Code, Category: e.Category, Message: fmt.Sprintf(format, args...)}
}

func newError(code int, category string) *GameError {
	return &GameError{Code: code, Category: category, Message: protocol.ErrorMessages[code]}
}

// 预定义错误
var (
	ErrRoomNotFound   = newError(protocol.ErrCodeRoomNotFound, protocol.CategoryNotFound)
	ErrNotInRoom      = newError(protocol.ErrCodePlayerNotFound, protocol.CategoryNotFound)
	ErrGameStarted    = newError(protocol.ErrCodeGameStarted, protocol.CategoryInvalidState)
	ErrGameNotStart   = newError(protocol.ErrCodeGameNotStart, protocol.CategoryInvalidState)
	ErrNotYourTurn    = newError(protocol.ErrCodeNotYourTurn, protocol.CategoryInvalidTurn)
	ErrTurnsNotStart  = newError(protocol.ErrCodeTurnsNotStart, protocol.CategoryInvalidTurn)
	ErrMustPlay       = newError(protocol.ErrCodeMustPlay, protocol.CategoryInvalidTurn)
	ErrInvalidCards   = newError(protocol.ErrCodeInvalidCards, protocol.CategoryInvalidCombo)
	ErrCannotBeat     = newError(protocol.ErrCodeCannotBeat, protocol.CategoryInvalidRank)
	ErrCardNotHeld    = newError(protocol.ErrCodeCardNotHeld, protocol.CategoryCardNotHeld)
	ErrInvalidOpening = newError(protocol.ErrCodeInvalidOpening, protocol.CategoryInvalidOpening)
	ErrNotEnoughPlay  = newError(protocol.ErrCodeNotEnoughPlay, protocol.CategoryPreconditionFailed)
	ErrNotEnoughCards = newError(protocol.ErrCodeNotEnoughCards, protocol.CategoryPreconditionFailed)
	ErrInvalidRequest = newError(protocol.ErrCodeInvalidRequest, protocol.CategoryInvalidRequest)
	ErrInternal       = newError(protocol.ErrCodeInternal, protocol.CategoryInternal)
)

// AsGameError 提取 GameError；其他错误一律视为内部错误
func AsGameError(err error) *GameError {
	var gameErr *GameError
	if errors.As(err, &gameErr) {
		return gameErr
	}
	return ErrInternal
}
