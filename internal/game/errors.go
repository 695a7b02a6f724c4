package game

import (
	"errors"

	"github.com/lox/rummycircle/internal/cards"
	"github.com/lox/rummycircle/internal/meld"
)

// Rule failures. All of them leave the session unchanged.
var (
	ErrInsufficientCards = cards.ErrInsufficientCards
	ErrEmptyDeck         = cards.ErrEmptyDeck
	ErrInvalidMeld       = meld.ErrInvalidMeld
	ErrEmptyDiscard      = errors.New("discard pile is empty")
	ErrInvalidSelection  = errors.New("invalid selection")
	ErrHandNotEmpty      = errors.New("hand still has cards")
	ErrWrongPhase        = errors.New("action not allowed in current phase")
	ErrUnknownAction     = errors.New("unknown action")
)

// ErrorCode maps an error returned by a session action to a stable
// snake_case code suitable for clients.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInsufficientCards):
		return "insufficient_cards"
	case errors.Is(err, ErrEmptyDeck):
		return "empty_deck"
	case errors.Is(err, ErrEmptyDiscard):
		return "empty_discard"
	case errors.Is(err, ErrInvalidSelection):
		return "invalid_selection"
	case errors.Is(err, ErrInvalidMeld):
		return "invalid_meld"
	case errors.Is(err, ErrHandNotEmpty):
		return "hand_not_empty"
	case errors.Is(err, ErrWrongPhase):
		return "wrong_phase"
	case errors.Is(err, ErrUnknownAction):
		return "unknown_action"
	default:
		return "internal"
	}
}
