package game

import (
	"fmt"
	"strconv"
	"strings"
)

// ActionKind names a player command
type ActionKind string

const (
	ActionNewGame     ActionKind = "new"
	ActionStart       ActionKind = "start"
	ActionDrawDeck    ActionKind = "draw"
	ActionDrawDiscard ActionKind = "take"
	ActionSelect      ActionKind = "select"
	ActionDiscard     ActionKind = "discard"
	ActionMeld        ActionKind = "meld"
	ActionDeclareWin  ActionKind = "win"
)

// Action is a single command against a session. Index is only read by
// ActionSelect and is zero-based.
type Action struct {
	Kind  ActionKind `json:"action"`
	Index int        `json:"index,omitempty"`
}

func (a Action) String() string {
	if a.Kind == ActionSelect {
		return fmt.Sprintf("%s %d", a.Kind, a.Index)
	}
	return string(a.Kind)
}

// Dispatch applies a to s and returns the resulting snapshot
func Dispatch(s *Session, a Action) (Snapshot, error) {
	switch a.Kind {
	case ActionNewGame:
		return s.NewGame(), nil
	case ActionStart:
		return s.StartGame()
	case ActionDrawDeck:
		return s.DrawFromDeck()
	case ActionDrawDiscard:
		return s.DrawFromDiscard()
	case ActionSelect:
		return s.ToggleSelect(a.Index)
	case ActionDiscard:
		return s.DiscardSelected()
	case ActionMeld:
		return s.CreateMeld()
	case ActionDeclareWin:
		return s.DeclareWin()
	default:
		return s.Snapshot(), fmt.Errorf("%w: %q", ErrUnknownAction, a.Kind)
	}
}

var actionAliases = map[string]ActionKind{
	"new":     ActionNewGame,
	"reset":   ActionNewGame,
	"start":   ActionStart,
	"deal":    ActionStart,
	"draw":    ActionDrawDeck,
	"d":       ActionDrawDeck,
	"take":    ActionDrawDiscard,
	"pickup":  ActionDrawDiscard,
	"t":       ActionDrawDiscard,
	"select":  ActionSelect,
	"s":       ActionSelect,
	"toggle":  ActionSelect,
	"discard": ActionDiscard,
	"x":       ActionDiscard,
	"meld":    ActionMeld,
	"m":       ActionMeld,
	"win":     ActionDeclareWin,
	"declare": ActionDeclareWin,
}

// ParseAction parses a typed command such as "draw" or "select 3".
// Card positions in typed commands are one-based, matching how hands are
// displayed; the returned Action carries a zero-based index.
func ParseAction(input string) (Action, error) {
	fields := strings.Fields(strings.ToLower(input))
	if len(fields) == 0 {
		return Action{}, fmt.Errorf("%w: empty command", ErrUnknownAction)
	}

	kind, ok := actionAliases[fields[0]]
	if !ok {
		return Action{}, fmt.Errorf("%w: %q", ErrUnknownAction, fields[0])
	}

	if kind != ActionSelect {
		if len(fields) > 1 {
			return Action{}, fmt.Errorf("%w: %s takes no arguments", ErrUnknownAction, kind)
		}
		return Action{Kind: kind}, nil
	}

	if len(fields) != 2 {
		return Action{}, fmt.Errorf("%w: usage: select <card number>", ErrInvalidSelection)
	}
	pos, err := strconv.Atoi(fields[1])
	if err != nil || pos < 1 {
		return Action{}, fmt.Errorf("%w: %q is not a card number", ErrInvalidSelection, fields[1])
	}
	return Action{Kind: ActionSelect, Index: pos - 1}, nil
}
