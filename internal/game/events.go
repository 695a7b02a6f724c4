package game

import (
	"fmt"
	"strings"
	"time"

	"github.com/lox/rummycircle/internal/cards"
	"github.com/lox/rummycircle/internal/meld"
)

// EventType identifies what a committed action did
type EventType string

const (
	EventTypeNewGame     EventType = "new_game"
	EventTypeGameStart   EventType = "game_start"
	EventTypeDrawDeck    EventType = "draw_deck"
	EventTypeDrawDiscard EventType = "draw_discard"
	EventTypeDiscard     EventType = "discard"
	EventTypeMeld        EventType = "meld"
	EventTypeWin         EventType = "win"
)

// String returns the string representation of the event type
func (et EventType) String() string {
	return string(et)
}

// Event is published after an action has changed the session. Failed actions
// publish nothing.
type Event struct {
	Type      EventType    `json:"type"`
	SessionID string       `json:"sessionId"`
	Cards     []cards.Card `json:"cards,omitempty"`
	MeldKind  meld.Kind    `json:"meldKind,omitempty"`
	Points    int          `json:"points,omitempty"`
	Score     int          `json:"score"`
	Timestamp time.Time    `json:"timestamp"`
}

// String formats the event as a single log line
func (e Event) String() string {
	switch e.Type {
	case EventTypeNewGame:
		return "New game, deck shuffled"
	case EventTypeGameStart:
		return fmt.Sprintf("Dealt %d cards", len(e.Cards))
	case EventTypeDrawDeck:
		return fmt.Sprintf("Drew %s from the deck", formatCards(e.Cards))
	case EventTypeDrawDiscard:
		return fmt.Sprintf("Took %s from the discard pile", formatCards(e.Cards))
	case EventTypeDiscard:
		return fmt.Sprintf("Discarded %s", formatCards(e.Cards))
	case EventTypeMeld:
		return fmt.Sprintf("Melded %s %s for %d points (score %d)", e.MeldKind, formatCards(e.Cards), e.Points, e.Score)
	case EventTypeWin:
		return fmt.Sprintf("Won with %d points", e.Score)
	default:
		return e.Type.String()
	}
}

func formatCards(cs []cards.Card) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}
