package game

import (
	"testing"

	"github.com/lox/rummycircle/internal/cards"
	"github.com/lox/rummycircle/internal/meld"
	"github.com/stretchr/testify/assert"
)

func TestEventString(t *testing.T) {
	tests := []struct {
		name  string
		event Event
		want  string
	}{
		{"new game", Event{Type: EventTypeNewGame}, "New game, deck shuffled"},
		{"deal", Event{Type: EventTypeGameStart, Cards: cards.MustParseCards("Ah 2h 3h")}, "Dealt 3 cards"},
		{"draw", Event{Type: EventTypeDrawDeck, Cards: cards.MustParseCards("Qs")}, "Drew Q♠ from the deck"},
		{"take", Event{Type: EventTypeDrawDiscard, Cards: cards.MustParseCards("4c")}, "Took 4♣ from the discard pile"},
		{"discard", Event{Type: EventTypeDiscard, Cards: cards.MustParseCards("10d")}, "Discarded 10♦"},
		{
			"meld",
			Event{Type: EventTypeMeld, Cards: cards.MustParseCards("Kh Kd Kc"), MeldKind: meld.Set, Points: 30, Score: 30},
			"Melded set K♥ K♦ K♣ for 30 points (score 30)",
		},
		{"win", Event{Type: EventTypeWin, Score: 85}, "Won with 85 points"},
		{"unknown", Event{Type: EventType("other")}, "other"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.event.String())
		})
	}
}
