package game

import (
	"slices"

	"github.com/lox/rummycircle/internal/cards"
	"github.com/lox/rummycircle/internal/meld"
)

// Snapshot is a detached copy of a session for rendering
type Snapshot struct {
	ID           string       `json:"id"`
	Phase        Phase        `json:"phase"`
	Score        int          `json:"score"`
	DeckCount    int          `json:"deckCount"`
	Hand         []cards.Card `json:"hand"`
	Selection    []int        `json:"selection"`
	DiscardTop   *cards.Card  `json:"discardTop"`
	DiscardCount int          `json:"discardCount"`
	Melds        []meld.Meld  `json:"melds"`
}

// Snapshot returns the current state of the session
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		ID:           s.id,
		Phase:        s.phase,
		Score:        s.score,
		DeckCount:    s.deck.Len(),
		Hand:         s.hand.Cards(),
		Selection:    s.hand.Selected(),
		DiscardCount: len(s.discard),
		Melds:        make([]meld.Meld, len(s.melds)),
	}
	if snap.Hand == nil {
		snap.Hand = []cards.Card{}
	}
	if n := len(s.discard); n > 0 {
		top := s.discard[n-1]
		snap.DiscardTop = &top
	}
	for i, m := range s.melds {
		snap.Melds[i] = meld.Meld{Cards: slices.Clone(m.Cards), Kind: m.Kind}
	}
	return snap
}

// MeldedCards returns every card committed to a meld, in meld order
func (snap Snapshot) MeldedCards() []cards.Card {
	var out []cards.Card
	for _, m := range snap.Melds {
		out = append(out, m.Cards...)
	}
	return out
}
