package game

import (
	"fmt"
	"slices"

	"github.com/lox/rummycircle/internal/cards"
)

// Hand holds the player's cards and the indices currently selected.
// Selection indices always refer to cards in the hand.
type Hand struct {
	cards    []cards.Card
	selected []int // in the order they were selected
}

// Add appends a card to the hand
func (h *Hand) Add(c cards.Card) {
	h.cards = append(h.cards, c)
}

// Len returns the number of cards held
func (h *Hand) Len() int {
	return len(h.cards)
}

// Cards returns a copy of the hand in display order
func (h *Hand) Cards() []cards.Card {
	return slices.Clone(h.cards)
}

// Toggle selects index if it is not selected and deselects it otherwise
func (h *Hand) Toggle(index int) error {
	if index < 0 || index >= len(h.cards) {
		return fmt.Errorf("%w: index %d out of range for hand of %d", ErrInvalidSelection, index, len(h.cards))
	}

	if pos := slices.Index(h.selected, index); pos >= 0 {
		h.selected = slices.Delete(h.selected, pos, pos+1)
		return nil
	}
	h.selected = append(h.selected, index)
	return nil
}

// IsSelected reports whether index is in the selection
func (h *Hand) IsSelected(index int) bool {
	return slices.Contains(h.selected, index)
}

// Selected returns the selected indices in ascending order
func (h *Hand) Selected() []int {
	out := slices.Clone(h.selected)
	slices.Sort(out)
	if out == nil {
		out = []int{}
	}
	return out
}

// SelectionLen returns the number of selected cards
func (h *Hand) SelectionLen() int {
	return len(h.selected)
}

// SelectedCards returns the selected cards in the order they were selected
func (h *Hand) SelectedCards() []cards.Card {
	out := make([]cards.Card, len(h.selected))
	for i, idx := range h.selected {
		out[i] = h.cards[idx]
	}
	return out
}

// ClearSelection empties the selection
func (h *Hand) ClearSelection() {
	h.selected = h.selected[:0]
}

// RemoveIndices removes the cards at the given indices, all interpreted
// against the hand as it was before the call, and clears the selection.
// The removed cards are returned in the order the indices were given.
// Out of range or repeated indices fail without touching the hand.
func (h *Hand) RemoveIndices(indices []int) ([]cards.Card, error) {
	drop := make([]bool, len(h.cards))
	for _, idx := range indices {
		if idx < 0 || idx >= len(h.cards) {
			return nil, fmt.Errorf("%w: index %d out of range for hand of %d", ErrInvalidSelection, idx, len(h.cards))
		}
		if drop[idx] {
			return nil, fmt.Errorf("%w: index %d repeated", ErrInvalidSelection, idx)
		}
		drop[idx] = true
	}

	removed := make([]cards.Card, len(indices))
	for i, idx := range indices {
		removed[i] = h.cards[idx]
	}

	kept := h.cards[:0]
	for i, c := range h.cards {
		if !drop[i] {
			kept = append(kept, c)
		}
	}
	clear(h.cards[len(kept):])
	h.cards = kept
	h.ClearSelection()
	return removed, nil
}

// Reset empties the hand and the selection
func (h *Hand) Reset() {
	h.cards = nil
	h.selected = nil
}
