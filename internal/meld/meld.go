// Package meld decides whether a group of cards forms a set or a sequence
// and scores it. Everything here is a pure function of its inputs.
package meld

import (
	"errors"
	"fmt"
	"slices"

	"github.com/lox/rummycircle/internal/cards"
)

// MinSize is the smallest group a player may commit as a meld
const MinSize = 3

// ErrInvalidMeld is returned when cards form neither a set nor a sequence
var ErrInvalidMeld = errors.New("cards do not form a valid set or sequence")

// Kind is the type of a meld
type Kind string

const (
	Set      Kind = "set"
	Sequence Kind = "sequence"
)

func (k Kind) String() string {
	return string(k)
}

// Meld is a committed, scored group of cards
type Meld struct {
	Cards []cards.Card `json:"cards"`
	Kind  Kind         `json:"kind"`
}

// New classifies cs with the default rules and returns the meld.
// The cards are copied.
func New(cs []cards.Card) (Meld, error) {
	return Rules{}.New(cs)
}

// Points returns the value of a single card: its rank, capped at 10
func Points(c cards.Card) int {
	return min(int(c.Rank), 10)
}

// Score sums Points over cs
func Score(cs []cards.Card) int {
	total := 0
	for _, c := range cs {
		total += Points(c)
	}
	return total
}

// Score returns the points the meld is worth
func (m Meld) Score() int {
	return Score(m.Cards)
}

// IsSet reports whether every card shares the same rank. Suits are ignored.
func IsSet(cs []cards.Card) bool {
	if len(cs) == 0 {
		return false
	}
	for _, c := range cs[1:] {
		if c.Rank != cs[0].Rank {
			return false
		}
	}
	return true
}

// IsSequence reports whether the cards share a suit and, once sorted by rank,
// climb by exactly one at every step. Ace is low only; K-A does not wrap.
func IsSequence(cs []cards.Card) bool {
	if len(cs) == 0 {
		return false
	}

	sorted := slices.Clone(cs)
	slices.SortFunc(sorted, func(a, b cards.Card) int {
		return int(a.Rank) - int(b.Rank)
	})

	for i := 1; i < len(sorted); i++ {
		if sorted[i].Suit != sorted[0].Suit || sorted[i].Rank != sorted[i-1].Rank+1 {
			return false
		}
	}
	return true
}

// Classify returns Set or Sequence for cs using the default rules
func Classify(cs []cards.Card) (Kind, error) {
	return Rules{}.Classify(cs)
}

// Rules tunes classification
type Rules struct {
	// DistinctSuits rejects a set that repeats a suit
	DistinctSuits bool
}

// Classify returns Set if cs is a set, else Sequence if cs is a sequence,
// else ErrInvalidMeld. A group satisfying both is a Set.
func (r Rules) Classify(cs []cards.Card) (Kind, error) {
	if IsSet(cs) && (!r.DistinctSuits || distinctSuits(cs)) {
		return Set, nil
	}
	if IsSequence(cs) {
		return Sequence, nil
	}
	return "", fmt.Errorf("%w: %s", ErrInvalidMeld, describe(cs))
}

// New classifies cs and returns the meld
func (r Rules) New(cs []cards.Card) (Meld, error) {
	kind, err := r.Classify(cs)
	if err != nil {
		return Meld{}, err
	}
	return Meld{Cards: slices.Clone(cs), Kind: kind}, nil
}

func distinctSuits(cs []cards.Card) bool {
	var seen [len(cards.Suits)]bool
	for _, c := range cs {
		if !c.Suit.Valid() || seen[c.Suit] {
			return false
		}
		seen[c.Suit] = true
	}
	return true
}

func describe(cs []cards.Card) string {
	if len(cs) == 0 {
		return "no cards"
	}
	return fmt.Sprint(cs)
}
