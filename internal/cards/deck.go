package cards

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

// DeckSize is the number of cards in a standard deck
const DeckSize = 52

var (
	// ErrEmptyDeck is returned when drawing from a deck with no cards left
	ErrEmptyDeck = errors.New("deck is empty")

	// ErrInsufficientCards is returned when a deal asks for more cards than remain
	ErrInsufficientCards = errors.New("not enough cards in deck")
)

// Deck is the undealt stock. The top of the deck is the end of the slice:
// Draw takes from the end, Deal takes from the front.
type Deck struct {
	cards []Card
	rng   *rand.Rand
}

// NewDeck creates a new standard 52-card deck shuffled with rng.
// A nil rng falls back to the global math/rand/v2 source.
func NewDeck(rng *rand.Rand) *Deck {
	d := &Deck{
		cards: make([]Card, 0, DeckSize),
		rng:   rng,
	}
	d.Reset()
	return d
}

// NewOrderedDeck creates a deck holding exactly the given cards in order,
// without shuffling. The last card is the top.
func NewOrderedDeck(cards []Card) *Deck {
	d := &Deck{cards: make([]Card, len(cards))}
	copy(d.cards, cards)
	return d
}

// StandardCards returns the 52 cards in construction order: suit by suit,
// Ace through King.
func StandardCards() []Card {
	out := make([]Card, 0, DeckSize)
	for _, suit := range Suits {
		for rank := Ace; rank <= King; rank++ {
			out = append(out, NewCard(rank, suit))
		}
	}
	return out
}

// Reset restores the deck to a full 52-card deck and shuffles it
func (d *Deck) Reset() {
	d.cards = append(d.cards[:0], StandardCards()...)
	d.Shuffle()
}

// Shuffle shuffles the remaining cards using Fisher-Yates
func (d *Deck) Shuffle() {
	for i := len(d.cards) - 1; i > 0; i-- {
		var j int
		if d.rng != nil {
			j = d.rng.IntN(i + 1)
		} else {
			j = rand.IntN(i + 1)
		}
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Deal removes the first n cards from the deck. The deck is left untouched
// when fewer than n cards remain.
func (d *Deck) Deal(n int) ([]Card, error) {
	if n < 0 || n > len(d.cards) {
		return nil, fmt.Errorf("%w: want %d, have %d", ErrInsufficientCards, n, len(d.cards))
	}

	dealt := make([]Card, n)
	copy(dealt, d.cards[:n])
	d.cards = append(d.cards[:0], d.cards[n:]...)
	return dealt, nil
}

// Draw removes and returns the top (last) card of the deck
func (d *Deck) Draw() (Card, error) {
	if len(d.cards) == 0 {
		return Card{}, ErrEmptyDeck
	}

	last := len(d.cards) - 1
	card := d.cards[last]
	d.cards = d.cards[:last]
	return card, nil
}

// Peek returns the top card without removing it from the deck
func (d *Deck) Peek() (Card, bool) {
	if len(d.cards) == 0 {
		return Card{}, false
	}
	return d.cards[len(d.cards)-1], true
}

// Len returns the number of cards left in the deck
func (d *Deck) Len() int {
	return len(d.cards)
}

// IsEmpty returns true if the deck has no cards left
func (d *Deck) IsEmpty() bool {
	return len(d.cards) == 0
}

// Cards returns a copy of the remaining cards, bottom first
func (d *Deck) Cards() []Card {
	out := make([]Card, len(d.cards))
	copy(out, d.cards)
	return out
}
