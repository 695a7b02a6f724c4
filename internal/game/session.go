package game

import (
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/rummycircle/internal/cards"
	"github.com/lox/rummycircle/internal/meld"
	"github.com/lox/rummycircle/internal/randutil"
)

// DefaultHandSize is the number of cards dealt by StartGame
const DefaultHandSize = 13

// Phase is the top-level state of a session
type Phase string

const (
	PhaseReady   Phase = "ready"
	PhasePlaying Phase = "playing"
	PhaseWon     Phase = "won"
)

func (p Phase) String() string {
	return string(p)
}

// Options configures a Session. Zero values select defaults.
type Options struct {
	ID       string
	HandSize int
	Rand     *rand.Rand
	Clock    quartz.Clock
	Logger   *log.Logger
	Rules    meld.Rules

	// OnEvent is called synchronously after each successful action
	OnEvent func(Event)
}

// Session is one game: deck, hand, discard pile, melds, phase and score.
// A Session is not safe for concurrent use; each action runs to completion
// before the next one starts.
type Session struct {
	id       string
	handSize int
	rules    meld.Rules
	clock    quartz.Clock
	logger   *log.Logger
	onEvent  func(Event)

	deck    *cards.Deck
	hand    Hand
	discard []cards.Card
	melds   []meld.Meld
	phase   Phase
	score   int
}

// NewSession creates a session in the ready phase with a freshly shuffled deck
func NewSession(opts Options) *Session {
	if opts.HandSize == 0 {
		opts.HandSize = DefaultHandSize
	}
	if opts.Rand == nil {
		opts.Rand = randutil.NewOrTime(0)
	}
	if opts.Clock == nil {
		opts.Clock = quartz.NewReal()
	}
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	s := &Session{
		id:       opts.ID,
		handSize: opts.HandSize,
		rules:    opts.Rules,
		clock:    opts.Clock,
		logger:   opts.Logger.WithPrefix("session"),
		onEvent:  opts.OnEvent,
		deck:     cards.NewDeck(opts.Rand),
	}
	if s.id != "" {
		s.logger = s.logger.With("session", s.id)
	}
	s.NewGame()
	return s
}

// ID returns the session identifier, possibly empty
func (s *Session) ID() string { return s.id }

// Phase returns the current phase
func (s *Session) Phase() Phase { return s.phase }

// Score returns the accumulated meld score
func (s *Session) Score() int { return s.score }

// HandSize returns the number of cards StartGame deals
func (s *Session) HandSize() int { return s.handSize }

// NewGame fully re-initialises the session: a reshuffled 52-card deck, empty
// hand, discard pile and melds, zero score, ready phase. It is allowed in any
// phase.
func (s *Session) NewGame() Snapshot {
	s.deck.Reset()
	s.hand.Reset()
	s.discard = nil
	s.melds = nil
	s.score = 0
	s.phase = PhaseReady

	s.logger.Debug("New game", "deck", s.deck.Len())
	s.emit(Event{Type: EventTypeNewGame})
	return s.Snapshot()
}

// StartGame deals the opening hand and moves to the playing phase
func (s *Session) StartGame() (Snapshot, error) {
	if err := s.requirePhase("start game", PhaseReady); err != nil {
		return s.Snapshot(), err
	}

	dealt, err := s.deck.Deal(s.handSize)
	if err != nil {
		return s.Snapshot(), fmt.Errorf("start game: %w", err)
	}

	s.hand.Reset()
	for _, c := range dealt {
		s.hand.Add(c)
	}
	s.phase = PhasePlaying

	s.logger.Debug("Game started", "hand", len(dealt), "deck", s.deck.Len())
	s.emit(Event{Type: EventTypeGameStart, Cards: dealt})
	return s.Snapshot(), nil
}

// DrawFromDeck moves the top card of the deck into the hand
func (s *Session) DrawFromDeck() (Snapshot, error) {
	if err := s.requirePhase("draw from deck", PhasePlaying); err != nil {
		return s.Snapshot(), err
	}

	card, err := s.deck.Draw()
	if err != nil {
		return s.Snapshot(), fmt.Errorf("draw from deck: %w", err)
	}
	s.hand.Add(card)

	s.logger.Debug("Drew from deck", "card", card, "deck", s.deck.Len())
	s.emit(Event{Type: EventTypeDrawDeck, Cards: []cards.Card{card}})
	return s.Snapshot(), nil
}

// DrawFromDiscard moves the top card of the discard pile into the hand
func (s *Session) DrawFromDiscard() (Snapshot, error) {
	if err := s.requirePhase("draw from discard", PhasePlaying); err != nil {
		return s.Snapshot(), err
	}

	n := len(s.discard)
	if n == 0 {
		return s.Snapshot(), fmt.Errorf("draw from discard: %w", ErrEmptyDiscard)
	}
	card := s.discard[n-1]
	s.discard = s.discard[:n-1]
	s.hand.Add(card)

	s.logger.Debug("Drew from discard", "card", card, "discard", len(s.discard))
	s.emit(Event{Type: EventTypeDrawDiscard, Cards: []cards.Card{card}})
	return s.Snapshot(), nil
}

// ToggleSelect adds index to the selection, or removes it if already selected
func (s *Session) ToggleSelect(index int) (Snapshot, error) {
	if err := s.hand.Toggle(index); err != nil {
		return s.Snapshot(), fmt.Errorf("select: %w", err)
	}
	return s.Snapshot(), nil
}

// DiscardSelected moves the single selected card onto the discard pile
func (s *Session) DiscardSelected() (Snapshot, error) {
	if err := s.requirePhase("discard", PhasePlaying); err != nil {
		return s.Snapshot(), err
	}
	if n := s.hand.SelectionLen(); n != 1 {
		return s.Snapshot(), fmt.Errorf("discard: %w: select exactly one card, have %d", ErrInvalidSelection, n)
	}

	removed, err := s.hand.RemoveIndices(s.hand.Selected())
	if err != nil {
		return s.Snapshot(), fmt.Errorf("discard: %w", err)
	}
	s.discard = append(s.discard, removed[0])

	s.logger.Debug("Discarded", "card", removed[0], "hand", s.hand.Len())
	s.emit(Event{Type: EventTypeDiscard, Cards: removed})
	return s.Snapshot(), nil
}

// CreateMeld commits the selected cards as a set or sequence and scores them.
// An invalid group leaves hand and selection untouched.
func (s *Session) CreateMeld() (Snapshot, error) {
	if err := s.requirePhase("meld", PhasePlaying); err != nil {
		return s.Snapshot(), err
	}
	if n := s.hand.SelectionLen(); n < meld.MinSize {
		return s.Snapshot(), fmt.Errorf("meld: %w: need at least %d cards, have %d", ErrInvalidSelection, meld.MinSize, n)
	}

	m, err := s.rules.New(s.hand.SelectedCards())
	if err != nil {
		return s.Snapshot(), fmt.Errorf("meld: %w", err)
	}

	if _, err := s.hand.RemoveIndices(s.hand.Selected()); err != nil {
		return s.Snapshot(), fmt.Errorf("meld: %w", err)
	}

	points := m.Score()
	s.melds = append(s.melds, m)
	s.score += points

	s.logger.Debug("Meld created", "kind", m.Kind, "cards", m.Cards, "points", points, "score", s.score)
	s.emit(Event{Type: EventTypeMeld, Cards: m.Cards, MeldKind: m.Kind, Points: points})
	return s.Snapshot(), nil
}

// DeclareWin ends the game once every card has left the hand
func (s *Session) DeclareWin() (Snapshot, error) {
	if err := s.requirePhase("declare win", PhasePlaying); err != nil {
		return s.Snapshot(), err
	}
	if n := s.hand.Len(); n > 0 {
		return s.Snapshot(), fmt.Errorf("declare win: %w: %d left", ErrHandNotEmpty, n)
	}
	s.phase = PhaseWon

	s.logger.Info("Game won", "score", s.score, "melds", len(s.melds))
	s.emit(Event{Type: EventTypeWin})
	return s.Snapshot(), nil
}

func (s *Session) requirePhase(action string, want Phase) error {
	if s.phase != want {
		return fmt.Errorf("%s: %w: phase is %s, need %s", action, ErrWrongPhase, s.phase, want)
	}
	return nil
}

func (s *Session) emit(e Event) {
	if s.onEvent == nil {
		return
	}
	e.SessionID = s.id
	e.Score = s.score
	e.Timestamp = s.clock.Now()
	s.onEvent(e)
}
