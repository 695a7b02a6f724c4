package game

import (
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/rummycircle/internal/cards"
	"github.com/lox/rummycircle/internal/meld"
	"github.com/lox/rummycircle/internal/randutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

func newTestSession(t *testing.T, opts Options) *Session {
	t.Helper()
	if opts.Rand == nil {
		opts.Rand = randutil.New(42)
	}
	opts.Logger = testLogger()
	return NewSession(opts)
}

// riggedSession returns a started session whose hand is exactly hand and
// whose remaining deck is stock, top last.
func riggedSession(t *testing.T, hand, stock string) *Session {
	t.Helper()
	handCards := cards.MustParseCards(hand)
	s := newTestSession(t, Options{HandSize: len(handCards)})
	s.deck = cards.NewOrderedDeck(append(handCards, cards.MustParseCards(stock)...))

	_, err := s.StartGame()
	require.NoError(t, err)
	require.Equal(t, handCards, s.hand.Cards())
	return s
}

func selectAll(t *testing.T, s *Session, indices ...int) {
	t.Helper()
	for _, i := range indices {
		_, err := s.ToggleSelect(i)
		require.NoError(t, err)
	}
}

// allCards gathers every card the session knows about
func allCards(s *Session) []cards.Card {
	snap := s.Snapshot()
	out := s.deck.Cards()
	out = append(out, snap.Hand...)
	out = append(out, s.discard...)
	out = append(out, snap.MeldedCards()...)
	return out
}

func TestNewSessionIsReady(t *testing.T) {
	s := newTestSession(t, Options{})
	snap := s.Snapshot()

	assert.Equal(t, PhaseReady, snap.Phase)
	assert.Equal(t, 0, snap.Score)
	assert.Equal(t, cards.DeckSize, snap.DeckCount)
	assert.Empty(t, snap.Hand)
	assert.Nil(t, snap.DiscardTop)
	assert.Empty(t, snap.Melds)
	assert.ElementsMatch(t, cards.StandardCards(), allCards(s))
}

func TestStartGameDealsHand(t *testing.T) {
	s := newTestSession(t, Options{})
	deckBefore := s.deck.Cards()

	snap, err := s.StartGame()
	require.NoError(t, err)

	assert.Equal(t, PhasePlaying, snap.Phase)
	assert.Equal(t, deckBefore[:DefaultHandSize], snap.Hand, "hand comes from the front of the deck")
	assert.Equal(t, cards.DeckSize-DefaultHandSize, snap.DeckCount)
	assert.ElementsMatch(t, cards.StandardCards(), allCards(s))
}

func TestStartGameInsufficientCards(t *testing.T) {
	s := newTestSession(t, Options{HandSize: 53})
	before := s.Snapshot()

	snap, err := s.StartGame()
	assert.ErrorIs(t, err, ErrInsufficientCards)
	assert.Equal(t, PhaseReady, snap.Phase)
	assert.Equal(t, before, s.Snapshot())
}

func TestStartGameOnlyWhenReady(t *testing.T) {
	s := newTestSession(t, Options{})
	_, err := s.StartGame()
	require.NoError(t, err)

	before := s.Snapshot()
	_, err = s.StartGame()
	assert.ErrorIs(t, err, ErrWrongPhase)
	assert.Equal(t, before, s.Snapshot())
}

func TestActionsRequirePlaying(t *testing.T) {
	actions := map[string]func(*Session) (Snapshot, error){
		"draw deck":    (*Session).DrawFromDeck,
		"draw discard": (*Session).DrawFromDiscard,
		"discard":      (*Session).DiscardSelected,
		"meld":         (*Session).CreateMeld,
		"declare win":  (*Session).DeclareWin,
	}

	for name, action := range actions {
		t.Run(name, func(t *testing.T) {
			s := newTestSession(t, Options{})
			before := s.Snapshot()

			_, err := action(s)
			assert.ErrorIs(t, err, ErrWrongPhase)
			assert.Equal(t, before, s.Snapshot())
		})
	}
}

func TestDrawFromDeck(t *testing.T) {
	s := riggedSession(t, "Ah 2h 3h", "9c Kd")

	snap, err := s.DrawFromDeck()
	require.NoError(t, err)
	assert.Equal(t, cards.MustParseCards("Ah 2h 3h Kd"), snap.Hand)
	assert.Equal(t, 1, snap.DeckCount)
}

func TestDrawFromEmptyDeck(t *testing.T) {
	s := riggedSession(t, "Ah 2h 3h", "")
	before := s.Snapshot()

	snap, err := s.DrawFromDeck()
	assert.ErrorIs(t, err, ErrEmptyDeck)
	assert.Equal(t, before.Hand, snap.Hand)
	assert.Equal(t, before, s.Snapshot())
}

func TestDrawFromDiscard(t *testing.T) {
	s := riggedSession(t, "Ah 2h 3h", "")

	_, err := s.DrawFromDiscard()
	assert.ErrorIs(t, err, ErrEmptyDiscard)

	selectAll(t, s, 1)
	snap, err := s.DiscardSelected()
	require.NoError(t, err)
	require.NotNil(t, snap.DiscardTop)
	assert.Equal(t, cards.NewCard(cards.Two, cards.Hearts), *snap.DiscardTop)

	snap, err = s.DrawFromDiscard()
	require.NoError(t, err)
	assert.Nil(t, snap.DiscardTop)
	assert.Equal(t, 0, snap.DiscardCount)
	assert.Equal(t, cards.MustParseCards("Ah 3h 2h"), snap.Hand)
}

func TestDiscardRequiresExactlyOne(t *testing.T) {
	s := riggedSession(t, "Ah 2h 3h", "")

	_, err := s.DiscardSelected()
	assert.ErrorIs(t, err, ErrInvalidSelection)

	selectAll(t, s, 0, 2)
	before := s.Snapshot()
	_, err = s.DiscardSelected()
	assert.ErrorIs(t, err, ErrInvalidSelection)
	assert.Equal(t, before, s.Snapshot())
}

func TestDiscardStacksOnTop(t *testing.T) {
	s := riggedSession(t, "Ah 2h 3h", "")

	selectAll(t, s, 0)
	_, err := s.DiscardSelected()
	require.NoError(t, err)

	selectAll(t, s, 1)
	snap, err := s.DiscardSelected()
	require.NoError(t, err)

	assert.Equal(t, cards.NewCard(cards.Three, cards.Hearts), *snap.DiscardTop)
	assert.Equal(t, 2, snap.DiscardCount)
	assert.Equal(t, cards.MustParseCards("2h"), snap.Hand)
	assert.Empty(t, snap.Selection)
}

func TestCreateMeldThreeQueensScoresThirty(t *testing.T) {
	s := riggedSession(t, "Qh 4c Qd Qs", "")
	selectAll(t, s, 0, 2, 3)

	snap, err := s.CreateMeld()
	require.NoError(t, err)

	assert.Equal(t, 30, snap.Score)
	require.Len(t, snap.Melds, 1)
	assert.Equal(t, meld.Set, snap.Melds[0].Kind)
	assert.Equal(t, cards.MustParseCards("Qh Qd Qs"), snap.Melds[0].Cards)
	assert.Equal(t, cards.MustParseCards("4c"), snap.Hand)
	assert.Empty(t, snap.Selection)
}

func TestCreateMeldSequence(t *testing.T) {
	s := riggedSession(t, "6c 9h 4c 5c", "")
	selectAll(t, s, 0, 2, 3)

	snap, err := s.CreateMeld()
	require.NoError(t, err)

	require.Len(t, snap.Melds, 1)
	assert.Equal(t, meld.Sequence, snap.Melds[0].Kind)
	assert.Equal(t, cards.MustParseCards("6c 4c 5c"), snap.Melds[0].Cards, "meld keeps selection order")
	assert.Equal(t, 15, snap.Score)
}

func TestCreateMeldInvalidLeavesSessionUnchanged(t *testing.T) {
	s := riggedSession(t, "4c 5h 6c Kd", "")
	selectAll(t, s, 0, 1, 2)
	before := s.Snapshot()

	_, err := s.CreateMeld()
	assert.ErrorIs(t, err, ErrInvalidMeld)
	assert.Equal(t, before, s.Snapshot())
	assert.Equal(t, []int{0, 1, 2}, s.Snapshot().Selection)
}

func TestCreateMeldNeedsThreeCards(t *testing.T) {
	s := riggedSession(t, "Qh Qd Qs", "")
	selectAll(t, s, 0, 1)

	_, err := s.CreateMeld()
	assert.ErrorIs(t, err, ErrInvalidSelection)
	assert.Equal(t, 0, s.Score())
}

func TestCreateMeldStrictSets(t *testing.T) {
	handCards := cards.MustParseCards("5h 5h 5c")
	s := newTestSession(t, Options{HandSize: 3, Rules: meld.Rules{DistinctSuits: true}})
	s.deck = cards.NewOrderedDeck(handCards)
	_, err := s.StartGame()
	require.NoError(t, err)
	selectAll(t, s, 0, 1, 2)

	_, err = s.CreateMeld()
	assert.ErrorIs(t, err, ErrInvalidMeld)
}

func TestDeclareWinWithCardsFails(t *testing.T) {
	s := riggedSession(t, "Ah 2h 3h", "")

	snap, err := s.DeclareWin()
	assert.ErrorIs(t, err, ErrHandNotEmpty)
	assert.Equal(t, PhasePlaying, snap.Phase)
}

func TestFullGameToWin(t *testing.T) {
	s := riggedSession(t, "Qh Qd Qs 7c 8c 9c", "")

	selectAll(t, s, 0, 1, 2)
	_, err := s.CreateMeld()
	require.NoError(t, err)

	selectAll(t, s, 0, 1, 2)
	_, err = s.CreateMeld()
	require.NoError(t, err)

	snap, err := s.DeclareWin()
	require.NoError(t, err)
	assert.Equal(t, PhaseWon, snap.Phase)
	assert.Equal(t, 30+24, snap.Score)

	_, err = s.DrawFromDeck()
	assert.ErrorIs(t, err, ErrWrongPhase, "won is terminal")

	snap = s.NewGame()
	assert.Equal(t, PhaseReady, snap.Phase)
	assert.Equal(t, 0, snap.Score)
	assert.Empty(t, snap.Melds)
	assert.Equal(t, cards.DeckSize, snap.DeckCount)
}

func TestToggleSelectTwiceIsIdentity(t *testing.T) {
	s := riggedSession(t, "Ah 2h 3h", "")
	selectAll(t, s, 2)
	before := s.Snapshot()

	_, err := s.ToggleSelect(0)
	require.NoError(t, err)
	snap, err := s.ToggleSelect(0)
	require.NoError(t, err)

	assert.Equal(t, before, snap)
}

func TestToggleSelectOutOfRange(t *testing.T) {
	s := riggedSession(t, "Ah 2h 3h", "")

	_, err := s.ToggleSelect(3)
	assert.ErrorIs(t, err, ErrInvalidSelection)
}

func TestSnapshotIsDetached(t *testing.T) {
	s := riggedSession(t, "Qh Qd Qs 2c", "")
	selectAll(t, s, 0, 1, 2)
	_, err := s.CreateMeld()
	require.NoError(t, err)

	snap := s.Snapshot()
	snap.Hand[0] = cards.NewCard(cards.King, cards.Spades)
	snap.Melds[0].Cards[0] = cards.NewCard(cards.King, cards.Spades)

	fresh := s.Snapshot()
	assert.Equal(t, cards.MustParseCards("2c"), fresh.Hand)
	assert.Equal(t, cards.NewCard(cards.Queen, cards.Hearts), fresh.Melds[0].Cards[0])
}

func TestCardConservationUnderRandomPlay(t *testing.T) {
	for seed := int64(1); seed <= 25; seed++ {
		rng := randutil.New(seed)
		s := newTestSession(t, Options{Rand: randutil.New(seed + 1000)})
		_, err := s.StartGame()
		require.NoError(t, err)

		for step := 0; step < 200; step++ {
			var a Action
			switch rng.IntN(6) {
			case 0:
				a = Action{Kind: ActionDrawDeck}
			case 1:
				a = Action{Kind: ActionDrawDiscard}
			case 2, 3:
				a = Action{Kind: ActionSelect, Index: rng.IntN(s.hand.Len() + 1)}
			case 4:
				a = Action{Kind: ActionDiscard}
			case 5:
				a = Action{Kind: ActionMeld}
			}

			scoreBefore := s.Score()
			_, _ = Dispatch(s, a)

			require.ElementsMatch(t, cards.StandardCards(), allCards(s), "seed %d step %d action %s", seed, step, a)
			require.GreaterOrEqual(t, s.Score(), scoreBefore, "score must not decrease")
			for _, idx := range s.Snapshot().Selection {
				require.Less(t, idx, s.hand.Len(), "selection index must stay valid")
			}
		}
	}
}

func TestEventsUseClock(t *testing.T) {
	mClock := quartz.NewMock(t)
	mClock.Set(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))

	var events []Event
	s := newTestSession(t, Options{
		ID:      "abc",
		Clock:   mClock,
		OnEvent: func(e Event) { events = append(events, e) },
	})

	_, err := s.StartGame()
	require.NoError(t, err)
	_, err = s.DrawFromDiscard()
	require.Error(t, err)
	_, err = s.DrawFromDeck()
	require.NoError(t, err)

	require.Len(t, events, 3, "failed actions publish nothing")
	assert.Equal(t, EventTypeNewGame, events[0].Type)
	assert.Equal(t, EventTypeGameStart, events[1].Type)
	assert.Len(t, events[1].Cards, DefaultHandSize)
	assert.Equal(t, EventTypeDrawDeck, events[2].Type)
	for _, e := range events {
		assert.Equal(t, "abc", e.SessionID)
		assert.Equal(t, mClock.Now(), e.Timestamp)
	}
}

func TestMeldEventCarriesPoints(t *testing.T) {
	var last Event
	handCards := cards.MustParseCards("Kh Kd Kc")
	s := newTestSession(t, Options{HandSize: 3, OnEvent: func(e Event) { last = e }})
	s.deck = cards.NewOrderedDeck(handCards)
	_, err := s.StartGame()
	require.NoError(t, err)
	selectAll(t, s, 0, 1, 2)

	_, err = s.CreateMeld()
	require.NoError(t, err)

	assert.Equal(t, EventTypeMeld, last.Type)
	assert.Equal(t, meld.Set, last.MeldKind)
	assert.Equal(t, 30, last.Points)
	assert.Equal(t, 30, last.Score)
	assert.Equal(t, "Melded set K♥ K♦ K♣ for 30 points (score 30)", last.String())
}
