// Package tui is a terminal front end for a single rummy session.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/lox/rummycircle/internal/cards"
	"github.com/lox/rummycircle/internal/game"
)

const (
	sidebarWidth = 32
	helpText     = "start · draw · take · select N · discard · meld · win · new · quit"
)

// Model is the Bubble Tea model driving one game session. The session is
// only touched from Update, so it never sees concurrent actions.
type Model struct {
	session *game.Session
	logger  *log.Logger

	logViewport viewport.Model
	input       textinput.Model

	gameLog  []string
	snap     game.Snapshot
	status   string
	failed   bool
	quitting bool

	width  int
	height int
}

// New creates a model and the session it drives. opts.OnEvent is replaced so
// that session events feed the on-screen log.
func New(opts game.Options, logger *log.Logger) *Model {
	vp := viewport.New(10, 5)

	ti := textinput.New()
	ti.Placeholder = "type a command, e.g. start"
	ti.Focus()
	ti.CharLimit = 40
	ti.Width = 40
	ti.Prompt = "> "
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)

	m := &Model{
		logger:      logger.WithPrefix("tui"),
		logViewport: vp,
		input:       ti,
	}

	opts.OnEvent = m.recordEvent
	if opts.Logger == nil {
		opts.Logger = logger
	}
	m.session = game.NewSession(opts)
	m.snap = m.session.Snapshot()
	m.status = "Type start to deal"
	return m
}

// Init initializes the TUI model
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages in the TUI
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "enter":
			cmd := m.Submit(m.input.Value())
			m.input.SetValue("")
			if cmd != nil {
				return m, cmd
			}
			return m, nil
		case "pgup":
			m.logViewport.HalfPageUp()
			return m, nil
		case "pgdown":
			m.logViewport.HalfPageDown()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// Submit runs a typed command against the session. It returns tea.Quit for
// "quit" and nil otherwise.
func (m *Model) Submit(input string) tea.Cmd {
	text := strings.TrimSpace(strings.ToLower(input))
	switch text {
	case "":
		return nil
	case "quit", "exit", "q":
		m.quitting = true
		return tea.Quit
	case "help", "?":
		m.setStatus(helpText, false)
		return nil
	}

	action, err := game.ParseAction(text)
	if err != nil {
		m.setStatus(err.Error(), true)
		return nil
	}

	snap, err := game.Dispatch(m.session, action)
	m.snap = snap
	if err != nil {
		m.logger.Debug("Action rejected", "action", action, "error", err)
		m.setStatus(err.Error(), true)
		return nil
	}

	switch snap.Phase {
	case game.PhaseWon:
		m.setStatus(fmt.Sprintf("Congratulations! You won with %d points. Type new to play again.", snap.Score), false)
	default:
		m.setStatus("", false)
	}
	return nil
}

// Snapshot returns the last state the model rendered
func (m *Model) Snapshot() game.Snapshot {
	return m.snap
}

// Log returns a copy of the event log
func (m *Model) Log() []string {
	out := make([]string, len(m.gameLog))
	copy(out, m.gameLog)
	return out
}

// Status returns the status line and whether it reports a failure
func (m *Model) Status() (string, bool) {
	return m.status, m.failed
}

func (m *Model) setStatus(s string, failed bool) {
	m.status = s
	m.failed = failed
}

func (m *Model) recordEvent(e game.Event) {
	m.gameLog = append(m.gameLog, e.String())
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

func (m *Model) resize() {
	w := m.width - sidebarWidth - 4
	h := m.height - 10
	m.logViewport.Width = max(w, 1)
	m.logViewport.Height = max(h, 1)
	m.logViewport.GotoBottom()
}

// View renders the TUI
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	header := HeaderStyle.Render("Rummy Circle") + "  " +
		ScoreStyle.Render(fmt.Sprintf("Score: %d", m.snap.Score)) + "  " +
		InfoStyle.Render(string(m.snap.Phase))

	table := m.renderTable()
	if m.width > 0 && m.height > 0 {
		logPane := PaneStyle.Width(m.logViewport.Width).Render(m.logViewport.View())
		table = lipgloss.JoinHorizontal(lipgloss.Top,
			PaneStyle.Width(sidebarWidth).Render(table),
			logPane,
		)
	}

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n\n")
	b.WriteString(table)
	b.WriteString("\n")
	b.WriteString(m.renderHand())
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(InfoStyle.Render(helpText))
	return b.String()
}

func (m *Model) renderTable() string {
	var b strings.Builder

	b.WriteString(LabelStyle.Render("Deck: "))
	b.WriteString(fmt.Sprintf("%d cards\n", m.snap.DeckCount))

	b.WriteString(LabelStyle.Render("Discard: "))
	if m.snap.DiscardTop != nil {
		b.WriteString(formatCard(*m.snap.DiscardTop))
		b.WriteString(fmt.Sprintf(" (%d)", m.snap.DiscardCount))
	} else {
		b.WriteString(InfoStyle.Render("empty"))
	}
	b.WriteString("\n\n")

	b.WriteString(LabelStyle.Render("Melds"))
	b.WriteString("\n")
	if len(m.snap.Melds) == 0 {
		b.WriteString(InfoStyle.Render("No melds yet"))
		b.WriteString("\n")
	}
	for _, md := range m.snap.Melds {
		b.WriteString(fmt.Sprintf("%-9s %s\n", md.Kind, formatCards(md.Cards)))
	}
	return b.String()
}

func (m *Model) renderHand() string {
	if len(m.snap.Hand) == 0 {
		return LabelStyle.Render("Hand: ") + InfoStyle.Render("empty")
	}

	selected := make(map[int]bool, len(m.snap.Selection))
	for _, idx := range m.snap.Selection {
		selected[idx] = true
	}

	parts := make([]string, len(m.snap.Hand))
	for i, c := range m.snap.Hand {
		label := fmt.Sprintf("%d:%s", i+1, formatCard(c))
		if selected[i] {
			label = SelectedCardStyle.Render(label)
		}
		parts[i] = label
	}
	return LabelStyle.Render("Hand: ") + strings.Join(parts, " ")
}

func (m *Model) renderStatus() string {
	switch {
	case m.status == "":
		return ""
	case m.failed:
		return ErrorStyle.Render(m.status)
	case m.snap.Phase == game.PhaseWon:
		return WinStyle.Render(m.status)
	default:
		return SuccessStyle.Render(m.status)
	}
}

// formatCard formats a card with its suit colour
func formatCard(c cards.Card) string {
	if c.IsRed() {
		return RedCardStyle.Render(c.String())
	}
	return BlackCardStyle.Render(c.String())
}

func formatCards(cs []cards.Card) string {
	formatted := make([]string, len(cs))
	for i, c := range cs {
		formatted[i] = formatCard(c)
	}
	return strings.Join(formatted, " ")
}
