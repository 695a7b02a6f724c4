package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/lox/rummycircle/internal/cards"
	"github.com/lox/rummycircle/internal/game"
	"github.com/lox/rummycircle/internal/meld"
	"github.com/lox/rummycircle/internal/randutil"
	"github.com/lox/rummycircle/internal/tui"
	"github.com/muesli/termenv"
)

// PlayCmd runs an interactive session in the terminal
type PlayCmd struct {
	Seed       int64  `kong:"help='Deterministic shuffle seed (0 picks one from the clock)'"`
	HandSize   int    `kong:"default='13',help='Cards dealt at the start of a game'"`
	StrictSets bool   `kong:"help='Require distinct suits within a set'"`
	NoColor    bool   `kong:"help='Disable colour output'"`
	LogFile    string `kong:"type='path',help='Write debug logs to this file'"`
}

func (c *PlayCmd) Run() error {
	if c.HandSize < 1 || c.HandSize > cards.DeckSize {
		return fmt.Errorf("hand size must be between 1 and %d, got %d", cards.DeckSize, c.HandSize)
	}
	if c.NoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	// The alt screen owns stderr, so logs only go to a file when asked for.
	logger := log.NewWithOptions(os.Stderr, log.Options{Level: log.FatalLevel})
	if c.LogFile != "" {
		f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logger = log.NewWithOptions(f, log.Options{Level: log.DebugLevel, ReportTimestamp: true})
	}

	model := tui.New(game.Options{
		HandSize: c.HandSize,
		Rand:     randutil.NewOrTime(c.Seed),
		Logger:   logger,
		Rules:    meld.Rules{DistinctSuits: c.StrictSets},
	}, logger)

	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}
