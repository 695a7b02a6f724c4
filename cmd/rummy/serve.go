package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/rummycircle/internal/server"
)

// ServeCmd serves one rummy session per WebSocket connection
type ServeCmd struct {
	Config     string `short:"c" long:"config" default:"rummy.hcl" help:"Path to HCL configuration file"`
	Addr       string `short:"a" long:"addr" help:"Server address to bind to, host:port (overrides config)"`
	LogLevel   string `short:"l" long:"log-level" help:"Log level (overrides config)"`
	Seed       *int64 `help:"Deterministic seed for session shuffles (overrides config)"`
	StrictSets bool   `help:"Require distinct suits within a set (overrides config)"`
}

func (c *ServeCmd) Run() error {
	cfg, err := server.LoadConfig(c.Config)
	if err != nil {
		return err
	}

	if c.Addr != "" {
		if err := applyAddr(cfg, c.Addr); err != nil {
			return err
		}
	}
	if c.LogLevel != "" {
		cfg.Server.LogLevel = c.LogLevel
	}
	if c.Seed != nil {
		cfg.Game.Seed = *c.Seed
	}
	if c.StrictSets {
		cfg.Game.StrictSets = true
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	level, err := log.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		return err
	}
	logger.SetLevel(level)

	logger.Info("Starting rummy server",
		"addr", cfg.ListenAddress(),
		"handSize", cfg.Game.HandSize,
		"seed", cfg.Game.Seed,
		"strictSets", cfg.Game.StrictSets)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.NewServer(cfg, logger, quartz.NewReal())
	if err := srv.ListenAndServe(ctx); err != nil {
		return err
	}
	logger.Info("Server stopped")
	return nil
}

func applyAddr(cfg *server.Config, addr string) error {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid address %q: %w", addr, err)
	}
	p, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("invalid port in %q: %w", addr, err)
	}
	if host != "" {
		cfg.Server.Address = host
	}
	cfg.Server.Port = p
	return nil
}
