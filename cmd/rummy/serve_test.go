package main

import (
	"testing"

	"github.com/lox/rummycircle/internal/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyAddr(t *testing.T) {
	t.Run("host and port", func(t *testing.T) {
		cfg := server.DefaultConfig()
		require.NoError(t, applyAddr(cfg, "0.0.0.0:9000"))
		assert.Equal(t, "0.0.0.0:9000", cfg.ListenAddress())
	})

	t.Run("port only keeps host", func(t *testing.T) {
		cfg := server.DefaultConfig()
		require.NoError(t, applyAddr(cfg, ":9001"))
		assert.Equal(t, "localhost:9001", cfg.ListenAddress())
	})

	t.Run("invalid", func(t *testing.T) {
		cfg := server.DefaultConfig()
		assert.Error(t, applyAddr(cfg, "localhost"))
		assert.Error(t, applyAddr(cfg, "localhost:http"))
	})
}
