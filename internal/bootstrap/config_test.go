package bootstrap

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chess_uci/internal/domain"
)

func TestSetupDefaultsWithoutFile(t *testing.T) {
	cfg, err := Setup(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "stockfish", cfg.EnginePath)
	assert.Equal(t, 5*time.Second, cfg.ReplyTimeout)
	assert.Equal(t, 5*time.Second, cfg.QuitTimeout)
	assert.Equal(t, 16, cfg.SearchDepth)
	assert.Equal(t, 1, cfg.MultiPV)
	assert.Equal(t, 24*time.Hour, cfg.CacheTTL)
	assert.Empty(t, cfg.RedisUrl)
}

func TestSetupReadsFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.env")
	content := "ENGINE_PATH=/opt/engines/stockfish\n" +
		"ENGINE_ARGS=--threads 2\n" +
		"REPLY_TIMEOUT=2s\n" +
		"MULTIPV=3\n" +
		"LOG_RECV=true\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("SEARCH_MOVETIME", "750")

	cfg, err := Setup(path)
	require.NoError(t, err)

	assert.Equal(t, "/opt/engines/stockfish", cfg.EnginePath)
	assert.Equal(t, []string{"--threads", "2"}, cfg.Args())
	assert.Equal(t, 2*time.Second, cfg.ReplyTimeout)
	assert.Equal(t, 3, cfg.MultiPV)
	assert.True(t, cfg.LogRecv)
	assert.Equal(t, 750, cfg.SearchMoveTime)
}

func TestSettings(t *testing.T) {
	cfg := Config{EngineOptions: "Threads=4; Hash = 128;;Clear Hash;Skill Level=20"}
	assert.Equal(t, []domain.Setting{
		{Name: "Threads", Value: "4"},
		{Name: "Hash", Value: "128"},
		{Name: "Clear Hash"},
		{Name: "Skill Level", Value: "20"},
	}, cfg.Settings())

	assert.Empty(t, Config{}.Settings())
}

func TestSearchRequest(t *testing.T) {
	pos := domain.Position{Moves: []string{"e2e4"}}

	req := Config{SearchDepth: 12, MultiPV: 2}.SearchRequest(pos)
	assert.Equal(t, domain.ByDepth(12), req.GoCommand())
	assert.Equal(t, 2, req.MultiPV)
	assert.Equal(t, pos, req.Position)

	req = Config{SearchDepth: 12, SearchMoveTime: 500}.SearchRequest(pos)
	assert.Equal(t, "depth 12 movetime 500", req.GoCommand().Args())

	req = Config{SearchMoveTime: 500}.SearchRequest(pos)
	assert.Equal(t, "movetime 500", req.GoCommand().Args())
}
