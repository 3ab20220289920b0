package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) (*Manager, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := DefaultConfigWithRoot(dir)
	mgr := NewManager(cfg, WithDebounce(20*time.Millisecond))
	return mgr, filepath.Join(dir, ".env")
}

func TestManagerWatchReloadsOnEnvChange(t *testing.T) {
	mgr, envPath := newTestManager(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *Config, 1)
	require.NoError(t, mgr.Watch(ctx, func(cfg *Config) {
		reloaded <- cfg
	}))

	require.NoError(t, os.WriteFile(envPath, []byte("MEMORY_WINDOW=25\n"), 0o644))

	select {
	case cfg := <-reloaded:
		assert.Equal(t, 25, cfg.MemoryWindow)
		assert.Equal(t, 25, mgr.Config().MemoryWindow)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not fire on env change")
	}
}

func TestManagerKeepsPreviousConfigOnInvalidReload(t *testing.T) {
	mgr, envPath := newTestManager(t)
	before := mgr.Config().MaxRecurLimit

	require.NoError(t, os.WriteFile(envPath, []byte("MAX_RECURSION_LIMIT=-1\n"), 0o644))
	mgr.reload()

	assert.Equal(t, before, mgr.Config().MaxRecurLimit)
}

func TestManagerReloadIgnoresMissingFile(t *testing.T) {
	mgr, _ := newTestManager(t)
	before := *mgr.Config()

	mgr.reload()

	assert.Equal(t, before, *mgr.Config())
}

func TestPostgresDSN(t *testing.T) {
	cfg := DefaultConfigWithRoot(t.TempDir())
	cfg.PostgresPassword = "secret"

	dsn := cfg.PostgresDSN()
	for _, want := range []string{"host=localhost", "port=5432", "dbname=aletheia", "password=secret", "sslmode=disable"} {
		assert.True(t, strings.Contains(dsn, want), "dsn %q missing %q", dsn, want)
	}
}
