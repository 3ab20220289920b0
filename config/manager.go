package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Manager reloads configuration when the .env file changes. A reload
// that fails to parse or validate is dropped and the previous
// configuration stays active.
type Manager struct {
	path     string
	debounce time.Duration

	mu       sync.RWMutex
	cfg      *Config
	onChange func(*Config)
	watcher  *fsnotify.Watcher
}

type ManagerOption func(*Manager)

// WithEnvPath overrides the watched file, default <project>/.env.
func WithEnvPath(path string) ManagerOption {
	return func(m *Manager) {
		if path != "" {
			m.path = path
		}
	}
}

// WithDebounce changes the reload debounce window.
func WithDebounce(d time.Duration) ManagerOption {
	return func(m *Manager) {
		if d > 0 {
			m.debounce = d
		}
	}
}

// NewManager wraps an already loaded config with a .env watcher.
func NewManager(cfg *Config, opts ...ManagerOption) *Manager {
	m := &Manager{
		path:     filepath.Join(cfg.ProjectDir, ".env"),
		debounce: 300 * time.Millisecond,
		cfg:      cfg,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Config returns the currently active configuration.
func (m *Manager) Config() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}

// Path returns the watched file.
func (m *Manager) Path() string {
	return m.path
}

// Watch starts the file watcher and invokes onChange after every
// accepted reload. The watcher stops when ctx is canceled.
func (m *Manager) Watch(ctx context.Context, onChange func(*Config)) error {
	m.mu.Lock()
	m.onChange = onChange
	if m.watcher != nil {
		m.mu.Unlock()
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		m.mu.Unlock()
		return err
	}
	m.watcher = watcher
	m.mu.Unlock()

	// Watch the directory: editors and deploy tooling replace the file
	// by rename, which drops a watch placed on the file itself.
	if err := watcher.Add(filepath.Dir(m.path)); err != nil {
		return err
	}

	go m.watchLoop(ctx, watcher)
	return nil
}

func (m *Manager) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer watcher.Close()

	var timerMu sync.Mutex
	var timer *time.Timer
	trigger := func() {
		timerMu.Lock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(m.debounce, m.reload)
		timerMu.Unlock()
	}

	for {
		select {
		case evt, ok := <-watcher.Events:
			if !ok {
				return
			}
			if m.isEnvEvent(evt) {
				trigger()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			if err != nil {
				log.Warn().Err(err).Msg("env watcher error")
			}
		case <-ctx.Done():
			return
		}
	}
}

func (m *Manager) isEnvEvent(evt fsnotify.Event) bool {
	if filepath.Clean(evt.Name) != filepath.Clean(m.path) {
		return false
	}
	return evt.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

func (m *Manager) reload() {
	vals, err := godotenv.Read(m.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Warn().Err(err).Str("path", m.path).Msg("env reload failed")
		}
		return
	}

	m.mu.RLock()
	prev := m.cfg
	m.mu.RUnlock()

	next := DefaultConfigWithRoot(prev.ProjectDir)
	next.applyEnv(func(key string) string {
		if v, ok := vals[key]; ok {
			return v
		}
		return os.Getenv(key)
	})
	if err := next.Validate(); err != nil {
		log.Warn().Err(err).Str("path", m.path).Msg("reloaded config invalid, keeping previous")
		return
	}

	m.mu.Lock()
	if reflect.DeepEqual(*m.cfg, *next) {
		m.mu.Unlock()
		return
	}
	m.cfg = next
	cb := m.onChange
	m.mu.Unlock()

	log.Info().Str("path", m.path).Msg("configuration reloaded")
	if cb != nil {
		cb(next)
	}
}
