package dataflows

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheRoundTrip(t *testing.T) {
	cache := NewCacheManager(t.TempDir(), time.Minute, true)

	in := map[string]int{"a": 1, "b": 2}
	require.NoError(t, cache.Set("test", "roundtrip", "key", in))

	var out map[string]int
	require.True(t, cache.Get("test", "roundtrip", "key", &out))
	assert.Equal(t, in, out)
}

func TestCacheExpiry(t *testing.T) {
	cache := NewCacheManager(t.TempDir(), 10*time.Millisecond, true)
	require.NoError(t, cache.Set("test", "expiry", "key", "value"))

	time.Sleep(30 * time.Millisecond)

	var out string
	assert.False(t, cache.Get("test", "expiry", "key", &out))
}

func TestCacheDisabled(t *testing.T) {
	cache := NewCacheManager(t.TempDir(), time.Minute, false)
	require.NoError(t, cache.Set("test", "disabled", "key", "value"))

	var out string
	assert.False(t, cache.Get("test", "disabled", "key", &out))
}

func TestWithRetryEventualSuccess(t *testing.T) {
	cfg := &RetryConfig{MaxRetries: 3, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, Multiplier: 2}

	attempts := 0
	err := WithRetry(cfg, func() error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestWithRetryExhaustion(t *testing.T) {
	cfg := &RetryConfig{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, Multiplier: 2}

	sentinel := errors.New("down")
	err := WithRetry(cfg, func() error { return sentinel })
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel)
}

func TestValidateSymbol(t *testing.T) {
	assert.NoError(t, ValidateSymbol("AAPL"))
	assert.NoError(t, ValidateSymbol(" nvda "))
	assert.Error(t, ValidateSymbol(""))
	assert.Error(t, ValidateSymbol("WAYTOOLONGSYMBOL"))
}
