package memory

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemorySessionWindow(t *testing.T) {
	store := NewInMemorySessionStore()
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		role := "user"
		if i%2 == 1 {
			role = "assistant"
		}
		err := store.Append(ctx, "s1", &Turn{Role: role, Content: fmt.Sprintf("turn %d", i)})
		require.NoError(t, err)
	}

	window, err := store.Window(ctx, "s1", 10)
	require.NoError(t, err)
	require.Len(t, window, 10)
	assert.Equal(t, "turn 5", window[0].Content)
	assert.Equal(t, "turn 14", window[9].Content)
	assert.False(t, window[0].At.IsZero())
}

func TestInMemorySessionIsolationAndClear(t *testing.T) {
	store := NewInMemorySessionStore()
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "a", &Turn{Role: "user", Content: "hello"}))
	require.NoError(t, store.Append(ctx, "b", &Turn{Role: "user", Content: "world"}))

	windowA, err := store.Window(ctx, "a", 10)
	require.NoError(t, err)
	require.Len(t, windowA, 1)
	assert.Equal(t, "hello", windowA[0].Content)

	require.NoError(t, store.Clear(ctx, "a"))
	windowA, err = store.Window(ctx, "a", 10)
	require.NoError(t, err)
	assert.Empty(t, windowA)

	windowB, err := store.Window(ctx, "b", 10)
	require.NoError(t, err)
	assert.Len(t, windowB, 1)
}
