package statestore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gobbyhq/warden/workflow"
)

func newTestState(sessionID string) *workflow.State {
	state := workflow.NewState(sessionID, "coder", "plan",
		time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC))
	state.SetVariable("task_claimed", true)
	return state
}

func TestMemoryStore_SaveAndGet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, newTestState("s1")))

	got, ok := store.Get(ctx, "s1")
	require.True(t, ok)
	assert.Equal(t, "s1", got.SessionID)
	assert.Equal(t, "coder", got.WorkflowName)
	assert.Equal(t, "plan", got.Step)
	assert.Equal(t, true, got.Variable("task_claimed"))
}

func TestMemoryStore_GetMissing(t *testing.T) {
	store := NewMemoryStore()

	got, ok := store.Get(context.Background(), "nope")
	assert.False(t, ok)
	assert.Nil(t, got)

	got, ok = store.Get(context.Background(), "")
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestMemoryStore_SaveValidation(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	assert.ErrorIs(t, store.Save(ctx, nil), ErrInvalidState)
	assert.ErrorIs(t, store.Save(ctx, &workflow.State{}), ErrInvalidID)
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, newTestState("s1")))

	first, ok := store.Get(ctx, "s1")
	require.True(t, ok)
	first.Step = "working"
	first.SetVariable("task_claimed", false)

	second, ok := store.Get(ctx, "s1")
	require.True(t, ok)
	assert.Equal(t, "plan", second.Step)
	assert.Equal(t, true, second.Variable("task_claimed"))
}

func TestMemoryStore_SaveStoresCopy(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	state := newTestState("s1")
	require.NoError(t, store.Save(ctx, state))
	state.Step = "working"

	got, ok := store.Get(ctx, "s1")
	require.True(t, ok)
	assert.Equal(t, "plan", got.Step)
}

func TestMemoryStore_Delete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, newTestState("s1")))

	require.NoError(t, store.Delete(ctx, "s1"))
	_, ok := store.Get(ctx, "s1")
	assert.False(t, ok)

	assert.ErrorIs(t, store.Delete(ctx, "s1"), ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, ""), ErrInvalidID)
}

func TestMemoryStore_List(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, newTestState("s2")))
	require.NoError(t, store.Save(ctx, newTestState("s1")))

	assert.Equal(t, []string{"s1", "s2"}, store.List(ctx))
}

func TestMemoryStore_SaveCount(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	assert.Equal(t, 0, store.SaveCount())
	require.NoError(t, store.Save(ctx, newTestState("s1")))
	require.NoError(t, store.Save(ctx, newTestState("s1")))
	assert.Equal(t, 2, store.SaveCount())
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = store.Save(ctx, newTestState("s1"))
		}()
		go func() {
			defer wg.Done()
			store.Get(ctx, "s1")
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, store.SaveCount())
}
