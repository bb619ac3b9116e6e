package quoteform

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestRegistryLifecycle(t *testing.T) {
	reg := NewRegistry(Options{Advisor: &fakeAdvisor{result: dragonAdvice}})

	c := reg.Create()
	require.NotEmpty(t, c.ID())
	assert.Equal(t, 1, reg.Len())

	got, ok := reg.Get(c.ID())
	require.True(t, ok)
	assert.Same(t, c, got)

	assert.True(t, reg.Remove(c.ID()))
	assert.False(t, reg.Remove(c.ID()))
	_, ok = reg.Get(c.ID())
	assert.False(t, ok)
	assert.ErrorIs(t, c.SetField(FieldName, "x"), ErrFormClosed)
}

func TestRegistrySweepEvictsIdleForms(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)}
	reg := NewRegistry(Options{Advisor: &fakeAdvisor{result: dragonAdvice}, Now: clock.Now})

	stale := reg.Create()
	clock.Advance(90 * time.Minute)
	fresh := reg.Create()
	clock.Advance(40 * time.Minute)
	require.NoError(t, fresh.SetField(FieldName, "still typing"))

	evicted := reg.Sweep(2 * time.Hour)

	assert.Equal(t, 1, evicted)
	_, ok := reg.Get(stale.ID())
	assert.False(t, ok)
	_, ok = reg.Get(fresh.ID())
	assert.True(t, ok)
	assert.ErrorIs(t, stale.SetField(FieldName, "x"), ErrFormClosed)
}

func TestRegistryRunStopsWithContext(t *testing.T) {
	reg := NewRegistry(Options{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		reg.Run(ctx, time.Millisecond, time.Hour)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("registry sweeper did not stop")
	}
}
