package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRefresher struct {
	mu    sync.Mutex
	calls int
	fired chan struct{}
}

func (r *countingRefresher) Refresh(ctx context.Context) error {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	select {
	case r.fired <- struct{}{}:
	default:
	}
	return nil
}

func TestRefreshScheduler_InvalidSpec(t *testing.T) {
	store := &countingRefresher{fired: make(chan struct{}, 1)}
	s := NewRefreshScheduler(store, "not a cron spec")

	err := s.Start()
	assert.Error(t, err)
}

func TestRefreshScheduler_FiresOnSchedule(t *testing.T) {
	store := &countingRefresher{fired: make(chan struct{}, 1)}
	s := NewRefreshScheduler(store, "@every 1s")

	require.NoError(t, s.Start())
	defer s.Stop()

	select {
	case <-store.fired:
	case <-time.After(3 * time.Second):
		t.Fatal("scheduled refresh did not fire")
	}
}

func TestRefreshScheduler_StopPreventsFurtherRuns(t *testing.T) {
	store := &countingRefresher{fired: make(chan struct{}, 1)}
	s := NewRefreshScheduler(store, "@every 1s")

	require.NoError(t, s.Start())
	s.Stop()

	store.mu.Lock()
	before := store.calls
	store.mu.Unlock()

	time.Sleep(1500 * time.Millisecond)

	store.mu.Lock()
	after := store.calls
	store.mu.Unlock()

	assert.Equal(t, before, after)
}
