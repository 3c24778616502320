package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_ShutdownStopsWorkers(t *testing.T) {
	m := NewManager(context.Background())

	var stopped atomic.Int32
	for _, name := range []string{"b", "a"} {
		m.Go(name, func(ctx context.Context) {
			<-ctx.Done()
			stopped.Add(1)
		})
	}
	assert.Equal(t, []string{"a", "b"}, m.Names())

	require.NoError(t, m.Shutdown(time.Second))
	assert.Equal(t, int32(2), stopped.Load())
	assert.Empty(t, m.Names())
}

func TestManager_ReplaceAndStop(t *testing.T) {
	m := NewManager(context.Background())

	first := make(chan struct{})
	m.Go("w", func(ctx context.Context) {
		<-ctx.Done()
		close(first)
	})
	m.Go("w", func(ctx context.Context) { <-ctx.Done() })

	select {
	case <-first:
	case <-time.After(time.Second):
		t.Fatal("replaced worker was not cancelled")
	}
	assert.Equal(t, []string{"w"}, m.Names())

	m.Stop("w")
	assert.Empty(t, m.Names())
	require.NoError(t, m.Shutdown(time.Second))
}

func TestManager_RecoversPanics(t *testing.T) {
	m := NewManager(context.Background())
	m.Go("boom", func(context.Context) { panic("boom") })

	require.NoError(t, m.Shutdown(time.Second))
	assert.Empty(t, m.Names())
}

func TestManager_ShutdownTimeout(t *testing.T) {
	m := NewManager(context.Background())
	release := make(chan struct{})
	m.Go("stuck", func(context.Context) { <-release })

	assert.ErrorIs(t, m.Shutdown(10*time.Millisecond), context.DeadlineExceeded)
	close(release)
}
