package workers

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sync/atomic"
	"testing"
	"time"
)

func TestPool_RunsTasks(t *testing.T) {
	p := New(4, 16)

	var n atomic.Int32
	for range 10 {
		require.NoError(t, p.Submit(func() { n.Add(1) }))
	}
	p.Stop()

	assert.Equal(t, int32(10), n.Load())
}

func TestPool_QueueFull(t *testing.T) {
	p := New(1, 1)
	release := make(chan struct{})
	started := make(chan struct{})

	require.NoError(t, p.Submit(func() { close(started); <-release }))
	<-started
	require.NoError(t, p.Submit(func() {}))
	assert.ErrorIs(t, p.Submit(func() {}), ErrQueueFull)

	close(release)
	p.Stop()
}

func TestPool_SlowTaskDoesNotBlockOthers(t *testing.T) {
	p := New(2, 8)
	release := make(chan struct{})
	done := make(chan struct{})

	require.NoError(t, p.Submit(func() { <-release }))
	require.NoError(t, p.Submit(func() { close(done) }))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("second task was blocked by the first")
	}

	close(release)
	p.Stop()
}

func TestPool_SubmitAfterStop(t *testing.T) {
	p := New(1, 1)
	p.Stop()
	p.Stop()

	assert.ErrorIs(t, p.Submit(func() {}), ErrStopped)
}
