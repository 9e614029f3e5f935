package sender

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnqueueRunsJobs(t *testing.T) {
	d := NewDispatcher(Options{Workers: 2, QueueSize: 8})

	var ran atomic.Int32
	for i := 0; i < 5; i++ {
		err := d.Enqueue(context.Background(), "send", func() error {
			ran.Add(1)
			return nil
		})
		require.NoError(t, err)
	}
	d.Close()
	assert.Equal(t, int32(5), ran.Load())
}

func TestEnqueueAfterCloseFails(t *testing.T) {
	d := NewDispatcher(Options{Workers: 1})
	d.Close()

	err := d.Enqueue(context.Background(), "send", func() error { return nil })
	assert.ErrorIs(t, err, ErrQueueClosed)
}

func TestEnqueueNeverBlocks(t *testing.T) {
	d := NewDispatcher(Options{Workers: 1, QueueSize: 1})

	release := make(chan struct{})
	blocker := func() error {
		<-release
		return nil
	}
	// Fill the worker and the queue, then expect ErrQueueFull instead of a hang.
	require.NoError(t, d.Enqueue(context.Background(), "send", blocker))

	var sawFull bool
	for i := 0; i < 10; i++ {
		if err := d.Enqueue(context.Background(), "send", blocker); errors.Is(err, ErrQueueFull) {
			sawFull = true
			break
		}
	}
	assert.True(t, sawFull)

	close(release)
	d.Close()
}

func TestRetriesTransientErrors(t *testing.T) {
	transient := errors.New("timeout")
	d := NewDispatcher(Options{
		Workers:      1,
		MaxRetries:   3,
		RetryBackoff: time.Millisecond,
		ShouldRetry:  func(err error) bool { return errors.Is(err, transient) },
	})

	var attempts atomic.Int32
	require.NoError(t, d.Enqueue(context.Background(), "send", func() error {
		if attempts.Add(1) < 3 {
			return transient
		}
		return nil
	}))
	d.Close()
	assert.Equal(t, int32(3), attempts.Load())
}

func TestNoRetryOnPermanentError(t *testing.T) {
	transient := errors.New("timeout")
	d := NewDispatcher(Options{
		Workers:      1,
		MaxRetries:   3,
		RetryBackoff: time.Millisecond,
		ShouldRetry:  func(err error) bool { return errors.Is(err, transient) },
	})

	var attempts atomic.Int32
	require.NoError(t, d.Enqueue(context.Background(), "send", func() error {
		attempts.Add(1)
		return errors.New("bad request")
	}))
	d.Close()
	assert.Equal(t, int32(1), attempts.Load())
}
