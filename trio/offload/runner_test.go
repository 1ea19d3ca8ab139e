package offload

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitDeliversValue(t *testing.T) {
	r := NewRunner(2, 4)
	defer r.Close()

	fut, err := r.Submit(context.Background(), func() (interface{}, error) {
		return 42, nil
	})
	require.NoError(t, err)

	value, err := fut.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, value)
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", fut.ID().String())
}

func TestSubmitDeliversErrorUnchanged(t *testing.T) {
	r := NewRunner(2, 4)
	defer r.Close()

	sentinel := errors.New("disk on fire")
	fut, err := r.Submit(context.Background(), func() (interface{}, error) {
		return nil, sentinel
	})
	require.NoError(t, err)

	_, err = fut.Await(context.Background())
	assert.ErrorIs(t, err, sentinel)
}

func TestJobsRunConcurrently(t *testing.T) {
	r := NewRunner(2, 4)
	defer r.Close()

	started := make(chan struct{}, 2)
	release := make(chan struct{})
	job := func() (interface{}, error) {
		started <- struct{}{}
		<-release
		return nil, nil
	}

	futA, err := r.Submit(context.Background(), job)
	require.NoError(t, err)
	futB, err := r.Submit(context.Background(), job)
	require.NoError(t, err)

	// Both jobs must be in flight at once; neither blocks the other.
	for i := 0; i < 2; i++ {
		select {
		case <-started:
		case <-time.After(2 * time.Second):
			t.Fatal("jobs did not start concurrently")
		}
	}
	close(release)

	_, err = futA.Await(context.Background())
	require.NoError(t, err)
	_, err = futB.Await(context.Background())
	require.NoError(t, err)
}

func TestAwaitHonorsCancellation(t *testing.T) {
	r := NewRunner(1, 4)

	release := make(chan struct{})
	fut, err := r.Submit(context.Background(), func() (interface{}, error) {
		<-release
		return "late", nil
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = fut.Await(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	// The in-flight job is not interrupted; it completes on its worker.
	close(release)
	value, err := fut.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "late", value)

	r.Close()
}

func TestSubmitAfterCloseFails(t *testing.T) {
	r := NewRunner(1, 1)
	r.Close()

	_, err := r.Submit(context.Background(), func() (interface{}, error) {
		return nil, nil
	})
	assert.ErrorIs(t, err, ErrRunnerClosed)
}

func TestCloseIsIdempotent(t *testing.T) {
	r := NewRunner(1, 1)
	r.Close()
	r.Close()
}

func TestDefaultRunnerIsShared(t *testing.T) {
	assert.Same(t, Default(), Default())
}
