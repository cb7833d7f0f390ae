package invest

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReloader_Trigger(t *testing.T) {
	var mu sync.Mutex
	var msgs []string
	r := NewReloader(func(ctx context.Context, status func(string)) error {
		status("Loading transactions")
		return nil
	}, func(s string) {
		mu.Lock()
		defer mu.Unlock()
		msgs = append(msgs, s)
	}, zerolog.Nop())
	defer r.Stop()

	assert.NoError(t, <-r.Trigger(context.Background()))
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"Loading transactions"}, msgs)
}

func TestReloader_Error(t *testing.T) {
	boom := errors.New("boom")
	r := NewReloader(func(ctx context.Context, status func(string)) error { return boom }, nil, zerolog.Nop())
	defer r.Stop()
	assert.ErrorIs(t, <-r.Trigger(context.Background()), boom)
}

func TestReloader_Replace(t *testing.T) {
	started := make(chan struct{}, 2)
	var running, maxRunning atomic.Int32
	r := NewReloader(func(ctx context.Context, status func(string)) error {
		n := running.Add(1)
		defer running.Add(-1)
		if n > maxRunning.Load() {
			maxRunning.Store(n)
		}
		started <- struct{}{}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(50 * time.Millisecond):
			return nil
		}
	}, nil, zerolog.Nop())
	defer r.Stop()

	first := r.Trigger(context.Background())
	<-started
	second := r.Trigger(context.Background())

	assert.ErrorIs(t, <-first, context.Canceled, "the in flight reload is cancelled")
	assert.NoError(t, <-second)
	assert.Equal(t, int32(1), maxRunning.Load(), "one reload at a time")
}

func TestReloader_Superseded(t *testing.T) {
	block := make(chan struct{})
	var calls atomic.Int32
	r := NewReloader(func(ctx context.Context, status func(string)) error {
		if calls.Add(1) == 1 {
			<-block
		}
		return nil
	}, nil, zerolog.Nop())
	defer r.Stop()

	first := r.Trigger(context.Background())
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)
	second := r.Trigger(context.Background())
	third := r.Trigger(context.Background())
	close(block)

	assert.ErrorIs(t, <-first, context.Canceled, "cancelled even though it ignored ctx")
	assert.ErrorIs(t, <-second, context.Canceled, "superseded before it started")
	assert.NoError(t, <-third)
	assert.Equal(t, int32(2), calls.Load())
}

func TestReloader_Schedule(t *testing.T) {
	var calls atomic.Int32
	r := NewReloader(func(ctx context.Context, status func(string)) error {
		calls.Add(1)
		return nil
	}, nil, zerolog.Nop())

	assert.Error(t, r.Schedule("not a schedule"))
	require.NoError(t, r.Schedule("@every 1s"))
	require.Eventually(t, func() bool { return calls.Load() > 0 }, 3*time.Second, 10*time.Millisecond)

	r.Stop()
	assert.ErrorIs(t, <-r.Trigger(context.Background()), ErrStopped)
	assert.ErrorIs(t, r.Schedule("@every 1s"), ErrStopped)
}
