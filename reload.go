package invest

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// ReloadFunc is a reload task. It must return promptly once ctx is done.
type ReloadFunc func(ctx context.Context, status func(string)) error

// ErrStopped is reported by triggers of a stopped Reloader.
var ErrStopped = errors.New("reloader stopped")

// Reloader runs a reload task in the background, one at a time.
//
// Triggering a reload while one is in flight cancels the in flight one, and
// starts the new one once the previous task has returned.
type Reloader struct {
	task   ReloadFunc
	status func(string)
	log    zerolog.Logger

	mu       sync.Mutex
	cancel   context.CancelFunc // of the last triggered task
	finished chan struct{}      // closed when the last triggered task has returned
	cron     *cron.Cron
	stopped  bool
}

// NewReloader returns a Reloader of task. status receives the task messages, it may be nil.
func NewReloader(task ReloadFunc, status func(string), log zerolog.Logger) *Reloader {
	if status == nil {
		status = func(string) {}
	}
	return &Reloader{
		task:   task,
		status: status,
		log:    log.With().Str("component", "reloader").Logger(),
	}
}

// Trigger starts a reload and returns a channel that receives its result
// exactly once. A superseded reload reports context.Canceled.
func (r *Reloader) Trigger(ctx context.Context) <-chan error {
	done := make(chan error, 1)

	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		done <- ErrStopped
		return done
	}
	if r.cancel != nil {
		r.cancel()
	}
	previous := r.finished
	ctx, cancel := context.WithCancel(ctx)
	finished := make(chan struct{})
	r.cancel, r.finished = cancel, finished
	r.mu.Unlock()

	id := uuid.NewString()
	log := r.log.With().Str("run", id).Logger()
	go func() {
		defer close(finished)
		defer cancel()
		if previous != nil {
			<-previous
		}
		if err := ctx.Err(); err != nil {
			log.Debug().Msg("reload superseded before start")
			done <- err
			return
		}

		log.Info().Msg("reload started")
		err := r.task(ctx, func(msg string) {
			log.Debug().Msg(msg)
			r.status(msg)
		})
		if err == nil {
			err = ctx.Err()
		}
		if err != nil {
			log.Error().Err(err).Msg("reload failed")
		} else {
			log.Info().Msg("reload done")
		}
		done <- err
	}()
	return done
}

// Schedule triggers a reload on a cron schedule (with seconds), like "0 */15 * * * *" or "@every 1h".
func (r *Reloader) Schedule(spec string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return ErrStopped
	}
	if r.cron == nil {
		r.cron = cron.New(cron.WithSeconds())
		r.cron.Start()
	}
	_, err := r.cron.AddFunc(spec, func() {
		if err := <-r.Trigger(context.Background()); err != nil && !errors.Is(err, context.Canceled) {
			r.status("Reload failed: " + err.Error())
		}
	})
	if err != nil {
		return err
	}
	r.log.Info().Str("schedule", spec).Msg("reload scheduled")
	return nil
}

// Stop stops the schedule, cancels the in flight reload and waits for it to return.
func (r *Reloader) Stop() {
	r.mu.Lock()
	r.stopped = true
	c, cancel, finished := r.cron, r.cancel, r.finished
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if c != nil {
		<-c.Stop().Done()
	}
	if finished != nil {
		<-finished
	}
}
