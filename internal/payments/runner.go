package payments

import (
	"context"
	"sync"
	"time"
)

// Runner drives a session with two independent timers: a countdown that
// ticks every countdown interval and a poller that checks the gateway every
// poll interval, starting immediately. Both stop when the session becomes
// terminal or the runner is stopped.
type Runner struct {
	session *Session
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	once    sync.Once
}

// StartRunner launches the timers. parent only scopes values; cancelling it
// also stops the runner.
func StartRunner(parent context.Context, s *Session, countdown, poll time.Duration) *Runner {
	ctx, cancel := context.WithCancel(parent)
	r := &Runner{session: s, cancel: cancel}

	r.wg.Add(2)
	go r.loop(ctx, countdown, false, func(context.Context) { s.Tick() })
	go r.loop(ctx, poll, true, func(ctx context.Context) { s.Poll(ctx) })
	return r
}

func (r *Runner) loop(ctx context.Context, every time.Duration, immediate bool, fn func(context.Context)) {
	defer r.wg.Done()

	if immediate {
		select {
		case <-ctx.Done():
			return
		case <-r.session.Done():
			return
		default:
			fn(ctx)
		}
	}

	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.session.Done():
			return
		case <-ticker.C:
			fn(ctx)
		}
	}
}

// Stop cancels both timers, waits for them to exit and disposes the session.
// It returns ctx.Err() if ctx ends first; the session is disposed either way.
func (r *Runner) Stop(ctx context.Context) error {
	var err error
	r.once.Do(func() {
		r.cancel()
		exited := make(chan struct{})
		go func() {
			r.wg.Wait()
			close(exited)
		}()
		select {
		case <-exited:
		case <-ctx.Done():
			err = ctx.Err()
		}
		r.session.dispose()
	})
	return err
}
