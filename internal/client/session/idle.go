package session

import (
	"context"
	"time"
)

// IdleWatcher calls onIdle once no Touch has arrived for timeout. After
// firing it stays quiet until the next Touch re-arms it.
type IdleWatcher struct {
	timeout time.Duration
	onIdle  func(ctx context.Context)
	touch   chan struct{}
}

func NewIdleWatcher(timeout time.Duration, onIdle func(ctx context.Context)) *IdleWatcher {
	return &IdleWatcher{
		timeout: timeout,
		onIdle:  onIdle,
		touch:   make(chan struct{}, 1),
	}
}

// Touch records user activity. It never blocks.
func (w *IdleWatcher) Touch() {
	select {
	case w.touch <- struct{}{}:
	default:
	}
}

// Run watches until ctx is done; cancelling ctx stops the timer.
func (w *IdleWatcher) Run(ctx context.Context) {
	if w.timeout <= 0 {
		<-ctx.Done()
		return
	}

	timer := time.NewTimer(w.timeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.touch:
			timer.Reset(w.timeout)
		case <-timer.C:
			w.onIdle(ctx)
		}
	}
}
