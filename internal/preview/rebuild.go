package preview

import (
	"context"
	"sync"
	"time"
)

const defaultDebounce = 300 * time.Millisecond

// debouncer coalesces bursts of triggers into one request on ch.
type debouncer struct {
	delay time.Duration
	ch    chan struct{}

	mu     sync.Mutex
	timer  *time.Timer
	closed bool
}

func newDebouncer(delay time.Duration) *debouncer {
	if delay <= 0 {
		delay = defaultDebounce
	}
	return &debouncer{delay: delay, ch: make(chan struct{}, 1)}
}

func (d *debouncer) trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fire)
}

func (d *debouncer) fire() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	select {
	case d.ch <- struct{}{}:
	default:
	}
}

// close stops pending timers and closes the request channel.
func (d *debouncer) close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.closed = true
	if d.timer != nil {
		d.timer.Stop()
	}
	close(d.ch)
}

// startRebuildWorker runs rebuild once per request, never concurrently.
// Requests arriving during a rebuild collapse into one follow-up run.
// The returned channel closes when the worker exits.
func startRebuildWorker(ctx context.Context, requests <-chan struct{}, rebuild func()) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-requests:
				if !ok {
					return
				}
				if ctx.Err() != nil {
					return
				}
				rebuild()
			}
		}
	}()
	return done
}
