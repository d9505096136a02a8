package periph

import (
	"sync"
	"time"
)

// Timer implements hal.Timer with a goroutine per run.
type Timer struct {
	lock sync.Mutex
	stop chan struct{}
}

// Start implements hal.Timer.
func (t *Timer) Start(first, period time.Duration, fn func()) {
	t.lock.Lock()
	if t.stop != nil {
		close(t.stop)
	}
	stop := make(chan struct{})
	t.stop = stop
	t.lock.Unlock()

	go func() {
		next := time.Now().Add(first)
		for {
			wait := time.NewTimer(time.Until(next))
			select {
			case <-stop:
				wait.Stop()
				return
			case <-wait.C:
			}
			select {
			case <-stop:
				return
			default:
			}
			fn()
			if period <= 0 {
				t.release(stop)
				return
			}
			// keep the schedule anchored to avoid drift
			next = next.Add(period)
		}
	}()
}

// Stop implements hal.Timer.
func (t *Timer) Stop() {
	t.lock.Lock()
	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
	t.lock.Unlock()
}

func (t *Timer) release(stop chan struct{}) {
	t.lock.Lock()
	if t.stop == stop {
		close(t.stop)
		t.stop = nil
	}
	t.lock.Unlock()
}
