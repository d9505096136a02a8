package framework

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/golang/glog"
)

// DefaultInterval is the loop period when Interval is not set.
const DefaultInterval = 10 * time.Millisecond

// Loop polls controllers stage by stage. Messages posted during an
// iteration are seen by the next one.
type Loop struct {
	Interval time.Duration
	// Now stamps iterations. Defaults to time.Now.
	Now func() time.Time
	// OnError is called with controller errors. Defaults to logging.
	OnError func(error)

	stages  [Stages]stage
	runners []Runnable

	lock   sync.Mutex
	queue  []Message
	wakeCh chan struct{}
	iters  uint64
}

// LoopAdder adds itself to a loop, usually a controller plus a runnable.
type LoopAdder interface {
	AddToLoop(*Loop)
}

type stage struct {
	lock     sync.Mutex
	ctls     []Controller
	deferred []Controller
}

type iteration struct {
	*Loop
	ctx   context.Context
	time  time.Time
	stage int
	inbox []Message
}

type ctxKey struct{}

// LoopControlFrom returns the loop that started ctx, or nil.
func LoopControlFrom(ctx context.Context) LoopControl {
	lc, _ := ctx.Value(ctxKey{}).(LoopControl)
	return lc
}

// NewLoop creates a Loop.
func NewLoop() *Loop {
	return &Loop{Interval: DefaultInterval, wakeCh: make(chan struct{}, 1)}
}

// Add adds LoopAdders.
func (l *Loop) Add(adders ...LoopAdder) *Loop {
	for _, adder := range adders {
		adder.AddToLoop(l)
	}
	return l
}

// AddController adds controllers to a stage. Controllers that are also
// Runnable are started with the loop.
func (l *Loop) AddController(stage int, ctls ...Controller) *Loop {
	l.stages[stage].ctls = append(l.stages[stage].ctls, ctls...)
	for _, ctl := range ctls {
		if r, ok := ctl.(Runnable); ok {
			l.runners = append(l.runners, r)
		}
	}
	return l
}

// AddRunnable adds background runnables started with the loop.
func (l *Loop) AddRunnable(runnables ...Runnable) *Loop {
	l.runners = append(l.runners, runnables...)
	return l
}

// Iterations returns the number of iterations run.
func (l *Loop) Iterations() uint64 {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.iters
}

// Run implements Runnable. It starts the runnables and iterates every
// Interval until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	if l.wakeCh == nil {
		l.wakeCh = make(chan struct{}, 1)
	}
	runner := NewRunnerWith(context.WithValue(ctx, ctxKey{}, LoopControl(l)))
	runner.Go(l.runners...)
	defer runner.Wait()

	interval := l.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		case <-l.wakeCh:
		}
		l.Step(ctx)
	}
}

// RunOrFail runs the loop until it fails, then exits.
func (l *Loop) RunOrFail() {
	if err := l.Run(context.Background()); err != nil {
		log.Fatalln(err)
	}
}

// Step runs a single iteration on the calling goroutine. Simulated
// benches call it directly instead of Run.
func (l *Loop) Step(ctx context.Context) {
	now := time.Now
	if l.Now != nil {
		now = l.Now
	}
	iter := &iteration{Loop: l, time: now()}
	l.lock.Lock()
	iter.inbox, l.queue = l.queue, nil
	l.iters++
	l.lock.Unlock()
	iter.ctx = context.WithValue(ctx, ctxKey{}, LoopControl(iter))
	for n := range l.stages {
		iter.stage = n
		l.stages[n].run(iter)
	}
	if len(iter.inbox) > 0 {
		glog.V(3).Infof("loop: %d messages not taken", len(iter.inbox))
	}
}

// Post implements LoopControl.
func (l *Loop) Post(msg Message) {
	l.lock.Lock()
	l.queue = append(l.queue, msg)
	l.lock.Unlock()
}

// Defer implements LoopControl.
func (l *Loop) Defer(stage int, ctls ...Controller) {
	s := &l.stages[stage]
	s.lock.Lock()
	s.deferred = append(s.deferred, ctls...)
	s.lock.Unlock()
}

// TriggerNext implements LoopControl.
func (l *Loop) TriggerNext() {
	select {
	case l.wakeCh <- struct{}{}:
	default:
	}
}

func (l *Loop) failed(err error) {
	if l.OnError != nil {
		l.OnError(err)
		return
	}
	glog.Errorf("controller error: %v", err)
}

func (s *stage) run(iter *iteration) {
	for _, ctl := range s.ctls {
		if err := ctl.Control(iter); err != nil {
			iter.failed(err)
		}
	}
	s.lock.Lock()
	deferred := s.deferred
	s.deferred = nil
	s.lock.Unlock()
	for _, ctl := range deferred {
		if err := ctl.Control(iter); err != nil {
			iter.failed(err)
		}
	}
}

func (t *iteration) Context() context.Context { return t.ctx }
func (t *iteration) Time() time.Time          { return t.time }
func (t *iteration) Stage() int               { return t.stage }
func (t *iteration) Messages() Inbox          { return t }
func (t *iteration) Len() int                 { return len(t.inbox) }

func (t *iteration) Each(fn func(Message) bool) {
	remains := t.inbox[:0]
	for _, msg := range t.inbox {
		if !fn(msg) {
			remains = append(remains, msg)
		}
	}
	for n := len(remains); n < len(t.inbox); n++ {
		t.inbox[n] = nil
	}
	t.inbox = remains
}
