package unit

import (
	"time"

	fx "github.com/robotalks/rfdoor/pkg/framework"
	"github.com/robotalks/rfdoor/pkg/msgs"
)

// DefaultReportInterval is how often the status is posted unchanged.
const DefaultReportInterval = 30 * time.Second

// StatusSource provides the unit status.
type StatusSource interface {
	Status() *msgs.UnitStatus
}

// Reporter posts the status of Source when it changes and every Interval.
type Reporter struct {
	Source   StatusSource
	Interval time.Duration

	last     time.Time
	lastOpen bool
	posted   int
}

// NewReporter creates a Reporter.
func NewReporter() *Reporter {
	return &Reporter{Interval: DefaultReportInterval}
}

// Posted returns the number of status messages posted.
func (r *Reporter) Posted() int {
	return r.posted
}

// AddToLoop implements framework.LoopAdder.
func (r *Reporter) AddToLoop(l *fx.Loop) {
	l.AddController(fx.StageActuate, r)
}

// Control implements framework.Controller.
func (r *Reporter) Control(cc fx.ControlContext) error {
	if r.Source == nil {
		return nil
	}
	st := r.Source.Status()
	now := cc.Time()
	if !r.last.IsZero() && st.Open == r.lastOpen && now.Sub(r.last) < r.Interval {
		return nil
	}
	st.TimeUnixNano = now.UnixNano()
	r.last, r.lastOpen = now, st.Open
	r.posted++
	cc.Post(st)
	return nil
}
