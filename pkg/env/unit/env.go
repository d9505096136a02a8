// Package unit sets up the environment of a door unit: hardware from
// the unit config and the sinks its events are reported to.
package unit

import (
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/golang/glog"

	"github.com/robotalks/rfdoor/pkg/comm"
	"github.com/robotalks/rfdoor/pkg/comm/cache"
	"github.com/robotalks/rfdoor/pkg/comm/mqtt"
	"github.com/robotalks/rfdoor/pkg/comm/stream"
	"github.com/robotalks/rfdoor/pkg/config"
	fx "github.com/robotalks/rfdoor/pkg/framework"
	"github.com/robotalks/rfdoor/pkg/hal"
	"github.com/robotalks/rfdoor/pkg/hal/periph"
	"github.com/robotalks/rfdoor/pkg/msgs"
)

// Controller is the door logic of a unit, door.Receiver or
// door.Transmitter.
type Controller interface {
	fx.LoopAdder
	Init() error
	Status() *msgs.UnitStatus
}

// Env is the env of a unit.
type Env struct {
	Config    *config.Config
	Hardware  *config.Hardware
	Announcer *mqtt.Announcer
	Capture   *comm.EventSink
	Cache     *cache.Redis
	Reporter  *Reporter

	closers []io.Closer
}

// NewEnv opens the unit on board and the configured event sinks.
func NewEnv(conf *config.Config, board hal.Board) (*Env, error) {
	hw, err := conf.Open(board)
	if err != nil {
		return nil, err
	}
	if err = hw.Init(); err != nil {
		return nil, err
	}
	e := &Env{Config: conf, Hardware: hw, Reporter: NewReporter()}
	if conf.Events.Capture != "" {
		f, err := os.OpenFile(conf.Events.Capture, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("open capture: %w", err)
		}
		e.closers = append(e.closers, f)
		e.Capture = comm.NewEventSink(stream.NewWriter(f))
		e.Capture.Keep = true
	}
	if conf.Events.Redis != "" {
		e.Cache = cache.NewRedis(conf.Events.Redis)
		e.closers = append(e.closers, e.Cache)
	}
	if conf.Events.MQTTURL != "" {
		if e.Announcer, err = mqtt.NewAnnouncer(conf.Events.MQTTURL, conf.UnitID(), e.Meta()); err != nil {
			e.Close()
			return nil, fmt.Errorf("create MQTT announcer error: %v", err)
		}
	}
	return e, nil
}

// MustNewEnv opens the unit on the host GPIO and fails on error.
func MustNewEnv(conf *config.Config) *Env {
	board, err := periph.Open()
	if err != nil {
		log.Fatalln(err)
	}
	e, err := NewEnv(conf, board)
	if err != nil {
		log.Fatalln(err)
	}
	return e
}

// Meta describes the unit on the broker.
func (e *Env) Meta() mqtt.UnitMeta {
	conf := e.Config
	meta := mqtt.UnitMeta{
		Role:        conf.Unit.Role,
		Description: conf.Unit.Description,
		Labels: map[string]string{
			"channel": strconv.Itoa(conf.Radio.Channel),
			"address": conf.Radio.Address,
		},
	}
	if e.Hardware != nil {
		meta.Config = e.Hardware.Params().Word().String()
	}
	return meta
}

// Controller creates the door logic for the unit role.
func (e *Env) Controller() (Controller, error) {
	var (
		ctl Controller
		err error
	)
	if e.Config.Unit.Role == config.RoleTransmitter {
		ctl = e.Config.NewTransmitter(e.Hardware)
	} else if ctl, err = e.Config.NewReceiver(e.Hardware); err != nil {
		return nil, err
	}
	if err = ctl.Init(); err != nil {
		return nil, err
	}
	e.Reporter.Source = ctl
	return ctl, nil
}

// MustController is Controller failing on error.
func (e *Env) MustController() Controller {
	ctl, err := e.Controller()
	if err != nil {
		log.Fatalln(err)
	}
	return ctl
}

// Diagnostic creates a diagnostic mode. The reporter is left without a
// source.
func (e *Env) Diagnostic(mode string) (config.Diagnostic, error) {
	return e.Config.NewDiagnostic(mode, e.Hardware)
}

// MustDiagnostic is Diagnostic failing on error.
func (e *Env) MustDiagnostic(mode string) config.Diagnostic {
	d, err := e.Diagnostic(mode)
	if err != nil {
		log.Fatalln(err)
	}
	return d
}

// AddToLoop adds the reporter and the sinks. The capture and the cache
// see messages before the broker takes them.
func (e *Env) AddToLoop(l *fx.Loop) {
	l.Interval = e.Config.Door.PollInterval
	l.Add(e.Reporter)
	if e.Capture != nil {
		l.Add(e.Capture)
	}
	if e.Cache != nil {
		l.AddController(fx.StageReport, &cacheSink{store: e.Cache})
	}
	if e.Announcer != nil {
		l.Add(e.Announcer)
	}
}

// Close releases files and connections.
func (e *Env) Close() error {
	var errs fx.AggregatedError
	for _, c := range e.closers {
		errs.Add(c.Close())
	}
	e.closers = nil
	return errs.Aggregate()
}

// cacheSink stores UnitStatus messages and leaves them in the loop.
type cacheSink struct {
	store cache.Store
}

func (s *cacheSink) Control(cc fx.ControlContext) error {
	cc.Messages().Each(func(m fx.Message) bool {
		if st, ok := m.(*msgs.UnitStatus); ok {
			if err := s.store.Put(st); err != nil {
				glog.Warningf("cache status %s: %v", st.Unit, err)
			}
		}
		return false
	})
	return nil
}
