package mqtt

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/rfdoor/pkg/framework"
	"github.com/robotalks/rfdoor/pkg/comm"
	"github.com/robotalks/rfdoor/pkg/msgs"
)

// Topic suffixes under a unit.
const (
	SuffixMeta   = "/meta"
	SuffixEvents = "/events"
	SuffixStatus = "/status"
)

// DefaultPublishTimeout bounds waiting for a publish to complete.
const DefaultPublishTimeout = 5 * time.Second

// UnitMeta is published retained at <unit>/meta while a unit is online.
type UnitMeta struct {
	Role        string            `json:"role"`
	Description string            `json:"description,omitempty"`
	Labels      map[string]string `json:"labels,omitempty"`
	Config      string            `json:"config,omitempty"`
}

// SplitUnitTopic splits a topic into unit and suffix, e.g.
// "door-1/events" gives "door-1", "/events".
func SplitUnitTopic(topic string) (unit, suffix string) {
	if n := strings.LastIndex(topic, "/"); n > 0 {
		return topic[:n], topic[n:]
	}
	return topic, ""
}

// Publisher is a comm.PacketWriter publishing to one topic.
type Publisher struct {
	Queue   *Queue
	Topic   string
	Retain  bool
	Timeout time.Duration
}

// WritePacket implements comm.PacketWriter.
func (p *Publisher) WritePacket(pkt []byte) error {
	var qos byte
	if p.Retain {
		qos = 1
	}
	token := p.Queue.PubWith(p.Topic, pkt, qos, p.Retain)
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultPublishTimeout
	}
	if !token.WaitTimeout(timeout) {
		return ErrPublishTimeout
	}
	return token.Error()
}

// Announcer keeps a unit visible on the broker: it publishes the meta
// retained on every connect and sets a will clearing it.
type Announcer struct {
	Queue *Queue
	Unit  string
	Meta  UnitMeta

	metaJSON []byte
}

// NewAnnouncer creates an Announcer connecting to brokerURL.
func NewAnnouncer(brokerURL, unit string, meta UnitMeta) (*Announcer, error) {
	opts, prefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	opts.SetBinaryWill(prefix+unit+SuffixMeta, nil, 1, true)
	if opts.ClientID == "" {
		opts.SetClientID("rfdoor:" + unit)
	}
	a := newAnnouncer(NewQueue(opts, prefix), unit, meta)
	return a, nil
}

func newAnnouncer(q *Queue, unit string, meta UnitMeta) *Announcer {
	data, err := json.Marshal(&meta)
	if err != nil {
		panic(err)
	}
	a := &Announcer{Queue: q, Unit: unit, Meta: meta, metaJSON: data}
	q.OnConnect = func(*Queue) { a.announce() }
	return a
}

// Events returns the writer for <unit>/events.
func (a *Announcer) Events() *Publisher {
	return &Publisher{Queue: a.Queue, Topic: a.Unit + SuffixEvents}
}

// Status returns the writer for <unit>/status, retained.
func (a *Announcer) Status() *Publisher {
	return &Publisher{Queue: a.Queue, Topic: a.Unit + SuffixStatus, Retain: true}
}

// AddToLoop implements framework.LoopAdder. Door events are published
// to <unit>/events, unit status retained to <unit>/status.
func (a *Announcer) AddToLoop(l *fx.Loop) {
	l.AddRunnable(fx.NamedRun("mqtt:"+a.Unit, a))
	l.AddController(fx.StageReport, &statusSink{sink: comm.NewEventSink(a.Status())})
	l.Add(comm.NewEventSink(a.Events()))
}

// Run implements framework.Runnable.
func (a *Announcer) Run(ctx context.Context) error {
	a.Queue.Connect()
	<-ctx.Done()
	token := a.Queue.PubWith(a.Unit+SuffixMeta, nil, 1, true)
	token.WaitTimeout(time.Second)
	a.Queue.Close()
	return ctx.Err()
}

func (a *Announcer) announce() {
	token := a.Queue.PubWith(a.Unit+SuffixMeta, a.metaJSON, 1, true)
	go func() {
		if token.Wait(); token.Error() != nil {
			glog.Errorf("announce %s: %v", a.Unit, token.Error())
		}
	}()
}

// statusSink writes UnitStatus messages and leaves the rest.
type statusSink struct {
	sink *comm.EventSink
}

func (s *statusSink) Control(cc fx.ControlContext) error {
	var errs fx.AggregatedError
	cc.Messages().Each(func(m fx.Message) bool {
		st, ok := m.(*msgs.UnitStatus)
		if ok {
			errs.Add(s.sink.Send(st))
		}
		return ok
	})
	return errs.Aggregate()
}

// Watcher follows every unit under the queue prefix.
type Watcher struct {
	Queue   *Queue
	OnMsg   func(unit string, msg msgs.Serializable)
	OnMeta  func(unit string, meta *UnitMeta)
	OnError func(topic string, err error)
}

// Run implements framework.Runnable.
func (w *Watcher) Run(ctx context.Context) error {
	subs := []*Subscription{
		w.Queue.Sub("+"+SuffixEvents, w.handleMsg),
		w.Queue.Sub("+"+SuffixStatus, w.handleMsg),
		w.Queue.Sub("+"+SuffixMeta, w.handleMeta),
	}
	token := w.Queue.Connect()
	if token.Wait() && token.Error() != nil {
		return token.Error()
	}
	<-ctx.Done()
	for _, sub := range subs {
		sub.Close()
	}
	w.Queue.Close()
	return ctx.Err()
}

func (w *Watcher) handleMsg(topic string, payload []byte) {
	unit, _ := SplitUnitTopic(topic)
	msg, err := msgs.DecodeMessage(payload)
	if err != nil {
		w.failed(topic, err)
		return
	}
	if w.OnMsg != nil {
		w.OnMsg(unit, msg)
	}
}

func (w *Watcher) handleMeta(topic string, payload []byte) {
	unit, _ := SplitUnitTopic(topic)
	if w.OnMeta == nil {
		return
	}
	if len(payload) == 0 {
		w.OnMeta(unit, nil)
		return
	}
	var meta UnitMeta
	if err := json.Unmarshal(payload, &meta); err != nil {
		w.failed(topic, err)
		return
	}
	w.OnMeta(unit, &meta)
}

func (w *Watcher) failed(topic string, err error) {
	if w.OnError != nil {
		w.OnError(topic, err)
		return
	}
	glog.Warningf("%s: %v", topic, err)
}
