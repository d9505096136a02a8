// Package monitor gathers what units report, from the broker or from a
// unit's console, keeps their status and forwards their messages.
package monitor

import (
	"context"
	"reflect"
	"sync"

	"github.com/golang/glog"

	"github.com/robotalks/rfdoor/pkg/comm"
	"github.com/robotalks/rfdoor/pkg/comm/cache"
	"github.com/robotalks/rfdoor/pkg/comm/mqtt"
	"github.com/robotalks/rfdoor/pkg/console"
	"github.com/robotalks/rfdoor/pkg/msgs"
)

// Hub receives unit messages from any number of goroutines.
type Hub struct {
	Tracker *cache.Tracker
	Writers *comm.WriterMux
	// Log prints every message with glog.
	Log bool

	lock  sync.Mutex
	metas map[string]*mqtt.UnitMeta
}

// NewHub creates a Hub keeping status in store.
func NewHub(store cache.Store) *Hub {
	return &Hub{
		Tracker: &cache.Tracker{Store: store},
		Writers: comm.NewWriterMux(),
		metas:   make(map[string]*mqtt.UnitMeta),
	}
}

// HandleMsg takes a message from unit. Writer errors are logged.
func (h *Hub) HandleMsg(unit string, msg msgs.Serializable) {
	h.lock.Lock()
	defer h.lock.Unlock()
	if h.Log {
		glog.Infof("%s: [%s] %s", unit, reflect.Indirect(reflect.ValueOf(msg)).Type().Name(), msg.String())
	}
	if _, err := h.Tracker.Apply(unit, msg); err != nil {
		glog.Warningf("%s: status: %v", unit, err)
	}
	pkt, err := msgs.EncodeTyped(msg)
	if err != nil {
		glog.Warningf("%s: encode: %v", unit, err)
		return
	}
	if err := h.Writers.WritePacket(pkt); err != nil {
		glog.Warningf("%s: forward: %v", unit, err)
	}
}

// HandleMeta records the meta of unit, nil when it left.
func (h *Hub) HandleMeta(unit string, meta *mqtt.UnitMeta) {
	h.lock.Lock()
	defer h.lock.Unlock()
	if meta == nil {
		delete(h.metas, unit)
		glog.Infof("%s: gone", unit)
		return
	}
	h.metas[unit] = meta
	glog.Infof("%s: %s %s", unit, meta.Role, meta.Description)
}

// Meta returns the meta of a unit.
func (h *Hub) Meta(unit string) *mqtt.UnitMeta {
	h.lock.Lock()
	defer h.lock.Unlock()
	return h.metas[unit]
}

// Greeting returns the encoded status of every unit known.
func (h *Hub) Greeting() [][]byte {
	all, err := h.Tracker.Store.All()
	if err != nil {
		glog.Warningf("greeting: %v", err)
		return nil
	}
	pkts := make([][]byte, 0, len(all))
	for _, st := range all {
		if pkt, err := msgs.EncodeTyped(st); err == nil {
			pkts = append(pkts, pkt)
		}
	}
	return pkts
}

// Watch follows units on the broker.
func (h *Hub) Watch(q *mqtt.Queue) *mqtt.Watcher {
	return &mqtt.Watcher{Queue: q, OnMsg: h.HandleMsg, OnMeta: h.HandleMeta}
}

// ConsoleHandler turns the console of unit into door events.
func (h *Hub) ConsoleHandler(unit string) console.Handler {
	return console.NewMonitor(unit, func(ev *msgs.DoorEvent) {
		h.HandleMsg(unit, ev)
	})
}

// Replay feeds every packet of a capture into the hub.
func (h *Hub) Replay(ctx context.Context, r comm.PacketReader) error {
	d := &comm.Dispatcher{
		Reader: r,
		Handle: func(_ context.Context, msg msgs.Serializable) {
			unit := unitOf(msg)
			h.HandleMsg(unit, msg)
		},
	}
	return d.Run(ctx)
}

func unitOf(msg msgs.Serializable) string {
	switch m := msg.(type) {
	case *msgs.DoorEvent:
		return m.Unit
	case *msgs.UnitStatus:
		return m.Unit
	}
	return ""
}
