package websocket

import (
	"net/http"
	"sync"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"
)

// Broadcaster is an http.Handler accepting websocket clients and a
// comm.PacketWriter sending each packet to all of them. A client that
// fails a write is dropped. Packets sent by clients are discarded.
type Broadcaster struct {
	// Greeting, if set, provides packets sent to a client on connect,
	// e.g. the last known status of every unit.
	Greeting func() [][]byte

	lock    sync.Mutex
	clients map[*ReadWriter]chan struct{}
	handler websocket.Handler
}

// NewBroadcaster creates a Broadcaster.
func NewBroadcaster() *Broadcaster {
	b := &Broadcaster{clients: make(map[*ReadWriter]chan struct{})}
	b.handler = websocket.Handler(b.serve)
	return b
}

// ServeHTTP implements http.Handler.
func (b *Broadcaster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.handler.ServeHTTP(w, r)
}

// Clients returns the number of connected clients.
func (b *Broadcaster) Clients() int {
	b.lock.Lock()
	defer b.lock.Unlock()
	return len(b.clients)
}

// WritePacket implements comm.PacketWriter.
func (b *Broadcaster) WritePacket(pkt []byte) error {
	b.lock.Lock()
	clients := make([]*ReadWriter, 0, len(b.clients))
	for c := range b.clients {
		clients = append(clients, c)
	}
	b.lock.Unlock()
	for _, c := range clients {
		if err := c.WritePacket(pkt); err != nil {
			glog.V(2).Infof("websocket %s: %v", (*websocket.Conn)(c).Request().RemoteAddr, err)
			b.drop(c)
		}
	}
	return nil
}

func (b *Broadcaster) serve(conn *websocket.Conn) {
	conn.PayloadType = websocket.BinaryFrame
	c := New(conn)
	if b.Greeting != nil {
		for _, pkt := range b.Greeting() {
			if err := c.WritePacket(pkt); err != nil {
				return
			}
		}
	}
	done := make(chan struct{})
	b.lock.Lock()
	b.clients[c] = done
	b.lock.Unlock()
	glog.V(2).Infof("websocket %s: connected", conn.Request().RemoteAddr)

	go func() {
		for {
			if _, err := c.ReadPacket(); err != nil {
				b.drop(c)
				return
			}
		}
	}()
	<-done
	glog.V(2).Infof("websocket %s: disconnected", conn.Request().RemoteAddr)
}

func (b *Broadcaster) drop(c *ReadWriter) {
	b.lock.Lock()
	done, ok := b.clients[c]
	delete(b.clients, c)
	b.lock.Unlock()
	if ok {
		close(done)
	}
}
