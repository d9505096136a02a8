package comm

import (
	"sync"

	fx "github.com/robotalks/rfdoor/pkg/framework"
)

// WriterMux writes each packet to every writer.
type WriterMux struct {
	lock    sync.RWMutex
	writers []PacketWriter
}

// NewWriterMux creates a WriterMux.
func NewWriterMux(writers ...PacketWriter) *WriterMux {
	return &WriterMux{writers: writers}
}

// Add adds writers.
func (m *WriterMux) Add(writers ...PacketWriter) {
	m.lock.Lock()
	m.writers = append(m.writers, writers...)
	m.lock.Unlock()
}

// Remove removes a writer. Writers must be comparable, e.g. pointers.
func (m *WriterMux) Remove(w PacketWriter) {
	m.lock.Lock()
	defer m.lock.Unlock()
	for n, writer := range m.writers {
		if writer == w {
			m.writers = append(m.writers[:n], m.writers[n+1:]...)
			return
		}
	}
}

// Len returns the number of writers.
func (m *WriterMux) Len() int {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return len(m.writers)
}

// WritePacket implements PacketWriter. Every writer is tried; the errors
// are aggregated.
func (m *WriterMux) WritePacket(pkt []byte) error {
	m.lock.RLock()
	writers := append([]PacketWriter(nil), m.writers...)
	m.lock.RUnlock()
	var errs fx.AggregatedError
	for _, w := range writers {
		errs.Add(w.WritePacket(pkt))
	}
	return errs.Aggregate()
}
