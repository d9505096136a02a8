package console

import (
	"context"
	"io"
	"time"

	"github.com/golang/glog"
)

// Handler is called for each decoded event.
type Handler interface {
	HandleEvent(context.Context, Event)
}

// HandleEventFunc is the func form of Handler.
type HandleEventFunc func(context.Context, Event)

// HandleEvent implements Handler.
func (f HandleEventFunc) HandleEvent(ctx context.Context, ev Event) {
	f(ctx, ev)
}

// DefaultIdleTimeout is about 24 characters at 2400 baud.
const DefaultIdleTimeout = 100 * time.Millisecond

// Reader decodes a console stream in the background.
type Reader struct {
	Source  io.Reader
	Handler Handler
	// IdleTimeout completes a pending digit run and reports EventIdle
	// once the stream went quiet.
	IdleTimeout time.Duration

	parser Parser
}

// NewReader creates a Reader for payloads of width bytes.
func NewReader(src io.Reader, width int, handler Handler) *Reader {
	return &Reader{
		Source:      src,
		Handler:     handler,
		IdleTimeout: DefaultIdleTimeout,
		parser:      Parser{Width: width},
	}
}

// Garbage counts bytes that were not part of any token.
func (r *Reader) Garbage() int {
	return r.parser.Garbage()
}

// Run implements framework.Runnable. It returns the read error, or the
// context error when canceled; io.EOF is returned as nil.
func (r *Reader) Run(ctx context.Context) error {
	byteCh, errCh := make(chan []byte), make(chan error, 1)
	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go r.readLoop(subCtx, byteCh, errCh)

	var idle <-chan time.Time
	for {
		select {
		case chunk := <-byteCh:
			for _, b := range chunk {
				if ev, ok := r.parser.Parse(b); ok {
					r.deliver(ctx, ev)
				}
			}
			if r.IdleTimeout > 0 {
				idle = time.After(r.IdleTimeout)
			}
		case <-idle:
			idle = nil
			if ev, ok := r.parser.Flush(); ok {
				r.deliver(ctx, ev)
			}
			r.deliver(ctx, Event{Kind: EventIdle})
		case err := <-errCh:
			if ev, ok := r.parser.Flush(); ok {
				r.deliver(ctx, ev)
			}
			if err == io.EOF {
				return nil
			}
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (r *Reader) deliver(ctx context.Context, ev Event) {
	glog.V(3).Infof("console: %s %s", ev.Kind, ev.Digits)
	if h := r.Handler; h != nil {
		h.HandleEvent(ctx, ev)
	}
}

func (r *Reader) readLoop(ctx context.Context, byteCh chan<- []byte, errCh chan<- error) {
	buf := make([]byte, 64)
	for {
		n, err := r.Source.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			select {
			case byteCh <- chunk:
			case <-ctx.Done():
				return
			}
		}
		if err != nil {
			errCh <- err
			return
		}
	}
}
