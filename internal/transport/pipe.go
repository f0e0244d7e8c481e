package transport

import (
	"context"
	"errors"
	"sync"

	"siftkey/internal/domain"
)

// ErrClosed is returned when operating on a closed pipe end.
var ErrClosed = errors.New("transport closed")

// pipeEnd is one side of an in-memory duplex frame pipe.
type pipeEnd struct {
	send chan<- []byte
	recv <-chan []byte
	done chan struct{}
	once *sync.Once
}

var _ domain.Transport = (*pipeEnd)(nil)

// Pipe returns two connected in-memory transports. Frames written to one end
// are received by the other in order. The buffer lets one party run ahead by
// a few frames without blocking, matching the cooperative two-goroutine model
// used by tests and the simulate command.
func Pipe() (domain.Transport, domain.Transport) {
	ab := make(chan []byte, 16)
	ba := make(chan []byte, 16)
	done := make(chan struct{})
	once := new(sync.Once)
	a := &pipeEnd{send: ab, recv: ba, done: done, once: once}
	b := &pipeEnd{send: ba, recv: ab, done: done, once: once}
	return a, b
}

func (p *pipeEnd) Send(ctx context.Context, frame []byte) error {
	buf := make([]byte, len(frame))
	copy(buf, frame)
	select {
	case p.send <- buf:
		return nil
	case <-p.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *pipeEnd) Receive(ctx context.Context) ([]byte, error) {
	// Drain frames sent before a close: a peer may close its end right
	// after its final send.
	select {
	case frame := <-p.recv:
		return frame, nil
	default:
	}
	select {
	case frame := <-p.recv:
		return frame, nil
	case <-p.done:
		// Everything sent before the close is already buffered.
		select {
		case frame := <-p.recv:
			return frame, nil
		default:
			return nil, ErrClosed
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *pipeEnd) Close() error {
	p.once.Do(func() { close(p.done) })
	return nil
}
