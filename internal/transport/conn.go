package transport

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"time"

	"siftkey/internal/domain"
)

// maxFrameSize bounds a single frame so a corrupted length prefix cannot
// trigger an unbounded allocation.
const maxFrameSize = 1 << 24

// Conn frames messages over a stream connection with a u32 length prefix.
type Conn struct {
	conn net.Conn
}

var _ domain.Transport = (*Conn)(nil)

// NewConn wraps an established stream connection.
func NewConn(conn net.Conn) *Conn { return &Conn{conn: conn} }

func (c *Conn) Send(ctx context.Context, frame []byte) error {
	if err := c.applyDeadline(ctx, c.conn.SetWriteDeadline); err != nil {
		return err
	}
	var prefix [4]byte
	binary.BigEndian.PutUint32(prefix[:], uint32(len(frame)))
	if _, err := c.conn.Write(prefix[:]); err != nil {
		return err
	}
	_, err := c.conn.Write(frame)
	return err
}

func (c *Conn) Receive(ctx context.Context) ([]byte, error) {
	if err := c.applyDeadline(ctx, c.conn.SetReadDeadline); err != nil {
		return nil, err
	}
	var prefix [4]byte
	if _, err := io.ReadFull(c.conn, prefix[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(prefix[:])
	if n > maxFrameSize {
		return nil, fmt.Errorf("frame of %d bytes exceeds limit", n)
	}
	frame := make([]byte, n)
	if _, err := io.ReadFull(c.conn, frame); err != nil {
		return nil, err
	}
	return frame, nil
}

func (c *Conn) Close() error { return c.conn.Close() }

func (c *Conn) applyDeadline(ctx context.Context, set func(time.Time) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if deadline, ok := ctx.Deadline(); ok {
		return set(deadline)
	}
	return set(time.Time{})
}
