package auth

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"siftkey/internal/domain"
)

const tagSize = sha256.Size

// Channel implements domain.Channel on top of any domain.Transport.
//
// Frame layout: u16 header length, header bytes, u32 payload length, payload
// bytes, 32-byte tag. The tag covers everything before it, so lengths and
// header are bound into the authentication.
type Channel struct {
	transport domain.Transport
	key       []byte
}

var _ domain.Channel = (*Channel)(nil)

// NewChannel wraps transport with tagging under the pre-shared key. The key
// is read-only, process-lifetime state and is never renegotiated mid-run.
func NewChannel(transport domain.Transport, key []byte) *Channel {
	k := make([]byte, len(key))
	copy(k, key)
	return &Channel{transport: transport, key: k}
}

// NewKey samples a fresh pre-shared authentication key.
func NewKey() ([]byte, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	return key, nil
}

// Send tags and transmits one authenticated frame.
func (c *Channel) Send(ctx context.Context, header domain.Header, payload []byte) error {
	frame := c.seal(header, payload)
	if err := c.transport.Send(ctx, frame); err != nil {
		return fmt.Errorf("%w: send %s: %v", domain.ErrChannel, header, err)
	}
	return nil
}

// Receive blocks for one frame, verifies its tag, and returns the message.
// When expected is non-empty, a verified message with any other header fails
// with domain.ErrProtocol.
func (c *Channel) Receive(ctx context.Context, expected ...domain.Header) (domain.Message, error) {
	frame, err := c.transport.Receive(ctx)
	if err != nil {
		return domain.Message{}, fmt.Errorf("%w: receive: %v", domain.ErrChannel, err)
	}
	msg, err := c.open(frame)
	if err != nil {
		return domain.Message{}, err
	}
	if len(expected) > 0 {
		ok := false
		for _, h := range expected {
			if msg.Header == h {
				ok = true
				break
			}
		}
		if !ok {
			return domain.Message{}, fmt.Errorf("%w: unexpected header %q", domain.ErrProtocol, msg.Header)
		}
	}
	return msg, nil
}

func (c *Channel) seal(header domain.Header, payload []byte) []byte {
	h := []byte(header)
	frame := make([]byte, 0, 2+len(h)+4+len(payload)+tagSize)
	frame = binary.BigEndian.AppendUint16(frame, uint16(len(h)))
	frame = append(frame, h...)
	frame = binary.BigEndian.AppendUint32(frame, uint32(len(payload)))
	frame = append(frame, payload...)
	frame = append(frame, c.tag(frame)...)
	return frame
}

func (c *Channel) open(frame []byte) (domain.Message, error) {
	if len(frame) < 2+4+tagSize {
		return domain.Message{}, fmt.Errorf("%w: frame of %d bytes", domain.ErrProtocol, len(frame))
	}
	body, tag := frame[:len(frame)-tagSize], frame[len(frame)-tagSize:]
	if !hmac.Equal(tag, c.tag(body)) {
		return domain.Message{}, domain.ErrIntegrity
	}

	hlen := int(binary.BigEndian.Uint16(body[0:2]))
	if len(body) < 2+hlen+4 {
		return domain.Message{}, fmt.Errorf("%w: truncated header", domain.ErrProtocol)
	}
	header := domain.Header(body[2 : 2+hlen])
	plen := int(binary.BigEndian.Uint32(body[2+hlen : 2+hlen+4]))
	if len(body) != 2+hlen+4+plen {
		return domain.Message{}, fmt.Errorf("%w: payload length %d does not match frame", domain.ErrProtocol, plen)
	}
	payload := make([]byte, plen)
	copy(payload, body[2+hlen+4:])
	return domain.Message{Header: header, Payload: payload}, nil
}

func (c *Channel) tag(body []byte) []byte {
	mac := hmac.New(sha256.New, c.key)
	mac.Write(body)
	return mac.Sum(nil)
}
