package app

import (
	"encoding/hex"
	"fmt"

	"siftkey/internal/session"
)

// Config holds runtime options shared by all commands. The protocol
// parameters must be identical on both parties.
type Config struct {
	AuthKeyHex string // pre-shared authentication key, hex encoded
	Params     session.Params
}

// AuthKey decodes the pre-shared authentication key.
func (c Config) AuthKey() ([]byte, error) {
	key, err := hex.DecodeString(c.AuthKeyHex)
	if err != nil {
		return nil, fmt.Errorf("decoding auth key: %w", err)
	}
	if len(key) < 16 {
		return nil, fmt.Errorf("auth key of %d bytes, want at least 16", len(key))
	}
	return key, nil
}
