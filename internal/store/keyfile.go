package store

import (
	"encoding/json"
	"fmt"
	"os"

	"siftkey/internal/domain"
)

// keyFile is the on-disk shape of raw key material. Bits are 0/1 strings to
// keep the files reviewable during experiments.
type keyFile struct {
	Bits      string  `json:"bits"`
	Kept      string  `json:"kept,omitempty"`
	ErrorRate float64 `json:"error_rate"`
}

// SaveRawKey writes raw key material to path.
func SaveRawKey(path string, raw domain.RawKey) error {
	kf := keyFile{Bits: raw.Bits.String(), ErrorRate: raw.ErrorRate}
	if raw.Kept != nil {
		kf.Kept = raw.Kept.String()
	}
	blob, err := json.MarshalIndent(kf, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, blob, 0o600)
}

// LoadRawKey reads raw key material from path.
func LoadRawKey(path string) (domain.RawKey, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return domain.RawKey{}, err
	}
	var kf keyFile
	if err := json.Unmarshal(blob, &kf); err != nil {
		return domain.RawKey{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	raw := domain.RawKey{ErrorRate: kf.ErrorRate}
	if raw.Bits, err = parseBits(kf.Bits); err != nil {
		return domain.RawKey{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	if kf.Kept != "" {
		if raw.Kept, err = parseBits(kf.Kept); err != nil {
			return domain.RawKey{}, fmt.Errorf("parsing %s: %w", path, err)
		}
		if len(raw.Kept) != len(raw.Bits) {
			return domain.RawKey{}, fmt.Errorf("%s: %d kept flags for %d bits", path, len(raw.Kept), len(raw.Bits))
		}
	}
	return raw, nil
}

func parseBits(s string) (domain.BitString, error) {
	out := make(domain.BitString, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '0':
			out[i] = 0
		case '1':
			out[i] = 1
		default:
			return nil, fmt.Errorf("bit string contains %q at offset %d", s[i], i)
		}
	}
	return out, nil
}
