// Package codec centralizes report encoding.
//
// Every codec has a stable name. Encoded reports carry no header, so the
// codec is chosen from the object name on both write and read.
package codec

import (
	"fmt"
	"path"
	"strings"
)

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
	// Extension is the file extension written for this codec, including the dot.
	Extension() string
}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	switch name {
	case "json":
		return JSON{}, true
	case "go-json":
		return GoJSON{}, true
	case "yaml":
		return YAML{}, true
	default:
		return nil, false
	}
}

// ForName picks a codec from the extension of a file or object name.
// Compression suffixes (.zst, .lz4) are skipped. Names without a known
// extension use Default.
func ForName(name string) Codec {
	base := strings.ToLower(path.Base(name))
	for _, suffix := range []string{".zst", ".lz4"} {
		base = strings.TrimSuffix(base, suffix)
	}

	switch path.Ext(base) {
	case ".yaml", ".yml":
		return YAML{}
	default:
		return Default
	}
}

// MustMarshal is a helper for tests.
func MustMarshal(c Codec, v any) []byte {
	if c == nil {
		c = Default
	}
	b, err := c.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("codec %s marshal failed: %w", c.Name(), err))
	}
	return b
}
