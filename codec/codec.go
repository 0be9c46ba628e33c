// Package codec marshals vector pages for snapshots.
//
// A snapshot records the name of the codec that wrote it, and Decode refuses
// a snapshot whose codec differs from the one it was asked to use. Changing
// codecs is therefore a breaking change for persisted bytes.
package codec

import "fmt"

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// ByName returns a built-in codec by its stable name.
//
// This is used for self-describing snapshot headers that store the codec
// name.
func ByName(name string) (Codec, bool) {
	switch name {
	case "json":
		return JSON{}, true
	case "gob":
		return Gob{}, true
	default:
		return nil, false
	}
}

// MustMarshal is a helper for internal tests/benchmarks.
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

// Default is the codec used when a snapshot is written without one.
//
// NOTE: Existing snapshots are self-describing, so changing Default only
// affects newly written ones.
var Default Codec = Gob{}
