package confloader

import (
	"errors"

	"github.com/knadh/koanf/maps"
)

// ErrReadBytesNotSupported is returned when ReadBytes is called on a map provider.
var ErrReadBytesNotSupported = errors.New("confloader: map provider has no byte form")

// mapProvider feeds a map of dotted keys (store.path) into koanf.
type mapProvider map[string]any

// ReadBytes is not supported; koanf falls back to Read.
func (m mapProvider) ReadBytes() ([]byte, error) {
	return nil, ErrReadBytesNotSupported
}

// Read returns the map with dotted keys expanded into nested maps.
func (m mapProvider) Read() (map[string]any, error) {
	flat := make(map[string]any, len(m))
	for k, v := range m {
		flat[k] = v
	}
	return maps.Unflatten(flat, "."), nil
}
