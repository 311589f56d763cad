package ports

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by KeyValueStore.Get when nothing is stored under a key.
var ErrKeyNotFound = errors.New("key not found")

// Port: durable storage of raw payloads under string keys.
// Implementations must make a completed Set visible to the next Get.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}
