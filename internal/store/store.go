// Package store persists single JSON-serializable values under string keys.
//
// A missing key yields the caller's default, and a malformed payload is
// logged and also yields the default. A backend that cannot be reached is
// reported by LoadOrDefault, so callers that write back what they loaded
// never mistake an outage for an empty collection. Save is write-through; once it returns, the next Load of the same key
// in this process observes the value.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"how-far-is-it/internal/ports"
	"io"
	"log/slog"
)

var (
	// ErrStorageRead marks a stored payload that exists but cannot be decoded.
	ErrStorageRead = errors.New("storage read error")
	// ErrStorageUnavailable marks a backend failure while reading a key.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// Store is a typed view over a KeyValueStore.
type Store[T any] struct {
	kv        ports.KeyValueStore
	logger    *slog.Logger
	validate  func(T) error
	onFailure func(key string)
}

type Option[T any] func(*Store[T])

// WithValidator rejects decoded values that are well-formed JSON but break
// domain invariants; such payloads are treated like malformed ones.
func WithValidator[T any](fn func(T) error) Option[T] {
	return func(s *Store[T]) { s.validate = fn }
}

// WithReadFailureHook is called with the key whenever Load falls back to
// the default because of a read error.
func WithReadFailureHook[T any](fn func(key string)) Option[T] {
	return func(s *Store[T]) { s.onFailure = fn }
}

func New[T any](kv ports.KeyValueStore, logger *slog.Logger, opts ...Option[T]) *Store[T] {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store[T]{kv: kv, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load returns the value stored under key, or def when the key is missing,
// its payload cannot be used, or the backend failed.
func (s *Store[T]) Load(ctx context.Context, key string, def T) T {
	v, err := s.LoadOrDefault(ctx, key, def)
	if err != nil {
		s.logger.ErrorContext(ctx, "storage backend read failed, using default",
			slog.String("key", key),
			slog.Any("err", err),
		)
		return def
	}
	return v
}

// LoadOrDefault is Load for callers that persist what they load. Missing
// keys and malformed payloads still yield def; a backend failure is
// returned wrapped in ErrStorageUnavailable.
func (s *Store[T]) LoadOrDefault(ctx context.Context, key string, def T) (T, error) {
	v, found, err := s.TryLoad(ctx, key)
	switch {
	case errors.Is(err, ErrStorageUnavailable):
		return def, err
	case err != nil:
		s.logger.WarnContext(ctx, "could not parse stored state, using default",
			slog.String("key", key),
			slog.Any("err", err),
		)
		if s.onFailure != nil {
			s.onFailure(key)
		}
		return def, nil
	case !found:
		return def, nil
	}
	return v, nil
}

// TryLoad is Load without the fallback. It reports found=false for a
// missing key, wraps ErrStorageUnavailable when the backend failed and
// ErrStorageRead when the payload could not be used.
func (s *Store[T]) TryLoad(ctx context.Context, key string) (T, bool, error) {
	var zero T

	payload, err := s.kv.Get(ctx, key)
	if errors.Is(err, ports.ErrKeyNotFound) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, fmt.Errorf("%w: key %q: %w", ErrStorageUnavailable, key, err)
	}

	v, err := decode[T](payload)
	if err != nil {
		return zero, false, fmt.Errorf("%w: key %q: %v", ErrStorageRead, key, err)
	}

	if s.validate != nil {
		if err := s.validate(v); err != nil {
			return zero, false, fmt.Errorf("%w: key %q: %v", ErrStorageRead, key, err)
		}
	}

	return v, true, nil
}

// Save serializes value and writes it under key.
func (s *Store[T]) Save(ctx context.Context, key string, value T) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("save %q: marshal: %w", key, err)
	}
	if err := s.kv.Set(ctx, key, payload); err != nil {
		return fmt.Errorf("save %q: %w", key, err)
	}
	return nil
}

// decode is strict: unknown fields, type mismatches, and trailing data all
// count as a shape mismatch.
func decode[T any](payload []byte) (T, error) {
	var v T

	if len(bytes.TrimSpace(payload)) == 0 {
		return v, errors.New("empty payload")
	}

	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		return v, fmt.Errorf("decode: %w", err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return v, errors.New("payload must contain a single JSON value")
	}
	return v, nil
}
