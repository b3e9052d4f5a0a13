// ABOUTME: Reactive binding between a store key and an in-memory value
// ABOUTME: Lazy load with silent default fallback, whole-value write-back on change
package store

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/charmbracelet/log"
)

// Binding keeps one value in memory and mirrors every change to a KV key.
//
// The first Get decodes the stored JSON. A missing key or a value that does
// not decode yields a fresh default with no error. Set and Update write the
// entire value back; write failures are logged and dropped so the in-memory
// value remains authoritative for the rest of the process.
type Binding[T any] struct {
	kv     KV
	key    string
	def    func() T
	logger *log.Logger

	mu     sync.Mutex
	loaded bool
	value  T
}

// Bind creates a binding for key. def builds the default value and is called
// whenever a fresh default is needed, so maps and slices are never shared.
func Bind[T any](kv KV, key string, def func() T, logger *log.Logger) *Binding[T] {
	if logger == nil {
		logger = log.Default()
	}
	return &Binding[T]{kv: kv, key: key, def: def, logger: logger}
}

// Key returns the storage key.
func (b *Binding[T]) Key() string {
	return b.key
}

// Get returns the current value. Callers must not mutate slices or maps in
// place; use Update.
func (b *Binding[T]) Get() T {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.loadLocked()
	return b.value
}

// Set replaces the value and writes it back.
func (b *Binding[T]) Set(v T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.loaded = true
	b.value = v
	b.saveLocked()
}

// Update applies fn to the current value and writes the result back.
func (b *Binding[T]) Update(fn func(T) T) T {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.loadLocked()
	b.value = fn(b.value)
	b.saveLocked()
	return b.value
}

// Reload discards the cached value so the next Get reads the store again.
func (b *Binding[T]) Reload() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.loaded = false
	var zero T
	b.value = zero
}

func (b *Binding[T]) loadLocked() {
	if b.loaded {
		return
	}
	b.loaded = true
	b.value = b.def()

	raw, err := b.kv.Get(b.key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			b.logger.Debug("store read failed, using default", "key", b.key, "err", err)
		}
		return
	}

	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		b.logger.Debug("stored value unreadable, using default", "key", b.key, "err", err)
		return
	}
	b.value = v
}

func (b *Binding[T]) saveLocked() {
	raw, err := json.Marshal(b.value)
	if err != nil {
		b.logger.Warn("store encode failed", "key", b.key, "err", err)
		return
	}
	if err := b.kv.Set(b.key, raw); err != nil {
		b.logger.Warn("store write failed", "key", b.key, "err", err)
	}
}
