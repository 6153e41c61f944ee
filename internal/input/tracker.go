// Package input keeps the per-platform text buffers, independent of results.
package input

import (
	"sync"

	"sentidash/internal/platform"
)

// Tracker holds one text buffer per platform plus the shared "all" buffer.
type Tracker struct {
	mu      sync.RWMutex
	buffers map[platform.Key]string
}

func NewTracker() *Tracker {
	return &Tracker{buffers: make(map[platform.Key]string, len(platform.Keys()))}
}

// SetText replaces one buffer. Content is not validated; "" is a legal value.
func (t *Tracker) SetText(key platform.Key, value string) error {
	if !key.Valid() {
		return platform.ErrUnknown
	}
	t.mu.Lock()
	t.buffers[key] = value
	t.mu.Unlock()
	return nil
}

// Text returns the buffer for key, "" if never set.
func (t *Tracker) Text(key platform.Key) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.buffers[key]
}

// Snapshot copies every buffer, including unset ones as "".
func (t *Tracker) Snapshot() map[platform.Key]string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[platform.Key]string, len(platform.Keys()))
	for _, k := range platform.Keys() {
		out[k] = t.buffers[k]
	}
	return out
}
