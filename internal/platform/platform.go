// Package platform names the fixed text domains a prediction can target.
package platform

import (
	"errors"
	"fmt"
	"strings"
)

// ID is one of the four prediction platforms.
type ID string

const (
	IMDB   ID = "imdb"
	Yelp   ID = "yelp"
	Amazon ID = "amazon"
	Merged ID = "merged"
)

// Key addresses an input buffer: a platform ID or the shared "all" buffer.
type Key string

// KeyAll is the shared buffer submitted to the all-platform endpoints.
const KeyAll Key = "all"

var ErrUnknown = errors.New("unknown platform")

var ordered = []ID{IMDB, Yelp, Amazon, Merged}

// All returns the platforms in display order. The slice is a fresh copy.
func All() []ID {
	out := make([]ID, len(ordered))
	copy(out, ordered)
	return out
}

// Keys returns every input buffer key, platforms first.
func Keys() []Key {
	out := make([]Key, 0, len(ordered)+1)
	for _, id := range ordered {
		out = append(out, id.Key())
	}
	return append(out, KeyAll)
}

func (id ID) Valid() bool {
	switch id {
	case IMDB, Yelp, Amazon, Merged:
		return true
	}
	return false
}

func (id ID) Key() Key { return Key(id) }

func (id ID) String() string { return string(id) }

// Parse is case-insensitive and ignores surrounding whitespace.
func Parse(raw string) (ID, error) {
	id := ID(strings.ToLower(strings.TrimSpace(raw)))
	if !id.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknown, raw)
	}
	return id, nil
}

func (k Key) Valid() bool {
	return k == KeyAll || ID(k).Valid()
}

// Platform reports the platform a key belongs to; false for KeyAll.
func (k Key) Platform() (ID, bool) {
	id := ID(k)
	return id, id.Valid()
}

func (k Key) String() string { return string(k) }

// ParseKey accepts any platform name or "all".
func ParseKey(raw string) (Key, error) {
	k := Key(strings.ToLower(strings.TrimSpace(raw)))
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknown, raw)
	}
	return k, nil
}
