// Package predict turns prediction requests into service calls and folds the
// answers into the aggregate result model.
package predict

import (
	"fmt"
	"strings"

	"sentidash/internal/platform"
)

// RequestMode selects the endpoint and the merge strategy. The set is closed:
// SinglePlatform, AllPlatforms and GlobalCombined are the only implementations.
type RequestMode interface {
	// Target is the stable name used for error flags, logs and the HTTP surface.
	Target() string
	requestMode()
}

// SinglePlatform predicts one platform and carries its own combined label.
type SinglePlatform struct {
	Platform platform.ID
}

// AllPlatforms fans one text out across every platform in one round trip.
type AllPlatforms struct{}

// GlobalCombined asks for the cross-platform verdict only.
type GlobalCombined struct{}

const (
	TargetAll    = "all"
	TargetGlobal = "global"
)

func (m SinglePlatform) Target() string { return m.Platform.String() }
func (AllPlatforms) Target() string     { return TargetAll }
func (GlobalCombined) Target() string   { return TargetGlobal }

func (SinglePlatform) requestMode() {}
func (AllPlatforms) requestMode()   {}
func (GlobalCombined) requestMode() {}

// ParseMode maps a target name back to its mode.
func ParseMode(target string) (RequestMode, error) {
	switch t := strings.ToLower(strings.TrimSpace(target)); t {
	case TargetAll:
		return AllPlatforms{}, nil
	case TargetGlobal:
		return GlobalCombined{}, nil
	default:
		id, err := platform.Parse(t)
		if err != nil {
			return nil, fmt.Errorf("unknown prediction target %q", target)
		}
		return SinglePlatform{Platform: id}, nil
	}
}

// BufferKey is the input buffer read when mode is triggered from the UI.
func BufferKey(mode RequestMode) platform.Key {
	if m, ok := mode.(SinglePlatform); ok {
		return m.Platform.Key()
	}
	return platform.KeyAll
}
