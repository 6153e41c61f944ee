// Package result holds the prediction result model read by the presentation layer.
package result

import (
	"encoding/json"

	"sentidash/internal/platform"
)

// PlatformResult is one platform's outcome from the three models plus their
// fused verdict. Any field may be empty; Combined is empty when the request
// type does not surface a per-platform combined label.
type PlatformResult struct {
	LogisticRegression string `json:"logreg"`
	NaiveBayes         string `json:"bayes"`
	Transformer        string `json:"bert"`
	Combined           string `json:"combined"`
}

// AggregateState is the full observable result model. It is immutable: every
// With* method returns a new state and leaves the receiver as it was.
type AggregateState struct {
	perPlatform    map[platform.ID]*PlatformResult
	globalCombined *string
}

// NewAggregateState returns the session-start state with every platform absent.
func NewAggregateState() AggregateState {
	m := make(map[platform.ID]*PlatformResult, len(platform.All()))
	for _, id := range platform.All() {
		m[id] = nil
	}
	return AggregateState{perPlatform: m}
}

// Platform returns a copy of the platform's result; false means no prediction yet.
func (s AggregateState) Platform(id platform.ID) (PlatformResult, bool) {
	r := s.perPlatform[id]
	if r == nil {
		return PlatformResult{}, false
	}
	return *r, true
}

// GlobalCombined returns the cross-platform verdict; false means absent.
func (s AggregateState) GlobalCombined() (string, bool) {
	if s.globalCombined == nil {
		return "", false
	}
	return *s.globalCombined, true
}

// WithPlatform replaces one platform's result wholesale.
func (s AggregateState) WithPlatform(id platform.ID, r PlatformResult) AggregateState {
	next := s.clone()
	next.perPlatform[id] = &r
	return next
}

// WithPlatforms replaces several platforms at once.
func (s AggregateState) WithPlatforms(results map[platform.ID]PlatformResult) AggregateState {
	next := s.clone()
	for id, r := range results {
		r := r
		next.perPlatform[id] = &r
	}
	return next
}

func (s AggregateState) WithGlobalCombined(label string) AggregateState {
	next := s.clone()
	next.globalCombined = &label
	return next
}

func (s AggregateState) WithoutGlobalCombined() AggregateState {
	next := s.clone()
	next.globalCombined = nil
	return next
}

// Equal reports deep equality, treating absent and present-but-empty as different.
func (s AggregateState) Equal(o AggregateState) bool {
	for _, id := range platform.All() {
		a, aok := s.Platform(id)
		b, bok := o.Platform(id)
		if aok != bok || a != b {
			return false
		}
	}
	ga, gaok := s.GlobalCombined()
	gb, gbok := o.GlobalCombined()
	return gaok == gbok && ga == gb
}

// clone copies the map so updates never touch the receiver. Stored results are
// never mutated in place, so sharing the pointers is safe.
func (s AggregateState) clone() AggregateState {
	m := make(map[platform.ID]*PlatformResult, len(platform.All()))
	for _, id := range platform.All() {
		m[id] = s.perPlatform[id]
	}
	return AggregateState{perPlatform: m, globalCombined: s.globalCombined}
}

type stateJSON struct {
	Platforms      map[platform.ID]*PlatformResult `json:"platforms"`
	GlobalCombined *string                         `json:"global_combined"`
}

// MarshalJSON renders absent values as null so every platform key is always present.
func (s AggregateState) MarshalJSON() ([]byte, error) {
	return json.Marshal(stateJSON{Platforms: s.clone().perPlatform, GlobalCombined: s.globalCombined})
}
