package predict

import (
	"sentidash/internal/platform"
	"sentidash/internal/result"
)

// RawResponse is a parsed service answer, tagged by the shape it was read as.
// Missing lists the JSON paths that were absent or not a scalar and were
// replaced by "".
type RawResponse interface {
	MissingFields() []string
	rawResponse()
}

// SingleResponse is the per-platform endpoint's answer.
type SingleResponse struct {
	Result  result.PlatformResult
	Missing []string
}

// BundleResponse is the all-platform endpoint's answer. Combined holds
// whatever the service sent; the merge decides whether to surface it.
type BundleResponse struct {
	Results map[platform.ID]result.PlatformResult
	Missing []string
}

// GlobalResponse carries the cross-platform verdict.
type GlobalResponse struct {
	Combined string
	Missing  []string
}

func (r SingleResponse) MissingFields() []string { return r.Missing }
func (r BundleResponse) MissingFields() []string { return r.Missing }
func (r GlobalResponse) MissingFields() []string { return r.Missing }

func (SingleResponse) rawResponse() {}
func (BundleResponse) rawResponse() {}
func (GlobalResponse) rawResponse() {}
