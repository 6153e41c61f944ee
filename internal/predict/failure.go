package predict

import (
	"fmt"
)

// FailureKind classifies why a dispatch produced no usable response.
type FailureKind string

const (
	FailureTransport FailureKind = "transport"
	FailureStatus    FailureKind = "status"
	FailureBody      FailureKind = "body"
)

// DispatchFailure is returned for an unreachable endpoint, a non-2xx status or
// a body that is not a JSON object. It never carries partial results.
type DispatchFailure struct {
	Kind       FailureKind
	Target     string
	Endpoint   string
	StatusCode int
	Err        error
}

func (f *DispatchFailure) Error() string {
	if f.StatusCode != 0 {
		return fmt.Sprintf("dispatch %s failed (%s, status %d): %v", f.Target, f.Kind, f.StatusCode, f.Err)
	}
	return fmt.Sprintf("dispatch %s failed (%s): %v", f.Target, f.Kind, f.Err)
}

func (f *DispatchFailure) Unwrap() error { return f.Err }
