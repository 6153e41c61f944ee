package predict

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"sentidash/internal/config"
	"sentidash/internal/gateway/classifier"
	"sentidash/internal/logger"
	"sentidash/internal/schema"

	"github.com/google/uuid"
)

// Poster is the transport the dispatcher sends through.
type Poster interface {
	Predict(ctx context.Context, traceID, path, text string) ([]byte, error)
}

// DispatchObserver is told about every finished dispatch, success or failure.
type DispatchObserver interface {
	AfterDispatch(ctx context.Context, trace Trace)
}

// Trace describes one dispatch for journals and diagnostics.
type Trace struct {
	TraceID          string
	Target           string
	Path             string
	Text             string
	StartedAt        time.Time
	Elapsed          time.Duration
	Raw              []byte
	Missing          []string
	SchemaViolations []string
	Err              error
}

// Dispatcher issues one prediction call per Dispatch and classifies the answer.
// It does not retry, queue, de-duplicate or impose its own timeout.
type Dispatcher struct {
	client    Poster
	endpoints config.EndpointsConfig
	schemas   *schema.Registry
	observers []DispatchObserver
}

// NewDispatcher wires a transport and endpoint layout. schemas may be nil.
func NewDispatcher(client Poster, endpoints config.EndpointsConfig, schemas *schema.Registry) *Dispatcher {
	return &Dispatcher{client: client, endpoints: endpoints, schemas: schemas}
}

// AddObserver registers o. Call it before the first Dispatch.
func (d *Dispatcher) AddObserver(o DispatchObserver) {
	if o != nil {
		d.observers = append(d.observers, o)
	}
}

// Route returns the request path and response shape for mode.
func (d *Dispatcher) Route(mode RequestMode) (string, schema.Shape, error) {
	switch m := mode.(type) {
	case SinglePlatform:
		if !m.Platform.Valid() {
			return "", "", fmt.Errorf("invalid platform %q", m.Platform)
		}
		return d.endpoints.PlatformPath(m.Platform.String()), schema.ShapeSingle, nil
	case AllPlatforms:
		return d.endpoints.AllPlatforms, schema.ShapeBundle, nil
	case GlobalCombined:
		return d.endpoints.GlobalCombined, schema.ShapeGlobal, nil
	default:
		return "", "", fmt.Errorf("unsupported request mode %T", mode)
	}
}

// Dispatch sends text for mode and returns the parsed response. Failures are
// returned as *DispatchFailure; missing fields are not failures.
func (d *Dispatcher) Dispatch(ctx context.Context, text string, mode RequestMode) (RawResponse, error) {
	if mode == nil {
		return nil, fmt.Errorf("request mode is required")
	}
	path, shape, err := d.Route(mode)
	if err != nil {
		return nil, err
	}
	trace := Trace{
		TraceID:   uuid.NewString(),
		Target:    mode.Target(),
		Path:      path,
		Text:      text,
		StartedAt: time.Now(),
	}
	logger.Debugf("dispatch %s trace=%s path=%s", trace.Target, trace.TraceID, path)

	resp, err := d.call(ctx, &trace, mode, shape)
	trace.Elapsed = time.Since(trace.StartedAt)
	trace.Err = err
	if err != nil {
		logger.Warnf("dispatch %s trace=%s failed elapsed=%s err=%v", trace.Target, trace.TraceID, trace.Elapsed.Truncate(time.Millisecond), err)
	} else if len(trace.Missing) > 0 || len(trace.SchemaViolations) > 0 {
		logger.Warnf("dispatch %s trace=%s partial response missing=[%s] violations=[%s]",
			trace.Target, trace.TraceID, strings.Join(trace.Missing, ","), strings.Join(trace.SchemaViolations, "; "))
	} else {
		logger.Debugf("dispatch %s trace=%s ok elapsed=%s", trace.Target, trace.TraceID, trace.Elapsed.Truncate(time.Millisecond))
	}
	d.notify(ctx, trace)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (d *Dispatcher) call(ctx context.Context, trace *Trace, mode RequestMode, shape schema.Shape) (RawResponse, error) {
	if d.client == nil {
		return nil, &DispatchFailure{Kind: FailureTransport, Target: trace.Target, Endpoint: trace.Path, Err: errors.New("no classifier client")}
	}
	raw, err := d.client.Predict(ctx, trace.TraceID, trace.Path, trace.Text)
	if err != nil {
		failure := &DispatchFailure{Kind: FailureTransport, Target: trace.Target, Endpoint: trace.Path, Err: err}
		var se *classifier.StatusError
		if errors.As(err, &se) {
			failure.Kind = FailureStatus
			failure.StatusCode = se.StatusCode
		}
		return nil, failure
	}
	trace.Raw = raw

	var resp RawResponse
	switch mode.(type) {
	case SinglePlatform:
		resp, err = parseSingle(raw)
	case AllPlatforms:
		resp, err = parseBundle(raw)
	case GlobalCombined:
		resp, err = parseGlobal(raw)
	}
	if err != nil {
		return nil, &DispatchFailure{Kind: FailureBody, Target: trace.Target, Endpoint: trace.Path, Err: err}
	}
	trace.Missing = resp.MissingFields()
	trace.SchemaViolations = d.schemas.Check(shape, raw)
	return resp, nil
}

func (d *Dispatcher) notify(ctx context.Context, trace Trace) {
	for _, o := range d.observers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Errorf("dispatch observer panic: %v", r)
				}
			}()
			o.AfterDispatch(ctx, trace)
		}()
	}
}
