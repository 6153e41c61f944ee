// Package session is the boundary the presentation layer talks to: it owns the
// input buffers and the aggregate result model and turns predict actions into
// dispatch + merge.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"sentidash/internal/input"
	"sentidash/internal/logger"
	"sentidash/internal/platform"
	"sentidash/internal/predict"
	"sentidash/internal/result"

	"golang.org/x/sync/errgroup"
)

// Dispatcher sends one prediction request.
type Dispatcher interface {
	Dispatch(ctx context.Context, text string, mode predict.RequestMode) (predict.RawResponse, error)
}

// Failure is the error flag shown next to a target whose last dispatch failed.
// It lives beside the result model, never inside it.
type Failure struct {
	Target  string    `json:"target"`
	Kind    string    `json:"kind"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// View is everything the presentation layer renders.
type View struct {
	Inputs map[platform.Key]string `json:"inputs"`
	State  result.AggregateState   `json:"state"`
	Errors map[string]Failure      `json:"errors"`
}

// Session serializes merges at completion time. Dispatches themselves run
// concurrently with no queueing, de-duplication or cancellation, so two
// overlapping requests for the same target resolve last-completion-wins.
type Session struct {
	inputs     *input.Tracker
	dispatcher Dispatcher

	mu        sync.Mutex
	state     result.AggregateState
	failures  map[string]Failure
	observers map[int]Observer
	nextObs   int

	inflight sync.WaitGroup
}

func New(inputs *input.Tracker, dispatcher Dispatcher) *Session {
	if inputs == nil {
		inputs = input.NewTracker()
	}
	return &Session{
		inputs:     inputs,
		dispatcher: dispatcher,
		state:      result.NewAggregateState(),
		failures:   make(map[string]Failure),
		observers:  make(map[int]Observer),
	}
}

// Inputs exposes the buffers for read/write.
func (s *Session) Inputs() *input.Tracker { return s.inputs }

// State returns the current result model.
func (s *Session) State() result.AggregateState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Errors returns a copy of the per-target error flags.
func (s *Session) Errors() map[string]Failure {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyFailuresLocked()
}

func (s *Session) View() View {
	s.mu.Lock()
	st, errs := s.state, s.copyFailuresLocked()
	s.mu.Unlock()
	return View{Inputs: s.inputs.Snapshot(), State: st, Errors: errs}
}

// Subscribe registers o and returns a function that removes it.
func (s *Session) Subscribe(o Observer) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = o
	s.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.observers, id)
			s.mu.Unlock()
		})
	}
}

// HandlePredict dispatches text for mode and merges the answer. A failed
// dispatch leaves the result model exactly as it was, raises the target's
// error flag and is returned to the caller.
func (s *Session) HandlePredict(ctx context.Context, text string, mode predict.RequestMode) error {
	if mode == nil {
		return errors.New("request mode is required")
	}
	if s.dispatcher == nil {
		return errors.New("session has no dispatcher")
	}
	resp, err := s.dispatcher.Dispatch(ctx, text, mode)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.failLocked(mode, err)
		return err
	}
	next, err := predict.Merge(s.state, mode, resp)
	if err != nil {
		s.failLocked(mode, err)
		return err
	}
	s.state = next
	for _, target := range affectedTargets(mode) {
		delete(s.failures, target)
	}
	s.notifyLocked(Change{Target: mode.Target(), State: s.state, Errors: s.copyFailuresLocked()})
	return nil
}

// PredictBuffer reads the buffer that belongs to mode at call time and predicts it.
func (s *Session) PredictBuffer(ctx context.Context, mode predict.RequestMode) error {
	if mode == nil {
		return errors.New("request mode is required")
	}
	return s.HandlePredict(ctx, s.inputs.Text(predict.BufferKey(mode)), mode)
}

// Submit runs HandlePredict in the background and returns a channel that
// receives its result. Cancelling ctx after Submit does not stop the dispatch.
func (s *Session) Submit(ctx context.Context, text string, mode predict.RequestMode) <-chan error {
	done := make(chan error, 1)
	ctx = context.WithoutCancel(ctx)
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		done <- s.HandlePredict(ctx, text, mode)
		close(done)
	}()
	return done
}

// SubmitBuffer is Submit with the text read from mode's buffer now.
func (s *Session) SubmitBuffer(ctx context.Context, mode predict.RequestMode) <-chan error {
	if mode == nil {
		done := make(chan error, 1)
		done <- errors.New("request mode is required")
		close(done)
		return done
	}
	return s.Submit(ctx, s.inputs.Text(predict.BufferKey(mode)), mode)
}

// PredictEach fires one single-platform dispatch per platform from each
// platform's own buffer. Every completion is merged on its own; one failure
// does not stop the others. The first error is returned.
func (s *Session) PredictEach(ctx context.Context) error {
	var g errgroup.Group
	for _, id := range platform.All() {
		mode := predict.SinglePlatform{Platform: id}
		g.Go(func() error {
			return s.PredictBuffer(ctx, mode)
		})
	}
	return g.Wait()
}

// Wait blocks until every Submit-ed dispatch has finished.
func (s *Session) Wait() {
	s.inflight.Wait()
}

func (s *Session) failLocked(mode predict.RequestMode, err error) {
	target := mode.Target()
	f := Failure{Target: target, Kind: "merge", Message: err.Error(), At: time.Now()}
	var df *predict.DispatchFailure
	if errors.As(err, &df) {
		f.Kind = string(df.Kind)
	}
	s.failures[target] = f
	logger.Warnf("prediction %s failed, results unchanged: %v", target, err)
	s.notifyLocked(Change{Target: target, State: s.state, Errors: s.copyFailuresLocked(), Err: err})
}

func (s *Session) notifyLocked(c Change) {
	for _, o := range s.observers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Errorf("session observer panic: %v", r)
				}
			}()
			o.SessionChanged(c)
		}()
	}
}

func (s *Session) copyFailuresLocked() map[string]Failure {
	out := make(map[string]Failure, len(s.failures))
	for k, v := range s.failures {
		out[k] = v
	}
	return out
}

// affectedTargets lists the error flags a successful merge of mode supersedes.
func affectedTargets(mode predict.RequestMode) []string {
	switch m := mode.(type) {
	case predict.SinglePlatform:
		return []string{m.Target()}
	case predict.AllPlatforms:
		// the all-platforms merge also resets the global label
		out := []string{m.Target(), predict.TargetGlobal}
		for _, id := range platform.All() {
			out = append(out, id.String())
		}
		return out
	case predict.GlobalCombined:
		return []string{m.Target()}
	default:
		return nil
	}
}
