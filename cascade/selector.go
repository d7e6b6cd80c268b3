package cascade

import (
	"context"
	"errors"
	"sync"
)

type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusLoaded
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusLoaded:
		return "loaded"
	case StatusError:
		return "error"
	default:
		return "idle"
	}
}

// ErrSuperseded is returned by a load whose result was discarded because a newer load or a
// reset happened while it was in flight.
var ErrSuperseded = errors.New("load superseded")

// Selector holds the options of one dropdown. Every Load cancels the one in flight; a result
// that arrives after a newer Load or Reset is dropped, so options never go backwards.
type Selector[T any] struct {
	mu         sync.Mutex
	status     Status
	options    []T
	err        error
	generation uint64
	cancel     context.CancelFunc

	notifier       Notifier
	failureMessage string
}

// NewSelector reports load failures through n with failureMessage.
func NewSelector[T any](n Notifier, failureMessage string) *Selector[T] {
	return &Selector[T]{notifier: notifierOrDiscard(n), failureMessage: failureMessage}
}

func (s *Selector[T]) Load(ctx context.Context, fetch func(context.Context) ([]T, error)) error {
	return s.LoadThen(ctx, fetch, nil)
}

// LoadThen is Load with a commit hook that runs only when this load's result is kept.
// On failure the previous options stay in place.
func (s *Selector[T]) LoadThen(ctx context.Context, fetch func(context.Context) ([]T, error), commit func([]T)) error {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.generation++
	generation := s.generation
	loadCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.status = StatusLoading
	s.mu.Unlock()

	result, err := fetch(loadCtx)

	s.mu.Lock()
	if generation != s.generation {
		s.mu.Unlock()
		cancel()
		return ErrSuperseded
	}
	cancel()
	s.cancel = nil
	if err != nil {
		s.status = StatusError
		s.err = err
		s.mu.Unlock()
		s.notifier.Notify(LevelError, s.failureMessage)
		return err
	}
	if result == nil {
		result = []T{}
	}
	s.options = result
	s.status = StatusLoaded
	s.err = nil
	if commit != nil {
		commit(result)
	}
	s.mu.Unlock()
	return nil
}

// Reset drops the options and abandons any load in flight.
func (s *Selector[T]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.generation++
	s.options = nil
	s.status = StatusIdle
	s.err = nil
}

// Replace sets options computed locally, abandoning any load in flight.
func (s *Selector[T]) Replace(options []T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.generation++
	s.options = append([]T{}, options...)
	s.status = StatusLoaded
	s.err = nil
}

// Update edits the current options in place without changing the status.
func (s *Selector[T]) Update(edit func([]T) []T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.options = edit(s.options)
}

// Options returns a copy of the current options.
func (s *Selector[T]) Options() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]T{}, s.options...)
}

func (s *Selector[T]) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Selector[T]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Find returns the first option matching pred.
func (s *Selector[T]) Find(pred func(T) bool) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.options {
		if pred(o) {
			return o, true
		}
	}
	var zero T
	return zero, false
}
