package mapcore

import (
	"context"
	"sync"
	"time"

	"localist_backend/internal/geo"
	"localist_backend/platform/apperr"
)

// Geolocation failure codes. Values match the browser Geolocation API so
// clients can forward errors verbatim.
const (
	CodePermissionDenied    = 1
	CodePositionUnavailable = 2
	CodeTimeout             = 3
)

// LocationSample is one position fix.
type LocationSample struct {
	Point     geo.Point `json:"point"`
	AccuracyM float64   `json:"accuracyMeters"`
	Timestamp time.Time `json:"timestamp"`
}

// LocationError is a classified geolocation failure.
type LocationError struct {
	Code int
}

func (e *LocationError) Error() string {
	switch e.Code {
	case CodePermissionDenied:
		return "geolocation permission denied"
	case CodeTimeout:
		return "geolocation timed out"
	default:
		return "position unavailable"
	}
}

// LocationErrorKey maps a geolocation failure to its user-facing message
// key. Unrecognized codes fall back to "unavailable".
func LocationErrorKey(err error) string {
	if le, ok := err.(*LocationError); ok {
		switch le.Code {
		case CodePermissionDenied:
			return "errors.locationDenied"
		case CodePositionUnavailable:
			return "errors.locationUnavailable"
		case CodeTimeout:
			return "errors.locationTimeout"
		}
	}
	return "errors.locationUnavailable"
}

// WatchOptions tune a location request.
type WatchOptions struct {
	HighAccuracy bool
	Timeout      time.Duration
	MaximumAge   time.Duration
}

// DefaultWatchOptions mirror the tracking profile used for continuous
// watching: high accuracy, 5s fix timeout, fixes up to 10s old accepted.
func DefaultWatchOptions() WatchOptions {
	return WatchOptions{
		HighAccuracy: true,
		Timeout:      5 * time.Second,
		MaximumAge:   10 * time.Second,
	}
}

// WatchHandle is a live location subscription. Stop is idempotent.
type WatchHandle interface {
	Stop()
}

// LocationSource supplies position fixes. Watch delivers every subsequent
// fix (or classified error) to fn until the handle is stopped.
type LocationSource interface {
	Current(ctx context.Context, opts WatchOptions) (LocationSample, error)
	Watch(opts WatchOptions, fn func(LocationSample, error)) (WatchHandle, error)
}

// ClientLocationSource is fed by the client over HTTP: the browser owns the
// actual geolocation hardware and pushes fixes (or error codes) up. Current
// blocks until the next push, honoring the request timeout and MaximumAge
// for the last cached fix.
type ClientLocationSource struct {
	mu       sync.Mutex
	last     *LocationSample
	waiters  []chan pushResult
	watchers map[int]func(LocationSample, error)
	nextID   int
}

type pushResult struct {
	sample LocationSample
	err    error
}

// NewClientLocationSource creates an empty source.
func NewClientLocationSource() *ClientLocationSource {
	return &ClientLocationSource{watchers: make(map[int]func(LocationSample, error))}
}

// Push delivers a fix from the client to every pending Current call and
// every active watcher.
func (s *ClientLocationSource) Push(sample LocationSample) {
	if sample.Timestamp.IsZero() {
		sample.Timestamp = time.Now()
	}
	s.deliver(pushResult{sample: sample})
}

// PushError delivers a classified failure from the client.
func (s *ClientLocationSource) PushError(code int) {
	s.deliver(pushResult{err: &LocationError{Code: code}})
}

func (s *ClientLocationSource) deliver(result pushResult) {
	s.mu.Lock()
	if result.err == nil {
		sample := result.sample
		s.last = &sample
	}
	waiters := s.waiters
	s.waiters = nil
	watchers := make([]func(LocationSample, error), 0, len(s.watchers))
	for _, fn := range s.watchers {
		watchers = append(watchers, fn)
	}
	s.mu.Unlock()

	for _, ch := range waiters {
		ch <- result
	}
	for _, fn := range watchers {
		fn(result.sample, result.err)
	}
}

// Current returns the cached fix if fresh enough, otherwise blocks for the
// next push. Times out with a timeout-classified error.
func (s *ClientLocationSource) Current(ctx context.Context, opts WatchOptions) (LocationSample, error) {
	s.mu.Lock()
	if s.last != nil && opts.MaximumAge > 0 && time.Since(s.last.Timestamp) <= opts.MaximumAge {
		sample := *s.last
		s.mu.Unlock()
		return sample, nil
	}

	ch := make(chan pushResult, 1)
	s.waiters = append(s.waiters, ch)
	s.mu.Unlock()

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case result := <-ch:
		return result.sample, result.err
	case <-timer.C:
		return LocationSample{}, &LocationError{Code: CodeTimeout}
	case <-ctx.Done():
		return LocationSample{}, apperr.Wrap(apperr.KindInternal, "location wait canceled", ctx.Err())
	}
}

type clientWatchHandle struct {
	source *ClientLocationSource
	id     int
	once   sync.Once
}

func (h *clientWatchHandle) Stop() {
	h.once.Do(func() {
		h.source.mu.Lock()
		delete(h.source.watchers, h.id)
		h.source.mu.Unlock()
	})
}

// Watch subscribes fn to every subsequent push.
func (s *ClientLocationSource) Watch(_ WatchOptions, fn func(LocationSample, error)) (WatchHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.watchers[id] = fn
	return &clientWatchHandle{source: s, id: id}, nil
}

var _ LocationSource = (*ClientLocationSource)(nil)
