package bulkload

import (
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/graphbulk/graphbulk.go/pkg/logger"
)

// StateTransition is one timed phase of a load.
type StateTransition struct {
	StateName         string        `json:"stateName"`
	StartTime         time.Time     `json:"startTime"`
	EndTime           time.Time     `json:"endTime"`
	Duration          time.Duration `json:"durationInNanoSeconds"`
	DurationInMinutes float64       `json:"durationInMinutes"`
}

func (s *StateTransition) stop(now time.Time) {
	s.EndTime = now
	s.Duration = now.Sub(s.StartTime)
	s.DurationInMinutes = s.Duration.Minutes()
}

// RecordError is a record that could not be converted or written.
type RecordError struct {
	// Index is the position of the object in its input slice, or -1 for
	// write failures.
	Index      int    `json:"index"`
	Kind       string `json:"kind"`
	ID         string `json:"id,omitempty"`
	StatusCode int    `json:"statusCode,omitempty"`
	Message    string `json:"error"`
	Err        error  `json:"-"`
}

// Results collects the counts, timings and failures of one load. It is safe
// for concurrent use.
type Results struct {
	mu sync.Mutex

	StartTime         time.Time         `json:"startTime"`
	EndTime           time.Time         `json:"endTime"`
	Duration          time.Duration     `json:"durationInNanoSeconds"`
	DurationInMinutes float64           `json:"durationInMinutes"`
	VertexCount       int               `json:"vertexCount"`
	EdgeCount         int               `json:"edgeCount"`
	Succeeded         int               `json:"succeeded"`
	Failed            int               `json:"failed"`
	Skipped           int               `json:"skipped"`
	States            []StateTransition `json:"states"`
	Errors            []RecordError     `json:"errors"`
	Exception         string            `json:"exception,omitempty"`

	logger logger.Logger
	now    func() time.Time
}

func NewResults(l logger.Logger) *Results {
	r := &Results{
		States: []StateTransition{},
		Errors: []RecordError{},
		logger: l,
		now:    time.Now,
	}
	r.StartTime = r.now()
	return r
}

// TransitionState stops the current state and starts a new one.
func (r *Results) TransitionState(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if n := len(r.States); n > 0 {
		r.States[n-1].stop(now)
	}
	r.logger.Info("bulkload state transition", "state", name)
	r.States = append(r.States, StateTransition{StateName: name, StartTime: now})
}

func (r *Results) SetCounts(vertices, edges int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.VertexCount = vertices
	r.EdgeCount = edges
}

func (r *Results) AddRecordError(e RecordError) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e.Message == "" && e.Err != nil {
		e.Message = e.Err.Error()
	}
	r.Errors = append(r.Errors, e)
	r.logger.Warn("bulkload record failed", "kind", e.Kind, "index", e.Index, "id", e.ID, "error", e.Message)
}

func (r *Results) addSucceeded(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Succeeded += n
}

func (r *Results) addFailed(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Failed += n
}

func (r *Results) addSkipped(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Skipped += n
}

// Failure records the error that aborted the load.
func (r *Results) Failure(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Exception = err.Error()
	r.logger.Error("bulkload failed", "error", err)
}

// End stops the current state and the overall clock.
func (r *Results) End() {
	r.mu.Lock()
	now := r.now()
	if n := len(r.States); n > 0 && r.States[n-1].EndTime.IsZero() {
		r.States[n-1].stop(now)
	}
	r.EndTime = now
	r.Duration = now.Sub(r.StartTime)
	r.DurationInMinutes = r.Duration.Minutes()
	r.mu.Unlock()

	r.logger.Info("bulkload complete",
		"vertices", r.VertexCount,
		"edges", r.EdgeCount,
		"succeeded", r.Succeeded,
		"failed", r.Failed,
		"skipped", r.Skipped,
		"duration", r.Duration.String(),
	)
}

// JSON returns the results as a JSON document.
func (r *Results) JSON() ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return json.Marshal(r)
}
