package pipeline

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/pthm-cable/voltex/telemetry"
	"github.com/pthm-cable/voltex/verify"
	"github.com/pthm-cable/voltex/volume"
)

// EventType tags an Event.
type EventType string

const (
	EventProgress     EventType = "progress"
	EventResult       EventType = "result"
	EventVerification EventType = "verification"
	EventError        EventType = "error"
)

// Event is one message from a running task. Exactly one of Percent,
// Result, Verification or Err is meaningful, selected by Type.
type Event struct {
	Type         EventType
	Task         uint64
	Percent      float64
	Result       *Result
	Verification verify.Result
	Err          error
}

// Session runs generation tasks off the caller's goroutine. Submitting a
// new task supersedes the previous one: the old task runs to completion
// but its remaining events are dropped.
type Session struct {
	opts Options

	mu      sync.Mutex
	seq     uint64
	current uint64
	latest  *Result
	perf    *telemetry.PerfCollector
}

// NewSession creates a session. opts.Progress is ignored; progress is
// delivered as events.
func NewSession(opts Options) *Session {
	opts.Progress = nil
	return &Session{
		opts: opts,
		perf: telemetry.NewPerfCollector(16),
	}
}

// Submit starts a generation task and returns its event stream. The
// channel is closed after the final result or error. Events for a task
// that has been superseded are not delivered.
func (s *Session) Submit(cfg volume.Config) (uint64, <-chan Event) {
	id := s.begin()
	events := make(chan Event, max(cfg.Resolution, 0)+2)

	go func() {
		defer close(events)

		opts := s.opts
		opts.Progress = func(percent float64) {
			s.send(events, Event{Type: EventProgress, Task: id, Percent: percent})
		}

		res, err := runTask(func() (*Result, error) { return Generate(cfg, opts) })
		if err != nil {
			s.fail(id)
			s.send(events, Event{Type: EventError, Task: id, Err: err})
			return
		}

		if s.finish(id, res) {
			events <- Event{Type: EventResult, Task: id, Result: res}
		}
	}()

	return id, events
}

// SubmitVerify runs only the tileability check. It does not supersede a
// pending generation task.
func (s *Session) SubmitVerify(cfg volume.Config) (uint64, <-chan Event) {
	s.mu.Lock()
	s.seq++
	id := s.seq
	s.mu.Unlock()

	events := make(chan Event, 1)
	go func() {
		defer close(events)

		var v verify.Result
		_, err := runTask(func() (*Result, error) {
			var err error
			v, err = Verify(cfg)
			return nil, err
		})
		if err != nil {
			events <- Event{Type: EventError, Task: id, Err: err}
			return
		}
		events <- Event{Type: EventVerification, Task: id, Verification: v}
	}()

	return id, events
}

// Latest returns the most recent completed result, or nil while a task
// is pending or after a failure.
func (s *Session) Latest() *Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

// Current returns the id of the most recently submitted generation task.
func (s *Session) Current() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Perf returns timing statistics over recent completed runs.
func (s *Session) Perf() telemetry.PerfStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.perf.Stats()
}

func (s *Session) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.current = s.seq
	s.latest = nil
	return s.current
}

// send delivers ev if its task is still current. The channel is sized so
// this never blocks.
func (s *Session) send(events chan<- Event, ev Event) {
	s.mu.Lock()
	stale := ev.Task != s.current
	s.mu.Unlock()
	if stale {
		return
	}
	events <- ev
}

func (s *Session) finish(id uint64, res *Result) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.perf.Record(res.Perf)
	if id != s.current {
		s.logger().Debug("dropping superseded result", "task", id, "current", s.current)
		return false
	}
	s.latest = res
	return true
}

func (s *Session) fail(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == s.current {
		s.latest = nil
	}
}

func (s *Session) logger() *slog.Logger {
	return s.opts.logger()
}

// runTask converts a panic inside fn into a StageTask error.
func runTask(fn func() (*Result, error)) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = stageError(StageTask, fmt.Errorf("task panicked: %v", r))
		}
	}()
	return fn()
}
