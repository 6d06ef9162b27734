package pipeline

import (
	"testing"

	"github.com/pthm-cable/voltex/verify"
)

func drain(events <-chan Event) []Event {
	var out []Event
	for ev := range events {
		out = append(out, ev)
	}
	return out
}

func TestSessionSubmit(t *testing.T) {
	s := NewSession(Options{SkipStats: true})
	id, events := s.Submit(scenarioConfig())

	got := drain(events)
	if len(got) != 17 {
		t.Fatalf("events = %d, want 16 progress + 1 result", len(got))
	}

	var last float64
	for _, ev := range got[:16] {
		if ev.Type != EventProgress || ev.Task != id {
			t.Fatalf("event = %+v, want progress for task %d", ev, id)
		}
		if ev.Percent < last {
			t.Errorf("progress decreased: %v -> %v", last, ev.Percent)
		}
		last = ev.Percent
	}

	final := got[16]
	if final.Type != EventResult || final.Result == nil {
		t.Fatalf("final event = %+v, want result", final)
	}
	if s.Latest() != final.Result {
		t.Error("Latest() does not hold the delivered result")
	}
	if s.Perf().Runs != 1 {
		t.Errorf("perf runs = %d, want 1", s.Perf().Runs)
	}
}

func TestSessionError(t *testing.T) {
	s := NewSession(Options{})
	cfg := scenarioConfig()
	cfg.Resolution = 0

	_, events := s.Submit(cfg)
	got := drain(events)
	if len(got) != 1 || got[0].Type != EventError {
		t.Fatalf("events = %+v, want a single error", got)
	}
	if stage, _ := StageOf(got[0].Err); stage != StageConfig {
		t.Errorf("stage = %q, want config", stage)
	}
	if s.Latest() != nil {
		t.Error("Latest() holds a result after failure")
	}
}

func TestSessionSupersede(t *testing.T) {
	s := NewSession(Options{SkipStats: true})

	slow := scenarioConfig()
	slow.Resolution = 96
	oldID, oldEvents := s.Submit(slow)
	newID, newEvents := s.Submit(scenarioConfig())

	if newID <= oldID || s.Current() != newID {
		t.Fatalf("ids: old %d new %d current %d", oldID, newID, s.Current())
	}

	for _, ev := range drain(oldEvents) {
		if ev.Type == EventResult {
			t.Error("superseded task delivered a result")
		}
	}

	got := drain(newEvents)
	if len(got) == 0 || got[len(got)-1].Type != EventResult {
		t.Fatalf("new task did not deliver a result: %+v", got)
	}
	if s.Latest() != got[len(got)-1].Result {
		t.Error("Latest() is not the new task's result")
	}
}

func TestSessionSubmitVerify(t *testing.T) {
	s := NewSession(Options{})
	_, events := s.SubmitVerify(scenarioConfig())

	got := drain(events)
	if len(got) != 1 || got[0].Type != EventVerification {
		t.Fatalf("events = %+v, want one verification", got)
	}
	if got[0].Verification.Status != verify.StatusPass {
		t.Errorf("status = %s, want PASS", got[0].Verification.Status)
	}
}

func TestSessionVerifyDoesNotSupersede(t *testing.T) {
	s := NewSession(Options{SkipStats: true})
	genID, genEvents := s.Submit(scenarioConfig())
	verifyID, verifyEvents := s.SubmitVerify(scenarioConfig())

	if verifyID == genID || s.Current() != genID {
		t.Fatalf("ids: generate %d verify %d current %d", genID, verifyID, s.Current())
	}
	drain(verifyEvents)

	got := drain(genEvents)
	if len(got) == 0 || got[len(got)-1].Type != EventResult {
		t.Fatal("generation result dropped after a verify request")
	}
}

func TestRunTaskRecoversPanic(t *testing.T) {
	_, err := runTask(func() (*Result, error) { panic("boom") })
	if stage, ok := StageOf(err); !ok || stage != StageTask {
		t.Fatalf("err = %v, want task stage", err)
	}
}
