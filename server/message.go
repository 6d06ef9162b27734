package server

import (
	"github.com/pthm-cable/voltex/metadata"
	"github.com/pthm-cable/voltex/pipeline"
	"github.com/pthm-cable/voltex/verify"
	"github.com/pthm-cable/voltex/volume"
)

// Inbound commands.
const (
	CommandGenerate = "generate"
	CommandVerify   = "verify"
)

// Outbound message types.
const (
	TypeProgress     = "progress"
	TypeResult       = "result"
	TypeVerification = "verification"
	TypeError        = "error"
)

// StageRequest tags errors in the inbound message itself.
const StageRequest = "request"

// Inbound is a client request. Config fields that are absent keep the
// server's defaults.
type Inbound struct {
	Command    string        `json:"command"`
	Config     volume.Config `json:"config"`
	IncludeRaw bool          `json:"includeRaw"`
}

// Outbound is any message sent to the client, selected by Type.
type Outbound struct {
	Type         string             `json:"type"`
	Task         uint64             `json:"task,omitempty"`
	Percent      float64            `json:"percent,omitempty"`
	Metadata     *metadata.Metadata `json:"metadata,omitempty"`
	Verification *verify.Result     `json:"verification,omitempty"`
	Summary      string             `json:"summary,omitempty"`
	PNG          []byte             `json:"png,omitempty"` // base64 in JSON
	Raw          []byte             `json:"raw,omitempty"`
	Stage        string             `json:"stage,omitempty"`
	Reason       string             `json:"reason,omitempty"`
}

func progressMessage(ev pipeline.Event) Outbound {
	return Outbound{Type: TypeProgress, Task: ev.Task, Percent: ev.Percent}
}

func verificationMessage(task uint64, v verify.Result) Outbound {
	return Outbound{
		Type:         TypeVerification,
		Task:         task,
		Verification: &v,
		Summary:      v.String(),
	}
}

func errorMessage(task uint64, err error) Outbound {
	stage := StageRequest
	if s, ok := pipeline.StageOf(err); ok {
		stage = string(s)
	}
	return Outbound{Type: TypeError, Task: task, Stage: stage, Reason: err.Error()}
}

// resultMessages converts a finished result. A PNG failure still sends the
// result, without the atlas, followed by an encode error.
func resultMessages(ev pipeline.Event, includeRaw bool) []Outbound {
	res := ev.Result
	v := res.Verification
	meta := res.Metadata

	out := Outbound{
		Type:         TypeResult,
		Task:         ev.Task,
		Metadata:     &meta,
		Verification: &v,
		Summary:      v.String(),
	}
	if includeRaw {
		out.Raw = res.Raw()
	}

	png, err := res.PNG(nil)
	if err != nil {
		return []Outbound{out, errorMessage(ev.Task, err)}
	}
	out.PNG = png
	return []Outbound{out}
}
