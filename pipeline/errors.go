package pipeline

import "errors"

// Stage names the pipeline step an error came from.
type Stage string

const (
	StageConfig   Stage = "config"
	StageVolume   Stage = "volume"
	StageVerify   Stage = "verify"
	StageAtlas    Stage = "atlas"
	StageMetadata Stage = "metadata"
	StageEncode   Stage = "encode"
	StageTask     Stage = "task"
)

// StageError wraps a failure with the stage that produced it.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	if e == nil {
		return ""
	}
	return "pipeline: " + string(e.Stage) + ": " + e.Err.Error()
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// StageOf returns the stage recorded in err, if any.
func StageOf(err error) (Stage, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return "", false
}

func stageError(stage Stage, err error) error {
	return &StageError{Stage: stage, Err: err}
}
