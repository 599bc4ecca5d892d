package pipeline

import (
	"errors"
	"fmt"

	"github.com/curiomarket/appraise-cli/internal/model"
	"github.com/curiomarket/appraise-cli/internal/schema"
	"github.com/curiomarket/appraise-cli/pkg/vision"
)

// PipelineError is the terminal failure of a run, tagged with the stage that
// caused it. No partial FinalAnalysis accompanies it.
type PipelineError struct {
	Stage string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline failed at stage %q: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// failStage wraps a stage error, preserving an existing stage tag if the
// error already carries one (the parallel pair funnels through here twice).
func failStage(stage string, err error) *PipelineError {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe
	}
	var sv *schema.Violation
	if errors.As(err, &sv) {
		stage = sv.Stage
	}
	return &PipelineError{Stage: stage, Err: err}
}

// ErrorKind names the error taxonomy bucket for an error, for terminal
// progress events and API responses.
func ErrorKind(err error) string {
	var invalid *model.InvalidInputError
	if errors.As(err, &invalid) {
		return "invalid_input"
	}
	var sv *schema.Violation
	if errors.As(err, &sv) {
		return "schema_violation"
	}
	var se *vision.ServiceError
	if errors.As(err, &se) {
		return "service_unavailable"
	}
	var pe *PipelineError
	if errors.As(err, &pe) {
		return "pipeline_failed"
	}
	return "internal"
}
