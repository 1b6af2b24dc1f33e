package events

import (
	"context"

	"go.uber.org/zap"
)

// Policy decides what a failed step does to the surrounding request.
type Policy int

const (
	// Fatal failures abort the remaining steps and fail the request.
	Fatal Policy = iota
	// NonFatal failures are logged and the sequence continues.
	NonFatal
)

func (p Policy) String() string {
	if p == NonFatal {
		return "non_fatal"
	}
	return "fatal"
}

// Outcome is the evaluated result of one step.
type Outcome int

const (
	Succeeded Outcome = iota
	FailedFatal
	FailedNonFatal
	Skipped
)

func (o Outcome) String() string {
	switch o {
	case Succeeded:
		return "success"
	case FailedFatal:
		return "fatal_error"
	case FailedNonFatal:
		return "non_fatal_error"
	default:
		return "skipped"
	}
}

// Step is one row of a lifecycle table.
type Step struct {
	Name   string
	Policy Policy
	Run    func(ctx context.Context) error
}

// StepResult records what happened to a step.
type StepResult struct {
	Name    string
	Outcome Outcome
	Err     error
}

// Recorder receives step outcomes, typically a metrics sink.
type Recorder interface {
	RecordStep(step, outcome string)
}

// Report is the full evaluation of a step table.
type Report struct {
	Results []StepResult
}

// Err returns the fatal error that stopped the sequence, if any.
func (r Report) Err() error {
	for _, res := range r.Results {
		if res.Outcome == FailedFatal {
			return res.Err
		}
	}
	return nil
}

// Outcome returns the recorded outcome for the named step.
func (r Report) Outcome(name string) Outcome {
	for _, res := range r.Results {
		if res.Name == name {
			return res.Outcome
		}
	}
	return Skipped
}

// Run evaluates steps in order. The first fatal failure stops the sequence and
// marks the rest Skipped; non-fatal failures are logged and swallowed.
func Run(ctx context.Context, logger *zap.Logger, recorder Recorder, steps ...Step) Report {
	report := Report{Results: make([]StepResult, 0, len(steps))}
	aborted := false

	for _, step := range steps {
		if aborted {
			report.Results = append(report.Results, StepResult{Name: step.Name, Outcome: Skipped})
			continue
		}

		res := StepResult{Name: step.Name, Outcome: Succeeded}
		if err := step.Run(ctx); err != nil {
			res.Err = err
			if step.Policy == Fatal {
				res.Outcome = FailedFatal
				aborted = true
				logger.Error("lifecycle step failed", zap.String("step", step.Name), zap.Error(err))
			} else {
				res.Outcome = FailedNonFatal
				logger.Warn("lifecycle step failed; continuing", zap.String("step", step.Name), zap.Error(err))
			}
		}
		if recorder != nil {
			recorder.RecordStep(step.Name, res.Outcome.String())
		}
		report.Results = append(report.Results, res)
	}
	return report
}
