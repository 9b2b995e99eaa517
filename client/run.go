package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/1broseidon/aicookbook/common"
	"github.com/1broseidon/aicookbook/internal/console"
	"github.com/1broseidon/aicookbook/internal/logging"
)

// Status is the result of one provider call.
type Status int

const (
	Succeeded Status = iota
	Skipped
	Failed
)

func (s Status) String() string {
	switch s {
	case Skipped:
		return "skipped"
	case Failed:
		return "failed"
	default:
		return "succeeded"
	}
}

// Outcome records what happened to one provider call. Err is set for
// Failed outcomes, Reason for Skipped ones.
type Outcome struct {
	Provider   string
	Capability common.Capability
	Status     Status
	Reason     string
	Err        error
	Files      []string
}

// Call describes one provider call for Run.
type Call[T any] struct {
	Provider   string
	Capability common.Capability
	// Precondition returns an error when the call must be skipped.
	Precondition func() error
	Invoke       func(ctx context.Context) (T, error)
	// Report prints the result and returns the paths of any files it wrote.
	Report func(result T) ([]string, error)
}

// Runner carries the output sinks shared by every call.
type Runner struct {
	Printer *console.Printer
	Logger  logging.Logger
}

func (r Runner) withDefaults() Runner {
	if r.Printer == nil {
		r.Printer = console.Discard()
	}
	if r.Logger == nil {
		r.Logger = logging.Nop()
	}
	return r
}

// Run checks the precondition, invokes the call once and reports the result.
// Errors and panics are printed and returned in the Outcome, never propagated.
func Run[T any](ctx context.Context, r Runner, call Call[T]) (out Outcome) {
	r = r.withDefaults()
	out = Outcome{Provider: call.Provider, Capability: call.Capability}
	r.Printer.Heading("%s %s", call.Provider, call.Capability)

	defer func() {
		if rec := recover(); rec != nil {
			out = r.fail(out, fmt.Errorf("panic: %v", rec))
		}
	}()

	if call.Precondition != nil {
		if err := call.Precondition(); err != nil {
			r.Printer.Skip("Skipping %s %s: %v", call.Provider, call.Capability, err)
			r.Logger.Infof("skipped %s %s: %v", call.Provider, call.Capability, err)
			out.Status = Skipped
			out.Reason = err.Error()
			return out
		}
	}
	if call.Invoke == nil {
		return r.fail(out, errors.New("no call defined"))
	}

	r.Logger.Debugf("calling %s %s", call.Provider, call.Capability)
	result, err := call.Invoke(ctx)
	if err != nil {
		return r.fail(out, err)
	}

	if call.Report != nil {
		files, err := call.Report(result)
		out.Files = files
		if err != nil {
			return r.fail(out, err)
		}
	}

	r.Logger.Infof("%s %s succeeded", call.Provider, call.Capability)
	out.Status = Succeeded
	return out
}

func (r Runner) fail(out Outcome, err error) Outcome {
	r.Printer.Error("Error (%s %s): %v", out.Provider, out.Capability, err)
	r.Logger.Errorf("%s %s failed: %v", out.Provider, out.Capability, err)
	out.Status = Failed
	out.Err = err
	return out
}

// Summary counts outcomes by status.
type Summary struct {
	Succeeded int
	Skipped   int
	Failed    int
}

// Summarize tallies outcomes.
func Summarize(outcomes []Outcome) Summary {
	var s Summary
	for _, o := range outcomes {
		switch o.Status {
		case Succeeded:
			s.Succeeded++
		case Skipped:
			s.Skipped++
		case Failed:
			s.Failed++
		}
	}
	return s
}

func (s Summary) String() string {
	return fmt.Sprintf("%d succeeded, %d skipped, %d failed", s.Succeeded, s.Skipped, s.Failed)
}
