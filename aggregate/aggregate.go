// Package aggregate builds one composite report out of many independent,
// individually fallible sub-computations.
//
// Each step is named and declares a neutral default. A step that returns an
// error, panics, or overruns the per-step timeout contributes its default
// instead of failing the whole report: the report always carries a section
// for every declared step and Run never returns an error.
package aggregate

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Step is one named, independent sub-computation of a composite report.
type Step struct {
	// Name identifies the section the step fills.
	Name string

	// Default is the neutral value used when Run fails (nil, an empty
	// slice/map, a typed zero struct; the caller decides).
	Default any

	// Run produces the section value. It must honor ctx's deadline; a step
	// that ignores it still only delays its own section, because the spent
	// budget is charged per step.
	Run func(ctx context.Context) (any, error)
}

// Section is the outcome of one step.
type Section struct {
	Value any
	Err   error // nil when the step succeeded
}

// Failed reports whether the section holds its default due to a step failure.
func (s Section) Failed() bool { return s.Err != nil }

// Report maps step names to their outcomes.
type Report map[string]Section

// Value returns the section value for name, which is the declared default
// when the step failed or the name was never declared.
func (r Report) Value(name string) any {
	return r[name].Value
}

// Runner executes step lists with a fixed per-step timeout.
type Runner struct {
	log     zerolog.Logger
	timeout time.Duration
}

// NewRunner creates a Runner. timeout bounds each individual step; zero
// disables the per-step deadline.
func NewRunner(log zerolog.Logger, timeout time.Duration) *Runner {
	return &Runner{log: log, timeout: timeout}
}

// Run executes the steps in order and returns the assembled report. Every
// declared name has a section; failures are logged and replaced by the step's
// default. Run itself never fails and never propagates a panic.
func (r *Runner) Run(ctx context.Context, steps []Step) Report {
	report := make(Report, len(steps))
	for _, step := range steps {
		value, err := r.runStep(ctx, step)
		if err != nil {
			r.log.Warn().
				Str("section", step.Name).
				Err(err).
				Msg("aggregate step failed, using default")
			report[step.Name] = Section{Value: step.Default, Err: err}
			continue
		}
		report[step.Name] = Section{Value: value}
	}
	return report
}

// runStep executes a single step with panic isolation and the per-step
// deadline applied.
func (r *Runner) runStep(ctx context.Context, step Step) (value any, err error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	defer func() {
		if rec := recover(); rec != nil {
			value = nil
			err = fmt.Errorf("aggregate: step %q panicked: %v", step.Name, rec)
		}
	}()

	value, err = step.Run(ctx)
	if err == nil && ctx.Err() != nil {
		// A value delivered after the deadline counts as a failure.
		return nil, ctx.Err()
	}
	return value, err
}
