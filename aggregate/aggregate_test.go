package aggregate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestRun_FailureIsolatedToSection(t *testing.T) {
	r := NewRunner(zerolog.Nop(), 0)

	steps := []Step{
		{Name: "a", Default: 0, Run: func(context.Context) (any, error) { return 1, nil }},
		{Name: "b", Default: []string{}, Run: func(context.Context) (any, error) {
			return nil, errors.New("query failed")
		}},
		{Name: "c", Default: 0, Run: func(context.Context) (any, error) { return 3, nil }},
	}

	report := r.Run(t.Context(), steps)

	if got := report.Value("a"); got != 1 {
		t.Fatalf("a = %v, want 1", got)
	}
	if got := report.Value("c"); got != 3 {
		t.Fatalf("c = %v, want 3", got)
	}

	b := report["b"]
	if !b.Failed() {
		t.Fatal("b must be marked failed")
	}
	if got, ok := b.Value.([]string); !ok || len(got) != 0 {
		t.Fatalf("b = %v, want declared empty-slice default", b.Value)
	}
}

func TestRun_EverySectionPresent(t *testing.T) {
	r := NewRunner(zerolog.Nop(), 0)

	steps := []Step{
		{Name: "x", Default: nil, Run: func(context.Context) (any, error) { return nil, errors.New("boom") }},
		{Name: "y", Default: nil, Run: func(context.Context) (any, error) { return "ok", nil }},
	}

	report := r.Run(t.Context(), steps)
	if len(report) != 2 {
		t.Fatalf("report has %d sections, want 2", len(report))
	}
	for _, name := range []string{"x", "y"} {
		if _, ok := report[name]; !ok {
			t.Fatalf("missing section %q", name)
		}
	}
}

func TestRun_PanicRecovered(t *testing.T) {
	r := NewRunner(zerolog.Nop(), 0)

	steps := []Step{
		{Name: "p", Default: "fallback", Run: func(context.Context) (any, error) {
			panic("nil map write")
		}},
		{Name: "q", Default: nil, Run: func(context.Context) (any, error) { return "fine", nil }},
	}

	report := r.Run(t.Context(), steps)

	if got := report.Value("p"); got != "fallback" {
		t.Fatalf("p = %v, want fallback", got)
	}
	if !report["p"].Failed() {
		t.Fatal("panicked step must be marked failed")
	}
	if got := report.Value("q"); got != "fine" {
		t.Fatalf("q = %v, want fine", got)
	}
}

func TestRun_StepTimeout(t *testing.T) {
	r := NewRunner(zerolog.Nop(), 20*time.Millisecond)

	steps := []Step{
		{Name: "slow", Default: -1, Run: func(ctx context.Context) (any, error) {
			select {
			case <-time.After(time.Second):
				return 42, nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}},
		{Name: "fast", Default: -1, Run: func(context.Context) (any, error) { return 7, nil }},
	}

	report := r.Run(t.Context(), steps)

	if got := report.Value("slow"); got != -1 {
		t.Fatalf("slow = %v, want default -1", got)
	}
	if got := report.Value("fast"); got != 7 {
		t.Fatalf("fast = %v, want 7", got)
	}
}

func TestRun_LateValueCountsAsFailure(t *testing.T) {
	r := NewRunner(zerolog.Nop(), 10*time.Millisecond)

	steps := []Step{
		{Name: "late", Default: "default", Run: func(ctx context.Context) (any, error) {
			time.Sleep(50 * time.Millisecond)
			return "too late", nil
		}},
	}

	report := r.Run(t.Context(), steps)
	if got := report.Value("late"); got != "default" {
		t.Fatalf("late = %v, want default", got)
	}
}
