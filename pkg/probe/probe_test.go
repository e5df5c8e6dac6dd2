package probe

import (
	"context"
	"errors"
	"testing"
)

func TestRunAndAnalyze(t *testing.T) {
	boom := errors.New("boom")
	probes := []Probe{
		{Name: "ok", Check: func(context.Context) error { return nil }},
		{Name: "soft", Check: func(context.Context) error { return boom }},
	}

	results := Run(context.Background(), probes)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Err != nil {
		t.Errorf("probe %q failed: %v", results[0].Probe.Name, results[0].Err)
	}

	// A non-critical failure does not block startup.
	if err := Analyze(results); err != nil {
		t.Errorf("Analyze() = %v, want nil", err)
	}
}

func TestAnalyzeCriticalFailure(t *testing.T) {
	boom := errors.New("boom")
	results := Run(context.Background(), []Probe{
		{Name: "hard", Critical: true, Check: func(context.Context) error { return boom }},
	})

	err := Analyze(results)
	if !errors.Is(err, boom) {
		t.Errorf("Analyze() = %v, want wrapped boom", err)
	}
}

func TestRunHonorsContext(t *testing.T) {
	var sawDeadline bool
	Run(context.Background(), []Probe{
		{Name: "ctx", Check: func(ctx context.Context) error {
			_, sawDeadline = ctx.Deadline()
			return nil
		}},
	})
	if !sawDeadline {
		t.Error("probe context has no deadline")
	}
}
