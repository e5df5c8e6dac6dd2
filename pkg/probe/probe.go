// Package probe runs startup checks and decides whether the application
// may come up.
package probe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// perProbeTimeout bounds each individual check.
const perProbeTimeout = 5 * time.Second

// Probe is a single startup check. Critical failures abort startup;
// non-critical ones are logged and tolerated.
type Probe struct {
	Name     string
	Check    func(ctx context.Context) error
	Critical bool
}

// Result is the outcome of one probe.
type Result struct {
	Probe    Probe
	Err      error
	Duration time.Duration
}

// Run executes the probes in order and returns their results.
func Run(ctx context.Context, probes []Probe) []Result {
	results := make([]Result, len(probes))
	for i, p := range probes {
		start := time.Now()
		probeCtx, cancel := context.WithTimeout(ctx, perProbeTimeout)
		err := p.Check(probeCtx)
		cancel()
		results[i] = Result{Probe: p, Err: err, Duration: time.Since(start)}
	}
	return results
}

// Analyze logs every result and returns the joined errors of failed
// critical probes, or nil when startup may proceed.
func Analyze(results []Result) error {
	var critical []error
	for _, r := range results {
		if r.Err == nil {
			slog.Info("startup check passed", "probe", r.Probe.Name,
				"duration", r.Duration.Round(time.Millisecond))
			continue
		}
		slog.Error("startup check failed", "probe", r.Probe.Name,
			"critical", r.Probe.Critical, "error", r.Err)
		if r.Probe.Critical {
			critical = append(critical, fmt.Errorf("%s: %w", r.Probe.Name, r.Err))
		}
	}
	if len(critical) > 0 {
		return errors.Join(critical...)
	}
	return nil
}
