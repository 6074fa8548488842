package health

import (
	"context"
	"time"
)

type CheckResult struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
}

type Checker interface {
	Check(ctx context.Context) CheckResult
}

// ProbeRunner runs readiness checks, each under its own timeout.
type ProbeRunner struct {
	checkers  []Checker
	timeout   time.Duration
	startedAt time.Time
}

func NewProbeRunner(timeout time.Duration, checkers ...Checker) *ProbeRunner {
	if timeout <= 0 {
		timeout = time.Second
	}

	active := make([]Checker, 0, len(checkers))
	for _, c := range checkers {
		if c != nil {
			active = append(active, c)
		}
	}

	return &ProbeRunner{
		checkers:  active,
		timeout:   timeout,
		startedAt: time.Now(),
	}
}

// Uptime is the time elapsed since the runner was built.
func (r *ProbeRunner) Uptime() time.Duration {
	return time.Since(r.startedAt)
}

// Ready runs every checker and reports whether all of them passed.
func (r *ProbeRunner) Ready(ctx context.Context) (bool, []CheckResult) {
	results := make([]CheckResult, 0, len(r.checkers))
	ready := true

	for _, c := range r.checkers {
		checkCtx, cancel := context.WithTimeout(ctx, r.timeout)
		res := c.Check(checkCtx)
		cancel()

		results = append(results, res)
		if !res.Healthy {
			ready = false
		}
	}

	return ready, results
}
