package application

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
)

// DependencyCheck reports whether one dependency is usable.
type DependencyCheck func(ctx context.Context) error

// CheckResult is the outcome of one check.
type CheckResult struct {
	Name     string
	Err      error
	Duration time.Duration
}

// OK reports whether the check passed.
func (c CheckResult) OK() bool {
	return c.Err == nil
}

// HealthReport is the combined outcome of every registered check, sorted by
// name.
type HealthReport struct {
	Checks []CheckResult
}

// Healthy reports whether every check passed.
func (r HealthReport) Healthy() bool {
	for _, c := range r.Checks {
		if !c.OK() {
			return false
		}
	}
	return true
}

// HealthService runs the registered dependency checks for the health
// endpoint. Checks only touch local dependencies; the CMS is never called.
type HealthService struct {
	checks  map[string]DependencyCheck
	timeout time.Duration
}

// NewHealthService creates a HealthService whose checks each get at most
// timeout to answer.
func NewHealthService(timeout time.Duration) *HealthService {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &HealthService{checks: make(map[string]DependencyCheck), timeout: timeout}
}

// Register adds a named check, replacing any check with the same name.
// Register must not be called concurrently with Check.
func (s *HealthService) Register(name string, check DependencyCheck) {
	s.checks[name] = check
}

// Check runs every check concurrently.
func (s *HealthService) Check(ctx context.Context) HealthReport {
	results := make([]CheckResult, 0, len(s.checks))
	for name := range s.checks {
		results = append(results, CheckResult{Name: name})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Name < results[j].Name })

	var g errgroup.Group
	for i := range results {
		g.Go(func() error {
			pctx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()

			start := time.Now()
			results[i].Err = s.checks[results[i].Name](pctx)
			results[i].Duration = time.Since(start)
			return nil
		})
	}
	_ = g.Wait()

	return HealthReport{Checks: results}
}
