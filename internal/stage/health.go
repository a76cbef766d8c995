package stage

import "context"

// Health is one collaborator's readiness line in daemon status.
type Health struct {
	Name   string `json:"name"`
	Ready  bool   `json:"ready"`
	Detail string `json:"detail,omitempty"`
}

// HealthChecker is implemented by collaborators that can report readiness.
type HealthChecker interface {
	HealthCheck(context.Context) Health
}

func Healthy(name string) Health { return Health{Name: name, Ready: true} }

func Unhealthy(name, detail string) Health { return Health{Name: name, Detail: detail} }

// Collect asks every candidate implementing HealthChecker for its status, in
// order. Nil and non-reporting candidates are skipped.
func Collect(ctx context.Context, candidates ...any) []Health {
	var out []Health
	for _, c := range candidates {
		if checker, ok := c.(HealthChecker); ok && checker != nil {
			out = append(out, checker.HealthCheck(ctx))
		}
	}
	return out
}
