// Package metrics centralises the metric names and tag shapes emitted by the
// auth path so dashboards do not chase ad-hoc strings through the codebase.
package metrics

import (
	"time"

	obserrors "github.com/esdeck/esdeck-api/internal/observability/errors"
	"github.com/esdeck/esdeck-api/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultBlocked = "blocked"
)

// LoginMetric captures one login attempt outcome for emission.
type LoginMetric struct {
	Provider string
	Result   string
	Duration time.Duration
	Err      error
}

// EmitLogin emits the login counter and, when known, the attempt duration.
func EmitLogin(sink statsd.Sink, in LoginMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"provider": in.Provider,
		"result":   in.Result,
	}
	if in.Err != nil && in.Result == ResultFailure {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}

	sink.Count("auth.login."+in.Result, 1, tags)
	if in.Duration > 0 {
		sink.Timing("auth.login.duration", in.Duration, CloneTags(tags))
	}
}

// EmitSessionCreated counts a freshly minted session.
func EmitSessionCreated(sink statsd.Sink, provider string) {
	if sink == nil {
		return
	}
	sink.Count("auth.session.created", 1, map[string]string{"provider": provider})
}

// EmitLogout counts an explicit logout.
func EmitLogout(sink statsd.Sink) {
	if sink == nil {
		return
	}
	sink.Count("auth.logout", 1, nil)
}

// EmitSweep reports one cleanup pass over sessions and limiter records.
func EmitSweep(sink statsd.Sink, sessionsRemoved, limiterRemoved int) {
	if sink == nil {
		return
	}
	sink.Count("sweeper.sessions.removed", int64(sessionsRemoved), nil)
	sink.Count("sweeper.limiter.removed", int64(limiterRemoved), nil)
}

// CloneTags creates a shallow copy of a tag map, filtering out empty keys.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		if k == "" {
			continue
		}
		out[k] = v
	}
	return out
}
