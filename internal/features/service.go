// Package features wraps the per-project flag clients behind a uniform
// evaluation surface. Lookups never fail upward: boolean flags degrade to
// false, string flags to the caller's default. Every evaluation is logged
// with the request's correlation context and recorded for response metadata.
package features

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/TimurManjosov/flagdemo/internal/targeting"
	"github.com/TimurManjosov/flagdemo/internal/telemetry"
)

// Logical project names, one per provider client handle.
const (
	ProjectUserManagement = "user-management"
	ProjectPayment        = "payment"
)

// Evaluator is the minimal surface the service needs from a flag provider
// client. Polling, caching, and targeting-rule matching all live behind it.
// Implementations must never block on network I/O: they evaluate against a
// locally cached flag set and return an error when no usable value exists.
type Evaluator interface {
	BoolValue(key string, defaultValue bool, tc targeting.Context) (bool, error)
	StringValue(key string, defaultValue string, tc targeting.Context) (string, error)
}

// Evaluation records a single flag lookup for the response metadata.
type Evaluation struct {
	Project     string    `json:"project"`
	FlagKey     string    `json:"flagKey"`
	Value       any       `json:"value"`
	EvaluatedAt time.Time `json:"evaluatedAt"`
}

// Service selects the client by project name and applies the fail-safe
// defaulting policy. Safe for concurrent use; the registry is fixed at
// construction.
type Service struct {
	clients map[string]Evaluator
}

// NewService builds a Service over a project → client registry.
func NewService(clients map[string]Evaluator) *Service {
	reg := make(map[string]Evaluator, len(clients))
	for name, c := range clients {
		reg[name] = c
	}
	return &Service{clients: reg}
}

// EvaluateBool evaluates a boolean flag for the given targeting context.
// Fail-closed: any error (unknown project, cold cache, missing flag,
// provider error) yields false. Errors are logged, never returned.
func (s *Service) EvaluateBool(ctx context.Context, project, flagKey string, tc targeting.Context) bool {
	logger := s.callLogger(ctx, project, flagKey)

	client, ok := s.clients[project]
	if !ok {
		logger.Error().Msg("unknown flag project, failing closed")
		s.record(ctx, project, flagKey, false, "error")
		return false
	}

	value, err := client.BoolValue(flagKey, false, tc)
	if err != nil {
		logger.Warn().Err(err).Msg("flag evaluation failed, failing closed")
		s.record(ctx, project, flagKey, false, "error")
		return false
	}

	logger.Debug().Bool("value", value).Msg("flag evaluated")
	s.record(ctx, project, flagKey, value, "ok")
	return value
}

// EvaluateString evaluates a string flag for the given targeting context.
// Fail-to-default: any error yields the caller-supplied default.
func (s *Service) EvaluateString(ctx context.Context, project, flagKey, defaultValue string, tc targeting.Context) string {
	logger := s.callLogger(ctx, project, flagKey)

	client, ok := s.clients[project]
	if !ok {
		logger.Error().Msg("unknown flag project, using default")
		s.record(ctx, project, flagKey, defaultValue, "error")
		return defaultValue
	}

	value, err := client.StringValue(flagKey, defaultValue, tc)
	if err != nil {
		logger.Warn().Err(err).Msg("flag evaluation failed, using default")
		s.record(ctx, project, flagKey, defaultValue, "error")
		return defaultValue
	}

	logger.Debug().Str("value", value).Msg("flag evaluated")
	s.record(ctx, project, flagKey, value, "ok")
	return value
}

// callLogger derives a logger scoped to this evaluation. The fields live only
// on the derived logger, so they vanish when the call returns.
func (s *Service) callLogger(ctx context.Context, project, flagKey string) zerolog.Logger {
	return zerolog.Ctx(ctx).With().
		Str("project", project).
		Str("flag", flagKey).
		Logger()
}

func (s *Service) record(ctx context.Context, project, flagKey string, value any, outcome string) {
	telemetry.FlagEvaluations.WithLabelValues(project, flagKey, outcome).Inc()
	if rec := RecorderFrom(ctx); rec != nil {
		rec.add(Evaluation{
			Project:     project,
			FlagKey:     flagKey,
			Value:       value,
			EvaluatedAt: time.Now().UTC(),
		})
	}
}
