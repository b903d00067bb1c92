package health

import (
	"context"

	"go.uber.org/zap"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
	// CheckDisabled indicates a component that is not configured.
	CheckDisabled CheckResult = "disabled"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	search SearchChecker
	logger *zap.Logger
}

// New creates a Service. search is nil when web search is disabled.
func New(search SearchChecker, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{search: search, logger: logger}
}

// Check runs health checks against all components. A disabled component does not degrade status.
func (s *Service) Check(ctx context.Context) Report {
	checks := map[string]CheckResult{
		"chunking": CheckOK,
	}

	switch {
	case s.search == nil:
		checks["search"] = CheckDisabled
	default:
		if err := s.search.HealthCheck(ctx); err != nil {
			s.logger.Warn("Search provider health check failed", zap.Error(err))
			checks["search"] = CheckError
		} else {
			checks["search"] = CheckOK
		}
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks}
}
