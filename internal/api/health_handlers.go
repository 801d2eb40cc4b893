package api

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerHealthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "healthCheck",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns server health status with component checks",
		Tags:        []string{"Health"},
	}, s.handleHealthCheck)
}

// ComponentHealth describes the health of a single component.
type ComponentHealth struct {
	Status  string `json:"status" doc:"Component status: healthy or unhealthy"`
	Latency string `json:"latency,omitempty" doc:"Response time for this component"`
	Message string `json:"message,omitempty" doc:"Additional status information"`
}

// HealthResponse contains health check data in API responses.
type HealthResponse struct {
	Status     string                     `json:"status" doc:"Overall status: healthy or unhealthy"`
	Components map[string]ComponentHealth `json:"components" doc:"Individual component statuses"`
}

// HealthOutput wraps the health response for Huma.
type HealthOutput struct {
	Body HealthResponse
}

func (s *Server) handleHealthCheck(ctx context.Context, _ *struct{}) (*HealthOutput, error) {
	names := make([]string, 0, len(s.opts.HealthChecks))
	for name := range s.opts.HealthChecks {
		names = append(names, name)
	}
	sort.Strings(names)

	components := make(map[string]ComponentHealth, len(names))
	overall := "healthy"

	for _, name := range names {
		checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		start := time.Now()
		err := s.opts.HealthChecks[name](checkCtx)
		cancel()

		health := ComponentHealth{Status: "healthy", Latency: time.Since(start).String()}
		if err != nil {
			health.Status = "unhealthy"
			health.Message = err.Error()
			overall = "unhealthy"
			s.logger.Warn("health check failed", "component", name, "error", err)
		}
		components[name] = health
	}

	return &HealthOutput{
		Body: HealthResponse{
			Status:     overall,
			Components: components,
		},
	}, nil
}
