package health

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
)

// Path is outside the short code alphabet, so it never shadows a code.
const Path = "/-/health"

const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"

	StorageHealthy   = "healthy"
	StorageUnhealthy = "unhealthy"
)

// Checker is anything that can tell whether storage answers.
type Checker interface {
	Ping(ctx context.Context) error
}

// Handler serves the health probe.
type Handler struct {
	checker Checker
}

func NewHandler(checker Checker) *Handler {
	return &Handler{checker: checker}
}

// Report is the probe payload. It is sent with 200 even when degraded.
type Report struct {
	Body struct {
		Status  string `json:"status" enum:"ok,degraded" doc:"Overall service state"`
		Storage string `json:"storage" enum:"healthy,unhealthy" doc:"Result of pinging the storage backend"`
	}
}

func (h *Handler) Check(ctx context.Context, _ *struct{}) (*Report, error) {
	report := &Report{}
	report.Body.Status, report.Body.Storage = StatusOK, StorageHealthy

	if err := h.checker.Ping(ctx); err != nil {
		report.Body.Status, report.Body.Storage = StatusDegraded, StorageUnhealthy
	}

	return report, nil
}

// RegisterRoutes mounts the probe on api.
func RegisterRoutes(api huma.API, h *Handler) {
	huma.Register(api, huma.Operation{
		OperationID: "health-check",
		Method:      "GET",
		Path:        Path,
		Summary:     "Report service and storage health",
		Tags:        []string{"health"},
	}, h.Check)
}
