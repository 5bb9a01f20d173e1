// Package health reports whether the timeline server can reach its data.
package health

import (
	"context"
	"net/http"
	"sync"
	"time"

	apierrors "github.com/narvanalabs/timeline/internal/server/errors"
)

// Status represents the health status of a component.
type Status string

const (
	// StatusHealthy indicates the component is fully operational.
	StatusHealthy Status = "healthy"
	// StatusDegraded indicates the component is operational but with issues.
	StatusDegraded Status = "degraded"
	// StatusUnhealthy indicates the component is not operational.
	StatusUnhealthy Status = "unhealthy"
)

// ComponentStatus represents the health status of a single component.
type ComponentStatus struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
}

// Response represents the health check response.
type Response struct {
	Status     Status                     `json:"status"`
	Components map[string]ComponentStatus `json:"components"`
	Version    string                     `json:"version"`
	Uptime     string                     `json:"uptime"`
}

// Version is the server version, set at build time using ldflags.
var Version = "dev"

// DataChecker reports whether the timeline data source can be fetched.
type DataChecker func(ctx context.Context) error

// IconChecker reports whether the icon store is usable. A failing icon
// store only degrades the server since pages still render without icons.
type IconChecker func(ctx context.Context) error

// Checker performs health checks for the timeline server.
type Checker struct {
	dataChecker DataChecker
	iconChecker IconChecker
	startTime   time.Time
	version     string
	timeout     time.Duration
	mu          sync.RWMutex
}

// NewChecker creates a new health checker. iconChecker may be nil.
func NewChecker(dataChecker DataChecker, iconChecker IconChecker, version string) *Checker {
	return &Checker{
		dataChecker: dataChecker,
		iconChecker: iconChecker,
		startTime:   time.Now(),
		version:     version,
		timeout:     5 * time.Second,
	}
}

// SetTimeout sets the timeout for health checks.
func (c *Checker) SetTimeout(timeout time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timeout = timeout
}

// Check performs all health checks and returns the aggregated response.
func (c *Checker) Check(ctx context.Context) *Response {
	c.mu.RLock()
	timeout := c.timeout
	c.mu.RUnlock()

	checkCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	components := map[string]ComponentStatus{
		"data": c.checkData(checkCtx),
	}
	if c.iconChecker != nil {
		components["icons"] = c.checkIcons(checkCtx)
	}

	overallStatus := StatusHealthy
	for _, comp := range components {
		if comp.Status == StatusUnhealthy {
			overallStatus = StatusUnhealthy
			break
		}
		if comp.Status == StatusDegraded {
			overallStatus = StatusDegraded
		}
	}

	return &Response{
		Status:     overallStatus,
		Components: components,
		Version:    c.version,
		Uptime:     time.Since(c.startTime).Round(time.Second).String(),
	}
}

// checkData verifies the data source can be fetched.
func (c *Checker) checkData(ctx context.Context) ComponentStatus {
	if c.dataChecker == nil {
		return ComponentStatus{
			Status:  StatusUnhealthy,
			Message: "data checker not configured",
		}
	}

	if err := c.dataChecker(ctx); err != nil {
		return ComponentStatus{
			Status:  StatusUnhealthy,
			Message: "data fetch failed: " + err.Error(),
		}
	}

	return ComponentStatus{
		Status:  StatusHealthy,
		Message: "reachable",
	}
}

func (c *Checker) checkIcons(ctx context.Context) ComponentStatus {
	if err := c.iconChecker(ctx); err != nil {
		return ComponentStatus{
			Status:  StatusDegraded,
			Message: "icons unavailable: " + err.Error(),
		}
	}
	return ComponentStatus{Status: StatusHealthy}
}

// Handler returns an HTTP handler for health checks.
func (c *Checker) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := c.Check(r.Context())

		status := http.StatusOK
		if response.Status == StatusUnhealthy {
			status = http.StatusServiceUnavailable
		}
		apierrors.WriteJSON(w, status, response)
	}
}
