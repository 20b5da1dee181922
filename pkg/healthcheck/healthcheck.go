// Package healthcheck runs named dependency checks concurrently and folds
// them into one overall status
package healthcheck

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Status represents the health status
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
	StatusDegraded  Status = "degraded"
)

// DefaultTimeout bounds a full round of checks
const DefaultTimeout = 10 * time.Second

// Check represents the result of one health check
type Check struct {
	Name        string        `json:"name"`
	Status      Status        `json:"status"`
	Message     string        `json:"message,omitempty"`
	LastChecked time.Time     `json:"last_checked"`
	Duration    time.Duration `json:"duration_ms"`
	Metadata    interface{}   `json:"metadata,omitempty"`
}

// Response is the outcome of a round of checks, ordered by name
type Response struct {
	Status        Status        `json:"status"`
	Version       string        `json:"version"`
	Timestamp     time.Time     `json:"timestamp"`
	Checks        []Check       `json:"checks"`
	TotalDuration time.Duration `json:"total_duration_ms"`
}

// Checker defines the interface for health checks
type Checker interface {
	Check(ctx context.Context) Check
}

// HealthCheck manages health checks
type HealthCheck struct {
	version  string
	checkers map[string]Checker
	logger   *zap.Logger
	timeout  time.Duration
	mu       sync.RWMutex
}

// New creates a new health check instance
func New(version string, logger *zap.Logger) *HealthCheck {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthCheck{
		version:  version,
		checkers: make(map[string]Checker),
		logger:   logger.Named("healthcheck"),
		timeout:  DefaultTimeout,
	}
}

// Register registers a health checker under name, replacing any previous one
func (h *HealthCheck) Register(name string, checker Checker) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checkers[name] = checker
}

// SetTimeout sets the deadline of a round of checks
func (h *HealthCheck) SetTimeout(timeout time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.timeout = timeout
}

// Check performs all health checks
func (h *HealthCheck) Check(ctx context.Context) Response {
	start := time.Now()
	response := Response{
		Version:   h.version,
		Timestamp: start,
		Status:    StatusHealthy,
		Checks:    []Check{},
	}

	h.mu.RLock()
	checkCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	var wg sync.WaitGroup
	checksChan := make(chan Check, len(h.checkers))
	for name, checker := range h.checkers {
		wg.Add(1)
		go func(n string, c Checker) {
			defer wg.Done()
			check := safeCheck(checkCtx, c)
			check.Name = n
			checksChan <- check
		}(name, checker)
	}
	h.mu.RUnlock()

	go func() {
		wg.Wait()
		close(checksChan)
	}()

	for check := range checksChan {
		response.Checks = append(response.Checks, check)

		if check.Status == StatusUnhealthy {
			response.Status = StatusUnhealthy
		} else if check.Status == StatusDegraded && response.Status == StatusHealthy {
			response.Status = StatusDegraded
		}
	}
	sort.Slice(response.Checks, func(i, j int) bool {
		return response.Checks[i].Name < response.Checks[j].Name
	})
	response.TotalDuration = time.Since(start)

	h.logger.Debug("Health checks completed",
		zap.String("status", string(response.Status)),
		zap.Int("checks", len(response.Checks)),
		zap.Duration("duration", response.TotalDuration),
	)
	return response
}

func safeCheck(ctx context.Context, c Checker) (check Check) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			check = Check{
				Status:      StatusUnhealthy,
				Message:     fmt.Sprintf("check panicked: %v", r),
				LastChecked: start,
				Duration:    time.Since(start),
			}
		}
	}()
	return c.Check(ctx)
}

// DatabaseChecker checks database health
type DatabaseChecker struct {
	db *gorm.DB
}

// NewDatabaseChecker creates a new database checker
func NewDatabaseChecker(db *gorm.DB) *DatabaseChecker {
	return &DatabaseChecker{db: db}
}

// Check pings the database and reports pool usage
func (d *DatabaseChecker) Check(ctx context.Context) Check {
	start := time.Now()
	check := Check{
		Name:        "database",
		LastChecked: start,
	}

	sqlDB, err := d.db.DB()
	if err != nil {
		check.Status = StatusUnhealthy
		check.Message = err.Error()
		check.Duration = time.Since(start)
		return check
	}

	err = sqlDB.PingContext(ctx)
	check.Duration = time.Since(start)
	if err != nil {
		check.Status = StatusUnhealthy
		check.Message = fmt.Sprintf("ping failed: %v", err)
		return check
	}

	stats := sqlDB.Stats()
	check.Status = StatusHealthy
	check.Message = d.db.Dialector.Name()
	check.Metadata = map[string]interface{}{
		"open_connections": stats.OpenConnections,
		"in_use":           stats.InUse,
		"idle":             stats.Idle,
	}
	return check
}

// Pinger is anything that can probe its backend, such as a Redis client
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingChecker reports healthy when Ping succeeds
type PingChecker struct {
	pinger Pinger
}

// NewPingChecker creates a checker around pinger
func NewPingChecker(pinger Pinger) *PingChecker {
	return &PingChecker{pinger: pinger}
}

// Check performs the ping
func (p *PingChecker) Check(ctx context.Context) Check {
	start := time.Now()
	err := p.pinger.Ping(ctx)
	check := Check{
		Status:      StatusHealthy,
		LastChecked: start,
		Duration:    time.Since(start),
	}
	if err != nil {
		check.Status = StatusUnhealthy
		check.Message = err.Error()
	}
	return check
}

// CustomChecker adapts a function to Checker
type CustomChecker struct {
	name  string
	check func(ctx context.Context) (Status, string, interface{})
}

// NewCustomChecker creates a new custom checker
func NewCustomChecker(name string, check func(ctx context.Context) (Status, string, interface{})) *CustomChecker {
	return &CustomChecker{
		name:  name,
		check: check,
	}
}

// Check performs custom health check
func (c *CustomChecker) Check(ctx context.Context) Check {
	start := time.Now()

	status, message, metadata := c.check(ctx)

	return Check{
		Name:        c.name,
		Status:      status,
		Message:     message,
		Metadata:    metadata,
		LastChecked: start,
		Duration:    time.Since(start),
	}
}

// MarshalJSON customizes JSON marshaling for duration
func (c Check) MarshalJSON() ([]byte, error) {
	type Alias Check
	return json.Marshal(&struct {
		Duration float64 `json:"duration_ms"`
		*Alias
	}{
		Duration: float64(c.Duration.Milliseconds()),
		Alias:    (*Alias)(&c),
	})
}

// MarshalJSON customizes JSON marshaling for response
func (r Response) MarshalJSON() ([]byte, error) {
	type Alias Response
	return json.Marshal(&struct {
		TotalDuration float64 `json:"total_duration_ms"`
		*Alias
	}{
		TotalDuration: float64(r.TotalDuration.Milliseconds()),
		Alias:         (*Alias)(&r),
	})
}
