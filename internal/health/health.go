package health

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Status is the outcome of a single health check.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
)

// CheckResult contains the result of one component check.
type CheckResult struct {
	Component string        `json:"component"`
	Status    Status        `json:"status"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
	Timestamp time.Time     `json:"timestamp"`
}

// Checker probes one dependency.
type Checker interface {
	Name() string
	Check(ctx context.Context) error
}

const checkTimeout = 5 * time.Second

// Manager runs registered checkers on demand.
type Manager struct {
	mu       sync.RWMutex
	checkers []Checker
	logger   *zap.Logger
}

func NewManager(logger *zap.Logger) *Manager {
	return &Manager{logger: logger}
}

func (m *Manager) RegisterChecker(c Checker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checkers = append(m.checkers, c)
}

// Check probes every registered dependency. The boolean is true only when
// all components are healthy.
func (m *Manager) Check(ctx context.Context) ([]CheckResult, bool) {
	m.mu.RLock()
	checkers := make([]Checker, len(m.checkers))
	copy(checkers, m.checkers)
	m.mu.RUnlock()

	results := make([]CheckResult, 0, len(checkers))
	healthy := true
	for _, c := range checkers {
		result := m.runCheck(ctx, c)
		if result.Status != StatusHealthy {
			healthy = false
		}
		results = append(results, result)
	}
	return results, healthy
}

func (m *Manager) runCheck(ctx context.Context, c Checker) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	start := time.Now()
	err := c.Check(ctx)
	result := CheckResult{
		Component: c.Name(),
		Status:    StatusHealthy,
		Duration:  time.Since(start),
		Timestamp: time.Now(),
	}
	if err != nil {
		result.Status = StatusUnhealthy
		result.Error = err.Error()
		m.logger.Warn("Health check failed",
			zap.String("component", c.Name()),
			zap.Error(err))
	}
	return result
}
