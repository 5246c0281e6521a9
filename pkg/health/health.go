package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"

	"influencer-platform/backend/pkg/logger"
)

// Status represents the health status of a component
type Status string

const (
	// StatusUp indicates a component is working correctly
	StatusUp Status = "up"
	// StatusDown indicates a component is not working
	StatusDown Status = "down"
	// StatusDegraded indicates a component is working but with reduced functionality
	StatusDegraded Status = "degraded"
)

// Component represents a system component that can be health-checked
type Component struct {
	Name        string    `json:"name"`
	Status      Status    `json:"status"`
	Critical    bool      `json:"critical"`
	Description string    `json:"description,omitempty"`
	Error       string    `json:"error,omitempty"`
	LatencyMS   int64     `json:"latency_ms"`
	LastChecked time.Time `json:"last_checked"`
}

// Report is the aggregated result of a health check run
type Report struct {
	Healthy    bool                  `json:"healthy"`
	Timestamp  time.Time             `json:"timestamp"`
	Components map[string]*Component `json:"components"`
}

// Check represents a health check function
type Check func(ctx context.Context) (Status, string, error)

type registeredCheck struct {
	check    Check
	critical bool
}

// Checker manages health checks for the system
type Checker struct {
	checks       map[string]registeredCheck
	components   map[string]*Component
	checkPeriod  time.Duration
	checkTimeout time.Duration
	mutex        sync.RWMutex
	log          *logger.Logger
}

// NewChecker creates a new health checker
func NewChecker(log *logger.Logger, checkPeriod, checkTimeout time.Duration) *Checker {
	if log == nil {
		log = logger.Nop()
	}
	if checkTimeout <= 0 {
		checkTimeout = 5 * time.Second
	}
	return &Checker{
		checks:       make(map[string]registeredCheck),
		components:   make(map[string]*Component),
		checkPeriod:  checkPeriod,
		checkTimeout: checkTimeout,
		log:          log,
	}
}

// RegisterCheck registers a new health check. A critical component that is
// down makes the whole system unhealthy.
func (c *Checker) RegisterCheck(name string, critical bool, check Check) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.checks[name] = registeredCheck{check: check, critical: critical}
	c.components[name] = &Component{
		Name:        name,
		Status:      StatusDown,
		Critical:    critical,
		Description: "Not checked yet",
	}
}

// RunChecks executes all registered health checks concurrently and returns
// the resulting report
func (c *Checker) RunChecks(ctx context.Context) Report {
	c.mutex.RLock()
	checks := make(map[string]registeredCheck, len(c.checks))
	for name, rc := range c.checks {
		checks[name] = rc
	}
	c.mutex.RUnlock()

	results := make(map[string]*Component, len(checks))
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for name, rc := range checks {
		wg.Add(1)
		go func(name string, rc registeredCheck) {
			defer wg.Done()
			component := c.runOne(ctx, name, rc)
			mu.Lock()
			results[name] = component
			mu.Unlock()
		}(name, rc)
	}
	wg.Wait()

	c.mutex.Lock()
	for name, component := range results {
		c.components[name] = component
	}
	c.mutex.Unlock()

	return c.Report()
}

func (c *Checker) runOne(ctx context.Context, name string, rc registeredCheck) *Component {
	checkCtx, cancel := context.WithTimeout(ctx, c.checkTimeout)
	defer cancel()

	start := time.Now()
	status, description, err := rc.check(checkCtx)
	component := &Component{
		Name:        name,
		Status:      status,
		Critical:    rc.critical,
		Description: description,
		LatencyMS:   time.Since(start).Milliseconds(),
		LastChecked: time.Now(),
	}

	if err != nil {
		component.Error = err.Error()
		c.log.Error("health check failed",
			"component", name,
			"status", string(status),
			"error", err.Error(),
		)
	} else {
		c.log.Debug("health check completed",
			"component", name,
			"status", string(status),
		)
	}
	return component
}

// Start runs checks immediately and then periodically until ctx is done
func (c *Checker) Start(ctx context.Context) {
	go func() {
		c.RunChecks(ctx)
		if c.checkPeriod <= 0 {
			return
		}

		ticker := time.NewTicker(c.checkPeriod)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.RunChecks(ctx)
			}
		}
	}()
}

// GetStatus returns a copy of the last known component states
func (c *Checker) GetStatus() map[string]*Component {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	result := make(map[string]*Component, len(c.components))
	for k, v := range c.components {
		componentCopy := *v
		result[k] = &componentCopy
	}
	return result
}

// IsSystemHealthy returns true if all critical components are up
func (c *Checker) IsSystemHealthy() bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	for _, component := range c.components {
		if component.Critical && component.Status == StatusDown {
			return false
		}
	}
	return true
}

// Report returns the last known state as a report
func (c *Checker) Report() Report {
	return Report{
		Healthy:    c.IsSystemHealthy(),
		Timestamp:  time.Now().UTC(),
		Components: c.GetStatus(),
	}
}

// Names returns registered check names in order
func (c *Checker) Names() []string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HTTPHandler returns an HTTP handler for health checks. It serves the last
// known state; ?fresh=true runs every check before answering.
func (c *Checker) HTTPHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := c.Report()
		if r.URL.Query().Get("fresh") == "true" {
			report = c.RunChecks(r.Context())
		}

		w.Header().Set("Content-Type", "application/json")
		if !report.Healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		} else {
			w.WriteHeader(http.StatusOK)
		}

		if err := json.NewEncoder(w).Encode(report); err != nil {
			c.log.Error("failed to encode health check response", "error", err.Error())
		}
	}
}

// RegisterDatabaseCheck registers the critical database check
func (c *Checker) RegisterDatabaseCheck(ping func(ctx context.Context) error) {
	c.RegisterCheck("database", true, func(ctx context.Context) (Status, string, error) {
		if err := ping(ctx); err != nil {
			return StatusDown, "database unreachable", err
		}
		return StatusUp, "database connection is established", nil
	})
}

// RegisterSchemaCheck reports whether the required tables exist
func (c *Checker) RegisterSchemaCheck(ensure func(ctx context.Context) error) {
	c.RegisterCheck("schema", true, func(ctx context.Context) (Status, string, error) {
		if err := ensure(ctx); err != nil {
			return StatusDown, "schema incomplete; run migrations", err
		}
		return StatusUp, "all tables present", nil
	})
}

// RegisterStorageCheck registers the critical object storage check
func (c *Checker) RegisterStorageCheck(ping func(ctx context.Context) error) {
	c.RegisterCheck("storage", true, func(ctx context.Context) (Status, string, error) {
		if err := ping(ctx); err != nil {
			return StatusDown, "object storage unreachable", err
		}
		return StatusUp, "object storage is reachable", nil
	})
}

// RegisterCacheCheck registers a non-critical cache check; lookups fall back
// to the database when the cache is down
func (c *Checker) RegisterCacheCheck(ping func(ctx context.Context) error) {
	c.RegisterCheck("cache", false, func(ctx context.Context) (Status, string, error) {
		if err := ping(ctx); err != nil {
			return StatusDegraded, "cache unreachable, reading through to database", err
		}
		return StatusUp, "cache is reachable", nil
	})
}
