package resilience

import (
	"context"
	"errors"
	"sync"
	"time"

	"influencer-platform/backend/pkg/logger"
)

// ErrCircuitOpen is returned without calling the protected function while
// the breaker is open.
var ErrCircuitOpen = errors.New("circuit open")

// State is the current position of a circuit breaker
type State string

const (
	StateClosed   State = "closed"
	StateOpen     State = "open"
	StateHalfOpen State = "half-open"
)

// Config holds configuration for a circuit breaker
type Config struct {
	Name string
	// FailureThreshold consecutive failures open the circuit
	FailureThreshold uint
	// SuccessThreshold half-open successes close it again
	SuccessThreshold uint
	// OpenTimeout is how long the circuit stays open before probing
	OpenTimeout time.Duration
	// IsFailure decides whether an error counts against the circuit.
	// Defaults to every non-nil error.
	IsFailure func(error) bool
	// Now is the clock; defaults to time.Now
	Now func() time.Time
}

// DefaultConfig returns a default circuit breaker configuration
func DefaultConfig(name string) Config {
	return Config{
		Name:             name,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		OpenTimeout:      30 * time.Second,
	}
}

// Metrics is a snapshot of breaker counters
type Metrics struct {
	Name            string    `json:"name"`
	State           State     `json:"state"`
	TotalRequests   uint64    `json:"total_requests"`
	TotalFailures   uint64    `json:"total_failures"`
	TotalSuccesses  uint64    `json:"total_successes"`
	Rejected        uint64    `json:"rejected"`
	OpenCount       uint64    `json:"open_count"`
	LastFailureTime time.Time `json:"last_failure_time,omitempty"`
}

// CircuitBreaker stops calling a failing dependency until it has had time
// to recover.
type CircuitBreaker struct {
	cfg Config
	log *logger.Logger

	mu           sync.Mutex
	state        State
	failureCount uint
	successCount uint
	openedUntil  time.Time
	metrics      Metrics
}

// NewCircuitBreaker creates a new circuit breaker
func NewCircuitBreaker(cfg Config, log *logger.Logger) *CircuitBreaker {
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 1
	}
	if cfg.SuccessThreshold == 0 {
		cfg.SuccessThreshold = 1
	}
	if cfg.IsFailure == nil {
		cfg.IsFailure = func(err error) bool { return err != nil }
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if log == nil {
		log = logger.Nop()
	}
	return &CircuitBreaker{
		cfg:     cfg,
		log:     log,
		state:   StateClosed,
		metrics: Metrics{Name: cfg.Name},
	}
}

// Execute runs fn through the circuit breaker
func (cb *CircuitBreaker) Execute(fn func() error) error {
	return cb.ExecuteContext(context.Background(), func(context.Context) error { return fn() })
}

// ExecuteContext runs fn through the circuit breaker. A cancelled caller
// context is not held against the dependency.
func (cb *CircuitBreaker) ExecuteContext(ctx context.Context, fn func(ctx context.Context) error) error {
	if !cb.allow() {
		cb.log.Warn("circuit breaker rejected call", "name", cb.cfg.Name)
		return ErrCircuitOpen
	}

	start := cb.cfg.Now()
	err := fn(ctx)

	if err != nil && ctx.Err() == nil && cb.cfg.IsFailure(err) {
		cb.recordFailure()
		cb.log.Warn("circuit breaker recorded failure",
			"name", cb.cfg.Name,
			"error", err.Error(),
			"duration", cb.cfg.Now().Sub(start).String(),
		)
		return err
	}

	cb.recordSuccess()
	return err
}

func (cb *CircuitBreaker) allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateOpen:
		if cb.cfg.Now().Before(cb.openedUntil) {
			cb.metrics.Rejected++
			return false
		}
		cb.state = StateHalfOpen
		cb.successCount = 0
		cb.log.Info("circuit breaker half-open", "name", cb.cfg.Name)
	case StateHalfOpen:
		if cb.successCount >= cb.cfg.SuccessThreshold {
			cb.metrics.Rejected++
			return false
		}
	}

	cb.metrics.TotalRequests++
	return true
}

func (cb *CircuitBreaker) recordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.metrics.TotalSuccesses++

	switch cb.state {
	case StateClosed:
		cb.failureCount = 0
	case StateHalfOpen:
		cb.successCount++
		if cb.successCount >= cb.cfg.SuccessThreshold {
			cb.state = StateClosed
			cb.failureCount = 0
			cb.successCount = 0
			cb.log.Info("circuit breaker closed", "name", cb.cfg.Name)
		}
	}
}

func (cb *CircuitBreaker) recordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.metrics.TotalFailures++
	cb.metrics.LastFailureTime = cb.cfg.Now()

	switch cb.state {
	case StateClosed:
		cb.failureCount++
		if cb.failureCount >= cb.cfg.FailureThreshold {
			cb.open()
		}
	case StateHalfOpen:
		cb.open()
	}
}

// open must be called with mu held
func (cb *CircuitBreaker) open() {
	cb.state = StateOpen
	cb.metrics.OpenCount++
	cb.openedUntil = cb.cfg.Now().Add(cb.cfg.OpenTimeout)

	cb.log.Warn("circuit breaker opened",
		"name", cb.cfg.Name,
		"failures", cb.failureCount,
		"retry_at", cb.openedUntil.Format(time.RFC3339),
	)
}

// State returns the current state of the circuit breaker
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Metrics returns a snapshot of the breaker counters
func (cb *CircuitBreaker) Metrics() Metrics {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	m := cb.metrics
	m.State = cb.state
	return m
}
