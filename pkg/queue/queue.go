// Package queue provides background job processing for the bistro server.
// The order-confirmation mail is dispatched through here so notification
// failures never touch the HTTP response already returned to the client.
//
//	// Define a job
//	type OrderMailJob struct { Email string }
//	func (j OrderMailJob) Handle() error { ... }
//
//	// Register at boot, dispatch from anywhere
//	queue.Register("jobs.OrderMailJob", func() queue.Job { return &OrderMailJob{} })
//	queue.Dispatch(OrderMailJob{Email: "x@y.z"})
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shashiranjanraj/bistro-boss-server/pkg/logger"
	"github.com/shashiranjanraj/bistro-boss-server/pkg/metrics"
)

// Job is the interface every queued job must satisfy.
type Job interface {
	// Handle executes the job. Return a non-nil error to signal failure.
	Handle() error
}

// FailedJob holds information about a job that exhausted its retries.
type FailedJob struct {
	Job      Job
	Err      error
	FailedAt time.Time
	Attempts int
}

// Driver is the queue storage backend.
type Driver interface {
	Push(payload []byte) error
	Pop(ctx context.Context) ([]byte, error)
}

// Manager is the central queue hub.
type Manager struct {
	mu        sync.RWMutex
	driver    Driver
	registry  map[string]func() Job // type name → constructor
	failed    []FailedJob
	failedCol *mongo.Collection
	maxRetry  int
}

var defaultManager = &Manager{
	registry: map[string]func() Job{},
	maxRetry: 3,
	driver:   NewMemoryDriver(),
}

// SetDriver swaps the underlying queue driver (e.g. Redis).
func SetDriver(d Driver) {
	defaultManager.mu.Lock()
	defer defaultManager.mu.Unlock()
	defaultManager.driver = d
}

// SetMaxRetry sets how many times a failing job is retried.
func SetMaxRetry(n int) {
	defaultManager.mu.Lock()
	defer defaultManager.mu.Unlock()
	defaultManager.maxRetry = n
}

// UseCollection configures a Mongo collection where jobs that exhaust their
// retries are persisted for operator inspection. Optional; without it the
// in-memory failed list is the only record.
func UseCollection(col *mongo.Collection) {
	defaultManager.mu.Lock()
	defer defaultManager.mu.Unlock()
	defaultManager.failedCol = col
}

// Register makes a job type available for deserialization by name.
// Call once at boot for every job type.
func Register(name string, factory func() Job) {
	defaultManager.mu.Lock()
	defer defaultManager.mu.Unlock()
	defaultManager.registry[name] = factory
}

type jobEnvelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Dispatch pushes job onto the queue immediately.
func Dispatch(name string, job Job) error {
	return defaultManager.push(name, job)
}

func (m *Manager) push(name string, job Job) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("queue: marshal job %s: %w", name, err)
	}

	env, err := json.Marshal(jobEnvelope{Type: name, Payload: payload})
	if err != nil {
		return fmt.Errorf("queue: marshal envelope: %w", err)
	}

	m.mu.RLock()
	d := m.driver
	m.mu.RUnlock()

	return d.Push(env)
}

// StartWorkers launches n concurrent workers that process jobs until ctx is
// cancelled.
func StartWorkers(ctx context.Context, n int) {
	for i := 0; i < n; i++ {
		go defaultManager.work(ctx)
	}
	logger.Info("queue: workers started", "count", n)
}

func (m *Manager) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
			m.mu.RLock()
			d := m.driver
			m.mu.RUnlock()

			raw, err := d.Pop(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				time.Sleep(500 * time.Millisecond)
				continue
			}
			if raw == nil {
				continue
			}

			m.process(raw)
		}
	}
}

func (m *Manager) process(raw []byte) {
	var env jobEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		logger.Error("queue: bad envelope", "error", err)
		return
	}

	m.mu.RLock()
	factory, ok := m.registry[env.Type]
	m.mu.RUnlock()

	if !ok {
		logger.Warn("queue: unregistered job type", "type", env.Type)
		return
	}

	job := factory()
	if err := json.Unmarshal(env.Payload, job); err != nil {
		logger.Error("queue: unmarshal payload", "type", env.Type, "error", err)
		return
	}

	m.runWithRetry(job, env.Type)
}

func (m *Manager) runWithRetry(job Job, typeName string) {
	m.mu.RLock()
	maxRetry := m.maxRetry
	m.mu.RUnlock()

	var lastErr error
	for attempt := 1; attempt <= maxRetry; attempt++ {
		if err := job.Handle(); err != nil {
			lastErr = err
			logger.Warn("queue: job failed, retrying",
				"type", typeName, "attempt", attempt, "error", err)
			time.Sleep(time.Duration(attempt) * time.Second) // backoff
			continue
		}
		metrics.QueueJobsProcessed.WithLabelValues("success").Inc()
		logger.Info("queue: job processed", "type", typeName)
		return
	}

	metrics.QueueJobsProcessed.WithLabelValues("failed").Inc()
	m.persistFailed(job, typeName, lastErr, maxRetry)
	logger.Error("queue: job exhausted retries", "type", typeName, "error", lastErr)
}

// failedJobDoc is the shape persisted to the failed-jobs collection.
type failedJobDoc struct {
	JobType  string    `bson:"jobType"`
	Payload  string    `bson:"payload"`
	Error    string    `bson:"error"`
	Attempts int       `bson:"attempts"`
	FailedAt time.Time `bson:"failedAt"`
}

func (m *Manager) persistFailed(job Job, typeName string, lastErr error, attempts int) {
	m.mu.Lock()
	m.failed = append(m.failed, FailedJob{
		Job: job, Err: lastErr, FailedAt: time.Now(), Attempts: attempts,
	})
	col := m.failedCol
	m.mu.Unlock()

	if col == nil {
		return
	}

	payload, err := json.Marshal(job)
	if err != nil {
		payload = []byte(fmt.Sprintf(`{"error": "could not marshal: %v"}`, err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := col.InsertOne(ctx, failedJobDoc{
		JobType:  typeName,
		Payload:  string(payload),
		Error:    lastErr.Error(),
		Attempts: attempts,
		FailedAt: time.Now(),
	}); err != nil {
		// Non-fatal: the in-memory list still has it.
		logger.Warn("queue: persist failed job", "type", typeName, "error", err)
	}
}

// FailedJobs returns a snapshot of all failed jobs.
func FailedJobs() []FailedJob {
	defaultManager.mu.RLock()
	defer defaultManager.mu.RUnlock()
	out := make([]FailedJob, len(defaultManager.failed))
	copy(out, defaultManager.failed)
	return out
}
