// Package queue provides an in-process job dispatcher with at-least-once
// delivery semantics. Jobs are retried with exponential backoff up to a
// configurable attempt ceiling, and a separate ceiling bounds how many
// panics a single job may cause before it is failed permanently.
package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/usercue/thematic-cli/internal/resilience"
)

// Handler processes jobs of a single name. Failed is invoked once after the
// final attempt of a permanently failed job.
type Handler interface {
	Name() string
	Handle(ctx context.Context, payload any) error
	Failed(ctx context.Context, payload any, err error)
}

// Job is a unit of work bound to a registered handler by name.
type Job struct {
	ID      string
	Name    string
	Payload any

	attempts int
	panics   int
}

// NewJob creates a job with a fresh ID.
func NewJob(name string, payload any) *Job {
	return &Job{ID: uuid.New().String(), Name: name, Payload: payload}
}

// Config controls dispatcher concurrency and retry ceilings.
type Config struct {
	// Workers is the number of concurrent job processors. Default: 4.
	Workers int

	// MaxAttempts is the total number of attempts per job, including the
	// first. Default: 3.
	MaxAttempts int

	// MaxPanics fails a job permanently once it has panicked this many
	// times, regardless of remaining attempts. Default: 2.
	MaxPanics int

	// Backoff controls the delay between attempts.
	Backoff resilience.RetryConfig
}

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.MaxPanics <= 0 {
		c.MaxPanics = 2
	}
	return c
}

// Dispatcher fans jobs out to a fixed worker pool. Handlers may enqueue
// follow-up jobs from inside Handle; Wait blocks until every enqueued job
// (including follow-ups) has finished.
type Dispatcher struct {
	cfg      Config
	handlers map[string]Handler

	jobs    chan *Job
	pending sync.WaitGroup
	group   *errgroup.Group

	startOnce sync.Once
	stopOnce  sync.Once
}

func NewDispatcher(cfg Config) *Dispatcher {
	cfg = cfg.withDefaults()
	return &Dispatcher{
		cfg:      cfg,
		handlers: make(map[string]Handler),
		jobs:     make(chan *Job, cfg.Workers*64),
	}
}

// Register binds a handler to its job name. Must be called before Start.
func (d *Dispatcher) Register(h Handler) {
	d.handlers[h.Name()] = h
}

// Start launches the worker pool. Workers exit when the job channel is
// closed by Stop.
func (d *Dispatcher) Start(ctx context.Context) {
	d.startOnce.Do(func() {
		d.group, _ = errgroup.WithContext(ctx)
		for i := 0; i < d.cfg.Workers; i++ {
			d.group.Go(func() error {
				for job := range d.jobs {
					d.process(ctx, job)
					d.pending.Done()
				}
				return nil
			})
		}
	})
}

// Enqueue submits a job for processing. Safe to call from inside a handler.
func (d *Dispatcher) Enqueue(job *Job) error {
	if _, ok := d.handlers[job.Name]; !ok {
		return eris.Errorf("queue: no handler registered for %s", job.Name)
	}
	d.pending.Add(1)
	select {
	case d.jobs <- job:
	default:
		// Buffer full; hand off asynchronously so a worker enqueueing a
		// follow-up job cannot deadlock on its own pool.
		go func() { d.jobs <- job }()
	}
	return nil
}

// Wait blocks until all enqueued jobs have completed or failed permanently.
func (d *Dispatcher) Wait() {
	d.pending.Wait()
}

// Stop waits for in-flight jobs and shuts the worker pool down.
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() {
		d.pending.Wait()
		close(d.jobs)
		if d.group != nil {
			_ = d.group.Wait()
		}
	})
}

func (d *Dispatcher) process(ctx context.Context, job *Job) {
	handler := d.handlers[job.Name]
	log := zap.L().With(zap.String("job", job.Name), zap.String("job_id", job.ID))

	for {
		job.attempts++
		err := d.run(ctx, handler, job)
		if err == nil {
			log.Debug("job completed", zap.Int("attempts", job.attempts))
			return
		}

		if job.panics >= d.cfg.MaxPanics {
			log.Error("job exceeded panic limit",
				zap.Int("panics", job.panics), zap.Error(err))
			handler.Failed(ctx, job.Payload, err)
			return
		}
		if job.attempts >= d.cfg.MaxAttempts || ctx.Err() != nil {
			log.Error("job failed permanently",
				zap.Int("attempts", job.attempts), zap.Error(err))
			handler.Failed(ctx, job.Payload, err)
			return
		}

		delay := resilience.Backoff(job.attempts-1, d.cfg.Backoff)
		log.Warn("job attempt failed, retrying",
			zap.Int("attempt", job.attempts),
			zap.Duration("backoff", delay),
			zap.Error(err))

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			handler.Failed(ctx, job.Payload, ctx.Err())
			return
		case <-timer.C:
		}
	}
}

// run executes one attempt, converting a handler panic into an error so it
// counts against both ceilings.
func (d *Dispatcher) run(ctx context.Context, handler Handler, job *Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			job.panics++
			err = eris.New(fmt.Sprintf("queue: handler panic: %v", r))
		}
	}()
	return handler.Handle(ctx, job.Payload)
}
