// Package jobmgr supervises the long-running parts of a process as named
// jobs sharing one parent context.
//
// Typical usage:
//
//	jm := jobmgr.NewManager(ctx, jobmgr.LogReporter(logger))
//
//	_ = jm.StartAsync("gateway", bot.Run)
//	_ = jm.StartAsync("intake", api.Run)
//
//	err := jm.Wait() // first job error, after every job returned
//
// A job that fails cancels the shared context so its siblings wind down.
// Jobs that return nil leave the others running.
package jobmgr

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Job represents a running unit of work.
// Jobs are added and removed by Manager automatically.
type Job struct {
	Name   string
	Cancel context.CancelFunc
}

// StatusReporter receives lifecycle events for jobs.
// Example messages:
//
//	running:gateway
//	error:intake:listen tcp :3000: bind: address already in use
//	done:gateway
type StatusReporter func(string)

// LogReporter writes lifecycle events to a zerolog logger.
func LogReporter(log zerolog.Logger) StatusReporter {
	return func(msg string) {
		state, rest, _ := strings.Cut(msg, ":")
		switch state {
		case "error":
			name, cause, _ := strings.Cut(rest, ":")
			log.Error().Str("job", name).Str("error", cause).Msg("Job failed")
		case "running":
			log.Debug().Str("job", rest).Msg("Job started")
		default:
			log.Info().Str("job", rest).Msg("Job finished")
		}
	}
}

// Manager orchestrates starting, stopping and tracking jobs.
// It is safe for concurrent use.
type Manager struct {
	mu       sync.Mutex
	ctx      context.Context
	cancel   context.CancelFunc
	jobs     map[string]*Job
	wg       sync.WaitGroup
	firstErr error
	Reporter StatusReporter
}

// NewManager creates a Manager whose jobs end when parent does.
// The reporter callback may be nil.
func NewManager(parent context.Context, reporter StatusReporter) *Manager {
	ctx, cancel := context.WithCancel(parent)
	return &Manager{
		ctx:      ctx,
		cancel:   cancel,
		jobs:     make(map[string]*Job),
		Reporter: reporter,
	}
}

// StartSync runs a job in the current goroutine and blocks until completion.
func (m *Manager) StartSync(name string, runner func(ctx context.Context) error) error {
	ctx, cancel := context.WithCancel(m.ctx)
	defer cancel()
	if err := runner(ctx); err != nil {
		return fmt.Errorf("job '%s': %w", name, err)
	}
	return nil
}

// StartAsync runs a job in a separate goroutine and returns immediately.
// If a job with the same name is already running, an error is returned.
// Jobs are removed automatically after completion (success or failure).
func (m *Manager) StartAsync(name string, runner func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.jobs[name]; exists {
		return fmt.Errorf("job '%s' is already running", name)
	}
	if m.ctx.Err() != nil {
		return fmt.Errorf("job '%s' not started: %w", name, m.ctx.Err())
	}

	ctx, cancel := context.WithCancel(m.ctx)
	job := &Job{Name: name, Cancel: cancel}
	m.jobs[name] = job
	m.wg.Add(1)

	go func() {
		defer m.wg.Done()
		defer cancel()
		m.report("running:" + name)

		err := runner(ctx)
		if err != nil {
			m.report("error:" + name + ":" + err.Error())
			m.fail(fmt.Errorf("job '%s': %w", name, err))
		} else {
			m.report("done:" + name)
		}

		m.mu.Lock()
		if m.jobs[name] == job {
			delete(m.jobs, name)
		}
		m.mu.Unlock()
	}()

	return nil
}

// Stop cancels a running job by name.
// If the job is not running, an error is returned.
func (m *Manager) Stop(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[name]
	if !ok {
		return fmt.Errorf("job '%s' not running", name)
	}

	job.Cancel()
	delete(m.jobs, name)
	return nil
}

// Shutdown cancels every job. Wait still reports earlier failures.
func (m *Manager) Shutdown() {
	m.cancel()
}

// Wait blocks until every started job has returned and reports the first
// job error, if any.
func (m *Manager) Wait() error {
	m.wg.Wait()
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.firstErr
}

// List returns the sorted names of active jobs.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, 0, len(m.jobs))
	for k := range m.jobs {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Status returns a human-readable summary of active jobs.
// Example:
//
//	"Running jobs: gateway, intake"
//
// If none are running: "No jobs are running."
func (m *Manager) Status() string {
	active := m.List()
	if len(active) == 0 {
		return "No jobs are running."
	}
	return fmt.Sprintf("Running jobs: %s", strings.Join(active, ", "))
}

func (m *Manager) fail(err error) {
	m.mu.Lock()
	if m.firstErr == nil {
		m.firstErr = err
	}
	m.mu.Unlock()
	m.cancel()
}

// report delivers lifecycle messages to the reporter if present.
func (m *Manager) report(msg string) {
	if m.Reporter != nil {
		m.Reporter(msg)
	}
}
