// Package jobmgr provides named background jobs with cancellation, status
// callbacks and in-memory tracking. The cognition engine runs each of its
// periodic loops (monitor, think, goals, config reload) as a named job so
// force-stop can cancel them individually and synchronously.
//
// Typical usage:
//
//	jm := jobmgr.NewManager(func(msg string) {
//	    log.Println("JOB:", msg)
//	})
//	_ = jm.StartPeriodic(ctx, "monitor", 5*time.Second, func(ctx context.Context) {
//	    engine.MonitorTick(time.Now())
//	})
//	// later...
//	_ = jm.Stop("monitor")
package jobmgr

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Job represents a running unit of work.
type Job struct {
	Name   string
	Cancel context.CancelFunc
	done   chan struct{}
}

// StatusReporter receives lifecycle events, e.g. "running:think",
// "done:think", "error:think:<msg>".
type StatusReporter func(string)

// Manager orchestrates starting, stopping and tracking jobs. Safe for
// concurrent use. Construct one per engine; there is no global instance.
type Manager struct {
	mu       sync.Mutex
	jobs     map[string]*Job
	Reporter StatusReporter
}

// NewManager creates a Manager. The reporter callback may be nil.
func NewManager(reporter StatusReporter) *Manager {
	return &Manager{
		jobs:     make(map[string]*Job),
		Reporter: reporter,
	}
}

// StartAsync runs a job in a separate goroutine and returns immediately.
// A second job under the same name is an error. The job is removed
// automatically when the runner returns.
func (m *Manager) StartAsync(parent context.Context, name string, runner func(ctx context.Context) error) error {
	ctx, cancel, job, err := m.register(parent, name)
	if err != nil {
		return err
	}

	go func() {
		defer close(job.done)
		m.report("running:" + name)
		if err := runner(ctx); err != nil && ctx.Err() == nil {
			m.report("error:" + name + ":" + err.Error())
		} else {
			m.report("done:" + name)
		}
		cancel()
		m.remove(name)
	}()

	return nil
}

// StartPeriodic runs fn every interval until the job is stopped or the
// parent context is done. The first run happens after one interval.
func (m *Manager) StartPeriodic(parent context.Context, name string, interval time.Duration, fn func(ctx context.Context)) error {
	return m.StartAsync(parent, name, func(ctx context.Context) error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				fn(ctx)
			}
		}
	})
}

// Stop cancels a running job by name and waits for it to exit, so callers
// get synchronous cancellation. Stopping an unknown job is an error.
func (m *Manager) Stop(name string) error {
	m.mu.Lock()
	job, ok := m.jobs[name]
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("job '%s' not running", name)
	}
	job.Cancel()
	<-job.done
	return nil
}

// StopAll cancels every running job and waits for all of them.
func (m *Manager) StopAll() {
	m.mu.Lock()
	jobs := make([]*Job, 0, len(m.jobs))
	for _, j := range m.jobs {
		jobs = append(jobs, j)
	}
	m.mu.Unlock()
	for _, j := range jobs {
		j.Cancel()
		<-j.done
	}
}

// Running reports whether a job with the given name is active.
func (m *Manager) Running(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.jobs[name]
	return ok
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
func (m *Manager) Status() string {
	active := m.List()
	if len(active) == 0 {
		return "No jobs are running."
	}
	return fmt.Sprintf("Running jobs: %s", strings.Join(active, ", "))
}

func (m *Manager) register(parent context.Context, name string) (context.Context, context.CancelFunc, *Job, error) {
	if parent == nil {
		parent = context.Background()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.jobs[name]; exists {
		return nil, nil, nil, fmt.Errorf("job '%s' is already running", name)
	}
	ctx, cancel := context.WithCancel(parent)
	job := &Job{Name: name, Cancel: cancel, done: make(chan struct{})}
	m.jobs[name] = job
	return ctx, cancel, job, nil
}

func (m *Manager) remove(name string) {
	m.mu.Lock()
	delete(m.jobs, name)
	m.mu.Unlock()
}

func (m *Manager) report(s string) {
	if m.Reporter != nil {
		m.Reporter(s)
	}
}
