package sched

import (
	"context"
	"log"
	"runtime/debug"
	"sync"
	"time"
)

// Job is one schedulable unit of work. Bodies must be safe to run concurrently
// with other jobs and with a second instance of themselves: the scheduler
// never serializes a job against itself, so a body slower than its interval
// will overlap its next firing.
type Job func(ctx context.Context) error

// Scheduler runs each registered job on its own fixed-interval timer. Ticks
// are measured from the previous scheduled fire time, not from completion.
type Scheduler struct {
	mu      sync.Mutex
	entries map[string]*entry
	started bool
	stopped bool
}

type entry struct {
	id       string
	interval time.Duration
	run      Job
	stop     chan struct{}
}

func New() *Scheduler {
	return &Scheduler{entries: make(map[string]*entry)}
}

// Add registers a job under a stable identifier. Re-adding an identifier
// replaces the prior timer; there is never more than one timer per id.
func (s *Scheduler) Add(id string, interval time.Duration, run Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	if prev, ok := s.entries[id]; ok {
		close(prev.stop)
	}
	e := &entry{id: id, interval: interval, run: run, stop: make(chan struct{})}
	s.entries[id] = e
	if s.started {
		go s.loop(e)
	}
}

// Start instantiates one timer per registered entry. Jobs added afterwards
// start their timers immediately.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started || s.stopped {
		return
	}
	s.started = true
	for _, e := range s.entries {
		go s.loop(e)
	}
}

// Stop cancels all timers. In-flight job bodies run to completion; Stop does
// not wait for them (best-effort shutdown).
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.stopped = true
	for _, e := range s.entries {
		close(e.stop)
	}
	s.entries = make(map[string]*entry)
}

func (s *Scheduler) loop(e *entry) {
	t := time.NewTicker(e.interval)
	defer t.Stop()
	for {
		select {
		case <-e.stop:
			return
		case <-t.C:
			go s.fire(e)
		}
	}
}

// fire runs one job body. A storage-layer failure is fatal to that execution
// only; the next tick still fires, and a panic never takes down the process.
func (s *Scheduler) fire(e *entry) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("job %s panicked: %v\n%s", e.id, r, debug.Stack())
		}
	}()
	if err := e.run(context.Background()); err != nil {
		log.Printf("job %s: %v", e.id, err)
	}
}
