package orchestrator

import (
	"sync"
)

// State enumerates the per-agent lifecycle phases observable during an
// orchestration run.
type State int

const (
	// StateQueued marks an agent that has not started yet.
	StateQueued State = iota
	// StateInitializing marks an agent being constructed.
	StateInitializing
	// StateProcessing marks an agent interacting with the model.
	StateProcessing
	// StateCompleted marks an agent whose run succeeded.
	StateCompleted
	// StateFailed marks an agent whose run failed; Status.Reason says why.
	StateFailed
)

// Status is a tagged state with an optional diagnostic reason, carried only
// by StateFailed. Display layers render it via String and must treat any
// unrecognized string as an in-progress placeholder.
type Status struct {
	State  State
	Reason string
}

// Display strings for each state.
func (s Status) String() string {
	switch s.State {
	case StateQueued:
		return "QUEUED"
	case StateInitializing:
		return "INITIALIZING..."
	case StateProcessing:
		return "PROCESSING..."
	case StateCompleted:
		return "COMPLETED"
	case StateFailed:
		return "FAILED: " + s.Reason
	default:
		return "UNKNOWN"
	}
}

// Queued returns the queued status.
func Queued() Status { return Status{State: StateQueued} }

// Initializing returns the initializing status.
func Initializing() Status { return Status{State: StateInitializing} }

// Processing returns the processing status.
func Processing() Status { return Status{State: StateProcessing} }

// Completed returns the completed status.
func Completed() Status { return Status{State: StateCompleted} }

// Failed returns a failed status carrying the reason.
func Failed(reason string) Status { return Status{State: StateFailed, Reason: reason} }

// Progress is the shared mapping from agent index to status, mutated by
// running agents and polled by a display layer. Each index has exactly one
// writer (the owning agent's goroutine); the RWMutex covers map access so any
// number of observers can snapshot concurrently.
type Progress struct {
	mu      sync.RWMutex
	entries map[int]Status
}

// NewProgress creates an empty tracker.
func NewProgress() *Progress {
	return &Progress{entries: make(map[int]Status)}
}

// Reset discards previous entries and marks indices 0..n-1 as queued. Called
// at the start of every orchestration run.
func (p *Progress) Reset(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries = make(map[int]Status, n)
	for i := 0; i < n; i++ {
		p.entries[i] = Queued()
	}
}

// Set updates the status for one agent index.
func (p *Progress) Set(index int, status Status) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries[index] = status
}

// Snapshot returns a copy of the current mapping so observers never see a
// half-updated view and cannot mutate the source of truth.
func (p *Progress) Snapshot() map[int]Status {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make(map[int]Status, len(p.entries))
	for i, s := range p.entries {
		out[i] = s
	}
	return out
}
