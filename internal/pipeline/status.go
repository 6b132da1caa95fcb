package pipeline

import (
	"errors"
	"sync"
	"time"
)

// ErrSyncInProgress is returned when a sync is requested while one is running
var ErrSyncInProgress = errors.New("sync already in progress")

// Status tracks the state of sync runs for whoever triggers them.
// It is safe for concurrent use.
type Status struct {
	mu          sync.Mutex
	running     bool
	lastSuccess time.Time
	lastError   string
	lastReport  *Report
}

// StatusSnapshot is a point-in-time copy of Status
type StatusSnapshot struct {
	IsRunning   bool       `json:"is_running"`
	LastSuccess *time.Time `json:"last_success_timestamp,omitempty"`
	LastError   string     `json:"last_error,omitempty"`
	LastReport  *Report    `json:"last_report,omitempty"`
}

// TryBegin marks a run as started. It returns false if one is already running.
func (s *Status) TryBegin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return false
	}
	s.running = true
	return true
}

// Finish records the outcome of the run started by TryBegin
func (s *Status) Finish(report *Report, err error, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.running = false
	if report != nil {
		s.lastReport = report
	}
	if err != nil {
		s.lastError = err.Error()
		return
	}
	s.lastError = ""
	s.lastSuccess = at
}

// Snapshot returns the current status
func (s *Status) Snapshot() StatusSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := StatusSnapshot{
		IsRunning:  s.running,
		LastError:  s.lastError,
		LastReport: s.lastReport,
	}
	if !s.lastSuccess.IsZero() {
		t := s.lastSuccess
		snap.LastSuccess = &t
	}
	return snap
}
