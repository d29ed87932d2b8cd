package jobs

import (
	"errors"
	"fmt"
	"sync"

	"hwp-converter/internal/domain"
)

// ErrBatchAlreadyRunning is returned when starting a second active batch.
var ErrBatchAlreadyRunning = errors.New("batch already running")

// ErrNoRunningBatch is returned when cancel is requested for idle state.
var ErrNoRunningBatch = errors.New("no running batch")

// Manager tracks the single allowed active batch and its transitions.
// The automation host tolerates one driver at a time, so one batch per
// process is a hard limit, not a convenience.
type Manager struct {
	mu      sync.RWMutex
	current domain.Batch
}

// NewManager creates a manager in idle state.
func NewManager() *Manager {
	return &Manager{
		current: domain.Batch{
			Status: domain.BatchStatusIdle,
		},
	}
}

// Start registers a new batch and moves it to initializing state.
func (m *Manager) Start(batchID string, total int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if isRunning(m.current.Status) {
		return ErrBatchAlreadyRunning
	}

	m.current = domain.Batch{
		ID:     batchID,
		Status: domain.BatchStatusInitializing,
		Total:  total,
	}
	return nil
}

// Transition validates and applies state transitions for current batch.
func (m *Manager) Transition(status domain.BatchStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current.ID == "" && status != domain.BatchStatusIdle {
		return fmt.Errorf("cannot transition without an active batch")
	}
	if status == m.current.Status {
		return nil
	}
	if !isValidTransition(m.current.Status, status) {
		return fmt.Errorf("invalid transition: %s -> %s", m.current.Status, status)
	}

	m.current.Status = status
	return nil
}

// Advance records one more terminal job outcome for the current batch.
func (m *Manager) Advance() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current.Completed < m.current.Total {
		m.current.Completed++
	}
}

// Current returns a snapshot of the current batch.
func (m *Manager) Current() domain.Batch {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Reset clears batch metadata and returns manager to idle.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = domain.Batch{Status: domain.BatchStatusIdle}
}

// IsRunning reports whether the current state is an active stage.
func (m *Manager) IsRunning() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return isRunning(m.current.Status)
}

// isRunning checks if a status represents active batch execution.
func isRunning(status domain.BatchStatus) bool {
	switch status {
	case domain.BatchStatusInitializing, domain.BatchStatusRunning, domain.BatchStatusDraining:
		return true
	default:
		return false
	}
}

// isValidTransition enforces the allowed batch state machine edges.
func isValidTransition(from, to domain.BatchStatus) bool {
	switch from {
	case domain.BatchStatusIdle:
		return to == domain.BatchStatusInitializing
	case domain.BatchStatusInitializing:
		return to == domain.BatchStatusRunning || to == domain.BatchStatusFailed
	case domain.BatchStatusRunning:
		return to == domain.BatchStatusDraining || to == domain.BatchStatusCompleted || to == domain.BatchStatusFailed
	case domain.BatchStatusDraining:
		return to == domain.BatchStatusCompleted || to == domain.BatchStatusFailed
	case domain.BatchStatusCompleted, domain.BatchStatusFailed:
		return to == domain.BatchStatusInitializing || to == domain.BatchStatusIdle
	default:
		return false
	}
}
