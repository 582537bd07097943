package services

import (
	"sync"

	"github.com/google/uuid"
)

// PlanLocks serializes generation for individual plans: at most one
// generation or accept may hold a plan's lease at a time. Acquisition is
// fail-fast rather than queued so callers can surface a retryable conflict
// immediately.
type PlanLocks struct {
	mu   sync.Mutex
	held map[uuid.UUID]struct{}
}

func NewPlanLocks() *PlanLocks {
	return &PlanLocks{held: make(map[uuid.UUID]struct{})}
}

// TryAcquire takes the lease for planID, returning false when it is
// already held.
func (l *PlanLocks) TryAcquire(planID uuid.UUID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[planID]; ok {
		return false
	}
	l.held[planID] = struct{}{}
	return true
}

// Release returns the lease for planID. Releasing an unheld lease is a no-op.
func (l *PlanLocks) Release(planID uuid.UUID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, planID)
}
