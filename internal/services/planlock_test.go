package services

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestPlanLocksFailFast(t *testing.T) {
	locks := NewPlanLocks()
	planID := uuid.New()

	assert.True(t, locks.TryAcquire(planID))
	assert.False(t, locks.TryAcquire(planID), "held lease must not be re-acquired")

	locks.Release(planID)
	assert.True(t, locks.TryAcquire(planID))
}

func TestPlanLocksAreIndependentPerPlan(t *testing.T) {
	locks := NewPlanLocks()
	a, b := uuid.New(), uuid.New()

	assert.True(t, locks.TryAcquire(a))
	assert.True(t, locks.TryAcquire(b))
}

func TestPlanLocksSingleWinnerUnderContention(t *testing.T) {
	locks := NewPlanLocks()
	planID := uuid.New()

	const goroutines = 32
	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if locks.TryAcquire(planID) {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, winners)
}
