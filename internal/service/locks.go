package service

import (
	"slices"
	"sync"
)

type lockKey int

// Global acquisition order. A flow touching several stores always locks
// them in this order.
const (
	lockCodes lockKey = iota
	lockUsers
	lockListings
	lockLedger
	lockCount
)

// LockSet serializes flows that span more than one store. Every service
// of one process must share the same LockSet.
type LockSet struct {
	mu [lockCount]sync.Mutex
}

func NewLockSet() *LockSet {
	return &LockSet{}
}

// acquire locks the given stores in global order and returns the release func
func (l *LockSet) acquire(keys ...lockKey) func() {
	keys = slices.Clone(keys)
	slices.Sort(keys)
	keys = slices.Compact(keys)

	for _, k := range keys {
		l.mu[k].Lock()
	}
	return func() {
		for i := len(keys) - 1; i >= 0; i-- {
			l.mu[keys[i]].Unlock()
		}
	}
}
