package distlock

import (
	"context"
	"sync"
)

var localHeld sync.Map // key -> struct{}

// LocalLock is a process-wide lock keyed by name. It only guards against
// concurrent holders inside one process.
type LocalLock struct {
	key   string
	owned bool
}

// NewLocalLock creates an in-process lock for key.
func NewLocalLock(key string) *LocalLock {
	return &LocalLock{key: key}
}

// Acquire takes the lock if no other holder in this process has it.
func (l *LocalLock) Acquire(_ context.Context) (bool, error) {
	_, loaded := localHeld.LoadOrStore(l.key, struct{}{})
	l.owned = !loaded
	return l.owned, nil
}

// Release drops the lock if this instance holds it.
func (l *LocalLock) Release(_ context.Context) error {
	if l.owned {
		localHeld.Delete(l.key)
		l.owned = false
	}
	return nil
}
