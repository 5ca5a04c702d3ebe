package cache

import "sync"

// Lock policies accepted by WithLocker.
var (
	_ sync.Locker = (*sync.Mutex)(nil)
	_ sync.Locker = noLock{}
)

// noLock is a lock policy for single goroutine use.
type noLock struct{}

func (noLock) Lock()   {}
func (noLock) Unlock() {}
