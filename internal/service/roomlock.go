package service

import "sync"

// roomLocks hands out one mutex per room name so metadata read-modify-write
// cycles against the SFU are serialized per room. Locks are never reclaimed;
// the set of rooms a single broker instance touches is small and bounded by
// the reconciler.
type roomLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newRoomLocks() *roomLocks {
	return &roomLocks{locks: make(map[string]*sync.Mutex)}
}

func (r *roomLocks) For(roomName string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()

	lock, ok := r.locks[roomName]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[roomName] = lock
	}
	return lock
}
