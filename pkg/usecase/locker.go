package usecase

import "sync"

// keyLocker hands out one mutex per key. Entries are dropped once nobody
// holds or waits for them.
type keyLocker[K comparable] struct {
	mu    sync.Mutex
	locks map[K]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyLocker[K comparable]() *keyLocker[K] {
	return &keyLocker[K]{
		locks: make(map[K]*keyLock),
	}
}

func (l *keyLocker[K]) lock(key K) (unlock func()) {
	l.mu.Lock()
	kl, ok := l.locks[key]
	if !ok {
		kl = &keyLock{}
		l.locks[key] = kl
	}
	kl.refs++
	l.mu.Unlock()

	kl.mu.Lock()
	return func() {
		kl.mu.Unlock()

		l.mu.Lock()
		defer l.mu.Unlock()
		kl.refs--
		if kl.refs == 0 {
			delete(l.locks, key)
		}
	}
}
