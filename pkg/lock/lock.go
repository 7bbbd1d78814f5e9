// Package lock provides keyed mutual exclusion. Session operations take
// "assignment:<id>", "user:<id>" and "template:<topic>" keys.
package lock

import (
	"context"
	"sync"
)

type Locker interface {
	// Lock blocks until key is held or ctx is done. The returned func releases
	// the key and is safe to call more than once.
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

type slot struct {
	ch   chan struct{}
	refs int
}

// LocalLocker serialises holders of the same key inside one process.
type LocalLocker struct {
	mu    sync.Mutex
	slots map[string]*slot
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{slots: make(map[string]*slot)}
}

func (l *LocalLocker) acquireSlot(key string) *slot {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.slots[key]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[key] = s
	}
	s.refs++
	return s
}

func (l *LocalLocker) releaseSlot(key string, s *slot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s.refs--
	if s.refs == 0 {
		delete(l.slots, key)
	}
}

func (l *LocalLocker) Lock(ctx context.Context, key string) (func(), error) {
	s := l.acquireSlot(key)
	select {
	case s.ch <- struct{}{}:
	case <-ctx.Done():
		l.releaseSlot(key, s)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-s.ch
			l.releaseSlot(key, s)
		})
	}, nil
}
