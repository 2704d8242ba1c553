package lock

import (
	"context"
	"sync"
)

type memoryEntry struct {
	slot chan struct{}
	refs int
}

// MemoryLocker is a keyed mutex for a single process. Entries are removed once
// no goroutine holds or waits for them.
type MemoryLocker struct {
	opts    Options
	mu      sync.Mutex
	entries map[string]*memoryEntry
}

// NewMemoryLocker creates an in-process locker
func NewMemoryLocker(opts Options) *MemoryLocker {
	return &MemoryLocker{opts: opts, entries: make(map[string]*memoryEntry)}
}

// Lock blocks until key is free, the wait budget is spent, or ctx is done
func (l *MemoryLocker) Lock(ctx context.Context, key string) (func(), error) {
	e := l.acquireEntry(key)

	waitCtx, cancel := l.opts.waitContext(ctx)
	defer cancel()

	select {
	case e.slot <- struct{}{}:
	case <-waitCtx.Done():
		l.releaseEntry(key, e)
		return nil, timeoutError(ctx, key)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.slot
			l.releaseEntry(key, e)
		})
	}, nil
}

func (l *MemoryLocker) acquireEntry(key string) *memoryEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[key]
	if !ok {
		e = &memoryEntry{slot: make(chan struct{}, 1)}
		l.entries[key] = e
	}
	e.refs++
	return e
}

func (l *MemoryLocker) releaseEntry(key string, e *memoryEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
}

// size reports the number of live entries
func (l *MemoryLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
