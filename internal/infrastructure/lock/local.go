package lock

import (
	"context"
	"sync"

	"flight-event-mock-service/internal/domain/repository"
)

// LocalLocker serializes flights inside one process
type LocalLocker struct {
	mu    sync.Mutex
	slots map[uint]chan struct{}
}

// NewLocalLocker creates an in-process flight locker
func NewLocalLocker() repository.FlightLocker {
	return &LocalLocker{slots: make(map[uint]chan struct{})}
}

func (l *LocalLocker) slot(flightID uint) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.slots[flightID]
	if !ok {
		s = make(chan struct{}, 1)
		l.slots[flightID] = s
	}
	return s
}

// Lock waits for the flight slot or returns ctx.Err()
func (l *LocalLocker) Lock(ctx context.Context, flightID uint) (func(), error) {
	s := l.slot(flightID)

	select {
	case s <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() { <-s })
		}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
