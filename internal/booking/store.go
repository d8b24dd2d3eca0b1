package booking

import (
	"context"
	"errors"
	"sort"
	"sync"
)

var ErrNotFound = errors.New("booking not found")

// Store persists booking aggregates. Update runs fn under per-booking
// mutual exclusion: the stored aggregate is only replaced when fn succeeds,
// and two concurrent updates on the same booking are serialized.
type Store interface {
	Create(ctx context.Context, b *Booking) error
	Get(ctx context.Context, id string) (*Booking, error)
	List(ctx context.Context) ([]*Booking, error)
	Update(ctx context.Context, id string, fn func(b *Booking) (*Booking, error)) (*Booking, error)
}

// MemoryStore is the reference store: a map guarded by a mutex plus one
// lock per booking id so transitions on different bookings don't contend.
type MemoryStore struct {
	mu       sync.RWMutex
	bookings map[string]*Booking
	locks    map[string]*sync.Mutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		bookings: make(map[string]*Booking),
		locks:    make(map[string]*sync.Mutex),
	}
}

func (s *MemoryStore) Create(_ context.Context, b *Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bookings[b.ID]; ok {
		return errors.New("booking already exists: " + b.ID)
	}
	s.bookings[b.ID] = b.Clone()
	s.locks[b.ID] = &sync.Mutex{}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	return b.Clone(), nil
}

func (s *MemoryStore) List(_ context.Context) ([]*Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Booking, 0, len(s.bookings))
	for _, b := range s.bookings {
		out = append(out, b.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) Update(_ context.Context, id string, fn func(b *Booking) (*Booking, error)) (*Booking, error) {
	s.mu.RLock()
	lock, ok := s.locks[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	lock.Lock()
	defer lock.Unlock()

	s.mu.RLock()
	cur := s.bookings[id]
	s.mu.RUnlock()
	if cur == nil {
		return nil, ErrNotFound
	}

	next, err := fn(cur.Clone())
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.bookings[id] = next.Clone()
	s.mu.Unlock()
	return next, nil
}
