package hotel

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// Store keeps prebooks and bookings in memory. Prebooks are retained for
// twice their TTL so an expired prebook can be told apart from an unknown
// one; bookings never expire.
type Store struct {
	prebooks *cache.Cache
	bookings *cache.Cache
	// mu serializes read-modify-write sequences across both caches
	mu sync.Mutex
}

// NewStore creates a store for prebooks valid for prebookTTL
func NewStore(prebookTTL time.Duration) *Store {
	return &Store{
		prebooks: cache.New(2*prebookTTL, prebookTTL),
		bookings: cache.New(cache.NoExpiration, 0),
	}
}

func (s *Store) putPrebook(p *Prebook) {
	s.prebooks.SetDefault(p.ID, p)
}

func (s *Store) prebook(id string) (*Prebook, bool) {
	item, ok := s.prebooks.Get(id)
	if !ok {
		return nil, false
	}
	return item.(*Prebook), true
}

func (s *Store) putBooking(b *Booking) {
	s.bookings.Set(b.ID, b, cache.NoExpiration)
}

func (s *Store) booking(id string) (*Booking, bool) {
	item, ok := s.bookings.Get(id)
	if !ok {
		return nil, false
	}
	return item.(*Booking), true
}
