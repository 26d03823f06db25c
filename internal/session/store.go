package session

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	// DefaultMaxSize is the number of sessions kept before eviction starts
	DefaultMaxSize = 100

	// DefaultTTL is how long a session lives after its last update
	DefaultTTL = 3600 * time.Second
)

// Config holds the cache bounds
type Config struct {
	MaxSize int
	TTL     time.Duration
}

// DefaultConfig returns the default session cache configuration
func DefaultConfig() Config {
	return Config{
		MaxSize: DefaultMaxSize,
		TTL:     DefaultTTL,
	}
}

// Clock returns the current time
type Clock func() time.Time

// Option configures a Store
type Option func(*Store)

// WithClock replaces the wall clock used for expiry checks
func WithClock(clock Clock) Option {
	return func(s *Store) {
		if clock != nil {
			s.now = clock
		}
	}
}

type entry struct {
	turns     []Turn
	expiresAt time.Time
}

// Store is a capacity-bounded, time-bounded map from session id to turns.
// Eviction on overflow drops the least recently used session. Expiry is
// checked lazily on access, so a Store owns no background goroutine.
type Store struct {
	mu    sync.Mutex
	cache *lru.Cache[string, entry]
	ttl   time.Duration
	now   Clock
}

// NewStore creates a session store. Zero values in config fall back to the defaults.
func NewStore(config Config, opts ...Option) *Store {
	if config.MaxSize <= 0 {
		config.MaxSize = DefaultMaxSize
	}
	if config.TTL <= 0 {
		config.TTL = DefaultTTL
	}

	// Only fails for a non-positive size
	cache, _ := lru.New[string, entry](config.MaxSize)

	s := &Store{
		cache: cache,
		ttl:   config.TTL,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns a copy of the turns stored under key
func (s *Store) Get(key string) ([]Turn, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns, ok := s.get(key)
	if !ok {
		return nil, false
	}
	return cloneTurns(turns), true
}

// Set stores turns under key and restarts its TTL
func (s *Store) Set(key string, turns []Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.set(key, cloneTurns(turns))
}

// Delete removes key if present
func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache.Remove(key)
}

// Len returns the number of resident sessions, expired ones included until
// they are next touched or evicted.
func (s *Store) Len() int {
	return s.cache.Len()
}

func (s *Store) get(key string) ([]Turn, bool) {
	e, ok := s.cache.Get(key)
	if !ok {
		return nil, false
	}
	if !s.now().Before(e.expiresAt) {
		s.cache.Remove(key)
		return nil, false
	}
	return e.turns, true
}

func (s *Store) set(key string, turns []Turn) {
	s.cache.Add(key, entry{
		turns:     turns,
		expiresAt: s.now().Add(s.ttl),
	})
}

func cloneTurns(turns []Turn) []Turn {
	if turns == nil {
		return nil
	}
	out := make([]Turn, len(turns))
	copy(out, turns)
	return out
}
