package session

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	CookieName = "tripplanner_session"

	DefaultTTL     = 12 * time.Hour
	DefaultMaxSize = 1024
)

// Store holds sessions in a bounded LRU whose entries expire after a TTL.
type Store struct {
	cache *expirable.LRU[string, *Session]
	ttl   time.Duration
	now   func() time.Time
}

// NewStore creates a store. Non-positive arguments use the defaults.
func NewStore(maxSize int, ttl time.Duration) *Store {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		cache: expirable.NewLRU[string, *Session](maxSize, nil, ttl),
		ttl:   ttl,
		now:   time.Now,
	}
}

// SetClock overrides the clock used for session timestamps.
func (s *Store) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Now returns the store clock's current time.
func (s *Store) Now() time.Time { return s.now() }

// New creates and stores a fresh session.
func (s *Store) New() *Session {
	sess := newSession(uuid.NewString(), s.now())
	s.cache.Add(sess.ID, sess)
	return sess
}

func (s *Store) Get(id string) (*Session, bool) {
	if id == "" {
		return nil, false
	}
	return s.cache.Get(id)
}

// Touch re-adds the session so its TTL restarts.
func (s *Store) Touch(sess *Session) {
	s.cache.Add(sess.ID, sess)
}

func (s *Store) Remove(id string) { s.cache.Remove(id) }

func (s *Store) Len() int { return s.cache.Len() }

// FromRequest returns the session named by the request cookie, creating a
// new one (and setting the cookie on w) when it is missing or expired.
func (s *Store) FromRequest(w http.ResponseWriter, r *http.Request) *Session {
	if c, err := r.Cookie(CookieName); err == nil {
		if sess, ok := s.Get(c.Value); ok {
			s.Touch(sess)
			return sess
		}
	}
	sess := s.New()
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.ttl / time.Second),
	})
	return sess
}

// Lookup returns the session named by the request cookie without creating one.
func (s *Store) Lookup(r *http.Request) (*Session, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return nil, false
	}
	return s.Get(c.Value)
}
