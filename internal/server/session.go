package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/mortgage-calculator/internal/calculator"
	"go.uber.org/zap"
)

const sessionCookieName = "session"

// session owns the calculator of one browser. mu must be held while the
// calculator is used.
type session struct {
	id   uuid.UUID
	mu   sync.Mutex
	calc *calculator.Calculator

	lastSeen time.Time // guarded by sessionStore.mu
}

// sessionStore keeps one calculator per browser session in memory.
type sessionStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*session
	ttl      time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

func newSessionStore(logger *zap.Logger, ttl time.Duration) *sessionStore {
	return &sessionStore{
		sessions: make(map[uuid.UUID]*session),
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
	}
}

// lookup returns the live session for id, refreshing its idle timer. An
// expired session is removed and reported as missing.
func (s *sessionStore) lookup(id uuid.UUID) (*session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	now := s.now()
	if now.Sub(sess.lastSeen) > s.ttl {
		delete(s.sessions, id)
		return nil, false
	}
	sess.lastSeen = now
	return sess, true
}

func (s *sessionStore) create() *session {
	sess := &session{
		id:   uuid.New(),
		calc: calculator.New(s.logger.Named("calculator")),
	}

	s.mu.Lock()
	sess.lastSeen = s.now()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	s.logger.Debug("session created",
		zap.String("op", "server.sessionStore.create"),
		zap.String("session", sess.id.String()),
	)
	return sess
}

// sweep removes every session idle for longer than the TTL and returns how
// many were removed.
func (s *sessionStore) sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.lastSeen) > s.ttl {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

func (s *sessionStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// sessionID extracts a well-formed session id from the request cookie.
func sessionID(r *http.Request) (uuid.UUID, bool) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(cookie.Value)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

// sessionFor returns the request's session, starting a new one and setting
// its cookie when the request has none or it expired.
func (h *handler) sessionFor(w http.ResponseWriter, r *http.Request) *session {
	if id, ok := sessionID(r); ok {
		if sess, ok := h.sessions.lookup(id); ok {
			return sess
		}
	}

	sess := h.sessions.create()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sess.id.String(),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sess
}
