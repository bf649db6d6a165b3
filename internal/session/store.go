package session

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cxde-rxnin/carekeep/internal/domain"
)

// Store owns the client's single authenticated session. It is the one
// durable piece of client state: a JSON slot on disk, rehydrated at
// startup and rewritten on every SetAuth/ClearAuth.
//
// Invariant: the stored session holds either both token and user, or
// neither. A slot that violates this on disk is discarded at load time.
type Store struct {
	mu     sync.RWMutex
	path   string
	cur    domain.Session
	logger *slog.Logger
}

// NewStore loads the session slot at path. A missing, unreadable, or
// malformed slot yields the empty session; rehydration never fails.
func NewStore(path string, logger *slog.Logger) *Store {
	s := &Store{
		path:   path,
		logger: logger.With("component", "session"),
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("session slot unreadable, starting empty", "error", err)
		}
		return s
	}

	var sess domain.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		s.logger.Warn("session slot corrupt, starting empty", "error", err)
		return s
	}
	if !sess.Authenticated() {
		// Half a session (token without user or vice versa) is as good
		// as none.
		return s
	}

	s.cur = sess
	return s
}

// SetAuth replaces token and user atomically and persists the slot.
// State assignment cannot fail; a persistence failure is logged and the
// in-memory session still takes effect.
func (s *Store) SetAuth(token string, user domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := user
	s.cur = domain.Session{Token: token, User: &u}
	s.persistLocked()
}

// ClearAuth nulls both fields and persists the empty slot.
func (s *Store) ClearAuth() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cur = domain.Session{}
	s.persistLocked()
}

// Read returns a snapshot of the current session. The returned value
// never aliases internal state.
func (s *Store) Read() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := s.cur
	if s.cur.User != nil {
		u := *s.cur.User
		out.User = &u
	}
	return out
}

// Expired reports whether the stored bearer token carries an exp claim
// in the past. Tokens that are absent, opaque, or missing exp count as
// live: the server is the authority, and 401 interception covers the
// rest.
func (s *Store) Expired() bool {
	sess := s.Read()
	if !sess.Authenticated() {
		return false
	}

	// The client has no signing key; it only inspects the claims.
	token, _, err := jwt.NewParser().ParseUnverified(sess.Token, jwt.MapClaims{})
	if err != nil {
		return false
	}
	exp, err := token.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}

// persistLocked writes the slot via a temp file and rename so a crash
// mid-write cannot leave a torn slot behind. Caller holds s.mu.
func (s *Store) persistLocked() {
	if err := s.write(); err != nil {
		s.logger.Error("persist session slot", "error", err)
	}
}

func (s *Store) write() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	raw, err := json.Marshal(s.cur)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write session slot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace session slot: %w", err)
	}
	return nil
}
