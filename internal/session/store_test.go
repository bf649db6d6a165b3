package session_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cxde-rxnin/carekeep/internal/domain"
	"github.com/cxde-rxnin/carekeep/internal/session"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func slotPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "session.json")
}

var testUser = domain.User{ID: "u1", HospitalName: "Acme", Email: "a@b.com"}

func TestReadNeverReturnsPartialSession(t *testing.T) {
	s := session.NewStore(slotPath(t), discard)

	check := func(when string) {
		got := s.Read()
		if (got.Token == "") != (got.User == nil) {
			t.Fatalf("%s: partial session: token=%q user=%v", when, got.Token, got.User)
		}
	}

	check("initial")
	s.SetAuth("t1", testUser)
	check("after SetAuth")
	s.ClearAuth()
	check("after ClearAuth")
	s.SetAuth("t2", testUser)
	s.SetAuth("t3", testUser)
	check("after repeated SetAuth")
}

func TestSetAuthPersistsAndRehydrates(t *testing.T) {
	path := slotPath(t)

	session.NewStore(path, discard).SetAuth("t1", testUser)

	got := session.NewStore(path, discard).Read()
	if got.Token != "t1" {
		t.Errorf("token = %q, want t1", got.Token)
	}
	if got.User == nil || got.User.HospitalName != "Acme" {
		t.Errorf("user = %+v, want Acme", got.User)
	}
}

func TestClearAuthPersists(t *testing.T) {
	path := slotPath(t)

	s := session.NewStore(path, discard)
	s.SetAuth("t1", testUser)
	s.ClearAuth()

	if got := session.NewStore(path, discard).Read(); got.Authenticated() {
		t.Errorf("rehydrated session still authenticated: %+v", got)
	}
}

func TestCorruptSlotFallsBackToEmpty(t *testing.T) {
	path := slotPath(t)
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	if got := session.NewStore(path, discard).Read(); got.Authenticated() {
		t.Errorf("corrupt slot produced session %+v", got)
	}
}

func TestPartialSlotIsDiscarded(t *testing.T) {
	path := slotPath(t)
	raw, _ := json.Marshal(map[string]any{"token": "t1", "user": nil})
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatal(err)
	}

	if got := session.NewStore(path, discard).Read(); got.Token != "" {
		t.Errorf("token-only slot survived rehydration: %q", got.Token)
	}
}

func TestReadSnapshotDoesNotAliasStore(t *testing.T) {
	s := session.NewStore(slotPath(t), discard)
	s.SetAuth("t1", testUser)

	snap := s.Read()
	snap.User.HospitalName = "Mutated"

	if got := s.Read().User.HospitalName; got != "Acme" {
		t.Errorf("store mutated through snapshot: %q", got)
	}
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"exp": exp.Unix(),
	})
	signed, err := tok.SignedString([]byte("test-key"))
	if err != nil {
		t.Fatal(err)
	}
	return signed
}

func TestExpired(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{"no session", "", false},
		{"opaque token", "not-a-jwt", false},
		{"live jwt", "", false},
		{"expired jwt", "", true},
	}
	tests[2].token = signedToken(t, time.Now().Add(time.Hour))
	tests[3].token = signedToken(t, time.Now().Add(-time.Hour))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := session.NewStore(slotPath(t), discard)
			if tt.token != "" {
				s.SetAuth(tt.token, testUser)
			}
			if got := s.Expired(); got != tt.want {
				t.Errorf("Expired() = %v, want %v", got, tt.want)
			}
		})
	}
}
