package transport_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cxde-rxnin/carekeep/internal/domain"
	"github.com/cxde-rxnin/carekeep/internal/log"
	"github.com/cxde-rxnin/carekeep/internal/session"
	"github.com/cxde-rxnin/carekeep/internal/transport"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// ---- fakes ----

type fakeSession struct {
	read      func() domain.Session
	clearAuth func()
}

func (s *fakeSession) Read() domain.Session {
	if s.read == nil {
		return domain.Session{}
	}
	return s.read()
}

func (s *fakeSession) ClearAuth() {
	if s.clearAuth != nil {
		s.clearAuth()
	}
}

func authedSession(token string) *fakeSession {
	return &fakeSession{
		read: func() domain.Session {
			return domain.Session{Token: token, User: &domain.User{ID: "u1"}}
		},
	}
}

// ---- request augmentation ----

func TestBearerTokenAttachedWhenSessionPresent(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := transport.New(srv.URL, authedSession("t1"), nil, discard)
	if _, err := c.ListPatients(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotAuth != "Bearer t1" {
		t.Errorf("Authorization = %q, want Bearer t1", gotAuth)
	}
}

func TestNoAuthorizationHeaderWithoutSession(t *testing.T) {
	var hadAuth bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hadAuth = r.Header["Authorization"]
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := transport.New(srv.URL, &fakeSession{}, nil, discard)
	if _, err := c.ListPatients(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if hadAuth {
		t.Error("Authorization header sent without a session")
	}
}

func TestRequestIDHeaderIsSet(t *testing.T) {
	var gotID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = r.Header.Get("X-Request-ID")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := transport.New(srv.URL, &fakeSession{}, nil, discard)
	if _, err := c.ListPatients(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotID == "" {
		t.Error("X-Request-ID not attached")
	}
}

// The request log line must carry the same ID the server received as
// X-Request-ID, so client and server logs can be matched.
func TestRequestLogCarriesSentRequestID(t *testing.T) {
	var sentID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sentID = r.Header.Get("X-Request-ID")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	var buf bytes.Buffer
	logger := log.New(&buf, "production", slog.LevelDebug)

	c := transport.New(srv.URL, authedSession("t1"), nil, logger)
	if _, err := c.ListPatients(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sentID == "" {
		t.Fatal("X-Request-ID not sent")
	}

	var logged string
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		var rec struct {
			Msg       string `json:"msg"`
			RequestID string `json:"request_id"`
		}
		if err := json.Unmarshal(line, &rec); err != nil {
			t.Fatalf("log line %s: %v", line, err)
		}
		if rec.Msg == "api request" {
			logged = rec.RequestID
		}
	}

	if logged == "" {
		t.Fatal("api request log line has no request_id")
	}
	if logged != sentID {
		t.Errorf("logged request_id = %q, header carried %q", logged, sentID)
	}
}

// ---- 401 interception ----

func TestUnauthorizedClearsSessionRedirectsAndPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"Unauthorized"}`))
	}))
	defer srv.Close()

	var cleared, redirected bool
	sess := authedSession("stale")
	sess.clearAuth = func() { cleared = true }

	c := transport.New(srv.URL, sess, func() { redirected = true }, discard)
	_, err := c.ListPatients(context.Background())

	if !cleared {
		t.Error("session not cleared on 401")
	}
	if !redirected {
		t.Error("unauthorized callback not invoked")
	}
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("error = %v, want wrapping domain.ErrUnauthorized", err)
	}
}

// Scenario from the session contract: a 401 on any call leaves the
// persisted slot empty, using the real store.
func TestUnauthorizedAgainstRealStore(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	store := session.NewStore(filepath.Join(t.TempDir(), "session.json"), discard)
	store.SetAuth("t1", domain.User{ID: "u1", HospitalName: "Acme"})

	c := transport.New(srv.URL, store, nil, discard)
	if _, err := c.ListPatients(context.Background()); err == nil {
		t.Fatal("expected an error from the 401 response")
	}

	if got := store.Read(); got.Token != "" || got.User != nil {
		t.Errorf("session after 401 = %+v, want empty", got)
	}
}

// ---- login scenario ----

func TestLoginThenAuthenticatedCall(t *testing.T) {
	var patientsAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			w.Write([]byte(`{"token":"t1","user":{"id":"u1","hospitalName":"Acme"}}`))
		case "/patients":
			patientsAuth = r.Header.Get("Authorization")
			w.Write([]byte(`[]`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	store := session.NewStore(filepath.Join(t.TempDir(), "session.json"), discard)
	c := transport.New(srv.URL, store, nil, discard)

	res, err := c.Login(context.Background(), transport.LoginInput{Email: "a@b.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	store.SetAuth(res.Token, res.User)

	if got := store.Read(); got.Token != "t1" || got.User.HospitalName != "Acme" {
		t.Fatalf("session = %+v, want t1/Acme", got)
	}

	if _, err := c.ListPatients(context.Background()); err != nil {
		t.Fatalf("list patients: %v", err)
	}
	if patientsAuth != "Bearer t1" {
		t.Errorf("patients call Authorization = %q, want Bearer t1", patientsAuth)
	}
}

// ---- error mapping ----

func TestServerMessageSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"Patient name is required"}`))
	}))
	defer srv.Close()

	c := transport.New(srv.URL, &fakeSession{}, nil, discard)
	_, err := c.CreatePatient(context.Background(), transport.CreatePatientInput{})

	var apiErr *transport.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %T, want *APIError", err)
	}
	if apiErr.Message != "Patient name is required" {
		t.Errorf("message = %q, want server-supplied text", apiErr.Message)
	}
}

func TestGenericFallbackWhenBodyHasNoMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := transport.New(srv.URL, &fakeSession{}, nil, discard)
	_, err := c.ListBackups(context.Background())

	var apiErr *transport.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %T, want *APIError", err)
	}
	if apiErr.Message == "" {
		t.Error("fallback message is empty")
	}
}

func TestNetworkFailureIsGenericTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	c := transport.New(srv.URL, &fakeSession{}, nil, discard)
	_, err := c.ListPatients(context.Background())

	if err == nil {
		t.Fatal("expected a transport error")
	}
	var apiErr *transport.APIError
	if errors.As(err, &apiErr) {
		t.Error("network failure must not look like an API error")
	}
}

func TestNotFoundMapsToDomainSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"Patient not found"}`))
	}))
	defer srv.Close()

	c := transport.New(srv.URL, &fakeSession{}, nil, discard)
	_, err := c.Patient(context.Background(), "missing")

	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("error = %v, want wrapping domain.ErrNotFound", err)
	}
}

// ---- backups ----

func TestRunBackupDefaultsScopeToFull(t *testing.T) {
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		body = string(raw)
		w.Write([]byte(`{"_id":"b1","status":"pending"}`))
	}))
	defer srv.Close()

	c := transport.New(srv.URL, authedSession("t1"), nil, discard)
	if _, err := c.RunBackup(context.Background(), ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(body, `"scope":"full"`) {
		t.Errorf("body = %s, want scope full", body)
	}
}

func TestDownloadBackupReturnsBlobWithFilename(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/backups/b1/download" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Header().Set("Content-Disposition", `attachment; filename="snapshot.json"`)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"snapshot":true}`))
	}))
	defer srv.Close()

	c := transport.New(srv.URL, authedSession("t1"), nil, discard)
	blob, err := c.DownloadBackup(context.Background(), "b1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if blob.Name != "snapshot.json" {
		t.Errorf("name = %q, want snapshot.json", blob.Name)
	}
	if string(blob.Data) != `{"snapshot":true}` {
		t.Errorf("data = %s", blob.Data)
	}
}
