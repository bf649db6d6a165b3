package transport

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cxde-rxnin/carekeep/internal/domain"
	"github.com/cxde-rxnin/carekeep/internal/metrics"
	"github.com/cxde-rxnin/carekeep/internal/requestid"
)

// RequestHook mutates an outbound request before it is sent.
type RequestHook func(req *http.Request)

// ResponseHook observes a response before the caller decodes it. Hooks
// must not consume the body.
type ResponseHook func(resp *http.Response, took time.Duration)

// SessionReader is the read-only view hooks use to bind credentials.
type SessionReader interface {
	Read() domain.Session
}

// BearerAuth attaches the current session's token as a bearer
// credential. Requests made without a session go out unauthenticated.
func BearerAuth(sess SessionReader) RequestHook {
	return func(req *http.Request) {
		if s := sess.Read(); s.Authenticated() {
			req.Header.Set("Authorization", "Bearer "+s.Token)
		}
	}
}

// RequestID propagates the context's request ID as X-Request-ID so a
// client log line can be matched against the server's.
func RequestID() RequestHook {
	return func(req *http.Request) {
		if id := requestid.FromContext(req.Context()); id != "" {
			req.Header.Set("X-Request-ID", id)
		}
	}
}

// Instrument records per-request prometheus metrics. Only the
// dashboard command exposes the collectors; everywhere else they are
// recorded and discarded.
func Instrument() ResponseHook {
	return func(resp *http.Response, took time.Duration) {
		method := resp.Request.Method
		path := metricPath(resp.Request.URL.Path)
		status := strconv.Itoa(resp.StatusCode)

		metrics.RequestsTotal.WithLabelValues(method, path, status).Inc()
		metrics.RequestDuration.WithLabelValues(method, path, status).Observe(took.Seconds())
	}
}

// UnauthorizedIntercept implements the global 401 contract: clear the
// session slot, run the login redirect analog, and let the error flow
// on to the caller untouched.
func UnauthorizedIntercept(sess SessionStore, onUnauthorized func(), logger *slog.Logger) ResponseHook {
	return func(resp *http.Response, _ time.Duration) {
		if resp.StatusCode != http.StatusUnauthorized {
			return
		}

		logger.WarnContext(resp.Request.Context(), "session rejected by api, clearing local credentials",
			slog.String("path", resp.Request.URL.Path))
		sess.ClearAuth()
		metrics.UnauthorizedTotal.Inc()

		if onUnauthorized != nil {
			onUnauthorized()
		}
	}
}

// metricPath collapses resource IDs so the path label stays bounded.
func metricPath(p string) string {
	parts := strings.Split(p, "/")
	for i, s := range parts {
		if looksLikeID(s) {
			parts[i] = ":id"
		}
	}
	return strings.Join(parts, "/")
}

func looksLikeID(s string) bool {
	if len(s) < 12 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		case r == '-':
		default:
			return false
		}
	}
	return true
}
