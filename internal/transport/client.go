package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/cxde-rxnin/carekeep/internal/domain"
	"github.com/cxde-rxnin/carekeep/internal/requestid"
)

const defaultTimeout = 30 * time.Second

// SessionStore is the slice of the session store the client needs:
// reading the bearer token before each request and clearing the slot
// when the API answers 401.
type SessionStore interface {
	Read() domain.Session
	ClearAuth()
}

// Client is the authenticated HTTP transport for the CareKeep API.
// Every request runs through the pre hooks (bearer attach, request ID)
// and every response through the post hooks (instrumentation, 401
// interception) before the caller sees it.
//
// The client imposes no ordering or retries: requests resolve in I/O
// completion order and a failed call is the caller's to retry.
type Client struct {
	base   string
	http   *http.Client
	logger *slog.Logger

	pre  []RequestHook
	post []ResponseHook
}

// New builds the process-wide API client. onUnauthorized is the CLI
// analog of the login redirect; it runs after a 401 has cleared the
// session and before the error reaches the caller.
func New(baseURL string, sess SessionStore, onUnauthorized func(), logger *slog.Logger) *Client {
	// Cookie jar gives credentials-included semantics when the API sets
	// session cookies alongside bearer tokens.
	jar, _ := cookiejar.New(nil)

	c := &Client{
		base:   strings.TrimRight(baseURL, "/"),
		http:   &http.Client{Timeout: defaultTimeout, Jar: jar},
		logger: logger.With("component", "transport"),
	}
	c.pre = []RequestHook{BearerAuth(sess), RequestID()}
	c.post = []ResponseHook{Instrument(), UnauthorizedIntercept(sess, onUnauthorized, c.logger)}
	return c
}

// Use appends a request hook. Hooks run in registration order.
func (c *Client) Use(h RequestHook) {
	c.pre = append(c.pre, h)
}

// UseResponse appends a response hook.
func (c *Client) UseResponse(h ResponseHook) {
	c.post = append(c.post, h)
}

// Ping probes API reachability with the cheapest authenticated call.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/metrics", nil, nil)
}

// do issues a JSON request and decodes a JSON response into out when
// out is non-nil. body may be nil for bodyless methods.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(raw)
	}

	req, err := c.newRequest(ctx, method, path, "application/json", rdr)
	if err != nil {
		return err
	}

	resp, err := c.roundTrip(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return c.apiError(resp)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// Blob is a binary payload fetched from the API, with the filename the
// server suggested via Content-Disposition, if any.
type Blob struct {
	Name        string
	ContentType string
	Data        []byte
}

// blob fetches a binary resource (documents, backup artifacts).
func (c *Client) blob(ctx context.Context, path string) (*Blob, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, "", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.roundTrip(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, c.apiError(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}

	b := &Blob{
		ContentType: resp.Header.Get("Content-Type"),
		Data:        data,
	}
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		b.Name = params["filename"]
	}
	return b, nil
}

// upload sends a multipart form with the given text fields plus one
// file part. Empty field values are omitted so the server applies its
// own defaults (e.g. stored document name).
func (c *Client) upload(ctx context.Context, path string, fields map[string]string, fileField, fileName string, file io.Reader, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for k, v := range fields {
		if v == "" {
			continue
		}
		if err := w.WriteField(k, v); err != nil {
			return fmt.Errorf("write form field %s: %w", k, err)
		}
	}

	fw, err := w.CreateFormFile(fileField, fileName)
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(fw, file); err != nil {
		return fmt.Errorf("read upload: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finish form: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, w.FormDataContentType(), &buf)
	if err != nil {
		return err
	}

	resp, err := c.roundTrip(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return c.apiError(resp)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path, contentType string, body io.Reader) (*http.Request, error) {
	ctx, _ = requestid.Ensure(ctx)

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	for _, h := range c.pre {
		h(req)
	}
	return req, nil
}

func (c *Client) roundTrip(req *http.Request) (*http.Response, error) {
	// Context-aware call so the correlation handler can stamp the same
	// ID that went out as X-Request-ID.
	c.logger.DebugContext(req.Context(), "api request",
		slog.String("method", req.Method), slog.String("path", req.URL.Path))

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		// No response at all: surface as a generic transport failure.
		return nil, fmt.Errorf("carekeep api unreachable: %w", err)
	}

	for _, h := range c.post {
		h(resp, time.Since(start))
	}
	return resp, nil
}

// apiError drains the error envelope. The server's message wins when
// present; callers get a stable fallback otherwise.
func (c *Client) apiError(resp *http.Response) error {
	msg := errGenericServer

	var eb errorBody
	if err := json.NewDecoder(resp.Body).Decode(&eb); err == nil && eb.Error != "" {
		msg = eb.Error
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}
