package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/cxde-rxnin/carekeep/internal/domain"
	"github.com/cxde-rxnin/carekeep/internal/metrics"
)

// Event names pushed by the server, plus the synthetic error event the
// channel emits locally when the connection fails.
const (
	EventActivityUpdate = "activity_update"
	EventError          = "error"
)

// Handler receives the raw payload of a named event. Handlers run on
// the channel's reader goroutine and must not block.
type Handler func(data json.RawMessage)

// SessionReader supplies the bearer token for connection-time auth.
type SessionReader interface {
	Read() domain.Session
}

// Channel is the client side of the realtime socket. It holds at most
// one underlying connection; Connect while connected is a no-op, so
// remounting views cannot leak duplicate sockets. Rotating the token
// requires an explicit Disconnect followed by Connect.
//
// The channel never reconnects on its own; the owning view decides
// when to retry (the dashboard uses a fixed delay).
type Channel struct {
	endpoint string
	sess     SessionReader
	logger   *slog.Logger

	mu       sync.Mutex
	conn     *websocket.Conn
	done     chan struct{}
	nextID   int
	handlers map[string]map[int]Handler
}

func New(endpoint string, sess SessionReader, logger *slog.Logger) *Channel {
	return &Channel{
		endpoint: endpoint,
		sess:     sess,
		logger:   logger.With("component", "realtime"),
		handlers: make(map[string]map[int]Handler),
	}
}

// Connect opens the socket authenticated with the session's current
// token. Connection failures are logged and delivered to error-event
// handlers rather than returned; the channel stays reconnectable.
func (c *Channel) Connect(ctx context.Context) {
	c.connect(ctx, c.sess.Read().Token)
}

// ConnectWithToken is Connect with an explicit token, which takes
// precedence over the session store's.
func (c *Channel) ConnectWithToken(ctx context.Context, token string) {
	c.connect(ctx, token)
}

func (c *Channel) connect(ctx context.Context, token string) {
	c.mu.Lock()
	if c.conn != nil {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	target, err := wsURL(c.endpoint, token)
	if err != nil {
		c.fail("invalid realtime endpoint", err)
		return
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, target, nil)
	if err != nil {
		c.fail("realtime connect failed", err)
		return
	}

	c.mu.Lock()
	// A concurrent connect may have won the race.
	if c.conn != nil {
		c.mu.Unlock()
		conn.Close()
		return
	}
	c.conn = conn
	c.done = make(chan struct{})
	done := c.done
	c.mu.Unlock()

	c.logger.Info("realtime connected")
	metrics.RealtimeConnectsTotal.Inc()

	go c.readLoop(conn, done)
}

// Subscription identifies one registered handler so it can be removed
// without comparing funcs.
type Subscription struct {
	ch    *Channel
	event string
	id    int
}

// Cancel removes just this handler.
func (s *Subscription) Cancel() {
	s.ch.mu.Lock()
	defer s.ch.mu.Unlock()
	if hs, ok := s.ch.handlers[s.event]; ok {
		delete(hs, s.id)
		if len(hs) == 0 {
			delete(s.ch.handlers, s.event)
		}
	}
}

// On registers handler for the named event and connects lazily when no
// socket exists yet. Lazy connect is a convenience carried over from
// the web client, not a requirement; callers that care about the
// token or the context should Connect explicitly first.
func (c *Channel) On(event string, handler Handler) *Subscription {
	c.mu.Lock()
	if c.handlers[event] == nil {
		c.handlers[event] = make(map[int]Handler)
	}
	c.nextID++
	id := c.nextID
	c.handlers[event][id] = handler
	connected := c.conn != nil
	c.mu.Unlock()

	if !connected {
		c.Connect(context.Background())
	}
	return &Subscription{ch: c, event: event, id: id}
}

// Off removes every handler registered for the event.
func (c *Channel) Off(event string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.handlers, event)
}

// Disconnect closes and discards the socket and drops all
// subscriptions, which live only as long as the connection. Safe to
// call when already disconnected.
func (c *Channel) Disconnect() {
	c.mu.Lock()
	conn := c.conn
	done := c.done
	c.conn = nil
	c.done = nil
	c.handlers = make(map[string]map[int]Handler)
	c.mu.Unlock()

	if conn == nil {
		return
	}
	close(done)
	conn.Close()
	c.logger.Info("realtime disconnected")
}

// envelope is the wire frame: an event name plus its payload.
type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func (c *Channel) readLoop(conn *websocket.Conn, done chan struct{}) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-done:
				// Deliberate Disconnect; nothing to report.
			default:
				c.dropConn(conn)
				c.fail("realtime read failed", err)
			}
			return
		}

		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			c.logger.Warn("realtime frame not understood", "error", err)
			continue
		}

		metrics.RealtimeEventsTotal.WithLabelValues(env.Type).Inc()
		c.dispatch(env.Type, env.Data)
	}
}

// dropConn clears c.conn if it still points at the dead connection.
func (c *Channel) dropConn(conn *websocket.Conn) {
	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
		c.done = nil
	}
	c.mu.Unlock()
	conn.Close()
}

func (c *Channel) dispatch(event string, data json.RawMessage) {
	c.mu.Lock()
	hs := make([]Handler, 0, len(c.handlers[event]))
	for _, h := range c.handlers[event] {
		hs = append(hs, h)
	}
	c.mu.Unlock()

	for _, h := range hs {
		h(data)
	}
}

// fail logs a connection-level error and reports it through the error
// event instead of returning it.
func (c *Channel) fail(msg string, err error) {
	c.logger.Error(msg, "error", err)
	payload, _ := json.Marshal(map[string]string{"message": err.Error()})
	c.dispatch(EventError, payload)
}

// wsURL rewrites the configured endpoint to a ws scheme and appends
// the token as connection-time auth metadata.
func wsURL(endpoint, token string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	if token != "" {
		q := u.Query()
		q.Set("token", token)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}
