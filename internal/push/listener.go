package push

import (
	"context"
	"encoding/json"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/hanjan/hanjan-client/internal/api"
	"github.com/hanjan/hanjan-client/pkg/logger"
)

// Refresher is the slice of the cart store the listener drives.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Event is a server push message.
type Event struct {
	Type string `json:"type"`
}

const (
	eventCartUpdated = "cart.updated"

	initialBackoff = 100 * time.Millisecond
	maxBackoff     = 30 * time.Second
	refreshTimeout = 10 * time.Second

	// A connection that survives this long resets the backoff; anything
	// shorter counts as a failure so a server that accepts and immediately
	// closes cannot drive a tight redial loop.
	sustainedConnection = 30 * time.Second
)

// Listener keeps a websocket connection to the marketplace push endpoint and
// refreshes the cart store whenever the server reports a cart change on
// another device or session.
type Listener struct {
	endpoint string
	tokens   api.TokenSource
	store    Refresher

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

func NewListener(endpoint string, tokens api.TokenSource, store Refresher) *Listener {
	return &Listener{
		endpoint: endpoint,
		tokens:   tokens,
		store:    store,
		done:     make(chan struct{}),
	}
}

// Start launches the connect/read loop. It returns immediately; Close stops
// the loop.
func (l *Listener) Start() {
	l.wg.Add(1)
	go l.run()
}

// Close stops the listener and waits for the read loop to exit.
func (l *Listener) Close() {
	l.closeOnce.Do(func() {
		close(l.done)
	})
	l.wg.Wait()
}

func (l *Listener) run() {
	defer l.wg.Done()

	backoff := initialBackoff
	for {
		select {
		case <-l.done:
			return
		default:
		}

		conn, err := l.dial()
		if err != nil {
			logger.Warn("Push connection failed, retrying", map[string]interface{}{
				"endpoint": l.endpoint,
				"backoff":  backoff.String(),
				"error":    err.Error(),
			})
		} else {
			logger.Info("Push connection established", map[string]interface{}{
				"endpoint": l.endpoint,
			})
			start := time.Now()
			l.readLoop(conn)
			if time.Since(start) >= sustainedConnection {
				backoff = initialBackoff
			}
		}

		// Both dial failures and dropped connections wait before the next
		// attempt.
		select {
		case <-l.done:
			return
		case <-time.After(backoff):
		}
		if backoff *= 2; backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

// dial connects with the token in the query string, which is how the
// marketplace authenticates websocket clients.
func (l *Listener) dial() (*websocket.Conn, error) {
	endpoint := l.endpoint
	if token := l.tokens.Token(); token != "" {
		u, err := url.Parse(endpoint)
		if err != nil {
			return nil, err
		}
		q := u.Query()
		q.Set("token", token)
		u.RawQuery = q.Encode()
		endpoint = u.String()
	}

	conn, _, err := websocket.DefaultDialer.Dial(endpoint, nil)
	return conn, err
}

func (l *Listener) readLoop(conn *websocket.Conn) {
	defer conn.Close()

	// Unblock ReadMessage when Close is called.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-l.done:
			conn.Close()
		case <-stop:
		}
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-l.done:
			default:
				logger.Warn("Push connection lost", map[string]interface{}{
					"error": err.Error(),
				})
			}
			return
		}

		var event Event
		if err := json.Unmarshal(message, &event); err != nil {
			logger.Warn("Ignoring malformed push event", map[string]interface{}{
				"error": err.Error(),
			})
			continue
		}

		if event.Type == eventCartUpdated {
			ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
			if err := l.store.Refresh(ctx); err != nil {
				logger.Error("Push-triggered cart refresh failed", err, nil)
			}
			cancel()
		}
	}
}
