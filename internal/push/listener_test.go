package push

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRefresher struct {
	mu       sync.Mutex
	calls    int
	notifyCh chan struct{}
}

func (r *recordingRefresher) Refresh(ctx context.Context) error {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	select {
	case r.notifyCh <- struct{}{}:
	default:
	}
	return nil
}

func (r *recordingRefresher) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

type staticToken string

func (t staticToken) Token() string { return string(t) }

func setupPushTest(t *testing.T, messages []string) (*Listener, *recordingRefresher, chan string) {
	t.Helper()

	upgrader := websocket.Upgrader{}
	gotToken := make(chan string, 1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case gotToken <- r.URL.Query().Get("token"):
		default:
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		for _, msg := range messages {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return
			}
		}
		// Keep the connection open until the client goes away
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(server.Close)

	endpoint := "ws" + strings.TrimPrefix(server.URL, "http")
	store := &recordingRefresher{notifyCh: make(chan struct{}, 16)}
	listener := NewListener(endpoint, staticToken("push-token"), store)
	t.Cleanup(listener.Close)

	return listener, store, gotToken
}

func TestListener_CartUpdatedTriggersRefresh(t *testing.T) {
	listener, store, gotToken := setupPushTest(t, []string{
		`{"type":"cart.updated"}`,
	})

	listener.Start()

	select {
	case <-store.notifyCh:
	case <-time.After(5 * time.Second):
		t.Fatal("refresh was not triggered")
	}
	assert.Equal(t, 1, store.count())

	// Token rides the query string, the way the marketplace authenticates
	// websocket clients
	assert.Equal(t, "push-token", <-gotToken)
}

func TestListener_IgnoresOtherEvents(t *testing.T) {
	listener, store, _ := setupPushTest(t, []string{
		`{"type":"chat.message"}`,
		`not json at all`,
		`{"type":"cart.updated"}`,
	})

	listener.Start()

	select {
	case <-store.notifyCh:
	case <-time.After(5 * time.Second):
		t.Fatal("refresh was not triggered")
	}
	// Only the cart.updated event produced a refresh
	assert.Equal(t, 1, store.count())
}

func TestListener_ReconnectsAfterDroppedConnection(t *testing.T) {
	upgrader := websocket.Upgrader{}
	var (
		mu    sync.Mutex
		conns int
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		mu.Lock()
		conns++
		first := conns == 1
		mu.Unlock()

		if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"cart.updated"}`)); err != nil {
			return
		}
		if first {
			// Drop the first connection right after delivering the event
			return
		}
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(server.Close)

	endpoint := "ws" + strings.TrimPrefix(server.URL, "http")
	store := &recordingRefresher{notifyCh: make(chan struct{}, 16)}
	listener := NewListener(endpoint, staticToken(""), store)
	t.Cleanup(listener.Close)

	listener.Start()

	// One refresh from the first connection, one from the re-established one
	for i := 0; i < 2; i++ {
		select {
		case <-store.notifyCh:
		case <-time.After(10 * time.Second):
			t.Fatalf("refresh %d was not triggered", i+1)
		}
	}

	mu.Lock()
	total := conns
	mu.Unlock()
	assert.GreaterOrEqual(t, total, 2)
	assert.GreaterOrEqual(t, store.count(), 2)
}

func TestListener_CloseStopsReadLoop(t *testing.T) {
	listener, _, _ := setupPushTest(t, nil)

	listener.Start()
	time.Sleep(100 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		listener.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Close did not return")
	}
}

func TestListener_CloseIsIdempotent(t *testing.T) {
	listener := NewListener("ws://127.0.0.1:1/events", staticToken(""), &recordingRefresher{notifyCh: make(chan struct{}, 1)})
	listener.Start()

	require.NotPanics(t, func() {
		listener.Close()
		listener.Close()
	})
}
