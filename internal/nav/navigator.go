package nav

import (
	"net/url"
	"sync"

	"github.com/google/uuid"

	"github.com/hanjan/hanjan-client/pkg/logger"
)

// Navigator owns the navigation history and makes every location change
// observable to components that do not share a render boundary. It replaces
// the browser pattern of patching the History API: mutations go through
// explicit methods, and every one dispatches the location-change signal to
// all subscribers. Close tears the whole thing down so no subscription leaks
// across remounts.
type Navigator struct {
	mu          sync.RWMutex
	stack       []url.Values
	index       int
	subscribers []navSubscription
	closed      bool
}

type navSubscription struct {
	id uuid.UUID
	fn func(url.Values)
}

// NewNavigator creates a navigator whose initial location is whatever the
// URL encodes at first load.
func NewNavigator(initial url.Values) *Navigator {
	return &Navigator{
		stack: []url.Values{cloneValues(initial)},
	}
}

// Location returns a copy of the current query parameters.
func (n *Navigator) Location() url.Values {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return cloneValues(n.stack[n.index])
}

// Push appends a new location, discarding any forward history, and notifies.
func (n *Navigator) Push(values url.Values) {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.stack = append(n.stack[:n.index+1], cloneValues(values))
	n.index = len(n.stack) - 1
	n.mu.Unlock()

	n.notify()
}

// Replace swaps the current location in place and notifies.
func (n *Navigator) Replace(values url.Values) {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.stack[n.index] = cloneValues(values)
	n.mu.Unlock()

	n.notify()
}

// Back moves one entry towards the oldest location. It reports whether a
// move happened; traversals dispatch the same signal as mutations.
func (n *Navigator) Back() bool {
	n.mu.Lock()
	if n.closed || n.index == 0 {
		n.mu.Unlock()
		return false
	}
	n.index--
	n.mu.Unlock()

	n.notify()
	return true
}

// Forward moves one entry towards the newest location.
func (n *Navigator) Forward() bool {
	n.mu.Lock()
	if n.closed || n.index >= len(n.stack)-1 {
		n.mu.Unlock()
		return false
	}
	n.index++
	n.mu.Unlock()

	n.notify()
	return true
}

// Subscribe registers a callback for every location change and returns its
// disposer.
func (n *Navigator) Subscribe(fn func(url.Values)) (unsubscribe func()) {
	id := uuid.New()

	n.mu.Lock()
	n.subscribers = append(n.subscribers, navSubscription{id: id, fn: fn})
	n.mu.Unlock()

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		for i, sub := range n.subscribers {
			if sub.id == id {
				n.subscribers = append(n.subscribers[:i], n.subscribers[i+1:]...)
				return
			}
		}
	}
}

// Close removes every subscription and rejects further mutations.
func (n *Navigator) Close() {
	n.mu.Lock()
	n.closed = true
	n.subscribers = nil
	n.mu.Unlock()

	logger.Debug("Navigator closed", nil)
}

func (n *Navigator) notify() {
	n.mu.RLock()
	location := cloneValues(n.stack[n.index])
	round := make([]func(url.Values), len(n.subscribers))
	for i, sub := range n.subscribers {
		round[i] = sub.fn
	}
	n.mu.RUnlock()

	for _, fn := range round {
		fn(cloneValues(location))
	}
}

func cloneValues(values url.Values) url.Values {
	out := make(url.Values, len(values))
	for k, vs := range values {
		copied := make([]string, len(vs))
		copy(copied, vs)
		out[k] = copied
	}
	return out
}
