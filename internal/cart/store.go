package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/hanjan/hanjan-client/internal/api"
	"github.com/hanjan/hanjan-client/pkg/logger"
)

// DefaultMaxQuantity is the per-line quantity ceiling applied when the store
// is constructed without an explicit one.
const DefaultMaxQuantity = 10

// AuthGate reports whether the current session is usable. The store fails
// mutators closed and clears its snapshot on refresh when it returns false.
type AuthGate interface {
	IsLoggedIn() bool
}

// Store holds the authoritative client-side view of the server cart and
// broadcasts every change to its subscribers. It is constructed once at
// bootstrap and shared by reference; all methods are safe for concurrent use.
type Store struct {
	remote      api.CartRemote
	products    api.ProductResolver
	auth        AuthGate
	cache       SnapshotCache
	maxQuantity int

	// refreshing is the single-flight guard: a refresh already in progress
	// causes new Refresh calls to return immediately.
	refreshing atomic.Bool

	mu          sync.RWMutex
	lines       []Line
	subscribers []subscription
}

type subscription struct {
	id uuid.UUID
	fn func()
}

// Option configures a Store at construction time.
type Option func(*Store)

// WithMaxQuantity overrides the per-line quantity ceiling.
func WithMaxQuantity(max int) Option {
	return func(s *Store) {
		if max > 0 {
			s.maxQuantity = max
		}
	}
}

// WithSnapshotCache attaches an advisory snapshot cache. The cache warms the
// snapshot before the first refresh and is updated after every successful
// refresh; it never substitutes for a refresh.
func WithSnapshotCache(cache SnapshotCache) Option {
	return func(s *Store) {
		s.cache = cache
	}
}

func NewStore(remote api.CartRemote, products api.ProductResolver, auth AuthGate, opts ...Option) *Store {
	s := &Store{
		remote:      remote,
		products:    products,
		auth:        auth,
		maxQuantity: DefaultMaxQuantity,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers a callback invoked after every state change and returns
// its disposer. Subscriptions from the same caller are independent; a
// subscriber may dispose itself from inside its own callback without
// affecting the other subscribers of that notification round.
func (s *Store) Subscribe(fn func()) (unsubscribe func()) {
	id := uuid.New()

	s.mu.Lock()
	s.subscribers = append(s.subscribers, subscription{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subscribers {
			if sub.id == id {
				s.subscribers = append(s.subscribers[:i], s.subscribers[i+1:]...)
				return
			}
		}
	}
}

// Items returns a copy of the current snapshot. It never touches the network.
func (s *Store) Items() []Line {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyLines(s.lines)
}

// ItemCount returns the sum of quantities across all lines.
func (s *Store) ItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, line := range s.lines {
		count += line.Quantity
	}
	return count
}

// Init triggers exactly one refresh if the snapshot is currently empty, so
// independently mounting consumers can all call it without causing redundant
// fetches. When a snapshot cache is attached, the cached lines are shown
// while the authoritative refresh runs.
func (s *Store) Init(ctx context.Context) error {
	s.mu.RLock()
	empty := len(s.lines) == 0
	s.mu.RUnlock()
	if !empty {
		return nil
	}

	if s.cache != nil && s.auth.IsLoggedIn() {
		if cached, err := s.cache.Load(ctx); err != nil {
			logger.Warn("Failed to warm cart from snapshot cache", map[string]interface{}{
				"error": err.Error(),
			})
		} else if len(cached) > 0 {
			s.replace(cached)
			s.notify()
		}
	}

	return s.Refresh(ctx)
}

// Refresh re-reads the authoritative cart from the server. When the session
// is not usable it clears local state instead, so the UI reflects "empty"
// rather than a previous session's cart. Overlapping calls return
// immediately without issuing a second fetch.
func (s *Store) Refresh(ctx context.Context) error {
	if !s.refreshing.CompareAndSwap(false, true) {
		logger.Debug("Cart refresh already in flight, skipping", nil)
		return nil
	}
	defer s.refreshing.Store(false)

	if !s.auth.IsLoggedIn() {
		s.replace(nil)
		s.notify()
		return nil
	}

	remoteLines, err := s.remote.FetchCart(ctx)
	if err != nil {
		logger.Error("Failed to fetch cart", err, nil)
		return fmt.Errorf("failed to refresh cart: %w", err)
	}

	lines := s.resolveLines(ctx, remoteLines)
	s.replace(lines)

	if s.cache != nil {
		if err := s.cache.Save(ctx, lines); err != nil {
			logger.Warn("Failed to persist cart snapshot", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	s.notify()

	logger.Debug("Cart refreshed", map[string]interface{}{
		"lines":   len(lines),
		"dropped": len(remoteLines) - len(lines),
	})
	return nil
}

// resolveLines resolves every server line's product snapshot concurrently and
// assembles the result in server order, dropping lines whose product cannot
// be resolved.
func (s *Store) resolveLines(ctx context.Context, remoteLines []api.RemoteCartLine) []Line {
	resolved := make([]*Line, len(remoteLines))

	var g errgroup.Group
	for i, rl := range remoteLines {
		i, rl := i, rl
		g.Go(func() error {
			product, err := s.products.FetchProduct(ctx, rl.ProductID)
			if err != nil {
				logger.Warn("Dropping cart line: product unresolved", map[string]interface{}{
					"cart_id":    rl.CartID,
					"product_id": rl.ProductID,
					"error":      err.Error(),
				})
				return nil
			}
			resolved[i] = &Line{
				CartID:           rl.CartID,
				Product:          *product,
				SelectedOptionID: rl.ProductOptionID,
				Quantity:         rl.Quantity,
				MaxQuantity:      s.maxQuantity,
			}
			return nil
		})
	}
	g.Wait()

	lines := make([]Line, 0, len(remoteLines))
	for _, line := range resolved {
		if line != nil {
			lines = append(lines, *line)
		}
	}
	return lines
}

// Add puts quantity units of a product into the cart. It fails closed without
// network I/O when the session is not usable. A conflict response (the line
// already exists) falls back to updating the existing line's quantity. The
// call always concludes with a refresh so consumers see server truth.
func (s *Store) Add(ctx context.Context, productID uint, productOptionID *uint, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}
	if !s.auth.IsLoggedIn() {
		return ErrNotAuthenticated
	}
	if quantity > s.maxQuantity {
		return ErrQuantityLimit
	}

	logger.Info("Adding item to cart", map[string]interface{}{
		"product_id": productID,
		"quantity":   quantity,
	})

	err := s.remote.AddItem(ctx, productID, productOptionID, quantity)
	if errors.Is(err, api.ErrConflict) {
		err = s.addToExistingLine(ctx, productID, productOptionID, quantity)
	}
	if err != nil {
		logger.Error("Failed to add item to cart", err, map[string]interface{}{
			"product_id": productID,
		})
		return fmt.Errorf("failed to add to cart: %w", err)
	}

	return s.Refresh(ctx)
}

// addToExistingLine handles the add-conflict fallback: re-read the remote
// cart, locate the matching line and update its quantity instead of adding a
// duplicate.
func (s *Store) addToExistingLine(ctx context.Context, productID uint, productOptionID *uint, quantity int) error {
	remoteLines, err := s.remote.FetchCart(ctx)
	if err != nil {
		return err
	}

	for _, rl := range remoteLines {
		if rl.ProductID != productID || !optionIDEqual(rl.ProductOptionID, productOptionID) {
			continue
		}
		newQuantity := rl.Quantity + quantity
		if newQuantity > s.maxQuantity {
			return ErrQuantityLimit
		}
		logger.Debug("Cart line exists, updating quantity instead", map[string]interface{}{
			"cart_id": rl.CartID,
			"old_qty": rl.Quantity,
			"new_qty": newQuantity,
		})
		return s.remote.SetQuantity(ctx, rl.CartID, newQuantity)
	}
	return ErrLineNotFound
}

// SetQuantity updates a line's quantity on the server then refreshes. A
// quantity below 1 removes the line instead; the snapshot is never mutated
// before server confirmation.
func (s *Store) SetQuantity(ctx context.Context, cartID uint, quantity int) error {
	if !s.auth.IsLoggedIn() {
		return ErrNotAuthenticated
	}
	if quantity < 1 {
		return s.Remove(ctx, cartID)
	}
	if quantity > s.maxQuantity {
		return ErrQuantityLimit
	}

	if err := s.remote.SetQuantity(ctx, cartID, quantity); err != nil {
		logger.Error("Failed to update cart line", err, map[string]interface{}{
			"cart_id":  cartID,
			"quantity": quantity,
		})
		return fmt.Errorf("failed to update cart line: %w", err)
	}

	return s.Refresh(ctx)
}

// Remove deletes a line on the server then refreshes.
func (s *Store) Remove(ctx context.Context, cartID uint) error {
	if !s.auth.IsLoggedIn() {
		return ErrNotAuthenticated
	}

	if err := s.remote.RemoveItem(ctx, cartID); err != nil {
		logger.Error("Failed to remove cart line", err, map[string]interface{}{
			"cart_id": cartID,
		})
		return fmt.Errorf("failed to remove cart line: %w", err)
	}

	return s.Refresh(ctx)
}

// Clear best-effort deletes every remote line, then unconditionally resets
// local state and notifies. Remote failures are logged, not surfaced: clear
// is typically paired with logout, where the server-side cart becoming
// unreachable afterwards is expected.
func (s *Store) Clear(ctx context.Context) {
	lines := s.Items()

	if s.auth.IsLoggedIn() {
		failed := 0
		for _, line := range lines {
			if err := s.remote.RemoveItem(ctx, line.CartID); err != nil {
				failed++
				logger.Warn("Failed to delete cart line during clear", map[string]interface{}{
					"cart_id": line.CartID,
					"error":   err.Error(),
				})
			}
		}
		if failed > 0 {
			logger.Warn("Cart clear left remote lines behind", map[string]interface{}{
				"failed": failed,
				"total":  len(lines),
			})
		}
	}

	if s.cache != nil {
		if err := s.cache.Clear(ctx); err != nil {
			logger.Warn("Failed to clear cart snapshot cache", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	s.replace(nil)
	s.notify()
}

// replace swaps the snapshot atomically.
func (s *Store) replace(lines []Line) {
	s.mu.Lock()
	s.lines = lines
	s.mu.Unlock()
}

// notify invokes every subscriber registered at the start of the round, in
// registration order. The registry is snapshotted first so a subscriber
// unsubscribing itself mid-round cannot skip or double-invoke the others.
func (s *Store) notify() {
	s.mu.RLock()
	round := make([]func(), len(s.subscribers))
	for i, sub := range s.subscribers {
		round[i] = sub.fn
	}
	s.mu.RUnlock()

	for _, fn := range round {
		fn()
	}
}

func copyLines(lines []Line) []Line {
	out := make([]Line, len(lines))
	for i, line := range lines {
		if line.SelectedOptionID != nil {
			id := *line.SelectedOptionID
			line.SelectedOptionID = &id
		}
		out[i] = line
	}
	return out
}

func optionIDEqual(a, b *uint) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
