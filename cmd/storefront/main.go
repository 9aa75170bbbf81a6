package main

import (
	"context"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hanjan/hanjan-client/config"
	"github.com/hanjan/hanjan-client/internal/api"
	"github.com/hanjan/hanjan-client/internal/cart"
	"github.com/hanjan/hanjan-client/internal/nav"
	"github.com/hanjan/hanjan-client/internal/push"
	"github.com/hanjan/hanjan-client/internal/scheduler"
	"github.com/hanjan/hanjan-client/internal/session"
	"github.com/hanjan/hanjan-client/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logger.Initialize(logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		EnableColor: true,
	})

	logger.Info("Starting hanjan storefront client", map[string]interface{}{
		"api_base_url": cfg.API.BaseURL,
		"log_level":    cfg.Log.Level,
	})

	// Session: pick up an access token from the environment when present
	sess := session.New()
	if token := os.Getenv("ACCESS_TOKEN"); token != "" {
		if err := sess.SetToken(token); err != nil {
			logger.Warn("Ignoring invalid ACCESS_TOKEN", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	// Remote API clients
	client, err := api.NewClient(api.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
	}, sess)
	if err != nil {
		logger.Fatal("Failed to create API client", err)
	}
	cartRemote := api.NewCartRemote(client)
	shopRemote := api.NewShopRemote(client)

	// Cart store
	opts := []cart.Option{cart.WithMaxQuantity(cfg.Cart.MaxQuantity)}
	if cfg.Redis.Enabled && sess.Subject() != "" {
		cache, err := cart.NewRedisSnapshotCache(&cfg.Redis, sess.Subject())
		if err != nil {
			logger.Warn("Snapshot cache unavailable, continuing without it", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			defer cache.Close()
			opts = append(opts, cart.WithSnapshotCache(cache))
		}
	}
	store := cart.NewStore(cartRemote, shopRemote, sess, opts...)

	// Badge consumer: the nav bar's item count, rendered here as a log line
	unsubscribeBadge := store.Subscribe(func() {
		logger.Info("Cart changed", map[string]interface{}{
			"item_count": store.ItemCount(),
			"lines":      len(store.Items()),
		})
	})
	defer unsubscribeBadge()

	// Navigation: every location change re-resolves the view from the URL
	navigator := nav.NewNavigator(url.Values{})
	defer navigator.Close()
	unsubscribeNav := navigator.Subscribe(func(query url.Values) {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.API.Timeout)
		defer cancel()
		state := nav.Resolve(ctx, query, shopRemote)
		logger.Info("View changed", map[string]interface{}{
			"view":   string(state.View),
			"search": state.Search,
		})
	})
	defer unsubscribeNav()

	// Initial cart sync
	ctx, cancel := context.WithTimeout(context.Background(), cfg.API.Timeout)
	if err := store.Init(ctx); err != nil {
		logger.Warn("Initial cart sync failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
	cancel()

	// Server push: refresh when the cart changes on another device
	if cfg.API.PushURL != "" {
		listener := push.NewListener(cfg.API.PushURL, sess, store)
		listener.Start()
		defer listener.Close()
	}

	// Periodic background refresh
	if cfg.Cart.RefreshCron != "" {
		refreshScheduler := scheduler.NewRefreshScheduler(store, cfg.Cart.RefreshCron)
		if err := refreshScheduler.Start(); err != nil {
			logger.Warn("Refresh scheduler not started", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			defer refreshScheduler.Stop()
		}
	}

	// Wait for interrupt signal to shut down
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down storefront client...")

	// Pair shutdown with a best-effort cart clear only when explicitly asked;
	// a plain exit keeps the server-side cart for the next session.
	if os.Getenv("CLEAR_CART_ON_EXIT") == "true" {
		clearCtx, clearCancel := context.WithTimeout(context.Background(), 10*time.Second)
		store.Clear(clearCtx)
		clearCancel()
	}

	logger.Info("Storefront client stopped")
}
