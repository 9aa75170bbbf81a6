package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hanjan/hanjan-client/pkg/logger"
)

// Session holds the marketplace access token and answers the one question
// the rest of the client asks: is there a usable login right now. The client
// never verifies the token signature (it does not hold the server secret);
// it only checks that the token parses and is unexpired. The server remains
// the authority and rejects anything stale.
type Session struct {
	mu      sync.RWMutex
	token   string
	subject string
	expiry  time.Time
}

func New() *Session {
	return &Session{}
}

// SetToken installs a new access token. A token that does not parse as a JWT
// is rejected and the previous state is kept.
func (s *Session) SetToken(token string) error {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		logger.Warn("Rejecting malformed access token", map[string]interface{}{
			"error": err.Error(),
		})
		return fmt.Errorf("invalid access token: %w", err)
	}

	var expiry time.Time
	if claims.ExpiresAt != nil {
		expiry = claims.ExpiresAt.Time
	}

	s.mu.Lock()
	s.token = token
	s.subject = claims.Subject
	s.expiry = expiry
	s.mu.Unlock()

	logger.Info("Session established", map[string]interface{}{
		"subject": claims.Subject,
		"expiry":  expiry,
	})
	return nil
}

// ClearToken drops the session, e.g. on logout.
func (s *Session) ClearToken() {
	s.mu.Lock()
	s.token = ""
	s.subject = ""
	s.expiry = time.Time{}
	s.mu.Unlock()

	logger.Info("Session cleared", nil)
}

// IsLoggedIn reports whether a token is held and not yet expired.
func (s *Session) IsLoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" {
		return false
	}
	if !s.expiry.IsZero() && time.Now().After(s.expiry) {
		return false
	}
	return true
}

// Token returns the held access token, or "" when logged out or expired.
func (s *Session) Token() string {
	if !s.IsLoggedIn() {
		return ""
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Subject returns the token's subject claim, used to scope per-user state
// such as the cart snapshot cache.
func (s *Session) Subject() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.subject
}
