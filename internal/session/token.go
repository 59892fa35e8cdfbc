package session

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// noteTokenExpiry logs when a stored access token is already past its exp
// claim, which predicts the /me/ probe failing. The claims are read without
// signature verification (the client has no key and needs none); this is
// diagnostic only and never short-circuits the rehydration flow. Opaque
// non-JWT tokens are silently skipped.
func (s *Store) noteTokenExpiry(ctx context.Context, token string) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return
	}
	if exp.Before(time.Now()) {
		s.logger.Warn(ctx, "stored access token is expired", "expired_at", exp.Time)
	}
}
