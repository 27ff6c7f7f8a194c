package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultSkew is subtracted from the token's expiry when deciding whether
// it is still usable, so a token is treated as expired slightly early
// rather than failing mid-request.
const DefaultSkew = 5 * time.Second

// ExpiryTime extracts the exp claim from a bearer token without verifying
// the signature; signature checks are the backend's job on every request.
// Returns false for absent, malformed or exp-less tokens.
func ExpiryTime(token string) (time.Time, bool) {
	if token == "" {
		return time.Time{}, false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// IsExpired reports whether the token is absent, undecodable or within
// skew of its expiry instant.
func IsExpired(token string, skew time.Duration) bool {
	return isExpiredAt(token, skew, time.Now())
}

func isExpiredAt(token string, skew time.Duration, now time.Time) bool {
	exp, ok := ExpiryTime(token)
	if !ok {
		return true
	}
	return !now.Before(exp.Add(-skew))
}
