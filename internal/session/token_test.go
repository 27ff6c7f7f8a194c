package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testSigningKey = []byte("test-signing-key")

func makeToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "operator",
		"exp": exp.Unix(),
	})
	signed, err := token.SignedString(testSigningKey)
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}
	return signed
}

func makeTokenWithoutExp(t *testing.T) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "operator",
	})
	signed, err := token.SignedString(testSigningKey)
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}
	return signed
}

func TestExpiryTime(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	got, ok := ExpiryTime(makeToken(t, exp))
	if !ok {
		t.Fatal("ExpiryTime should decode a well-formed token")
	}
	if !got.Equal(exp) {
		t.Errorf("ExpiryTime = %v, want %v", got, exp)
	}

	if _, ok := ExpiryTime(""); ok {
		t.Error("ExpiryTime should fail for an absent token")
	}
	if _, ok := ExpiryTime("not-a-jwt"); ok {
		t.Error("ExpiryTime should fail for a malformed token")
	}
	if _, ok := ExpiryTime(makeTokenWithoutExp(t)); ok {
		t.Error("ExpiryTime should fail for a token without exp")
	}
}

func TestIsExpiredPastToken(t *testing.T) {
	token := makeToken(t, time.Now().Add(-time.Minute))
	if !IsExpired(token, DefaultSkew) {
		t.Error("a token expired in the past must report expired")
	}
}

func TestIsExpiredInvalidTokens(t *testing.T) {
	for _, token := range []string{"", "garbage", makeTokenWithoutExp(t)} {
		if !IsExpired(token, DefaultSkew) {
			t.Errorf("token %q should be treated as expired", token)
		}
	}
}

func TestIsExpiredSkewBoundary(t *testing.T) {
	skew := 5 * time.Second
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := makeToken(t, exp)

	before := exp.Add(-skew).Add(-time.Millisecond)
	if isExpiredAt(token, skew, before) {
		t.Error("token must still be valid 1ms before the skewed expiry")
	}

	after := exp.Add(-skew).Add(time.Millisecond)
	if !isExpiredAt(token, skew, after) {
		t.Error("token must be expired 1ms after the skewed expiry")
	}

	if !isExpiredAt(token, skew, exp.Add(-skew)) {
		t.Error("token must be expired exactly at the skewed expiry instant")
	}
}
