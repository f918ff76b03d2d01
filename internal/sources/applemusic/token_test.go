package applemusic

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func writeTestKey(t *testing.T) (string, *ecdsa.PrivateKey) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	der, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		t.Fatalf("marshal key: %v", err)
	}
	path := filepath.Join(t.TempDir(), "authkey.p8")
	encoded := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: der})
	if err := os.WriteFile(path, encoded, 0o600); err != nil {
		t.Fatalf("write key: %v", err)
	}
	return path, key
}

func TestTokenManagerSignsES256(t *testing.T) {
	keyPath, key := writeTestKey(t)

	mgr, err := NewTokenManager("KEY123", "TEAM456", keyPath)
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}

	signed, err := mgr.Token()
	if err != nil {
		t.Fatalf("Token: %v", err)
	}

	parsed, err := jwt.Parse(signed, func(token *jwt.Token) (any, error) {
		return &key.PublicKey, nil
	}, jwt.WithValidMethods([]string{"ES256"}))
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if kid, _ := parsed.Header["kid"].(string); kid != "KEY123" {
		t.Fatalf("unexpected kid header: %v", parsed.Header)
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatalf("unexpected claims type %T", parsed.Claims)
	}
	if iss, _ := claims["iss"].(string); iss != "TEAM456" {
		t.Fatalf("unexpected issuer: %v", claims)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		t.Fatalf("expiration claim: %v", err)
	}
	lifetime := time.Until(exp.Time)
	if lifetime < 11*time.Hour || lifetime > 13*time.Hour {
		t.Fatalf("unexpected token lifetime %v", lifetime)
	}
}

func TestTokenManagerCachesUntilLeeway(t *testing.T) {
	keyPath, _ := writeTestKey(t)

	mgr, err := NewTokenManager("KEY123", "TEAM456", keyPath)
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}

	current := time.Now()
	mgr.now = func() time.Time { return current }

	first, err := mgr.Token()
	if err != nil {
		t.Fatalf("Token: %v", err)
	}

	// Well before expiry the cached token is reused.
	current = current.Add(2 * time.Hour)
	second, err := mgr.Token()
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if second != first {
		t.Fatal("expected cached token before leeway")
	}

	// Inside the refresh leeway a new token is signed.
	current = current.Add(9*time.Hour + 30*time.Minute)
	third, err := mgr.Token()
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if third == first {
		t.Fatal("expected fresh token inside refresh leeway")
	}
}

func TestNewTokenManagerMissingKey(t *testing.T) {
	_, err := NewTokenManager("KEY123", "TEAM456", filepath.Join(t.TempDir(), "absent.p8"))
	if err == nil {
		t.Fatal("expected error for missing key file")
	}
}
