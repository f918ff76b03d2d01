package applemusic

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// Apple accepts developer tokens up to six months old; short-lived
	// tokens are regenerated locally so a leak ages out quickly.
	tokenLifetime      = 12 * time.Hour
	tokenRefreshLeeway = time.Hour
)

// ErrPrivateKeyMissing is returned when the configured .p8 key file cannot be read.
var ErrPrivateKeyMissing = errors.New("apple music private key not readable")

// TokenManager signs and caches the ES256 developer token used on every
// Apple Music catalog request.
type TokenManager struct {
	keyID  string
	teamID string
	key    *ecdsa.PrivateKey

	mu        sync.Mutex
	token     string
	expiresAt time.Time

	now func() time.Time
}

// NewTokenManager loads the ECDSA private key from the .p8 file and
// prepares a manager. The key is read once at construction.
func NewTokenManager(keyID, teamID, privateKeyPath string) (*TokenManager, error) {
	pemBytes, err := os.ReadFile(privateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPrivateKeyMissing, err)
	}
	key, err := jwt.ParseECPrivateKeyFromPEM(pemBytes)
	if err != nil {
		return nil, fmt.Errorf("parse apple music private key: %w", err)
	}
	return &TokenManager{
		keyID:  keyID,
		teamID: teamID,
		key:    key,
		now:    time.Now,
	}, nil
}

// Token returns a current developer token, re-signing when the cached one
// is within the refresh leeway of expiry.
func (m *TokenManager) Token() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.token != "" && m.expiresAt.Sub(m.now()) > tokenRefreshLeeway {
		return m.token, nil
	}

	now := m.now()
	expiresAt := now.Add(tokenLifetime)

	claims := jwt.MapClaims{
		"iss": m.teamID,
		"iat": jwt.NewNumericDate(now),
		"exp": jwt.NewNumericDate(expiresAt),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodES256, claims)
	token.Header["kid"] = m.keyID

	signed, err := token.SignedString(m.key)
	if err != nil {
		return "", fmt.Errorf("sign apple music token: %w", err)
	}

	m.token = signed
	m.expiresAt = expiresAt
	return signed, nil
}
