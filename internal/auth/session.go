// internal/auth/session.go
package auth

import (
	"crypto/ed25519"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey

	// tokenTTL is how long issued tokens remain valid; 0 means no exp claim.
	tokenTTL time.Duration
)

const defaultTokenTTL = 72 * time.Hour

// Init generates a fresh ed25519 key pair for this process and reads the
// token lifetime from TOKEN_EXPIRE_TIME ("never" disables expiry).
func Init() error {
	var err error
	publicKey, privateKey, err = ed25519.GenerateKey(nil)
	if err != nil {
		return fmt.Errorf("generate ed25519 key pair: %w", err)
	}
	return parseTokenTTL()
}

// InitFromPath loads ed25519 keys from files instead of generating them,
// so tokens survive restarts.
func InitFromPath(privatePath, publicPath string) error {
	priv, err := os.ReadFile(privatePath)
	if err != nil {
		return fmt.Errorf("read private key: %w", err)
	}
	pub, err := os.ReadFile(publicPath)
	if err != nil {
		return fmt.Errorf("read public key: %w", err)
	}
	privateKey = ed25519.PrivateKey(priv)
	publicKey = ed25519.PublicKey(pub)
	return parseTokenTTL()
}

func parseTokenTTL() error {
	raw := os.Getenv("TOKEN_EXPIRE_TIME")
	switch raw {
	case "":
		tokenTTL = defaultTokenTTL
	case "never", "0":
		tokenTTL = 0
	default:
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("parse TOKEN_EXPIRE_TIME: %w", err)
		}
		tokenTTL = d
	}
	return nil
}

// TokenTTL returns the configured token lifetime.
func TokenTTL() time.Duration { return tokenTTL }

// CreateJWT issues a signed EdDSA token with "sub" = userID.
func CreateJWT(userID string) (string, error) {
	claims := jwt.MapClaims{
		"sub": userID,
		"iat": time.Now().Unix(),
	}
	if tokenTTL > 0 {
		claims["exp"] = time.Now().Add(tokenTTL).Unix()
	}
	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	return token.SignedString(privateKey)
}

// AuthenticateJWT verifies a token string and returns its subject user ID.
func AuthenticateJWT(tokenString string) (string, error) {
	t, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return publicKey, nil
	})
	if err != nil {
		return "", fmt.Errorf("jwt parse error: %w", err)
	}
	if !t.Valid {
		return "", fmt.Errorf("invalid token")
	}

	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid jwt claims")
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", fmt.Errorf("missing sub in jwt")
	}
	return sub, nil
}
