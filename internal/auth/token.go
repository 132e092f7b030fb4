package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Claims defines the structure of the admin capability token claims.
type Claims struct {
	IsAdmin bool `json:"is_admin"`
	jwt.RegisteredClaims
}

// GenerateAdminToken creates a short-lived signed token granting admin
// access. The token is obtained by exchanging the admin key once, instead of
// passing the shared secret on every request.
func GenerateAdminToken(secretKey string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		IsAdmin: true,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   "admin",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(secretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign admin token: %w", err)
	}
	return tokenString, nil
}

// ValidateAdminToken verifies a token string and returns the claims if valid.
func ValidateAdminToken(tokenString, secretKey string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secretKey), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse admin token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid admin token")
	}
	return claims, nil
}

// HashKey generates a bcrypt hash of an admin key, for provisioning
// ADMIN_KEY_HASH.
func HashKey(key string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash key: %w", err)
	}
	return string(hashedBytes), nil
}

// CheckKeyHash compares a presented admin key with the stored bcrypt hash.
func CheckKeyHash(key, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(key))
	return err == nil
}
