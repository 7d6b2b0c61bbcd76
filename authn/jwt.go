package authn

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const TokenExpiry = 24 * time.Hour

var ErrInvalidToken = errors.New("invalid token")

// SecretFunc supplies the HS256 signing secret, replaceable in tests.
var SecretFunc = secretFromEnv

func secretFromEnv() ([]byte, error) {
	secret := os.Getenv("AUTH_SECRET")
	if secret == "" {
		return nil, errors.New("environment variable AUTH_SECRET is not set")
	}
	return []byte(secret), nil
}

// SignToken issues a bearer token whose subject is the username.
func SignToken(username string) (string, error) {
	secret, err := SecretFunc()
	if err != nil {
		return "", err
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   username,
		Issuer:    "caster",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(TokenExpiry)),
	})
	return token.SignedString(secret)
}

// ParseSubject validates a bearer token and returns its subject username.
func ParseSubject(tokenString string) (string, error) {
	secret, err := SecretFunc()
	if err != nil {
		return "", err
	}

	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v: %w", t.Header["alg"], ErrInvalidToken)
		}
		return secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%v: %w", err, ErrInvalidToken)
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// BearerToken extracts the token of an "Authorization: Bearer ..." header,
// empty when absent.
func BearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
