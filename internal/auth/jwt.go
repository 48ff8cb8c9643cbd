// Package auth issues and verifies the HS256 tokens that gate the REST and
// websocket surfaces.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tandemchat/backend/internal/errors"
)

// Claims carries the authenticated username alongside the registered claims.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
}

// GenerateToken signs a token for username valid for validityDuration. The
// chat backend only verifies tokens; issuance happens in the separate auth
// service, which shares the signing secret. Tests use this helper to mint
// tokens the same way that service does.
func GenerateToken(username string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		Username: username,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", errors.Wrap(errors.ErrInternal, "failed to sign token", err)
	}

	return tokenString, nil
}

// UsernameFromToken verifies tokenString and returns the username it was
// issued for.
func UsernameFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", errors.Wrap(errors.ErrInvalidToken, "failed to parse token", err)
	}

	if !token.Valid || claims.Username == "" {
		return "", errors.New(errors.ErrInvalidToken, "token is not valid")
	}

	return claims.Username, nil
}
