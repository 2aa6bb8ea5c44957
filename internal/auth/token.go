package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the registered claims plus the session identity and role.
type Claims struct {
	jwt.RegisteredClaims
	Identity string
	Role     string
}

// GenerateToken mints the HS256-signed bearer token a session presents to
// the remote API. Its lifetime matches the session timeout.
func GenerateToken(identity, role string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		Identity: identity,
		Role:     role,
	})

	return token.SignedString(secretKey)
}

// ParseToken validates a bearer token and returns its identity and role.
func ParseToken(tokenString string, secretKey []byte) (identity, role string, err error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		return "", "", err
	}
	if !token.Valid {
		return "", "", ErrInvalidToken
	}

	return claims.Identity, claims.Role, nil
}
