package devapi

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"
)

// tokenIssuer issues and verifies HS256-signed bearer tokens. The token's ID
// (jti) is what gets revoked on logout.
type tokenIssuer struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func newTokenIssuer(key []byte, ttl time.Duration) *tokenIssuer {
	return &tokenIssuer{
		key: key,
		ttl: ttl,
		now: time.Now,
	}
}

func (t *tokenIssuer) issue(username string) (string, error) {
	now := t.now()
	token, err := jwt.NewWithClaims(
		jwt.SigningMethodHS256,
		jwt.RegisteredClaims{
			ID:        uuid.NewV4().String(),
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	).SignedString(t.key)
	return token, errors.Wrap(err, "error signing token")
}

func (t *tokenIssuer) verify(token string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	if _, err := jwt.ParseWithClaims(
		token,
		claims,
		func(*jwt.Token) (interface{}, error) {
			return t.key, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
		jwt.WithExpirationRequired(),
	); err != nil {
		return nil, err
	}
	if claims.Subject == "" || claims.ID == "" {
		return nil, errors.New("token is missing required claims")
	}
	return claims, nil
}
