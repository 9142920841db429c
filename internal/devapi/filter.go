package devapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/golang/glog"
	"github.com/krancour/mentora/sdk/meta"
)

// Filter is an interface to be implemented by components that can wrap a
// new http.HandlerFunc that handles authentication around another
// http.HandlerFunc.
type Filter interface {
	// Decorate decorates one http.HandlerFunc with another
	Decorate(http.HandlerFunc) http.HandlerFunc
}

type principalContextKey struct{}

type tokenContextKey struct{}

// principalFromContext returns the username of the authenticated User.
func principalFromContext(ctx context.Context) string {
	username, _ := ctx.Value(principalContextKey{}).(string)
	return username
}

// tokenFromContext returns the claims of the bearer token that authenticated
// the request.
func tokenFromContext(ctx context.Context) *jwt.RegisteredClaims {
	claims, _ := ctx.Value(tokenContextKey{}).(*jwt.RegisteredClaims)
	return claims
}

type tokenAuthFilter struct {
	tokens *tokenIssuer
	store  *Store
}

// newTokenAuthFilter returns a Filter that admits only requests bearing an
// unexpired, unrevoked token belonging to an existing User.
func newTokenAuthFilter(tokens *tokenIssuer, store *Store) Filter {
	return &tokenAuthFilter{
		tokens: tokens,
		store:  store,
	}
}

func (t *tokenAuthFilter) Decorate(handle http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		headerValue := r.Header.Get("Authorization")
		if headerValue == "" {
			t.unauthorized(w, "Not authenticated")
			return
		}
		headerValueParts := strings.SplitN(headerValue, " ", 2)
		if len(headerValueParts) != 2 ||
			!strings.EqualFold(headerValueParts[0], "Bearer") {
			t.unauthorized(w, `"Authorization" header is malformed.`)
			return
		}
		claims, err := t.tokens.verify(headerValueParts[1])
		if err != nil {
			glog.V(2).Infof("rejecting token: %s", err)
			t.unauthorized(w, "Could not validate credentials")
			return
		}
		if t.store.isRevoked(claims.ID) {
			t.unauthorized(w, "Could not validate credentials")
			return
		}
		if !t.store.userExists(claims.Subject) {
			t.unauthorized(w, "Could not validate credentials")
			return
		}
		ctx := context.WithValue(r.Context(), principalContextKey{}, claims.Subject)
		ctx = context.WithValue(ctx, tokenContextKey{}, claims)
		handle(w, r.WithContext(ctx))
	}
}

func (t *tokenAuthFilter) unauthorized(w http.ResponseWriter, reason string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeAPIResponse(
		w,
		http.StatusUnauthorized,
		&meta.ErrAuthentication{Reason: reason},
	)
}
