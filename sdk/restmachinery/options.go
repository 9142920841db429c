package restmachinery

import "golang.org/x/oauth2"

// APIClientOptions encapsulates optional API client configuration.
type APIClientOptions struct {
	// AllowInsecureConnections indicates whether SSL-related warnings issued by
	// the API server (e.g. a self-signed certificate) should be ignored.
	AllowInsecureConnections bool
	// TokenSource is consulted on every request for the bearer token to attach.
	// It is read fresh each time so a token acquired mid-process is used by the
	// very next request. A nil TokenSource, or a token with an empty
	// AccessToken, results in no Authorization header.
	TokenSource oauth2.TokenSource
	// UnauthorizedHandler, if non-nil, is invoked once for every 401 received
	// in response to a request that is not a credential exchange.
	UnauthorizedHandler UnauthorizedHandler
}

// UnauthorizedHandler is implemented by components that react to the API
// server rejecting the current bearer token.
type UnauthorizedHandler interface {
	HandleUnauthorized()
}

// UnauthorizedHandlerFunc adapts an ordinary function to the
// UnauthorizedHandler interface.
type UnauthorizedHandlerFunc func()

// HandleUnauthorized calls f().
func (f UnauthorizedHandlerFunc) HandleUnauthorized() {
	f()
}
