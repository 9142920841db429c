package authx

import (
	"context"
	"net/http"

	"github.com/krancour/mentora/sdk/restmachinery"
)

// Registration is the information required to create a new User account.
type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	// DisplayName defaults to Username when left empty.
	DisplayName string `json:"display_name"`
}

// Credentials are exchanged for a bearer token.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResult is returned by the API server in exchange for valid
// Credentials.
type LoginResult struct {
	// AccessToken is an opaque bearer token.
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
	// User is the User the AccessToken belongs to.
	User User `json:"user"`
}

// SessionsClient is the specialized client for creating and destroying
// Mentora API sessions.
type SessionsClient interface {
	// Register creates a new User account. It does not log the new User in.
	Register(context.Context, Registration) error
	// Login exchanges Credentials for a bearer token.
	Login(context.Context, Credentials) (LoginResult, error)
	// Logout invalidates the specified token server-side.
	Logout(ctx context.Context, token string) error
}

type sessionsClient struct {
	*restmachinery.BaseClient
}

// NewSessionsClient returns a specialized client for creating and destroying
// Mentora API sessions.
func NewSessionsClient(
	apiAddress string,
	opts *restmachinery.APIClientOptions,
) SessionsClient {
	return &sessionsClient{
		BaseClient: restmachinery.NewBaseClient(apiAddress, opts),
	}
}

func (s *sessionsClient) Register(
	ctx context.Context,
	registration Registration,
) error {
	if registration.DisplayName == "" {
		registration.DisplayName = registration.Username
	}
	return s.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method:             http.MethodPost,
			Path:               "api/auth/register",
			ReqBodyObj:         registration,
			CredentialExchange: true,
		},
	)
}

func (s *sessionsClient) Login(
	ctx context.Context,
	credentials Credentials,
) (LoginResult, error) {
	result := LoginResult{}
	return result, s.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method:             http.MethodPost,
			Path:               "api/auth/login",
			ReqBodyObj:         credentials,
			RespObj:            &result,
			CredentialExchange: true,
		},
	)
}

func (s *sessionsClient) Logout(ctx context.Context, token string) error {
	req := restmachinery.OutboundRequest{
		Method:             http.MethodPost,
		Path:               "api/auth/logout",
		CredentialExchange: true,
	}
	if token != "" {
		req.AuthHeaders = s.BearerTokenAuthHeaders(token)
	}
	return s.ExecuteRequest(ctx, req)
}
