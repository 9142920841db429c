package authx

import "github.com/krancour/mentora/sdk/restmachinery"

// APIClient is the root of a tree of more specialized API clients within the
// authx package.
type APIClient interface {
	// Sessions returns a specialized client for Session management.
	Sessions() SessionsClient
	// Users returns a specialized client for the current User.
	Users() UsersClient
}

type apiClient struct {
	// sessionsClient is a specialized client for Session management.
	sessionsClient SessionsClient
	// usersClient is a specialized client for the current User.
	usersClient UsersClient
}

// NewAPIClient returns an APIClient, which is the root of a tree of more
// specialized API clients within the authx package.
func NewAPIClient(
	apiAddress string,
	opts *restmachinery.APIClientOptions,
) APIClient {
	return &apiClient{
		sessionsClient: NewSessionsClient(apiAddress, opts),
		usersClient:    NewUsersClient(apiAddress, opts),
	}
}

func (a *apiClient) Sessions() SessionsClient {
	return a.sessionsClient
}

func (a *apiClient) Users() UsersClient {
	return a.usersClient
}
