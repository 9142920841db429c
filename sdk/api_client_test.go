package sdk

import (
	"testing"

	"github.com/krancour/mentora/sdk/restmachinery"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestNewAPIClient(t *testing.T) {
	client := NewAPIClient(
		"localhost:8080",
		&restmachinery.APIClientOptions{
			TokenSource: oauth2.StaticTokenSource(
				&oauth2.Token{AccessToken: "12345"},
			),
		},
	)
	require.IsType(t, &apiClient{}, client)
	require.NotNil(t, client.(*apiClient).authxClient)
	require.Equal(t, client.(*apiClient).authxClient, client.Authx())
	require.NotNil(t, client.(*apiClient).tracksClient)
	require.Equal(t, client.(*apiClient).tracksClient, client.Tracks())
	require.NotNil(t, client.(*apiClient).contentClient)
	require.Equal(t, client.(*apiClient).contentClient, client.Content())
}
