package authx

import (
	"crypto/tls"
	"net/http"
	"testing"

	"github.com/krancour/mentora/sdk/restmachinery"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

const (
	testAPIAddress          = "localhost:8080"
	testAPIToken            = "11235813213455"
	testClientAllowInsecure = true
)

func testClientOptions() *restmachinery.APIClientOptions {
	return &restmachinery.APIClientOptions{
		AllowInsecureConnections: testClientAllowInsecure,
		TokenSource: oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: testAPIToken},
		),
	}
}

func requireBaseClient(t *testing.T, baseClient *restmachinery.BaseClient) {
	require.Equal(t, testAPIAddress, baseClient.APIAddress)
	require.NotNil(t, baseClient.TokenSource)
	require.IsType(t, &http.Client{}, baseClient.HTTPClient)
	require.IsType(t, &http.Transport{}, baseClient.HTTPClient.Transport)
	require.IsType(
		t,
		&tls.Config{},
		baseClient.HTTPClient.Transport.(*http.Transport).TLSClientConfig,
	)
	require.Equal(
		t,
		testClientAllowInsecure,
		baseClient.HTTPClient.Transport.(*http.Transport).TLSClientConfig.InsecureSkipVerify, // nolint: lll
	)
}
