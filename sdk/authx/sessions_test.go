package authx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/krancour/mentora/sdk/meta"
	"github.com/stretchr/testify/require"
)

const testUsername = "nova"
const testPassword = "abcdef"

func TestNewSessionsClient(t *testing.T) {
	client := NewSessionsClient(testAPIAddress, testClientOptions())
	require.IsType(t, &sessionsClient{}, client)
	requireBaseClient(t, client.(*sessionsClient).BaseClient)
}

func TestSessionsClientRegister(t *testing.T) {
	server := httptest.NewServer(
		http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, http.MethodPost, r.Method)
				require.Equal(t, "/api/auth/register", r.URL.Path)
				require.Empty(t, r.Header.Get("Authorization"))
				bodyBytes, err := io.ReadAll(r.Body)
				require.NoError(t, err)
				registration := Registration{}
				require.NoError(t, json.Unmarshal(bodyBytes, &registration))
				require.Equal(t, testUsername, registration.Username)
				// DisplayName should have defaulted to the username
				require.Equal(t, testUsername, registration.DisplayName)
				w.WriteHeader(http.StatusCreated)
				fmt.Fprintf(w, `{"username":%q}`, testUsername)
			},
		),
	)
	defer server.Close()
	client := NewSessionsClient(server.URL, testClientOptions())
	err := client.Register(
		context.Background(),
		Registration{
			Username: testUsername,
			Email:    "nova@x.com",
			Password: testPassword,
		},
	)
	require.NoError(t, err)
}

func TestSessionsClientLogin(t *testing.T) {
	server := httptest.NewServer(
		http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, http.MethodPost, r.Method)
				require.Equal(t, "/api/auth/login", r.URL.Path)
				require.Empty(t, r.Header.Get("Authorization"))
				w.WriteHeader(http.StatusOK)
				fmt.Fprintf(
					w,
					`{"access_token":%q,"token_type":"bearer","user":{"username":%q}}`,
					testAPIToken,
					testUsername,
				)
			},
		),
	)
	defer server.Close()
	client := NewSessionsClient(server.URL, testClientOptions())
	result, err := client.Login(
		context.Background(),
		Credentials{Username: testUsername, Password: testPassword},
	)
	require.NoError(t, err)
	require.Equal(t, testAPIToken, result.AccessToken)
	require.Equal(t, testUsername, result.User.Username)
}

func TestSessionsClientLoginRejected(t *testing.T) {
	server := httptest.NewServer(
		http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				fmt.Fprintln(w, `{"detail":"Incorrect username or password"}`)
			},
		),
	)
	defer server.Close()
	client := NewSessionsClient(server.URL, testClientOptions())
	_, err := client.Login(
		context.Background(),
		Credentials{Username: testUsername, Password: "wrong"},
	)
	require.IsType(t, &meta.ErrAuthentication{}, err)
	require.Equal(t, "Incorrect username or password", meta.Detail(err))
}

func TestSessionsClientLogout(t *testing.T) {
	server := httptest.NewServer(
		http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, http.MethodPost, r.Method)
				require.Equal(t, "/api/auth/logout", r.URL.Path)
				require.Equal(t, "Bearer departing", r.Header.Get("Authorization"))
				w.WriteHeader(http.StatusOK)
			},
		),
	)
	defer server.Close()
	client := NewSessionsClient(server.URL, testClientOptions())
	err := client.Logout(context.Background(), "departing")
	require.NoError(t, err)
}
