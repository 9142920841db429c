package sdk

import (
	"github.com/krancour/mentora/sdk/authx"
	"github.com/krancour/mentora/sdk/content"
	"github.com/krancour/mentora/sdk/restmachinery"
	"github.com/krancour/mentora/sdk/tracks"
)

// APIClient is the general interface for the Mentora API. It does little more
// than expose functions for obtaining more specialized clients for different
// areas of concern, like authentication or learning Tracks.
type APIClient interface {
	// Authx returns a specialized client for Session and User management.
	Authx() authx.APIClient
	// Tracks returns a specialized client for Track enrollment and progress.
	Tracks() tracks.TracksClient
	// Content returns a specialized client for lessons, tasks, and
	// evaluations.
	Content() content.ContentClient
}

type apiClient struct {
	authxClient   authx.APIClient
	tracksClient  tracks.TracksClient
	contentClient content.ContentClient
}

// NewAPIClient returns a Mentora client. Every specialized client it exposes
// shares the same options, so they all read the current token from the same
// source and report authorization failures to the same handler.
func NewAPIClient(
	apiAddress string,
	opts *restmachinery.APIClientOptions,
) APIClient {
	return &apiClient{
		authxClient:   authx.NewAPIClient(apiAddress, opts),
		tracksClient:  tracks.NewTracksClient(apiAddress, opts),
		contentClient: content.NewContentClient(apiAddress, opts),
	}
}

func (a *apiClient) Authx() authx.APIClient {
	return a.authxClient
}

func (a *apiClient) Tracks() tracks.TracksClient {
	return a.tracksClient
}

func (a *apiClient) Content() content.ContentClient {
	return a.contentClient
}
