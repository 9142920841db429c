// Package devapi is a self-contained, in-memory implementation of the
// learning platform's API. It exists so the SDK and CLI can be developed and
// tested without the production backend.
package devapi

// New returns a development API server backed by a fresh, empty Store.
func New(config Config) Server {
	return newServer(config, NewStore())
}

func newServer(config Config, store *Store) Server {
	tokens := newTokenIssuer(config.TokenSigningKey(), config.TokenTTL())
	baseEndpoints := &BaseEndpoints{
		TokenAuthFilter: newTokenAuthFilter(tokens, store),
	}
	return NewServer(
		config,
		baseEndpoints,
		[]Endpoints{
			newAuthxEndpoints(baseEndpoints, store, tokens),
			newTracksEndpoints(baseEndpoints, store),
			newContentEndpoints(baseEndpoints, store, tokens),
		},
	)
}
