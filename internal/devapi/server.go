package devapi

import (
	"fmt"
	"net/http"

	"github.com/golang/glog"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// Server is an interface for the component that responds to HTTP API requests
type Server interface {
	// ListenAndServe causes the API server to start serving HTTP requests. It
	// will block until an error occurs and will return that error.
	ListenAndServe() error
	// Handler returns the server's fully assembled http.Handler.
	Handler() http.Handler
}

type server struct {
	*BaseEndpoints // The server itself exposes health check endpoints
	config         Config
	handler        http.Handler
}

// NewServer returns a development API server
func NewServer(
	config Config,
	baseEndpoints *BaseEndpoints,
	endpoints []Endpoints,
) Server {
	router := mux.NewRouter()
	router.StrictSlash(true)

	for _, eps := range endpoints {
		eps.Register(router)
	}

	s := &server{
		BaseEndpoints: baseEndpoints,
		config:        config,
		handler: cors.New(
			cors.Options{
				AllowedOrigins: config.AllowedOrigins(),
				AllowedMethods: []string{"DELETE", "GET", "POST", "PUT"},
				AllowedHeaders: []string{
					"Authorization",
					"Content-Type",
					"X-Request-Id",
				},
			},
		).Handler(router),
	}

	// Health check
	router.HandleFunc(
		"/healthz",
		s.checkHealth, // No filters applied to this request
	).Methods(http.MethodGet)

	return s
}

func (s *server) ListenAndServe() error {
	glog.Infof(
		"development API server is listening on 0.0.0.0:%d",
		s.config.Port(),
	)
	return http.ListenAndServe(
		fmt.Sprintf(":%d", s.config.Port()),
		h2c.NewHandler(s.handler, &http2.Server{}),
	)
}

func (s *server) Handler() http.Handler {
	return s.handler
}

func (s *server) checkHealth(w http.ResponseWriter, r *http.Request) {
	s.ServeRequest(
		InboundRequest{
			W: w,
			R: r,
			EndpointLogic: func() (interface{}, error) {
				return struct{}{}, nil
			},
			SuccessCode: http.StatusOK,
		},
	)
}
