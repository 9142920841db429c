package devapi

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/krancour/mentora/sdk/authx"
	"github.com/xeipuuv/gojsonschema"
)

type authxEndpoints struct {
	*BaseEndpoints
	store                     *Store
	tokens                    *tokenIssuer
	registrationSchemaLoader  gojsonschema.JSONLoader
	credentialsSchemaLoader   gojsonschema.JSONLoader
	profileUpdateSchemaLoader gojsonschema.JSONLoader
}

func newAuthxEndpoints(
	baseEndpoints *BaseEndpoints,
	store *Store,
	tokens *tokenIssuer,
) Endpoints {
	return &authxEndpoints{
		BaseEndpoints:             baseEndpoints,
		store:                     store,
		tokens:                    tokens,
		registrationSchemaLoader:  schemaLoader("registration"),
		credentialsSchemaLoader:   schemaLoader("credentials"),
		profileUpdateSchemaLoader: schemaLoader("profile_update"),
	}
}

func (a *authxEndpoints) Register(router *mux.Router) {
	// Register
	router.HandleFunc(
		"/api/auth/register",
		a.register, // No filters applied to this request
	).Methods(http.MethodPost)

	// Log in
	router.HandleFunc(
		"/api/auth/login",
		a.login, // No filters applied to this request
	).Methods(http.MethodPost)

	// Log out
	router.HandleFunc(
		"/api/auth/logout",
		a.TokenAuthFilter.Decorate(a.logout),
	).Methods(http.MethodPost)

	// Get current user
	router.HandleFunc(
		"/api/users/me",
		a.TokenAuthFilter.Decorate(a.me),
	).Methods(http.MethodGet)

	// Get current user's stats
	router.HandleFunc(
		"/api/users/stats",
		a.TokenAuthFilter.Decorate(a.stats),
	).Methods(http.MethodGet)

	// Get current user's progress toward today's goal
	router.HandleFunc(
		"/api/users/daily-progress",
		a.TokenAuthFilter.Decorate(a.dailyProgress),
	).Methods(http.MethodGet)

	// Update current user's profile
	router.HandleFunc(
		"/api/users/profile",
		a.TokenAuthFilter.Decorate(a.updateProfile),
	).Methods(http.MethodPut)
}

func (a *authxEndpoints) register(w http.ResponseWriter, r *http.Request) {
	registration := authx.Registration{}
	a.ServeRequest(
		InboundRequest{
			W:                   w,
			R:                   r,
			ReqBodySchemaLoader: a.registrationSchemaLoader,
			ReqBodyObj:          &registration,
			EndpointLogic: func() (interface{}, error) {
				return a.store.createUser(registration)
			},
			SuccessCode: http.StatusOK,
		},
	)
}

func (a *authxEndpoints) login(w http.ResponseWriter, r *http.Request) {
	credentials := authx.Credentials{}
	a.ServeRequest(
		InboundRequest{
			W:                   w,
			R:                   r,
			ReqBodySchemaLoader: a.credentialsSchemaLoader,
			ReqBodyObj:          &credentials,
			EndpointLogic: func() (interface{}, error) {
				user, err := a.store.authenticate(
					credentials.Username,
					credentials.Password,
				)
				if err != nil {
					return nil, err
				}
				token, err := a.tokens.issue(user.Username)
				if err != nil {
					return nil, err
				}
				return authx.LoginResult{
					AccessToken: token,
					TokenType:   "bearer",
					User:        user,
				}, nil
			},
			SuccessCode: http.StatusOK,
		},
	)
}

func (a *authxEndpoints) logout(w http.ResponseWriter, r *http.Request) {
	a.ServeRequest(
		InboundRequest{
			W: w,
			R: r,
			EndpointLogic: func() (interface{}, error) {
				claims := tokenFromContext(r.Context())
				a.store.revoke(claims.ID, claims.ExpiresAt.Time)
				return map[string]string{
					"message": "Successfully logged out",
				}, nil
			},
			SuccessCode: http.StatusOK,
		},
	)
}

func (a *authxEndpoints) me(w http.ResponseWriter, r *http.Request) {
	a.ServeRequest(
		InboundRequest{
			W: w,
			R: r,
			EndpointLogic: func() (interface{}, error) {
				return a.store.getUser(principalFromContext(r.Context()))
			},
			SuccessCode: http.StatusOK,
		},
	)
}

func (a *authxEndpoints) stats(w http.ResponseWriter, r *http.Request) {
	a.ServeRequest(
		InboundRequest{
			W: w,
			R: r,
			EndpointLogic: func() (interface{}, error) {
				return a.store.stats(principalFromContext(r.Context())), nil
			},
			SuccessCode: http.StatusOK,
		},
	)
}

func (a *authxEndpoints) dailyProgress(w http.ResponseWriter, r *http.Request) {
	a.ServeRequest(
		InboundRequest{
			W: w,
			R: r,
			EndpointLogic: func() (interface{}, error) {
				return a.store.dailyProgress(principalFromContext(r.Context())), nil
			},
			SuccessCode: http.StatusOK,
		},
	)
}

func (a *authxEndpoints) updateProfile(w http.ResponseWriter, r *http.Request) {
	update := authx.ProfileUpdate{}
	a.ServeRequest(
		InboundRequest{
			W:                   w,
			R:                   r,
			ReqBodySchemaLoader: a.profileUpdateSchemaLoader,
			ReqBodyObj:          &update,
			EndpointLogic: func() (interface{}, error) {
				return a.store.updateProfile(
					principalFromContext(r.Context()),
					update,
				)
			},
			SuccessCode: http.StatusOK,
		},
	)
}
