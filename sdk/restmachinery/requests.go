package restmachinery

// OutboundRequest models a request to be sent to the Mentora API.
type OutboundRequest struct {
	Method      string
	Path        string
	QueryParams map[string]string
	// AuthHeaders, when non-empty, are sent in place of the bearer token that
	// would otherwise be read from the client's TokenSource.
	AuthHeaders map[string]string
	Headers     map[string]string
	ReqBodyObj  interface{}
	// SuccessCode is the status code that signals success. If zero, any 2xx
	// response is treated as success.
	SuccessCode int
	RespObj     interface{}
	// CredentialExchange marks requests that trade credentials for a session
	// (or end one). Such requests are not decorated with the current bearer
	// token and a 401 in response to them is reported as an
	// *meta.ErrAuthentication instead of expiring the current session.
	CredentialExchange bool
}
