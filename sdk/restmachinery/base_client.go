package restmachinery

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/golang/glog"
	"github.com/krancour/mentora/sdk/meta"
	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"
	"golang.org/x/oauth2"
)

// RequestIDHeader is the header each outbound request is tagged with for
// correlating client and server logs.
const RequestIDHeader = "X-Request-Id"

// BaseClient is the single channel through which every call to the Mentora
// API is sent. Specialized clients embed it.
type BaseClient struct {
	APIAddress          string
	TokenSource         oauth2.TokenSource
	UnauthorizedHandler UnauthorizedHandler
	HTTPClient          *http.Client
}

// NewBaseClient returns a BaseClient for the API server at apiAddress.
func NewBaseClient(apiAddress string, opts *APIClientOptions) *BaseClient {
	if opts == nil {
		opts = &APIClientOptions{}
	}
	return &BaseClient{
		APIAddress:          strings.TrimSuffix(apiAddress, "/"),
		TokenSource:         opts.TokenSource,
		UnauthorizedHandler: opts.UnauthorizedHandler,
		HTTPClient: &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: opts.AllowInsecureConnections, // nolint: gosec
				},
			},
		},
	}
}

// BearerTokenAuthHeaders returns headers that authenticate a request with the
// specified token, regardless of what the TokenSource currently holds.
func (b *BaseClient) BearerTokenAuthHeaders(token string) map[string]string {
	return map[string]string{
		"Authorization": fmt.Sprintf("Bearer %s", token),
	}
}

// ExecuteRequest submits the request and, on success, unmarshals the response
// body into req.RespObj (if non-nil).
func (b *BaseClient) ExecuteRequest(
	ctx context.Context,
	req OutboundRequest,
) error {
	resp, err := b.SubmitRequest(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if req.RespObj == nil {
		return nil
	}
	respBodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "error reading response body")
	}
	if len(bytes.TrimSpace(respBodyBytes)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBodyBytes, req.RespObj); err != nil {
		return errors.Wrap(err, "error unmarshaling response body")
	}
	return nil
}

// SubmitRequest submits the request and returns the raw response, which the
// caller must close. Any response other than success is converted to a typed
// error from the meta package.
func (b *BaseClient) SubmitRequest(
	ctx context.Context,
	req OutboundRequest,
) (*http.Response, error) {
	var reqBodyReader io.Reader
	if req.ReqBodyObj != nil {
		switch rb := req.ReqBodyObj.(type) {
		case []byte:
			reqBodyReader = bytes.NewBuffer(rb)
		default:
			reqBodyBytes, err := json.Marshal(req.ReqBodyObj)
			if err != nil {
				return nil, errors.Wrap(err, "error marshaling request body")
			}
			reqBodyReader = bytes.NewBuffer(reqBodyBytes)
		}
	}

	r, err := http.NewRequestWithContext(
		ctx,
		req.Method,
		fmt.Sprintf("%s/%s", b.APIAddress, strings.TrimPrefix(req.Path, "/")),
		reqBodyReader,
	)
	if err != nil {
		return nil, errors.Wrapf(
			err,
			"error creating request %s %s",
			req.Method,
			req.Path,
		)
	}
	if len(req.QueryParams) > 0 {
		q := r.URL.Query()
		for k, v := range req.QueryParams {
			q.Set(k, v)
		}
		r.URL.RawQuery = q.Encode()
	}
	if reqBodyReader != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	requestID := uuid.NewV4().String()
	r.Header.Set(RequestIDHeader, requestID)

	tokenAttached, err := b.applyAuth(r, req)
	if err != nil {
		return nil, err
	}
	for k, v := range req.Headers {
		r.Header.Add(k, v)
	}

	glog.V(2).Infof(
		"[%s] %s %s (token attached: %t)",
		requestID,
		req.Method,
		r.URL.Path,
		tokenAttached,
	)

	resp, err := b.HTTPClient.Do(r)
	if err != nil {
		return nil, &meta.ErrTransient{Err: err}
	}

	if (req.SuccessCode == 0 && resp.StatusCode/100 == 2) ||
		(req.SuccessCode != 0 && resp.StatusCode == req.SuccessCode) {
		return resp, nil
	}

	defer resp.Body.Close()
	glog.V(1).Infof(
		"[%s] %s %s returned %d",
		requestID,
		req.Method,
		r.URL.Path,
		resp.StatusCode,
	)
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "error reading error response body")
	}
	reason, details := parseErrorDetail(bodyBytes)

	// HTTP Response code hints at what sort of error might be in the body
	// of the response
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		if req.CredentialExchange {
			return nil, &meta.ErrAuthentication{Reason: reason}
		}
		glog.Warningf(
			"[%s] %s %s was rejected as unauthorized; expiring session",
			requestID,
			req.Method,
			r.URL.Path,
		)
		if b.UnauthorizedHandler != nil {
			b.UnauthorizedHandler.HandleUnauthorized()
		}
		return nil, &meta.ErrSessionExpired{Reason: reason}
	case http.StatusForbidden:
		return nil, &meta.ErrAuthorization{Reason: reason}
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return nil, &meta.ErrBadRequest{Reason: reason, Details: details}
	case http.StatusNotFound:
		return nil, &meta.ErrNotFound{Reason: reason}
	case http.StatusConflict:
		return nil, &meta.ErrConflict{Reason: reason}
	case http.StatusInternalServerError:
		return nil, &meta.ErrInternalServer{Reason: reason}
	default:
		return nil, &meta.ErrUnexpectedStatus{
			StatusCode: resp.StatusCode,
			Reason:     reason,
		}
	}
}

func (b *BaseClient) applyAuth(
	r *http.Request,
	req OutboundRequest,
) (bool, error) {
	if len(req.AuthHeaders) > 0 {
		for k, v := range req.AuthHeaders {
			r.Header.Add(k, v)
		}
		return true, nil
	}
	if req.CredentialExchange || b.TokenSource == nil {
		return false, nil
	}
	token, err := b.TokenSource.Token()
	if err != nil {
		return false, errors.Wrap(err, "error retrieving API token")
	}
	if token == nil || token.AccessToken == "" {
		return false, nil
	}
	token.SetAuthHeader(r)
	return true, nil
}

// parseErrorDetail extracts the "detail" field from an error response body.
// The API reports detail either as a plain string or, for validation
// failures, as a list of objects with "loc" and "msg" fields. Bodies that are
// not JSON yield nothing.
func parseErrorDetail(body []byte) (string, []string) {
	errBody := struct {
		Detail json.RawMessage `json:"detail"`
	}{}
	if err := json.Unmarshal(body, &errBody); err != nil ||
		len(errBody.Detail) == 0 {
		return "", nil
	}
	var reason string
	if err := json.Unmarshal(errBody.Detail, &reason); err == nil {
		return reason, nil
	}
	items := []struct {
		Loc []interface{} `json:"loc"`
		Msg string        `json:"msg"`
	}{}
	if err := json.Unmarshal(errBody.Detail, &items); err != nil {
		return "", nil
	}
	details := make([]string, 0, len(items))
	for _, item := range items {
		if len(item.Loc) == 0 {
			details = append(details, item.Msg)
			continue
		}
		locs := make([]string, len(item.Loc))
		for i, loc := range item.Loc {
			locs[i] = fmt.Sprintf("%v", loc)
		}
		details = append(
			details,
			fmt.Sprintf("%s: %s", strings.Join(locs, "."), item.Msg),
		)
	}
	return "", details
}
