package devapi

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/golang/glog"
	"github.com/gorilla/mux"
	"github.com/krancour/mentora/sdk/meta"
	"github.com/pkg/errors"
	"github.com/xeipuuv/gojsonschema"
)

// Endpoints is implemented by components that register handlers with the
// router.
type Endpoints interface {
	Register(router *mux.Router)
}

// InboundRequest describes a request for BaseEndpoints.ServeRequest to
// validate, dispatch to EndpointLogic, and respond to.
type InboundRequest struct {
	W                   http.ResponseWriter
	R                   *http.Request
	ReqBodySchemaLoader gojsonschema.JSONLoader
	ReqBodyObj          interface{}
	EndpointLogic       func() (interface{}, error)
	SuccessCode         int
}

// validationError is one item of a 422 response's detail list.
type validationError struct {
	Loc []string `json:"loc"`
	Msg string   `json:"msg"`
}

// BaseEndpoints is embedded by every Endpoints implementation.
type BaseEndpoints struct {
	TokenAuthFilter Filter
}

func (b *BaseEndpoints) readAndValidateRequestBody(
	w http.ResponseWriter,
	r *http.Request,
	bodySchemaLoader gojsonschema.JSONLoader,
	bodyObj interface{},
) bool {
	defer r.Body.Close()
	bodyBytes, err := io.ReadAll(r.Body)
	if err != nil {
		glog.Error(errors.Wrap(err, "error reading request body"))
		// Most likely the request body is missing
		b.WriteAPIResponse(
			w,
			http.StatusBadRequest,
			&meta.ErrBadRequest{Reason: "Could not read request body."},
		)
		return false
	}
	if bodySchemaLoader != nil {
		var validationResult *gojsonschema.Result
		validationResult, err = gojsonschema.Validate(
			bodySchemaLoader,
			gojsonschema.NewBytesLoader(bodyBytes),
		)
		if err != nil {
			glog.V(1).Info(errors.Wrap(err, "error validating request body"))
			// The schemas are fixed, so the body most likely wasn't JSON
			b.WriteAPIResponse(
				w,
				http.StatusBadRequest,
				&meta.ErrBadRequest{Reason: "Could not validate request body."},
			)
			return false
		}
		if !validationResult.Valid() {
			verrs := make([]validationError, len(validationResult.Errors()))
			for i, verr := range validationResult.Errors() {
				verrs[i] = validationError{
					Loc: []string{"body", verr.Field()},
					Msg: verr.Description(),
				}
			}
			b.WriteAPIResponse(
				w,
				http.StatusUnprocessableEntity,
				struct {
					Detail []validationError `json:"detail"`
				}{
					Detail: verrs,
				},
			)
			return false
		}
	}
	if bodyObj != nil {
		if err = json.Unmarshal(bodyBytes, bodyObj); err != nil {
			glog.Error(errors.Wrap(err, "error unmarshaling request body"))
			// The body already validated, so this is a real, internal problem
			b.WriteAPIResponse(
				w,
				http.StatusInternalServerError,
				&meta.ErrInternalServer{},
			)
			return false
		}
	}
	return true
}

// ServeRequest validates and unmarshals the request body, if any, invokes
// the endpoint logic, and writes the response. Errors are mapped to status
// codes by type.
func (b *BaseEndpoints) ServeRequest(req InboundRequest) {
	if req.ReqBodySchemaLoader != nil || req.ReqBodyObj != nil {
		if !b.readAndValidateRequestBody(
			req.W,
			req.R,
			req.ReqBodySchemaLoader,
			req.ReqBodyObj,
		) {
			return
		}
	}
	respBodyObj, err := req.EndpointLogic()
	if err != nil {
		switch e := errors.Cause(err).(type) {
		case *meta.ErrAuthentication:
			b.WriteAPIResponse(req.W, http.StatusUnauthorized, e)
		case *meta.ErrAuthorization:
			b.WriteAPIResponse(req.W, http.StatusForbidden, e)
		case *meta.ErrBadRequest:
			b.WriteAPIResponse(req.W, http.StatusBadRequest, e)
		case *meta.ErrNotFound:
			b.WriteAPIResponse(req.W, http.StatusNotFound, e)
		case *meta.ErrConflict:
			b.WriteAPIResponse(req.W, http.StatusConflict, e)
		case *meta.ErrInternalServer:
			b.WriteAPIResponse(req.W, http.StatusInternalServerError, e)
		default:
			glog.Error(err)
			b.WriteAPIResponse(
				req.W,
				http.StatusInternalServerError,
				&meta.ErrInternalServer{},
			)
		}
		return
	}
	b.WriteAPIResponse(req.W, req.SuccessCode, respBodyObj)
}

// WriteAPIResponse writes response, marshaled to JSON unless it is already a
// []byte, with the given status code.
func (b *BaseEndpoints) WriteAPIResponse(
	w http.ResponseWriter,
	statusCode int,
	response interface{},
) {
	writeAPIResponse(w, statusCode, response)
}

func writeAPIResponse(
	w http.ResponseWriter,
	statusCode int,
	response interface{},
) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	responseBody, ok := response.([]byte)
	if !ok {
		var err error
		if responseBody, err = json.Marshal(response); err != nil {
			glog.Error(errors.Wrap(err, "error marshaling response body"))
		}
	}
	if _, err := w.Write(responseBody); err != nil {
		glog.Error(errors.Wrap(err, "error writing response body"))
	}
}
