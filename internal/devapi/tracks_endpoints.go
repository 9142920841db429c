package devapi

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/krancour/mentora/sdk/tracks"
	"github.com/xeipuuv/gojsonschema"
)

type tracksEndpoints struct {
	*BaseEndpoints
	store                      *Store
	enrollmentSchemaLoader     gojsonschema.JSONLoader
	progressUpdateSchemaLoader gojsonschema.JSONLoader
	taskCompletionSchemaLoader gojsonschema.JSONLoader
}

func newTracksEndpoints(baseEndpoints *BaseEndpoints, store *Store) Endpoints {
	return &tracksEndpoints{
		BaseEndpoints:              baseEndpoints,
		store:                      store,
		enrollmentSchemaLoader:     schemaLoader("enrollment"),
		progressUpdateSchemaLoader: schemaLoader("progress_update"),
		taskCompletionSchemaLoader: schemaLoader("task_completion"),
	}
}

func (t *tracksEndpoints) Register(router *mux.Router) {
	// List enrolled tracks
	router.HandleFunc(
		"/api/tracks/enrolled",
		t.TokenAuthFilter.Decorate(t.listEnrolled),
	).Methods(http.MethodGet)

	// Complete a task. Registered ahead of the {slug} routes.
	router.HandleFunc(
		"/api/tracks/tasks/{taskID}/complete",
		t.TokenAuthFilter.Decorate(t.completeTask),
	).Methods(http.MethodPost)

	// Enroll
	router.HandleFunc(
		"/api/tracks/{slug}/enroll",
		t.TokenAuthFilter.Decorate(t.enroll),
	).Methods(http.MethodPost)

	// Get progress
	router.HandleFunc(
		"/api/tracks/{slug}/progress",
		t.TokenAuthFilter.Decorate(t.getProgress),
	).Methods(http.MethodGet)

	// Update progress
	router.HandleFunc(
		"/api/tracks/{slug}/progress",
		t.TokenAuthFilter.Decorate(t.updateProgress),
	).Methods(http.MethodPut)

	// List completed tasks
	router.HandleFunc(
		"/api/tracks/{slug}/tasks/completed",
		t.TokenAuthFilter.Decorate(t.listCompleted),
	).Methods(http.MethodGet)
}

func (t *tracksEndpoints) listEnrolled(w http.ResponseWriter, r *http.Request) {
	t.ServeRequest(
		InboundRequest{
			W: w,
			R: r,
			EndpointLogic: func() (interface{}, error) {
				return t.store.listEnrolled(principalFromContext(r.Context())), nil
			},
			SuccessCode: http.StatusOK,
		},
	)
}

func (t *tracksEndpoints) enroll(w http.ResponseWriter, r *http.Request) {
	enrollment := tracks.Enrollment{}
	t.ServeRequest(
		InboundRequest{
			W:                   w,
			R:                   r,
			ReqBodySchemaLoader: t.enrollmentSchemaLoader,
			ReqBodyObj:          &enrollment,
			EndpointLogic: func() (interface{}, error) {
				// The path is authoritative
				enrollment.TrackSlug = mux.Vars(r)["slug"]
				if err := t.store.enroll(
					principalFromContext(r.Context()),
					enrollment,
				); err != nil {
					return nil, err
				}
				return map[string]string{
					"message":    "Enrolled successfully",
					"track_slug": enrollment.TrackSlug,
				}, nil
			},
			SuccessCode: http.StatusOK,
		},
	)
}

func (t *tracksEndpoints) getProgress(w http.ResponseWriter, r *http.Request) {
	t.ServeRequest(
		InboundRequest{
			W: w,
			R: r,
			EndpointLogic: func() (interface{}, error) {
				return t.store.getProgress(
					principalFromContext(r.Context()),
					mux.Vars(r)["slug"],
				)
			},
			SuccessCode: http.StatusOK,
		},
	)
}

func (t *tracksEndpoints) updateProgress(
	w http.ResponseWriter,
	r *http.Request,
) {
	update := tracks.ProgressUpdate{}
	t.ServeRequest(
		InboundRequest{
			W:                   w,
			R:                   r,
			ReqBodySchemaLoader: t.progressUpdateSchemaLoader,
			ReqBodyObj:          &update,
			EndpointLogic: func() (interface{}, error) {
				return t.store.updateProgress(
					principalFromContext(r.Context()),
					mux.Vars(r)["slug"],
					update,
				)
			},
			SuccessCode: http.StatusOK,
		},
	)
}

func (t *tracksEndpoints) listCompleted(w http.ResponseWriter, r *http.Request) {
	t.ServeRequest(
		InboundRequest{
			W: w,
			R: r,
			EndpointLogic: func() (interface{}, error) {
				return t.store.listCompleted(
					principalFromContext(r.Context()),
					mux.Vars(r)["slug"],
				)
			},
			SuccessCode: http.StatusOK,
		},
	)
}

func (t *tracksEndpoints) completeTask(w http.ResponseWriter, r *http.Request) {
	completion := tracks.TaskCompletion{}
	t.ServeRequest(
		InboundRequest{
			W:                   w,
			R:                   r,
			ReqBodySchemaLoader: t.taskCompletionSchemaLoader,
			ReqBodyObj:          &completion,
			EndpointLogic: func() (interface{}, error) {
				return t.store.completeTask(
					principalFromContext(r.Context()),
					mux.Vars(r)["taskID"],
					completion,
				)
			},
			SuccessCode: http.StatusOK,
		},
	)
}
