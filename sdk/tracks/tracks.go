package tracks

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/krancour/mentora/sdk/restmachinery"
)

// EnrolledTrack summarizes the current User's progress through a Track they
// are enrolled in.
type EnrolledTrack struct {
	TrackSlug string `json:"track_slug"`
	TrackName string `json:"track_name"`
	// PercentComplete is in the range 0-100. Round only for display.
	PercentComplete float64 `json:"percent_complete"`
	TasksCompleted  int     `json:"tasks_completed"`
	// LastAccessed is the timestamp exactly as reported by the API server.
	LastAccessed string `json:"last_accessed,omitempty"`
}

// Preferences captures the answers a User gave when enrolling so that the
// content service can adapt tasks to them.
type Preferences struct {
	Role  string `json:"role,omitempty"`
	Goal  string `json:"goal,omitempty"`
	Level string `json:"level,omitempty"`
}

// Enrollment is the request body for enrolling in a Track.
type Enrollment struct {
	TrackSlug   string      `json:"track_slug"`
	TrackName   string      `json:"track_name"`
	Preferences Preferences `json:"preferences"`
}

// Progress is the current User's detailed progress through a single Track.
type Progress struct {
	TrackSlug          string  `json:"track_slug"`
	TrackName          string  `json:"track_name,omitempty"`
	PercentComplete    float64 `json:"percent_complete"`
	TasksCompleted     int     `json:"tasks_completed"`
	CurrentLessonIndex int     `json:"current_lesson_index"`
	LastAccessed       string  `json:"last_accessed,omitempty"`
}

// ProgressUpdate is the request body for updating progress through a Track.
type ProgressUpdate struct {
	PercentComplete    float64 `json:"percent_complete"`
	TasksCompleted     int     `json:"tasks_completed"`
	CurrentLessonIndex int     `json:"current_lesson_index"`
}

// TaskCompletion records an attempt at (or completion of) a single task.
type TaskCompletion struct {
	TrackSlug   string `json:"track_slug"`
	LessonIndex int    `json:"lesson_index"`
	TaskIndex   int    `json:"task_index"`
	Prompt      string `json:"prompt"`
	UserOutput  string `json:"user_output"`
	// AIEvaluation is the full evaluation text returned by the content service.
	AIEvaluation string `json:"ai_evaluation"`
	// Score is on a 0-100 scale.
	Score           float64 `json:"score"`
	XPEarned        int     `json:"xp_earned"`
	FeedbackSummary string  `json:"feedback_summary"`
}

// CompletedTask is a TaskCompletion as recorded by the API server.
type CompletedTask struct {
	TaskID          string  `json:"task_id"`
	TrackSlug       string  `json:"track_slug"`
	LessonIndex     int     `json:"lesson_index"`
	TaskIndex       int     `json:"task_index"`
	Score           float64 `json:"score"`
	XPEarned        int     `json:"xp_earned"`
	FeedbackSummary string  `json:"feedback_summary,omitempty"`
	CompletedAt     string  `json:"completed_at,omitempty"`
}

// TracksClient is the specialized client for Track enrollment and progress.
type TracksClient interface {
	// ListEnrolled returns every Track the current User is enrolled in.
	ListEnrolled(context.Context) ([]EnrolledTrack, error)
	GetProgress(ctx context.Context, trackSlug string) (Progress, error)
	Enroll(ctx context.Context, trackSlug string, enrollment Enrollment) error
	UpdateProgress(
		ctx context.Context,
		trackSlug string,
		update ProgressUpdate,
	) error
	// ListCompletedTasks returns completed tasks for one Track, most recent
	// first.
	ListCompletedTasks(
		ctx context.Context,
		trackSlug string,
	) ([]CompletedTask, error)
	// CompleteTask records an attempt at the specified task.
	CompleteTask(
		ctx context.Context,
		taskID string,
		completion TaskCompletion,
	) error
}

type tracksClient struct {
	*restmachinery.BaseClient
}

// NewTracksClient returns a specialized client for Track enrollment and
// progress.
func NewTracksClient(
	apiAddress string,
	opts *restmachinery.APIClientOptions,
) TracksClient {
	return &tracksClient{
		BaseClient: restmachinery.NewBaseClient(apiAddress, opts),
	}
}

func (t *tracksClient) ListEnrolled(
	ctx context.Context,
) ([]EnrolledTrack, error) {
	enrolled := []EnrolledTrack{}
	return enrolled, t.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method:  http.MethodGet,
			Path:    "api/tracks/enrolled",
			RespObj: &enrolled,
		},
	)
}

func (t *tracksClient) GetProgress(
	ctx context.Context,
	trackSlug string,
) (Progress, error) {
	progress := Progress{}
	return progress, t.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method:  http.MethodGet,
			Path:    fmt.Sprintf("api/tracks/%s/progress", url.PathEscape(trackSlug)),
			RespObj: &progress,
		},
	)
}

func (t *tracksClient) Enroll(
	ctx context.Context,
	trackSlug string,
	enrollment Enrollment,
) error {
	if enrollment.TrackSlug == "" {
		enrollment.TrackSlug = trackSlug
	}
	return t.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method:     http.MethodPost,
			Path:       fmt.Sprintf("api/tracks/%s/enroll", url.PathEscape(trackSlug)),
			ReqBodyObj: enrollment,
		},
	)
}

func (t *tracksClient) UpdateProgress(
	ctx context.Context,
	trackSlug string,
	update ProgressUpdate,
) error {
	return t.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method:     http.MethodPut,
			Path:       fmt.Sprintf("api/tracks/%s/progress", url.PathEscape(trackSlug)),
			ReqBodyObj: update,
		},
	)
}

func (t *tracksClient) ListCompletedTasks(
	ctx context.Context,
	trackSlug string,
) ([]CompletedTask, error) {
	completed := []CompletedTask{}
	return completed, t.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method: http.MethodGet,
			Path: fmt.Sprintf(
				"api/tracks/%s/tasks/completed",
				url.PathEscape(trackSlug),
			),
			RespObj: &completed,
		},
	)
}

func (t *tracksClient) CompleteTask(
	ctx context.Context,
	taskID string,
	completion TaskCompletion,
) error {
	return t.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method: http.MethodPost,
			Path: fmt.Sprintf(
				"api/tracks/tasks/%s/complete",
				url.PathEscape(taskID),
			),
			ReqBodyObj: completion,
		},
	)
}
