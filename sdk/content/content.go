package content

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/krancour/mentora/sdk/restmachinery"
)

// Lesson is one lesson within a Track.
type Lesson struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// TaskDefinition is a task as described by the content service.
type TaskDefinition struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// TaskRequest identifies a task for the purpose of generating its adaptive
// description.
type TaskRequest struct {
	Track  string `json:"track"`
	TaskID string `json:"taskId"`
}

// Submission is a User's prompt and the output it produced, submitted for
// evaluation.
type Submission struct {
	Prompt string `json:"prompt"`
	Output string `json:"output"`
	Track  string `json:"track"`
	TaskID string `json:"taskId"`
}

// ContentClient is the specialized client for the content service's lesson,
// task, and evaluation endpoints. These endpoints tolerate unauthenticated
// use, but the current bearer token is sent when there is one.
type ContentClient interface {
	GetLessons(ctx context.Context, track string) ([]Lesson, error)
	GetTasks(ctx context.Context, track string) ([]TaskDefinition, error)
	// GenerateTask returns a task description adapted to the current User.
	GenerateTask(context.Context, TaskRequest) (string, error)
	// Evaluate submits a prompt/output pair and returns the parsed Evaluation.
	Evaluate(context.Context, Submission) (Evaluation, error)
}

type contentClient struct {
	*restmachinery.BaseClient
}

// NewContentClient returns a specialized client for the content service.
func NewContentClient(
	apiAddress string,
	opts *restmachinery.APIClientOptions,
) ContentClient {
	return &contentClient{
		BaseClient: restmachinery.NewBaseClient(apiAddress, opts),
	}
}

func (c *contentClient) GetLessons(
	ctx context.Context,
	track string,
) ([]Lesson, error) {
	resp := struct {
		Lessons []Lesson `json:"lessons"`
	}{}
	err := c.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method:  http.MethodGet,
			Path:    fmt.Sprintf("lessons/%s", url.PathEscape(track)),
			RespObj: &resp,
		},
	)
	if resp.Lessons == nil {
		resp.Lessons = []Lesson{}
	}
	return resp.Lessons, err
}

func (c *contentClient) GetTasks(
	ctx context.Context,
	track string,
) ([]TaskDefinition, error) {
	resp := struct {
		Tasks []TaskDefinition `json:"tasks"`
	}{}
	err := c.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method:  http.MethodGet,
			Path:    fmt.Sprintf("tasks/%s", url.PathEscape(track)),
			RespObj: &resp,
		},
	)
	if resp.Tasks == nil {
		resp.Tasks = []TaskDefinition{}
	}
	return resp.Tasks, err
}

func (c *contentClient) GenerateTask(
	ctx context.Context,
	req TaskRequest,
) (string, error) {
	resp := struct {
		Task string `json:"task"`
	}{}
	return resp.Task, c.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method:     http.MethodPost,
			Path:       "generate-task",
			ReqBodyObj: req,
			RespObj:    &resp,
		},
	)
}

func (c *contentClient) Evaluate(
	ctx context.Context,
	submission Submission,
) (Evaluation, error) {
	resp := struct {
		Evaluation      string   `json:"evaluation"`
		Score           *float64 `json:"score"`
		FeedbackSummary *string  `json:"feedback_summary"`
	}{}
	if err := c.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method:     http.MethodPost,
			Path:       "evaluate",
			ReqBodyObj: submission,
			RespObj:    &resp,
		},
	); err != nil {
		return Evaluation{}, err
	}
	eval := ParseEvaluation(resp.Evaluation)
	// Structured fields, when the service supplies them, take precedence over
	// whatever could be scraped from the text.
	if resp.Score != nil {
		eval = eval.withRawScore(*resp.Score)
	}
	if resp.FeedbackSummary != nil {
		eval.FeedbackSummary = *resp.FeedbackSummary
	}
	return eval, nil
}
