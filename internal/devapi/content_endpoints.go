package devapi

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/krancour/mentora/sdk/content"
	"github.com/krancour/mentora/sdk/tracks"
	"github.com/xeipuuv/gojsonschema"
)

// curriculum holds the lessons of each Track the development API server
// knows about. Other Tracks get genericLessons.
var curriculum = map[string][]content.Lesson{
	tracks.SlugChatGPT: {
		{
			Title:       "Prompt Basics",
			Description: "Write clear, specific prompts that get useful answers.",
		},
		{
			Title:       "Role and Context",
			Description: "Give the model a role and the context it needs.",
		},
		{
			Title:       "Structured Output",
			Description: "Ask for tables, lists, and JSON you can reuse.",
		},
		{
			Title:       "Iterating on Results",
			Description: "Refine answers with follow-up prompts.",
		},
	},
	tracks.SlugAICoding: {
		{
			Title:       "Explaining Code",
			Description: "Have an assistant walk you through unfamiliar code.",
		},
		{
			Title:       "Generating Tests",
			Description: "Describe behavior precisely enough to get good tests.",
		},
		{
			Title:       "Debugging with AI",
			Description: "Share errors and context to find root causes faster.",
		},
	},
}

var genericLessons = []content.Lesson{
	{
		Title:       "Getting Started",
		Description: "Find your way around the tool.",
	},
	{
		Title:       "Everyday Workflows",
		Description: "Apply the tool to the work you already do.",
	},
	{
		Title:       "Going Further",
		Description: "Combine features for bigger results.",
	},
}

func lessonsFor(track string) []content.Lesson {
	if lessons, ok := curriculum[track]; ok {
		return lessons
	}
	return genericLessons
}

// contentEndpoints serve lessons, tasks, and evaluations. These endpoints
// tolerate unauthenticated use, so no filter is applied to them.
type contentEndpoints struct {
	*BaseEndpoints
	store                   *Store
	tokens                  *tokenIssuer
	taskRequestSchemaLoader gojsonschema.JSONLoader
	submissionSchemaLoader  gojsonschema.JSONLoader
}

func newContentEndpoints(
	baseEndpoints *BaseEndpoints,
	store *Store,
	tokens *tokenIssuer,
) Endpoints {
	return &contentEndpoints{
		BaseEndpoints:           baseEndpoints,
		store:                   store,
		tokens:                  tokens,
		taskRequestSchemaLoader: schemaLoader("task_request"),
		submissionSchemaLoader:  schemaLoader("submission"),
	}
}

func (c *contentEndpoints) Register(router *mux.Router) {
	// Get lessons
	router.HandleFunc(
		"/lessons/{track}",
		c.getLessons, // No filters applied to this request
	).Methods(http.MethodGet)

	// Get tasks
	router.HandleFunc(
		"/tasks/{track}",
		c.getTasks, // No filters applied to this request
	).Methods(http.MethodGet)

	// Generate an adaptive task description
	router.HandleFunc(
		"/generate-task",
		c.generateTask, // No filters applied to this request
	).Methods(http.MethodPost)

	// Evaluate a prompt and its output
	router.HandleFunc(
		"/evaluate",
		c.evaluate, // No filters applied to this request
	).Methods(http.MethodPost)
}

func (c *contentEndpoints) getLessons(w http.ResponseWriter, r *http.Request) {
	c.ServeRequest(
		InboundRequest{
			W: w,
			R: r,
			EndpointLogic: func() (interface{}, error) {
				return map[string][]content.Lesson{
					"lessons": lessonsFor(mux.Vars(r)["track"]),
				}, nil
			},
			SuccessCode: http.StatusOK,
		},
	)
}

func (c *contentEndpoints) getTasks(w http.ResponseWriter, r *http.Request) {
	c.ServeRequest(
		InboundRequest{
			W: w,
			R: r,
			EndpointLogic: func() (interface{}, error) {
				lessons := lessonsFor(mux.Vars(r)["track"])
				tasks := content.BuildTaskList(lessons)
				defs := make([]content.TaskDefinition, len(tasks))
				for i, task := range tasks {
					defs[i] = content.TaskDefinition{
						ID: task.ID,
						Title: fmt.Sprintf(
							"%s: exercise %d",
							task.LessonTitle,
							task.TaskNumber,
						),
						Description: lessons[task.LessonIndex].Description,
					}
				}
				return map[string][]content.TaskDefinition{"tasks": defs}, nil
			},
			SuccessCode: http.StatusOK,
		},
	)
}

func (c *contentEndpoints) generateTask(w http.ResponseWriter, r *http.Request) {
	req := content.TaskRequest{}
	c.ServeRequest(
		InboundRequest{
			W:                   w,
			R:                   r,
			ReqBodySchemaLoader: c.taskRequestSchemaLoader,
			ReqBodyObj:          &req,
			EndpointLogic: func() (interface{}, error) {
				lessons := lessonsFor(req.Track)
				tasks := content.BuildTaskList(lessons)
				i := content.FindTask(tasks, req.TaskID)
				if i < 0 {
					i = 0
				}
				task := tasks[i]
				description := fmt.Sprintf(
					"Lesson %d, task %d (%s): %s Write a prompt that puts this "+
						"into practice and paste the output you got.",
					task.LessonIndex+1,
					task.TaskNumber,
					task.LessonTitle,
					lessons[task.LessonIndex].Description,
				)
				// Tailor the task when the caller is known and has preferences
				if prefs, ok := c.preferences(r, req.Track); ok && prefs.Role != "" {
					description = fmt.Sprintf(
						"%s Frame it around your work as a %s.",
						description,
						prefs.Role,
					)
				}
				return map[string]string{"task": description}, nil
			},
			SuccessCode: http.StatusOK,
		},
	)
}

func (c *contentEndpoints) evaluate(w http.ResponseWriter, r *http.Request) {
	submission := content.Submission{}
	c.ServeRequest(
		InboundRequest{
			W:                   w,
			R:                   r,
			ReqBodySchemaLoader: c.submissionSchemaLoader,
			ReqBodyObj:          &submission,
			EndpointLogic: func() (interface{}, error) {
				score := scoreSubmission(submission)
				var feedback string
				switch {
				case score >= content.PassingScore:
					feedback = "Clear, specific prompt with useful context."
				case score >= 4:
					feedback = "Add more context and say what a good answer looks like."
				default:
					feedback = "The prompt is too vague to guide the model."
				}
				return map[string]string{
					"evaluation": fmt.Sprintf(
						"Score: %s/10\nFeedback Summary: %s",
						strconv.FormatFloat(score, 'f', -1, 64),
						feedback,
					),
				}, nil
			},
			SuccessCode: http.StatusOK,
		},
	)
}

// preferences returns the enrollment preferences of the caller, if the
// request carries a valid token and the caller is enrolled in track.
func (c *contentEndpoints) preferences(
	r *http.Request,
	track string,
) (tracks.Preferences, bool) {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 {
		return tracks.Preferences{}, false
	}
	claims, err := c.tokens.verify(parts[1])
	if err != nil || c.store.isRevoked(claims.ID) {
		return tracks.Preferences{}, false
	}
	return c.store.preferences(claims.Subject, track)
}

// scoreSubmission is a deterministic stand-in for a model-graded evaluation.
// Longer prompts that produced some output score higher, in half point steps.
func scoreSubmission(submission content.Submission) float64 {
	words := len(strings.Fields(submission.Prompt))
	score := float64(words) / 4
	if strings.TrimSpace(submission.Output) == "" {
		score /= 2
	}
	score = math.Round(score*2) / 2
	return math.Max(1, math.Min(10, score))
}
