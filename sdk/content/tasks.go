package content

import (
	"fmt"
	"math"
	"strconv"

	"github.com/krancour/mentora/sdk/tracks"
)

// TasksPerLesson is the number of tasks derived from every Lesson.
const TasksPerLesson = 3

const (
	completedXP      = 100
	minimumAttemptXP = 50
)

// Task identifies one task within a Track's lesson plan.
type Task struct {
	// ID has the form "<lesson number>-<task number>", both counting from 1.
	ID string `json:"id"`
	// LessonIndex counts from 0.
	LessonIndex int `json:"lessonIndex"`
	// TaskNumber counts from 1.
	TaskNumber  int    `json:"taskNumber"`
	LessonTitle string `json:"lessonTitle"`
}

// BuildTaskList derives the ordered list of Tasks for a set of Lessons.
func BuildTaskList(lessons []Lesson) []Task {
	tasks := make([]Task, 0, len(lessons)*TasksPerLesson)
	for lessonIndex, lesson := range lessons {
		for n := 1; n <= TasksPerLesson; n++ {
			tasks = append(
				tasks,
				Task{
					ID:          fmt.Sprintf("%d-%d", lessonIndex+1, n),
					LessonIndex: lessonIndex,
					TaskNumber:  n,
					LessonTitle: lesson.Title,
				},
			)
		}
	}
	return tasks
}

// FindTask returns the index of the Task with the given ID, or -1.
func FindTask(tasks []Task, id string) int {
	for i, task := range tasks {
		if task.ID == id {
			return i
		}
	}
	return -1
}

// NewTaskCompletion builds the record of an attempt at task. A passing
// Evaluation is recorded as a completion worth full XP along with the
// evaluator's feedback; anything else is recorded as an attempt worth at
// least minimal XP.
func NewTaskCompletion(
	trackSlug string,
	task Task,
	prompt string,
	output string,
	eval Evaluation,
) tracks.TaskCompletion {
	completion := tracks.TaskCompletion{
		TrackSlug:    trackSlug,
		LessonIndex:  task.LessonIndex,
		TaskIndex:    task.TaskNumber,
		Prompt:       prompt,
		UserOutput:   output,
		AIEvaluation: eval.Text,
		Score:        eval.Score,
	}
	if eval.Passed() {
		completion.XPEarned = completedXP
		completion.FeedbackSummary = eval.FeedbackSummary
		return completion
	}
	completion.XPEarned = int(
		math.Round(math.Max(minimumAttemptXP, eval.Score)),
	)
	completion.FeedbackSummary = fmt.Sprintf(
		"Attempted with score %s/10",
		strconv.FormatFloat(eval.RawScore, 'f', -1, 64),
	)
	return completion
}
