package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/gosuri/uitable"
	"github.com/krancour/mentora/sdk/content"
	"github.com/krancour/mentora/sdk/session"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

var cliFlagTaskID = &cli.StringFlag{
	Name:     flagID,
	Aliases:  []string{"i"},
	Usage:    "The ID of the task, e.g. 1-2 for the second task of lesson one (required)",
	Required: true,
}

var taskCommand = &cli.Command{
	Name:  "task",
	Usage: "Work on the tasks of a track",
	Subcommands: []*cli.Command{
		{
			Name:  "list",
			Usage: "List the tasks of a track",
			Flags: []cli.Flag{
				cliFlagTrack,
				cliFlagOutput,
			},
			Action: authenticated(taskList),
		},
		{
			Name:  "show",
			Usage: "Show a task, tailored to you",
			Flags: []cli.Flag{
				cliFlagTrack,
				cliFlagTaskID,
			},
			Action: authenticated(taskShow),
		},
		{
			Name:  "submit",
			Usage: "Submit your prompt and its output for evaluation",
			Description: "A passing score completes the task. Any other score " +
				"is recorded as an attempt.",
			Flags: []cli.Flag{
				cliFlagTrack,
				cliFlagTaskID,
				&cli.StringFlag{
					Name:  flagPrompt,
					Usage: "The prompt you wrote; asked for if omitted",
				},
				&cli.StringFlag{
					Name:  flagOutputText,
					Usage: "The output your prompt produced; asked for if omitted",
				},
			},
			Action: authenticated(taskSubmit),
		},
	},
}

// taskRow is one line of `mentora task list`.
type taskRow struct {
	content.Task
	Completed bool `json:"completed"`
}

func taskList(c *cli.Context, store *session.Store) error {
	slug := c.String(flagTrack)
	output := c.String(flagOutput)
	if err := validateOutputFormat(output); err != nil {
		return err
	}

	lessons, err := store.Client().Content().GetLessons(c.Context, slug)
	if err != nil {
		return err
	}
	tasks := content.BuildTaskList(lessons)
	if len(tasks) == 0 {
		fmt.Fprintln(c.App.Writer, "No tasks found.")
		return nil
	}

	// Marking completed tasks is best effort; not being enrolled is fine
	done := map[string]struct{}{}
	if completed, err :=
		store.Client().Tracks().ListCompletedTasks(c.Context, slug); err == nil {
		for _, task := range completed {
			done[task.TaskID] = struct{}{}
		}
	}
	rows := make([]taskRow, len(tasks))
	for i, task := range tasks {
		_, ok := done[task.ID]
		rows[i] = taskRow{Task: task, Completed: ok}
	}

	if strings.ToLower(output) != "table" {
		return printStructured(c.App.Writer, output, rows, "list tasks")
	}
	table := uitable.New()
	table.AddRow("ID", "LESSON", "TASK", "DONE?")
	for _, row := range rows {
		table.AddRow(row.ID, row.LessonTitle, row.TaskNumber, row.Completed)
	}
	fmt.Fprintln(c.App.Writer, table)
	return nil
}

func taskShow(c *cli.Context, store *session.Store) error {
	slug := c.String(flagTrack)
	taskID := c.String(flagID)

	task, err := findTask(c, store, slug, taskID)
	if err != nil {
		return err
	}
	description, err := store.Client().Content().GenerateTask(
		c.Context,
		content.TaskRequest{Track: slug, TaskID: task.ID},
	)
	if err != nil {
		return err
	}

	fmt.Fprintf(
		c.App.Writer,
		"%s -- task %d (%s)\n\n%s\n\n",
		task.LessonTitle,
		task.TaskNumber,
		task.ID,
		description,
	)
	fmt.Fprintf(
		c.App.Writer,
		"When you are ready, use `mentora task submit -t %s -i %s`.\n",
		slug,
		task.ID,
	)
	return nil
}

func taskSubmit(c *cli.Context, store *session.Store) error {
	slug := c.String(flagTrack)
	taskID := c.String(flagID)
	prompt := c.String(flagPrompt)
	outputText := c.String(flagOutputText)

	if err := ensureInput(
		&prompt,
		"prompt",
		&survey.Multiline{Message: "Your prompt"},
	); err != nil {
		return err
	}
	if err := ensureInput(
		&outputText,
		"output",
		&survey.Multiline{Message: "The output it produced"},
	); err != nil {
		return err
	}

	task, err := findTask(c, store, slug, taskID)
	if err != nil {
		return err
	}
	eval, err := store.Client().Content().Evaluate(
		c.Context,
		content.Submission{
			Prompt: prompt,
			Output: outputText,
			Track:  slug,
			TaskID: task.ID,
		},
	)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%s\n\n", eval.Text)

	completion := content.NewTaskCompletion(slug, task, prompt, outputText, eval)
	if err := store.Client().Tracks().CompleteTask(
		c.Context,
		task.ID,
		completion,
	); err != nil {
		return err
	}

	score := strconv.FormatFloat(eval.RawScore, 'f', -1, 64)
	if eval.Passed() {
		fmt.Fprintf(
			c.App.Writer,
			"Task complete with a score of %s/10! +%d XP\n",
			score,
			completion.XPEarned,
		)
	} else {
		fmt.Fprintf(
			c.App.Writer,
			"Attempt recorded with a score of %s/10. +%d XP\n"+
				"A score of %d/10 completes the task; try again any time.\n",
			score,
			completion.XPEarned,
			content.PassingScore,
		)
	}
	return nil
}

// findTask resolves taskID among the track's tasks. Unknown IDs resolve to
// the first task.
func findTask(
	c *cli.Context,
	store *session.Store,
	slug string,
	taskID string,
) (content.Task, error) {
	lessons, err := store.Client().Content().GetLessons(c.Context, slug)
	if err != nil {
		return content.Task{}, err
	}
	tasks := content.BuildTaskList(lessons)
	if len(tasks) == 0 {
		return content.Task{}, errors.Errorf("track %q has no tasks", slug)
	}
	i := content.FindTask(tasks, taskID)
	if i < 0 {
		fmt.Fprintf(
			c.App.ErrWriter,
			"No task %q in %s; showing the first task instead.\n",
			taskID,
			slug,
		)
		i = 0
	}
	return tasks[i], nil
}
