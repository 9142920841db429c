package main

import (
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/gosuri/uitable"
	"github.com/krancour/mentora/sdk/meta"
	"github.com/krancour/mentora/sdk/session"
	"github.com/krancour/mentora/sdk/tracks"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

var trackCommand = &cli.Command{
	Name:  "track",
	Usage: "Manage learning tracks",
	Subcommands: []*cli.Command{
		{
			Name:  "catalog",
			Usage: "List the tracks on offer",
			Flags: []cli.Flag{
				cliFlagOutput,
			},
			Action: trackCatalog,
		},
		{
			Name:  "enroll",
			Usage: "Enroll in a track",
			Description: "Asks a few questions to personalize the track. If no " +
				"track is specified, one is recommended based on the answers.",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    flagTrack,
					Aliases: []string{"t"},
					Usage:   "The slug of the track; recommended if omitted",
				},
				&cli.StringFlag{
					Name:  flagTitle,
					Usage: "The title of the track; looked up in the catalog if omitted",
				},
				&cli.StringFlag{
					Name:  flagRole,
					Usage: "Your role; asked for if omitted",
				},
				&cli.StringFlag{
					Name:  flagGoal,
					Usage: "Your main goal; asked for if omitted",
				},
				&cli.StringFlag{
					Name:  flagLevel,
					Usage: "Your current AI knowledge; asked for if omitted",
				},
			},
			Action: authenticated(trackEnroll),
		},
		{
			Name:  "list",
			Usage: "List the tracks you are enrolled in",
			Flags: []cli.Flag{
				cliFlagOutput,
			},
			Action: authenticated(trackList),
		},
		{
			Name:  "progress",
			Usage: "Show your progress in a track",
			Flags: []cli.Flag{
				cliFlagTrack,
				cliFlagOutput,
			},
			Action: authenticated(trackProgress),
		},
		{
			Name:  "tasks",
			Usage: "List the tasks you have completed in a track",
			Flags: []cli.Flag{
				cliFlagTrack,
				cliFlagOutput,
			},
			Action: authenticated(trackTasks),
		},
	},
}

func trackCatalog(c *cli.Context) error {
	output := c.String(flagOutput)
	if err := validateOutputFormat(output); err != nil {
		return err
	}
	if strings.ToLower(output) != "table" {
		return printStructured(c.App.Writer, output, tracks.Catalog, "list catalog")
	}
	table := uitable.New()
	table.AddRow("SLUG", "TITLE", "DESCRIPTION")
	for _, entry := range tracks.Catalog {
		table.AddRow(entry.Slug, entry.Title, entry.Description)
	}
	fmt.Fprintln(c.App.Writer, table)
	return nil
}

func trackEnroll(c *cli.Context, store *session.Store) error {
	slug := c.String(flagTrack)
	title := c.String(flagTitle)
	if slug != "" && title == "" {
		if entry, ok := tracks.LookupCatalog(slug); ok {
			title = entry.Title
		}
	}

	prefs := tracks.Preferences{
		Role:  c.String(flagRole),
		Goal:  c.String(flagGoal),
		Level: c.String(flagLevel),
	}
	if err := askPreferences(&prefs, title); err != nil {
		return err
	}

	if slug == "" {
		slug, title = tracks.Recommend(prefs)
		fmt.Fprintf(c.App.Writer, "We recommend %s for you.\n", title)
	}

	if err := store.Client().Tracks().Enroll(
		c.Context,
		slug,
		tracks.Enrollment{
			TrackSlug:   slug,
			TrackName:   title,
			Preferences: prefs,
		},
	); err != nil {
		if meta.IsSessionExpired(err) {
			return err
		}
		// Most likely already enrolled; the track is usable either way
		fmt.Fprintf(
			c.App.ErrWriter,
			"Could not enroll in %s: %s\n",
			slug,
			describeError(err),
		)
	} else {
		fmt.Fprintf(c.App.Writer, "Enrolled in %s.\n", nameOrSlug(title, slug))
	}
	fmt.Fprintf(
		c.App.Writer,
		"Use `mentora task list -t %s` to see your tasks.\n",
		slug,
	)
	return nil
}

// askPreferences asks each questionnaire question that prefs does not already
// answer. Answers must be one of the offered values.
func askPreferences(prefs *tracks.Preferences, trackTitle string) error {
	answers := map[string]string{
		"role":  prefs.Role,
		"goal":  prefs.Goal,
		"level": prefs.Level,
	}
	for _, question := range tracks.Questionnaire(trackTitle) {
		answer := answers[question.ID]
		if answer == "" && isInteractive() {
			labels := make([]string, len(question.Options))
			for i, option := range question.Options {
				labels[i] = option.Label
			}
			var selected string
			if err := survey.AskOne(
				&survey.Select{
					Message: question.Title,
					Options: labels,
				},
				&selected,
			); err != nil {
				return errors.Wrapf(err, "error asking for %s", question.ID)
			}
			for _, option := range question.Options {
				if option.Label == selected {
					answer = option.Value
				}
			}
		}
		if answer == "" {
			return errors.Errorf("--%s is required", question.ID)
		}
		if !isOption(question, answer) {
			return errors.Errorf(
				"invalid %s %q; valid values: %s",
				question.ID,
				answer,
				strings.Join(optionValues(question), ", "),
			)
		}
		prefs.Set(question.ID, answer)
	}
	return nil
}

func isOption(question tracks.Question, value string) bool {
	for _, option := range question.Options {
		if option.Value == value {
			return true
		}
	}
	return false
}

func optionValues(question tracks.Question) []string {
	values := make([]string, len(question.Options))
	for i, option := range question.Options {
		values[i] = option.Value
	}
	return values
}

func trackList(c *cli.Context, store *session.Store) error {
	output := c.String(flagOutput)
	if err := validateOutputFormat(output); err != nil {
		return err
	}

	enrolled, err := store.Client().Tracks().ListEnrolled(c.Context)
	if err != nil {
		return err
	}

	if strings.ToLower(output) != "table" {
		return printStructured(c.App.Writer, output, enrolled, "list tracks")
	}
	if len(enrolled) == 0 {
		fmt.Fprintln(c.App.Writer, "No tracks found.")
		return nil
	}
	fmt.Fprintln(c.App.Writer, enrolledTable(enrolled))
	return nil
}

func trackProgress(c *cli.Context, store *session.Store) error {
	slug := c.String(flagTrack)
	output := c.String(flagOutput)
	if err := validateOutputFormat(output); err != nil {
		return err
	}

	progress, err := store.Client().Tracks().GetProgress(c.Context, slug)
	if err != nil {
		return err
	}

	if strings.ToLower(output) != "table" {
		return printStructured(c.App.Writer, output, progress, "get progress")
	}
	table := uitable.New()
	table.AddRow("TRACK", "COMPLETE", "TASKS", "CURRENT LESSON", "LAST ACCESSED")
	table.AddRow(
		nameOrSlug(progress.TrackName, progress.TrackSlug),
		fmt.Sprintf("%.0f%%", progress.PercentComplete),
		progress.TasksCompleted,
		progress.CurrentLessonIndex+1,
		progress.LastAccessed,
	)
	fmt.Fprintln(c.App.Writer, table)
	return nil
}

func trackTasks(c *cli.Context, store *session.Store) error {
	slug := c.String(flagTrack)
	output := c.String(flagOutput)
	if err := validateOutputFormat(output); err != nil {
		return err
	}

	completed, err := store.Client().Tracks().ListCompletedTasks(c.Context, slug)
	if err != nil {
		return err
	}

	if strings.ToLower(output) != "table" {
		return printStructured(
			c.App.Writer,
			output,
			completed,
			"list completed tasks",
		)
	}
	if len(completed) == 0 {
		fmt.Fprintln(c.App.Writer, "No completed tasks found.")
		return nil
	}
	fmt.Fprintln(c.App.Writer, completedTable(completed))
	return nil
}

func enrolledTable(enrolled []tracks.EnrolledTrack) *uitable.Table {
	table := uitable.New()
	table.AddRow("SLUG", "NAME", "COMPLETE", "TASKS", "LAST ACCESSED")
	for _, track := range enrolled {
		table.AddRow(
			track.TrackSlug,
			nameOrSlug(track.TrackName, track.TrackSlug),
			fmt.Sprintf("%.0f%%", track.PercentComplete),
			track.TasksCompleted,
			track.LastAccessed,
		)
	}
	return table
}

func completedTable(completed []tracks.CompletedTask) *uitable.Table {
	table := uitable.New()
	table.AddRow("TASK", "TRACK", "SCORE", "XP", "COMPLETED")
	for _, task := range completed {
		table.AddRow(
			task.TaskID,
			task.TrackSlug,
			task.Score,
			task.XPEarned,
			task.CompletedAt,
		)
	}
	return table
}

func nameOrSlug(name, slug string) string {
	if name != "" {
		return name
	}
	return slug
}

// describeError prefers the API server's own explanation.
func describeError(err error) string {
	if detail := meta.Detail(err); detail != "" {
		return detail
	}
	return err.Error()
}
