package main

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/gosuri/uitable"
	"github.com/krancour/mentora/sdk/authx"
	"github.com/krancour/mentora/sdk/meta"
	"github.com/krancour/mentora/sdk/session"
	"github.com/krancour/mentora/sdk/tracks"
	"github.com/urfave/cli/v2"
)

const (
	recentActivityLimit = 5
	placeholder         = "..."
)

var dashboardCommand = &cli.Command{
	Name:   "dashboard",
	Usage:  "Summarize your progress",
	Action: authenticated(dashboard),
}

var statsCommand = &cli.Command{
	Name:  "stats",
	Usage: "Show your level, xp, and streak",
	Flags: []cli.Flag{
		cliFlagOutput,
	},
	Action: authenticated(stats),
}

var progressCommand = &cli.Command{
	Name:  "progress",
	Usage: "Show your progress toward today's goal",
	Flags: []cli.Flag{
		cliFlagOutput,
	},
	Action: authenticated(dailyProgress),
}

func dashboard(c *cli.Context, store *session.Store) error {
	var userStats authx.UserStats
	var enrolled []tracks.EnrolledTrack
	var statsErr, enrolledErr error

	wg := sync.WaitGroup{}
	wg.Add(2)
	go func() {
		defer wg.Done()
		userStats, statsErr = store.Client().Authx().Users().GetStats(c.Context)
	}()
	go func() {
		defer wg.Done()
		enrolled, enrolledErr = store.Client().Tracks().ListEnrolled(c.Context)
	}()
	wg.Wait()

	var recent []tracks.CompletedTask
	var recentErr error
	if enrolledErr == nil && len(enrolled) > 0 {
		recent, recentErr = store.Client().Tracks().ListCompletedTasks(
			c.Context,
			enrolled[0].TrackSlug,
		)
		if len(recent) > recentActivityLimit {
			recent = recent[:recentActivityLimit]
		}
	}

	// The session may have ended mid-way
	name := placeholder
	if user := store.State().User; user != nil {
		name = user.Name()
	}
	fmt.Fprintf(c.App.Writer, "Welcome back, %s!\n\n", name)

	table := uitable.New()
	table.AddRow("TOTAL XP", "STREAK", "TASKS DONE", "ACTIVE TRACKS")
	xp, streak, tasksDone, activeTracks :=
		placeholder, placeholder, placeholder, placeholder
	if statsErr == nil {
		xp = fmt.Sprintf("%d XP", userStats.TotalXP)
		streak = fmt.Sprintf("%d Days", userStats.StreakDays)
	}
	if enrolledErr == nil {
		var done int
		for _, track := range enrolled {
			done += track.TasksCompleted
		}
		tasksDone = strconv.Itoa(done)
		activeTracks = strconv.Itoa(len(enrolled))
	}
	table.AddRow(xp, streak, tasksDone, activeTracks)
	fmt.Fprintln(c.App.Writer, table)

	fmt.Fprintln(c.App.Writer, "\nYour tracks:")
	switch {
	case enrolledErr != nil:
		fmt.Fprintln(c.App.Writer, placeholder)
	case len(enrolled) == 0:
		fmt.Fprintln(
			c.App.Writer,
			"You are not enrolled in any tracks. Use `mentora track enroll` to "+
				"get started.",
		)
	default:
		fmt.Fprintln(c.App.Writer, enrolledTable(enrolled))
	}

	fmt.Fprintln(c.App.Writer, "\nRecent activity:")
	switch {
	case enrolledErr != nil || recentErr != nil:
		fmt.Fprintln(c.App.Writer, placeholder)
	case len(recent) == 0:
		fmt.Fprintln(c.App.Writer, "No recent activity found.")
	default:
		fmt.Fprintln(c.App.Writer, completedTable(recent))
	}

	// Whatever could be shown has been; report why the rest could not be
	for _, err := range []error{statsErr, enrolledErr, recentErr} {
		if meta.IsSessionExpired(err) {
			return err
		}
	}
	return firstError(statsErr, enrolledErr, recentErr)
}

func stats(c *cli.Context, store *session.Store) error {
	output := c.String(flagOutput)
	if err := validateOutputFormat(output); err != nil {
		return err
	}

	userStats, err := store.Client().Authx().Users().GetStats(c.Context)
	if err != nil {
		return err
	}

	if strings.ToLower(output) != "table" {
		return printStructured(c.App.Writer, output, userStats, "get stats")
	}
	table := uitable.New()
	table.AddRow("LEVEL", "TOTAL XP", "STREAK DAYS", "HOURS", "COURSES COMPLETED")
	table.AddRow(
		userStats.Level,
		userStats.TotalXP,
		userStats.StreakDays,
		userStats.TotalHours,
		userStats.CompletedCourses,
	)
	fmt.Fprintln(c.App.Writer, table)
	return nil
}

func dailyProgress(c *cli.Context, store *session.Store) error {
	output := c.String(flagOutput)
	if err := validateOutputFormat(output); err != nil {
		return err
	}

	progress, err := store.Client().Authx().Users().GetDailyProgress(c.Context)
	if err != nil {
		return err
	}

	if strings.ToLower(output) != "table" {
		return printStructured(
			c.App.Writer,
			output,
			progress,
			"get daily progress",
		)
	}
	table := uitable.New()
	table.AddRow("TASKS COMPLETED TODAY", "DAILY GOAL")
	table.AddRow(
		progress.TasksCompleted,
		fmt.Sprintf(
			"%s%%",
			strconv.FormatFloat(progress.Percentage, 'f', -1, 64),
		),
	)
	fmt.Fprintln(c.App.Writer, table)
	return nil
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
