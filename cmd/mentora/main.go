package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/golang/glog"
	"github.com/krancour/mentora/internal/version"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := loadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "\n%s\n\n", err)
		os.Exit(1)
	}
	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()
	app := newApp()
	fmt.Println()
	err := app.RunContext(ctx, os.Args)
	glog.Flush()
	if err != nil {
		fmt.Printf("\n%s\n\n", err)
		stop()
		os.Exit(1)
	}
	fmt.Println()
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "mentora"
	app.Usage = "Learn to work with AI, one task at a time"
	app.Version = fmt.Sprintf(
		"%s -- commit %s",
		version.Version(),
		version.Commit(),
	)
	app.Flags = []cli.Flag{
		&cli.BoolFlag{
			Name:    flagInsecure,
			Aliases: []string{"k"},
			Usage:   "Allow insecure API server connections when using TLS",
		},
		&cli.IntFlag{
			Name:  flagVerbosity,
			Usage: "Log verbosity; 1 logs failed requests, 2 logs every request",
		},
	}
	app.Before = configureLogging
	app.Commands = []*cli.Command{
		dashboardCommand,
		loginCommand,
		logoutCommand,
		profileCommand,
		progressCommand,
		registerCommand,
		statsCommand,
		taskCommand,
		trackCommand,
		whoamiCommand,
	}
	return app
}

// configureLogging maps the --verbosity flag onto glog's flags, which live in
// the standard flag set.
func configureLogging(c *cli.Context) error {
	if !c.IsSet(flagVerbosity) {
		return nil
	}
	if err := flag.Set("logtostderr", "true"); err != nil {
		return err
	}
	return flag.Set("v", strconv.Itoa(c.Int(flagVerbosity)))
}
