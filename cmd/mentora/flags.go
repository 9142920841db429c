package main

import "github.com/urfave/cli/v2"

const (
	flagAvatar      = "avatar"
	flagBio         = "bio"
	flagDisplayName = "display-name"
	flagEmail       = "email"
	flagGoal        = "goal"
	flagID          = "id"
	flagInsecure    = "insecure"
	flagLevel       = "level"
	flagOutput      = "output"
	flagOutputText  = "output-text"
	flagPassword    = "password"
	flagPrompt      = "prompt"
	flagRole        = "role"
	flagServer      = "server"
	flagTitle       = "title"
	flagTrack       = "track"
	flagUsername    = "username"
	flagVerbosity   = "verbosity"
)

var (
	cliFlagOutput = &cli.StringFlag{
		Name:    flagOutput,
		Aliases: []string{"o"},
		Usage: "Return output in the specified format; supported formats: table, " +
			"yaml, json",
		Value: "table",
	}
	cliFlagTrack = &cli.StringFlag{
		Name:     flagTrack,
		Aliases:  []string{"t"},
		Usage:    "The slug of the track (required)",
		Required: true,
	}
)
