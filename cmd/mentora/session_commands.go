package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/gosuri/uitable"
	"github.com/krancour/mentora/sdk/authx"
	"github.com/krancour/mentora/sdk/session"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

var loginCommand = &cli.Command{
	Name:  "login",
	Usage: "Log in to Mentora",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    flagServer,
			Aliases: []string{"s"},
			Usage:   "Log into the API server at the specified address",
		},
		&cli.StringFlag{
			Name:    flagUsername,
			Aliases: []string{"u"},
			Usage:   "Log in as the specified user; prompted for if omitted",
		},
		&cli.StringFlag{
			Name:    flagPassword,
			Aliases: []string{"p"},
			Usage:   "Specify the password; prompted for if omitted",
		},
	},
	Action: login,
}

var registerCommand = &cli.Command{
	Name:  "register",
	Usage: "Create a Mentora account and log in",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    flagServer,
			Aliases: []string{"s"},
			Usage:   "Register with the API server at the specified address",
		},
		&cli.StringFlag{
			Name:    flagUsername,
			Aliases: []string{"u"},
			Usage:   "The username to register; prompted for if omitted",
		},
		&cli.StringFlag{
			Name:    flagEmail,
			Aliases: []string{"e"},
			Usage:   "The email address to register; prompted for if omitted",
		},
		&cli.StringFlag{
			Name:  flagDisplayName,
			Usage: "The name shown to other learners; defaults to the username",
		},
		&cli.StringFlag{
			Name:    flagPassword,
			Aliases: []string{"p"},
			Usage:   "Specify the password; prompted for, twice, if omitted",
		},
	},
	Action: register,
}

var logoutCommand = &cli.Command{
	Name:   "logout",
	Usage:  "Log out of Mentora",
	Action: withSession(logout),
}

var whoamiCommand = &cli.Command{
	Name:  "whoami",
	Usage: "Show the currently logged in user",
	Flags: []cli.Flag{
		cliFlagOutput,
	},
	Action: authenticated(whoami),
}

func login(c *cli.Context) error {
	username := c.String(flagUsername)
	password := c.String(flagPassword)

	if err := ensureInput(
		&username,
		"username",
		&survey.Input{Message: "Username"},
	); err != nil {
		return err
	}
	if err := ensureInput(
		&password,
		"password",
		&survey.Password{Message: "Password"},
	); err != nil {
		return err
	}

	store, closer, err := getSessionStore(c, c.String(flagServer))
	if err != nil {
		return err
	}
	defer closer()

	if result := store.Login(c.Context, username, password); !result.Success {
		return errors.New(result.Error)
	}
	if err := rememberServer(c); err != nil {
		return err
	}
	fmt.Fprintf(
		c.App.Writer,
		"Welcome back, %s! You are logged in.\n",
		store.State().User.Name(),
	)
	return nil
}

func register(c *cli.Context) error {
	registration := authx.Registration{
		Username:    c.String(flagUsername),
		Email:       c.String(flagEmail),
		DisplayName: c.String(flagDisplayName),
		Password:    c.String(flagPassword),
	}
	// A password given as a flag needs no confirmation
	confirmation := registration.Password

	if isInteractive() {
		if err := survey.Ask(
			registrationQuestions(registration),
			&registration,
		); err != nil {
			return errors.Wrap(err, "error prompting for registration details")
		}
		if confirmation == "" {
			if err := survey.AskOne(
				&survey.Password{Message: "Confirm password"},
				&confirmation,
			); err != nil {
				return errors.Wrap(err, "error prompting for password confirmation")
			}
		}
	}

	if err := validateRegistration(registration, confirmation); err != nil {
		return err
	}
	strength := passwordStrength(registration.Password)
	fmt.Fprintf(
		c.App.Writer,
		"Password strength: %s (%d/5)\n",
		strengthLabel(strength),
		strength,
	)

	store, closer, err := getSessionStore(c, c.String(flagServer))
	if err != nil {
		return err
	}
	defer closer()

	if result := store.Register(c.Context, registration); !result.Success {
		return errors.New(result.Error)
	}
	if err := rememberServer(c); err != nil {
		return err
	}
	fmt.Fprintf(
		c.App.Writer,
		"Welcome to Mentora, %s! You are logged in.\n",
		store.State().User.Name(),
	)
	return nil
}

// registrationQuestions asks only for what was not supplied as a flag.
func registrationQuestions(reg authx.Registration) []*survey.Question {
	qs := []*survey.Question{}
	if reg.Username == "" {
		qs = append(qs, &survey.Question{
			Name:     "Username",
			Prompt:   &survey.Input{Message: "Username"},
			Validate: survey.Required,
		})
	}
	if reg.Email == "" {
		qs = append(qs, &survey.Question{
			Name:     "Email",
			Prompt:   &survey.Input{Message: "Email"},
			Validate: survey.Required,
		})
	}
	if reg.DisplayName == "" {
		qs = append(qs, &survey.Question{
			Name:   "DisplayName",
			Prompt: &survey.Input{Message: "Display name (optional)"},
		})
	}
	if reg.Password == "" {
		qs = append(qs, &survey.Question{
			Name:     "Password",
			Prompt:   &survey.Password{Message: "Password"},
			Validate: survey.Required,
		})
	}
	return qs
}

// rememberServer saves the --server address, if one was given, so that
// subsequent commands talk to the same API server.
func rememberServer(c *cli.Context) error {
	address := c.String(flagServer)
	if address == "" {
		return nil
	}
	return errors.Wrap(
		saveConfig(&savedConfig{APIAddress: address}),
		"error persisting configuration",
	)
}

func logout(c *cli.Context, store *session.Store) error {
	if c.Args().Len() != 0 {
		return errors.New("logout requires no arguments")
	}
	store.Logout(c.Context)
	fmt.Fprintln(c.App.Writer, "Logout was successful.")
	return nil
}

func whoami(c *cli.Context, store *session.Store) error {
	output := c.String(flagOutput)
	if err := validateOutputFormat(output); err != nil {
		return err
	}

	user := store.State().User
	expiry, hasExpiry := store.TokenExpiry()

	if strings.ToLower(output) != "table" {
		whoami := struct {
			User        *authx.User `json:"user"`
			TokenExpiry *time.Time  `json:"tokenExpiry,omitempty"`
		}{
			User: user,
		}
		if hasExpiry {
			whoami.TokenExpiry = &expiry
		}
		return printStructured(c.App.Writer, output, whoami, "whoami")
	}

	expires := "unknown"
	if hasExpiry {
		expires = expiry.Local().Format(time.RFC1123)
	}
	table := uitable.New()
	table.AddRow("USERNAME", "NAME", "EMAIL", "SESSION EXPIRES")
	table.AddRow(user.Username, user.Name(), user.Email, expires)
	fmt.Fprintln(c.App.Writer, table)
	return nil
}
