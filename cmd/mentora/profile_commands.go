package main

import (
	"fmt"

	"github.com/krancour/mentora/sdk/authx"
	"github.com/krancour/mentora/sdk/session"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

var profileCommand = &cli.Command{
	Name:  "profile",
	Usage: "Manage your profile",
	Subcommands: []*cli.Command{
		{
			Name:  "update",
			Usage: "Update your profile; fields that are not specified are unchanged",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  flagDisplayName,
					Usage: "The name shown to other learners",
				},
				&cli.StringFlag{
					Name:    flagEmail,
					Aliases: []string{"e"},
					Usage:   "Your email address",
				},
				&cli.StringFlag{
					Name:  flagBio,
					Usage: "A few words about yourself",
				},
				&cli.StringFlag{
					Name:  flagAvatar,
					Usage: "The name of your avatar icon",
				},
			},
			Action: authenticated(profileUpdate),
		},
	},
}

func profileUpdate(c *cli.Context, store *session.Store) error {
	update := authx.ProfileUpdate{
		DisplayName: c.String(flagDisplayName),
		Email:       c.String(flagEmail),
		Bio:         c.String(flagBio),
		AvatarIcon:  c.String(flagAvatar),
	}
	if update == (authx.ProfileUpdate{}) {
		return errors.New("nothing to update; specify at least one field")
	}
	if update.Email != "" && !emailRegex.MatchString(update.Email) {
		return errors.New("Please enter a valid email address")
	}

	user, err := store.Client().Authx().Users().UpdateProfile(c.Context, update)
	if err != nil {
		return err
	}
	// The server's record is authoritative
	if err := store.UpdateUser(user); err != nil {
		return errors.Wrap(err, "error saving updated profile")
	}

	fmt.Fprintf(c.App.Writer, "Profile for %s updated.\n", user.Name())
	return nil
}
