package main

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/krancour/mentora/internal/redis"
	"github.com/krancour/mentora/sdk/session"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

const (
	sessionExpiredNotice = "Your session has expired. Please log in again " +
		"with `mentora login`."
	teardownTimeout = 5 * time.Second
)

// sessionAction is a command action that operates on a session.Store.
type sessionAction func(c *cli.Context, store *session.Store) error

// terminalNavigator stands in for page navigation. "Navigating" to the login
// view prints a notice telling the user to log in again.
type terminalNavigator struct {
	mu      sync.Mutex
	w       io.Writer
	current string
}

func (t *terminalNavigator) CurrentView() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

func (t *terminalNavigator) NavigateToLogin() {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.w, "\n%s\n", sessionExpiredNotice)
	t.current = session.LoginView
}

// withSession builds a session.Store for the duration of action and waits
// for any background work the Store started to finish afterwards.
func withSession(action sessionAction) cli.ActionFunc {
	return func(c *cli.Context) error {
		store, closer, err := getSessionStore(c, "")
		if err != nil {
			return err
		}
		defer closer()
		return action(c, store)
	}
}

// authenticated is like withSession, but first rehydrates the persisted
// session and refuses to run action if nobody is logged in.
func authenticated(action sessionAction) cli.ActionFunc {
	return withSession(func(c *cli.Context, store *session.Store) error {
		if err := store.Initialize(c.Context); err != nil {
			glog.Warning(err)
		}
		if !store.State().IsAuthenticated() {
			return errors.New(
				"you are not logged in; please use `mentora login` to continue",
			)
		}
		return action(c, store)
	})
}

// getSessionStore returns a session.Store for the API server at
// serverAddress or, if that is empty, the configured API server. The returned
// function releases the Store's resources.
func getSessionStore(
	c *cli.Context,
	serverAddress string,
) (*session.Store, func(), error) {
	env, err := getEnvConfig()
	if err != nil {
		return nil, nil, err
	}
	apiAddress, err := resolveAPIAddress(serverAddress, env)
	if err != nil {
		return nil, nil, errors.Wrap(err, "error retrieving configuration")
	}
	persistence, closePersistence, err := getPersistence(env)
	if err != nil {
		return nil, nil, errors.Wrap(err, "error opening session storage")
	}
	navigator := &terminalNavigator{w: c.App.ErrWriter}
	if c.Command != nil &&
		(c.Command.Name == "login" || c.Command.Name == "register") {
		navigator.current = session.LoginView
	}
	store := session.NewStore(
		apiAddress,
		persistence,
		&session.StoreOptions{
			AllowInsecureConnections: c.Bool(flagInsecure) || env.AllowInsecure,
			Navigator:                navigator,
		},
	)
	return store, func() {
		ctx, cancel := context.WithTimeout(context.Background(), teardownTimeout)
		defer cancel()
		if err := store.Teardown(ctx); err != nil {
			glog.V(1).Infof("gave up waiting for session teardown: %s", err)
		}
		closePersistence()
	}, nil
}

func getPersistence(env envConfig) (session.Persistence, func(), error) {
	if env.SessionBackend == sessionBackendRedis {
		client, prefix, err := redis.Client()
		if err != nil {
			return nil, nil, err
		}
		return session.NewRedisPersistence(
				client,
				&session.RedisPersistenceOptions{Prefix: prefix},
			), func() {
				if err := client.Close(); err != nil {
					glog.Error(errors.Wrap(err, "error closing redis client"))
				}
			}, nil
	}
	path, err := session.DefaultFilePath()
	if err != nil {
		return nil, nil, err
	}
	return session.NewFilePersistence(path), func() {}, nil
}
