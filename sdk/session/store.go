package session

import (
	"context"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/krancour/mentora/sdk"
	"github.com/krancour/mentora/sdk/authx"
	"github.com/krancour/mentora/sdk/meta"
	"github.com/krancour/mentora/sdk/restmachinery"
	"github.com/pkg/errors"
)

const (
	defaultLoginFailure        = "Login failed"
	defaultRegistrationFailure = "Registration failed"
)

// ErrNotAuthenticated is returned by operations that require a session when
// there is none.
var ErrNotAuthenticated = errors.New("not logged in")

// State is a snapshot of the Store's authentication state.
type State struct {
	// Token is the current bearer token, or the empty string.
	Token string
	// User is the currently authenticated User, or nil.
	User *authx.User
	// Loading is true only while Initialize is verifying a persisted session.
	Loading bool
	// LastError is the human-readable message from the most recent failed
	// authentication attempt. It is cleared when the next attempt begins.
	LastError string
}

// IsAuthenticated returns true iff there is a current User.
func (s State) IsAuthenticated() bool {
	return s.User != nil
}

// Result is the outcome of Login or Register.
type Result struct {
	Success bool
	// Error is a human-readable message suitable for display inline.
	Error string
}

// StoreOptions encapsulates optional Store configuration.
type StoreOptions struct {
	// AllowInsecureConnections indicates whether SSL-related warnings issued by
	// the API server (e.g. a self-signed certificate) should be ignored.
	AllowInsecureConnections bool
	// Navigator is steered to the login view when the API server rejects the
	// current session. If nil, no navigation takes place.
	Navigator Navigator
}

// Store is the single source of truth for who is logged in. It owns the
// in-memory session, keeps Persistence in step with it, and provides the
// APIClient every other call to the API server should be made through, so
// that a 401 from any of them ends the session.
type Store struct {
	client      sdk.APIClient
	persistence Persistence
	navigator   Navigator

	initOnce sync.Once
	navMu    sync.Mutex

	// mu serializes every mutation of state and of persistence
	mu          sync.Mutex
	state       State
	subscribers map[chan State]struct{}

	logouts sync.WaitGroup
}

// NewStore returns a Store for the API server at apiAddress. The bearer token
// attached to each request is read fresh from persistence at call time.
func NewStore(
	apiAddress string,
	persistence Persistence,
	opts *StoreOptions,
) *Store {
	if opts == nil {
		opts = &StoreOptions{}
	}
	s := &Store{
		persistence: persistence,
		navigator:   opts.Navigator,
		subscribers: map[chan State]struct{}{},
	}
	if s.navigator == nil {
		s.navigator = nopNavigator{}
	}
	s.client = sdk.NewAPIClient(
		apiAddress,
		&restmachinery.APIClientOptions{
			AllowInsecureConnections: opts.AllowInsecureConnections,
			TokenSource:              NewTokenSource(persistence),
			UnauthorizedHandler:      s,
		},
	)
	return s
}

// Client returns the APIClient bound to this Store.
func (s *Store) Client() sdk.APIClient {
	return s.client
}

// Initialize rehydrates the session from Persistence. If both a token and a
// User were persisted, they are applied immediately and then verified with
// the API server. A successful verification replaces the User with the
// server's authoritative copy; any failure, including a network failure,
// discards the session. Loading is true for the duration of the verification.
// Only the first call does anything.
func (s *Store) Initialize(ctx context.Context) error {
	var err error
	s.initOnce.Do(func() {
		err = s.initialize(ctx)
	})
	return err
}

func (s *Store) initialize(ctx context.Context) error {
	s.mu.Lock()
	token, tokenErr := s.persistence.Token()
	user, userErr := s.persistence.User()
	if tokenErr != nil || userErr != nil || token == "" || user == nil {
		if tokenErr != nil || userErr != nil {
			glog.Warningf(
				"discarding unreadable persisted session: %s",
				firstError(tokenErr, userErr),
			)
		}
		// A lone token or a lone User is of no use
		err := s.persistence.Clear()
		s.state = State{}
		s.notify()
		s.mu.Unlock()
		return errors.Wrap(err, "error clearing persisted session")
	}
	s.state = State{
		Token:   token,
		User:    user,
		Loading: true,
	}
	s.notify()
	s.mu.Unlock()

	me, verifyErr := s.client.Authx().Users().GetMe(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.notify()
	s.state.Loading = false
	if s.state.Token != token {
		// A login or logout completed in the meantime and wins
		return nil
	}
	if verifyErr != nil {
		glog.Warningf("discarding persisted session: %s", verifyErr)
		s.state.Token = ""
		s.state.User = nil
		return errors.Wrap(s.persistence.Clear(), "error clearing persisted session")
	}
	s.state.User = &me
	return errors.Wrap(s.persistence.SaveUser(&me), "error persisting user")
}

// Login exchanges username and password for a bearer token. On success, the
// token and the User it belongs to replace any existing session. On failure,
// the existing session is left untouched and LastError is set. Login never
// navigates.
func (s *Store) Login(ctx context.Context, username, password string) Result {
	s.beginAttempt()
	result, err := s.client.Authx().Sessions().Login(
		ctx,
		authx.Credentials{
			Username: username,
			Password: password,
		},
	)
	if err != nil {
		return s.fail(err, defaultLoginFailure)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	user := result.User
	if err = s.persistence.Save(result.AccessToken, &user); err != nil {
		glog.Errorf("error persisting session: %s", err)
		s.state.LastError = defaultLoginFailure
		s.notify()
		return Result{Error: defaultLoginFailure}
	}
	s.state.Token = result.AccessToken
	s.state.User = &user
	s.state.LastError = ""
	s.notify()
	return Result{Success: true}
}

// Register creates a new account and then logs in with the same credentials,
// returning the result of that login. If registration itself fails, login is
// not attempted.
func (s *Store) Register(
	ctx context.Context,
	registration authx.Registration,
) Result {
	s.beginAttempt()
	if err :=
		s.client.Authx().Sessions().Register(ctx, registration); err != nil {
		return s.fail(err, defaultRegistrationFailure)
	}
	return s.Login(ctx, registration.Username, registration.Password)
}

// Logout ends the session. Persisted and in-memory state are cleared before
// Logout returns; the API server is then notified in the background and any
// error from that notification is discarded. Logout cannot fail and calling
// it repeatedly is harmless.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	token := s.state.Token
	if token == "" {
		// Initialize may not have run
		token, _ = s.persistence.Token()
	}
	s.clear()
	s.state.LastError = ""
	s.notify()
	s.mu.Unlock()

	if token == "" {
		return
	}
	s.logouts.Add(1)
	go func() {
		defer s.logouts.Done()
		if err := s.client.Authx().Sessions().Logout(
			context.WithoutCancel(ctx),
			token,
		); err != nil {
			glog.V(2).Infof("ignoring error from logout: %s", err)
		}
	}()
}

// UpdateUser replaces the current User wholesale and persists it. No fields
// are merged; the caller supplies the complete record.
func (s *Store) UpdateUser(user authx.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Token == "" {
		return ErrNotAuthenticated
	}
	if err := s.persistence.SaveUser(&user); err != nil {
		return errors.Wrap(err, "error persisting user")
	}
	s.state.User = copyUser(&user)
	s.notify()
	return nil
}

// State returns a snapshot of the current session.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Subscribe returns a channel on which a snapshot is delivered after every
// change, along with a function that ends the subscription. A subscriber that
// falls behind only ever sees the most recent snapshot.
func (s *Store) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)
	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, ch)
			s.mu.Unlock()
			close(ch)
		})
	}
}

// TokenExpiry returns the expiry encoded in the current bearer token. The
// token is decoded but not verified, so the result is informational only. It
// returns false when there is no token or the token carries no expiry.
func (s *Store) TokenExpiry() (time.Time, bool) {
	return tokenExpiry(s.State().Token)
}

// HandleUnauthorized ends the session in response to the API server rejecting
// the current bearer token and, unless the login view is already current,
// navigates to it. The session is cleared at most once; 401s from requests
// that were already in flight find nothing left to clear.
func (s *Store) HandleUnauthorized() {
	s.mu.Lock()
	persisted, _ := s.persistence.Token()
	if s.state.Token != "" || s.state.User != nil || persisted != "" {
		glog.Warning("API server rejected the session; logging out")
		s.clear()
		s.notify()
	}
	s.mu.Unlock()
	s.navMu.Lock()
	defer s.navMu.Unlock()
	if s.navigator.CurrentView() != LoginView {
		s.navigator.NavigateToLogin()
	}
}

// Teardown waits for background logout notifications to finish or for ctx
// to be done, whichever comes first.
func (s *Store) Teardown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.logouts.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) beginAttempt() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.LastError != "" {
		s.state.LastError = ""
		s.notify()
	}
}

func (s *Store) fail(err error, defaultMsg string) Result {
	msg := meta.Detail(err)
	if msg == "" {
		msg = defaultMsg
	}
	glog.V(1).Infof("%s: %s", defaultMsg, err)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.LastError = msg
	s.notify()
	return Result{Error: msg}
}

// clear must be called with mu held.
func (s *Store) clear() {
	if err := s.persistence.Clear(); err != nil {
		glog.Errorf("error clearing persisted session: %s", err)
	}
	s.state.Token = ""
	s.state.User = nil
}

// snapshot must be called with mu held.
func (s *Store) snapshot() State {
	state := s.state
	state.User = copyUser(s.state.User)
	return state
}

// notify must be called with mu held.
func (s *Store) notify() {
	state := s.snapshot()
	for ch := range s.subscribers {
		select {
		case ch <- state:
		default:
			// Replace the stale snapshot the subscriber hasn't read yet
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- state:
			default:
			}
		}
	}
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
