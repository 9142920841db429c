package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/krancour/mentora/sdk/authx"
	"github.com/krancour/mentora/sdk/meta"
	"github.com/stretchr/testify/require"
)

const (
	testUsername = "nova"
	testEmail    = "nova@x.com"
	testPassword = "abcdef"
	testToken    = "token-nova"
)

// fakeAPI is a minimal stand-in for the API server. Accounts registered with
// it can log in; tokens it has issued are accepted until revoked.
type fakeAPI struct {
	mu       sync.Mutex
	accounts map[string]authx.Registration
	tokens   map[string]string
	logouts  []string
	// loginGate and meGate, if non-nil, are received from before a login or a
	// request for the current user is answered.
	loginGate chan struct{}
	meGate    chan struct{}
	server    *httptest.Server
}

func newFakeAPI(t *testing.T) *fakeAPI {
	f := &fakeAPI{
		accounts: map[string]authx.Registration{},
		tokens:   map[string]string{},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/register", f.register)
	mux.HandleFunc("/api/auth/login", f.login)
	mux.HandleFunc("/api/auth/logout", f.logout)
	mux.HandleFunc("/api/users/me", f.authenticated(f.me))
	mux.HandleFunc("/api/users/stats", f.authenticated(f.stats))
	mux.HandleFunc("/api/tracks/enrolled", f.authenticated(f.enrolled))
	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeAPI) addAccount(username, password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts[username] = authx.Registration{
		Username:    username,
		Password:    password,
		Email:       fmt.Sprintf("%s@x.com", username),
		DisplayName: username,
	}
}

func (f *fakeAPI) issue(token, username string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[token] = username
}

func (f *fakeAPI) revokeAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = map[string]string{}
}

func (f *fakeAPI) loggedOut() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.logouts...)
}

func writeJSON(w http.ResponseWriter, status int, obj interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(obj)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func (f *fakeAPI) register(w http.ResponseWriter, r *http.Request) {
	reg := authx.Registration{}
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		writeDetail(w, http.StatusBadRequest, "Malformed request body")
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.accounts[reg.Username]; ok {
		writeDetail(w, http.StatusBadRequest, "Username already registered")
		return
	}
	f.accounts[reg.Username] = reg
	writeJSON(w, http.StatusOK, map[string]string{"username": reg.Username})
}

func (f *fakeAPI) login(w http.ResponseWriter, r *http.Request) {
	if f.loginGate != nil {
		<-f.loginGate
	}
	creds := authx.Credentials{}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeDetail(w, http.StatusBadRequest, "Malformed request body")
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[creds.Username]
	if !ok || account.Password != creds.Password {
		writeDetail(w, http.StatusUnauthorized, "Incorrect username or password")
		return
	}
	token := fmt.Sprintf("token-%s", creds.Username)
	f.tokens[token] = creds.Username
	writeJSON(
		w,
		http.StatusOK,
		map[string]interface{}{
			"access_token": token,
			"token_type":   "bearer",
			"user":         f.userFor(account),
		},
	)
}

func (f *fakeAPI) logout(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	token := bearerToken(r)
	f.logouts = append(f.logouts, token)
	delete(f.tokens, token)
	w.WriteHeader(http.StatusOK)
}

func (f *fakeAPI) authenticated(
	handle func(w http.ResponseWriter, username string),
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		username, ok := f.tokens[bearerToken(r)]
		f.mu.Unlock()
		if !ok {
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		handle(w, username)
	}
}

func (f *fakeAPI) me(w http.ResponseWriter, username string) {
	if f.meGate != nil {
		<-f.meGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	user := f.userFor(f.accounts[username])
	user["bio"] = "verified by the server"
	writeJSON(w, http.StatusOK, user)
}

func (f *fakeAPI) stats(w http.ResponseWriter, _ string) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"total_xp": 100})
}

func (f *fakeAPI) enrolled(w http.ResponseWriter, _ string) {
	writeJSON(w, http.StatusOK, []interface{}{})
}

func (f *fakeAPI) userFor(account authx.Registration) map[string]interface{} {
	return map[string]interface{}{
		"username":     account.Username,
		"email":        account.Email,
		"display_name": account.DisplayName,
		"streak_color": "violet",
	}
}

func bearerToken(r *http.Request) string {
	var token string
	_, _ = fmt.Sscanf(r.Header.Get("Authorization"), "Bearer %s", &token)
	return token
}

// recordingNavigator remembers how often it was asked to show the login
// view.
type recordingNavigator struct {
	view        atomic.Value
	navigations int32
}

func newRecordingNavigator(view string) *recordingNavigator {
	n := &recordingNavigator{}
	n.view.Store(view)
	return n
}

func (n *recordingNavigator) CurrentView() string {
	return n.view.Load().(string)
}

func (n *recordingNavigator) NavigateToLogin() {
	atomic.AddInt32(&n.navigations, 1)
	n.view.Store(LoginView)
}

func (n *recordingNavigator) count() int {
	return int(atomic.LoadInt32(&n.navigations))
}

// countingPersistence counts Clear calls.
type countingPersistence struct {
	*MemoryPersistence
	clears int32
}

func (c *countingPersistence) Clear() error {
	atomic.AddInt32(&c.clears, 1)
	return c.MemoryPersistence.Clear()
}

func newTestStore(
	t *testing.T,
	api *fakeAPI,
	persistence Persistence,
	navigator Navigator,
) *Store {
	store := NewStore(
		api.server.URL,
		persistence,
		&StoreOptions{Navigator: navigator},
	)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		require.NoError(t, store.Teardown(ctx))
	})
	return store
}

func TestNewStore(t *testing.T) {
	store := NewStore("localhost:8080", NewMemoryPersistence(), nil)
	require.NotNil(t, store.Client())
	require.Equal(t, nopNavigator{}, store.navigator)
	require.False(t, store.State().IsAuthenticated())
	require.False(t, store.State().Loading)
}

func TestStoreLogin(t *testing.T) {
	api := newFakeAPI(t)
	api.addAccount(testUsername, testPassword)
	testCases := []struct {
		name       string
		password   string
		assertions func(t *testing.T, persistence Persistence, store *Store, result Result)
	}{
		{
			name:     "valid credentials",
			password: testPassword,
			assertions: func(
				t *testing.T,
				persistence Persistence,
				store *Store,
				result Result,
			) {
				require.True(t, result.Success)
				require.Empty(t, result.Error)
				state := store.State()
				require.True(t, state.IsAuthenticated())
				require.Equal(t, testToken, state.Token)
				require.Equal(t, testUsername, state.User.Username)
				require.Empty(t, state.LastError)
				token, err := persistence.Token()
				require.NoError(t, err)
				require.Equal(t, testToken, token)
				user, err := persistence.User()
				require.NoError(t, err)
				require.Equal(t, testUsername, user.Username)
				// Fields the client doesn't model survive
				require.Contains(t, user.Extra, "streak_color")
			},
		},
		{
			name:     "invalid credentials",
			password: "wrong",
			assertions: func(
				t *testing.T,
				persistence Persistence,
				store *Store,
				result Result,
			) {
				require.False(t, result.Success)
				require.Equal(t, "Incorrect username or password", result.Error)
				state := store.State()
				require.False(t, state.IsAuthenticated())
				require.Empty(t, state.Token)
				require.Equal(t, "Incorrect username or password", state.LastError)
				token, err := persistence.Token()
				require.NoError(t, err)
				require.Empty(t, token)
			},
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			persistence := NewMemoryPersistence()
			navigator := newRecordingNavigator("dashboard")
			store := newTestStore(t, api, persistence, navigator)
			result := store.Login(context.Background(), testUsername, testCase.password)
			testCase.assertions(t, persistence, store, result)
			// Login never navigates
			require.Zero(t, navigator.count())
		})
	}
}

func TestStoreFailedLoginPreservesSession(t *testing.T) {
	api := newFakeAPI(t)
	api.addAccount(testUsername, testPassword)
	persistence := NewMemoryPersistence()
	store := newTestStore(t, api, persistence, nil)
	require.True(t, store.Login(context.Background(), testUsername, testPassword).Success)
	before := store.State()

	result := store.Login(context.Background(), testUsername, "wrong")
	require.False(t, result.Success)

	after := store.State()
	require.Equal(t, before.Token, after.Token)
	require.Equal(t, before.User, after.User)
	require.Equal(t, "Incorrect username or password", after.LastError)
	token, err := persistence.Token()
	require.NoError(t, err)
	require.Equal(t, testToken, token)

	// The next attempt clears the error
	require.True(t, store.Login(context.Background(), testUsername, testPassword).Success)
	require.Empty(t, store.State().LastError)
}

func TestStoreLoginTransportFailure(t *testing.T) {
	api := newFakeAPI(t)
	store := newTestStore(t, api, NewMemoryPersistence(), nil)
	api.server.Close()
	result := store.Login(context.Background(), testUsername, testPassword)
	require.False(t, result.Success)
	require.Equal(t, defaultLoginFailure, result.Error)
	require.Equal(t, defaultLoginFailure, store.State().LastError)
}

func TestStoreNewLoginReplacesSession(t *testing.T) {
	api := newFakeAPI(t)
	api.addAccount(testUsername, testPassword)
	api.addAccount("orion", "ghijkl")
	store := newTestStore(t, api, NewMemoryPersistence(), nil)
	require.True(t, store.Login(context.Background(), testUsername, testPassword).Success)
	require.True(t, store.Login(context.Background(), "orion", "ghijkl").Success)
	state := store.State()
	require.Equal(t, "token-orion", state.Token)
	require.Equal(t, "orion", state.User.Username)
}

func TestStoreRegister(t *testing.T) {
	testCases := []struct {
		name       string
		setup      func(api *fakeAPI)
		assertions func(t *testing.T, store *Store, result Result)
	}{
		{
			name:  "new account",
			setup: func(*fakeAPI) {},
			assertions: func(t *testing.T, store *Store, result Result) {
				require.True(t, result.Success)
				state := store.State()
				require.True(t, state.IsAuthenticated())
				require.Equal(t, testUsername, state.User.Username)
				// Display name defaulted to the username
				require.Equal(t, testUsername, state.User.DisplayName)
			},
		},
		{
			name: "username taken",
			setup: func(api *fakeAPI) {
				api.addAccount(testUsername, "something-else")
			},
			assertions: func(t *testing.T, store *Store, result Result) {
				require.False(t, result.Success)
				require.Equal(t, "Username already registered", result.Error)
				require.False(t, store.State().IsAuthenticated())
			},
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			api := newFakeAPI(t)
			testCase.setup(api)
			store := newTestStore(t, api, NewMemoryPersistence(), nil)
			result := store.Register(
				context.Background(),
				authx.Registration{
					Username: testUsername,
					Email:    testEmail,
					Password: testPassword,
				},
			)
			testCase.assertions(t, store, result)
		})
	}
}

func TestStoreRegisterTransportFailure(t *testing.T) {
	api := newFakeAPI(t)
	store := newTestStore(t, api, NewMemoryPersistence(), nil)
	api.server.Close()
	result := store.Register(
		context.Background(),
		authx.Registration{
			Username: testUsername,
			Email:    testEmail,
			Password: testPassword,
		},
	)
	require.False(t, result.Success)
	require.Equal(t, defaultRegistrationFailure, result.Error)
}

func TestStoreLogout(t *testing.T) {
	api := newFakeAPI(t)
	api.addAccount(testUsername, testPassword)
	persistence := NewMemoryPersistence()
	store := newTestStore(t, api, persistence, nil)
	require.True(t, store.Login(context.Background(), testUsername, testPassword).Success)

	store.Logout(context.Background())
	first := store.State()
	require.False(t, first.IsAuthenticated())
	require.Empty(t, first.Token)
	token, err := persistence.Token()
	require.NoError(t, err)
	require.Empty(t, token)
	user, err := persistence.User()
	require.NoError(t, err)
	require.Nil(t, user)

	// A second logout changes nothing
	store.Logout(context.Background())
	require.Equal(t, first, store.State())

	require.NoError(t, store.Teardown(context.Background()))
	// The server was told about the token that was current before logout
	require.Equal(t, []string{testToken}, api.loggedOut())
}

func TestStoreLogoutRemoteFailure(t *testing.T) {
	api := newFakeAPI(t)
	api.addAccount(testUsername, testPassword)
	persistence := NewMemoryPersistence()
	store := newTestStore(t, api, persistence, nil)
	require.True(t, store.Login(context.Background(), testUsername, testPassword).Success)
	api.server.Close()

	store.Logout(context.Background())
	require.NoError(t, store.Teardown(context.Background()))
	require.False(t, store.State().IsAuthenticated())
	token, err := persistence.Token()
	require.NoError(t, err)
	require.Empty(t, token)
}

func TestStoreLogoutAfterPendingLogin(t *testing.T) {
	api := newFakeAPI(t)
	api.addAccount(testUsername, testPassword)
	api.loginGate = make(chan struct{})
	store := newTestStore(t, api, NewMemoryPersistence(), nil)

	loginDone := make(chan Result)
	go func() {
		loginDone <- store.Login(context.Background(), testUsername, testPassword)
	}()
	// The login's response lands first...
	api.loginGate <- struct{}{}
	require.True(t, (<-loginDone).Success)
	// ...and the logout that completes after it wins
	store.Logout(context.Background())
	require.False(t, store.State().IsAuthenticated())
}

func TestStoreUpdateUser(t *testing.T) {
	api := newFakeAPI(t)
	api.addAccount(testUsername, testPassword)
	persistence := NewMemoryPersistence()
	store := newTestStore(t, api, persistence, nil)

	require.Equal(
		t,
		ErrNotAuthenticated,
		store.UpdateUser(authx.User{Username: testUsername}),
	)

	require.True(t, store.Login(context.Background(), testUsername, testPassword).Success)
	updated := authx.User{
		Username:    testUsername,
		DisplayName: "Nova Prime",
		Bio:         "Prompt enthusiast",
		AvatarIcon:  "rocket",
		Stats: &authx.UserStats{
			Level:   2,
			TotalXP: 250,
		},
	}
	require.NoError(t, store.UpdateUser(updated))
	require.Equal(t, updated, *store.State().User)

	// A fresh store reading the same persistence, with no verification step,
	// sees the same record
	rehydrated, err := persistence.User()
	require.NoError(t, err)
	require.Equal(t, updated, *rehydrated)
	token, err := persistence.Token()
	require.NoError(t, err)
	require.Equal(t, testToken, token)
}

func TestStoreStateIsolated(t *testing.T) {
	api := newFakeAPI(t)
	api.addAccount(testUsername, testPassword)
	persistence := NewMemoryPersistence()
	store := newTestStore(t, api, persistence, nil)
	require.True(t, store.Login(context.Background(), testUsername, testPassword).Success)

	user := authx.User{
		Username: testUsername,
		Stats:    &authx.UserStats{Level: 2},
		Extra:    map[string]json.RawMessage{"theme": json.RawMessage(`"dark"`)},
	}
	require.NoError(t, store.UpdateUser(user))
	// Neither the caller's record nor a snapshot reaches the Store's own
	user.Stats.Level = 7
	snapshot := store.State()
	snapshot.User.Stats.Level = 9
	snapshot.User.Extra["plan"] = json.RawMessage(`"pro"`)

	current := store.State().User
	require.Equal(t, 2, current.Stats.Level)
	require.Len(t, current.Extra, 1)
	persisted, err := persistence.User()
	require.NoError(t, err)
	require.Equal(t, 2, persisted.Stats.Level)
}

func TestStoreInitialize(t *testing.T) {
	testCases := []struct {
		name       string
		setup      func(api *fakeAPI, persistence Persistence)
		assertions func(t *testing.T, persistence Persistence, store *Store)
	}{
		{
			name:  "nothing persisted",
			setup: func(*fakeAPI, Persistence) {},
			assertions: func(t *testing.T, _ Persistence, store *Store) {
				state := store.State()
				require.False(t, state.IsAuthenticated())
				require.False(t, state.Loading)
			},
		},
		{
			name: "token without user",
			setup: func(api *fakeAPI, persistence Persistence) {
				api.issue(testToken, testUsername)
				require.NoError(t, persistence.Save(testToken, nil))
			},
			assertions: func(t *testing.T, persistence Persistence, store *Store) {
				require.False(t, store.State().IsAuthenticated())
				token, err := persistence.Token()
				require.NoError(t, err)
				require.Empty(t, token)
			},
		},
		{
			name: "valid persisted session",
			setup: func(api *fakeAPI, persistence Persistence) {
				api.addAccount(testUsername, testPassword)
				api.issue(testToken, testUsername)
				require.NoError(t, persistence.Save(
					testToken,
					&authx.User{Username: testUsername, Bio: "stale"},
				))
			},
			assertions: func(t *testing.T, persistence Persistence, store *Store) {
				state := store.State()
				require.True(t, state.IsAuthenticated())
				require.False(t, state.Loading)
				require.Equal(t, testToken, state.Token)
				// The server's copy replaced the persisted one
				require.Equal(t, "verified by the server", state.User.Bio)
				user, err := persistence.User()
				require.NoError(t, err)
				require.Equal(t, "verified by the server", user.Bio)
			},
		},
		{
			name: "persisted token rejected",
			setup: func(api *fakeAPI, persistence Persistence) {
				require.NoError(t, persistence.Save(
					"token-revoked",
					&authx.User{Username: testUsername},
				))
			},
			assertions: func(t *testing.T, persistence Persistence, store *Store) {
				state := store.State()
				require.Empty(t, state.Token)
				require.Nil(t, state.User)
				require.False(t, state.Loading)
				token, err := persistence.Token()
				require.NoError(t, err)
				require.Empty(t, token)
				user, err := persistence.User()
				require.NoError(t, err)
				require.Nil(t, user)
			},
		},
		{
			name: "API server unreachable",
			setup: func(api *fakeAPI, persistence Persistence) {
				api.server.Close()
				require.NoError(t, persistence.Save(
					testToken,
					&authx.User{Username: testUsername},
				))
			},
			assertions: func(t *testing.T, persistence Persistence, store *Store) {
				state := store.State()
				require.False(t, state.IsAuthenticated())
				require.False(t, state.Loading)
				token, err := persistence.Token()
				require.NoError(t, err)
				require.Empty(t, token)
			},
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			api := newFakeAPI(t)
			persistence := NewMemoryPersistence()
			testCase.setup(api, persistence)
			store := newTestStore(t, api, persistence, nil)
			require.NoError(t, store.Initialize(context.Background()))
			testCase.assertions(t, persistence, store)
		})
	}
}

func TestStoreInitializeOptimisticApply(t *testing.T) {
	api := newFakeAPI(t)
	api.addAccount(testUsername, testPassword)
	api.issue(testToken, testUsername)
	api.meGate = make(chan struct{})
	persistence := NewMemoryPersistence()
	require.NoError(t, persistence.Save(testToken, &authx.User{Username: testUsername}))
	store := newTestStore(t, api, persistence, nil)
	states, unsubscribe := store.Subscribe()
	defer unsubscribe()

	go func() {
		_ = store.Initialize(context.Background())
	}()

	// The persisted session is applied, and Loading is set, before
	// verification resolves
	optimistic := <-states
	require.True(t, optimistic.IsAuthenticated())
	require.True(t, optimistic.Loading)

	api.meGate <- struct{}{}
	final := <-states
	require.True(t, final.IsAuthenticated())
	require.False(t, final.Loading)
}

func TestStoreInitializeOnlyOnce(t *testing.T) {
	api := newFakeAPI(t)
	persistence := NewMemoryPersistence()
	store := newTestStore(t, api, persistence, nil)
	require.NoError(t, store.Initialize(context.Background()))
	// Persisting a session now and initializing again does nothing
	require.NoError(t, persistence.Save(testToken, &authx.User{Username: testUsername}))
	require.NoError(t, store.Initialize(context.Background()))
	require.False(t, store.State().IsAuthenticated())
}

func TestStoreUnauthorized(t *testing.T) {
	testCases := []struct {
		name                string
		view                string
		expectedNavigations int
	}{
		{
			name:                "navigates away from other views",
			view:                "dashboard",
			expectedNavigations: 1,
		},
		{
			name:                "already on the login view",
			view:                LoginView,
			expectedNavigations: 0,
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			api := newFakeAPI(t)
			api.addAccount(testUsername, testPassword)
			persistence := &countingPersistence{
				MemoryPersistence: NewMemoryPersistence(),
			}
			navigator := newRecordingNavigator(testCase.view)
			store := newTestStore(t, api, persistence, navigator)
			require.True(t, store.Login(context.Background(), testUsername, testPassword).Success)

			api.revokeAll()
			// Several requests in flight at once are all rejected
			wg := sync.WaitGroup{}
			errs := make(chan error, 4)
			for i := 0; i < 2; i++ {
				wg.Add(2)
				go func() {
					defer wg.Done()
					_, err := store.Client().Authx().Users().GetStats(context.Background())
					errs <- err
				}()
				go func() {
					defer wg.Done()
					_, err := store.Client().Tracks().ListEnrolled(context.Background())
					errs <- err
				}()
			}
			wg.Wait()
			close(errs)
			for err := range errs {
				require.True(t, meta.IsSessionExpired(err))
			}

			state := store.State()
			require.False(t, state.IsAuthenticated())
			require.Empty(t, state.Token)
			token, err := persistence.Token()
			require.NoError(t, err)
			require.Empty(t, token)
			// Cleared exactly once
			require.Equal(t, int32(1), atomic.LoadInt32(&persistence.clears))
			require.Equal(t, testCase.expectedNavigations, navigator.count())
		})
	}
}

func TestStoreTokenReadFreshPerRequest(t *testing.T) {
	api := newFakeAPI(t)
	api.addAccount(testUsername, testPassword)
	store := newTestStore(t, api, NewMemoryPersistence(), nil)
	require.True(t, store.Login(context.Background(), testUsername, testPassword).Success)
	// The just-acquired token is used immediately by the same client
	stats, err := store.Client().Authx().Users().GetStats(context.Background())
	require.NoError(t, err)
	require.Equal(t, 100, stats.TotalXP)
}

func TestStoreSubscribe(t *testing.T) {
	api := newFakeAPI(t)
	api.addAccount(testUsername, testPassword)
	store := newTestStore(t, api, NewMemoryPersistence(), nil)
	states, unsubscribe := store.Subscribe()

	require.True(t, store.Login(context.Background(), testUsername, testPassword).Success)
	require.True(t, (<-states).IsAuthenticated())

	store.Logout(context.Background())
	require.False(t, (<-states).IsAuthenticated())

	unsubscribe()
	unsubscribe()
	_, open := <-states
	require.False(t, open)
}

func TestStoreTokenExpiry(t *testing.T) {
	expiry := time.Now().Add(time.Hour).Truncate(time.Second)
	jwtToken, err := jwt.NewWithClaims(
		jwt.SigningMethodHS256,
		jwt.RegisteredClaims{
			Subject:   testUsername,
			ExpiresAt: jwt.NewNumericDate(expiry),
		},
	).SignedString([]byte("secret"))
	require.NoError(t, err)

	testCases := []struct {
		name       string
		token      string
		assertions func(t *testing.T, exp time.Time, ok bool)
	}{
		{
			name:  "no token",
			token: "",
			assertions: func(t *testing.T, _ time.Time, ok bool) {
				require.False(t, ok)
			},
		},
		{
			name:  "opaque token",
			token: testToken,
			assertions: func(t *testing.T, _ time.Time, ok bool) {
				require.False(t, ok)
			},
		},
		{
			name:  "JWT",
			token: jwtToken,
			assertions: func(t *testing.T, exp time.Time, ok bool) {
				require.True(t, ok)
				require.True(t, expiry.Equal(exp))
			},
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			store := NewStore("localhost:8080", NewMemoryPersistence(), nil)
			store.state.Token = testCase.token
			exp, ok := store.TokenExpiry()
			testCase.assertions(t, exp, ok)
		})
	}
}

func TestStoreTeardownTimeout(t *testing.T) {
	store := NewStore("localhost:8080", NewMemoryPersistence(), nil)
	store.logouts.Add(1)
	defer store.logouts.Done()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Equal(t, context.Canceled, store.Teardown(ctx))
}
