package session

import (
	"encoding/json"
	"sync"

	"github.com/krancour/mentora/sdk/authx"
	"golang.org/x/oauth2"
)

// Persistence is the contract for storage that outlives a single process.
// It holds two entries: a bearer token and a serialized User. Implementations
// must be safe for concurrent use.
type Persistence interface {
	// Token returns the persisted bearer token, or the empty string if there
	// is none.
	Token() (string, error)
	// User returns the persisted User, or nil if there is none.
	User() (*authx.User, error)
	// Save replaces both entries. Implementations should replace them together
	// where the underlying storage allows it.
	Save(token string, user *authx.User) error
	// SaveUser replaces the User entry, leaving the token as it is.
	SaveUser(user *authx.User) error
	// Clear removes both entries. Clearing already empty storage is not an
	// error.
	Clear() error
}

// MemoryPersistence is a process-scoped Persistence. It is mainly useful for
// tests and for embedding the Store in longer running processes that have no
// need to survive a restart.
type MemoryPersistence struct {
	mu    sync.RWMutex
	token string
	user  *authx.User
}

// NewMemoryPersistence returns an empty MemoryPersistence.
func NewMemoryPersistence() *MemoryPersistence {
	return &MemoryPersistence{}
}

func (m *MemoryPersistence) Token() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, nil
}

func (m *MemoryPersistence) User() (*authx.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copyUser(m.user), nil
}

func (m *MemoryPersistence) Save(token string, user *authx.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	m.user = copyUser(user)
	return nil
}

func (m *MemoryPersistence) SaveUser(user *authx.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = copyUser(user)
	return nil
}

func (m *MemoryPersistence) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	m.user = nil
	return nil
}

// copyUser returns a deep copy of user, so that no caller can reach another's
// Stats or Extra.
func copyUser(user *authx.User) *authx.User {
	if user == nil {
		return nil
	}
	u := *user
	if user.Stats != nil {
		stats := *user.Stats
		u.Stats = &stats
	}
	if user.Extra != nil {
		u.Extra = make(map[string]json.RawMessage, len(user.Extra))
		for k, v := range user.Extra {
			u.Extra[k] = append(json.RawMessage(nil), v...)
		}
	}
	return &u
}

// tokenSource adapts Persistence to oauth2.TokenSource. The token is read
// from persistence every time it is asked for, never cached.
type tokenSource struct {
	persistence Persistence
}

// NewTokenSource returns an oauth2.TokenSource that reads the bearer token
// from p on every call.
func NewTokenSource(p Persistence) oauth2.TokenSource {
	return &tokenSource{persistence: p}
}

func (t *tokenSource) Token() (*oauth2.Token, error) {
	token, err := t.persistence.Token()
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	}, nil
}
