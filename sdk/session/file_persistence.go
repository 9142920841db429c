package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/krancour/mentora/internal/file"
	"github.com/krancour/mentora/sdk/authx"
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
)

type record struct {
	AccessToken string      `json:"access_token,omitempty"`
	User        *authx.User `json:"user,omitempty"`
}

// FilePersistence keeps the token and User together in a single JSON file.
// Every write replaces the whole file atomically, so the two entries can never
// be observed out of step with one another.
type FilePersistence struct {
	path string
	mu   sync.Mutex
}

// NewFilePersistence returns a FilePersistence backed by the file at path.
// The file need not exist yet.
func NewFilePersistence(path string) *FilePersistence {
	return &FilePersistence{path: path}
}

// DefaultFilePath returns the location of the session file within the
// current user's mentora home directory (~/.mentora/session).
func DefaultFilePath() (string, error) {
	homeDir, err := homedir.Dir()
	if err != nil {
		return "", errors.Wrap(err, "error locating user's home directory")
	}
	return filepath.Join(homeDir, ".mentora", "session"), nil
}

// Path returns the path of the underlying file.
func (f *FilePersistence) Path() string {
	return f.path
}

func (f *FilePersistence) Token() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, err := f.read()
	return rec.AccessToken, err
}

func (f *FilePersistence) User() (*authx.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, err := f.read()
	return rec.User, err
}

func (f *FilePersistence) Save(token string, user *authx.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.write(record{AccessToken: token, User: user})
}

func (f *FilePersistence) SaveUser(user *authx.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, err := f.read()
	if err != nil {
		return err
	}
	rec.User = user
	return f.write(rec)
}

func (f *FilePersistence) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "error deleting session file %s", f.path)
	}
	return nil
}

func (f *FilePersistence) read() (record, error) {
	rec := record{}
	if !file.Exists(f.path) {
		return rec, nil
	}
	recBytes, err := os.ReadFile(f.path)
	if err != nil {
		return rec, errors.Wrapf(err, "error reading session file %s", f.path)
	}
	if err = json.Unmarshal(recBytes, &rec); err != nil {
		return record{}, errors.Wrapf(
			err,
			"error parsing session file %s",
			f.path,
		)
	}
	return rec, nil
}

func (f *FilePersistence) write(rec record) error {
	recBytes, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrap(err, "error marshaling session")
	}
	return errors.Wrapf(
		file.WriteAtomic(f.path, recBytes, 0600),
		"error writing session file %s",
		f.path,
	)
}
