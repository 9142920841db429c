package file

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Exists returns true if a file or directory exists at the specified path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// WriteAtomic replaces the contents of the file at path with data. The data
// is written to a temporary file in the same directory which is then renamed
// over path, so readers observe either the old contents or the new, never a
// mix. Missing parent directories are created.
func WriteAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return errors.Wrapf(err, "error creating directory %s", dir)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return errors.Wrapf(err, "error creating temporary file in %s", dir)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // A no-op once the rename has succeeded
	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "error writing to %s", tmpName)
	}
	if err = tmp.Chmod(perm); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "error setting permissions on %s", tmpName)
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrapf(err, "error closing %s", tmpName)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return errors.Wrapf(err, "error renaming %s to %s", tmpName, path)
	}
	return nil
}
