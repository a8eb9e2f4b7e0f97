// Package fsx provides file system helpers for writing output files safely.
package fsx

import (
	"fmt"
	"os"
	"path/filepath"
)

// renameFunc is replaced in tests to simulate rename failures.
var renameFunc = os.Rename

// PathTypeConflictError reports a destination that exists but is not a
// regular file (for example a directory).
type PathTypeConflictError struct {
	Path string
	Got  string
}

func (e *PathTypeConflictError) Error() string {
	return fmt.Sprintf("destination %q is a %s, not a regular file", e.Path, e.Got)
}

// WriteFileAtomic writes data to path through a temporary file in the same
// directory followed by a rename, so readers see either the previous file
// or the complete new one. An existing file is replaced. A symlink is
// followed and its target replaced; a dangling one is replaced itself.
// Missing parent directories are created with mode 0750.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	path = filepath.Clean(path)

	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		path = resolved
	} else if !os.IsNotExist(err) {
		return err
	}
	dir := filepath.Dir(path)

	if fi, err := os.Lstat(path); err == nil {
		if !fi.Mode().IsRegular() && fi.Mode()&os.ModeSymlink == 0 {
			return &PathTypeConflictError{Path: path, Got: fileTypeName(fi.Mode())}
		}
	} else if !os.IsNotExist(err) {
		return err
	}

	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	// The temporary file must live next to the destination for the rename
	// to be atomic.
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := renameFunc(tmpName, path); err != nil {
		return err
	}

	syncDir(dir)
	return nil
}

// fileTypeName names the type of a non-regular file.
func fileTypeName(mode os.FileMode) string {
	switch {
	case mode.IsDir():
		return "dir"
	case mode&os.ModeNamedPipe != 0:
		return "named pipe"
	case mode&os.ModeSocket != 0:
		return "socket"
	case mode&os.ModeDevice != 0:
		return "device"
	default:
		return "special file"
	}
}

// syncDir flushes the directory entry of a rename. Failures are ignored
// because some platforms cannot open directories for syncing.
func syncDir(dir string) {
	d, err := os.Open(dir) //nolint:gosec // dir is the destination chosen by the caller
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}
