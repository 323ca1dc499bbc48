// Package store persists finished receipt PDFs.
//
// Both backends satisfy levyreceipt.Saver and only ever see complete
// documents.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrBadName is returned for object names that are empty or contain a path.
var ErrBadName = errors.New("store: invalid receipt name")

// checkName rejects names that would escape the target directory or prefix.
func checkName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return fmt.Errorf("%w: %q", ErrBadName, name)
	}
	return nil
}

// Dir writes receipts as files in a local directory.
type Dir struct {
	Path string
}

// NewDir returns a Dir rooted at path. The directory is created on first save.
func NewDir(path string) *Dir {
	return &Dir{Path: path}
}

// Save writes data to <Path>/<name>, replacing any existing file. The file is
// written under a temporary name first so a reader never sees a partial PDF.
func (d *Dir) Save(ctx context.Context, name string, data []byte) error {
	if err := checkName(name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(d.Path, 0o755); err != nil {
		return fmt.Errorf("store: creating %s: %w", d.Path, err)
	}

	tmp, err := os.CreateTemp(d.Path, "."+name+".*")
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("store: writing %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("store: writing %s: %w", name, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("store: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(d.Path, name)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("store: saving %s: %w", name, err)
	}
	return nil
}

// Open returns the stored receipt called name.
func (d *Dir) Open(name string) ([]byte, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	return os.ReadFile(filepath.Join(d.Path, name))
}
