// Package persist owns everything that touches disk: the workspace
// filesystem, the memory snapshot file, and the serial-bridge line
// protocol used to move memory across sessions.
package persist

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// ErrNotFound is returned when a requested file does not exist.
var ErrNotFound = errors.New("persist: file not found")

// DefaultStateDir resolves the per-user state directory (~/.genesis).
func DefaultStateDir() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".genesis"), nil
}

// Filesystem is a workspace rooted at a single directory. All paths are
// relative to the root; callers never see absolute paths.
type Filesystem struct {
	fs     afero.Fs
	logger *zap.Logger
}

// NewFilesystem roots a workspace at dir on the OS filesystem, creating
// the directory if needed.
func NewFilesystem(dir string, logger *zap.Logger) (*Filesystem, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state dir %s: %w", dir, err)
	}
	return NewFilesystemFrom(afero.NewBasePathFs(afero.NewOsFs(), dir), logger), nil
}

// NewFilesystemFrom wraps an existing afero filesystem. Tests pass an
// in-memory one.
func NewFilesystemFrom(fs afero.Fs, logger *zap.Logger) *Filesystem {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Filesystem{fs: fs, logger: logger.Named("persist")}
}

// ReadText returns the file's contents, or ErrNotFound.
func (f *Filesystem) ReadText(path string) (string, error) {
	data, err := afero.ReadFile(f.fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

// WriteText writes content, creating parent directories as needed.
func (f *Filesystem) WriteText(path, content string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "/" {
		if err := f.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating parent of %s: %w", path, err)
		}
	}
	if err := afero.WriteFile(f.fs, path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// EnsureDirectory creates the directory and any missing parents.
func (f *Filesystem) EnsureDirectory(path string) error {
	if err := f.fs.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", path, err)
	}
	return nil
}

// Exists reports whether the path exists.
func (f *Filesystem) Exists(path string) (bool, error) {
	ok, err := afero.Exists(f.fs, path)
	if err != nil {
		return false, fmt.Errorf("checking %s: %w", path, err)
	}
	return ok, nil
}

// List returns the names of regular files directly under dir. A missing
// directory lists as empty.
func (f *Filesystem) List(dir string) ([]string, error) {
	infos, err := afero.ReadDir(f.fs, dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}
	var names []string
	for _, info := range infos {
		if !info.IsDir() && !strings.HasPrefix(info.Name(), ".") {
			names = append(names, info.Name())
		}
	}
	return names, nil
}
