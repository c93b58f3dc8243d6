package resource

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
)

// bundle holds the default fixture set shipped with glucosim.
//
//go:embed bundle/*.json
var bundle embed.FS

// FS loads resources from files in an fs.FS.
type FS struct {
	fsys   fs.FS
	driver Driver
}

// NewFS wraps an arbitrary fs.FS (for example testing/fstest.MapFS).
func NewFS(fsys fs.FS) *FS {
	return &FS{fsys: fsys, driver: DriverDir}
}

// Bundle returns the embedded fixture files rooted at their directory.
func Bundle() fs.FS {
	sub, err := fs.Sub(bundle, "bundle")
	if err != nil {
		// The embed pattern guarantees the directory exists.
		panic(fmt.Sprintf("resource: embedded bundle: %v", err))
	}
	return sub
}

// NewEmbedded returns a loader over the fixtures compiled into the binary.
func NewEmbedded() *FS {
	return &FS{fsys: Bundle(), driver: DriverEmbedded}
}

// NewDir returns a loader over JSON files in root.
func NewDir(root string) (*FS, error) {
	if root == "" {
		return nil, fmt.Errorf("fixture directory required")
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat fixture directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("fixture path %s is not a directory", root)
	}
	return &FS{fsys: os.DirFS(root), driver: DriverDir}, nil
}

// Driver returns the backend kind.
func (l *FS) Driver() Driver { return l.driver }

// Load reads <name>.json from the file system.
func (l *FS) Load(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !validName(name) {
		return nil, fmt.Errorf("invalid resource name %q", name)
	}
	data, err := fs.ReadFile(l.fsys, fileName(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("failed to read resource %s: %w", name, err)
	}
	return data, nil
}

// List returns the names of all fixture files at the root of the file system.
func (l *FS) List(ctx context.Context) ([]string, error) {
	entries, err := fs.ReadDir(l.fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to list resources: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if n, ok := resourceName(e.Name()); ok {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names, nil
}
