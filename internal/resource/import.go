package resource

import (
	"context"
	"fmt"
	"io/fs"
)

// Import copies every fixture file at the root of fsys into w and returns
// the number of resources written.
func Import(ctx context.Context, w Writer, fsys fs.FS) (int, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return 0, fmt.Errorf("failed to read fixture directory: %w", err)
	}

	count := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name, ok := resourceName(e.Name())
		if !ok {
			continue
		}
		data, err := fs.ReadFile(fsys, e.Name())
		if err != nil {
			return count, fmt.Errorf("failed to read %s: %w", e.Name(), err)
		}
		if err := w.Put(ctx, name, data); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}
