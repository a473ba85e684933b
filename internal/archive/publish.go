package archive

import (
	"os"
	"path/filepath"
	"time"

	"newsarchive/internal/types"
)

// Publish promotes a rewritten article into the published area for date,
// moving the file to <root>/Published/<YYYY-MM-DD>/<name>. Returns the
// destination path.
func Publish(root string, date time.Time, site, name string) (string, error) {
	src := filepath.Join(root, types.ISODate(date), site, RewrittenDir, name)
	if _, err := os.Stat(src); os.IsNotExist(err) {
		return "", &types.StorageError{Path: src, Err: types.ErrNotRewritten}
	}
	destDir := filepath.Join(root, PublishedDir, types.ISODate(date))
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", &types.StorageError{Path: destDir, Err: err}
	}
	dest := filepath.Join(destDir, name)
	if err := os.Rename(src, dest); err != nil {
		return "", &types.StorageError{Path: src, Err: err}
	}
	return dest, nil
}

// Unpublish moves a published article back into its site's Rewritten
// directory for date. Returns the destination path.
func Unpublish(root string, date time.Time, site, name string) (string, error) {
	src := filepath.Join(root, PublishedDir, types.ISODate(date), name)
	destDir := filepath.Join(root, types.ISODate(date), site, RewrittenDir)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", &types.StorageError{Path: destDir, Err: err}
	}
	dest := filepath.Join(destDir, name)
	if err := os.Rename(src, dest); err != nil {
		return "", &types.StorageError{Path: src, Err: err}
	}
	return dest, nil
}
