// Package atomicio writes files via a temp-then-rename pattern so a reader
// (or a crash mid-write) never observes a partially written file.
package atomicio

import (
	"io/fs"
	"os"
)

// WriteFile writes data to filename atomically using the temp-then-rename
// pattern: a concurrent reader of filename either sees the old content or
// the new content, never a torn mix of both.
func WriteFile(filename string, data []byte, perm fs.FileMode) error {
	tmp := filename + ".tmp"
	if err := os.WriteFile(tmp, data, perm); err != nil {
		return err
	}
	return os.Rename(tmp, filename)
}
