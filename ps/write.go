package ps

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/matryer/try"
)

// WriteFile writes text to filename. The text is written to a temporary file in the same directory
// which is then renamed over filename, so that a failed write leaves no partial output behind.
func WriteFile(filename, text string) (fs.FileInfo, error) {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0777); err != nil {
		return nil, fmt.Errorf("creating directory %q: %w", dir, err)
	}

	var f *os.File
	err := try.Do(func(attempt int) (bool, error) {
		var ferr error
		f, ferr = os.CreateTemp(dir, "."+filepath.Base(filename)+".*")
		return attempt < 5, ferr
	})
	if err != nil {
		return nil, fmt.Errorf("open output file %q: %w", filename, err)
	}
	tmp := f.Name()

	if _, err := f.WriteString(text); err != nil {
		f.Close()
		os.Remove(tmp)
		return nil, fmt.Errorf("write output file %q: %w", filename, err)
	} else if err := f.Close(); err != nil {
		os.Remove(tmp)
		return nil, fmt.Errorf("write output file %q: %w", filename, err)
	} else if err := os.Chmod(tmp, 0644); err != nil {
		os.Remove(tmp)
		return nil, fmt.Errorf("write output file %q: %w", filename, err)
	}

	err = try.Do(func(attempt int) (bool, error) {
		return attempt < 5, os.Rename(tmp, filename)
	})
	if err != nil {
		os.Remove(tmp)
		return nil, fmt.Errorf("rename output file %q: %w", filename, err)
	}
	return os.Stat(filename)
}
