package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/matryer/try"
)

// IsDir returns true if the passed string looks like it specifies a directory, false otherwise.
func IsDir(dir string) bool {
	if 0 < len(dir) && dir[len(dir)-1] == os.PathSeparator {
		return true
	}
	info, err := os.Lstat(dir)
	return err == nil && info.Mode().IsDir() && info.Mode()&os.ModeSymlink == 0
}

// SameFile returns true if the two file paths specify the same path.
// While Linux is case-preserving case-sensitive (and therefore a string comparison will work),
// Windows is case-preserving case-insensitive; we use os.SameFile() to work cross-platform.
func SameFile(filename1 string, filename2 string) (bool, error) {
	fi1, err := os.Stat(filename1)
	if err != nil {
		return false, err
	}

	fi2, err := os.Stat(filename2)
	if err != nil {
		return false, err
	}
	return os.SameFile(fi1, fi2), nil
}

// IsMinified returns true for files following the minified naming convention, such as
// script.min.ps1 or script.min.gzip.ps1.
func IsMinified(filename string) bool {
	match, _ := filepath.Match("*.min*.ps1", strings.ToLower(filepath.Base(filename)))
	return match
}

// MinifiedName returns the output name of a script: the .ps1 extension is replaced by .min.ps1, or
// by .min.gzip.ps1 for compressed output. Other extensions, such as those of syntax tree files, are
// replaced likewise.
func MinifiedName(filename string, gzip bool) string {
	ext := filepath.Ext(filename)
	name := filename[:len(filename)-len(ext)]
	if gzip {
		return name + ".min.gzip.ps1"
	}
	return name + ".min.ps1"
}

func openInputFile(input string) (io.ReadCloser, error) {
	var r *os.File
	if input == "" {
		r = os.Stdin
	} else {
		err := try.Do(func(attempt int) (bool, error) {
			var ferr error
			r, ferr = os.Open(input)
			return attempt < 5, ferr
		})

		if err != nil {
			return nil, fmt.Errorf("open input file %q: %w", input, err)
		}
	}
	return r, nil
}
