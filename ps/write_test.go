package ps

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tdewolff/test"
)

func TestWriteFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	filename := filepath.Join(dir, "script.min.ps1")

	info, err := WriteFile(filename, "$a=1")
	test.Error(t, err)
	test.String(t, info.Name(), "script.min.ps1")
	test.T(t, info.Size(), int64(4))

	info, err = WriteFile(filename, "echo 1")
	test.Error(t, err)
	test.T(t, info.Size(), int64(6))

	b, err := os.ReadFile(filename)
	test.Error(t, err)
	test.String(t, string(b), "echo 1")

	entries, err := os.ReadDir(dir)
	test.Error(t, err)
	test.T(t, len(entries), 1, "no temporary files left behind")
}

func TestCompressOutputPath(t *testing.T) {
	tree := script(assign(v("x"), "=", expr(lit("1"))))
	filename := filepath.Join(t.TempDir(), "x.min.ps1")

	result, err := Compress(tree, Options{OutputPath: filename})
	test.Error(t, err)
	test.String(t, result.Text, "")
	test.That(t, result.File == nil)

	b, err := os.ReadFile(filename)
	test.Error(t, err)
	test.String(t, string(b), "$a=1")

	result, err = Compress(tree, Options{OutputPath: filename, PassThru: true, GZip: true})
	test.Error(t, err)
	test.That(t, result.File != nil)
	test.String(t, result.File.Name(), "x.min.ps1")

	b, err = os.ReadFile(filename)
	test.Error(t, err)
	test.That(t, strings.HasPrefix(string(b), envelopePrefix))
	test.T(t, result.File.Size(), int64(len(b)))
}
