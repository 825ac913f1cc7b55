package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"testing/fstest"

	"github.com/tdewolff/test"
)

func init() {
	Error = log.New(io.Discard, "", 0)
	Warning = log.New(io.Discard, "", 0)
	Info = log.New(io.Discard, "", 0)
}

func TestCreateTasks(t *testing.T) {
	fsys := fstest.MapFS{
		"a.ps1":           {},
		"dir/b.ps1":       {},
		"dir/b.min.ps1":   {},
		"dir/.hidden.ps1": {},
		"dir/notes.txt":   {},
	}

	tests := []struct {
		input, output string
		tasks         map[string]string
	}{
		// root file
		{"a.ps1", "", map[string]string{"a.ps1": "a.min.ps1"}},
		{"a.ps1", "-", map[string]string{"a.ps1": ""}},
		{"a.ps1", ".", map[string]string{"a.ps1": "a.min.ps1"}},
		{"a.ps1", "./", map[string]string{"a.ps1": "a.min.ps1"}},
		{"a.ps1", "out", map[string]string{"a.ps1": "out"}},
		{"a.ps1", "out/", map[string]string{"a.ps1": "out/a.min.ps1"}},

		// nested file
		{"dir/b.ps1", "", map[string]string{"dir/b.ps1": "dir/b.min.ps1"}},
		{"dir/b.ps1", ".", map[string]string{"dir/b.ps1": "b.min.ps1"}},
		{"dir/b.ps1", "out", map[string]string{"dir/b.ps1": "out"}},
		{"dir/b.ps1", "out/", map[string]string{"dir/b.ps1": "out/b.min.ps1"}},
		{"dir/b.min.ps1", "", map[string]string{}},

		// directory
		{"dir", "", map[string]string{"dir/b.ps1": "dir/b.min.ps1"}},
		{"dir", ".", map[string]string{"dir/b.ps1": "dir/b.min.ps1"}},
		{"dir", "out/", map[string]string{"dir/b.ps1": "out/dir/b.min.ps1"}},
		{"dir/", "out/", map[string]string{"dir/b.ps1": "out/b.min.ps1"}},
	}

	recursive = true
	for _, tt := range tests {
		t.Run(tt.input+" => "+tt.output, func(t *testing.T) {
			tasks, _, err := createTasks(fsys, []string{tt.input}, tt.output)
			test.Error(t, err)
			if len(tasks) != len(tt.tasks) {
				test.Fail(t, fmt.Sprintf("missing %v", tt.tasks))
			}
			for _, task := range tasks {
				if dst, ok := tt.tasks[task.src]; !ok || dst != task.dst {
					test.Fail(t, fmt.Sprintf("unexpected %s => %s", task.src, task.dst))
				}
			}
		})
	}
}

func TestCreateTasksHidden(t *testing.T) {
	fsys := fstest.MapFS{
		"dir/b.ps1":       {},
		"dir/.hidden.ps1": {},
	}

	recursive, hidden = true, true
	defer func() { hidden = false }()
	tasks, _, err := createTasks(fsys, []string{"dir"}, "")
	test.Error(t, err)
	test.T(t, len(tasks), 2)
}

func TestCreateTasksGZip(t *testing.T) {
	fsys := fstest.MapFS{
		"a.ps1": {},
	}

	gzip = true
	defer func() { gzip = false }()
	tasks, _, err := createTasks(fsys, []string{"a.ps1"}, "")
	test.Error(t, err)
	test.T(t, len(tasks), 1)
	test.String(t, tasks[0].dst, "a.min.gzip.ps1")
}

func TestFilters(t *testing.T) {
	var err error
	filters = []string{"-**.Tests.ps1", "+keep.Tests.ps1"}
	filtersRegexp = make([]*regexp.Regexp, len(filters))
	for i, pattern := range filters {
		filtersRegexp[i], err = compilePattern(pattern[1:])
		test.Error(t, err)
	}
	defer func() { filters, filtersRegexp = nil, nil }()

	test.That(t, fileMatches("module.ps1"))
	test.That(t, !fileMatches("module.Tests.ps1"))
	test.That(t, fileMatches("keep.Tests.ps1"))
	test.That(t, !fileMatches("module.min.ps1"))
	test.That(t, !fileMatches("readme.md"))
}

func TestCompilePattern(t *testing.T) {
	sep := string(filepath.Separator)
	tests := []struct {
		pattern, filename string
		match             bool
	}{
		{"*.ps1", "a.ps1", true},
		{"*.ps1", "dir" + sep + "a.ps1", false},
		{"**.ps1", "dir" + sep + "a.ps1", true},
		{"a?.ps1", "ab.ps1", true},
		{"~^a+\\.ps1$", "aaa.ps1", true},
		{"\\~a.ps1", "~a.ps1", true},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			re, err := compilePattern(tt.pattern)
			test.Error(t, err)
			test.T(t, re.MatchString(tt.filename), tt.match)
		})
	}
}

func TestMinifiedName(t *testing.T) {
	test.String(t, MinifiedName("a.ps1", false), "a.min.ps1")
	test.String(t, MinifiedName("dir/a.ps1", true), "dir/a.min.gzip.ps1")
	test.String(t, MinifiedName("a.json", false), "a.min.ps1")

	test.That(t, IsMinified("a.min.ps1"))
	test.That(t, IsMinified("dir/A.Min.GZip.ps1"))
	test.That(t, !IsMinified("a.ps1"))
	test.That(t, !IsMinified("admin.ps1"))
}

func TestSummary(t *testing.T) {
	s := Summary{}
	test.Float(t, s.MinifiedPercent(), 100.0)
	s.Add(100, 40)
	s.Add(300, 60)
	test.T(t, s.Files, 2)
	test.T(t, s.OriginalSize, int64(400))
	test.T(t, s.MinifiedSize, int64(100))
	test.Float(t, s.MinifiedPercent(), 25.0)
}

func TestCache(t *testing.T) {
	dir := t.TempDir()
	c, err := OpenCache(filepath.Join(dir, "cache.db"))
	test.Error(t, err)
	defer c.Close()

	dst := filepath.Join(dir, "a.min.ps1")
	key := c.Key([]byte("$x = 1"), "options")
	test.That(t, !c.Fresh(dst, key), "output does not exist")

	test.Error(t, os.WriteFile(dst, []byte("$a=1"), 0644))
	test.That(t, !c.Fresh(dst, key), "not cached")
	test.Error(t, c.Put(dst, key))
	test.That(t, c.Fresh(dst, key))
	test.That(t, !c.Fresh(dst, c.Key([]byte("$x = 2"), "options")), "input changed")
	test.That(t, !c.Fresh(dst, c.Key([]byte("$x = 1"), "gzip")), "options changed")

	test.Error(t, os.Remove(dst))
	test.That(t, !c.Fresh(dst, key), "output removed")
}
