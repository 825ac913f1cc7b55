package main

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher is a wrapper for watching file changes in directories.
type Watcher struct {
	watcher   *fsnotify.Watcher
	dirs      map[string]bool
	paths     map[string]bool
	recursive bool
}

// NewWatcher returns a new Watcher.
func NewWatcher(recursive bool) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{watcher, map[string]bool{}, map[string]bool{}, recursive}, nil
}

// Close closes the watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// AddPath adds a new path to watch.
func (w *Watcher) AddPath(root string) error {
	w.paths[root] = true

	info, err := os.Lstat(root)
	if err != nil {
		return err
	}

	if info.Mode().IsRegular() {
		root = filepath.Dir(root)
		if w.dirs[root] {
			return nil
		}
		if err := w.watcher.Add(root); err != nil {
			return err
		}
		w.dirs[root] = true
	} else if info.Mode().IsDir() && w.recursive {
		return fs.WalkDir(NewFS(), filepath.Clean(root), func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if w.dirs[path] {
					return fs.SkipDir
				}
				if err := w.watcher.Add(path); err != nil {
					return err
				}
				w.dirs[path] = true
			}
			return nil
		})
	}
	return nil
}

// settle is the quiet period after the last write to a file before it is reported.
const settle = 100 * time.Millisecond

// skip returns true for files that must not trigger a run: minified outputs, hidden files such as
// the temporary files of ps.WriteFile, and files outside the watched paths.
func (w *Watcher) skip(name string) bool {
	if IsMinified(name) || !hidden && strings.HasPrefix(filepath.Base(name), ".") {
		return true
	}
	name = filepath.Clean(name)
	for path := range w.paths {
		path = filepath.Clean(path)
		if path == name || strings.HasPrefix(name, path+string(os.PathSeparator)) {
			return false
		}
	}
	return true
}

// Run watches for file changes. A file is reported once no write to it was seen for the settle
// period, so that a save in several writes runs once.
func (w *Watcher) Run() chan string {
	files := make(chan string, 10)
	go func() {
		pending := map[string]time.Time{}
		ticker := time.NewTicker(settle / 2)
		defer ticker.Stop()
		for w.watcher.Events != nil && w.watcher.Errors != nil {
			select {
			case event, ok := <-w.watcher.Events:
				if !ok {
					w.watcher.Events = nil
					break
				} else if w.skip(event.Name) {
					break
				}

				info, err := os.Lstat(event.Name)
				if err != nil {
					break
				}
				if info.Mode().IsDir() {
					if w.recursive && event.Has(fsnotify.Create) {
						if err := w.AddPath(event.Name); err != nil {
							Error.Println(err)
						}
					}
				} else if info.Mode().IsRegular() && (event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
					pending[event.Name] = time.Now()
				}
			case now := <-ticker.C:
				for name, t := range pending {
					if settle <= now.Sub(t) {
						delete(pending, name)
						files <- name
					}
				}
			case err, ok := <-w.watcher.Errors:
				if !ok {
					w.watcher.Errors = nil
					break
				}
				Error.Println(err)
			}
		}
		close(files)
	}()
	return files
}
