// Package minify relates mediatypes to PowerShell minifiers and minifies data through them. The
// minifiers themselves live in package ps; package minify/minify holds a registry with all of them
// registered.
package minify // import "github.com/StartAutomating/PSMinifier"

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"regexp"
	"sync"

	"github.com/kballard/go-shellquote"
	"github.com/tdewolff/parse/v2"
)

// Mediatypes handled by the PowerShell minifiers.
const (
	MediatypeTreeJSON = "application/x-powershell-ast+json"
	MediatypeTreeCBOR = "application/x-powershell-ast+cbor"
	MediatypeScript   = "text/x-powershell"
)

// ErrNotExist is returned when no minifier exists for a given mediatype.
var ErrNotExist = errors.New("minifier does not exist for mimetype")

////////////////////////////////////////////////////////////////

// Minifier is the interface for minifiers. The *M parameter is used for minifying embedded
// resources.
type Minifier interface {
	Minify(*M, io.Writer, io.Reader, map[string]string) error
}

// MinifierFunc is a function that implements Minifier.
type MinifierFunc func(*M, io.Writer, io.Reader, map[string]string) error

// Minify calls f(m, w, r, params).
func (f MinifierFunc) Minify(m *M, w io.Writer, r io.Reader, params map[string]string) error {
	return f(m, w, r, params)
}

type patternMinifier struct {
	pattern *regexp.Regexp
	Minifier
}

type cmdMinifier struct {
	cmd *exec.Cmd
}

func (c *cmdMinifier) Minify(_ *M, w io.Writer, r io.Reader, _ map[string]string) error {
	cmd := &exec.Cmd{}
	*cmd = *c.cmd // concurrency safety

	stderr := &bytes.Buffer{}
	cmd.Stdout = w
	cmd.Stdin = r
	cmd.Stderr = stderr
	if err := cmd.Run(); err != nil {
		if 0 < stderr.Len() {
			return fmt.Errorf("%s: %w", bytes.TrimSpace(stderr.Bytes()), err)
		}
		return err
	}
	return nil
}

////////////////////////////////////////////////////////////////

// M holds a map of mediatype => Minifier and a list of patterns for mediatypes that are matched
// by regular expression.
type M struct {
	mutex   sync.RWMutex
	literal map[string]Minifier
	pattern []patternMinifier
}

// New returns a new M.
func New() *M {
	return &M{
		literal: map[string]Minifier{},
	}
}

// Add adds a minifier to the mediatype => Minifier map.
func (m *M) Add(mediatype string, minifier Minifier) {
	m.mutex.Lock()
	m.literal[mediatype] = minifier
	m.mutex.Unlock()
}

// AddFunc adds a minify function to the mediatype => Minifier map.
func (m *M) AddFunc(mediatype string, minifier MinifierFunc) {
	m.Add(mediatype, minifier)
}

// AddRegexp adds a minifier for all mediatypes matching the pattern.
func (m *M) AddRegexp(pattern *regexp.Regexp, minifier Minifier) {
	m.mutex.Lock()
	m.pattern = append(m.pattern, patternMinifier{pattern, minifier})
	m.mutex.Unlock()
}

// AddFuncRegexp adds a minify function for all mediatypes matching the pattern.
func (m *M) AddFuncRegexp(pattern *regexp.Regexp, minifier MinifierFunc) {
	m.AddRegexp(pattern, minifier)
}

// AddCmd adds a minify command to the mediatype => Minifier map. The command reads the data from
// stdin and writes the result to stdout.
func (m *M) AddCmd(mediatype string, cmd *exec.Cmd) {
	m.Add(mediatype, &cmdMinifier{cmd})
}

// AddCmdLine adds a minify command given as a shell-quoted command line, such as
// `pwsh -NoProfile -File minify.ps1`.
func (m *M) AddCmdLine(mediatype string, cmdLine string) error {
	args, err := shellquote.Split(cmdLine)
	if err != nil {
		return err
	} else if len(args) == 0 {
		return fmt.Errorf("empty command for %s", mediatype)
	}
	m.AddCmd(mediatype, exec.Command(args[0], args[1:]...))
	return nil
}

// Match returns the pattern, parameters and minifier for a mediatype, parameters are the
// mediatype parameters such as format=cbor.
func (m *M) Match(mediatype string) (string, map[string]string, Minifier) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	mimetype, params := parse.Mediatype([]byte(mediatype))
	if minifier, ok := m.literal[string(mimetype)]; ok { // string conversion is optimized away
		return string(mimetype), params, minifier
	}

	for _, minifier := range m.pattern {
		if minifier.pattern.Match(mimetype) {
			return minifier.pattern.String(), params, minifier
		}
	}
	return string(mimetype), params, nil
}

// Minify minifies the content of a Reader and writes it to a Writer. An error is returned when no
// such mediatype exists (ErrNotExist) or when an error occurred in the minifier function.
func (m *M) Minify(mediatype string, w io.Writer, r io.Reader) error {
	_, params, minifier := m.Match(mediatype)
	if minifier == nil {
		return ErrNotExist
	}
	return minifier.Minify(m, w, r, params)
}

// Bytes minifies an array of bytes (safe for concurrent use). When an error occurs it returns the
// original array and the error.
func (m *M) Bytes(mediatype string, v []byte) ([]byte, error) {
	out := bytes.NewBuffer(make([]byte, 0, len(v)))
	if err := m.Minify(mediatype, out, bytes.NewReader(v)); err != nil {
		return v, err
	}
	return out.Bytes(), nil
}

// String minifies a string (safe for concurrent use). When an error occurs it returns the
// original string and the error.
func (m *M) String(mediatype string, v string) (string, error) {
	out := bytes.NewBuffer(make([]byte, 0, len(v)))
	if err := m.Minify(mediatype, out, bytes.NewBufferString(v)); err != nil {
		return v, err
	}
	return out.String(), nil
}

// Reader wraps a Reader and minifies the stream. Errors from the minifier are returned by the
// reader.
func (m *M) Reader(mediatype string, r io.Reader) io.Reader {
	pr, pw := io.Pipe()
	go func() {
		pw.CloseWithError(m.Minify(mediatype, pw, r))
	}()
	return pr
}
