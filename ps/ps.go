// Package ps minifies PowerShell scripts. It compresses a parsed syntax tree into the shortest
// equivalent text: whitespace and comments are dropped, assigned variables get short names and
// commands are replaced by their shortest alias. The result can be wrapped in a self-decoding gzip
// envelope.
package ps // import "github.com/StartAutomating/PSMinifier/ps"

import (
	"fmt"
	"io"
	"io/fs"
	"strings"

	minify "github.com/StartAutomating/PSMinifier"
	"github.com/StartAutomating/PSMinifier/ast"
)

// Options are the output options of a compression.
type Options struct {
	Name              string // variable the result is assigned to
	Anonymous         bool   // do not assign the result to Name
	GZip              bool   // wrap the result in a compressed envelope
	DotSource         bool   // dot-source the result in the caller's scope
	SingleLine        bool   // do not wrap the base64 lines of the envelope
	FirstVariableName string // first generated variable name, "a" by default
	OutputPath        string // write the result to this file instead of returning it
	PassThru          bool   // return the file info of OutputPath
}

// Result is the outcome of a compression. Text is empty when the result was written to a file, File
// is only set with PassThru.
type Result struct {
	Text string
	File fs.FileInfo
}

////////////////////////////////////////////////////////////////

// Minifier is a PowerShell minifier.
type Minifier struct {
	Options
	KeepVarNames     bool
	KeepCommandNames bool
	Aliases          AliasProvider // core alias profile by default
	MaxDepth         int           // DefaultMaxDepth when zero

	// Format is the input format of Minify: "json" (default) or "cbor" for a syntax tree, or
	// "source" for PowerShell source which is parsed by Parser.
	Format string
	Parser *Parser
}

// DefaultMinifier is the default minifier.
var DefaultMinifier = &Minifier{}

// Compress minifies tree with the given options using the default minifier settings.
func Compress(tree *ast.ScriptBody, o Options) (*Result, error) {
	return (&Minifier{Options: o}).Compress(tree)
}

// Minify minifies PowerShell data, reading from r and writing to w.
func Minify(m *minify.M, w io.Writer, r io.Reader, params map[string]string) error {
	return DefaultMinifier.Minify(m, w, r, params)
}

// Compress minifies tree and applies the output options. With OutputPath set the result is written
// to that file.
func (o *Minifier) Compress(tree *ast.ScriptBody) (*Result, error) {
	text, err := o.compress(tree)
	if err != nil {
		return nil, err
	}

	if o.OutputPath == "" {
		return &Result{Text: text}, nil
	}
	info, err := WriteFile(o.OutputPath, text)
	if err != nil {
		return nil, err
	}
	result := &Result{}
	if o.PassThru {
		result.File = info
	}
	return result, nil
}

// Minify minifies a syntax tree or script read from r, as selected by Format, and writes the
// result to w. OutputPath is ignored. The "format" mediatype parameter overrides Format.
func (o *Minifier) Minify(_ *minify.M, w io.Writer, r io.Reader, params map[string]string) error {
	format := o.Format
	if f, ok := params["format"]; ok {
		format = f
	}

	var tree *ast.ScriptBody
	var err error
	switch strings.ToLower(format) {
	case "", "json":
		tree, err = ast.DecodeJSON(r)
	case "cbor":
		tree, err = ast.DecodeCBOR(r)
	case "source":
		parser := o.Parser
		if parser == nil {
			parser = &Parser{}
		}
		tree, err = parser.Parse(r)
	default:
		return fmt.Errorf("unknown input format %q", format)
	}
	if err == ast.ErrEmpty {
		return nil
	} else if err != nil {
		return err
	}

	text, err := o.compress(tree)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, text)
	return err
}

// compress minifies tree in a new session and applies the output options.
func (o *Minifier) compress(tree *ast.ScriptBody) (string, error) {
	text, err := NewSession(o).Compress(tree)
	if err != nil {
		return "", err
	}
	return Wrap(text, o.Options)
}
