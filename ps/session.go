package ps

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/StartAutomating/PSMinifier/ast"
	"github.com/tdewolff/parse/v2"
)

// DefaultMaxDepth is the nesting depth limit used when Minifier.MaxDepth is zero.
const DefaultMaxDepth = 1000

var (
	// ErrMalformed is returned for trees that violate the tree invariants, such as an assignment
	// without a value.
	ErrMalformed = errors.New("malformed syntax tree")

	// ErrMaxDepth is returned when the tree is nested deeper than the depth limit.
	ErrMaxDepth = errors.New("syntax tree nested too deeply")
)

// Error is a fatal compression error at a node. Line, Column and Context are set when the source
// text of the tree is known.
type Error struct {
	Node    ast.Node
	Err     error
	Line    int
	Column  int
	Context string
}

func (e *Error) Error() string {
	msg := e.Err.Error()
	if e.Node != nil {
		msg = fmt.Sprintf("%s at %s", msg, nodeName(e.Node))
	}
	if 0 < e.Line {
		return fmt.Sprintf("%s on line %d and column %d\n%s", msg, e.Line, e.Column, e.Context)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func nodeName(n ast.Node) string {
	name := fmt.Sprintf("%T", n)
	return strings.TrimPrefix(name, "*ast.")
}

////////////////////////////////////////////////////////////////

// Session is the state of one compression: the rename table, the alias cache and the output
// buffer. Sessions are not safe for concurrent use; use one session per tree.
type Session struct {
	o       *Minifier
	src     string // source text of the root, for error positions
	base    int    // offset of the root
	buf     []byte
	names   *renamer
	aliases *aliasCache
	stack   []ast.Node
	funcs   map[string]struct{} // lower cased names of functions defined in the tree
	err     error
}

// NewSession returns a session for one tree compressed with the options of o.
func NewSession(o *Minifier) *Session {
	if o == nil {
		o = DefaultMinifier
	}
	var provider AliasProvider
	if !o.KeepCommandNames {
		provider = o.Aliases
		if provider == nil {
			provider = coreAliases
		}
	}
	return &Session{
		o:       o,
		names:   newRenamer(o.FirstVariableName),
		aliases: newAliasCache(provider),
		funcs:   map[string]struct{}{},
	}
}

// Compress returns the minified text of tree.
func (s *Session) Compress(tree *ast.ScriptBody) (string, error) {
	if tree == nil {
		return "", &Error{Err: fmt.Errorf("%w: no tree", ErrMalformed)}
	} else if err := checkFirstVariableName(s.o.FirstVariableName); err != nil {
		return "", err
	}
	s.src, s.base = tree.Text, tree.Pos
	s.scan(tree)
	if s.err != nil {
		return "", s.err
	}
	s.names.allocate()
	s.minifyBody(tree)
	if s.err != nil {
		return "", s.err
	}
	return string(s.buf), nil
}

// fail sets the sticky error of the session, only the first error is kept.
func (s *Session) fail(n ast.Node, err error) {
	if s.err != nil {
		return
	}
	e := &Error{Node: n, Err: err}
	if n != nil && s.src != "" {
		offset := ast.ByteOffset(s.src, n.Offset()-s.base)
		perr := parse.NewError(bytes.NewBufferString(s.src), offset, err.Error())
		e.Line, e.Column, e.Context = perr.Position()
	}
	s.err = e
}

// enter pushes n on the node stack and fails once the stack passes the depth limit. Every enter is
// paired with an exit, also when it returns false.
func (s *Session) enter(n ast.Node) bool {
	s.stack = append(s.stack, n)
	if s.maxDepth() < len(s.stack) {
		s.fail(n, ErrMaxDepth)
	}
	return s.err == nil
}

// malformed fails at the innermost node being compressed.
func (s *Session) malformed(format string, a ...interface{}) {
	var n ast.Node
	if 0 < len(s.stack) {
		n = s.stack[len(s.stack)-1]
	}
	s.fail(n, fmt.Errorf("%w: "+format, append([]interface{}{ErrMalformed}, a...)...))
}

func (s *Session) maxDepth() int {
	if s.o.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return s.o.MaxDepth
}

func (s *Session) exit() {
	s.stack = s.stack[:len(s.stack)-1]
}

func (s *Session) write(b string) {
	s.buf = append(s.buf, b...)
}

func (s *Session) writeByte(c byte) {
	s.buf = append(s.buf, c)
}

// last returns the last written byte.
func (s *Session) last() byte {
	if len(s.buf) == 0 {
		return 0
	}
	return s.buf[len(s.buf)-1]
}

// insertSpace inserts a space at position i of the output when the bytes around it would otherwise
// merge into one token.
func (s *Session) insertSpace(i int) {
	s.buf = append(s.buf, 0)
	copy(s.buf[i+1:], s.buf[i:])
	s.buf[i] = ' '
}

func checkFirstVariableName(name string) error {
	for i := 0; i < len(name); i++ {
		if c := name[i]; !isIdentChar(c) {
			return fmt.Errorf("invalid first variable name %q: must consist of letters, digits or underscores", name)
		}
	}
	return nil
}
