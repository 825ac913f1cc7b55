package ps

import (
	"sort"
	"strings"

	"github.com/StartAutomating/PSMinifier/ast"
)

func (s *Session) minifyExpr(i ast.IExpr) {
	if i == nil {
		s.malformed("expected an expression")
		return
	} else if !s.enter(i) {
		s.exit()
		return
	}
	defer s.exit()

	switch expr := i.(type) {
	case *ast.BinaryExpr:
		if expr.X == nil || expr.Y == nil {
			s.write(expr.Text)
			return
		}
		_, leftVar := expr.X.(*ast.Var)
		s.minifyExpr(expr.X)
		s.writeOp(expr.Op, !leftVar)
		s.minifyRight(expr.Op, func() { s.minifyExpr(expr.Y) })
	case *ast.UnaryExpr:
		if expr.X == nil {
			s.write(expr.Text)
		} else if expr.Postfix {
			s.minifyExpr(expr.X)
			s.write(expr.Op)
		} else {
			s.writeOp(expr.Op, true)
			s.minifyRight(expr.Op, func() { s.minifyExpr(expr.X) })
		}
	case *ast.MemberExpr:
		if expr.X == nil {
			s.write(expr.Text)
			return
		}
		s.minifyExpr(expr.X)
		if expr.Static {
			s.write("::")
		} else {
			s.writeByte('.')
		}
		s.write(expr.Name)
		if expr.Invoke {
			s.writeByte('(')
			for j, arg := range expr.Args {
				if j != 0 {
					s.writeByte(',')
				}
				s.minifyExpr(arg)
			}
			s.writeByte(')')
		}
	case *ast.StringExpr:
		s.minifyString(expr)
	case *ast.IndexExpr:
		if expr.X == nil || expr.Index == nil {
			s.write(expr.Text)
			return
		}
		s.minifyExpr(expr.X)
		s.writeByte('[')
		s.minifyExpr(expr.Index)
		s.writeByte(']')
	case *ast.Var:
		s.minifyVar(expr)
	case *ast.BlockExpr:
		s.writeByte('{')
		if expr.Body != nil {
			s.minifyBody(expr.Body)
		}
		s.writeByte('}')
	case *ast.GroupExpr:
		if expr.X == nil {
			s.write(expr.Text)
			return
		}
		s.minifyCond(expr.X)
	case *ast.ArrayExpr:
		s.write("@(")
		s.minifyStmts(expr.List)
		s.writeByte(')')
	case *ast.SubExpr:
		s.write("$(")
		s.minifyStmts(expr.List)
		s.writeByte(')')
	case *ast.ConvertExpr:
		s.writeType(expr.Type)
		if expr.X != nil {
			s.minifyExpr(expr.X)
		}
	case *ast.HashExpr:
		s.write("@{")
		for j, pair := range expr.Pairs {
			if j != 0 {
				s.writeByte(';')
			}
			s.minifyExpr(pair.Key)
			s.writeByte('=')
			s.minifyStmt(pair.Value)
		}
		s.writeByte('}')
	case *ast.LiteralExpr:
		s.write(expr.Text)
	case *ast.ListExpr:
		for j, item := range expr.List {
			if j != 0 {
				s.writeByte(',')
			}
			s.minifyExpr(item)
		}
	case *ast.ParamExpr:
		s.writeByte('-')
		s.write(expr.Name)
		if expr.Arg != nil {
			s.writeByte(':')
			s.minifyExpr(expr.Arg)
		}
	case *ast.OpaqueExpr:
		s.write(expr.Text)
	default:
		s.write(i.String())
	}
}

// writeOp writes an operator, with a space before dash operators that would otherwise continue the
// preceding number or word. Variables end before a dash.
func (s *Session) writeOp(op string, spaceWord bool) {
	if op == "" {
		return
	}
	last := s.last()
	if isWordOp(op) && spaceWord && isIdentChar(last) || (op[0] == '+' || op[0] == '-') && last == op[0] {
		s.writeByte(' ')
	}
	s.write(op)
}

// minifyRight writes the right operand of op, preceded by a space when it would merge with op.
func (s *Session) minifyRight(op string, f func()) {
	start := len(s.buf)
	f()
	if len(s.buf) <= start || op == "" {
		return
	}
	c, last := s.buf[start], op[len(op)-1]
	if isWordOp(op) && isOperandStart(c) || (last == '+' || last == '-') && c == last {
		s.insertSpace(start)
	}
}

// minifyVar writes a variable under its short name. Braced references stay braced and splatted
// ones keep their @.
func (s *Session) minifyVar(v *ast.Var) {
	sigil := "$"
	if v.Splatted {
		sigil = "@"
	}
	if short, ok := s.names.lookup(v.Name); ok {
		s.writeVarName(sigil, short, isBraced(v.Text))
	} else if v.Text != "" {
		s.write(v.Text)
	} else {
		s.writeVarName(sigil, v.Name, false)
	}
}

func (s *Session) writeVarName(sigil, name string, braced bool) {
	s.write(sigil)
	if braced || !isSimpleName(name) && !isSpecialVar(name) && strings.IndexByte(name, ':') == -1 {
		s.writeByte('{')
		s.write(name)
		s.writeByte('}')
		return
	}
	s.write(name)
}

func isSpecialVar(name string) bool {
	return name == "_" || name == "$" || name == "?" || name == "^"
}

// minifyString writes an expandable string, replacing each nested expression by its minified form.
// The literal parts of the string are copied verbatim. Offsets are validated against the text and
// searched for from the current position when the host reported them differently.
func (s *Session) minifyString(str *ast.StringExpr) {
	raw := str.Text
	nested := str.Nested
	if !sort.SliceIsSorted(nested, func(i, j int) bool { return nested[i].Start < nested[j].Start }) {
		nested = append([]ast.Nested(nil), nested...)
		sort.SliceStable(nested, func(i, j int) bool { return nested[i].Start < nested[j].Start })
	}

	cursor := 0
	for _, n := range nested {
		if n.X == nil {
			continue
		}
		text := n.X.String()
		start, end := n.Start, n.Start+n.Len
		if start < cursor || len(raw) < end || raw[start:end] != text {
			i := strings.Index(raw[cursor:], text)
			if text == "" || i == -1 {
				continue
			}
			start, end = cursor+i, cursor+i+len(text)
		}
		s.write(raw[cursor:start])
		s.minifyExpr(n.X)
		cursor = end
	}
	s.write(raw[cursor:])
}
