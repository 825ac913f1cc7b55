package ps

import (
	"strings"

	"github.com/StartAutomating/PSMinifier/ast"
)

// minifyBody writes a script, function or script block body. A lone end block is written without
// its end{} wrapper, since it is indistinguishable from a plain body. Any other named block, also
// dynamicParam, requires the wrapper.
func (s *Session) minifyBody(body *ast.ScriptBody) {
	if !s.enter(body) {
		s.exit()
		return
	}
	defer s.exit()

	for _, req := range body.Requires {
		s.write(strings.TrimSpace(req))
		s.writeByte('\n')
	}
	for _, using := range body.Using {
		s.write(strings.TrimSpace(using))
		s.writeByte(';')
	}
	if body.Params != nil {
		for _, attr := range body.Params.Attributes {
			s.write(strings.TrimSpace(attr))
		}
		s.write("param(")
		s.minifyParams(body.Params.Params)
		s.writeByte(')')
	}

	named := false
	if 0 < len(body.DynamicParam) {
		s.write("dynamicParam")
		s.minifyBlock(body.DynamicParam)
		named = true
	}
	if 0 < len(body.Begin) {
		s.write("begin")
		s.minifyBlock(body.Begin)
		named = true
	}
	if 0 < len(body.Process) {
		s.write("process")
		s.minifyBlock(body.Process)
		named = true
	}
	if !named {
		s.minifyStmts(body.End)
	} else if 0 < len(body.End) {
		s.write("end")
		s.minifyBlock(body.End)
	}
}

func (s *Session) minifyParams(params []*ast.Parameter) {
	for i, param := range params {
		if param == nil {
			s.malformed("missing parameter")
			return
		}
		if i != 0 {
			s.writeByte(',')
		}
		for _, attr := range param.Attributes {
			s.write(strings.TrimSpace(attr))
		}
		s.writeVarName("$", param.Name, false)
		if param.Default != nil {
			s.writeByte('=')
			s.minifyExpr(param.Default)
		}
	}
}

// minifyStmts writes a statement list separated by semicolons.
func (s *Session) minifyStmts(list []ast.IStmt) {
	for i, stmt := range list {
		if s.err != nil {
			return
		}
		if i != 0 {
			s.writeByte(';')
		}
		s.minifyStmt(stmt)
	}
}

func (s *Session) minifyBlock(list []ast.IStmt) {
	s.writeByte('{')
	s.minifyStmts(list)
	s.writeByte('}')
}

// minifyCond writes a parenthesized pipeline.
func (s *Session) minifyCond(stmt ast.IStmt) {
	s.writeByte('(')
	s.minifyStmt(stmt)
	s.writeByte(')')
}

func (s *Session) minifyStmt(i ast.IStmt) {
	if i == nil {
		s.malformed("expected a statement")
		return
	} else if !s.enter(i) {
		s.exit()
		return
	}
	defer s.exit()

	switch stmt := i.(type) {
	case *ast.IfStmt:
		for j, clause := range stmt.Clauses {
			if j == 0 {
				s.write("if")
			} else {
				s.write("elseif")
			}
			s.minifyCond(clause.Cond)
			s.minifyBlock(clause.Body)
		}
		if stmt.Else != nil {
			s.write("else")
			s.minifyBlock(stmt.Else)
		}
	case *ast.LoopStmt:
		if stmt.Label != "" {
			s.writeByte(':')
			s.write(strings.TrimPrefix(stmt.Label, ":"))
			s.writeByte(' ')
		}
		switch stmt.Kind {
		case ast.ForEachLoop:
			s.write("foreach(")
			if stmt.Var == nil {
				s.malformed("foreach without variable")
				return
			}
			s.minifyExpr(stmt.Var)
			s.write(" in ")
			s.minifyStmt(stmt.Cond)
			s.writeByte(')')
			s.minifyBlock(stmt.Body)
		case ast.ForLoop:
			s.write("for(")
			if stmt.Init != nil {
				s.minifyStmt(stmt.Init)
			}
			s.writeByte(';')
			if stmt.Cond != nil {
				s.minifyStmt(stmt.Cond)
			}
			s.writeByte(';')
			if stmt.Iter != nil {
				s.minifyStmt(stmt.Iter)
			}
			s.writeByte(')')
			s.minifyBlock(stmt.Body)
		case ast.WhileLoop:
			s.write("while")
			s.minifyCond(stmt.Cond)
			s.minifyBlock(stmt.Body)
		case ast.DoWhileLoop, ast.DoUntilLoop:
			s.write("do")
			s.minifyBlock(stmt.Body)
			if stmt.Kind == ast.DoWhileLoop {
				s.write("while")
			} else {
				s.write("until")
			}
			s.minifyCond(stmt.Cond)
		default:
			s.write(stmt.Text)
		}
	case *ast.AssignStmt:
		if stmt.Target == nil {
			s.malformed("assignment without target")
			return
		} else if stmt.Value == nil {
			s.malformed("assignment without value")
			return
		}
		s.minifyExpr(stmt.Target)
		s.write(stmt.Op)
		s.minifyStmt(stmt.Value)
	case *ast.PipelineStmt:
		for j, elem := range stmt.Elements {
			if j != 0 {
				s.writeByte('|')
			}
			s.minifyStmt(elem)
		}
	case *ast.CommandStmt:
		s.minifyCommand(stmt)
	case *ast.ExprStmt:
		if stmt.X == nil {
			s.write(stmt.Text)
			return
		}
		s.minifyExpr(stmt.X)
		s.minifyRedirections(stmt.Redirections)
	case *ast.TryStmt:
		s.write("try")
		s.minifyBlock(stmt.Body)
		for _, c := range stmt.Catches {
			s.write("catch")
			for j, typ := range c.Types {
				if j != 0 {
					s.writeByte(',')
				}
				s.writeType(typ)
			}
			s.minifyBlock(c.Body)
		}
		if stmt.Finally != nil {
			s.write("finally")
			s.minifyBlock(stmt.Finally)
		}
	case *ast.FuncDecl:
		s.write(stmt.Kind.String())
		s.writeByte(' ')
		s.write(stmt.Name)
		if 0 < len(stmt.Params) {
			s.writeByte('(')
			s.minifyParams(stmt.Params)
			s.writeByte(')')
		}
		s.writeByte('{')
		if stmt.Body != nil {
			s.minifyBody(stmt.Body)
		}
		s.writeByte('}')
	case *ast.FlowStmt:
		s.write(stmt.Kind.String())
		if stmt.Value != nil {
			s.minifyOperand(func() { s.minifyStmt(stmt.Value) })
		} else if stmt.Label != nil {
			s.minifyOperand(func() { s.minifyExpr(stmt.Label) })
		}
	case *ast.OpaqueStmt:
		s.write(stmt.Text)
	default:
		s.write(i.String())
	}
}

// minifyOperand writes the operand of a keyword, separated by a space only when it would otherwise
// merge with the keyword.
func (s *Session) minifyOperand(f func()) {
	start := len(s.buf)
	f()
	if start < len(s.buf) && needsSpaceAfter(s.buf[start]) {
		s.insertSpace(start)
	}
}

// minifyCommand writes a command invocation. The command name, when a bareword, is replaced by its
// shortest alias.
func (s *Session) minifyCommand(cmd *ast.CommandStmt) {
	switch cmd.Invocation {
	case "&":
		s.writeByte('&')
	case ".":
		s.write(". ")
	}
	for j, elem := range cmd.Elements {
		if j != 0 {
			s.writeByte(' ')
		}
		if lit, ok := elem.(*ast.LiteralExpr); ok && j == 0 && lit.Bareword {
			s.write(s.commandName(lit.Text))
			continue
		}
		s.minifyExpr(elem)
	}
	s.minifyRedirections(cmd.Redirections)
}

func (s *Session) minifyRedirections(redirections []string) {
	for _, redirection := range redirections {
		s.writeByte(' ')
		s.write(strings.TrimSpace(redirection))
	}
}

// commandName returns the shortest alias of a command, unless the alias is shadowed by a function
// defined in the script.
func (s *Session) commandName(name string) string {
	short := s.aliases.shortest(name)
	if _, ok := s.funcs[strings.ToLower(short)]; ok && short != name {
		return name
	}
	return short
}

// writeType writes a type name in brackets with all whitespace removed.
func (s *Session) writeType(typ string) {
	typ = strings.TrimSpace(typ)
	if 2 <= len(typ) && typ[0] == '[' && typ[len(typ)-1] == ']' {
		typ = typ[1 : len(typ)-1]
	}
	s.writeByte('[')
	s.write(stripWhitespace(typ))
	s.writeByte(']')
}
