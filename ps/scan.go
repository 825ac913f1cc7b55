package ps

import (
	"regexp"
	"strings"

	"github.com/StartAutomating/PSMinifier/ast"
)

// automaticVariables are set or read by PowerShell itself and are never renamed nor generated.
var automaticVariables = map[string]struct{}{
	"_": {}, "$": {}, "^": {}, "?": {}, "args": {}, "consolehost": {}, "enabledexperimentalfeatures": {},
	"error": {}, "event": {}, "eventargs": {}, "eventsubscriber": {}, "executioncontext": {},
	"false": {}, "foreach": {}, "home": {}, "host": {}, "input": {}, "iscoreclr": {}, "islinux": {},
	"ismacos": {}, "iswindows": {}, "lastexitcode": {}, "matches": {}, "myinvocation": {},
	"nestedpromptlevel": {}, "null": {}, "pid": {}, "profile": {}, "psboundparameters": {},
	"pscmdlet": {}, "pscommandpath": {}, "psculture": {}, "psdebugcontext": {}, "psedition": {},
	"pshome": {}, "psitem": {}, "psscriptroot": {}, "pssenderinfo": {}, "psuiculture": {},
	"psversiontable": {}, "pwd": {}, "sender": {}, "shellid": {}, "stacktrace": {}, "switch": {},
	"this": {}, "true": {},

	// preference variables
	"confirmpreference": {}, "debugpreference": {}, "erroractionpreference": {}, "errorview": {},
	"formatenumerationlimit": {}, "informationpreference": {}, "maximumhistorycount": {}, "ofs": {},
	"outputencoding": {}, "progresspreference": {}, "psdefaultparametervalues": {},
	"psemailserver": {}, "psmoduleautoloadingpreference": {}, "psnativecommandargumentpassing": {},
	"psnativecommanduseerroractionpreference": {}, "pssessionapplicationname": {},
	"pssessionconfigurationname": {}, "pssessionoption": {}, "psstyle": {}, "transcript": {},
	"verbosepreference": {}, "warningpreference": {}, "whatifpreference": {},
}

// scopes whose qualified variables alias the unqualified name.
var variableScopes = map[string]struct{}{
	"script": {}, "global": {}, "local": {}, "private": {}, "using": {}, "workflow": {}, "variable": {},
}

// variableCommands take variable names as plain arguments. Export-ModuleMember names the variables
// a module exports.
var variableCommands = map[string]struct{}{
	"get-variable": {}, "set-variable": {}, "new-variable": {}, "remove-variable": {}, "clear-variable": {},
	"gv": {}, "sv": {}, "set": {}, "nv": {}, "rv": {}, "clv": {}, "export-modulemember": {},
}

// variableParameters are the common parameters, and their aliases, that take a variable name.
var variableParameters = map[string]struct{}{
	"outvariable": {}, "ov": {}, "errorvariable": {}, "ev": {}, "warningvariable": {}, "wv": {},
	"informationvariable": {}, "iv": {}, "pipelinevariable": {}, "pv": {},
}

// rawVariable matches variable references in text that is emitted verbatim.
var rawVariable = regexp.MustCompile(`[$@](?:\{([^}]+)\}|([\w:?^$]+))`)

// scanner collects the assignment targets and the names that must be kept before anything is
// emitted, so that reads preceding the first assignment are renamed consistently.
type scanner struct {
	s     *Session
	seen  map[string]struct{}
	depth int
}

func (s *Session) scan(tree *ast.ScriptBody) {
	v := &scanner{s: s, seen: map[string]struct{}{}}
	for name := range automaticVariables {
		s.names.pin(name)
	}
	ast.Walk(v, tree)
	if s.err != nil || s.o.KeepVarNames {
		return
	}

	// generated names may not collide with kept names
	for name := range automaticVariables {
		s.names.reserve(name)
	}
	for name := range v.seen {
		if _, ok := s.names.declared[name]; !ok || s.names.isPinned(name) {
			s.names.reserve(name)
		}
	}
}

func (v *scanner) Enter(n ast.Node) ast.IVisitor {
	v.depth++
	if v.s.maxDepth() < v.depth {
		v.s.fail(n, ErrMaxDepth)
	}
	if v.s.err != nil {
		return nil
	}

	switch n := n.(type) {
	case *ast.ScriptBody:
		v.raw(n.Using...)
		v.raw(n.Requires...)
	case *ast.ParamBlock:
		v.raw(n.Attributes...)
	case *ast.Parameter:
		v.raw(n.Attributes...)
		v.name(n.Name)
		v.s.names.pin(n.Name)
	case *ast.AssignStmt:
		if !v.s.o.KeepVarNames {
			v.target(n.Target)
		}
	case *ast.CommandStmt:
		v.raw(n.Redirections...)
		v.command(n)
	case *ast.ExprStmt:
		v.raw(n.Redirections...)
		if n.X == nil {
			v.raw(n.Text)
		}
	case *ast.TryStmt:
		for _, c := range n.Catches {
			v.raw(c.Types...)
		}
	case *ast.FuncDecl:
		v.s.funcs[strings.ToLower(n.Name)] = struct{}{}
	case *ast.MemberExpr:
		v.raw(n.Name)
	case *ast.Var:
		v.name(n.Name)
	case *ast.StringExpr:
		if len(n.Nested) == 0 {
			v.raw(n.Text)
		}
	case *ast.OpaqueStmt:
		v.raw(n.Text)
	case *ast.OpaqueExpr:
		v.raw(n.Text)
	}
	return v
}

func (v *scanner) Exit(ast.Node) {
	v.depth--
}

// name records a variable name. Scope qualified names are kept, together with the unqualified name
// they refer to.
func (v *scanner) name(name string) {
	key := strings.ToLower(name)
	v.seen[key] = struct{}{}
	if i := strings.IndexByte(key, ':'); i != -1 {
		v.s.names.pin(key)
		if _, ok := variableScopes[key[:i]]; ok {
			v.s.names.pin(key[i+1:])
			v.seen[key[i+1:]] = struct{}{}
		}
	}
}

// raw pins every variable referenced in text that is emitted unchanged.
func (v *scanner) raw(texts ...string) {
	for _, text := range texts {
		if strings.IndexAny(text, "$@") == -1 {
			continue
		}
		for _, m := range rawVariable.FindAllStringSubmatch(text, -1) {
			name := m[1]
			if name == "" {
				name = m[2]
			}
			v.name(name)
			v.s.names.pin(name)
		}
	}
}

// target declares the variables assigned by an assignment target: $x, [int]$x and $x,$y.
func (v *scanner) target(target ast.IExpr) {
	switch t := target.(type) {
	case *ast.Var:
		if !t.Splatted && strings.IndexByte(t.Name, ':') == -1 {
			v.s.names.declare(t.Name)
		}
	case *ast.ConvertExpr:
		v.target(t.X)
	case *ast.ListExpr:
		for _, item := range t.List {
			v.target(item)
		}
	}
}

// command pins the variable names a command receives as plain arguments: the arguments of the
// common parameters such as -ErrorVariable, and every argument of the *-Variable cmdlets.
func (v *scanner) command(cmd *ast.CommandStmt) {
	for i, elem := range cmd.Elements {
		param, ok := elem.(*ast.ParamExpr)
		if !ok {
			continue
		} else if _, ok := variableParameters[strings.ToLower(param.Name)]; !ok {
			continue
		}
		if param.Arg != nil {
			v.names(param.Arg)
		} else if i+1 < len(cmd.Elements) {
			v.names(cmd.Elements[i+1])
		}
	}

	if len(cmd.Elements) == 0 {
		return
	}
	first, ok := cmd.Elements[0].(*ast.LiteralExpr)
	if !ok || !first.Bareword {
		return
	} else if _, ok := variableCommands[strings.ToLower(first.Text)]; !ok {
		return
	}
	for _, elem := range cmd.Elements[1:] {
		if param, ok := elem.(*ast.ParamExpr); ok {
			elem = param.Arg
		}
		v.names(elem)
	}
}

// names pins the variable names given by a literal or a list of literals. A leading + appends to
// the variable, as in -ErrorVariable +err.
func (v *scanner) names(arg ast.IExpr) {
	var items []ast.IExpr
	if list, ok := arg.(*ast.ListExpr); ok {
		items = list.List
	} else {
		items = []ast.IExpr{arg}
	}
	for _, item := range items {
		var text string
		switch item := item.(type) {
		case *ast.LiteralExpr:
			text = item.Text
		case *ast.StringExpr:
			if len(item.Nested) != 0 {
				continue
			}
			text = item.Text
		default:
			continue
		}
		name := strings.TrimPrefix(strings.Trim(text, `'"`), "+")
		if name != "" {
			v.name(name)
			v.s.names.pin(name)
		}
	}
}
