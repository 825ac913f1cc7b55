package ast

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fxamacker/cbor/v2"
)

// ErrEmpty is returned when the input holds no tree.
var ErrEmpty = errors.New("empty syntax tree")

// node is the wire form of a syntax tree node, shared by the JSON and CBOR encodings. Type is the
// PowerShell AST class name, Text the extent text and Offset the extent start in UTF-16 code units.
type node struct {
	Type   string `json:"type" cbor:"type"`
	Text   string `json:"text,omitempty" cbor:"text,omitempty"`
	Offset int    `json:"offset,omitempty" cbor:"offset,omitempty"`

	Name       string `json:"name,omitempty" cbor:"name,omitempty"`
	Operator   string `json:"operator,omitempty" cbor:"operator,omitempty"`
	Label      string `json:"label,omitempty" cbor:"label,omitempty"`
	Kind       string `json:"kind,omitempty" cbor:"kind,omitempty"`
	TypeName   string `json:"typeName,omitempty" cbor:"typeName,omitempty"`
	Member     string `json:"member,omitempty" cbor:"member,omitempty"`
	Invocation string `json:"invocation,omitempty" cbor:"invocation,omitempty"`
	Static     bool   `json:"static,omitempty" cbor:"static,omitempty"`
	Postfix    bool   `json:"postfix,omitempty" cbor:"postfix,omitempty"`
	Bareword   bool   `json:"bareword,omitempty" cbor:"bareword,omitempty"`
	Splatted   bool   `json:"splatted,omitempty" cbor:"splatted,omitempty"`

	Left        *node `json:"left,omitempty" cbor:"left,omitempty"`
	Right       *node `json:"right,omitempty" cbor:"right,omitempty"`
	Child       *node `json:"child,omitempty" cbor:"child,omitempty"`
	Expression  *node `json:"expression,omitempty" cbor:"expression,omitempty"`
	Index       *node `json:"index,omitempty" cbor:"index,omitempty"`
	Variable    *node `json:"variable,omitempty" cbor:"variable,omitempty"`
	Condition   *node `json:"condition,omitempty" cbor:"condition,omitempty"`
	Initializer *node `json:"initializer,omitempty" cbor:"initializer,omitempty"`
	Iterator    *node `json:"iterator,omitempty" cbor:"iterator,omitempty"`
	Pipeline    *node `json:"pipeline,omitempty" cbor:"pipeline,omitempty"`
	Argument    *node `json:"argument,omitempty" cbor:"argument,omitempty"`
	Default     *node `json:"default,omitempty" cbor:"default,omitempty"`
	Body        *node `json:"body,omitempty" cbor:"body,omitempty"`
	ParamBlock  *node `json:"paramBlock,omitempty" cbor:"paramBlock,omitempty"`

	Statements   []*node   `json:"statements,omitempty" cbor:"statements,omitempty"`
	Elements     []*node   `json:"elements,omitempty" cbor:"elements,omitempty"`
	Arguments    []*node   `json:"arguments,omitempty" cbor:"arguments,omitempty"`
	Nested       []*node   `json:"nested,omitempty" cbor:"nested,omitempty"`
	Parameters   []*node   `json:"parameters,omitempty" cbor:"parameters,omitempty"`
	Clauses      []*clause `json:"clauses,omitempty" cbor:"clauses,omitempty"`
	Else         []*node   `json:"else,omitempty" cbor:"else,omitempty"`
	Catches      []*catch  `json:"catches,omitempty" cbor:"catches,omitempty"`
	Finally      []*node   `json:"finally,omitempty" cbor:"finally,omitempty"`
	Pairs        []*pair   `json:"pairs,omitempty" cbor:"pairs,omitempty"`
	Redirections []string  `json:"redirections,omitempty" cbor:"redirections,omitempty"`
	Attributes   []string  `json:"attributes,omitempty" cbor:"attributes,omitempty"`
	Using        []string  `json:"using,omitempty" cbor:"using,omitempty"`
	Requires     []string  `json:"requires,omitempty" cbor:"requires,omitempty"`
	DynamicParam []*node   `json:"dynamicParam,omitempty" cbor:"dynamicParam,omitempty"`
	Begin        []*node   `json:"begin,omitempty" cbor:"begin,omitempty"`
	Process      []*node   `json:"process,omitempty" cbor:"process,omitempty"`
	End          []*node   `json:"end,omitempty" cbor:"end,omitempty"`

	// HasElse and HasFinally distinguish an empty else/finally block from an absent one, since
	// empty lists are dropped by omitempty.
	HasElse    bool `json:"hasElse,omitempty" cbor:"hasElse,omitempty"`
	HasFinally bool `json:"hasFinally,omitempty" cbor:"hasFinally,omitempty"`
}

type clause struct {
	Condition  *node   `json:"condition" cbor:"condition"`
	Statements []*node `json:"statements,omitempty" cbor:"statements,omitempty"`
}

type catch struct {
	Types      []string `json:"types,omitempty" cbor:"types,omitempty"`
	Statements []*node  `json:"statements,omitempty" cbor:"statements,omitempty"`
}

type pair struct {
	Key   *node `json:"key" cbor:"key"`
	Value *node `json:"value" cbor:"value"`
}

var cborDecMode cbor.DecMode

func init() {
	var err error
	cborDecMode, err = cbor.DecOptions{
		MaxNestedLevels: 4096,
	}.DecMode()
	if err != nil {
		panic(err)
	}
}

// DecodeJSON reads a JSON syntax tree, validates it against Schema and converts it. The root must
// be a ScriptBlockAst.
func DecodeJSON(r io.Reader) (*ScriptBody, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	b = bytes.TrimPrefix(b, []byte("\xEF\xBB\xBF"))
	if len(bytes.TrimSpace(b)) == 0 {
		return nil, ErrEmpty
	}
	if err := Validate(b); err != nil {
		return nil, err
	}

	n := &node{}
	if err := json.Unmarshal(b, n); err != nil {
		return nil, fmt.Errorf("decode json tree: %w", err)
	}
	return convertRoot(n)
}

// DecodeCBOR reads a CBOR syntax tree and converts it. The root must be a ScriptBlockAst.
func DecodeCBOR(r io.Reader) (*ScriptBody, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(b) == 0 {
		return nil, ErrEmpty
	}

	n := &node{}
	if err := cborDecMode.Unmarshal(b, n); err != nil {
		return nil, fmt.Errorf("decode cbor tree: %w", err)
	}
	return convertRoot(n)
}

func convertRoot(n *node) (*ScriptBody, error) {
	if n.Type != "ScriptBlockAst" {
		return nil, fmt.Errorf("root node is %s, expected ScriptBlockAst", n.Type)
	}
	return convertBody(n), nil
}

////////////////////////////////////////////////////////////////

func span(n *node) Span {
	return Span{n.Offset, n.Text}
}

func convertBody(n *node) *ScriptBody {
	if n == nil {
		return nil
	}
	body := &ScriptBody{
		Span:         span(n),
		Requires:     n.Requires,
		Using:        n.Using,
		DynamicParam: convertStmts(n.DynamicParam),
		Begin:        convertStmts(n.Begin),
		Process:      convertStmts(n.Process),
		End:          convertStmts(n.End),
	}
	if n.ParamBlock != nil {
		body.Params = &ParamBlock{
			Span:       span(n.ParamBlock),
			Attributes: n.ParamBlock.Attributes,
			Params:     convertParams(n.ParamBlock.Parameters),
		}
	}
	return body
}

func convertParams(list []*node) []*Parameter {
	if list == nil {
		return nil
	}
	params := make([]*Parameter, 0, len(list))
	for _, n := range list {
		if n == nil {
			continue
		}
		params = append(params, &Parameter{
			Span:       span(n),
			Attributes: n.Attributes,
			Name:       strings.TrimPrefix(n.Name, "$"),
			Default:    convertExpr(n.Default),
		})
	}
	return params
}

func convertStmts(list []*node) []IStmt {
	if list == nil {
		return nil
	}
	stmts := make([]IStmt, len(list))
	for i, n := range list {
		stmts[i] = convertStmt(n)
	}
	return stmts
}

// convertStmt returns nil for an absent node and for an expression node in statement position,
// which the minifier reports as a malformed tree.
func convertStmt(n *node) IStmt {
	if n == nil {
		return nil
	}
	switch n.Type {
	case "IfStatementAst":
		stmt := &IfStmt{Span: span(n)}
		for _, c := range n.Clauses {
			if c == nil {
				continue
			}
			stmt.Clauses = append(stmt.Clauses, Clause{convertStmt(c.Condition), convertStmts(c.Statements)})
		}
		stmt.Else = convertStmts(n.Else)
		if n.HasElse && stmt.Else == nil {
			stmt.Else = []IStmt{}
		}
		return stmt
	case "ForEachStatementAst", "ForStatementAst", "WhileStatementAst", "DoWhileStatementAst", "DoUntilStatementAst":
		return &LoopStmt{
			Span:  span(n),
			Kind:  loopKinds[n.Type],
			Label: n.Label,
			Var:   convertExpr(n.Variable),
			Init:  convertStmt(n.Initializer),
			Cond:  convertStmt(n.Condition),
			Iter:  convertStmt(n.Iterator),
			Body:  convertStmts(n.Statements),
		}
	case "AssignmentStatementAst":
		return &AssignStmt{span(n), convertExpr(n.Left), n.Operator, convertStmt(n.Right)}
	case "PipelineAst":
		return &PipelineStmt{span(n), convertStmts(n.Elements)}
	case "CommandAst":
		return &CommandStmt{span(n), n.Invocation, convertExprs(n.Elements), n.Redirections}
	case "CommandExpressionAst":
		return &ExprStmt{span(n), convertExpr(n.Expression), n.Redirections}
	case "TryStatementAst":
		stmt := &TryStmt{Span: span(n), Body: convertStmts(n.Statements)}
		for _, c := range n.Catches {
			if c == nil {
				continue
			}
			stmt.Catches = append(stmt.Catches, CatchClause{c.Types, convertStmts(c.Statements)})
		}
		stmt.Finally = convertStmts(n.Finally)
		if n.HasFinally && stmt.Finally == nil {
			stmt.Finally = []IStmt{}
		}
		return stmt
	case "FunctionDefinitionAst":
		kind := Function
		switch strings.ToLower(n.Kind) {
		case "filter":
			kind = Filter
		case "workflow":
			kind = Workflow
		}
		return &FuncDecl{span(n), kind, n.Name, convertParams(n.Parameters), convertBody(n.Body)}
	case "ReturnStatementAst", "ThrowStatementAst", "ExitStatementAst":
		return &FlowStmt{Span: span(n), Kind: flowKinds[n.Type], Value: convertStmt(n.Pipeline)}
	case "BreakStatementAst", "ContinueStatementAst":
		return &FlowStmt{Span: span(n), Kind: flowKinds[n.Type], Label: convertExpr(n.Expression)}
	}
	if _, ok := exprTypes[n.Type]; ok {
		return nil
	}
	return &OpaqueStmt{span(n)}
}

func convertExprs(list []*node) []IExpr {
	if list == nil {
		return nil
	}
	exprs := make([]IExpr, len(list))
	for i, n := range list {
		exprs[i] = convertExpr(n)
	}
	return exprs
}

func convertExpr(n *node) IExpr {
	if n == nil {
		return nil
	}
	switch n.Type {
	case "BinaryExpressionAst":
		return &BinaryExpr{span(n), convertExpr(n.Left), n.Operator, convertExpr(n.Right)}
	case "UnaryExpressionAst":
		return &UnaryExpr{span(n), n.Operator, convertExpr(n.Child), n.Postfix}
	case "MemberExpressionAst", "InvokeMemberExpressionAst":
		invoke := n.Type == "InvokeMemberExpressionAst"
		return &MemberExpr{span(n), convertExpr(n.Expression), n.Member, n.Static, invoke, convertExprs(n.Arguments)}
	case "ExpandableStringExpressionAst":
		expr := &StringExpr{Span: span(n)}
		for _, child := range n.Nested {
			if child == nil {
				continue
			}
			start := ByteOffset(n.Text, child.Offset-n.Offset)
			expr.Nested = append(expr.Nested, Nested{convertExpr(child), start, len(child.Text)})
		}
		return expr
	case "IndexExpressionAst":
		return &IndexExpr{span(n), convertExpr(n.Expression), convertExpr(n.Index)}
	case "VariableExpressionAst":
		return &Var{span(n), n.Name, n.Splatted}
	case "ScriptBlockExpressionAst":
		return &BlockExpr{span(n), convertBody(n.Body)}
	case "ParenExpressionAst":
		return &GroupExpr{span(n), convertStmt(n.Pipeline)}
	case "ArrayExpressionAst":
		return &ArrayExpr{span(n), convertStmts(n.Statements)}
	case "SubExpressionAst":
		return &SubExpr{span(n), convertStmts(n.Statements)}
	case "ConvertExpressionAst":
		child := convertExpr(n.Child)
		if hash, ok := child.(*HashExpr); ok && strings.EqualFold(n.TypeName, "ordered") {
			hash.Ordered = true
		}
		return &ConvertExpr{span(n), n.TypeName, child}
	case "HashtableAst":
		expr := &HashExpr{Span: span(n)}
		for _, p := range n.Pairs {
			if p == nil {
				continue
			}
			expr.Pairs = append(expr.Pairs, Pair{convertExpr(p.Key), convertStmt(p.Value)})
		}
		return expr
	case "StringConstantExpressionAst", "ConstantExpressionAst":
		return &LiteralExpr{span(n), n.Bareword}
	case "ArrayLiteralAst":
		return &ListExpr{span(n), convertExprs(n.Elements)}
	case "CommandParameterAst":
		return &ParamExpr{span(n), strings.TrimPrefix(n.Name, "-"), convertExpr(n.Argument)}
	}
	return &OpaqueExpr{span(n)}
}

var loopKinds = map[string]LoopKind{
	"ForEachStatementAst": ForEachLoop,
	"ForStatementAst":     ForLoop,
	"WhileStatementAst":   WhileLoop,
	"DoWhileStatementAst": DoWhileLoop,
	"DoUntilStatementAst": DoUntilLoop,
}

var flowKinds = map[string]FlowKind{
	"ReturnStatementAst":   Return,
	"ThrowStatementAst":    Throw,
	"ExitStatementAst":     Exit,
	"BreakStatementAst":    Break,
	"ContinueStatementAst": Continue,
}

var exprTypes = map[string]struct{}{
	"BinaryExpressionAst":           {},
	"UnaryExpressionAst":            {},
	"MemberExpressionAst":           {},
	"InvokeMemberExpressionAst":     {},
	"ExpandableStringExpressionAst": {},
	"IndexExpressionAst":            {},
	"VariableExpressionAst":         {},
	"ScriptBlockExpressionAst":      {},
	"ParenExpressionAst":            {},
	"ArrayExpressionAst":            {},
	"SubExpressionAst":              {},
	"ConvertExpressionAst":          {},
	"HashtableAst":                  {},
	"StringConstantExpressionAst":   {},
	"ConstantExpressionAst":         {},
	"ArrayLiteralAst":               {},
	"CommandParameterAst":           {},
	"TypeExpressionAst":             {},
}
