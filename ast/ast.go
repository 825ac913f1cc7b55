// Package ast is the syntax tree consumed by the PowerShell minifier. Trees are produced by an
// external parser (the PowerShell host) and arrive in the wire format read by DecodeJSON and
// DecodeCBOR; they can also be built directly.
package ast // import "github.com/StartAutomating/PSMinifier/ast"

// Node is any node of the tree.
type Node interface {
	String() string
	Offset() int
}

// IStmt is a statement node.
type IStmt interface {
	Node
	stmtNode()
}

// IExpr is an expression node.
type IExpr interface {
	Node
	exprNode()
}

// Span is the original source extent of a node. Pos is the start offset as reported by the host
// parser, in UTF-16 code units. Text is the verbatim source text of the node.
type Span struct {
	Pos  int
	Text string
}

// String returns the original source text.
func (s Span) String() string { return s.Text }

// Offset returns the start offset in UTF-16 code units.
func (s Span) Offset() int { return s.Pos }

////////////////////////////////////////////////////////////////

// ScriptBody is the body of a script, function or script block.
type ScriptBody struct {
	Span
	Requires     []string // raw #requires lines
	Using        []string // raw using statements
	Params       *ParamBlock
	DynamicParam []IStmt
	Begin        []IStmt
	Process      []IStmt
	End          []IStmt
}

// ParamBlock is a param(...) block with its own attributes, such as [CmdletBinding()].
type ParamBlock struct {
	Span
	Attributes []string
	Params     []*Parameter
}

// Parameter is a declared parameter. Attributes include type constraints and are kept verbatim.
type Parameter struct {
	Span
	Attributes []string
	Name       string // without the leading $
	Default    IExpr
}

////////////////////////////////////////////////////////////////

// Clause is a condition and its body.
type Clause struct {
	Cond IStmt
	Body []IStmt
}

// IfStmt is an if statement with its elseif clauses. Else is nil when there is no else clause.
type IfStmt struct {
	Span
	Clauses []Clause
	Else    []IStmt
}

// LoopKind is the kind of loop.
type LoopKind int

// LoopKind values.
const (
	ForEachLoop LoopKind = iota
	ForLoop
	WhileLoop
	DoWhileLoop
	DoUntilLoop
)

func (k LoopKind) String() string {
	switch k {
	case ForEachLoop:
		return "foreach"
	case ForLoop:
		return "for"
	case WhileLoop:
		return "while"
	case DoWhileLoop:
		return "dowhile"
	case DoUntilLoop:
		return "dountil"
	}
	return "invalid"
}

// LoopStmt is a foreach, for, while, do-while or do-until loop. Var is only used by foreach loops,
// Init and Iter only by for loops.
type LoopStmt struct {
	Span
	Kind  LoopKind
	Label string
	Var   IExpr
	Init  IStmt
	Cond  IStmt
	Iter  IStmt
	Body  []IStmt
}

// AssignStmt is an assignment such as $x += 1.
type AssignStmt struct {
	Span
	Target IExpr
	Op     string
	Value  IStmt
}

// PipelineStmt is a pipeline of commands and command expressions.
type PipelineStmt struct {
	Span
	Elements []IStmt
}

// CommandStmt is a command invocation. Invocation is "", "&" or ".".
type CommandStmt struct {
	Span
	Invocation   string
	Elements     []IExpr
	Redirections []string
}

// ExprStmt is an expression used as a pipeline element. X is nil when the host did not report it,
// in which case the raw text is used.
type ExprStmt struct {
	Span
	X            IExpr
	Redirections []string
}

// CatchClause is a catch block with its (possibly empty) list of exception types.
type CatchClause struct {
	Types []string
	Body  []IStmt
}

// TryStmt is a try/catch/finally statement. Finally is nil when absent.
type TryStmt struct {
	Span
	Body    []IStmt
	Catches []CatchClause
	Finally []IStmt
}

// FuncKind is the keyword used to declare a function.
type FuncKind int

// FuncKind values.
const (
	Function FuncKind = iota
	Filter
	Workflow
)

func (k FuncKind) String() string {
	switch k {
	case Filter:
		return "filter"
	case Workflow:
		return "workflow"
	}
	return "function"
}

// FuncDecl is a function, filter or workflow definition. Params holds parameters declared in
// the function(...) form.
type FuncDecl struct {
	Span
	Kind   FuncKind
	Name   string
	Params []*Parameter
	Body   *ScriptBody
}

// FlowKind is a control flow keyword.
type FlowKind int

// FlowKind values.
const (
	Return FlowKind = iota
	Throw
	Exit
	Break
	Continue
)

func (k FlowKind) String() string {
	switch k {
	case Throw:
		return "throw"
	case Exit:
		return "exit"
	case Break:
		return "break"
	case Continue:
		return "continue"
	}
	return "return"
}

// FlowStmt is a return, throw, exit, break or continue statement.
type FlowStmt struct {
	Span
	Kind  FlowKind
	Value IStmt // return, throw and exit
	Label IExpr // break and continue
}

// OpaqueStmt is a statement that has no specific handling; its text is kept verbatim.
type OpaqueStmt struct {
	Span
}

////////////////////////////////////////////////////////////////

// BinaryExpr is a binary operation such as $a -eq 1.
type BinaryExpr struct {
	Span
	X  IExpr
	Op string
	Y  IExpr
}

// UnaryExpr is a prefix or postfix operation such as -not $a or $i++.
type UnaryExpr struct {
	Span
	Op      string
	X       IExpr
	Postfix bool
}

// MemberExpr is a property access or a method invocation, with . or :: when Static.
type MemberExpr struct {
	Span
	X      IExpr
	Name   string
	Static bool
	Invoke bool
	Args   []IExpr
}

// Nested is an expression inside an expandable string. Start and Len are byte offsets relative to
// the string's text.
type Nested struct {
	X     IExpr
	Start int
	Len   int
}

// StringExpr is an expandable (double-quoted) string. Its text is the raw source including quotes.
type StringExpr struct {
	Span
	Nested []Nested
}

// IndexExpr is an index operation such as $a[0].
type IndexExpr struct {
	Span
	X     IExpr
	Index IExpr
}

// Var is a variable reference. Name is the variable path without $ or braces, and may carry a
// scope qualifier such as env: or script:.
type Var struct {
	Span
	Name     string
	Splatted bool
}

// BlockExpr is a script block literal.
type BlockExpr struct {
	Span
	Body *ScriptBody
}

// GroupExpr is a parenthesized pipeline.
type GroupExpr struct {
	Span
	X IStmt
}

// ArrayExpr is an array subexpression @(...).
type ArrayExpr struct {
	Span
	List []IStmt
}

// SubExpr is a subexpression $(...).
type SubExpr struct {
	Span
	List []IStmt
}

// ConvertExpr is a type conversion or constraint such as [int]$x or [ordered]@{}.
type ConvertExpr struct {
	Span
	Type string // type name without the brackets
	X    IExpr
}

// Pair is a key/value pair of a hashtable.
type Pair struct {
	Key   IExpr
	Value IStmt
}

// HashExpr is a hashtable literal. Ordered is set when it is wrapped in [ordered].
type HashExpr struct {
	Span
	Ordered bool
	Pairs   []Pair
}

// LiteralExpr is a constant: a number, a quoted string or a bareword. Its text is the literal.
type LiteralExpr struct {
	Span
	Bareword bool
}

// ListExpr is an array literal such as 1,2,3.
type ListExpr struct {
	Span
	List []IExpr
}

// ParamExpr is a command parameter such as -Path or -Force:$false.
type ParamExpr struct {
	Span
	Name string // without the leading -
	Arg  IExpr
}

// OpaqueExpr is an expression that has no specific handling; its text is kept verbatim.
type OpaqueExpr struct {
	Span
}

func (*IfStmt) stmtNode()       {}
func (*LoopStmt) stmtNode()     {}
func (*AssignStmt) stmtNode()   {}
func (*PipelineStmt) stmtNode() {}
func (*CommandStmt) stmtNode()  {}
func (*ExprStmt) stmtNode()     {}
func (*TryStmt) stmtNode()      {}
func (*FuncDecl) stmtNode()     {}
func (*FlowStmt) stmtNode()     {}
func (*OpaqueStmt) stmtNode()   {}

func (*BinaryExpr) exprNode()  {}
func (*UnaryExpr) exprNode()   {}
func (*MemberExpr) exprNode()  {}
func (*StringExpr) exprNode()  {}
func (*IndexExpr) exprNode()   {}
func (*Var) exprNode()         {}
func (*BlockExpr) exprNode()   {}
func (*GroupExpr) exprNode()   {}
func (*ArrayExpr) exprNode()   {}
func (*SubExpr) exprNode()     {}
func (*ConvertExpr) exprNode() {}
func (*HashExpr) exprNode()    {}
func (*LiteralExpr) exprNode() {}
func (*ListExpr) exprNode()    {}
func (*ParamExpr) exprNode()   {}
func (*OpaqueExpr) exprNode()  {}
