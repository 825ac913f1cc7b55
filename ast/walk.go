package ast

// IVisitor is called by Walk for every node. Enter returns the visitor for the children of n, or
// nil to skip them. Exit is called after the children of n have been walked.
type IVisitor interface {
	Enter(n Node) IVisitor
	Exit(n Node)
}

// Walk traverses the tree rooted at n in depth-first order.
func Walk(v IVisitor, n Node) {
	if n == nil {
		return
	}
	if v = v.Enter(n); v == nil {
		return
	}
	defer v.Exit(n)

	switch n := n.(type) {
	case *ScriptBody:
		if n.Params != nil {
			Walk(v, n.Params)
		}
		walkStmts(v, n.DynamicParam)
		walkStmts(v, n.Begin)
		walkStmts(v, n.Process)
		walkStmts(v, n.End)
	case *ParamBlock:
		for _, p := range n.Params {
			if p != nil {
				Walk(v, p)
			}
		}
	case *Parameter:
		walkExpr(v, n.Default)
	case *IfStmt:
		for _, clause := range n.Clauses {
			walkStmt(v, clause.Cond)
			walkStmts(v, clause.Body)
		}
		walkStmts(v, n.Else)
	case *LoopStmt:
		walkExpr(v, n.Var)
		walkStmt(v, n.Init)
		walkStmt(v, n.Cond)
		walkStmt(v, n.Iter)
		walkStmts(v, n.Body)
	case *AssignStmt:
		walkExpr(v, n.Target)
		walkStmt(v, n.Value)
	case *PipelineStmt:
		walkStmts(v, n.Elements)
	case *CommandStmt:
		walkExprs(v, n.Elements)
	case *ExprStmt:
		walkExpr(v, n.X)
	case *TryStmt:
		walkStmts(v, n.Body)
		for _, c := range n.Catches {
			walkStmts(v, c.Body)
		}
		walkStmts(v, n.Finally)
	case *FuncDecl:
		for _, p := range n.Params {
			if p != nil {
				Walk(v, p)
			}
		}
		if n.Body != nil {
			Walk(v, n.Body)
		}
	case *FlowStmt:
		walkStmt(v, n.Value)
		walkExpr(v, n.Label)
	case *BinaryExpr:
		walkExpr(v, n.X)
		walkExpr(v, n.Y)
	case *UnaryExpr:
		walkExpr(v, n.X)
	case *MemberExpr:
		walkExpr(v, n.X)
		walkExprs(v, n.Args)
	case *StringExpr:
		for _, nested := range n.Nested {
			walkExpr(v, nested.X)
		}
	case *IndexExpr:
		walkExpr(v, n.X)
		walkExpr(v, n.Index)
	case *BlockExpr:
		if n.Body != nil {
			Walk(v, n.Body)
		}
	case *GroupExpr:
		walkStmt(v, n.X)
	case *ArrayExpr:
		walkStmts(v, n.List)
	case *SubExpr:
		walkStmts(v, n.List)
	case *ConvertExpr:
		walkExpr(v, n.X)
	case *HashExpr:
		for _, pair := range n.Pairs {
			walkExpr(v, pair.Key)
			walkStmt(v, pair.Value)
		}
	case *ListExpr:
		walkExprs(v, n.List)
	case *ParamExpr:
		walkExpr(v, n.Arg)
	}
}

func walkStmt(v IVisitor, stmt IStmt) {
	if stmt != nil {
		Walk(v, stmt)
	}
}

func walkStmts(v IVisitor, list []IStmt) {
	for _, stmt := range list {
		walkStmt(v, stmt)
	}
}

func walkExpr(v IVisitor, expr IExpr) {
	if expr != nil {
		Walk(v, expr)
	}
}

func walkExprs(v IVisitor, list []IExpr) {
	for _, expr := range list {
		walkExpr(v, expr)
	}
}

type inspector func(Node) bool

func (f inspector) Enter(n Node) IVisitor {
	if f(n) {
		return f
	}
	return nil
}

func (f inspector) Exit(Node) {}

// Inspect traverses the tree rooted at n, calling f for every node. The children of a node are
// skipped when f returns false.
func Inspect(n Node, f func(Node) bool) {
	Walk(inspector(f), n)
}
