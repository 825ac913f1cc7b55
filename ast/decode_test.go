package ast

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/tdewolff/test"
)

func TestDecodeJSON(t *testing.T) {
	tree := `{"type":"ScriptBlockAst","text":"$x = 1","end":[
		{"type":"AssignmentStatementAst","text":"$x = 1","operator":"=",
			"left":{"type":"VariableExpressionAst","text":"$x","name":"x"},
			"right":{"type":"CommandExpressionAst","text":"1","offset":5,
				"expression":{"type":"ConstantExpressionAst","text":"1","offset":5}}}]}`
	body, err := DecodeJSON(strings.NewReader(tree))
	test.Error(t, err)

	expected := &ScriptBody{
		Span: Span{0, "$x = 1"},
		End: []IStmt{&AssignStmt{
			Span:   Span{0, "$x = 1"},
			Target: &Var{Span{0, "$x"}, "x", false},
			Op:     "=",
			Value:  &ExprStmt{Span{5, "1"}, &LiteralExpr{Span{5, "1"}, false}, nil},
		}},
	}
	if diff := cmp.Diff(expected, body); diff != "" {
		test.Fail(t, "tree mismatch (-want +got):\n"+diff)
	}
}

func TestDecodeJSONStatements(t *testing.T) {
	tree := `{"type":"ScriptBlockAst","text":"","end":[
		{"type":"IfStatementAst","clauses":[{"condition":{"type":"PipelineAst"}}],"hasElse":true},
		{"type":"TryStatementAst","catches":[{"types":["[IO.IOException]"]}]},
		{"type":"FunctionDefinitionAst","name":"f","kind":"filter","body":{"type":"ScriptBlockAst"}},
		{"type":"BreakStatementAst","expression":{"type":"StringConstantExpressionAst","text":"outer","bareword":true}},
		{"type":"VariableExpressionAst","name":"x"},
		{"type":"DataStatementAst","text":"data {}"}]}`
	body, err := DecodeJSON(strings.NewReader(tree))
	test.Error(t, err)
	test.T(t, len(body.End), 6)

	ifStmt := body.End[0].(*IfStmt)
	test.T(t, len(ifStmt.Clauses), 1)
	test.That(t, ifStmt.Else != nil, "empty else is kept")

	tryStmt := body.End[1].(*TryStmt)
	test.T(t, tryStmt.Catches[0].Types, []string{"[IO.IOException]"})
	test.That(t, tryStmt.Finally == nil, "absent finally")

	funcDecl := body.End[2].(*FuncDecl)
	test.T(t, funcDecl.Kind, Filter)
	test.That(t, funcDecl.Body != nil)

	flow := body.End[3].(*FlowStmt)
	test.T(t, flow.Kind, Break)
	test.T(t, flow.Label.(*LiteralExpr).Bareword, true)

	test.That(t, body.End[4] == nil, "expression in statement position")
	test.String(t, body.End[5].(*OpaqueStmt).String(), "data {}")
}

func TestDecodeJSONExpressions(t *testing.T) {
	tree := `{"type":"ScriptBlockAst","end":[{"type":"CommandAst","invocation":"&","elements":[
		{"type":"ConvertExpressionAst","typeName":"ordered","child":{"type":"HashtableAst","pairs":[
			{"key":{"type":"StringConstantExpressionAst","text":"a","bareword":true},"value":{"type":"PipelineAst"}}]}},
		{"type":"CommandParameterAst","text":"-Path:$p","name":"-Path","argument":{"type":"VariableExpressionAst","name":"p"}},
		{"type":"InvokeMemberExpressionAst","member":"Trim","static":false,"expression":{"type":"VariableExpressionAst","name":"s"}},
		{"type":"ExpandableStringExpressionAst","text":"\"é $x\"","offset":10,"nested":[{"type":"VariableExpressionAst","text":"$x","offset":13,"name":"x"}]}]}]}`
	body, err := DecodeJSON(strings.NewReader(tree))
	test.Error(t, err)

	cmd := body.End[0].(*CommandStmt)
	test.String(t, cmd.Invocation, "&")
	test.T(t, len(cmd.Elements), 4)

	convert := cmd.Elements[0].(*ConvertExpr)
	test.That(t, convert.X.(*HashExpr).Ordered, "ordered hashtable")

	param := cmd.Elements[1].(*ParamExpr)
	test.String(t, param.Name, "Path")
	test.String(t, param.Arg.(*Var).Name, "p")

	member := cmd.Elements[2].(*MemberExpr)
	test.That(t, member.Invoke)
	test.String(t, member.Name, "Trim")

	str := cmd.Elements[3].(*StringExpr)
	test.T(t, str.Nested[0].Start, 4) // "é is three bytes but two code units
	test.T(t, str.Nested[0].Len, 2)
	test.String(t, str.String()[str.Nested[0].Start:str.Nested[0].Start+str.Nested[0].Len], "$x")
}

func TestDecodeJSONParams(t *testing.T) {
	tree := `{"type":"ScriptBlockAst","paramBlock":{"type":"ParamBlockAst","attributes":["[CmdletBinding()]"],
		"parameters":[{"type":"ParameterAst","name":"$Path","attributes":["[string]"],"default":{"type":"StringConstantExpressionAst","text":"'.'"}}]}}`
	body, err := DecodeJSON(strings.NewReader(tree))
	test.Error(t, err)
	test.That(t, body.Params != nil)
	test.T(t, body.Params.Attributes, []string{"[CmdletBinding()]"})
	test.String(t, body.Params.Params[0].Name, "Path")
	test.String(t, body.Params.Params[0].Default.String(), "'.'")
}

func TestDecodeJSONErrors(t *testing.T) {
	_, err := DecodeJSON(strings.NewReader(""))
	test.T(t, err, ErrEmpty)
	_, err = DecodeJSON(strings.NewReader("\xEF\xBB\xBF \n"))
	test.T(t, err, ErrEmpty)

	var tests = []string{
		`{"text":"no type"}`,
		`{"type":""}`,
		`{"type":"ScriptBlockAst","end":"not a list"}`,
		`{"type":"ScriptBlockAst","offset":-1}`,
		`{"type":"CommandAst","invocation":"!"}`,
		`{"type":"PipelineAst"}`,
		`{"type":`,
	}
	for _, tt := range tests {
		t.Run(tt, func(t *testing.T) {
			_, err := DecodeJSON(strings.NewReader(tt))
			test.That(t, err != nil, "must return error")
		})
	}
}

func TestDecodeJSONBOM(t *testing.T) {
	body, err := DecodeJSON(strings.NewReader("\xEF\xBB\xBF" + `{"type":"ScriptBlockAst","text":"1"}`))
	test.Error(t, err)
	test.String(t, body.String(), "1")
}

func TestDecodeCBOR(t *testing.T) {
	b, err := cbor.Marshal(&node{
		Type: "ScriptBlockAst",
		Text: "$x++",
		End: []*node{{
			Type: "UnaryExpressionAst",
			Text: "$x++",
		}, {
			Type: "PipelineAst",
			Text: "$x++",
			Elements: []*node{{
				Type:       "CommandExpressionAst",
				Text:       "$x++",
				Expression: &node{Type: "UnaryExpressionAst", Text: "$x++", Operator: "++", Postfix: true, Child: &node{Type: "VariableExpressionAst", Text: "$x", Name: "x"}},
			}},
		}},
	})
	test.Error(t, err)

	body, err := DecodeCBOR(bytes.NewReader(b))
	test.Error(t, err)
	test.T(t, len(body.End), 2)
	test.That(t, body.End[0] == nil)

	unary := body.End[1].(*PipelineStmt).Elements[0].(*ExprStmt).X.(*UnaryExpr)
	test.String(t, unary.Op, "++")
	test.That(t, unary.Postfix)
	test.String(t, unary.X.(*Var).Name, "x")

	_, err = DecodeCBOR(bytes.NewReader(nil))
	test.T(t, err, ErrEmpty)
	_, err = DecodeCBOR(bytes.NewReader([]byte{0xff}))
	test.That(t, err != nil)

	b, err = cbor.Marshal(&node{Type: "PipelineAst"})
	test.Error(t, err)
	_, err = DecodeCBOR(bytes.NewReader(b))
	test.That(t, err != nil, "root must be a script block")
}
