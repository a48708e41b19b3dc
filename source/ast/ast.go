package ast

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/reverie-lang/reverie/source/token"
)

// The base Node interface
type Node interface {
	Children() []Node
	GetToken() *token.Token
	String() string
}

type Expression interface {
	Node
	expressionNode()
}

type Statement interface {
	Node
	statementNode()
}

// Expression nodes in alphabetical order.

type ApplyExpression struct {
	Token token.Token
	Fn    Expression
	Args  []Expression
}

func (ae *ApplyExpression) expressionNode() {}
func (ae *ApplyExpression) Children() []Node {
	return append([]Node{ae.Fn}, exprNodes(ae.Args)...)
}
func (ae *ApplyExpression) GetToken() *token.Token { return &ae.Token }
func (ae *ApplyExpression) String() string {
	var out bytes.Buffer
	if _, ok := ae.Fn.(*FnLiteral); ok {
		out.WriteString("(" + ae.Fn.String() + ")")
	} else {
		out.WriteString(ae.Fn.String())
	}
	out.WriteString("(")
	out.WriteString(joinExprs(ae.Args))
	out.WriteString(")")
	return out.String()
}

type ArrayLiteral struct {
	Token    token.Token
	Elements []Expression
}

func (al *ArrayLiteral) expressionNode()        {}
func (al *ArrayLiteral) Children() []Node       { return exprNodes(al.Elements) }
func (al *ArrayLiteral) GetToken() *token.Token { return &al.Token }
func (al *ArrayLiteral) String() string         { return "[" + joinExprs(al.Elements) + "]" }

type BooleanLiteral struct {
	Token token.Token
	Value bool
}

func (b *BooleanLiteral) expressionNode()        {}
func (b *BooleanLiteral) Children() []Node       { return []Node{} }
func (b *BooleanLiteral) GetToken() *token.Token { return &b.Token }
func (b *BooleanLiteral) String() string         { return strconv.FormatBool(b.Value) }

type CharLiteral struct {
	Token token.Token
	Value rune
}

func (cl *CharLiteral) expressionNode()        {}
func (cl *CharLiteral) Children() []Node       { return []Node{} }
func (cl *CharLiteral) GetToken() *token.Token { return &cl.Token }
func (cl *CharLiteral) String() string         { return strconv.QuoteRune(cl.Value) }

// A function literal such as `fn(a, b): a + b`.
type FnLiteral struct {
	Token  token.Token
	Params []string
	Body   Expression
}

func (fl *FnLiteral) expressionNode()        {}
func (fl *FnLiteral) Children() []Node       { return []Node{fl.Body} }
func (fl *FnLiteral) GetToken() *token.Token { return &fl.Token }
func (fl *FnLiteral) String() string {
	return "fn(" + strings.Join(fl.Params, ", ") + "): " + fl.Body.String()
}

type InfixExpression struct {
	Token    token.Token
	Left     Expression
	Operator string
	Right    Expression
}

func (ie *InfixExpression) expressionNode()        {}
func (ie *InfixExpression) Children() []Node       { return []Node{ie.Left, ie.Right} }
func (ie *InfixExpression) GetToken() *token.Token { return &ie.Token }
func (ie *InfixExpression) String() string {
	var out bytes.Buffer

	out.WriteString("(")
	out.WriteString(ie.Left.String())
	out.WriteString(" " + ie.Operator + " ")
	out.WriteString(ie.Right.String())
	out.WriteString(")")

	return out.String()
}

type IntegerLiteral struct {
	Token token.Token
	Value int64
}

func (il *IntegerLiteral) expressionNode()        {}
func (il *IntegerLiteral) Children() []Node       { return []Node{} }
func (il *IntegerLiteral) GetToken() *token.Token { return &il.Token }
func (il *IntegerLiteral) String() string         { return strconv.FormatInt(il.Value, 10) }

type NilLiteral struct {
	Token token.Token
}

func (nl *NilLiteral) expressionNode()        {}
func (nl *NilLiteral) Children() []Node       { return []Node{} }
func (nl *NilLiteral) GetToken() *token.Token { return &nl.Token }
func (nl *NilLiteral) String() string         { return "nil" }

type PrefixExpression struct {
	Token    token.Token
	Operator string
	Right    Expression
}

func (pe *PrefixExpression) expressionNode()        {}
func (pe *PrefixExpression) Children() []Node       { return []Node{pe.Right} }
func (pe *PrefixExpression) GetToken() *token.Token { return &pe.Token }
func (pe *PrefixExpression) String() string {
	sep := ""
	if pe.Operator == "not" {
		sep = " "
	}
	return "(" + pe.Operator + sep + pe.Right.String() + ")"
}

type StringLiteral struct {
	Token token.Token
	Value string
}

func (sl *StringLiteral) expressionNode()        {}
func (sl *StringLiteral) Children() []Node       { return []Node{} }
func (sl *StringLiteral) GetToken() *token.Token { return &sl.Token }
func (sl *StringLiteral) String() string         { return strconv.Quote(sl.Value) }

type UIntLiteral struct {
	Token token.Token
	Value uint64
}

func (ul *UIntLiteral) expressionNode()        {}
func (ul *UIntLiteral) Children() []Node       { return []Node{} }
func (ul *UIntLiteral) GetToken() *token.Token { return &ul.Token }
func (ul *UIntLiteral) String() string         { return strconv.FormatUint(ul.Value, 10) + "u" }

// LValues.

type DerefKind int

const (
	DIRECT DerefKind = iota // x!
	FIELD                   // x.len
	INDEX                   // x.(i)
)

type Deref struct {
	Token token.Token
	Kind  DerefKind
	Name  string     // For FIELD.
	Index Expression // For INDEX.
}

func (d *Deref) String() string {
	switch d.Kind {
	case DIRECT:
		return "!"
	case FIELD:
		return "." + d.Name
	}
	return ".(" + d.Index.String() + ")"
}

// A variable followed by any number of dereferences. As an expression it evaluates to
// whatever is at that location.
type LValue struct {
	Token token.Token
	Name  string
	Ops   []*Deref
}

func (lv *LValue) expressionNode() {}
func (lv *LValue) Children() []Node {
	result := []Node{}
	for _, op := range lv.Ops {
		if op.Kind == INDEX {
			result = append(result, op.Index)
		}
	}
	return result
}
func (lv *LValue) GetToken() *token.Token { return &lv.Token }
func (lv *LValue) String() string {
	var out bytes.Buffer
	out.WriteString(lv.Name)
	for _, op := range lv.Ops {
		out.WriteString(op.String())
	}
	return out.String()
}

// Statement nodes.

type SkipStatement struct {
	Token token.Token
}

func (ss *SkipStatement) statementNode()         {}
func (ss *SkipStatement) Children() []Node       { return []Node{} }
func (ss *SkipStatement) GetToken() *token.Token { return &ss.Token }
func (ss *SkipStatement) String() string         { return "skip" }

// A scoped variable: `var x := init`, a body, and `drop x := dest`.
type VarStatement struct {
	Token token.Token
	Name  string
	Type  string // Optional, and not checked.
	Init  Expression
	Body  []Statement
	Dest  Expression
}

func (vs *VarStatement) statementNode() {}
func (vs *VarStatement) Children() []Node {
	return append(append([]Node{vs.Init}, stmtNodes(vs.Body)...), vs.Dest)
}
func (vs *VarStatement) GetToken() *token.Token { return &vs.Token }
func (vs *VarStatement) String() string {
	var out bytes.Buffer
	out.WriteString("var " + vs.Name)
	if vs.Type != "" {
		out.WriteString(": " + vs.Type)
	}
	out.WriteString(" := " + vs.Init.String() + "\n")
	writeBody(&out, vs.Body)
	out.WriteString("drop " + vs.Name + " := " + vs.Dest.String())
	return out.String()
}

type IfStatement struct {
	Token  token.Token
	Test   Expression
	Then   []Statement
	Else   []Statement
	Assert Expression
}

func (is *IfStatement) statementNode() {}
func (is *IfStatement) Children() []Node {
	result := append([]Node{is.Test}, stmtNodes(is.Then)...)
	return append(append(result, stmtNodes(is.Else)...), is.Assert)
}
func (is *IfStatement) GetToken() *token.Token { return &is.Token }
func (is *IfStatement) String() string {
	var out bytes.Buffer
	out.WriteString("if " + is.Test.String() + "\n")
	writeBody(&out, is.Then)
	if len(is.Else) > 0 {
		out.WriteString("else\n")
		writeBody(&out, is.Else)
	}
	out.WriteString("fi " + is.Assert.String())
	return out.String()
}

// A loop: `from assert`, the forward body, `until test`, the backward body, and `loop`.
type FromStatement struct {
	Token    token.Token
	Assert   Expression
	Forward  []Statement
	Backward []Statement
	Test     Expression
}

func (fs *FromStatement) statementNode() {}
func (fs *FromStatement) Children() []Node {
	result := append([]Node{fs.Assert}, stmtNodes(fs.Forward)...)
	result = append(result, fs.Test)
	return append(result, stmtNodes(fs.Backward)...)
}
func (fs *FromStatement) GetToken() *token.Token { return &fs.Token }
func (fs *FromStatement) String() string {
	var out bytes.Buffer
	out.WriteString("from " + fs.Assert.String() + "\n")
	writeBody(&out, fs.Forward)
	out.WriteString("until " + fs.Test.String() + "\n")
	writeBody(&out, fs.Backward)
	out.WriteString("loop")
	return out.String()
}

// `do name: args` or, if Undo is set, `undo name: args`.
type CallStatement struct {
	Token token.Token
	Undo  bool
	Name  string
	Args  []Expression
}

func (cs *CallStatement) statementNode()         {}
func (cs *CallStatement) Children() []Node       { return exprNodes(cs.Args) }
func (cs *CallStatement) GetToken() *token.Token { return &cs.Token }
func (cs *CallStatement) String() string {
	keyword := "do "
	if cs.Undo {
		keyword = "undo "
	}
	if len(cs.Args) == 0 {
		return keyword + cs.Name
	}
	return keyword + cs.Name + ": " + joinExprs(cs.Args)
}

type UpdateOp int

const (
	XOR UpdateOp = iota
	ADD
	SUB
	ROL
	ROR
)

var updateOpLiterals = []string{token.ASSIGN, token.ADD, token.SUB, token.ROL, token.ROR}

func (op UpdateOp) String() string {
	return updateOpLiterals[op]
}

// An in-place update such as `x += 1`.
type UpdateStatement struct {
	Token    token.Token
	Operator UpdateOp
	Target   *LValue
	Value    Expression
}

func (us *UpdateStatement) statementNode()         {}
func (us *UpdateStatement) Children() []Node       { return []Node{us.Target, us.Value} }
func (us *UpdateStatement) GetToken() *token.Token { return &us.Token }
func (us *UpdateStatement) String() string {
	return us.Target.String() + " " + us.Operator.String() + " " + us.Value.String()
}

type SwapStatement struct {
	Token token.Token
	Left  *LValue
	Right *LValue
}

func (ss *SwapStatement) statementNode()         {}
func (ss *SwapStatement) Children() []Node       { return []Node{ss.Left, ss.Right} }
func (ss *SwapStatement) GetToken() *token.Token { return &ss.Token }
func (ss *SwapStatement) String() string         { return ss.Left.String() + " <> " + ss.Right.String() }

// Items.

type Param struct {
	Name string
	Type string
}

type Procedure struct {
	Token  token.Token
	Name   string
	Params []Param
	Body   []Statement
}

func (pr *Procedure) Children() []Node       { return stmtNodes(pr.Body) }
func (pr *Procedure) GetToken() *token.Token { return &pr.Token }
func (pr *Procedure) String() string {
	var out bytes.Buffer
	out.WriteString("proc " + pr.Signature() + "\n")
	writeBody(&out, pr.Body)
	out.WriteString("end")
	return out.String()
}

// The name and parameters, e.g. `inc(n: int)`.
func (pr *Procedure) Signature() string {
	params := []string{}
	for _, p := range pr.Params {
		if p.Type == "" {
			params = append(params, p.Name)
		} else {
			params = append(params, p.Name+": "+p.Type)
		}
	}
	return pr.Name + "(" + strings.Join(params, ", ") + ")"
}

func (pr *Procedure) ParamNames() []string {
	result := make([]string, len(pr.Params))
	for i, p := range pr.Params {
		result[i] = p.Name
	}
	return result
}

// Renders a sequence of statements as it would appear at the top level of a script.
func SequenceString(stmts []Statement) string {
	result := make([]string, len(stmts))
	for i, s := range stmts {
		result[i] = s.String()
	}
	return strings.Join(result, "\n")
}

func writeBody(out *bytes.Buffer, body []Statement) {
	for _, s := range body {
		for _, line := range strings.Split(s.String(), "\n") {
			out.WriteString("    " + line + "\n")
		}
	}
}

func joinExprs(exprs []Expression) string {
	result := make([]string, len(exprs))
	for i, e := range exprs {
		result[i] = e.String()
	}
	return strings.Join(result, ", ")
}

func exprNodes(exprs []Expression) []Node {
	result := make([]Node, len(exprs))
	for i, e := range exprs {
		result[i] = e
	}
	return result
}

func stmtNodes(stmts []Statement) []Node {
	result := make([]Node, len(stmts))
	for i, s := range stmts {
		result[i] = s
	}
	return result
}
