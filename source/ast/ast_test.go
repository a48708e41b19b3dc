package ast

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func ident(name string) *LValue { return &LValue{Name: name} }

func num(i int64) *IntegerLiteral { return &IntegerLiteral{Value: i} }

func sampleStatements() []Statement {
	return []Statement{
		&SkipStatement{},
		&VarStatement{Name: "x", Type: "int", Init: num(5), Dest: num(8),
			Body: []Statement{&UpdateStatement{Operator: ADD, Target: ident("x"), Value: num(3)}}},
		&IfStatement{Test: &BooleanLiteral{Value: true}, Assert: &BooleanLiteral{Value: false},
			Then: []Statement{&UpdateStatement{Operator: SUB, Target: ident("y"), Value: num(1)}},
			Else: []Statement{&SkipStatement{}}},
		&FromStatement{
			Assert:   &InfixExpression{Left: ident("i"), Operator: "=", Right: num(0)},
			Forward:  []Statement{&UpdateStatement{Operator: ADD, Target: ident("i"), Value: num(1)}},
			Test:     &InfixExpression{Left: ident("i"), Operator: "=", Right: num(10)},
			Backward: []Statement{&UpdateStatement{Operator: ROL, Target: ident("j"), Value: num(1)}}},
		&CallStatement{Name: "f", Args: []Expression{ident("a")}},
		&CallStatement{Undo: true, Name: "g"},
		&UpdateStatement{Operator: XOR, Target: ident("x"), Value: num(7)},
		&UpdateStatement{Operator: ADD, Target: ident("x"), Value: num(7)},
		&UpdateStatement{Operator: SUB, Target: ident("x"), Value: num(7)},
		&UpdateStatement{Operator: ROL, Target: ident("x"), Value: num(7)},
		&UpdateStatement{Operator: ROR, Target: ident("x"), Value: num(7)},
		&SwapStatement{Left: ident("a"), Right: &LValue{Name: "b", Ops: []*Deref{{Kind: INDEX, Index: num(0)}}}},
	}
}

func TestInvertIsAnInvolution(t *testing.T) {
	for _, s := range sampleStatements() {
		if diff := cmp.Diff(s, Invert(Invert(s))); diff != "" {
			t.Fatalf("Invert(Invert(%s)) mismatch (-want +got):\n%s", s.String(), diff)
		}
	}
}

func TestInvertSequenceIsAnInvolution(t *testing.T) {
	stmts := sampleStatements()
	if diff := cmp.Diff(stmts, InvertSequence(InvertSequence(stmts))); diff != "" {
		t.Fatalf("InvertSequence twice mismatch (-want +got):\n%s", diff)
	}
}

func TestInvert(t *testing.T) {
	tests := []struct {
		in   Statement
		want string
	}{
		{&UpdateStatement{Operator: ADD, Target: ident("x"), Value: num(1)}, "x -= 1"},
		{&UpdateStatement{Operator: SUB, Target: ident("x"), Value: num(1)}, "x += 1"},
		{&UpdateStatement{Operator: ROL, Target: ident("x"), Value: num(1)}, "x >>= 1"},
		{&UpdateStatement{Operator: ROR, Target: ident("x"), Value: num(1)}, "x <<= 1"},
		{&UpdateStatement{Operator: XOR, Target: ident("x"), Value: num(1)}, "x := 1"},
		{&CallStatement{Name: "f", Args: []Expression{num(1), num(2)}}, "undo f: 1, 2"},
		{&CallStatement{Undo: true, Name: "f"}, "do f"},
		{&SwapStatement{Left: ident("a"), Right: ident("b")}, "a <> b"},
		{&SkipStatement{}, "skip"},
		{&VarStatement{Name: "x", Init: num(5), Dest: num(8)}, "var x := 8\ndrop x := 5"},
		{&IfStatement{Test: ident("p"), Assert: ident("q"),
			Then: []Statement{&UpdateStatement{Operator: ADD, Target: ident("x"), Value: num(1)}}},
			"if q\n    x += 1\nfi p"},
	}
	for _, tt := range tests {
		if got := Invert(tt.in).String(); got != tt.want {
			t.Fatalf("Invert(%q) = %q, want %q", tt.in.String(), got, tt.want)
		}
	}
}

func TestInvertSequenceReversesAndRecurses(t *testing.T) {
	stmts := []Statement{
		&UpdateStatement{Operator: ADD, Target: ident("x"), Value: num(1)},
		&VarStatement{Name: "t", Init: num(0), Dest: num(0), Body: []Statement{
			&UpdateStatement{Operator: XOR, Target: ident("t"), Value: ident("x")},
			&CallStatement{Name: "f", Args: []Expression{ident("t")}},
		}},
		&FromStatement{Assert: ident("a"), Test: ident("b"),
			Forward:  []Statement{&UpdateStatement{Operator: ROL, Target: ident("y"), Value: num(1)}},
			Backward: []Statement{&UpdateStatement{Operator: SUB, Target: ident("y"), Value: num(2)}}},
	}
	want := "from b\n" +
		"    y >>= 1\n" +
		"until a\n" +
		"    y += 2\n" +
		"loop\n" +
		"var t := 0\n" +
		"    undo f: t\n" +
		"    t := x\n" +
		"drop t := 0\n" +
		"x -= 1"
	if got := SequenceString(InvertSequence(stmts)); got != want {
		t.Fatalf("InvertSequence gave\n%s\nwant\n%s", got, want)
	}
	// The original must be untouched.
	if got := stmts[0].String(); got != "x += 1" {
		t.Fatalf("InvertSequence altered its input: %q", got)
	}
}

func TestMentions(t *testing.T) {
	x := ident("x")
	tests := []struct {
		expr Expression
		want bool
	}{
		{x, true},
		{ident("y"), false},
		{&InfixExpression{Left: ident("y"), Operator: "+", Right: x}, true},
		{&LValue{Name: "a", Ops: []*Deref{{Kind: INDEX, Index: x}}}, true},
		{&FnLiteral{Params: []string{"x"}, Body: x}, false},
		{&FnLiteral{Params: []string{"y"}, Body: x}, true},
		{&ArrayLiteral{Elements: []Expression{num(1), &PrefixExpression{Operator: "-", Right: x}}}, true},
	}
	for _, tt := range tests {
		if got := Mentions(tt.expr, "x"); got != tt.want {
			t.Fatalf("Mentions(%s, x) = %v, want %v", tt.expr.String(), got, tt.want)
		}
	}
}

func TestStringRendering(t *testing.T) {
	tests := []struct {
		node Node
		want string
	}{
		{&LValue{Name: "a", Ops: []*Deref{{Kind: DIRECT}, {Kind: FIELD, Name: "len"}, {Kind: INDEX, Index: num(2)}}}, "a!.len.(2)"},
		{&ApplyExpression{Fn: &FnLiteral{Params: []string{"p"}, Body: ident("p")}, Args: []Expression{num(1)}}, "(fn(p): p)(1)"},
		{&PrefixExpression{Operator: "not", Right: ident("b")}, "(not b)"},
		{&StringLiteral{Value: "a\"b"}, `"a\"b"`},
		{&CharLiteral{Value: 'q'}, "'q'"},
		{&UIntLiteral{Value: 3}, "3u"},
		{&Procedure{Name: "p", Params: []Param{{Name: "a", Type: "int"}, {Name: "b"}}, Body: []Statement{&SkipStatement{}}}, "proc p(a: int, b)\n    skip\nend"},
	}
	for _, tt := range tests {
		if got := tt.node.String(); got != tt.want {
			t.Fatalf("String() = %q, want %q", got, tt.want)
		}
	}
}
