package evaluator

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"github.com/reverie-lang/reverie/source/ast"
	"github.com/reverie-lang/reverie/source/err"
	"github.com/reverie-lang/reverie/source/parser"
	"github.com/reverie-lang/reverie/source/registry"
	"github.com/reverie-lang/reverie/source/scope"
	"github.com/reverie-lang/reverie/source/test_helper"
	"github.com/reverie-lang/reverie/source/values"
)

var valueComparer = cmp.Comparer(func(a, b values.Value) bool { return a.Equal(b) })

func bind(name string, v values.Value) scope.Binding {
	return scope.Binding{Name: name, Value: v}
}

func newTestContext(bindings ...scope.Binding) *Context {
	s := scope.New()
	for _, b := range bindings {
		s.Push(b.Name, b.Value)
	}
	return NewContext(s, registry.New(), zerolog.Nop())
}

func parseStatement(t *testing.T, source string) ast.Statement {
	t.Helper()
	stmt, e := parser.ParseStatement("test", source)
	if e != nil {
		t.Fatalf("can't parse %q: %s", source, e)
	}
	return stmt
}

// Renders the stack from the bottom up.
func dump(c *Context) string {
	result := []string{}
	for _, b := range c.Scope.Bindings() {
		result = append(result, b.Name+" = "+b.Value.String())
	}
	return strings.Join(result, ", ")
}

func expressionContext() *Context {
	return newTestContext(
		bind("x", values.Int(7)),
		bind("u", values.UInt(5)),
		bind("s", values.String("héllo")),
		bind("a", values.Array(values.Int(1), values.Int(2), values.Int(3))),
	)
}

func testEvalOutput(s string) (string, error) {
	exp, e := parser.ParseExpression("test", s)
	if e != nil {
		return "", e
	}
	v, e := Eval(exp, expressionContext())
	if e != nil {
		return "", e
	}
	return v.String(), nil
}

func testEvalErrors(s string) (string, error) {
	exp, e := parser.ParseExpression("test", s)
	if e != nil {
		return "", e
	}
	_, e = Eval(exp, expressionContext())
	if e == nil {
		return "unexpected successful evaluation", nil
	}
	return e.(*err.Error).ErrorId, nil
}

func TestExpressions(t *testing.T) {
	tests := []test_helper.TestItem{
		{Input: `nil`, Want: `nil`},
		{Input: `2 + 3 * 4`, Want: `14`},
		{Input: `7 / 2`, Want: `3`},
		{Input: `-7 % 3`, Want: `-1`},
		{Input: `9223372036854775807 + 1`, Want: `-9223372036854775808`},
		{Input: `-9223372036854775808 - 1`, Want: `9223372036854775807`},
		{Input: `0u - 1u`, Want: `18446744073709551615u`},
		{Input: `~0`, Want: `-1`},
		{Input: `~0u`, Want: `18446744073709551615u`},
		{Input: `6 & 3`, Want: `2`},
		{Input: `6 | 3`, Want: `7`},
		{Input: `6 ^ 3`, Want: `5`},
		{Input: `1 < 2`, Want: `true`},
		{Input: `'a' < 'b'`, Want: `true`},
		{Input: `"abc" >= "abd"`, Want: `false`},
		{Input: `1 = 1u`, Want: `false`},
		{Input: `[1, 2] = [1, 2]`, Want: `true`},
		{Input: `x != 7`, Want: `false`},
		{Input: `not true or true`, Want: `true`},
		{Input: `false and y`, Want: `false`},
		{Input: `true or y`, Want: `true`},
		{Input: `"ab" + "c"`, Want: `"abc"`},
		{Input: `s.len`, Want: `5u`},
		{Input: `s.(1)`, Want: `'é'`},
		{Input: `a.(2u)`, Want: `3`},
		{Input: `a.len`, Want: `3u`},
		{Input: `[x, u]`, Want: `[7, 5u]`},
		{Input: `fn(a): a`, Want: `fn(a): a`},
		{Input: `(fn(n): n * x)(6)`, Want: `42`},
		{Input: `(fn(x): x + 1)(1)`, Want: `2`},
	}
	test_helper.RunTest(t, tests, testEvalOutput)
}

func TestEvalErrors(t *testing.T) {
	tests := []test_helper.TestItem{
		{Input: `1 + 1u`, Want: `eval/infix/type`},
		{Input: `1 / 0`, Want: `eval/div/zero`},
		{Input: `1u % 0u`, Want: `eval/div/zero`},
		{Input: `y`, Want: `eval/unbound`},
		{Input: `a.(3)`, Want: `eval/deref/index/range`},
		{Input: `a.(-1)`, Want: `eval/deref/index/range`},
		{Input: `a.('c')`, Want: `eval/deref/index/kind`},
		{Input: `x.(0)`, Want: `eval/deref/index/kind`},
		{Input: `x.len`, Want: `eval/deref/field`},
		{Input: `a.size`, Want: `eval/deref/field`},
		{Input: `x!`, Want: `eval/deref/direct`},
		{Input: `-1u`, Want: `eval/prefix/type`},
		{Input: `not 1`, Want: `eval/prefix/type`},
		{Input: `x(1)`, Want: `eval/fn/apply`},
		{Input: `(fn(a): a)(1, 2)`, Want: `eval/fn/arity`},
		{Input: `1 and true`, Want: `eval/infix/type`},
		{Input: `true < false`, Want: `eval/infix/type`},
	}
	test_helper.RunTest(t, tests, testEvalErrors)
}

func TestStatements(t *testing.T) {
	tests := []struct {
		bindings []scope.Binding
		input    string
		want     string
	}{
		{[]scope.Binding{bind("x", values.Int(0))}, "x += 5", "x = 5"},
		{[]scope.Binding{bind("x", values.Int(5))}, "x -= 7", "x = -2"},
		{[]scope.Binding{bind("x", values.Int(6))}, "x := 3", "x = 5"},
		{[]scope.Binding{bind("x", values.Int(1))}, "x <<= 65", "x = 2"},
		{[]scope.Binding{bind("x", values.Int(1))}, "x >>= 1", "x = -9223372036854775808"},
		{[]scope.Binding{bind("u", values.UInt(1))}, "u >>= 1u", "u = 9223372036854775808u"},
		{[]scope.Binding{bind("u", values.UInt(0))}, "u -= 1u", "u = 18446744073709551615u"},
		{[]scope.Binding{bind("a", values.Array(values.Int(1), values.Int(2), values.Int(3)))},
			"a.(1) += 10", "a = [1, 12, 3]"},
		{[]scope.Binding{bind("a", values.Array(values.Int(1), values.Int(2)))},
			"a.(0) <> a.(1)", "a = [2, 1]"},
		{[]scope.Binding{bind("s", values.String("abc")), bind("c", values.Char('z'))},
			"s.(0) <> c", `s = "zbc", c = 'a'`},
		{[]scope.Binding{bind("x", values.Int(1)), bind("y", values.Int(2))}, "x <> y", "x = 2, y = 1"},
		{[]scope.Binding{bind("x", values.Int(1))}, "x <> x", "x = 1"},
		{[]scope.Binding{bind("x", values.Int(1)), bind("x", values.Int(2))}, "x += 1", "x = 1, x = 3"},
		{[]scope.Binding{bind("x", values.Int(0))}, "var y := 5\n y += 3\ndrop y := 8", "x = 0"},
		{[]scope.Binding{bind("x", values.Int(0))}, "var y := 5\n x += y\ndrop y := 5", "x = 5"},
		{[]scope.Binding{bind("x", values.Int(0))}, "if true\n x += 1\nfi true", "x = 1"},
		{[]scope.Binding{bind("x", values.Int(0))}, "if x = 1\n x += 1\nelse\n x -= 1\nfi x = 2", "x = -1"},
		{[]scope.Binding{bind("i", values.Int(0)), bind("s", values.Int(0))},
			"from i = 0\n i += 1\n s += i\nuntil i = 10\nloop", "i = 10, s = 55"},
		{[]scope.Binding{bind("i", values.Int(0))}, "from i = 0\nuntil i = 3\n i += 1\nloop", "i = 3"},
		{[]scope.Binding{bind("x", values.Int(0))}, "skip", "x = 0"},
	}
	for _, tt := range tests {
		c := newTestContext(tt.bindings...)
		if e := Exec(parseStatement(t, tt.input), c); e != nil {
			t.Fatalf("executing %q failed: %s", tt.input, e)
		}
		if got := dump(c); got != tt.want {
			t.Fatalf("after %q the stack is %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestStatementErrors(t *testing.T) {
	nested := values.Array(values.Array(values.Int(1)), values.Array(values.Int(2)))
	tests := []struct {
		input string
		id    string
		kind  err.Kind
	}{
		{"if true\n x += 1\nfi false", "eval/if/assert", err.REVERSIBILITY_VIOLATION},
		{"x <> b", "eval/swap/type", err.TYPE_MISMATCH},
		{"x += x", "eval/update/self", err.REVERSIBILITY_VIOLATION},
		{"x -= (fn(n): n + x)(1)", "eval/update/self", err.REVERSIBILITY_VIOLATION},
		{"x += 1u", "eval/update/type", err.TYPE_MISMATCH},
		{"b += 1", "eval/update/type", err.TYPE_MISMATCH},
		{"var y := 1\ndrop y := 2", "eval/var/drop", err.REVERSIBILITY_VIOLATION},
		{"from x = 1\n x += 1\nuntil x = 3\nloop", "eval/from/entry", err.REVERSIBILITY_VIOLATION},
		{"from x = 0\nuntil x = 3\n skip\nloop", "eval/from/loop", err.REVERSIBILITY_VIOLATION},
		{"from x\n skip\nuntil true\nloop", "eval/from/type/assert", err.TYPE_MISMATCH},
		{"if 1\n skip\nfi", "eval/if/type/test", err.TYPE_MISMATCH},
		{"if true\n skip\nfi 1", "eval/if/type/assert", err.TYPE_MISMATCH},
		{"do nothing", "eval/proc/missing", err.PROCEDURE_NOT_FOUND},
		{"a.len += 1", "eval/assign/field", err.UNSUPPORTED_DEREFERENCE},
		{"a <> a.(0)", "eval/swap/overlap", err.REVERSIBILITY_VIOLATION},
		{"x! += 1", "eval/deref/direct", err.UNSUPPORTED_DEREFERENCE},
		{"y += 1", "eval/unbound", err.UNBOUND_NAME},
		{"a.(2) <> x", "eval/deref/index/range", err.INDEX_OUT_OF_RANGE},
		{"x += 1 / 0", "eval/div/zero", err.DIVISION_BY_ZERO},
		{"a.(a.(0).(0)).(0) += 1", "eval/update/index", err.REVERSIBILITY_VIOLATION},
		{"a.(0) <> a.(a.(0).(0))", "eval/swap/index", err.REVERSIBILITY_VIOLATION},
		{"x <> a.(x).(0)", "eval/swap/index", err.REVERSIBILITY_VIOLATION},
	}
	for _, tt := range tests {
		c := newTestContext(bind("x", values.Int(0)), bind("b", values.TRUE), bind("a", nested))
		e := Exec(parseStatement(t, tt.input), c)
		if e == nil {
			t.Fatalf("executing %q should have failed", tt.input)
		}
		ours := e.(*err.Error)
		if ours.ErrorId != tt.id || !err.Is(e, tt.kind) {
			t.Fatalf("executing %q gave %s (%s), want %s (%s)", tt.input, ours.ErrorId, ours.Kind, tt.id, tt.kind)
		}
	}
}

func TestReversibilityIsDistinguished(t *testing.T) {
	c := newTestContext(bind("x", values.Int(0)))
	e := Exec(parseStatement(t, "if true\n x += 1\nfi false"), c)
	if ours := e.(*err.Error); !ours.IsReversibility() || ours.IsInternal() {
		t.Fatalf("a false assertion should be a reversibility violation, got %s", ours.Kind)
	}
	e = Exec(parseStatement(t, "x += true"), c)
	if ours := e.(*err.Error); ours.IsReversibility() {
		t.Fatalf("a type error should not be a reversibility violation")
	}
}

func TestVarRoundTrip(t *testing.T) {
	c := newTestContext(bind("x", values.Int(3)))
	before := c.Scope.Bindings()
	stmt := parseStatement(t, "var y := x + 1\n y += 2\n x += y\ndrop y := 6")
	if e := Exec(stmt, c); e != nil {
		t.Fatalf("forward failed: %s", e)
	}
	if got := dump(c); got != "x = 9" {
		t.Fatalf("forward left %q, want %q", got, "x = 9")
	}
	if e := ExecBackward([]ast.Statement{stmt}, c); e != nil {
		t.Fatalf("backward failed: %s", e)
	}
	if diff := cmp.Diff(before, c.Scope.Bindings(), valueComparer); diff != "" {
		t.Fatalf("round trip changed the stack (-want +got):\n%s", diff)
	}
}

func TestProgramRunsBackward(t *testing.T) {
	c := newTestContext(bind("i", values.Int(0)), bind("s", values.Int(0)), bind("a", values.Array(values.Int(1), values.Int(2))))
	before := c.Scope.Bindings()
	program, e := parser.ParseProgram("test", `
from i = 0
    i += 1
    s += i
until i = 10
loop
if s > 50
    s <<= 3
else
    s -= 1
fi s > 400
a.(0) <> a.(1)
`)
	if e != nil {
		t.Fatalf("can't parse program: %s", e)
	}
	if e := ExecSequence(program.Statements, c); e != nil {
		t.Fatalf("forward failed: %s", e)
	}
	if got, want := dump(c), "i = 10, s = 440, a = [2, 1]"; got != want {
		t.Fatalf("forward left %q, want %q", got, want)
	}
	if e := ExecBackward(program.Statements, c); e != nil {
		t.Fatalf("backward failed: %s", e)
	}
	if diff := cmp.Diff(before, c.Scope.Bindings(), valueComparer); diff != "" {
		t.Fatalf("running backward didn't restore the stack (-want +got):\n%s", diff)
	}
}

func TestSwapTwice(t *testing.T) {
	c := newTestContext(bind("x", values.String("a")), bind("y", values.String("b")))
	before := c.Scope.Bindings()
	stmt := parseStatement(t, "x <> y")
	if e := Exec(stmt, c); e != nil {
		t.Fatalf("swap failed: %s", e)
	}
	if got := dump(c); got != `x = "b", y = "a"` {
		t.Fatalf("after one swap the stack is %q", got)
	}
	if e := Exec(stmt, c); e != nil {
		t.Fatalf("swap failed: %s", e)
	}
	if diff := cmp.Diff(before, c.Scope.Bindings(), valueComparer); diff != "" {
		t.Fatalf("two swaps changed the stack (-want +got):\n%s", diff)
	}
}

func TestIndexedSwapTwice(t *testing.T) {
	c := newTestContext(bind("a", values.Array(values.Int(1), values.Int(0))), bind("i", values.Int(1)))
	before := c.Scope.Bindings()
	stmt := parseStatement(t, "a.(0) <> a.(i)")
	for n := 0; n < 2; n++ {
		if e := Exec(stmt, c); e != nil {
			t.Fatalf("swap failed: %s", e)
		}
	}
	if diff := cmp.Diff(before, c.Scope.Bindings(), valueComparer); diff != "" {
		t.Fatalf("two swaps changed the stack (-want +got):\n%s", diff)
	}
	e := Exec(parseStatement(t, "a.(0) <> a.(a.(0))"), c)
	if !err.Is(e, err.REVERSIBILITY_VIOLATION) {
		t.Fatalf("a swap which moves its own index should be refused, got %v", e)
	}
	if diff := cmp.Diff(before, c.Scope.Bindings(), valueComparer); diff != "" {
		t.Fatalf("a refused swap changed the stack (-want +got):\n%s", diff)
	}
}

func TestSelfIndexedUpdate(t *testing.T) {
	c := newTestContext(bind("a", values.Array(values.Int(0), values.Int(5))))
	e := Exec(parseStatement(t, "a.(a.(0)) += 1"), c)
	if ours, ok := e.(*err.Error); !ok || ours.ErrorId != "eval/update/index" {
		t.Fatalf("an update which moves its own index should be refused, got %v", e)
	}
	if got := dump(c); got != "a = [0, 5]" {
		t.Fatalf("a refused update changed the stack to %q", got)
	}
}

func TestFromFinishingAtOnce(t *testing.T) {
	c := newTestContext(bind("f", values.Int(0)), bind("b", values.Int(0)))
	if e := Exec(parseStatement(t, "from true\n f += 1\nuntil true\n b += 1\nloop"), c); e != nil {
		t.Fatalf("loop failed: %s", e)
	}
	if got := dump(c); got != "f = 1, b = 0" {
		t.Fatalf("loop left %q, want %q", got, "f = 1, b = 0")
	}
}

func TestUpdatesInvert(t *testing.T) {
	ints := []int64{0, 1, -1, 42, -9223372036854775808, 9223372036854775807}
	for _, v := range ints {
		for _, r := range ints {
			for _, pair := range [][2]ast.UpdateOp{{ast.ROR, ast.ROL}, {ast.ROL, ast.ROR}, {ast.SUB, ast.ADD}, {ast.XOR, ast.XOR}} {
				there, e := applyUpdate(&ast.UpdateStatement{Operator: pair[0]}, values.Int(v), values.Int(r))
				if e != nil {
					t.Fatalf("%s failed: %s", pair[0], e)
				}
				back, e := applyUpdate(&ast.UpdateStatement{Operator: pair[1]}, there, values.Int(r))
				if e != nil {
					t.Fatalf("%s failed: %s", pair[1], e)
				}
				if !back.Equal(values.Int(v)) {
					t.Fatalf("%d %s %d then %s gave %s", v, pair[0], r, pair[1], back)
				}
			}
		}
	}
	for _, v := range []uint64{0, 1, 1 << 63, 18446744073709551615} {
		for _, r := range []uint64{0, 3, 64, 100, 18446744073709551615} {
			there, _ := applyUpdate(&ast.UpdateStatement{Operator: ast.ROR}, values.UInt(v), values.UInt(r))
			back, _ := applyUpdate(&ast.UpdateStatement{Operator: ast.ROL}, there, values.UInt(r))
			if !back.Equal(values.UInt(v)) {
				t.Fatalf("rotating %d by %d right and then left gave %s", v, r, back)
			}
		}
	}
}

const procedures = `
proc double(n: int, acc)
    acc += n
    acc += n
end

proc quadruple(n, acc)
    do double: n, acc
    do double: n, acc
end

proc addto(a)
    x += a
end
`

func procedureContext(t *testing.T) *Context {
	program, e := parser.ParseProgram("test", procedures)
	if e != nil {
		t.Fatalf("can't parse procedures: %s", e)
	}
	c := newTestContext(bind("x", values.Int(5)), bind("y", values.Int(1)))
	for _, proc := range program.Procedures {
		c.Procs.AddProc(proc)
	}
	return c
}

func TestProcedures(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"do double: x, y", "x = 5, y = 11"},
		{"undo double: x, y", "x = 5, y = -9"},
		{"do quadruple: x, y", "x = 5, y = 21"},
		{"undo quadruple: x, y", "x = 5, y = -19"},
		{"do double: 2, y", "x = 5, y = 5"},
		{"var n := 0\n do double: x, n\n y += n\n undo double: x, n\ndrop n := 0", "x = 5, y = 11"},
		{"do addto: y", "x = 6, y = 1"},
		{"undo addto: y", "x = 4, y = 1"},
	}
	for _, tt := range tests {
		c := procedureContext(t)
		if e := Exec(parseStatement(t, tt.input), c); e != nil {
			t.Fatalf("executing %q failed: %s", tt.input, e)
		}
		if got := dump(c); got != tt.want {
			t.Fatalf("after %q the stack is %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestProcedureErrors(t *testing.T) {
	tests := []test_helper.TestItem{
		{Input: "do double: x", Want: "eval/call/arity"},
		{Input: "do double: x, x", Want: "eval/call/alias"},
		{Input: "do double: x, true", Want: "eval/update/type"},
		{Input: "do triple: x, y", Want: "eval/proc/missing"},
		{Input: "do addto: x", Want: "eval/call/shared"},
		{Input: "undo addto: x", Want: "eval/call/shared"},
	}
	test_helper.RunTest(t, tests, func(s string) (string, error) {
		c := procedureContext(t)
		e := Exec(parseStatement(t, s), c)
		if e == nil {
			return "unexpected success", nil
		}
		return e.(*err.Error).ErrorId, nil
	})
}

func TestNativeProcedures(t *testing.T) {
	c := newTestContext(bind("x", values.Int(1)), bind("a", values.Array()))
	step := func(by int64) registry.NativeFunc {
		return func(args []values.Value) ([]values.Value, error) {
			if len(args) != 1 || args[0].T != values.INT {
				return nil, err.CreateErr("builtin/args", nil, "step", "an int", args)
			}
			return []values.Value{values.Int(args[0].V.(int64) + by)}, nil
		}
	}
	c.Procs.AddNative("step", step(1), step(-1))
	if e := Exec(parseStatement(t, "do step: x"), c); e != nil {
		t.Fatalf("do step failed: %s", e)
	}
	if got := dump(c); got != "x = 2, a = []" {
		t.Fatalf("after do step the stack is %q", got)
	}
	if e := Exec(parseStatement(t, "undo step: x"), c); e != nil {
		t.Fatalf("undo step failed: %s", e)
	}
	if got := dump(c); got != "x = 1, a = []" {
		t.Fatalf("after undo step the stack is %q", got)
	}
	e := Exec(parseStatement(t, "do step: a"), c)
	if e == nil {
		t.Fatalf("do step on an array should have failed")
	}
	if tok := e.(*err.Error).Token; tok == nil || tok.Line != 1 {
		t.Fatalf("a native error should be given the position of the call")
	}
}

func TestTraceAndLogging(t *testing.T) {
	var buf bytes.Buffer
	c := newTestContext(bind("x", values.Int(0)))
	c.Log = zerolog.New(&buf).Level(zerolog.TraceLevel)
	e := Exec(parseStatement(t, "var y := 1\n y += z\ndrop y := 1"), c)
	if !err.Is(e, err.UNBOUND_NAME) {
		t.Fatalf("expected an unbound name, got %v", e)
	}
	if trace := e.(*err.Error).Trace; len(trace) != 2 || trace[1].Line != 1 || trace[0].Line != 2 {
		t.Fatalf("the trace should name the update and then the var statement, got %d entries", len(trace))
	}
	if !strings.Contains(buf.String(), `"message":"push"`) {
		t.Fatalf("pushing a variable should be logged at trace level, log was:\n%s", buf.String())
	}
	buf.Reset()
	c = newTestContext(bind("x", values.Int(0)))
	c.Log = zerolog.New(&buf).Level(zerolog.WarnLevel)
	Exec(parseStatement(t, "if true\n x += 1\nfi false"), c)
	if !strings.Contains(buf.String(), `"level":"warn"`) || !strings.Contains(buf.String(), "eval/if/assert") {
		t.Fatalf("a reversibility violation should be logged as a warning, log was:\n%s", buf.String())
	}
}
