package hub

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/reverie-lang/reverie/source/err"
	"github.com/reverie-lang/reverie/source/settings"
	"github.com/reverie-lang/reverie/source/text"
	"github.com/reverie-lang/reverie/source/values"
)

func newHub() (*Hub, *bytes.Buffer) {
	text.SetColor(false)
	var out bytes.Buffer
	return New(&out, settings.Default(), zerolog.Nop()), &out
}

// Feeds the lines to the hub one at a time and returns what it said in response to each.
func session(hub *Hub, out *bytes.Buffer, lines ...string) []string {
	result := []string{}
	for _, line := range lines {
		out.Reset()
		hub.Do(line)
		result = append(result, out.String())
	}
	return result
}

func lookup(t *testing.T, hub *Hub, name string) values.Value {
	t.Helper()
	v, ok := hub.Scope.Lookup(name)
	if !ok {
		t.Fatalf("no binding for %s", name)
	}
	return v
}

func TestSession(t *testing.T) {
	hub, out := newHub()
	got := session(hub, out,
		"let x := 5",
		"x += 2",
		"show x",
		"var t := 0",
		"t += x",
		"t -= x",
		"drop t := 0",
		"show x * 2",
		"drop x",
	)
	want := []string{"OK\n", "OK\n", "7\n", "", "", "", "OK\n", "14\n", "7\n"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("session output mismatch (-want +got):\n%s", diff)
	}
	if hub.Scope.Len() != 0 {
		t.Fatalf("stack should be empty, has %d bindings", hub.Scope.Len())
	}
}

func TestBlankLinesAndComments(t *testing.T) {
	hub, out := newHub()
	got := session(hub, out, "", "   ", "// nothing to see")
	if diff := cmp.Diff([]string{"", "", ""}, got); diff != "" {
		t.Fatalf("unexpected output (-want +got):\n%s", diff)
	}
}

func TestFailedStatementLeavesStackAlone(t *testing.T) {
	hub, out := newHub()
	session(hub, out, "let a := 1", "let b := 0")
	got := session(hub, out, "var t := 5\nb += t\ndrop t := 6", "a += a")
	if !strings.Contains(got[0], "reversibility violation") {
		t.Fatalf("wrong report for bad drop: %q", got[0])
	}
	if !strings.Contains(got[1], "appears on both sides") {
		t.Fatalf("wrong report for self update: %q", got[1])
	}
	if v := lookup(t, hub, "b"); !v.Equal(values.Int(0)) {
		t.Fatalf("b should have been restored to 0, is %s", v)
	}
	if v := lookup(t, hub, "a"); !v.Equal(values.Int(1)) {
		t.Fatalf("a should be unchanged, is %s", v)
	}
	if hub.Scope.Len() != 2 {
		t.Fatalf("stack has %d bindings, want 2", hub.Scope.Len())
	}
}

func TestParseErrorsAreReported(t *testing.T) {
	hub, out := newHub()
	got := session(hub, out, "x += ")
	if !strings.HasPrefix(got[0], "[0] parse error") {
		t.Fatalf("wrong report: %q", got[0])
	}
	if hub.Pending() {
		t.Fatalf("hub should not be waiting for more input")
	}
}

func TestCancel(t *testing.T) {
	hub, out := newHub()
	session(hub, out, "var t := 0")
	if !hub.Pending() {
		t.Fatalf("hub should be waiting for the rest of the block")
	}
	hub.Cancel()
	got := session(hub, out, "let y := 2")
	if got[0] != "OK\n" || hub.Pending() {
		t.Fatalf("after cancelling, got %q", got[0])
	}
}

func TestMultilineProcedure(t *testing.T) {
	hub, out := newHub()
	got := session(hub, out,
		"proc twice(n: int)",
		"n += 2",
		"end",
		"let y := 1",
		"do twice: y",
		"show y",
		"undo twice: y",
		"show y",
	)
	want := []string{"", "", "OK\n", "OK\n", "OK\n", "3\n", "OK\n", "1\n"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("session output mismatch (-want +got):\n%s", diff)
	}
}

func TestHubCommands(t *testing.T) {
	hub, out := newHub()
	session(hub, out, "let x := 1", "proc inc(n: int)\nn += 1\nend")
	got := session(hub, out, "hub stack", "hub procs", "hub frob", "hub why 9", "hub")
	if got[0] != text.BULLET+"x = 1\n" {
		t.Fatalf("hub stack gave %q", got[0])
	}
	for _, want := range []string{text.BULLET + "inc(n: int)\n", text.BULLET + "push (builtin)\n"} {
		if !strings.Contains(got[1], want) {
			t.Fatalf("hub procs gave %q, which lacks %q", got[1], want)
		}
	}
	if !strings.Contains(got[2], "unknown hub command 'frob'") {
		t.Fatalf("hub frob gave %q", got[2])
	}
	if !strings.Contains(got[3], "there is no error numbered '9'") {
		t.Fatalf("hub why 9 gave %q", got[3])
	}
	if got[4] != text.HUB_HELP {
		t.Fatalf("hub on its own should show help")
	}
	if !hub.Do("hub quit") {
		t.Fatalf("hub quit should ask to quit")
	}
}

func TestEmptyStack(t *testing.T) {
	hub, out := newHub()
	got := session(hub, out, "hub stack")
	if got[0] != "The stack is empty.\n" {
		t.Fatalf("hub stack gave %q", got[0])
	}
}

func TestWhy(t *testing.T) {
	hub, out := newHub()
	session(hub, out, "let b := 0", "var t := 5\nb += t\ndrop t := 6")
	got := session(hub, out, "hub why 0")
	if !strings.Contains(got[0], "was dropped with value") {
		t.Fatalf("hub why 0 doesn't repeat the message: %q", got[0])
	}
	if !strings.Contains(got[0], "in the statement beginning with 'var'") {
		t.Fatalf("hub why 0 doesn't give the trace: %q", got[0])
	}
}

const script = `proc inc(n: int)
    n += 1
end

do inc: x
x += 10
`

func writeScript(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if e := os.WriteFile(path, []byte(contents), 0600); e != nil {
		t.Fatalf("can't write script: %s", e)
	}
	return path
}

func TestRunFile(t *testing.T) {
	hub, _ := newHub()
	hub.Scope.Push("x", values.Int(0))
	path := writeScript(t, "script.rev", script)
	if e := hub.RunFile(path, false); e != nil {
		t.Fatalf("running forward failed: %s", e)
	}
	if v := lookup(t, hub, "x"); !v.Equal(values.Int(11)) {
		t.Fatalf("x is %s after running forward, want 11", v)
	}
	if e := hub.RunFile(path, true); e != nil {
		t.Fatalf("running backward failed: %s", e)
	}
	if v := lookup(t, hub, "x"); !v.Equal(values.Int(0)) {
		t.Fatalf("x is %s after running backward, want 0", v)
	}
}

func TestHubRunWithQuotedPath(t *testing.T) {
	hub, out := newHub()
	path := writeScript(t, "my script.rev", script)
	got := session(hub, out, "let x := 5", `hub run "`+path+`"`, "show x", `hub run "`+path+`" backward`, "show x")
	want := []string{"OK\n", "OK\n", "16\n", "OK\n", "5\n"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("session output mismatch (-want +got):\n%s", diff)
	}
}

func TestRunFileFailureRestoresStack(t *testing.T) {
	hub, _ := newHub()
	hub.Scope.Push("x", values.Int(0))
	path := writeScript(t, "bad.rev", "x += 1\nx += x\n")
	e := hub.RunFile(path, false)
	if !err.Is(e, err.REVERSIBILITY_VIOLATION) {
		t.Fatalf("expected a reversibility violation, got %v", e)
	}
	if v := lookup(t, hub, "x"); !v.Equal(values.Int(0)) {
		t.Fatalf("x is %s, want 0", v)
	}
}

func TestRunMissingFile(t *testing.T) {
	hub, out := newHub()
	e := hub.RunFile(filepath.Join(t.TempDir(), "nowhere.rev"), false)
	var ours *err.Error
	if !errors.As(e, &ours) || ours.ErrorId != "hub/run" {
		t.Fatalf("expected hub/run, got %v", e)
	}
	hub.WriteErrors()
	if !strings.Contains(out.String(), "can't read") {
		t.Fatalf("report lacks the reason: %q", out.String())
	}
}

func TestDuplicateProcedureInScript(t *testing.T) {
	hub, _ := newHub()
	hub.Scope.Push("x", values.Int(0))
	path := writeScript(t, "dup.rev", "proc p(n)\n    n += 1\nend\nproc p(n)\n    n += 100\nend\ndo p: x\n")
	if e := hub.RunFile(path, false); e != nil {
		t.Fatalf("running failed: %s", e)
	}
	if v := lookup(t, hub, "x"); !v.Equal(values.Int(1)) {
		t.Fatalf("x is %s, the first definition should have won", v)
	}
}

func TestPreload(t *testing.T) {
	text.SetColor(false)
	var out bytes.Buffer
	cfg := settings.Default()
	cfg.Preload = []string{writeScript(t, "lib.rev", "proc inc(n: int)\n    n += 1\nend\n")}
	hub := New(&out, cfg, zerolog.Nop())
	hub.Preload()
	if _, ok := hub.Procs.Lookup("inc"); !ok {
		t.Fatalf("preloaded procedure is missing; output %q", out.String())
	}
}

func TestWithoutBuiltins(t *testing.T) {
	var out bytes.Buffer
	cfg := settings.Default()
	cfg.Builtins = false
	hub := New(&out, cfg, zerolog.Nop())
	if hub.Procs.Len() != 0 {
		t.Fatalf("registry should be empty, has %d entries", hub.Procs.Len())
	}
}

func TestCompletions(t *testing.T) {
	hub, out := newHub()
	session(hub, out, "let xylophone := 1", "let xyz := 2")
	if diff := cmp.Diff([]string{"xylophone", "xyz"}, hub.Completions("xy")); diff != "" {
		t.Fatalf("completions mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"undo"}, hub.Completions("und")); diff != "" {
		t.Fatalf("completions mismatch (-want +got):\n%s", diff)
	}
	word, suffixes := hub.Complete([]rune("do pu"), 5)
	if word != "pu" {
		t.Fatalf("completing the word %q", word)
	}
	if diff := cmp.Diff([]string{"sh"}, suffixes); diff != "" {
		t.Fatalf("suffixes mismatch (-want +got):\n%s", diff)
	}
}

func TestPrompt(t *testing.T) {
	hub, _ := newHub()
	if hub.Prompt() != settings.Default().Prompt {
		t.Fatalf("prompt is %q", hub.Prompt())
	}
	hub.cfg.Prompt = ""
	if hub.Prompt() != text.PROMPT {
		t.Fatalf("empty prompt should fall back to %q", text.PROMPT)
	}
}
