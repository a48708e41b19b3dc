package hub

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/google/shlex"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/reverie-lang/reverie/source/builtins"
	"github.com/reverie-lang/reverie/source/err"
	"github.com/reverie-lang/reverie/source/evaluator"
	"github.com/reverie-lang/reverie/source/lexer"
	"github.com/reverie-lang/reverie/source/parser"
	"github.com/reverie-lang/reverie/source/registry"
	"github.com/reverie-lang/reverie/source/scope"
	"github.com/reverie-lang/reverie/source/set"
	"github.com/reverie-lang/reverie/source/settings"
	"github.com/reverie-lang/reverie/source/text"
	"github.com/reverie-lang/reverie/source/token"
)

var (
	MARGIN = 84
)

// The hub is a session: a scope stack and a registry of procedures which last from one line
// of the REPL to the next, together with whatever the user hasn't finished typing yet.
type Hub struct {
	Scope   *scope.Stack
	Procs   *registry.Registry
	ctx     *evaluator.Context
	cfg     *settings.Config
	out     io.Writer
	log     zerolog.Logger
	ers     err.Errors
	pending string
}

func New(out io.Writer, cfg *settings.Config, log zerolog.Logger) *Hub {
	s := scope.New()
	r := registry.New()
	if cfg.Builtins {
		builtins.Register(r, out)
	}
	return &Hub{
		Scope: s,
		Procs: r,
		ctx:   evaluator.NewContext(s, r, log),
		cfg:   cfg,
		out:   out,
		log:   log,
	}
}

// Runs the scripts which the config asks for.
func (hub *Hub) Preload() {
	for _, path := range hub.cfg.Preload {
		if e := hub.RunFile(path, false); e != nil {
			hub.WriteErrors()
		}
	}
}

// This takes a line from the REPL and interprets it as a hub command if it begins with
// 'hub', and otherwise as (part of) a statement, procedure, or REPL directive. It returns
// true if the user wants to quit.
func (hub *Hub) Do(line string) bool {
	if hub.pending == "" {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "//") {
			return false
		}
		if words, e := shlex.Split(trimmed); e == nil && len(words) > 0 && words[0] == "hub" {
			return hub.DoHubCommand(words[1:])
		}
	}
	input := hub.pending + line
	p := parser.New()
	replLine := p.ParseReplLine("REPL", input)
	if p.ErrorsExist() {
		if parser.Incomplete(p.Errors) {
			hub.pending = input + "\n"
			return false
		}
		hub.pending = ""
		hub.GetAndReportErrors(p)
		return false
	}
	hub.pending = ""
	hub.log.Debug().Str("line", replLine.String()).Msg("repl")
	hub.execute(replLine)
	return false
}

// Reports whether the hub is waiting for more lines to finish something.
func (hub *Hub) Pending() bool {
	return hub.pending != ""
}

func (hub *Hub) Prompt() string {
	if hub.cfg.Prompt == "" {
		return text.PROMPT
	}
	return hub.cfg.Prompt
}

// Throws away anything unfinished.
func (hub *Hub) Cancel() {
	hub.pending = ""
}

// A statement that fails leaves the stack just as it was before the statement began.
func (hub *Hub) execute(line *parser.ReplLine) {
	switch line.Kind {
	case parser.REPL_PROCEDURE:
		hub.Procs.Replace(line.Procedure)
		hub.WriteString(text.OK() + "\n")
	case parser.REPL_LET:
		v, e := evaluator.Eval(line.Value, hub.ctx)
		if e != nil {
			hub.ReportError(e)
			return
		}
		hub.Scope.Push(line.Name, v)
		hub.WriteString(text.OK() + "\n")
	case parser.REPL_DROP:
		b, ok := hub.Scope.Remove(line.Name)
		if !ok {
			hub.ReportError(err.CreateErr("hub/drop", &line.Token, line.Name))
			return
		}
		hub.WriteString(b.Value.String() + "\n")
	case parser.REPL_SHOW:
		v, e := evaluator.Eval(line.Value, hub.ctx)
		if e != nil {
			hub.ReportError(e)
			return
		}
		hub.WriteString(v.String() + "\n")
	case parser.REPL_STATEMENT:
		snap := hub.Scope.Snapshot()
		if e := evaluator.Exec(line.Statement, hub.ctx); e != nil {
			hub.Scope.Restore(snap)
			hub.ReportError(e)
			return
		}
		hub.WriteString(text.OK() + "\n")
	}
}

func (hub *Hub) DoHubCommand(args []string) bool {
	if len(args) == 0 {
		hub.WriteString(text.HUB_HELP)
		return false
	}
	verb, args := args[0], args[1:]
	switch verb {
	case "help":
		hub.WriteString(text.HUB_HELP)
	case "procs":
		hub.listProcs()
	case "quit":
		return true
	case "run":
		if len(args) == 0 || len(args) > 2 || (len(args) == 2 && args[1] != "backward") {
			hub.WriteError("the 'hub run' command takes a filename, optionally followed by 'backward'.")
			return false
		}
		if e := hub.RunFile(args[0], len(args) == 2); e != nil {
			hub.WriteErrors()
			return false
		}
		hub.WriteString(text.OK() + "\n")
	case "stack":
		hub.listStack()
	case "why":
		hub.why(args)
	default:
		hub.WriteError(err.CreateErr("hub/command", nil, verb).Message)
	}
	return false
}

func (hub *Hub) why(args []string) {
	n := -1
	if len(args) == 1 {
		if i, e := strconv.Atoi(args[0]); e == nil {
			n = i
		}
	}
	if n < 0 || n >= len(hub.ers) {
		hub.WriteError(err.CreateErr("hub/why", nil, strings.Join(args, " ")).Message)
		return
	}
	e := hub.ers[n]
	hub.WritePretty(text.Numbered(n, e.Message) + err.Position(e.Token) + "\n\n" + hub.ers.Explain(n))
	for _, tok := range e.Trace {
		hub.WriteString(text.BULLET + "in the statement beginning with " + text.Emph(tok.Literal) + err.Position(tok) + "\n")
	}
	hub.WriteString("\n")
}

func (hub *Hub) listStack() {
	bindings := hub.Scope.Bindings()
	if len(bindings) == 0 {
		hub.WriteString("The stack is empty.\n")
		return
	}
	for _, b := range bindings {
		hub.WriteString(text.BULLET + b.Name + " = " + b.Value.String() + "\n")
	}
}

func (hub *Hub) listProcs() {
	for _, name := range hub.Procs.SortedNames() {
		entry, _ := hub.Procs.Lookup(name)
		if entry.Kind == registry.NATIVE {
			hub.WriteString(text.BULLET + name + " (builtin)\n")
		} else {
			hub.WriteString(text.BULLET + entry.Proc.Signature() + "\n")
		}
	}
}

// Runs a script in the session. Its procedures are registered first, the first definition
// of a name winning within the script, and then its statements run, forward or backward. If
// anything goes wrong the errors are kept for WriteErrors, and the stack is left as it was.
func (hub *Hub) RunFile(path string, backward bool) error {
	hub.log.Info().Str("path", path).Bool("backward", backward).Msg("run")
	data, e := os.ReadFile(path)
	if e != nil {
		return hub.fail(err.CreateErr("hub/run", nil, path, errors.Wrap(e, "reading script")))
	}
	p := parser.New()
	program := p.ParseProgram(path, string(data))
	if p.ErrorsExist() {
		hub.ers = p.Errors
		return p.Err()
	}
	defined := set.Set[string]{}
	for _, proc := range program.Procedures {
		if !defined.Insert(proc.Name) {
			hub.log.Warn().Str("proc", proc.Name).Str("path", path).Msg("duplicate procedure ignored")
			continue
		}
		hub.Procs.Replace(proc)
	}
	run := evaluator.ExecSequence
	if backward {
		run = evaluator.ExecBackward
	}
	snap := hub.Scope.Snapshot()
	if e := run(program.Statements, hub.ctx); e != nil {
		hub.Scope.Restore(snap)
		return hub.fail(e)
	}
	return nil
}

func (hub *Hub) fail(e error) error {
	var ours *err.Error
	if errors.As(e, &ours) {
		hub.ers = err.Errors{ours}
	} else {
		hub.ers = nil
	}
	return e
}

// Everything the REPL might complete the word before the cursor to.
func (hub *Hub) Completions(word string) []string {
	candidates := set.MakeFromSlice(append(token.Keywords(), "hub", "let", "show"))
	for _, name := range append(hub.Scope.Names(), hub.Procs.Names()...) {
		candidates.Add(name)
	}
	result := []string{}
	for _, c := range set.Sorted(candidates) {
		if strings.HasPrefix(c, word) {
			result = append(result, c)
		}
	}
	return result
}

// The word before the cursor, and what could follow it.
func (hub *Hub) Complete(line []rune, pos int) (string, []string) {
	word := lexer.WordBefore(line, pos)
	suffixes := []string{}
	for _, c := range hub.Completions(word) {
		suffixes = append(suffixes, c[len(word):])
	}
	return word, suffixes
}

func (hub *Hub) GetAndReportErrors(p *parser.Parser) {
	hub.ers = p.Errors
	hub.WriteErrors()
}

func (hub *Hub) ReportError(e error) {
	hub.fail(e)
	if hub.ers == nil {
		hub.WriteError(e.Error())
		return
	}
	hub.WriteErrors()
}

func (hub *Hub) WriteErrors() {
	hub.WriteString(err.GetList(hub.ers))
}

func (hub *Hub) WritePretty(s string) {
	hub.WriteString(text.Pretty(s, 0, MARGIN))
}

func (hub *Hub) WriteError(s string) {
	hub.WriteString(text.Red("Hub error") + ": " + s + "\n")
}

func (hub *Hub) WriteString(s string) {
	io.WriteString(hub.out, s)
}
