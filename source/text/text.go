package text

// This consists of a bunch of text utilities to help in generating pretty and meaningful
// help messages, error messages, etc.

import (
	"strconv"
	"strings"

	"github.com/fatih/color"
)

const (
	VERSION        = "0.1.0"
	BULLET         = "  ▪ "
	BULLET_SPACING = "    " // I.e. whitespace the same width as BULLET.
	PROMPT         = "→ "
	CONTINUE       = "… "
)

var (
	red    = color.New(color.FgRed).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
)

// Turns color off everywhere, e.g. because the config asks for it or because we're
// writing to something that isn't a terminal.
func SetColor(on bool) {
	color.NoColor = !on
}

func Red(s string) string {
	return red(s)
}

func Green(s string) string {
	return green(s)
}

func Yellow(s string) string {
	return yellow(s)
}

func Cyan(s string) string {
	return cyan(s)
}

func Emph(s string) string {
	return "'" + s + "'"
}

func OK() string {
	return Green("OK")
}

func Logo() string {
	titleText := " Reverie version " + VERSION + " "
	arrows := Cyan("⇄")
	leftMargin := "  "
	bar := strings.Repeat("═", len(titleText)/2)
	logoString := "\n" +
		leftMargin + "╔" + bar + arrows + bar + "╗\n" +
		leftMargin + "║" + titleText + " ║\n" +
		leftMargin + "╚" + bar + arrows + bar + "╝\n\n"
	return logoString
}

const HELP = "\nUsage: reverie [-v | --version] [-h | --help] [--config <file>]\n" +
	"               <command> [args]\n\n" +
	"Commands are:\n\n" +
	"  repl                     Starts the REPL. This is the default.\n" +
	"  run <file> [backward]    Runs the statements of a Reverie script, forwards\n" +
	"                           or, if asked, backwards.\n\n"

const HUB_HELP = "\nHub commands are:\n\n" +
	"  hub why <n>                 Explains the nth error in the last list of errors.\n" +
	"  hub stack                   Shows the bindings on the scope stack, oldest first.\n" +
	"  hub procs                   Lists the procedures which 'do' and 'undo' can call.\n" +
	"  hub run <file> [backward]   Runs a script in the current session.\n" +
	"  hub help                    Shows this message.\n" +
	"  hub quit                    Leaves the REPL.\n\n" +
	"Anything else is a statement, a procedure definition, or one of:\n\n" +
	"  let <name> := <expr>        Makes a new binding.\n" +
	"  drop <name>                 Removes the most recent binding of the name.\n" +
	"  show <expr>                 Shows the value of an expression.\n\n"

// Highlights anything enclosed in '   ' as code, i.e. 'foo' serves the same function as
// writing foo in a monotype font would in a textbook or manual.
//
// The ' doesn't trigger the highlighting unless it follows a line beginning or space, because it
// might be an apostrophe.
func HighlightLine(plainLine string, highlighting bool) (string, bool) {
	var b strings.Builder
	code := ""
	prevCh := ' '
	for _, ch := range plainLine {
		switch {
		case !highlighting && ch == '\'' && (prevCh == ' ' || prevCh == '\n' || prevCh == '('):
			highlighting = true
			code = "'"
		case highlighting && ch == '\'':
			highlighting = false
			b.WriteString(Cyan(code + "'"))
			code = ""
		case highlighting:
			code = code + string(ch)
		default:
			b.WriteRune(ch)
		}
		prevCh = ch
	}
	if highlighting {
		b.WriteString(Cyan(code))
	}
	return b.String(), highlighting
}

// Wraps text between the margins, highlighting code as it goes.
func Pretty(s string, lMargin, rMargin int) string {
	length := rMargin - lMargin
	result := ""
	highlighting := false
	for _, para := range strings.Split(s, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			result = result + "\n"
			continue
		}
		line := ""
		for _, w := range words {
			if line != "" && len(line)+1+len(w) > length {
				var str string
				str, highlighting = HighlightLine(line, highlighting)
				result = result + strings.Repeat(" ", lMargin) + str + "\n"
				line = ""
			}
			if line != "" {
				line = line + " "
			}
			line = line + w
		}
		var str string
		str, highlighting = HighlightLine(line, highlighting)
		result = result + strings.Repeat(" ", lMargin) + str + "\n"
	}
	return result
}

func Numbered(i int, s string) string {
	return "[" + strconv.Itoa(i) + "] " + s
}
