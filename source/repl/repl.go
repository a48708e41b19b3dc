package repl

import (
	"github.com/lmorg/readline"

	"github.com/reverie-lang/reverie/source/hub"
	"github.com/reverie-lang/reverie/source/text"
)

// Reads lines from the terminal and hands them to the hub until the user quits or the
// input runs out.
func Start(hub *hub.Hub, historyFile string) {
	rline := readline.NewInstance()
	rline.TabCompleter = tabCompleter(hub)
	if historyFile != "" {
		if h, e := NewFileHistory(historyFile); e == nil {
			rline.History = h
		} else {
			hub.WriteError(e.Error())
		}
	}
	for {
		rline.SetPrompt(makePrompt(hub))
		line, e := rline.Readline()
		if e == readline.CtrlC {
			hub.Cancel()
			continue
		}
		if e != nil {
			return
		}
		if hub.Do(line) {
			return
		}
	}
}

func makePrompt(hub *hub.Hub) string {
	if hub.Pending() {
		return text.CONTINUE
	}
	return hub.Prompt()
}

func tabCompleter(hub *hub.Hub) func([]rune, int, readline.DelayedTabContext) (string, []string, map[string]string, readline.TabDisplayType) {
	return func(line []rune, pos int, dtx readline.DelayedTabContext) (string, []string, map[string]string, readline.TabDisplayType) {
		word, suffixes := hub.Complete(line, pos)
		return word, suffixes, nil, readline.TabDisplayGrid
	}
}
