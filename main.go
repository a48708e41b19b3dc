package main

import (
	"fmt"
	"os"

	"github.com/reverie-lang/reverie/source/hub"
	"github.com/reverie-lang/reverie/source/repl"
	"github.com/reverie-lang/reverie/source/settings"
	"github.com/reverie-lang/reverie/source/text"
)

func main() {
	args := os.Args[1:]
	configPath := ""
	for len(args) > 0 {
		switch args[0] {
		case "-v", "--version":
			fmt.Println("Reverie version " + text.VERSION)
			return
		case "-h", "--help":
			fmt.Print(text.HELP)
			return
		case "--config":
			if len(args) < 2 {
				fail("the '--config' option needs a filename")
			}
			configPath = args[1]
			args = args[2:]
			continue
		}
		break
	}

	cfg, e := loadConfig(configPath)
	if e != nil {
		fail(e.Error())
	}
	text.SetColor(cfg.Color)
	log := cfg.Logger(os.Stderr)
	hb := hub.New(os.Stdout, cfg, log)
	hb.Preload()

	if len(args) == 0 || args[0] == "repl" {
		fmt.Print(text.Logo())
		repl.Start(hb, cfg.HistoryFile)
		return
	}
	switch args[0] {
	case "run":
		if len(args) < 2 || len(args) > 3 || (len(args) == 3 && args[2] != "backward") {
			fail("'run' takes a filename, optionally followed by 'backward'")
		}
		if e := hb.RunFile(args[1], len(args) == 3); e != nil {
			hb.WriteErrors()
			os.Exit(1)
		}
	default:
		fmt.Print(text.HELP)
		os.Exit(2)
	}
}

func loadConfig(path string) (*settings.Config, error) {
	if path == "" {
		return settings.Load()
	}
	return settings.LoadFile(path)
}

func fail(msg string) {
	fmt.Fprintln(os.Stderr, text.Red("Error")+": "+msg)
	os.Exit(2)
}
