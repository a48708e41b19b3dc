// The constants at the top control which bits of the inner workings of the lexer/parser/evaluator
// are displayed to me for debugging purposes. In a release they must all be set to false.
//
// The rest of the package is the user's configuration, read from reverie.yaml.

package settings

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

const (
	// These do what it sounds like.
	SHOW_LEXER   = false
	SHOW_PARSER  = false // Note that this only applies to the REPL and not to running scripts.
	SHOW_INVERSE = false // Shows the inverted body whenever an 'undo' runs a user procedure.

	SHOW_TESTS = false // Says whether the tests should say what is being tested, useful if one of them crashes and we don't know which.
)

const CONFIG_FILE = "reverie.yaml"

type Config struct {
	Prompt      string   `yaml:"prompt"`
	Color       bool     `yaml:"color"`
	LogLevel    string   `yaml:"log_level"`
	HistoryFile string   `yaml:"history_file"`
	Preload     []string `yaml:"preload"`
	Builtins    bool     `yaml:"builtins"`

	// Where the config came from, if anywhere.
	Path string `yaml:"-"`
}

func Default() *Config {
	return &Config{
		Prompt:   "→ ",
		Color:    true,
		LogLevel: "disabled",
		Builtins: true,
	}
}

// Looks for a config file first in the working directory and then in the user's home
// directory, as a hidden file. If neither exists we use the defaults.
func Load() (*Config, error) {
	candidates := []string{CONFIG_FILE}
	if home, e := os.UserHomeDir(); e == nil {
		candidates = append(candidates, filepath.Join(home, "."+CONFIG_FILE))
	}
	for _, path := range candidates {
		if _, e := os.Stat(path); e != nil {
			continue
		}
		return LoadFile(path)
	}
	return Default(), nil
}

func LoadFile(path string) (*Config, error) {
	file, e := os.Open(path)
	if e != nil {
		return nil, e
	}
	defer file.Close()
	cfg, e := Decode(file)
	if e != nil {
		return nil, errors.Wrapf(e, "config: parse %s", path)
	}
	cfg.Path = path
	return cfg, nil
}

// Fields absent from the input keep their default values. Unknown fields are an error, so
// that a misspelt option doesn't silently do nothing.
func Decode(r io.Reader) (*Config, error) {
	cfg := Default()
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if e := decoder.Decode(cfg); e != nil && e != io.EOF {
		return nil, e
	}
	if _, e := ParseLevel(cfg.LogLevel); e != nil {
		return nil, e
	}
	return cfg, nil
}

func ParseLevel(s string) (zerolog.Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return zerolog.Disabled, nil
	}
	level, e := zerolog.ParseLevel(s)
	if e != nil {
		return zerolog.Disabled, errors.Errorf("config: unknown log_level %q", s)
	}
	return level, nil
}

// Makes the logger which the hub hands to the evaluator.
func (cfg *Config) Logger(w io.Writer) zerolog.Logger {
	level, e := ParseLevel(cfg.LogLevel)
	if e != nil {
		level = zerolog.Disabled
	}
	out := zerolog.ConsoleWriter{Out: w, NoColor: !cfg.Color, PartsExclude: []string{zerolog.TimestampFieldName}}
	return zerolog.New(out).Level(level)
}
