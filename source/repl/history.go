package repl

import (
	"bufio"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// FileHistory keeps the lines typed into the REPL in memory and appends each one to a file,
// so that they come back next session.
type FileHistory struct {
	path  string
	lines []string
}

// A missing file is just an empty history.
func NewFileHistory(path string) (*FileHistory, error) {
	h := &FileHistory{path: path}
	file, e := os.Open(path)
	if os.IsNotExist(e) {
		return h, nil
	}
	if e != nil {
		return nil, errors.Wrap(e, "opening history")
	}
	defer file.Close()
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if line := scanner.Text(); strings.TrimSpace(line) != "" {
			h.lines = append(h.lines, line)
		}
	}
	if e := scanner.Err(); e != nil {
		return nil, errors.Wrap(e, "reading history")
	}
	return h, nil
}

func (h *FileHistory) Write(line string) (int, error) {
	line = strings.TrimRight(line, "\n")
	if strings.TrimSpace(line) == "" {
		return len(h.lines), nil
	}
	h.lines = append(h.lines, line)
	file, e := os.OpenFile(h.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if e != nil {
		return len(h.lines), errors.Wrap(e, "writing history")
	}
	defer file.Close()
	if _, e := file.WriteString(line + "\n"); e != nil {
		return len(h.lines), errors.Wrap(e, "writing history")
	}
	return len(h.lines), nil
}

func (h *FileHistory) GetLine(i int) (string, error) {
	if i < 0 || i >= len(h.lines) {
		return "", errors.Errorf("no history line %d", i)
	}
	return h.lines[i], nil
}

func (h *FileHistory) Len() int {
	return len(h.lines)
}

func (h *FileHistory) Dump() interface{} {
	return h.lines
}
