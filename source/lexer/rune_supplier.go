package lexer

// The RuneSupplier gives us something simpler than a lexer that we can use inside of the
// lexer and in the REPL's tab completion, which needs to know where the current word starts.
type RuneSupplier struct {
	code      []rune
	pos       int
	lineNo    int
	lineStart int
}

func NewRuneSupplier(code []rune) *RuneSupplier {
	return &RuneSupplier{code: code, lineNo: 1}
}

func (rs *RuneSupplier) CurrentRune() rune {
	if rs.pos < len(rs.code) {
		return rs.code[rs.pos]
	}
	return 0
}

func (rs *RuneSupplier) PeekRune() rune {
	if rs.pos+1 < len(rs.code) {
		return rs.code[rs.pos+1]
	}
	return 0
}

func (rs *RuneSupplier) LastRune() rune {
	if rs.pos > 0 && rs.pos <= len(rs.code) {
		return rs.code[rs.pos-1]
	}
	return 0
}

func (rs *RuneSupplier) Next() {
	if rs.pos >= len(rs.code) {
		return
	}
	if rs.code[rs.pos] == '\n' {
		rs.lineNo++
		rs.lineStart = rs.pos + 1
	}
	rs.pos++
}

// Returns the line number and the column, counting from 0.
func (rs *RuneSupplier) Position() (int, int) {
	return rs.lineNo, rs.pos - rs.lineStart
}

// Finds the identifier, if any, which ends just before the given position. This is what
// tab completion completes.
func WordBefore(line []rune, pos int) string {
	if pos > len(line) {
		pos = len(line)
	}
	start := pos
	for start > 0 && (IsLetter(line[start-1]) || IsDigit(line[start-1]) || IsUnderscore(line[start-1])) {
		start--
	}
	return string(line[start:pos])
}
