package console

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/unicode/norm"
)

// Default text mode geometry.
const (
	DefaultRows = 25
	DefaultCols = 80
	tabWidth    = 8
)

type cell struct {
	r    rune
	cont bool // right half of a wide rune
}

// TextRenderer is a rows×cols character grid with a cursor. Writes are
// normalized to NFC, wide runes take two columns, and the last row scrolls.
// Everything written is also copied, unmodified, to the mirror if one is set.
//
// TextRenderer is safe for concurrent use.
type TextRenderer struct {
	mu       sync.Mutex
	rows     int
	cols     int
	grid     [][]cell
	row, col int
	partial  []byte // incomplete UTF-8 sequence from the previous Write
	mirror   io.Writer
	written  uint64
}

// NewTextRenderer builds an empty grid. Non-positive sizes use the defaults.
func NewTextRenderer(rows, cols int, mirror io.Writer) *TextRenderer {
	if rows <= 0 {
		rows = DefaultRows
	}
	if cols <= 0 {
		cols = DefaultCols
	}
	t := &TextRenderer{rows: rows, cols: cols, mirror: mirror}
	t.grid = make([][]cell, rows)
	for i := range t.grid {
		t.grid[i] = blankRow(cols)
	}
	return t
}

func blankRow(cols int) []cell {
	row := make([]cell, cols)
	for i := range row {
		row[i].r = ' '
	}
	return row
}

// Write renders p at the cursor.
func (t *TextRenderer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	buf := append(t.partial, p...)
	cut := completePrefix(buf)
	t.partial = append([]byte(nil), buf[cut:]...)

	for _, r := range norm.NFC.String(string(buf[:cut])) {
		t.put(r)
	}
	t.written += uint64(len(p))

	if t.mirror != nil {
		if _, err := t.mirror.Write(p); err != nil {
			return len(p), fmt.Errorf("console: mirror: %w", err)
		}
	}
	return len(p), nil
}

// completePrefix returns the length of b without a trailing incomplete
// UTF-8 sequence.
func completePrefix(b []byte) int {
	for i := len(b) - 1; i >= 0 && i >= len(b)-utf8.UTFMax; i-- {
		if utf8.RuneStart(b[i]) {
			if utf8.FullRune(b[i:]) {
				return len(b)
			}
			return i
		}
	}
	return len(b)
}

// WriteString renders s at the cursor.
func (t *TextRenderer) WriteString(s string) (int, error) {
	return t.Write([]byte(s))
}

func (t *TextRenderer) put(r rune) {
	switch r {
	case '\n':
		t.newline()
		return
	case '\r':
		t.col = 0
		return
	case '\t':
		next := (t.col/tabWidth + 1) * tabWidth
		for t.col < next && t.col < t.cols {
			t.grid[t.row][t.col] = cell{r: ' '}
			t.col++
		}
		if t.col >= t.cols {
			t.newline()
		}
		return
	}
	if r < 0x20 || r == 0x7F {
		return
	}

	w := runewidth.RuneWidth(r)
	if w == 0 {
		return
	}
	if t.col+w > t.cols {
		t.newline()
	}
	t.grid[t.row][t.col] = cell{r: r}
	if w == 2 {
		t.grid[t.row][t.col+1] = cell{cont: true}
	}
	t.col += w
	if t.col >= t.cols {
		t.newline()
	}
}

func (t *TextRenderer) newline() {
	t.col = 0
	if t.row < t.rows-1 {
		t.row++
		return
	}
	copy(t.grid, t.grid[1:])
	t.grid[t.rows-1] = blankRow(t.cols)
}

// CursorLeft moves the cursor one column left, stopping at column 0.
func (t *TextRenderer) CursorLeft() {
	t.mu.Lock()
	if t.col > 0 {
		t.col--
		if t.grid[t.row][t.col].cont && t.col > 0 {
			t.col--
		}
	}
	t.mu.Unlock()
}

// CursorRight moves the cursor one column right, stopping at the last one.
func (t *TextRenderer) CursorRight() {
	t.mu.Lock()
	if t.col < t.cols-1 {
		t.col++
	}
	t.mu.Unlock()
}

// CursorUp moves the cursor one row up.
func (t *TextRenderer) CursorUp() {
	t.mu.Lock()
	if t.row > 0 {
		t.row--
	}
	t.mu.Unlock()
}

// CursorDown moves the cursor one row down.
func (t *TextRenderer) CursorDown() {
	t.mu.Lock()
	if t.row < t.rows-1 {
		t.row++
	}
	t.mu.Unlock()
}

// Cursor returns the cursor position.
func (t *TextRenderer) Cursor() (row, col int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.row, t.col
}

// Size returns the grid geometry.
func (t *TextRenderer) Size() (rows, cols int) {
	return t.rows, t.cols
}

// Written counts bytes passed to Write.
func (t *TextRenderer) Written() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.written
}

// Lines returns every row with trailing blanks removed.
func (t *TextRenderer) Lines() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, t.rows)
	var sb strings.Builder
	for i, row := range t.grid {
		sb.Reset()
		for _, c := range row {
			if !c.cont {
				sb.WriteRune(c.r)
			}
		}
		out[i] = strings.TrimRight(sb.String(), " ")
	}
	return out
}

// String returns the non-empty prefix of the screen, one line per row.
func (t *TextRenderer) String() string {
	lines := t.Lines()
	end := len(lines)
	for end > 0 && lines[end-1] == "" {
		end--
	}
	return strings.Join(lines[:end], "\n")
}

// Clear blanks the grid and homes the cursor.
func (t *TextRenderer) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.grid {
		t.grid[i] = blankRow(t.cols)
	}
	t.row, t.col = 0, 0
}
