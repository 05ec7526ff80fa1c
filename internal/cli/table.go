package cli

import (
	"regexp"
	"strings"
)

// ansiSequence matches the SGR escape sequences used by colour previews.
var ansiSequence = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// Table formats rows into aligned columns. Cells may contain ANSI colour
// sequences; widths are measured on the visible text.
type Table struct {
	headers   []string
	rows      [][]string
	padding   int
	maxWidths map[int]int // Maximum width per column index (0 = no limit)
}

// NewTable creates a new table with the given headers.
func NewTable(headers []string) *Table {
	return &Table{
		headers:   headers,
		rows:      make([][]string, 0),
		padding:   2,
		maxWidths: make(map[int]int),
	}
}

// SetColumnMaxWidth wraps text in a column at word boundaries. Cells with
// ANSI sequences are never wrapped.
func (t *Table) SetColumnMaxWidth(colIndex int, maxWidth int) {
	t.maxWidths[colIndex] = maxWidth
}

// AddRow adds a row, padding or truncating it to the header count.
func (t *Table) AddRow(row []string) {
	normalised := make([]string, len(t.headers))
	copy(normalised, row)
	t.rows = append(t.rows, normalised)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Render formats and returns the table as a string.
func (t *Table) Render() string {
	if len(t.headers) == 0 {
		return ""
	}

	wrapped := make([][][]string, len(t.rows))
	for r, row := range t.rows {
		wrapped[r] = make([][]string, len(row))
		for c, cell := range row {
			if limit := t.maxWidths[c]; limit > 0 && !ansiSequence.MatchString(cell) {
				wrapped[r][c] = wrapText(cell, limit)
			} else {
				wrapped[r][c] = []string{cell}
			}
		}
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = visibleLen(h)
	}
	for _, row := range wrapped {
		for c, lines := range row {
			for _, line := range lines {
				widths[c] = max(widths[c], visibleLen(line))
			}
		}
	}

	var b strings.Builder
	gap := strings.Repeat(" ", t.padding)
	writeLine := func(cells []string) {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			parts[i] = padRight(cell, widths[i])
		}
		b.WriteString(strings.TrimRight(strings.Join(parts, gap), " "))
		b.WriteString("\n")
	}

	writeLine(t.headers)
	sep := make([]string, len(widths))
	for i, w := range widths {
		sep[i] = strings.Repeat("-", w)
	}
	writeLine(sep)

	for _, row := range wrapped {
		lines := 1
		for _, cell := range row {
			lines = max(lines, len(cell))
		}
		for l := 0; l < lines; l++ {
			cells := make([]string, len(row))
			for c, cell := range row {
				if l < len(cell) {
					cells[c] = cell[l]
				}
			}
			writeLine(cells)
		}
	}

	return b.String()
}

// visibleLen returns the display width of s, ignoring ANSI sequences.
func visibleLen(s string) int {
	return len([]rune(ansiSequence.ReplaceAllString(s, "")))
}

// padRight pads s with spaces up to width visible characters.
func padRight(s string, width int) string {
	n := visibleLen(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

// wrapText wraps text to fit within width, breaking at word boundaries.
func wrapText(text string, width int) []string {
	if width <= 0 || len(text) <= width {
		return []string{text}
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{text}
	}

	var lines []string
	current := ""
	for _, word := range words {
		if len(word) > width {
			if current != "" {
				lines = append(lines, current)
				current = ""
			}
			for len(word) > width {
				lines = append(lines, word[:width])
				word = word[width:]
			}
			current = word
			continue
		}

		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if len(candidate) <= width {
			current = candidate
		} else {
			lines = append(lines, current)
			current = word
		}
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}
