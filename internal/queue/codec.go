package queue

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Header holds the queue table's column names in column order.
var Header = [numColumns]string{"Link", "Priority", "Notes", "Repetition Count", "Next Repetition Date"}

const (
	numColumns = 5

	colLink     = 0
	colPriority = 1
	colNotes    = 2
	colReps     = 3
	colNext     = 4

	// lineBreak stands in for a newline inside a cell.
	lineBreak = "<br>"

	minSeparatorWidth = 3
)

// Document is a decoded queue document: the queue table plus the untouched
// text around it.
type Document struct {
	// Before is everything preceding the table header, byte for byte.
	Before string
	// After is everything following the last table row, byte for byte.
	After string

	Rows     []Row
	Warnings []ParseWarning

	// Skipped holds the raw table lines, line endings included, that could
	// not be decoded, in document order. They are written back after the rows.
	Skipped []string

	// HasTable is false when no queue table header was found. Before then
	// holds the whole document.
	HasTable bool
}

// Decode locates the queue table in text and decodes its rows.
//
// The table is the first header line matching [Header] (case-insensitive)
// that is directly followed by a separator line. Data rows are the following
// lines that start with "|". Rows that fail to parse are recorded in
// [Document.Warnings] and kept verbatim in [Document.Skipped]; a missing
// table yields an empty document, not an error.
func Decode(text string) Document {
	lines := splitLines(text)

	for i := 0; i+1 < len(lines); i++ {
		if !isHeaderLine(lines[i].text) || !isSeparatorLine(lines[i+1].text) {
			continue
		}

		doc := Document{
			Before:   text[:lines[i].start],
			HasTable: true,
		}

		end := lines[i+1].end

		for j := i + 2; j < len(lines) && isTableLine(lines[j].text); j++ {
			end = lines[j].end

			row, warns := decodeRow(lines[j].text, j+1)
			doc.Warnings = append(doc.Warnings, warns...)

			if row == nil {
				doc.Skipped = append(doc.Skipped, text[lines[j].start:lines[j].end])

				continue
			}

			doc.Rows = append(doc.Rows, *row)
		}

		doc.After = text[end:]

		return doc
	}

	return Document{Before: text}
}

// EncodeTable renders rows as the queue table: header, separator, and one
// line per row in the given order. Every line ends with a newline.
func EncodeTable(rows []Row) string {
	cells := make([][numColumns]string, 0, len(rows)+1)
	cells = append(cells, Header)

	for _, r := range rows {
		cells = append(cells, [numColumns]string{
			colLink:     escapeCell(r.Link),
			colPriority: strconv.Itoa(r.Priority),
			colNotes:    escapeCell(r.Notes),
			colReps:     strconv.Itoa(r.RepetitionCount),
			colNext:     r.NextRepetition.String(),
		})
	}

	var widths [numColumns]int
	for c := range widths {
		widths[c] = minSeparatorWidth
	}

	for _, cellLine := range cells {
		for c, cell := range cellLine {
			widths[c] = max(widths[c], runewidth.StringWidth(cell))
		}
	}

	var b strings.Builder

	writeTableLine(&b, cells[0], widths)

	var sep [numColumns]string
	for c, w := range widths {
		sep[c] = strings.Repeat("-", w)
	}

	writeTableLine(&b, sep, widths)

	for _, cellLine := range cells[1:] {
		writeTableLine(&b, cellLine, widths)
	}

	return b.String()
}

// EncodeDocument re-renders doc with rows as its table. Text outside the
// table is kept byte for byte, and so are the table lines that failed to
// decode, which follow the rows. A document without a table gets one
// appended after a blank line.
func EncodeDocument(doc Document, rows []Row) string {
	table := EncodeTable(rows)

	if doc.HasTable {
		var b strings.Builder

		b.WriteString(doc.Before)
		b.WriteString(table)

		for _, line := range doc.Skipped {
			b.WriteString(line)

			if !strings.HasSuffix(line, "\n") {
				b.WriteString("\n")
			}
		}

		b.WriteString(doc.After)

		return b.String()
	}

	before := doc.Before
	if before != "" {
		if !strings.HasSuffix(before, "\n") {
			before += "\n"
		}

		if !strings.HasSuffix(before, "\n\n") {
			before += "\n"
		}
	}

	return before + table
}

func writeTableLine(b *strings.Builder, cells [numColumns]string, widths [numColumns]int) {
	b.WriteString("|")

	for c, cell := range cells {
		b.WriteString(" ")
		b.WriteString(cell)
		b.WriteString(strings.Repeat(" ", widths[c]-runewidth.StringWidth(cell)))
		b.WriteString(" |")
	}

	b.WriteString("\n")
}

// decodeRow parses one data line. It returns nil when the row must be
// skipped. A row can be kept and still produce a warning (clamped priority).
func decodeRow(line string, lineNo int) (*Row, []ParseWarning) {
	warn := func(err error) []ParseWarning {
		return []ParseWarning{{Line: lineNo, Text: line, Err: err}}
	}

	cells := splitCells(line)
	if len(cells) != numColumns {
		return nil, warn(fmt.Errorf("%w: got %d, want %d", ErrColumnCount, len(cells), numColumns))
	}

	link := unescapeCell(cells[colLink])
	if link == "" {
		return nil, warn(ErrEmptyLink)
	}

	priority, err := strconv.Atoi(cells[colPriority])
	if err != nil {
		return nil, warn(fmt.Errorf("%w: %q", ErrBadPriority, cells[colPriority]))
	}

	reps, err := strconv.Atoi(cells[colReps])
	if err != nil || reps < 0 {
		return nil, warn(fmt.Errorf("%w: %q", ErrBadRepetitionCount, cells[colReps]))
	}

	next, err := ParseDate(cells[colNext])
	if err != nil {
		return nil, warn(fmt.Errorf("%w: %q", ErrBadDate, cells[colNext]))
	}

	row := &Row{
		Link:            link,
		Priority:        ClampPriority(priority),
		Notes:           unescapeCell(cells[colNotes]),
		RepetitionCount: reps,
		NextRepetition:  next,
	}

	if row.Priority != priority {
		return row, warn(fmt.Errorf("%w: %d -> %d", ErrPriorityClamped, priority, row.Priority))
	}

	return row, nil
}

type textLine struct {
	text  string // without the line ending
	start int    // offset of the first byte
	end   int    // offset just past the line ending
}

func splitLines(text string) []textLine {
	var lines []textLine

	start := 0
	for start < len(text) {
		end := len(text)

		nl := strings.IndexByte(text[start:], '\n')
		if nl >= 0 {
			end = start + nl + 1
		}

		content := strings.TrimSuffix(strings.TrimSuffix(text[start:end], "\n"), "\r")
		lines = append(lines, textLine{text: content, start: start, end: end})
		start = end
	}

	return lines
}

func isTableLine(s string) bool {
	return strings.HasPrefix(strings.TrimSpace(s), "|")
}

func isHeaderLine(s string) bool {
	if !isTableLine(s) {
		return false
	}

	cells := splitCells(s)
	if len(cells) != numColumns {
		return false
	}

	for c, cell := range cells {
		if !strings.EqualFold(strings.Join(strings.Fields(cell), " "), Header[c]) {
			return false
		}
	}

	return true
}

func isSeparatorLine(s string) bool {
	if !isTableLine(s) {
		return false
	}

	cells := splitCells(s)
	if len(cells) != numColumns {
		return false
	}

	for _, cell := range cells {
		dashes := strings.TrimSuffix(strings.TrimPrefix(cell, ":"), ":")
		if dashes == "" || strings.Trim(dashes, "-") != "" {
			return false
		}
	}

	return true
}

// splitCells splits a table line on unescaped pipes. Escapes are kept in
// the returned cells; cells are trimmed. The optional leading and trailing
// pipes do not produce empty cells.
func splitCells(s string) []string {
	s = strings.TrimSpace(s)

	var (
		cells      []string
		cur        strings.Builder
		endsInPipe bool
	)

	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '\\' && i+1 < len(s):
			cur.WriteByte(s[i])
			cur.WriteByte(s[i+1])
			i++
			endsInPipe = false
		case s[i] == '|':
			cells = append(cells, strings.TrimSpace(cur.String()))
			cur.Reset()
			endsInPipe = true
		default:
			cur.WriteByte(s[i])
			endsInPipe = false
		}
	}

	if !endsInPipe {
		cells = append(cells, strings.TrimSpace(cur.String()))
	}

	if strings.HasPrefix(s, "|") && len(cells) > 0 {
		cells = cells[1:]
	}

	return cells
}

// escapeCell makes s safe to place in a table cell.
//
// Pipes become \|. A backslash is doubled when it precedes a pipe, another
// backslash, or the end of the cell, so that unescapeCell restores s exactly.
// Newlines become <br>, as does a carriage return that is not part of a CRLF
// pair.
func escapeCell(s string) string {
	var b strings.Builder

	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '|':
			b.WriteString(`\|`)
		case '\\':
			if i+1 == len(s) || s[i+1] == '|' || s[i+1] == '\\' {
				b.WriteString(`\\`)
			} else {
				b.WriteByte(c)
			}
		case '\n':
			b.WriteString(lineBreak)
		case '\r':
			if i+1 == len(s) || s[i+1] != '\n' {
				b.WriteString(lineBreak)
			}
		default:
			b.WriteByte(c)
		}
	}

	return b.String()
}

func unescapeCell(s string) string {
	var b strings.Builder

	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && (s[i+1] == '|' || s[i+1] == '\\') {
			b.WriteByte(s[i+1])
			i++

			continue
		}

		b.WriteByte(s[i])
	}

	return strings.ReplaceAll(b.String(), lineBreak, "\n")
}
