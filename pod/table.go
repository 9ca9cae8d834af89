package pod

import (
	"io"
	"strings"
)

// FormatFunc colors or decorates a cell after its width is measured
type FormatFunc func(value string) string

// ColumnSpec describes one column
type ColumnSpec struct {
	Header     string
	BlankValue string // shown for empty cells, "-" by default
	FormatFunc FormatFunc
	MinWidth   int
	AlignRight bool
}

// Table renders rows as space separated, aligned columns under a header
type Table struct {
	columns []ColumnSpec
	rows    [][]string // nil is a separator
	widths  []int
}

func NewTable(cols ...ColumnSpec) *Table {
	t := &Table{
		columns: cols,
		widths:  make([]int, len(cols)),
	}
	for i := range t.columns {
		if t.columns[i].BlankValue == "" {
			t.columns[i].BlankValue = "-"
		}
		t.widths[i] = max(t.columns[i].MinWidth, visibleLength(t.columns[i].Header))
	}
	return t
}

// AddRow appends a row. Missing and empty cells show the column's BlankValue
// and extra cells are dropped.
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.columns))
	for i := range row {
		if i < len(cells) && cells[i] != "" {
			row[i] = cells[i]
		} else {
			row[i] = t.columns[i].BlankValue
		}
		t.widths[i] = max(t.widths[i], visibleLength(row[i]))
	}
	t.rows = append(t.rows, row)
}

// AddSeparator appends a dashed line
func (t *Table) AddSeparator() {
	t.rows = append(t.rows, nil)
}

// Len is the number of rows added, separators included
func (t *Table) Len() int {
	return len(t.rows)
}

func (t *Table) separator() string {
	parts := make([]string, len(t.widths))
	for i, w := range t.widths {
		parts[i] = strings.Repeat("-", w)
	}
	return strings.Join(parts, " ")
}

func (t *Table) line(cells []string, header bool) string {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		col := t.columns[i]
		fill := strings.Repeat(" ", max(0, t.widths[i]-visibleLength(cell)))
		if !header && col.FormatFunc != nil {
			cell = col.FormatFunc(cell)
		}
		if col.AlignRight {
			parts[i] = fill + cell
		} else {
			parts[i] = cell + fill
		}
	}
	return strings.TrimRight(strings.Join(parts, " "), " ")
}

// Render writes the header, a dashed line and every row
func (t *Table) Render(w io.Writer) error {
	headers := make([]string, len(t.columns))
	for i, col := range t.columns {
		headers[i] = col.Header
	}

	var sb strings.Builder
	sb.WriteString(t.line(headers, true) + "\n")
	sb.WriteString(t.separator() + "\n")
	for _, row := range t.rows {
		if row == nil {
			sb.WriteString(t.separator() + "\n")
			continue
		}
		sb.WriteString(t.line(row, false) + "\n")
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// visibleLength counts runes outside ANSI SGR sequences
func visibleLength(s string) int {
	n := 0
	escape := false
	for _, r := range s {
		switch {
		case r == '\033':
			escape = true
		case escape:
			escape = r != 'm'
		default:
			n++
		}
	}
	return n
}
