package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Column defines a table column. Right-aligned columns suit numbers.
type Column struct {
	Title string
	Width int
	Right bool
}

// Row is a slice of cell values.
type Row []string

// Table renders fixed-width columns. Marked rows are drawn highlighted.
type Table struct {
	Columns []Column
	Rows    []Row
	marked  map[int]bool
}

// NewTable creates an empty table.
func NewTable(cols []Column) *Table {
	return &Table{Columns: cols, marked: make(map[int]bool)}
}

// AddRow appends a row.
func (t *Table) AddRow(r Row) {
	t.Rows = append(t.Rows, r)
}

// AddMarkedRow appends a row drawn with the selection style.
func (t *Table) AddMarkedRow(r Row) {
	t.marked[len(t.Rows)] = true
	t.Rows = append(t.Rows, r)
}

// fit cuts or pads s to exactly width terminal cells. Styled input is
// measured without its escape sequences.
func fit(s string, width int, right bool) string {
	w := lipgloss.Width(s)
	switch {
	case w > width:
		return lipgloss.NewStyle().MaxWidth(width).Render(s)
	case right:
		return strings.Repeat(" ", width-w) + s
	default:
		return s + strings.Repeat(" ", width-w)
	}
}

// Render returns the table as a string: header, divider, then rows.
func (t *Table) Render() string {
	header := lipgloss.NewStyle().Foreground(ColorHighlight).Bold(true)
	cell := lipgloss.NewStyle().Foreground(ColorValue)
	dim := lipgloss.NewStyle().Foreground(ColorMeta)

	line := func(style func(int) lipgloss.Style, value func(int) string) string {
		parts := make([]string, len(t.Columns))
		for j, col := range t.Columns {
			parts[j] = style(j).Render(fit(value(j), col.Width, col.Right))
		}
		return strings.Join(parts, " ") + "\n"
	}

	var sb strings.Builder
	sb.WriteString(line(func(int) lipgloss.Style { return header }, func(j int) string { return t.Columns[j].Title }))
	sb.WriteString(line(func(int) lipgloss.Style { return dim }, func(j int) string { return strings.Repeat("-", t.Columns[j].Width) }))
	for i, row := range t.Rows {
		style := cell
		if t.marked[i] {
			style = StyleSelected
		}
		sb.WriteString(line(func(int) lipgloss.Style { return style }, func(j int) string {
			if j < len(row) {
				return row[j]
			}
			return ""
		}))
	}
	return sb.String()
}

// KeyValueBlock renders a set of key-value pairs in a bordered box.
func KeyValueBlock(title string, pairs [][2]string) string {
	var sb strings.Builder
	if title != "" {
		sb.WriteString(StyleTitle.Render(title))
		sb.WriteString("\n")
	}
	for _, p := range pairs {
		key := StyleMeta.Render(fmt.Sprintf("%-20s", p[0]+":"))
		val := StyleValue.Render(p[1])
		sb.WriteString("  " + key + " " + val + "\n")
	}
	return StyleBorder.Render(sb.String())
}
