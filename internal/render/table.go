package render

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/tablestruct/tablestruct/internal/source"
)

const (
	// enum cells longer than this wrap across continuation lines
	enumWrapThreshold = 40
	// preferred width granted to the Type column when the terminal allows
	typeWidthFloor = 50
)

var enumValue = regexp.MustCompile(`'[^']*'`)

// palette maps semantic roles to colors. Each color is force-enabled or
// force-disabled at construction so rendering ignores global color state.
type palette struct {
	header  *color.Color
	pri     *color.Color
	uni     *color.Color
	mul     *color.Color
	notNull *color.Color
	yes     *color.Color
	numType *color.Color
	strType *color.Color
	timType *color.Color
	enum    *color.Color
	autoInc *color.Color
	label   *color.Color
	stat    *color.Color
}

func newPalette(enabled bool) *palette {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return &palette{
		header:  mk(color.Bold),
		pri:     mk(color.Bold, color.FgRed),
		uni:     mk(color.Bold, color.FgBlue),
		mul:     mk(color.Bold, color.FgGreen),
		notNull: mk(color.Bold, color.FgRed),
		yes:     mk(color.FgGreen),
		numType: mk(color.FgCyan),
		strType: mk(color.FgGreen),
		timType: mk(color.FgYellow),
		enum:    mk(color.FgMagenta),
		autoInc: mk(color.Bold, color.FgYellow),
		label:   mk(color.Bold),
		stat:    mk(color.FgCyan),
	}
}

// paint colors a cell by the semantic role of its column.
func (p *palette) paint(header, cell string) string {
	switch header {
	case "Key":
		switch cell {
		case "PRI":
			return p.pri.Sprint(cell)
		case "UNI":
			return p.uni.Sprint(cell)
		case "MUL":
			return p.mul.Sprint(cell)
		}
	case "Null":
		switch cell {
		case "NO":
			return p.notNull.Sprint(cell)
		case "YES":
			return p.yes.Sprint(cell)
		}
	case "Type":
		lower := strings.ToLower(cell)
		switch {
		case strings.Contains(lower, "enum"):
			return p.enum.Sprint(cell)
		case strings.Contains(lower, "int"):
			return p.numType.Sprint(cell)
		case strings.Contains(lower, "char") || strings.Contains(lower, "text"):
			return p.strType.Sprint(cell)
		case strings.Contains(lower, "date") || strings.Contains(lower, "time"):
			return p.timType.Sprint(cell)
		}
	case "Extra":
		if strings.Contains(strings.ToLower(cell), "auto_increment") {
			return p.autoInc.Sprint(cell)
		}
	}
	return cell
}

// Heading writes the per-table banner used between tables in table mode.
func Heading(w io.Writer, cfg Config, database, table string) {
	p := newPalette(cfg.Color)
	fmt.Fprintf(w, "%s %s, %s %s\n", p.label.Sprint("Database:"), database, p.label.Sprint("Table:"), table)
}

func renderTable(w io.Writer, res *source.TableResult, p Projection, cfg Config) error {
	pal := newPalette(cfg.Color)
	widths := columnWidths(p)
	typeCol := indexOf(p.Headers, "Type")
	if typeCol >= 0 && cfg.TermWidth > 0 {
		budgetTypeColumn(widths, typeCol, cfg.TermWidth)
	}

	if cfg.Stats && res.Stats != nil {
		writeStats(w, res.Stats, pal)
	}

	sep := separator(widths)
	fmt.Fprintln(w, sep)
	writeRow(w, p.Headers, p.Headers, widths, func(_, cell string) string { return pal.header.Sprint(cell) })
	fmt.Fprintln(w, sep)
	for _, row := range p.Rows {
		if typeCol >= 0 && typeCol < len(row) &&
			strings.Contains(row[typeCol], "enum(") && runeLen(row[typeCol]) > enumWrapThreshold {
			writeWrappedRow(w, p.Headers, row, widths, typeCol, pal)
			continue
		}
		writeRow(w, row, p.Headers, widths, pal.paint)
	}
	fmt.Fprintln(w, sep)
	return nil
}

// columnWidths sizes each column to its widest cell or header. Enum
// cells count their longest single value plus the enum( prefix, since
// long enums wrap instead of claiming their full literal width.
func columnWidths(p Projection) []int {
	widths := make([]int, len(p.Headers))
	for i, h := range p.Headers {
		widths[i] = runeLen(h)
	}
	for _, row := range p.Rows {
		for i, cell := range row {
			if i >= len(widths) {
				break
			}
			w := runeLen(cell)
			if p.Headers[i] == "Type" && strings.Contains(cell, "enum(") && w > enumWrapThreshold {
				longest := 0
				for _, v := range enumValue.FindAllString(cell, -1) {
					if runeLen(v) > longest {
						longest = runeLen(v)
					}
				}
				w = longest + len("enum(") + 1
			}
			if w > widths[i] {
				widths[i] = w
			}
		}
	}
	return widths
}

// budgetTypeColumn re-budgets the Type column to the width left over by
// the other columns, never shrinking it below its natural width.
func budgetTypeColumn(widths []int, typeCol, termWidth int) {
	other := 0
	for i, w := range widths {
		if i != typeCol {
			other += w
		}
	}
	// per-column " x |" padding plus the leading pipe
	other += len(widths)*3 + 1
	avail := termWidth - other
	if avail > typeWidthFloor {
		avail = typeWidthFloor
	}
	if avail > widths[typeCol] {
		widths[typeCol] = avail
	}
}

func separator(widths []int) string {
	var b strings.Builder
	b.WriteByte('+')
	for _, w := range widths {
		b.WriteString(strings.Repeat("-", w+2))
		b.WriteByte('+')
	}
	return b.String()
}

// writeRow pads by visible cell width so color escapes never skew the grid.
func writeRow(w io.Writer, cells, headers []string, widths []int, paint func(header, cell string) string) {
	var b strings.Builder
	b.WriteByte('|')
	for i, width := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		b.WriteByte(' ')
		b.WriteString(paint(headers[i], cell))
		b.WriteString(pad(width-runeLen(cell)+1))
		b.WriteByte('|')
	}
	fmt.Fprintln(w, b.String())
}

// writeWrappedRow spreads a long enum Type cell over continuation
// lines; the other cells appear on the first line only.
func writeWrappedRow(w io.Writer, headers, row []string, widths []int, typeCol int, pal *palette) {
	lines := wrapEnum(row[typeCol], widths[typeCol])
	for ln, enumLine := range lines {
		var b strings.Builder
		b.WriteByte('|')
		for i, width := range widths {
			b.WriteByte(' ')
			switch {
			case i == typeCol:
				b.WriteString(pal.enum.Sprint(enumLine))
				b.WriteString(pad(width-runeLen(enumLine)+1))
			case ln == 0 && i < len(row):
				b.WriteString(pal.paint(headers[i], row[i]))
				b.WriteString(pad(width-runeLen(row[i])+1))
			default:
				b.WriteString(pad(width+1))
			}
			b.WriteByte('|')
		}
		fmt.Fprintln(w, b.String())
	}
}

// wrapEnum breaks an enum type literal into lines that fit width,
// keeping every quoted value intact.
func wrapEnum(enumStr string, width int) []string {
	values := enumValue.FindAllString(enumStr, -1)
	if len(values) == 0 {
		return []string{enumStr}
	}
	first := "enum(" + values[0]
	if len(values) > 1 {
		first += ","
	}
	lines := []string{first}
	current := ""
	for i := 1; i < len(values); i++ {
		v := values[i]
		if i < len(values)-1 {
			v += ","
		}
		switch {
		case current == "":
			current = v
		case runeLen(current)+1+runeLen(v) > width:
			lines = append(lines, current)
			current = v
		default:
			current += " " + v
		}
	}
	if current != "" {
		lines = append(lines, current)
	}
	last := lines[len(lines)-1]
	if strings.HasSuffix(last, ",") {
		last = last[:len(last)-1]
	}
	lines[len(lines)-1] = last + ")"
	return lines
}

func writeStats(w io.Writer, stats *source.TableStats, pal *palette) {
	fmt.Fprintln(w, pal.label.Sprint("Table Statistics:"))
	fmt.Fprintf(w, "• Row Count: %s\n", pal.stat.Sprint(statInt(stats.Rows)))
	size := "N/A"
	if stats.DataBytes != nil {
		size = humanize.Bytes(*stats.DataBytes)
	}
	fmt.Fprintf(w, "• Size: %s\n", pal.stat.Sprint(size))
	fmt.Fprintf(w, "• Index Count: %s\n", pal.stat.Sprint(fmt.Sprint(stats.IndexCount())))
	for _, idx := range stats.Indexes {
		u := ""
		if idx.Unique {
			u = " unique"
		}
		fmt.Fprintf(w, "  - %s (%s)%s\n", idx.Name, idx.Column, u)
	}
	fmt.Fprintln(w)
}

func statInt(v *int64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprint(*v)
}

// runeLen is the visible width of a cell; byte length would skew the
// grid for multibyte text.
func runeLen(s string) int { return utf8.RuneCountInString(s) }

func pad(n int) string {
	if n < 0 {
		n = 0
	}
	return strings.Repeat(" ", n)
}

func indexOf(ss []string, s string) int {
	for i, v := range ss {
		if v == s {
			return i
		}
	}
	return -1
}
