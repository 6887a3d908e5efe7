// Package render lays out parsed table structure as an aligned text
// table, JSON, or CSV. Renderers read an explicit immutable Config; no
// package-global state decides color or width.
package render

import (
	"fmt"
	"io"

	"github.com/tablestruct/tablestruct/internal/source"
)

type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatCSV   Format = "csv"
)

func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatTable, FormatJSON, FormatCSV:
		return Format(s), nil
	}
	return "", fmt.Errorf("unknown format %q (want table, json or csv)", s)
}

// Config is passed through every rendering call.
type Config struct {
	Color     bool
	TermWidth int // 0 means no width cap
	Stats     bool
}

// Projection is the displayed slice of a table result: a header subset
// in display order plus the matching cell text per record.
type Projection struct {
	Headers []string
	Rows    [][]string
}

// Project restricts res to the requested display columns, preserving
// filter-list order. Names are matched case-sensitively against the
// canonical headers; unknown names are returned, not rendered.
func Project(res *source.TableResult, filter []string) (Projection, []string) {
	headers := filter
	if len(headers) == 0 {
		headers = source.Headers
	}
	var unknown []string
	p := Projection{}
	for _, h := range headers {
		if _, ok := (source.ColumnRecord{}).Value(h); ok {
			p.Headers = append(p.Headers, h)
		} else {
			unknown = append(unknown, h)
		}
	}
	for _, rec := range res.Columns {
		row := make([]string, 0, len(p.Headers))
		for _, h := range p.Headers {
			v, _ := rec.Value(h)
			row = append(row, v)
		}
		p.Rows = append(p.Rows, row)
	}
	return p, unknown
}

// Render writes res through the renderer selected by f.
func Render(w io.Writer, f Format, res *source.TableResult, p Projection, cfg Config) error {
	switch f {
	case FormatJSON:
		return renderJSON(w, res, p, cfg)
	case FormatCSV:
		return renderCSV(w, res, p, cfg)
	default:
		return renderTable(w, res, p, cfg)
	}
}
