package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/tablestruct/tablestruct/internal/source"
)

// renderJSON emits an ordered document: object keys follow the
// projection's header order, which encoding/json's map marshalling
// would destroy. Values are the same display strings the table
// renderer shows, so the two outputs round-trip against each other.
func renderJSON(w io.Writer, res *source.TableResult, p Projection, cfg Config) error {
	var buf bytes.Buffer
	if cfg.Stats && res.Stats != nil {
		buf.WriteString("{\n")
		if res.Database != "" {
			buf.WriteString("  \"database\": ")
			writeScalar(&buf, res.Database)
			buf.WriteString(",\n")
		}
		buf.WriteString("  \"table\": ")
		writeScalar(&buf, res.Table)
		buf.WriteString(",\n  \"columns\": ")
		writeRecords(&buf, p, "  ")
		buf.WriteString(",\n  \"stats\": ")
		if err := writeStatsJSON(&buf, res.Stats, "  "); err != nil {
			return err
		}
		buf.WriteString("\n}\n")
	} else {
		writeRecords(&buf, p, "")
		buf.WriteByte('\n')
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func writeScalar(buf *bytes.Buffer, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		// strings and integers cannot fail to marshal
		b = []byte("null")
	}
	buf.Write(b)
}

func writeRecords(buf *bytes.Buffer, p Projection, indent string) {
	if len(p.Rows) == 0 {
		buf.WriteString("[]")
		return
	}
	buf.WriteString("[\n")
	for ri, row := range p.Rows {
		buf.WriteString(indent + "  {\n")
		for i, h := range p.Headers {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			buf.WriteString(indent + "    ")
			writeScalar(buf, h)
			buf.WriteString(": ")
			writeScalar(buf, cell)
			if i < len(p.Headers)-1 {
				buf.WriteByte(',')
			}
			buf.WriteByte('\n')
		}
		buf.WriteString(indent + "  }")
		if ri < len(p.Rows)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString(indent + "]")
}

func writeStatsJSON(buf *bytes.Buffer, stats *source.TableStats, indent string) error {
	buf.WriteString("{\n")
	buf.WriteString(indent + "  \"row_count\": ")
	writeScalar(buf, stats.Rows)
	buf.WriteString(",\n" + indent + "  \"data_bytes\": ")
	writeScalar(buf, stats.DataBytes)
	buf.WriteString(fmt.Sprintf(",\n%s  \"index_count\": %d", indent, stats.IndexCount()))
	buf.WriteString(",\n" + indent + "  \"indexes\": ")
	indexes := stats.Indexes
	if indexes == nil {
		indexes = []source.IndexInfo{}
	}
	b, err := json.MarshalIndent(indexes, indent+"  ", "  ")
	if err != nil {
		return fmt.Errorf("encode indexes: %w", err)
	}
	buf.Write(b)
	buf.WriteString("\n" + indent + "}")
	return nil
}
