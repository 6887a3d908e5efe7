package render

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/tablestruct/tablestruct/internal/source"
)

func renderCSV(w io.Writer, res *source.TableResult, p Projection, cfg Config) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(p.Headers); err != nil {
		return err
	}
	for _, row := range p.Rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	if cfg.Stats && res.Stats != nil {
		fmt.Fprintln(w)
		return writeStatsCSV(w, res.Stats)
	}
	return nil
}

func writeStatsCSV(w io.Writer, stats *source.TableStats) error {
	cw := csv.NewWriter(w)
	records := [][]string{{"Statistic", "Value"}}
	if stats.Rows != nil {
		records = append(records, []string{"row_count", fmt.Sprint(*stats.Rows)})
	}
	if stats.DataBytes != nil {
		records = append(records, []string{"data_bytes", fmt.Sprint(*stats.DataBytes)})
	}
	records = append(records, []string{"index_count", fmt.Sprint(stats.IndexCount())})
	for _, idx := range stats.Indexes {
		records = append(records, []string{"index", fmt.Sprintf("%s (%s)", idx.Name, idx.Column)})
	}
	if err := cw.WriteAll(records); err != nil {
		return err
	}
	return cw.Error()
}
