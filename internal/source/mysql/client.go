// Package mysql shells out to the external mysql client binary. No SQL
// connection is ever opened; every query runs through `mysql <db> -e`.
package mysql

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tablestruct/tablestruct/internal/parse"
	"github.com/tablestruct/tablestruct/internal/source"
)

const defaultTimeout = 30 * time.Second

// ToolError reports a missing or failed client invocation.
type ToolError struct {
	Bin    string
	Stderr string
	Err    error
}

func (e *ToolError) Error() string {
	if errors.Is(e.Err, exec.ErrNotFound) {
		return fmt.Sprintf("%s client not found in PATH", e.Bin)
	}
	if e.Stderr != "" {
		return fmt.Sprintf("%s client failed: %s", e.Bin, e.Stderr)
	}
	return fmt.Sprintf("%s client failed: %v", e.Bin, e.Err)
}

func (e *ToolError) Unwrap() error { return e.Err }

type runner func(ctx context.Context, bin string, args ...string) (stdout, stderr []byte, err error)

type Client struct {
	bin      string
	database string
	timeout  time.Duration
	log      *zap.Logger
	run      runner
}

func NewClient(bin, database string, timeout time.Duration, log *zap.Logger) *Client {
	if bin == "" {
		bin = "mysql"
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{bin: bin, database: database, timeout: timeout, log: log, run: execRunner}
}

func execRunner(ctx context.Context, bin string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, bin, args...)
	var out, errOut bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errOut
	err := cmd.Run()
	return out.Bytes(), errOut.Bytes(), err
}

func (c *Client) query(ctx context.Context, stmt string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	stdout, stderr, err := c.run(ctx, c.bin, c.database, "-e", stmt)
	if err != nil {
		return nil, &ToolError{Bin: c.bin, Stderr: strings.TrimSpace(string(stderr)), Err: err}
	}
	text := strings.TrimRight(string(stdout), "\n")
	if text == "" {
		return nil, nil
	}
	return strings.Split(text, "\n"), nil
}

// FetchColumns runs SHOW COLUMNS for table and parses the listing.
func (c *Client) FetchColumns(ctx context.Context, table string) ([]source.ColumnRecord, error) {
	lines, err := c.query(ctx, fmt.Sprintf("SHOW COLUMNS FROM `%s`", table))
	if err != nil {
		return nil, err
	}
	cols, err := parse.Columns(lines)
	if err != nil {
		return nil, fmt.Errorf("table %s: %w", table, err)
	}
	return cols, nil
}

// FetchStats gathers row count, approximate data size, and the index
// listing. Each figure degrades independently: a failing query is
// logged and its field left unset, never failing the table.
func (c *Client) FetchStats(ctx context.Context, table string) *source.TableStats {
	stats := &source.TableStats{}

	if rows, err := c.rowCount(ctx, table); err != nil {
		c.log.Warn("row count unavailable", zap.String("table", table), zap.Error(err))
	} else {
		stats.Rows = &rows
	}
	if size, err := c.dataSize(ctx, table); err != nil {
		c.log.Warn("data size unavailable", zap.String("table", table), zap.Error(err))
	} else {
		stats.DataBytes = &size
	}
	indexes, err := c.indexes(ctx, table)
	if err != nil {
		c.log.Warn("index listing unavailable", zap.String("table", table), zap.Error(err))
	} else {
		stats.Indexes = indexes
	}
	return stats
}

func (c *Client) rowCount(ctx context.Context, table string) (int64, error) {
	lines, err := c.query(ctx, fmt.Sprintf("SELECT COUNT(*) FROM `%s`", table))
	if err != nil {
		return 0, err
	}
	if len(lines) < 2 {
		return 0, errors.New("no count row in client output")
	}
	return strconv.ParseInt(strings.TrimSpace(lines[1]), 10, 64)
}

func (c *Client) dataSize(ctx context.Context, table string) (uint64, error) {
	stmt := fmt.Sprintf(
		"SELECT data_length + index_length FROM information_schema.TABLES WHERE table_schema = '%s' AND table_name = '%s'",
		c.database, table)
	lines, err := c.query(ctx, stmt)
	if err != nil {
		return 0, err
	}
	if len(lines) < 2 {
		return 0, errors.New("no size row in client output")
	}
	return strconv.ParseUint(strings.TrimSpace(lines[1]), 10, 64)
}

// indexes parses SHOW INDEX batch output: one line per indexed column,
// Non_unique in position 1, Key_name in 2, Column_name in 4.
func (c *Client) indexes(ctx context.Context, table string) ([]source.IndexInfo, error) {
	lines, err := c.query(ctx, fmt.Sprintf("SHOW INDEX FROM `%s`", table))
	if err != nil {
		return nil, err
	}
	var out []source.IndexInfo
	for i, line := range lines {
		if i == 0 || strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 5 {
			continue
		}
		out = append(out, source.IndexInfo{
			Name:   fields[2],
			Column: fields[4],
			Unique: fields[1] == "0",
		})
	}
	return out, nil
}
