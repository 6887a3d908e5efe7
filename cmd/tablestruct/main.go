package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/tablestruct/tablestruct/internal/cache"
	"github.com/tablestruct/tablestruct/internal/config"
	"github.com/tablestruct/tablestruct/internal/parse"
	"github.com/tablestruct/tablestruct/internal/render"
	"github.com/tablestruct/tablestruct/internal/source"
	"github.com/tablestruct/tablestruct/internal/source/mysql"
	"github.com/tablestruct/tablestruct/pkg/types"
)

const version = "1.0.0"

func main() {
	if err := run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "tablestruct: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("tablestruct", flag.ContinueOnError)
	fs.Usage = func() { printUsage(fs.Output()) }

	var (
		columnsFlag, formatFlag, outputFlag, configFlag string
		statsFlag, noColorFlag, noCacheFlag             bool
		verboseFlag, versionFlag                        bool
	)
	fs.StringVar(&columnsFlag, "columns", "", "comma-separated display columns")
	fs.StringVar(&columnsFlag, "c", "", "alias for --columns")
	fs.StringVar(&formatFlag, "format", "", "output format: table, json or csv")
	fs.StringVar(&formatFlag, "f", "", "alias for --format")
	fs.BoolVar(&statsFlag, "stats", false, "include table statistics")
	fs.BoolVar(&statsFlag, "s", false, "alias for --stats")
	fs.StringVar(&outputFlag, "output", "", "write output to a file")
	fs.StringVar(&outputFlag, "o", "", "alias for --output")
	fs.BoolVar(&noColorFlag, "no-color", false, "disable colorized output")
	fs.BoolVar(&noColorFlag, "n", false, "alias for --no-color")
	fs.BoolVar(&noCacheFlag, "no-cache", false, "bypass the result cache")
	fs.BoolVar(&noCacheFlag, "N", false, "alias for --no-cache")
	fs.StringVar(&configFlag, "config", "", "path to config.yaml")
	fs.BoolVar(&verboseFlag, "verbose", false, "enable debug logging")
	fs.BoolVar(&verboseFlag, "v", false, "alias for --verbose")
	fs.BoolVar(&versionFlag, "version", false, "print version and exit")
	fs.BoolVar(&versionFlag, "V", false, "alias for --version")

	if err := fs.Parse(args[1:]); err != nil {
		if err == flag.ErrHelp {
			return nil
		}
		return err
	}
	if versionFlag {
		fmt.Printf("tablestruct v%s\n", version)
		return nil
	}

	opts := &config.Options{
		Columns: config.SplitColumns(columnsFlag),
		Format:  formatFlag,
		Stats:   statsFlag,
		Output:  outputFlag,
		NoCache: noCacheFlag,
		Verbose: verboseFlag,
	}
	if noColorFlag {
		opts.ColorMode = config.ColorNever
	}
	if rest := fs.Args(); len(rest) > 0 {
		opts.Database = rest[0]
		opts.Tables = rest[1:]
	}

	file, err := config.LoadFile(configFlag)
	if err != nil {
		return err
	}
	if err := opts.ApplyFile(file); err != nil {
		return err
	}
	if opts.Format == "" {
		opts.Format = string(render.FormatTable)
	}
	if opts.ColorMode == "" {
		opts.ColorMode = config.ColorAuto
	}
	if opts.CacheTTL == 0 {
		opts.CacheTTL = cache.DefaultMaxAge
	}
	if err := opts.Validate(); err != nil {
		return err
	}

	logger := newLogger(opts.Verbose)
	defer logger.Sync()

	// A filter naming no real display column at all is a configuration
	// error; partially unknown filters are reported up front and the
	// known remainder used for the whole run.
	if known, unknown := splitFilter(opts.Columns); len(unknown) > 0 {
		for _, u := range unknown {
			fmt.Fprintf(os.Stderr, "tablestruct: unknown column %q in --columns, skipping\n", u)
		}
		if len(known) == 0 {
			return fmt.Errorf("column filter matches no display columns")
		}
		opts.Columns = known
	}

	dst := os.Stdout
	if opts.Output != "" {
		f, err := os.Create(opts.Output)
		if err != nil {
			return fmt.Errorf("open output file: %w", err)
		}
		defer f.Close()
		dst = f
	}

	format := render.Format(opts.Format)
	cfg := render.Config{
		Color:     colorEnabled(opts.ColorMode, dst),
		TermWidth: termWidth(dst),
		Stats:     opts.Stats,
	}

	if opts.PipeMode() {
		return runPipe(dst, opts, format, cfg)
	}
	ctx := context.Background()

	client := mysql.NewClient(opts.Client, opts.Database, opts.Timeout, logger)
	store := openCache(opts, logger)

	report, err := processTables(ctx, dst, client, store, opts, format, cfg)
	if err != nil {
		return err
	}

	if opts.Output != "" {
		ok := len(report.Outcomes) - report.FailureCount()
		fmt.Printf("wrote %d table(s) to %s\n", ok, opts.Output)
	}
	if report.Failed() {
		return fmt.Errorf("%d of %d tables failed", report.FailureCount(), len(report.Outcomes))
	}
	return nil
}

func runPipe(dst *os.File, opts *config.Options, format render.Format, cfg render.Config) error {
	cols, err := parse.Read(os.Stdin)
	if err != nil {
		return err
	}
	res := &source.TableResult{Table: "stdin", Columns: cols}
	if err := emit(dst, res, opts, format, cfg); err != nil {
		return err
	}
	if opts.Output != "" {
		fmt.Printf("wrote 1 table(s) to %s\n", opts.Output)
	}
	return nil
}

// schemaClient is what the table loop needs from the mysql wrapper.
type schemaClient interface {
	FetchColumns(ctx context.Context, table string) ([]source.ColumnRecord, error)
	FetchStats(ctx context.Context, table string) *source.TableStats
}

// processTables runs the sequential per-table pipeline. A failing table
// is reported and skipped; only output-write errors abort the run.
func processTables(ctx context.Context, dst io.Writer, client schemaClient, store *cache.Cache, opts *config.Options, format render.Format, cfg render.Config) (*types.RunReport, error) {
	report := &types.RunReport{}
	for i, table := range opts.Tables {
		if format == render.FormatTable {
			if i > 0 {
				fmt.Fprintf(dst, "\n%s\n\n", strings.Repeat("=", 80))
			}
			render.Heading(dst, cfg, opts.Database, table)
		}
		res, cached, err := fetch(ctx, client, store, opts, table)
		if err != nil {
			fmt.Fprintf(os.Stderr, "tablestruct: table %s: %v\n", table, err)
			report.Add(types.TableOutcome{Table: table, Err: err})
			continue
		}
		if err := emit(dst, res, opts, format, cfg); err != nil {
			return nil, err
		}
		report.Add(types.TableOutcome{Table: table, Cached: cached})
	}
	return report, nil
}

// fetch returns the table result from cache when fresh and permitted,
// otherwise invokes the client and persists the new result.
func fetch(ctx context.Context, client schemaClient, store *cache.Cache, opts *config.Options, table string) (*source.TableResult, bool, error) {
	key := cache.Key(opts.Database, table, opts.Columns)
	if store != nil && !opts.NoCache {
		if res, ok := store.Get(key, opts.Stats); ok {
			return res, true, nil
		}
	}
	cols, err := client.FetchColumns(ctx, table)
	if err != nil {
		return nil, false, err
	}
	res := &source.TableResult{Database: opts.Database, Table: table, Columns: cols}
	if opts.Stats {
		res.Stats = client.FetchStats(ctx, table)
	}
	if store != nil {
		store.Put(key, res)
	}
	return res, false, nil
}

func emit(dst io.Writer, res *source.TableResult, opts *config.Options, format render.Format, cfg render.Config) error {
	p, _ := render.Project(res, opts.Columns)
	var buf bytes.Buffer
	if err := render.Render(&buf, format, res, p, cfg); err != nil {
		return err
	}
	if _, err := dst.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func openCache(opts *config.Options, logger *zap.Logger) *cache.Cache {
	dir := opts.CacheDir
	if dir == "" {
		var err error
		if dir, err = cache.DefaultDir(); err != nil {
			logger.Warn("cache disabled", zap.Error(err))
			return nil
		}
	}
	return cache.New(dir, opts.CacheTTL, logger)
}

func splitFilter(filter []string) (known, unknown []string) {
	for _, name := range filter {
		if _, ok := (source.ColumnRecord{}).Value(name); ok {
			known = append(known, name)
		} else {
			unknown = append(unknown, name)
		}
	}
	return known, unknown
}

func colorEnabled(mode string, dst *os.File) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	return term.IsTerminal(int(dst.Fd()))
}

func termWidth(dst *os.File) int {
	if !term.IsTerminal(int(dst.Fd())) {
		return 0
	}
	w, _, err := term.GetSize(int(dst.Fd()))
	if err != nil {
		return 0
	}
	return w
}

func newLogger(verbose bool) *zap.Logger {
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	enc := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	return zap.New(zapcore.NewCore(enc, zapcore.Lock(os.Stderr), level))
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `tablestruct - format MySQL table structure

Usage:
  tablestruct [flags] <database> <table> [table ...]
  mysql mydb -e "SHOW COLUMNS FROM t" | tablestruct [flags]

Flags:
  -c, --columns <list>   comma-separated display columns (e.g. Field,Type)
  -f, --format <fmt>     output format: table, json or csv (default table)
  -s, --stats            include row count, data size and index listing
  -o, --output <path>    write output to a file instead of stdout
  -n, --no-color         disable colorized output
  -N, --no-cache         bypass the result cache and query fresh
      --config <path>    config file (default $XDG_CONFIG_HOME/tablestruct/config.yaml)
  -v, --verbose          enable debug logging
  -V, --version          print version and exit
  -h, --help             show this help message
`)
}
