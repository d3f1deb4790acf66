// Command rsql filters JSON documents or SQLite rows with an RSQL expression
// and prints the matching records as JSON.
//
// Usage:
//
//	rsql [flags] filter
//
// Records are read from stdin unless -input or -db is given. A filter of the
// form @name refers to a filter saved in the configuration file.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/asaidimu/go-rsql/core/collection"
	"github.com/asaidimu/go-rsql/core/schema"
	"github.com/asaidimu/go-rsql/sqlite"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "rsql: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	flags := flag.NewFlagSet("rsql", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() {
		fmt.Fprintf(stderr, "usage: rsql [flags] filter\n")
		flags.PrintDefaults()
	}
	var (
		configFile  = flags.String("config", "", "YAML configuration `file`")
		input       = flags.String("input", "", "JSON `file` of documents (default stdin)")
		database    = flags.String("db", "", "SQLite database `file` to read rows from")
		table       = flags.String("table", "", "table to load from -db")
		sqlQuery    = flags.String("query", "", "SELECT statement to load rows from -db")
		concurrency = flags.Int("concurrency", 0, "number of goroutines evaluating records")
		logLevel    = flags.String("log-level", "", "log level (debug, info, warn, error)")
		indent      = flags.Bool("indent", true, "indent the JSON output")
	)
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() != 1 {
		flags.Usage()
		return fmt.Errorf("expected exactly one filter, got %d arguments", flags.NArg())
	}

	cfg := &Config{}
	if *configFile != "" {
		var err error
		if cfg, err = loadConfig(*configFile); err != nil {
			return err
		}
	}
	flags.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "input":
			cfg.Source.Input = *input
		case "db":
			cfg.Source.Database = *database
		case "table":
			cfg.Source.Table = *table
		case "query":
			cfg.Source.Query = *sqlQuery
		case "concurrency":
			cfg.Concurrency = *concurrency
		case "log-level":
			cfg.LogLevel = *logLevel
		}
	})

	filter, err := cfg.resolveFilter(flags.Arg(0))
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel, stderr)
	if err != nil {
		return err
	}
	defer logger.Sync()

	name, docs, err := loadDocuments(ctx, cfg.Source, stdin, logger)
	if err != nil {
		return err
	}
	logger.Info("Loaded records", zap.String("source", name), zap.Int("count", len(docs)))

	records, err := collection.New(name, docs,
		collection.WithLogger(logger),
		collection.WithConcurrency(cfg.Concurrency),
	)
	if err != nil {
		return err
	}
	matches, err := records.Search(ctx, filter)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(stdout)
	if *indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(matches)
}

// loadDocuments reads the records described by src and returns them with a
// name for the collection they form.
func loadDocuments(ctx context.Context, src SourceConfig, stdin io.Reader, logger *zap.Logger) (string, []schema.Document, error) {
	if src.Database != "" {
		db, err := sql.Open("sqlite3", src.Database)
		if err != nil {
			return "", nil, fmt.Errorf("failed to open database %s: %w", src.Database, err)
		}
		defer db.Close()

		source := sqlite.NewSource(db, logger)
		switch {
		case src.Query != "":
			docs, err := source.Load(ctx, src.Query)
			return src.Database, docs, err
		case src.Table != "":
			docs, err := source.LoadTable(ctx, src.Table)
			return src.Table, docs, err
		default:
			return "", nil, fmt.Errorf("database %s needs a table or a query", src.Database)
		}
	}

	if src.Input == "" || src.Input == "-" {
		docs, err := schema.DecodeDocuments(stdin)
		return "stdin", docs, err
	}
	f, err := os.Open(src.Input)
	if err != nil {
		return "", nil, err
	}
	defer f.Close()
	docs, err := schema.DecodeDocuments(f)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", src.Input, err)
	}
	return src.Input, docs, nil
}
