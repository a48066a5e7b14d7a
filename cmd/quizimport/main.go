// Command quizimport validates a question file from disk and, unless
// -dry-run is given, saves it to the database named by DATABASE_URL.
//
//	quizimport -dry-run questions.xlsx
//	quizimport -target quiz-42 questions.docx
//	quizimport -template csv -o example.csv
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/JonMunkholm/QuizImport/internal/config"
	"github.com/JonMunkholm/QuizImport/internal/core"
	"github.com/JonMunkholm/QuizImport/internal/logging"
	"github.com/JonMunkholm/QuizImport/internal/store"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	dryRun       bool
	target       string
	template     string
	output       string
	enforceRange bool
	logLevel     string
}

func parseFlags(args []string, stderr io.Writer) (*options, []string, error) {
	fs := flag.NewFlagSet("quizimport", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &options{}
	fs.BoolVar(&opts.dryRun, "dry-run", false, "validate and print the questions as JSON without saving")
	fs.StringVar(&opts.target, "target", "", "quiz the questions belong to")
	fs.StringVar(&opts.template, "template", "", "write the example file for an extension (xlsx, docx, csv) and exit")
	fs.StringVar(&opts.output, "o", "", "output path for -template (default: example.<ext>)")
	fs.BoolVar(&opts.enforceRange, "enforce-range", false, "reject answers outside 1-4")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: quizimport [flags] <file>")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return opts, fs.Args(), nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, rest, err := parseFlags(args, stderr)
	if err != nil {
		return 2
	}

	cfg := config.Defaults()
	cfg.Logging.Level = opts.logLevel
	if err := cfg.ValidateLocal(); err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	slog.SetDefault(logging.New(cfg.Logging.Level, cfg.Logging.Format, stderr))

	if opts.template != "" {
		return writeTemplate(opts, stdout, stderr)
	}

	if len(rest) != 1 {
		fmt.Fprintln(stderr, "usage: quizimport [flags] <file>")
		return 2
	}

	var sink core.Sink = &core.MemorySink{}
	if !opts.dryRun {
		pool, err := connect(ctx)
		if err != nil {
			fmt.Fprintln(stderr, "database:", err)
			return 1
		}
		defer pool.Close()

		st := store.New(pool)
		if err := st.Migrate(ctx); err != nil {
			fmt.Fprintln(stderr, "database:", err)
			return 1
		}
		sink = st
	}

	notifier := core.NotifierFunc(func(_ context.Context, a core.Alert) {
		fmt.Fprintf(stderr, "%s: %s\n", a.Severity, a.Message)
	})
	service := core.NewService(sink, notifier, core.Options{
		MaxFileBytes:       cfg.Import.MaxFileSize,
		EnforceAnswerRange: opts.enforceRange,
		MaxConcurrent:      1,
		MaxWait:            cfg.Import.MaxWaitTime,
	})

	req := core.ImportRequest{
		Source: core.FileSource{Path: rest[0], MaxBytes: cfg.Import.MaxFileSize},
		Target: opts.target,
	}

	var result *core.ImportResult
	if opts.dryRun {
		result, err = service.Preview(ctx, req)
	} else {
		result, err = service.Import(ctx, req)
	}

	if result != nil {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(result); encErr != nil {
			fmt.Fprintln(stderr, encErr)
			return 1
		}
	}
	if err != nil {
		if opts.dryRun {
			fmt.Fprintln(stderr, core.FormatUserError(err))
		}
		var ie *core.ImportError
		if errors.As(err, &ie) {
			for _, line := range ie.Details() {
				fmt.Fprintln(stderr, "  "+line)
			}
		}
		return 1
	}
	return 0
}

func writeTemplate(opts *options, stdout, stderr io.Writer) int {
	tf, err := core.Template(opts.template)
	if err != nil {
		fmt.Fprintln(stderr, core.FormatUserError(err))
		return 1
	}

	if opts.output == "-" {
		stdout.Write(tf.Data)
		return 0
	}

	path := opts.output
	if path == "" {
		path = tf.Name
	}
	if err := os.WriteFile(path, tf.Data, 0o644); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	fmt.Fprintln(stdout, path)
	return 0
}

func connect(ctx context.Context) (*pgxpool.Pool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	poolConfig.MaxConns = 2
	poolConfig.MinConns = 0

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}
