package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/AlfredBerg/job-crawler/internal/crawl"
	"github.com/AlfredBerg/job-crawler/internal/extract"
	"github.com/AlfredBerg/job-crawler/internal/fetch"
	"github.com/AlfredBerg/job-crawler/internal/logging"
	"github.com/AlfredBerg/job-crawler/internal/outputHandlers/format"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	ExitOK             = 0
	ExitFailure        = 1
	ExitNothingScraped = 2
	ExitUsage          = 64
)

// ErrNothingScraped means the crawl worked but produced no records.
var ErrNothingScraped = errors.New("no results scraped")

type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

type crawlFlags struct {
	query    string
	pages    int
	delayMin float64
	delayMax float64
	output   string
	timeout  time.Duration
	strict   bool
	preview  int
	logLevel string

	baseURL string
	origin  string
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	return execute(newRootCmd(), os.Stderr)
}

func execute(root *cobra.Command, stderr io.Writer) int {
	err := root.Execute()
	if err == nil {
		return ExitOK
	}

	code := exitCode(err)
	var fetchErr *fetch.FetchError
	switch {
	case code == ExitNothingScraped:
		fmt.Fprintln(stderr, "No results scraped. Try a different query or check your network.")
	case code == ExitUsage:
		fmt.Fprintln(stderr, "Error:", err)
		fmt.Fprintln(stderr, root.UsageString())
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(stderr, "Interrupted, nothing was written.")
	case errors.As(err, &fetchErr):
		fmt.Fprintln(stderr, "Error: network failure:", err)
	default:
		fmt.Fprintln(stderr, "Error:", err)
	}
	return code
}

func exitCode(err error) int {
	var (
		unsupported *format.UnsupportedFormatError
		invalid     *crawl.ValidationError
		usage       *usageError
	)
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrNothingScraped):
		return ExitNothingScraped
	case errors.As(err, &unsupported), errors.As(err, &invalid), errors.As(err, &usage):
		return ExitUsage
	default:
		return ExitFailure
	}
}

func newRootCmd() *cobra.Command {
	var cfgFile string
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "job-crawler",
		Short: "Scrape job search result pages into a csv, json, parquet or sqlite file",
		Example: `  job-crawler --query "python developer" --pages 3
  job-crawler -q "data engineer" -p 5 -o jobs.parquet --delay 1,3`,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.NoArgs(cmd, args); err != nil {
				return &usageError{err: err}
			}
			return nil
		},
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(v, cfgFile)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := applyDelay(cmd.Flags(), v); err != nil {
				return err
			}
			return runCrawl(cmd, loadFlags(v))
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.job-crawler.yaml)")

	f := cmd.Flags()
	f.StringP("query", "q", "python developer", "Search phrase")
	f.IntP("pages", "p", 3, "Number of result pages to scrape")
	f.Float64Slice("delay", nil, "Random wait in seconds between page requests as MIN,MAX (sets --delay-min and --delay-max)")
	f.Float64("delay-min", 2, "Lower bound in seconds of the random wait between page requests")
	f.Float64("delay-max", 5, "Upper bound in seconds of the random wait between page requests")
	f.StringP("output", "o", "jobs.csv", "Output file, the format is picked from the suffix (.csv, .json, .parquet, .sqlite, .db)")
	f.Duration("timeout", fetch.DefaultTimeout, "Timeout of a single page request, with a unit (e.g. 15s), at least 1s")
	f.Bool("strict", false, "Abort when a page comes back without any job card")
	f.Int("preview", 0, "Print the first N scraped rows as a table")
	f.String("log-level", "info", "Log level: debug, info, warn or error")

	f.String("base-url", crawl.DefaultBaseURL, "Search endpoint")
	f.String("origin", extract.DefaultOrigin, "Origin listing links are resolved against")
	_ = f.MarkHidden("base-url")
	_ = f.MarkHidden("origin")

	f.VisitAll(func(flag *pflag.Flag) {
		if flag.Name == "delay" {
			return
		}
		_ = v.BindPFlag(flag.Name, flag)
	})

	return cmd
}

// initConfig reads in config file and ENV variables if set.
func initConfig(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		// Use config file from the flag.
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			// Search config in home directory with name ".job-crawler" (without extension).
			v.AddConfigPath(home)
			v.SetConfigType("yaml")
			v.SetConfigName(".job-crawler")
		}
	}

	v.SetEnvPrefix("JOB_CRAWLER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return &usageError{err: fmt.Errorf("read config: %w", err)}
		}
	}
	return nil
}

// applyDelay feeds --delay MIN,MAX into the delay-min and delay-max keys.
func applyDelay(f *pflag.FlagSet, v *viper.Viper) error {
	if !f.Changed("delay") {
		return nil
	}
	bounds, err := f.GetFloat64Slice("delay")
	if err != nil {
		return &usageError{err: err}
	}
	if len(bounds) != 2 {
		return &usageError{err: fmt.Errorf("--delay takes two values MIN,MAX, got %d", len(bounds))}
	}
	v.Set("delay-min", bounds[0])
	v.Set("delay-max", bounds[1])
	return nil
}

func loadFlags(v *viper.Viper) crawlFlags {
	return crawlFlags{
		query:    v.GetString("query"),
		pages:    v.GetInt("pages"),
		delayMin: v.GetFloat64("delay-min"),
		delayMax: v.GetFloat64("delay-max"),
		output:   v.GetString("output"),
		timeout:  v.GetDuration("timeout"),
		strict:   v.GetBool("strict"),
		preview:  v.GetInt("preview"),
		logLevel: v.GetString("log-level"),
		baseURL:  v.GetString("base-url"),
		origin:   v.GetString("origin"),
	}
}

func runCrawl(cmd *cobra.Command, flags crawlFlags) error {
	logger, err := logging.New(flags.logLevel)
	if err != nil {
		return &usageError{err: err}
	}
	defer logger.Sync()

	if flags.pages < 1 {
		return &usageError{err: errors.New("--pages must be >= 1")}
	}
	if flags.timeout < time.Second {
		return &usageError{err: fmt.Errorf("--timeout must be at least 1s, got %s (a bare number is read as nanoseconds)", flags.timeout)}
	}
	outPath, err := expandPath(flags.output)
	if err != nil {
		return err
	}
	// Fail on an unknown suffix before any request goes out.
	outFormat, err := format.FromPath(outPath)
	if err != nil {
		return err
	}
	pacer, err := crawl.NewUniformPacer(flags.delayMin, flags.delayMax)
	if err != nil {
		return err
	}
	extractor, err := extract.New(flags.origin, extract.WithLogger(logger))
	if err != nil {
		return &usageError{err: fmt.Errorf("invalid origin: %w", err)}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	job := crawl.Job{
		ID:          uuid.New(),
		Query:       flags.query,
		Pages:       flags.pages,
		BaseURL:     flags.baseURL,
		Fetcher:     fetch.New(fetch.Options{Timeout: flags.timeout}),
		Extractor:   extractor,
		Pacer:       pacer,
		StrictPages: flags.strict,
		Logger:      logger,
		OnPage:      logPage(logger, flags.pages),
	}
	logger.Info("starting crawl", zap.String("run_id", job.ID.String()), zap.String("query", job.Query),
		zap.Int("pages", job.Pages), zap.Stringer("format", outFormat), zap.String("output", outPath))

	dataset, err := job.Crawl(ctx)
	if err != nil {
		return err
	}
	if dataset.Empty() {
		return ErrNothingScraped
	}

	if err := outFormat.Write(dataset, outPath); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Saved %d rows -> %s\n", dataset.Len(), outPath)
	if flags.preview > 0 {
		printPreview(out, dataset.Records(), flags.preview)
	}
	return nil
}

func logPage(logger *zap.Logger, pages int) func(crawl.PageResult) {
	return func(r crawl.PageResult) {
		logger.Info("page scraped",
			zap.String("progress", fmt.Sprintf("%d/%d", r.Page+1, pages)),
			zap.String("url", r.URL),
			zap.Int("offset", r.Offset),
			zap.Int("records", r.Records),
			zap.Int("skipped", r.Skipped))
	}
}

func expandPath(p string) (string, error) {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		p = filepath.Join(home, strings.TrimPrefix(p, "~"))
	}
	return filepath.Abs(p)
}
