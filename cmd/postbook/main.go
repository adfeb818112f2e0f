package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/gofrs/flock"
	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"

	"github.com/umputun/postbook/pkg/config"
	"github.com/umputun/postbook/pkg/content"
	"github.com/umputun/postbook/pkg/feed"
	"github.com/umputun/postbook/pkg/pipeline"
	"github.com/umputun/postbook/pkg/remote"
	"github.com/umputun/postbook/pkg/repository"
)

// Opts with all CLI options
type Opts struct {
	Config string `short:"c" long:"config" env:"POSTBOOK_CONFIG" description:"path to yaml config file"`

	BaseURL   string `long:"base-url" env:"SUBSTACK_BASE_URL" description:"newsletter base url"`
	SessionID string `long:"sid" env:"SUBSTACK_SID_COOKIE" description:"session cookie value"`
	Name      string `long:"name" env:"SUBSTACK_NEWSLETTER_NAME" description:"newsletter name, used in the book title"`
	Author    string `long:"author" env:"SUBSTACK_NEWSLETTER_AUTHOR" description:"book author"`
	DB        string `long:"db" env:"POSTBOOK_DB" description:"archive database file"`
	Out       string `short:"o" long:"out" env:"POSTBOOK_OUT" description:"output directory for the epub"`

	SkipSync bool `long:"skip-sync" description:"build the book from the archive without network access"`
	Status   bool `long:"status" description:"show archive status and exit"`

	// Common options
	Debug   bool `long:"dbg" env:"DEBUG" description:"debug mode"`
	Version bool `short:"V" long:"version" description:"show version info"`
	NoColor bool `long:"no-color" env:"NO_COLOR" description:"disable color output"`
}

var revision = "unknown"

func main() {
	if err := loadEnvFile(envFile()); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load env file: %v\n", err)
		os.Exit(1)
	}

	var opts Opts
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.Version {
		fmt.Printf("Version: %s\nGolang: %s\n", revision, runtime.Version())
		os.Exit(0)
	}

	if opts.NoColor {
		color.NoColor = true
	}
	setupLog(opts.Debug, opts.SessionID)

	log.Printf("[INFO] starting postbook version %s", revision)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, opts); err != nil {
		log.Printf("[ERROR] %v", err)
		cancel()
		os.Exit(1)
	}
}

// run loads configuration, opens the archive and either prints its status or runs the pipeline
func run(ctx context.Context, opts Opts) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Source.SessionID != "" && cfg.Source.SessionID != opts.SessionID {
		setupLog(opts.Debug, cfg.Source.SessionID)
	}

	lock, err := acquireLock(lockPath(cfg.Database.DSN))
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			log.Printf("[WARN] failed to release lock %s: %v", lock.Path(), err)
		}
	}()

	repos, err := repository.NewRepositories(ctx, repository.Config{
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: time.Duration(cfg.Database.ConnMaxLifetime) * time.Second,
	})
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer func() {
		if err := repos.Close(); err != nil {
			log.Printf("[WARN] failed to close archive: %v", err)
		}
	}()

	if opts.Status {
		return printStatus(ctx, os.Stdout, cfg, repos.Item)
	}

	client, err := remote.New(remote.Config{
		BaseURL:    cfg.Source.BaseURL,
		SessionID:  cfg.Source.SessionID,
		CookieName: cfg.Source.CookieName,
		UserAgent:  cfg.Source.UserAgent,
		Timeout:    cfg.Source.Timeout,
	})
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	if cfg.Source.SessionID == "" {
		log.Printf("[WARN] no session cookie set, subscriber-only posts will be skipped or truncated")
	}

	p := pipeline.New(pipeline.Config{
		Reader:    feed.NewReader(client),
		Fetcher:   content.NewFetcher(client),
		Store:     repos.Item,
		Assembler: pipeline.NewEpubAssembler(),
		Name:      cfg.Book.Name,
		Author:    cfg.Author(),
		Publisher: cfg.Source.BaseURL,
		Lang:      cfg.Book.Lang,
		OutputDir: cfg.Book.OutputDir,
		PageSize:  cfg.Sync.PageSize,
		Delay:     pipeline.JitterDelay(cfg.Sync.DelayMin, cfg.Sync.DelayMax),
	})

	report, err := p.Run(ctx, pipeline.Options{SkipSync: opts.SkipSync})
	for _, res := range report.Failed() {
		log.Printf("[WARN] post %d (%s) has no content yet: %v", res.ID, res.Slug, res.Err)
	}
	if err != nil {
		if pipeline.IsEmptyArchive(err) {
			return fmt.Errorf("no posts with content in the archive, nothing to assemble: %w", err)
		}
		return fmt.Errorf("run failed: %w", err)
	}

	log.Printf("[INFO] done, %s", report)
	return nil
}

// loadConfig reads the config file if set and applies command line overrides on top of it
func loadConfig(opts Opts) (*config.Config, error) {
	cfg := config.New()
	if opts.Config != "" {
		var err error
		if cfg, err = config.Load(opts.Config); err != nil {
			return nil, err
		}
	}

	if opts.BaseURL != "" {
		cfg.Source.BaseURL = opts.BaseURL
	}
	if opts.SessionID != "" {
		cfg.Source.SessionID = opts.SessionID
	}
	if opts.Name != "" {
		cfg.Book.Name = opts.Name
	}
	if opts.Author != "" {
		cfg.Book.Author = opts.Author
	}
	if opts.DB != "" {
		cfg.Database.DSN = "file:" + opts.DB + "?mode=rwc&_txlock=immediate"
	}
	if opts.Out != "" {
		cfg.Book.OutputDir = opts.Out
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// acquireLock takes an exclusive lock so two runs never share one archive
func acquireLock(path string) (*flock.Flock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create lock dir: %w", err)
	}
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("another postbook run is using the archive, lock %s is held", path)
	}
	return lock, nil
}

// lockPath derives the lock file name from the database dsn, "file:foo.db?mode=rwc" gives "foo.db.lock"
func lockPath(dsn string) string {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" || path == ":memory:" {
		return filepath.Join(os.TempDir(), "postbook.lock")
	}
	return path + ".lock"
}

// envFile returns the dotenv file to load, POSTBOOK_ENV_FILE or ".env"
func envFile() string {
	if f := os.Getenv("POSTBOOK_ENV_FILE"); f != "" {
		return f
	}
	return ".env"
}

// loadEnvFile sets variables from a dotenv file, a missing file is not an error.
// Variables already present in the environment are kept.
func loadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func setupLog(dbg bool, secs ...string) {
	logOpts := []lgr.Option{lgr.Msec, lgr.LevelBraces}
	if dbg {
		logOpts = []lgr.Option{lgr.Debug, lgr.CallerFile, lgr.CallerFunc, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	}

	colorizer := lgr.Mapper{
		ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
		WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
		InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
		DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
		CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
		TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
	}
	logOpts = append(logOpts, lgr.Map(colorizer))

	var secrets []string
	for _, s := range secs {
		if s != "" {
			secrets = append(secrets, s)
		}
	}
	if len(secrets) > 0 {
		logOpts = append(logOpts, lgr.Secret(secrets...))
	}
	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}
