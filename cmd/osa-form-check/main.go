// Package main provides osa-form-check, an end-to-end browser check of the
// OSA Request Form's phone and postal code input masks.
//
// It opens the form in a headless browser, walks the first three wizard
// steps, types into the masked fields and compares what the page renders
// with the expected formatted values. The exit status is 0 only when every
// check passes.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/entrhq/osa-formcheck/pkg/browser"
	"github.com/entrhq/osa-formcheck/pkg/browser/rodbrowser"
	"github.com/entrhq/osa-formcheck/pkg/config"
	"github.com/entrhq/osa-formcheck/pkg/fixture"
	"github.com/entrhq/osa-formcheck/pkg/logging"
	"github.com/entrhq/osa-formcheck/pkg/report"
	"github.com/entrhq/osa-formcheck/pkg/scenario"
)

const (
	version     = "0.1.0"
	sessionName = "osa-form"
)

// errChecksFailed is returned when the run completed but not every check
// passed.
var errChecksFailed = errors.New("form checks failed")

// CLIConfig holds command-line configuration
type CLIConfig struct {
	ConfigFile  string
	BaseURL     string
	Driver      string
	Headed      bool
	Run         string
	Fixture     bool
	Artifacts   string
	Verbosity   string
	ShowVersion bool

	// set records which flags were given explicitly
	set map[string]bool
}

func main() {
	// Parse command line flags
	cli := parseFlags(flag.CommandLine, os.Args[1:])

	// Show version if requested
	if cli.ShowVersion {
		fmt.Printf("osa-form-check v%s\n", version)
		return
	}

	// Create context with signal handling
	ctx, cancel := context.WithCancel(context.Background())

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\n\nInterrupted, finishing up...")
		cancel()
	}()

	err := run(ctx, cli)
	cancel()
	if err != nil {
		if !errors.Is(err, errChecksFailed) {
			log.Printf("Form check failed: %v", err)
		}
		os.Exit(1)
	}
}

// parseFlags parses command line flags
func parseFlags(fs *flag.FlagSet, args []string) *CLIConfig {
	cli := &CLIConfig{set: make(map[string]bool)}

	fs.StringVar(&cli.ConfigFile, "config", "", "Path to configuration file (YAML)")
	fs.StringVar(&cli.BaseURL, "base-url", "", "Base URL of the app under test (default http://localhost:3000)")
	fs.StringVar(&cli.Driver, "driver", "", "Browser driver: playwright or rod")
	fs.BoolVar(&cli.Headed, "headed", false, "Show the browser window")
	fs.StringVar(&cli.Run, "run", "", "Only run checks whose name matches this glob")
	fs.BoolVar(&cli.Fixture, "fixture", false, "Serve the bundled form fixture and test against it")
	fs.StringVar(&cli.Artifacts, "artifacts", "", "Write result.json and summary.md to this directory")
	fs.StringVar(&cli.Verbosity, "verbosity", "", "Console verbosity: quiet, normal, verbose or debug")
	fs.BoolVar(&cli.ShowVersion, "version", false, "Show version and exit")

	fs.Usage = func() {
		out := fs.Output()
		fmt.Fprintf(out, "osa-form-check - OSA Request Form input mask check\n\n")
		fmt.Fprintf(out, "Usage: osa-form-check [options]\n\n")
		fmt.Fprintf(out, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(out, "\nExamples:\n")
		fmt.Fprintf(out, "  # Check the local dev server\n")
		fmt.Fprintf(out, "  osa-form-check\n\n")
		fmt.Fprintf(out, "  # Check a deployed environment with a config file\n")
		fmt.Fprintf(out, "  osa-form-check -config formcheck.yaml\n\n")
		fmt.Fprintf(out, "  # Only the postal code checks, against the bundled fixture\n")
		fmt.Fprintf(out, "  osa-form-check -fixture -run 'billing-postal-*'\n\n")
	}

	// ExitOnError on the command line set; tests pass ContinueOnError sets
	_ = fs.Parse(args)
	fs.Visit(func(f *flag.Flag) {
		cli.set[f.Name] = true
	})
	return cli
}

// loadConfig loads the run configuration from file, or defaults, and
// applies flag overrides. Flags given explicitly win over the file.
func loadConfig(cli *CLIConfig) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if cli.ConfigFile != "" {
		loaded, err := config.Load(cli.ConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if cli.set["base-url"] {
		cfg.BaseURL = cli.BaseURL
	}
	if cli.set["driver"] {
		cfg.Driver = config.DriverKind(cli.Driver)
	}
	if cli.set["headed"] {
		cfg.Headless = !cli.Headed
	}
	if cli.set["run"] {
		cfg.Run = cli.Run
	}
	if cli.set["artifacts"] {
		cfg.Artifacts.Enabled = cli.Artifacts != ""
		cfg.Artifacts.OutputDir = cli.Artifacts
	}
	if cli.set["verbosity"] {
		cfg.Logging.Verbosity = cli.Verbosity
	}

	return cfg, nil
}

// run executes one form check. It returns errChecksFailed when the run
// completed with failures.
func run(ctx context.Context, cli *CLIConfig) error {
	cfg, err := loadConfig(cli)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	var srv *fixture.Server
	if cli.Fixture {
		srv, err = fixture.Start("127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to start fixture server: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Close(shutdownCtx)
		}()
		cfg.BaseURL = srv.URL
	}

	if validationErr := cfg.Validate(); validationErr != nil {
		return fmt.Errorf("invalid configuration: %w", validationErr)
	}

	sc := scenario.OSA()
	if validationErr := sc.Validate(); validationErr != nil {
		return fmt.Errorf("invalid scenario: %w", validationErr)
	}

	level, err := report.ParseLevel(cfg.Logging.Verbosity)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	reporter := report.NewStdout(level)

	var logger *logging.Logger
	if cfg.Logging.File {
		var logErr error
		logger, logErr = logging.NewLogger("formcheck")
		if logErr != nil {
			reporter.Warningf("file logging unavailable: %v", logErr)
		}
		defer logger.Close()
		if path := logger.LogPath(); path != "" {
			reporter.Verbosef("Debug log: %s", path)
		}
	}

	if cfg.ConfigFilePath != "" {
		reporter.Verbosef("Config: %s", cfg.ConfigFilePath)
	}
	reporter.Verbosef("Driver: %s (headless=%t)", cfg.Driver, cfg.Headless)

	driver, shutdown, err := startDriver(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to start browser: %w", err)
	}
	defer func() {
		if shutdownErr := shutdown(); shutdownErr != nil && logger != nil {
			logger.Warnf("browser shutdown: %v", shutdownErr)
		}
	}()

	opts := scenario.Options{
		RunID:             logging.GetRunID(),
		BaseURL:           cfg.BaseURL,
		Driver:            string(cfg.Driver),
		NavigationTimeout: cfg.NavigationTimeout,
		Screenshots:       cfg.Screenshots.Paths(),
		Run:               cfg.Run,
	}
	if logger != nil {
		opts.Logger = logger
	}

	runner, err := scenario.NewRunner(driver, reporter, opts)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	result := runner.Run(ctx, sc)

	if cfg.Artifacts.Enabled {
		writer := report.NewArtifactWriter(cfg.Artifacts.OutputDir)
		if writeErr := writer.WriteAll(result); writeErr != nil {
			reporter.Warningf("failed to write artifacts: %v", writeErr)
		} else {
			reporter.Verbosef("Artifacts written to %s", cfg.Artifacts.OutputDir)
		}
	}

	if !result.Success() {
		return errChecksFailed
	}
	return nil
}

// startDriver launches the configured browser backend. The returned
// shutdown func releases everything the driver started and is safe to call
// after the runner has closed the driver.
func startDriver(cfg *config.Config, logger *logging.Logger) (scenario.Driver, func() error, error) {
	switch cfg.Driver {
	case config.DriverRod:
		// Not tied to the signal context so the final screenshot and close
		// still work after an interrupt.
		session, err := rodbrowser.Start(context.Background(), rodbrowser.Options{
			Headless: cfg.Headless,
			Bin:      cfg.BrowserBin,
			Timeout:  cfg.ActionTimeout,
		})
		if err != nil {
			return nil, nil, err
		}
		return session, session.Close, nil

	default:
		manager := browser.NewSessionManager()
		if logger != nil {
			manager.SetDriverOutput(logger.Writer())
		}
		if err := manager.Initialize(cfg.InstallDriver); err != nil {
			return nil, nil, err
		}

		session, err := manager.StartSession(sessionName, browser.SessionOptions{
			Headless: cfg.Headless,
			Timeout:  cfg.ActionTimeout,
		})
		if err != nil {
			_ = manager.Shutdown()
			return nil, nil, err
		}
		return session, manager.Shutdown, nil
	}
}
