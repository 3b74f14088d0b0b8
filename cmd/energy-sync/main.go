// Energy Sync - Daily Energy Meter Pipeline
//
// This is the main entry point for the energy sync service. It pulls one
// day of interval readings from the metering API and imports them into
// InfluxDB, either once (-once) or on a fixed daily schedule.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/maconso/energy-sync/internal/infrastructure/config"
	"github.com/maconso/energy-sync/internal/infrastructure/influxdb"
	"github.com/maconso/energy-sync/internal/infrastructure/journal"
	"github.com/maconso/energy-sync/internal/infrastructure/logging"
	"github.com/maconso/energy-sync/internal/infrastructure/mqtt"
	"github.com/maconso/energy-sync/internal/meterapi"
	"github.com/maconso/energy-sync/internal/pipeline"
	"github.com/maconso/energy-sync/internal/scheduler"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	once := flag.Bool("once", false, "run a single pipeline run and exit")
	flag.Parse()

	// Cancel on interrupt signals (Ctrl+C, SIGTERM) for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, *once); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//   - once: Run a single pipeline run instead of starting the scheduler
//
// Returns:
//   - error: nil on clean shutdown / successful run, or error describing failure
func run(ctx context.Context, once bool) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting energy sync",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open the run journal (best-effort: a broken journal never blocks syncing)
	var runJournal *journal.Journal
	if cfg.Journal.Enabled {
		runJournal, err = journal.Open(journal.Config{
			Path:        cfg.Journal.Path,
			BusyTimeout: cfg.Journal.BusyTimeout,
		})
		if err != nil {
			log.Warn("run journal unavailable", "path", cfg.Journal.Path, "error", err)
		} else {
			defer func() {
				if closeErr := runJournal.Close(); closeErr != nil {
					log.Error("error closing journal", "error", closeErr)
				}
			}()
			log.Info("run journal opened", "path", runJournal.Path())
		}
	} else {
		log.Info("run journal disabled")
	}

	// Connect the status notifier (best-effort as well)
	var notifier *mqtt.Client
	if cfg.MQTT.Enabled {
		notifier, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			log.Warn("status notifier unavailable", "error", err)
		} else {
			defer func() {
				log.Info("disconnecting status notifier")
				if closeErr := notifier.Close(); closeErr != nil {
					log.Error("error closing MQTT", "error", closeErr)
				}
			}()
			log.Info("status notifier connected",
				"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Host, cfg.MQTT.Port),
				"topic", cfg.MQTT.StatusTopic,
			)
		}
	}

	// Assemble the pipeline. The store connection is opened per run and
	// released on every exit path inside the runner.
	fetcher := meterapi.New(cfg.API)
	openStore := func(ctx context.Context) (pipeline.Store, error) {
		return influxdb.Connect(ctx, cfg.InfluxDB)
	}
	runner := pipeline.NewRunner(
		cfg.API.UsagePointID,
		openStore,
		fetcher,
		log.With("component", "pipeline"),
	)

	report := makeReporter(runJournal, notifier, log)

	if once {
		result, runErr := runner.Run(ctx)
		report(ctx, result)
		if runErr != nil {
			return fmt.Errorf("pipeline run: %w", runErr)
		}
		return nil
	}

	loop, err := scheduler.New(scheduler.Config{
		DailyAt:      cfg.Scheduler.DailyAt,
		PollInterval: cfg.GetPollInterval(),
		RunOnStartup: cfg.Scheduler.RunOnStartup,
	}, runner.Run, log.With("component", "scheduler"))
	if err != nil {
		return fmt.Errorf("creating scheduler: %w", err)
	}
	loop.SetReporter(report)

	if err := loop.Start(ctx); err != nil {
		return fmt.Errorf("scheduler: %w", err)
	}

	log.Info("energy sync stopped")
	return nil
}

// makeReporter wires the run journal and the status notifier into one
// best-effort reporter callback.
func makeReporter(runJournal *journal.Journal, notifier *mqtt.Client, log *logging.Logger) scheduler.Reporter {
	return func(ctx context.Context, result pipeline.RunResult) {
		if runJournal != nil {
			if err := runJournal.Record(ctx, result); err != nil {
				log.Error("failed to journal run", "error", err)
			}
		}

		if notifier != nil {
			payload, err := json.Marshal(result)
			if err != nil {
				log.Error("failed to encode run status", "error", err)
				return
			}
			if err := notifier.PublishStatus(payload); err != nil {
				log.Warn("failed to publish run status", "error", err)
			}
		}
	}
}

// getConfigPath returns the configuration file path.
// Uses MACONSO_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("MACONSO_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
