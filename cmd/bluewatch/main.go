// bluewatch - wireless device presence watcher
//
// bluewatch consumes per-cycle device sightings, debounces them into
// NEW/LOST presence events, and delivers the events to a local JSONL
// audit log, a SQLite journal, MQTT, and InfluxDB.
//
// Sightings come either from the built-in simulator (-simulate) or from
// remote scan agents publishing on bluewatch/sighting/{agent}.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	_ "github.com/nerrad567/bluewatch/migrations"

	"github.com/nerrad567/bluewatch/internal/infrastructure/config"
	"github.com/nerrad567/bluewatch/internal/infrastructure/database"
	"github.com/nerrad567/bluewatch/internal/infrastructure/influxdb"
	"github.com/nerrad567/bluewatch/internal/infrastructure/logging"
	"github.com/nerrad567/bluewatch/internal/infrastructure/mqtt"
	"github.com/nerrad567/bluewatch/internal/journal"
	"github.com/nerrad567/bluewatch/internal/scanner"
	"github.com/nerrad567/bluewatch/internal/watcher"
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
	configFlag := flag.String("config", "", "path to YAML configuration file")
	simulateFlag := flag.Bool("simulate", false, "use the synthetic scanner instead of live sightings")
	flag.Parse()

	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, *configFlag, *simulateFlag); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//   - configPath: Config file path from -config ("" falls back to env/default)
//   - simulate: Whether to run the synthetic scanner
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context, configPath string, simulate bool) error {
	// Load .env if present; real environment variables win.
	_ = godotenv.Load()

	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting bluewatch",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	if configPath == "" {
		configPath = getConfigPath()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)

	// Open database and run migrations
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	journalRepo := journal.NewSQLiteRepository(db.DB)

	// Connect to MQTT broker (optional)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetLogger(log)
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)
	} else {
		log.Info("MQTT disabled")
	}

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	// Pick the sighting source
	source, err := buildSource(cfg, mqttClient, simulate, log)
	if err != nil {
		return err
	}

	// Open the JSONL audit log (optional)
	var audit *watcher.AuditLog
	if cfg.Watch.LogPath != "" {
		audit, err = watcher.NewAuditLog(cfg.Watch.LogPath)
		if err != nil {
			return fmt.Errorf("opening audit log: %w", err)
		}
		defer func() {
			if closeErr := audit.Close(); closeErr != nil {
				log.Error("error closing audit log", "error", closeErr)
			}
		}()
		log.Info("audit log open", "path", cfg.Watch.LogPath)
	}

	opts := watcher.Options{
		Audit:   audit,
		Journal: journalRepo,
	}
	if mqttClient != nil {
		opts.Publisher = mqttClient
	}
	if influxClient != nil {
		opts.Telemetry = influxClient
	}

	w := watcher.New(cfg, source, log, opts)

	log.Info("initialisation complete")

	if err := w.Run(ctx); err != nil {
		return fmt.Errorf("watcher: %w", err)
	}

	log.Info("bluewatch stopped")
	return nil
}

// buildSource selects the sighting source for this run.
//
// -simulate always wins. Otherwise sightings arrive from remote scan
// agents over MQTT, which therefore must be enabled.
func buildSource(cfg *config.Config, mqttClient *mqtt.Client, simulate bool, log *logging.Logger) (scanner.Scanner, error) {
	if simulate {
		log.Info("using simulated scanner", "seed", cfg.Scanner.SimulatorSeed)
		return scanner.NewSimulator(cfg.Scanner.SimulatorSeed, cfg.ScanInterval()), nil
	}

	if mqttClient == nil {
		return nil, fmt.Errorf("no sighting source: enable mqtt for remote agents or run with -simulate")
	}

	topic := mqtt.Topics{}.AllSightings()
	source, err := scanner.NewMQTTSource(mqttClient, topic, byte(cfg.MQTT.QoS), cfg.ScanInterval())
	if err != nil {
		return nil, fmt.Errorf("creating MQTT sighting source: %w", err)
	}
	log.Info("listening for remote sightings", "topic", topic)
	return source, nil
}

// getConfigPath returns the configuration file path.
// Uses BLUEWATCH_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("BLUEWATCH_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
