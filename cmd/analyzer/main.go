package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"static-topology-analyzer/internal/config"
	"static-topology-analyzer/internal/engine"
	"static-topology-analyzer/internal/model"
	"static-topology-analyzer/internal/parser"
	"static-topology-analyzer/internal/topology"

	"github.com/spf13/cobra"
)

var (
	configPath string
	source     string
	sourceDir  string
	dbDSN      string
	dbDriver   string
	outFile    string
	reportFile string
	workers    int
	logLevel   string
	logFile    string
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "static-topology-analyzer",
		Short: "A static network topology inference and validation tool",
		Long: `static-topology-analyzer reads device configuration dumps, rebuilds the
	network topology from shared subnets, and checks the result for addressing,
	VLAN, MTU and design problems.`,
		RunE: run,
	}

	// Set up flags. Empty/zero values mean "not set"; anything the user
	// leaves unset falls back to the config file, then to built-in defaults.
	rootCmd.Flags().StringVar(&configPath, "config", "", "Config file path (default: search standard locations)")
	rootCmd.Flags().StringVar(&source, "source", "", "Device source: 'dir' or 'db'")
	rootCmd.Flags().StringVar(&sourceDir, "dir", "", "Directory tree of device config dumps (for 'dir' source)")
	rootCmd.Flags().StringVar(&dbDSN, "db", "", "Database connection string (for 'db' source)")
	rootCmd.Flags().StringVar(&dbDriver, "db-driver", "", "Database driver: 'mysql' or 'sqlite' (for 'db' source)")
	rootCmd.Flags().StringVar(&outFile, "out", "", "Output JSON file for the inferred topology")
	rootCmd.Flags().StringVar(&reportFile, "report", "", "Output CSV file for findings")
	rootCmd.Flags().IntVarP(&workers, "workers", "w", 0, "Number of concurrent config parsers (default: number of CPUs)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "Log level (DEBUG, INFO, WARN, ERROR)")
	rootCmd.Flags().StringVar(&logFile, "log-file", "", "Log file path (default: stderr)")

	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	// --- 1. Load Settings ---
	cfg, cfgPath, err := loadSettings(configPath)
	if err != nil {
		return err
	}
	applyFlagOverrides(cfg)

	// --- 2. Setup Logging ---
	logger := setupLogger(cfg.Log.Level, cfg.Log.File)
	slog.SetDefault(logger)

	slog.Info("Starting Static Topology Analyzer", "version", "1.0-go")
	if cfgPath != "" {
		slog.Info("Loaded settings", "config_file", cfgPath)
	}
	startTime := time.Now()

	// --- 3. Load Device Configurations ---
	slog.Info("Loading device configurations...", "source", cfg.Source)
	devices, err := loadDevices(cfg)
	if err != nil {
		slog.Error("Failed to load device configurations", "error", err)
		return err
	}
	slog.Info("Successfully loaded devices", "count", len(devices))

	// --- 4. Build Topology ---
	builder := topology.NewBuilder()
	topo := builder.Build(devices)
	slog.Info("Topology built", "devices", len(topo.Devices), "links", topo.LinkCount(), "subnets", len(topo.Subnets))
	structural := builder.DetectMissingComponents()

	// --- 5. Run Validation Checks ---
	validation := engine.NewValidator(topo).ValidateAll()
	slog.Info("Validation complete", "structural_findings", len(structural), "validation_findings", len(validation))

	// --- 6. Write Topology Export ---
	slog.Info("Writing topology export", "path", cfg.Output.Topology)
	if err := writeTopology(topo, cfg.Output.Topology); err != nil {
		slog.Error("Failed to write topology export", "path", cfg.Output.Topology, "error", err)
		return err
	}

	// --- 7. Write Findings Report ---
	slog.Info("Writing findings report", "path", cfg.Output.Report)
	if err := writeFindingsReport(cfg.Output.Report, structural, validation); err != nil {
		slog.Error("Failed to write findings report", "path", cfg.Output.Report, "error", err)
		return err
	}

	// --- 8. Print Findings ---
	printFindings(cmd.OutOrStdout(), structural, validation)

	slog.Info("Analysis complete", "duration", time.Since(startTime), "findings", len(structural)+len(validation))
	return nil
}

func loadSettings(path string) (*config.Config, string, error) {
	if path != "" {
		return config.LoadFromPath(path)
	}
	return config.Load()
}

// applyFlagOverrides lets explicit command-line flags win over file values.
func applyFlagOverrides(cfg *config.Config) {
	if source != "" {
		cfg.Source = source
	}
	if sourceDir != "" {
		cfg.Input.Dir = sourceDir
	}
	if dbDSN != "" {
		cfg.Database.DSN = dbDSN
	}
	if dbDriver != "" {
		cfg.Database.Driver = dbDriver
	}
	if outFile != "" {
		cfg.Output.Topology = outFile
	}
	if reportFile != "" {
		cfg.Output.Report = reportFile
	}
	if workers > 0 {
		cfg.Workers = workers
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFile != "" {
		cfg.Log.File = logFile
	}
}

func setupLogger(level, logFilePath string) *slog.Logger {
	var logWriter io.Writer = os.Stderr
	if logFilePath != "" {
		f, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err == nil {
			logWriter = f
		}
		// We don't log an error here because the logger isn't set up yet.
		// It will just fall back to stderr.
	}

	var lvl slog.Level
	switch strings.ToUpper(level) {
	case "DEBUG":
		lvl = slog.LevelDebug
	case "INFO":
		lvl = slog.LevelInfo
	case "WARN":
		lvl = slog.LevelWarn
	case "ERROR":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(logWriter, &slog.HandlerOptions{Level: lvl}))
}

func loadDevices(cfg *config.Config) (map[string]*model.Device, error) {
	switch cfg.Source {
	case config.SourceDir:
		if cfg.Input.Dir == "" {
			return nil, fmt.Errorf("config directory must be provided for dir source")
		}
		return parser.LoadDirectory(cfg.Input.Dir, cfg.Workers)
	case config.SourceDB:
		if cfg.Database.DSN == "" {
			return nil, fmt.Errorf("database connection string must be provided for db source")
		}
		p, err := parser.NewArchiveParser(cfg.Database.Driver, cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		defer p.Close()
		if err := p.Parse(); err != nil {
			return nil, err
		}
		return p.Devices, nil
	default:
		return nil, fmt.Errorf("unknown device source: %s", cfg.Source)
	}
}

func writeTopology(topo *model.Topology, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(topo.Export())
}

// writeFindingsReport writes one CSV row per finding, structural stage first
// so the report reads in pipeline order.
func writeFindingsReport(path string, structural, validation []string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Write([]string{"stage", "finding"})
	for _, finding := range structural {
		w.Write([]string{"topology", finding})
	}
	for _, finding := range validation {
		w.Write([]string{"validation", finding})
	}
	w.Flush()
	return w.Error()
}

func printFindings(out io.Writer, structural, validation []string) {
	if len(structural) == 0 && len(validation) == 0 {
		fmt.Fprintln(out, "No issues found.")
		return
	}
	for _, finding := range structural {
		fmt.Fprintln(out, finding)
	}
	for _, finding := range validation {
		fmt.Fprintln(out, finding)
	}
}
