package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"cardmax/internal/catalog"
	"cardmax/internal/category"
	"cardmax/internal/config"
	"cardmax/internal/history"
	"cardmax/internal/optimizer"
	"cardmax/internal/solver"
	"cardmax/pkg/constants"
	"cardmax/pkg/output"
	"cardmax/pkg/validation"
)

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	// Determine log level (CLI override takes precedence)
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info"
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	format := loggingConfig.Format
	if format == "" {
		format = "json"
	}

	var zapConfig zap.Config
	switch format {
	case "console":
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	case "json":
		zapConfig = zap.NewProductionConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}

	if loggingConfig.OutputFile != "" {
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %v", dir, err)
			}
		}
		if file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %v", loggingConfig.OutputFile, err)
		} else {
			_ = file.Close()
		}

		zapConfig.OutputPaths = []string{loggingConfig.OutputFile}
		zapConfig.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return zapConfig.Build()
}

func main() {
	// Process command line flags first to get config location
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	logger, err := initializeLogger(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Determine output format (CLI override takes precedence over config)
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	warnings := conf.ValidateConfiguration()
	for _, warning := range warnings {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	registry := category.Default()

	cards, err := catalog.Load(conf.Catalog, registry)
	if err != nil {
		logger.Fatal("failed to load card catalog",
			zap.String("op", "main"),
			zap.String("catalog", conf.Catalog),
			zap.Error(err),
		)
	}
	cards, err = catalog.Select(cards, conf.Cards)
	if err != nil {
		logger.Fatal("failed to select cards",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	opt, err := optimizer.New(logger, registry, solver.NewLPSolve(logger), optimizer.Options{
		BigM:                conf.Optimizer.BigM,
		Epsilon:             conf.Optimizer.Epsilon,
		AllocationTolerance: conf.Optimizer.AllocationTolerance,
		PlanThreshold:       conf.Optimizer.PlanThreshold,
	})
	if err != nil {
		logger.Fatal("failed to construct optimizer",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	result, err := opt.Optimize(cards, conf.Spending)
	if err != nil {
		if errors.Is(err, optimizer.ErrNoSolution) {
			logger.Warn("no allocation satisfies the card constraints",
				zap.String("op", "main"),
				zap.Error(err),
			)
			fmt.Println("No solution found.")
			return
		}
		logger.Fatal("optimization failed",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	recorder := newRecorder(logger, conf.History)
	defer func() {
		_ = recorder.Close()
	}()
	if err := recorder.RecordRun(history.Run{
		Timestamp:    time.Now(),
		TotalSavings: result.TotalSavings,
		ChosenPlan:   result.ChosenPlan,
		Allocations:  result.Allocations,
	}); err != nil {
		logger.Warn("failed to record run history",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	switch outputFormat {
	case constants.OutputFormatPretty:
		output.PrettyFormat(result, registry)
	case constants.OutputFormatCSV:
		output.CsvFormat(result)
	}
}

func newRecorder(logger *zap.Logger, conf config.HistoryConfig) history.Recorder {
	if !conf.Enabled {
		return history.Noop{}
	}
	path := conf.Path
	if path == "" {
		path = "cardmax.db"
	}
	recorder, err := history.NewSQLiteRecorder(logger, path)
	if err != nil {
		logger.Warn("failed to open history database; continuing without history",
			zap.String("op", "main"),
			zap.Error(err),
		)
		return history.Noop{}
	}
	return recorder
}
