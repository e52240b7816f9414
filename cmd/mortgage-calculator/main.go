package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/iwvelando/mortgage-calculator/internal/calculator"
	"github.com/iwvelando/mortgage-calculator/internal/config"
	"github.com/iwvelando/mortgage-calculator/internal/server"
	"github.com/iwvelando/mortgage-calculator/internal/tui"
	"github.com/iwvelando/mortgage-calculator/pkg/constants"
	"github.com/iwvelando/mortgage-calculator/pkg/output"
	"github.com/iwvelando/mortgage-calculator/pkg/validation"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const (
	shutdownTimeout = 10 * time.Second
	sweepInterval   = time.Minute
)

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	// Determine log level (CLI override takes precedence)
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = constants.DefaultLogLevel
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
		format = constants.DefaultLogFormat
	}

	var config zap.Config
	switch format {
	case "console":
		config = zap.NewDevelopmentConfig()
	case "json":
		config = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}
	config.Level = zap.NewAtomicLevelAt(zapLevel)

	if loggingConfig.OutputFile != "" {
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %v", dir, err)
			}
		}

		// Test if we can create/write to the file
		if file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %v", loggingConfig.OutputFile, err)
		} else {
			_ = file.Close()
		}

		config.OutputPaths = []string{loggingConfig.OutputFile}
		config.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return config.Build()
}

// calculateOnce validates the flag values, computes the repayment and writes
// it in the requested format.
func calculateOnce(w io.Writer, amount, term, rate, mortgageType, outputFormat, symbol string) error {
	values := map[string]string{
		calculator.FieldAmount:       amount,
		calculator.FieldTerm:         term,
		calculator.FieldInterestRate: rate,
		calculator.FieldMortgageType: mortgageType,
	}
	form := calculator.NewFormFromValues(func(name string) string { return values[name] })

	input, err := form.Validate()
	if err != nil {
		return err
	}
	result, err := calculator.ComputeRepayment(input)
	if err != nil {
		return err
	}

	switch outputFormat {
	case constants.OutputFormatCSV:
		output.CsvFormat(w, input, result)
	default:
		output.PrettyFormat(w, input, result, symbol)
	}
	return nil
}

func serve(logger *zap.Logger, conf *config.Configuration) error {
	handler := server.NewHandler(logger.Named("server"), server.OptionsFromConfig(conf, version))

	srv := &http.Server{
		Addr:              conf.Server.Address,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go handler.RunSweeper(ctx, sweepInterval)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			zap.String("op", "main"),
			zap.String("address", conf.Server.Address),
			zap.String("version", version),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		logger.Info("shutting down server", zap.String("op", "main"))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func main() {
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	address := flag.String("address", "", "HTTP listen address override")
	useTUI := flag.Bool("tui", false, "run the terminal UI instead of the HTTP server")
	amount := flag.String("amount", "", "mortgage amount for a one-shot calculation")
	term := flag.String("term", "", "mortgage term in years for a one-shot calculation")
	rate := flag.String("rate", "", "annual interest rate in percent for a one-shot calculation")
	mortgageType := flag.String("type", string(calculator.Repayment), "mortgage type: repayment, interestOnly")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv")
	flag.Parse()

	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	oneShot := *amount != "" || *term != "" || *rate != ""

	// The terminal UI owns stdout, so it only logs to a file.
	if *useTUI && conf.Logging.OutputFile == "" {
		if err := tui.Run(zap.NewNop(), conf.Display.CurrencySymbol); err != nil {
			fmt.Fprintf(os.Stderr, "terminal UI failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	logger, err := initializeLogger(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	switch {
	case *useTUI:
		if err := tui.Run(logger.Named("tui"), conf.Display.CurrencySymbol); err != nil {
			logger.Fatal("terminal UI failed", zap.String("op", "main"), zap.Error(err))
		}

	case oneShot:
		outputFormat := conf.Output.Format
		if *outputFormatFlag != "" {
			outputFormat = *outputFormatFlag
		}
		if err := validation.ValidateOutputFormat(outputFormat); err != nil {
			logger.Fatal(err.Error(), zap.String("op", "main"))
		}
		if err := calculateOnce(os.Stdout, *amount, *term, *rate, *mortgageType, outputFormat, conf.Display.CurrencySymbol); err != nil {
			var verrs calculator.ValidationErrors
			if errors.As(err, &verrs) {
				logger.Fatal("invalid mortgage parameters",
					zap.String("op", "main"),
					zap.Any("fields", verrs.ByField()),
				)
			}
			logger.Fatal("failed to calculate repayment",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}

	default:
		if *address != "" {
			conf.Server.Address = *address
		}
		if err := serve(logger, conf); err != nil {
			logger.Fatal("server failed",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		logger.Info("server stopped", zap.String("op", "main"))
	}
}
