// cmd/anonymiser/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pgshield/anonymiser/pkg/anonymise"
	"github.com/pgshield/anonymiser/pkg/config"
	"github.com/pgshield/anonymiser/pkg/model"
	"github.com/pgshield/anonymiser/pkg/schema"
	"github.com/pgshield/anonymiser/pkg/strategy"
	"github.com/pgshield/anonymiser/pkg/transformer"
)

type options struct {
	strategyPath string
	inputPath    string
	outputPath   string
	check        bool
	generate     bool
	validateDb   bool
	schemas      []string

	allowPotentialPii          bool
	allowCommerciallySensitive bool
	scrambleBlank              bool
}

func main() {
	// A missing .env file is fine; env vars may come from the shell.
	_ = godotenv.Load()

	var opts options
	pflag.StringVarP(&opts.strategyPath, "strategy", "s", "strategy.yaml", "path to the strategy file")
	pflag.StringVarP(&opts.inputPath, "input", "i", "-", "dump to anonymise (- for stdin)")
	pflag.StringVarP(&opts.outputPath, "output", "o", "-", "where to write the anonymised dump (- for stdout)")
	pflag.BoolVar(&opts.check, "check", false, "validate the strategy and exit without processing rows")
	pflag.BoolVar(&opts.generate, "generate", false, "generate or extend a strategy skeleton from the database schema")
	pflag.BoolVar(&opts.validateDb, "validate-db", false, "diff the strategy against the live database schema")
	pflag.StringSliceVar(&opts.schemas, "schemas", []string{"public"}, "database schemas to introspect")
	pflag.BoolVar(&opts.allowPotentialPii, "allow-potential-pii", false, "pass PotentialPii columns through unchanged")
	pflag.BoolVar(&opts.allowCommerciallySensitive, "allow-commercially-sensitive", false, "pass CommerciallySensitive columns through unchanged")
	pflag.BoolVar(&opts.scrambleBlank, "scramble-blank", false, "blank scrambled columns instead of randomising them")
	pflag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		os.Exit(1)
	}

	logger, err := buildLogger(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialise logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, opts, logger); err != nil {
		var configErrs *strategy.ConfigErrors
		if errors.As(err, &configErrs) {
			fmt.Fprintln(os.Stderr, "strategy validation failed:")
			fmt.Fprintln(os.Stderr, configErrs.Error())
			logger.Error("Strategy validation failed", zap.Int("violations", configErrs.Count()))
		} else {
			logger.Error("Run failed", zap.Error(err))
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, opts options, logger *zap.Logger) error {
	if opts.generate {
		return generateStrategy(ctx, opts, logger)
	}

	configs, err := strategy.Load(opts.strategyPath)
	if err != nil {
		return err
	}

	overrides := strategy.Overrides{
		AllowPotentialPii:          opts.allowPotentialPii,
		AllowCommerciallySensitive: opts.allowCommerciallySensitive,
		ScrambleBlank:              opts.scrambleBlank,
	}
	strategies, err := strategy.New(configs, overrides)
	if err != nil {
		return err
	}

	registry := transformer.NewRegistry(transformer.NewCorpusGenerator())
	if err := strategies.ValidateTransformers(registry); err != nil {
		return err
	}

	if opts.validateDb {
		tables, err := introspect(ctx, opts, logger)
		if err != nil {
			return err
		}
		if err := strategies.ValidateAgainstSchema(model.SimpleColumns(tables)); err != nil {
			return err
		}
	}

	if opts.check {
		logger.Info("Strategy is valid", zap.String("strategy", opts.strategyPath))
		return nil
	}

	in, closeIn, err := openInput(opts.inputPath)
	if err != nil {
		return err
	}
	defer closeIn()

	out, closeOut, err := openOutput(opts.outputPath)
	if err != nil {
		return err
	}
	defer closeOut()

	runner := anonymise.NewRunner(cfg, strategies, registry, logger)
	if _, err := runner.Run(ctx, in, out); err != nil {
		return err
	}
	return nil
}

// generateStrategy introspects the database and writes (or extends) a
// skeleton strategy with every column at the fail-loud defaults.
func generateStrategy(ctx context.Context, opts options, logger *zap.Logger) error {
	tables, err := introspect(ctx, opts, logger)
	if err != nil {
		return err
	}

	configs := strategy.GenerateSkeleton(tables)
	if existing, err := strategy.Load(opts.strategyPath); err == nil {
		configs = strategy.MergeSkeleton(existing, tables)
	}

	if err := strategy.Save(opts.strategyPath, configs); err != nil {
		return err
	}
	logger.Info("Strategy skeleton written",
		zap.String("strategy", opts.strategyPath),
		zap.Int("tables", len(configs)))
	return nil
}

func introspect(ctx context.Context, opts options, logger *zap.Logger) ([]model.TableSchema, error) {
	pgCfg, err := config.LoadPostgresConfig()
	if err != nil {
		return nil, err
	}

	introspector, err := schema.Connect(ctx, pgCfg, logger)
	if err != nil {
		return nil, err
	}
	defer introspector.Close()

	return introspector.Tables(ctx, opts.schemas)
}

func openInput(path string) (io.Reader, func(), error) {
	if path == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open input dump: %w", err)
	}
	return f, func() { f.Close() }, nil
}

func openOutput(path string) (io.Writer, func(), error) {
	if path == "-" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output dump: %w", err)
	}
	return f, func() { f.Close() }, nil
}

func buildLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}

	zapCfg := zap.NewProductionConfig()
	if cfg.LogFormat == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	// The dump itself goes to stdout; keep logs off it.
	zapCfg.OutputPaths = []string{"stderr"}
	return zapCfg.Build()
}
