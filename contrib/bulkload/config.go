package bulkload

import (
	"fmt"
	"strconv"

	graphbulk "github.com/graphbulk/graphbulk.go"
	"github.com/graphbulk/graphbulk.go/pkg/constants"
)

// Environment variables read by ConfigFromEnv.
const (
	EnvMode            = "GRAPHBULK_MODE"
	EnvWorkers         = "GRAPHBULK_WORKERS"
	EnvBatchSize       = "GRAPHBULK_BATCH_SIZE"
	EnvContinueOnError = "GRAPHBULK_CONTINUE_ON_ERROR"
)

const (
	DefaultWorkers   = 4
	DefaultBatchSize = 100
)

type Config struct {
	// Mode is applied to every operation of a load.
	Mode graphbulk.Mode
	// Workers bounds the number of objects converted, and batches executed,
	// at the same time.
	Workers int
	// BatchSize is the number of operations per Execute call.
	BatchSize int
	// ContinueOnError records failed records and keeps going. When false the
	// first failure aborts the load.
	ContinueOnError bool
}

func DefaultConfig() Config {
	return Config{
		Mode:      graphbulk.ModeCreate,
		Workers:   DefaultWorkers,
		BatchSize: DefaultBatchSize,
	}
}

func (c Config) Validate() error {
	if _, err := graphbulk.ParseMode(c.Mode.String()); err != nil {
		return fmt.Errorf("%w: %w", constants.ErrInvalidConfig, err)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1, got %d", constants.ErrInvalidConfig, c.Workers)
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("%w: batch size must be at least 1, got %d", constants.ErrInvalidConfig, c.BatchSize)
	}
	return nil
}

// ConfigFromEnv starts from DefaultConfig and applies the GRAPHBULK_*
// environment variables that are set.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	mode, err := graphbulk.ParseMode(graphbulk.GetEnvOrDefault(EnvMode, cfg.Mode.String()))
	if err != nil {
		return cfg, fmt.Errorf("%w: %s: %w", constants.ErrInvalidConfig, EnvMode, err)
	}
	cfg.Mode = mode

	if cfg.Workers, err = strconv.Atoi(graphbulk.GetEnvOrDefault(EnvWorkers, strconv.Itoa(cfg.Workers))); err != nil {
		return cfg, fmt.Errorf("%w: %s: %w", constants.ErrInvalidConfig, EnvWorkers, err)
	}
	if cfg.BatchSize, err = strconv.Atoi(graphbulk.GetEnvOrDefault(EnvBatchSize, strconv.Itoa(cfg.BatchSize))); err != nil {
		return cfg, fmt.Errorf("%w: %s: %w", constants.ErrInvalidConfig, EnvBatchSize, err)
	}
	if cfg.ContinueOnError, err = strconv.ParseBool(graphbulk.GetEnvOrDefault(EnvContinueOnError, "false")); err != nil {
		return cfg, fmt.Errorf("%w: %s: %w", constants.ErrInvalidConfig, EnvContinueOnError, err)
	}

	return cfg, cfg.Validate()
}
