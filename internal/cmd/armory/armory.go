// Package armory parses armory command flags and starts the service runtime.
package armory

import (
	"context"
	"flag"
	"fmt"

	"github.com/emberforge/armory/internal/app"
	entrypoint "github.com/emberforge/armory/internal/platform/cmd"
)

// Config holds armory command configuration.
type Config struct {
	Port            int    `env:"ARMORY_HTTP_PORT" envDefault:"8080"`
	Addr            string `env:"ARMORY_HTTP_ADDR"`
	DBPath          string `env:"ARMORY_DB_PATH"`
	PublisherKey    string `env:"ARMORY_PUBLISHER_KEY"`
	DeployerAddress string `env:"ARMORY_DEPLOYER_ADDRESS"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The armory server port")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "The armory server listen address (overrides -port)")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "The armory SQLite database path")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the armory API service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceArmory, func(context.Context) error {
		addr := cfg.Addr
		if addr == "" {
			addr = fmt.Sprintf(":%d", cfg.Port)
		}
		return app.Run(ctx, app.Options{
			Addr:            addr,
			DBPath:          cfg.DBPath,
			PublisherKey:    cfg.PublisherKey,
			DeployerAddress: cfg.DeployerAddress,
		})
	})
}
