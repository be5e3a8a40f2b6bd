package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/chiragjain10/avrcraft-sub000/internal/config"
)

func main() {
	app := &cli.App{
		Name:  "storefront",
		Usage: "AVR Craft cart, pricing and checkout service",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error (overrides STOREFRONT_LOG_LEVEL)"},
			&cli.StringFlag{Name: "log-format", Usage: "json or text (overrides STOREFRONT_LOG_FORMAT)"},
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Run the HTTP API and event consumers",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "addr", Usage: "listen address (overrides STOREFRONT_HTTP_ADDR)"},
				},
				Action: func(c *cli.Context) error {
					cfg, err := loadConfig(c)
					if err != nil {
						return err
					}
					if addr := c.String("addr"); addr != "" {
						cfg.HTTPAddr = addr
					}
					return serve(c.Context, cfg)
				},
			},
			{
				Name:  "migrate",
				Usage: "Create the database schema and seed the product catalog",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "seed", Value: true, Usage: "load the starter catalog into an empty products table"},
				},
				Action: func(c *cli.Context) error {
					cfg, err := loadConfig(c)
					if err != nil {
						return err
					}
					return migrate(c.Context, cfg, c.Bool("seed"))
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("storefront failed", "err", err)
		os.Exit(1)
	}
}

// loadConfig reads the environment, applies global flag overrides and
// installs the default logger.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if v := c.String("log-level"); v != "" {
		cfg.LogLevel = v
	}
	if v := c.String("log-format"); v != "" {
		cfg.LogFormat = v
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}
	setupLogger(cfg)
	return cfg, nil
}

func setupLogger(cfg *config.Config) {
	level, _ := cfg.Level()
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.LogFormat == "text" {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
