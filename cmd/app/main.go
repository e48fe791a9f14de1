package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/pattarin/treebank/internal"
	"github.com/pattarin/treebank/internal/mcpserver"
	"github.com/pattarin/treebank/internal/portfolio"
	"github.com/pattarin/treebank/internal/species"
	"github.com/pattarin/treebank/internal/storage"
	"github.com/pattarin/treebank/internal/treeservice"
	"github.com/pattarin/treebank/internal/vision"
	pkgconfig "github.com/pattarin/treebank/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadIfExists(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

// runMCP serves the portfolio tools over stdio. Logs go to stderr;
// stdout belongs to the MCP transport.
func runMCP(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	if err := os.MkdirAll(cfg.Data.Dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	store, err := storage.NewFS(cfg.Data.Dir)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	kb := species.New(store, cfg.Data.SpeciesFile)
	if err := kb.Load(); err != nil {
		logger.Warn("species knowledge base load failed, using defaults",
			slog.String("error", err.Error()))
	}
	trees := portfolio.New(store, cfg.Data.PortfolioFile)
	if err := trees.Load(); err != nil {
		logger.Warn("portfolio load failed, starting empty",
			slog.String("error", err.Error()))
	}

	analyzer := vision.NewGateway(vision.ClientConfig{
		APIKey:  cfg.Vision.APIKey,
		BaseURL: cfg.Vision.BaseURL,
		Model:   cfg.Vision.Model,
		Timeout: cfg.Vision.Timeout(),
	}, kb, logger)

	svc := treeservice.NewService(kb, trees, analyzer, nil)
	return mcpserver.New(svc).ServeStdio()
}

func main() {
	configFlag := &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to config file",
		DefaultText: "config/config.yaml",
		Value:       "config/config.yaml",
		Sources:     cli.EnvVars("APP_CONFIG_FILE"),
	}

	cmd := &cli.Command{
		Name:   "treebank",
		Usage:  "Tree portfolio with photo analysis, environmental valuation, and a species knowledge base",
		Action: runServe,
		Flags:  []cli.Flag{configFlag},
		Commands: []*cli.Command{
			{
				Name:   "mcp",
				Usage:  "Serve portfolio tools over the Model Context Protocol on stdio",
				Action: runMCP,
				Flags:  []cli.Flag{configFlag},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
