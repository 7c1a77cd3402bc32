package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	cartai "github.com/PaulCrtr/cart-ai"
	"github.com/PaulCrtr/cart-ai/config"
	"github.com/PaulCrtr/cart-ai/logging"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "cartai",
	Short: "Shopping-cart assistant driven by a supervisor and two workers",
	Long: `cartai answers requests with a supervisor that routes between a
researcher (web search) and a cart handler (read, add and remove products).

Configuration is read from --config, ./cartai.yaml or the user config
directory, and CARTAI_* environment variables override any file value.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(cartCmd)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg config.LogConfig) (logging.Logger, error) {
	level, err := logging.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	return logging.New(logging.Config{
		Level:     level,
		Format:    strings.ToLower(cfg.Format),
		Component: "cartai",
	}), nil
}

// buildApp loads configuration and constructs the assistant.
func buildApp(optFns ...func(o *cartai.Options)) (*cartai.CartAI, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := newLogger(cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	app, err := cartai.New(append([]func(o *cartai.Options){func(o *cartai.Options) {
		o.Config = cfg
		o.Logger = logger
	}}, optFns...)...)
	if err != nil {
		return nil, nil, err
	}
	return app, cfg, nil
}
