package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PaulCrtr/cart-ai/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve GET /invoke?query=... over HTTP",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	app, cfg, err := buildApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	logger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}

	h := server.New(app, cfg.Server, logger)
	fmt.Fprintf(cmd.OutOrStdout(), "cartai listening on %s\n", cfg.Server.Addr)
	h.Spin()
	return nil
}
