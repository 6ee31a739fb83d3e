package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"narrative-server/internal/engine"
	"narrative-server/internal/server"
	"narrative-server/pkg/logger"
)

var flagAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a campaign with a spectator server",
	Long: `Run a live campaign and expose it over HTTP:

  /ws        - websocket stream of world snapshots (read-only)
  /snapshot  - one-shot JSON snapshot
  /health    - liveness probe
  /version   - build information
  /debug/*   - gates, units, diary, turn order

The campaign state is persisted to the database on shutdown.

Examples:
  narrative-server serve
  narrative-server serve --addr :9000 --seed 42 --db campaign.db`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "Listen address (overrides config)")
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if flagAddr != "" {
		cfg.Addr = flagAddr
	}

	svc, err := engine.NewService(cfg)
	if err != nil {
		return fmt.Errorf("initialize campaign: %w", err)
	}
	svc.Start()

	httpSrv := server.New(svc, cfg.Addr)
	errChan := make(chan error, 1)
	go func() {
		errChan <- httpSrv.Run()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Log.WithField("signal", sig.String()).Info("Shutting down")
		svc.Stop()
		return nil
	case <-svc.Done():
		logger.Log.Info("Campaign finished")
		return nil
	case err := <-errChan:
		svc.Stop()
		return fmt.Errorf("http server: %w", err)
	}
}
