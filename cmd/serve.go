package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/knagata/kadai/internal/logger"
	"github.com/knagata/kadai/internal/server"
	"github.com/knagata/kadai/internal/storage"
	"github.com/knagata/kadai/internal/task"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the kadai API server",
	Long: `Start the JSON API server backed by the configured SQLite database.

Examples:
  kadai serve              # Listen on the configured port (default 8080)
  kadai serve --port 9090  # Use a custom port`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "API server port (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	port := cfg.Server.Port
	if servePort != 0 {
		port = servePort
	}

	log, closeLog, err := logger.New(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}
	defer closeLog()

	store, err := storage.Open(cfg.Database.Path, log)
	if err != nil {
		return fmt.Errorf("open database at %s: %w", cfg.Database.Path, err)
	}
	defer func() { _ = store.Close() }()

	svc := task.NewService(store)
	srv := server.New(port, cfg.Server.CORSOrigins, svc, log)

	var wg sync.WaitGroup
	errChan := make(chan error, 1)
	srv.Start(&wg, errChan)

	fmt.Printf("kadai API listening on http://localhost:%d (Ctrl+C to stop)\n", port)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-errChan:
		log.Error().Err(err).Msg("server error")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}

	wg.Wait()
	return nil
}
