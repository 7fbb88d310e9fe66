package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/moyan/superforce/backend/internal/api"
	"github.com/moyan/superforce/backend/internal/api/handlers"
)

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the HTTP API server",
	Long:  `Start the HTTP API server exposing the auction ranking and data endpoints.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAPIServer()
	},
}

func init() {
	rootCmd.AddCommand(apiCmd)
}

func runAPIServer() error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	rankingHandler := handlers.NewRankingHandler(a.engine, a.cache, a.log)
	dataHandler := handlers.NewDataHandler(a.collector, a.settler, a.snapshots, a.cache, a.log)
	router := api.NewRouter(rankingHandler, dataHandler, a.log)
	server := api.New(a.cfg, a.log, router)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-quit:
		a.log.WithField("signal", sig.String()).Info("Shutdown signal received")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}
