package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Faultbox/ifcview/internal/config"
	"github.com/Faultbox/ifcview/internal/logger"
	"github.com/Faultbox/ifcview/internal/viewsync"
)

func newHubCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "hub",
		Short: "Run the viewpoint sync hub",
		Long: `Run a websocket hub. Viewers joining ws://ADDR/<room> receive every
viewpoint published by other members of the same room.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runHub(ctx, addr)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", config.Default().Sync.Listen, "Listen address")
	return cmd
}

func runHub(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           viewsync.NewHub(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("hub listening", zap.String("addr", addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("hub: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("hub stopped")
	return nil
}
