package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/cryptogift/ledger/internal/interfaces/cli/common"
	httpRouter "github.com/cryptogift/ledger/internal/interfaces/http"
	"github.com/cryptogift/ledger/internal/shared/goroutine"
	"github.com/cryptogift/ledger/internal/shared/version"
)

const shutdownTimeout = 30 * time.Second

func NewCommand(flags *common.Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "server",
		Short: "Start the HTTP server",
		Long:  `Start the referral ledger HTTP API together with the activation feed cleanup scheduler.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), *flags)
		},
	}
}

func run(ctx context.Context, flags common.Flags) error {
	rt, err := common.Bootstrap(ctx, flags)
	if err != nil {
		return err
	}
	cfg, log := rt.Config, rt.Logger

	log.Infow("starting server", "version", version.String())

	gin.SetMode(cfg.Server.Mode)
	gin.DefaultWriter = io.Discard
	gin.DebugPrintRouteFunc = func(httpMethod, absolutePath, handlerName string, nuHandlers int) {}

	container, err := httpRouter.NewContainer(rt.Store, cfg, log)
	if err != nil {
		rt.Close()
		return fmt.Errorf("failed to build container: %w", err)
	}

	router := httpRouter.NewRouter(container, log)
	router.SetupRoutes(cfg)
	defer router.Shutdown()

	container.StartBackground()

	srv := &http.Server{
		Addr:         cfg.Server.GetAddr(),
		Handler:      router.Engine(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	goroutine.SafeGoErr(log, "http-server", serveErr, func() error {
		log.Infow("server listening",
			"address", cfg.Server.GetAddr(),
			"mode", cfg.Server.Mode,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		log.Infow("shutting down server", "signal", sig.String())
	case err := <-serveErr:
		return fmt.Errorf("server failed: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
		return err
	}

	log.Infow("server exited gracefully")
	return nil
}
