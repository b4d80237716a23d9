package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	memberHttp "github.com/davicafu/memberquery/internal/member/infra/inbound/http"
	"github.com/davicafu/memberquery/pkg/logger"
)

func newServeCmd(flags *globalFlags) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP search API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.loadConfig()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.HTTPPort = port
			}
			log := logger.Logger()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var cl closer
			defer cl.Close()
			service, err := buildService(ctx, cfg, log, &cl)
			if err != nil {
				return err
			}

			router := gin.New()
			router.Use(gin.Recovery())
			memberHttp.RegisterMemberRoutes(router, memberHttp.NewMemberHandler(service, cfg.DefaultPageSize, cfg.MaxPageSize))

			srv := &http.Server{Addr: ":" + cfg.HTTPPort, Handler: router}
			errCh := make(chan error, 1)
			go func() {
				log.Info("Server running", zap.String("url", "http://localhost:"+cfg.HTTPPort))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			log.Info("Shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "HTTP port; overrides HTTP_PORT")
	return cmd
}
