package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/goliatone/go-lis/commands"
	"github.com/spf13/cobra"
)

func (a *app) serveCmd() *cobra.Command {
	var (
		addr    string
		migrate bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the public API, the admin API and signed images",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			module, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer module.Close()

			logger := module.Logger("lis.serve")
			cfg := module.Container().Config

			if migrate {
				if _, err := module.Migrate(ctx); err != nil {
					return err
				}
			}

			scheduler := newTickerScheduler(logger)
			registration, err := commands.RegisterContainerCommands(module.Container(), commands.RegistrationOptions{
				Dispatcher:    commands.GlobalDispatcher{MaxRetries: 2},
				CronRegistrar: scheduler.Register,
			})
			if err != nil {
				return fmt.Errorf("register commands: %w", err)
			}
			defer registration.Unsubscribe()

			handler, err := module.Handler()
			if err != nil {
				return err
			}

			if addr == "" {
				addr = cfg.Server.Addr
			}
			server := &http.Server{
				Addr:         addr,
				Handler:      handler,
				ReadTimeout:  cfg.Server.ReadTimeout,
				WriteTimeout: cfg.Server.WriteTimeout,
			}

			go scheduler.Run(ctx)

			errCh := make(chan error, 1)
			go func() {
				logger.Info("serve.listening", "addr", addr, "workers", cfg.Server.Workers())
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			logger.Info("serve.shutdown")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
			return <-errCh
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides LIS_ADDR")
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply pending migrations before serving")
	return cmd
}
