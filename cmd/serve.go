package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/ews-cli/internal/logger"
	"github.com/KaramelBytes/ews-cli/internal/metrics"
	"github.com/KaramelBytes/ews-cli/internal/server"
)

var (
	serveAddr  string
	serveInput inputFlags
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the rules over HTTP (upload a file, get the report back)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		conf := currentConfig()
		addr := conf.ServeAddr
		if serveAddr != "" {
			addr = serveAddr
		}
		opt, err := serveInput.options(conf)
		if err != nil {
			return err
		}

		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		r := newRunner(conf)
		r.Metrics = metrics.New(reg)
		log := logger.Default()
		srv := server.New(r, reg, server.Options{Parse: opt, MaxUploadMB: conf.MaxUploadMB}, log).HTTPServer(addr)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			logger.Info("listening", "addr", addr)
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("serve: %w", err)
		case <-ctx.Done():
		}

		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config serve_addr)")
	serveInput.register(serveCmd)
}
