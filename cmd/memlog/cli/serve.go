package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/felixgeelhaar/memlog/internal/web"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web interface",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if addr != "" {
				a.cfg.Server.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cmd, a)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, 0.0.0.0:5000)")
	return cmd
}

// serve runs the HTTP server until ctx is cancelled, then drains open
// requests.
func serve(ctx context.Context, cmd *cobra.Command, a *app) error {
	for _, w := range a.warnings {
		a.obs.Log().Warn().Str("addr", a.cfg.Server.Addr).Msg(w)
	}

	srv, err := web.NewServer(a.store, a.obs, a.bus)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", a.cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", a.cfg.Server.Addr, err)
	}

	httpSrv := &http.Server{
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpSrv.Serve(ln)
	}()

	fmt.Fprintf(cmd.OutOrStdout(), "memlog listening on http://%s\n", ln.Addr())
	a.obs.Log().Info().Str("addr", ln.Addr().String()).Str("driver", a.cfg.Storage.Driver).Msg("server started")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	a.obs.Log().Info().Msg("shutting down")
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
