package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"benchopt/internal/httpapi"
)

// shutdownGrace bounds how long in-flight requests get after a signal.
var shutdownGrace = 5 * time.Second

// serve runs the HTTP API until ctx is canceled or SIGINT/SIGTERM arrives.
func serve(ctx context.Context, opts *Options, svc httpapi.Service) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpapi.SetLogger(opts.log)
	httpapi.SetMaxBodyBytes(opts.MaxBodyBytes)
	httpapi.SetApplyTimeout(opts.ApplyTimeout)
	httpapi.SetCORSOptions(opts.CORSEnabled, splitCSV(opts.CORSOrigins), splitCSV(opts.CORSMethods), splitCSV(opts.CORSHeaders))
	httpapi.SetBaseContext(ctx)

	ln, err := net.Listen("tcp", opts.Addr)
	if err != nil {
		return err
	}
	srv := &http.Server{Handler: httpapi.NewMux(svc), ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		opts.log.Info().Str("addr", ln.Addr().String()).Str("models_dir", opts.ModelsDir).Msg("benchopt listening")
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	opts.log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		opts.log.Error().Err(err).Msg("graceful shutdown error")
		return err
	}
	return nil
}
