package observability

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// HealthFunc reports the current link state for /healthz.
type HealthFunc func() (state string, healthy bool)

func Routes(health HealthFunc) http.Handler {
	RegisterMetrics()

	r := chi.NewRouter()
	r.Use(RequestLogger(log.Logger))
	r.Use(RequestMetrics)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		state, healthy := "unknown", true
		if health != nil {
			state, healthy = health()
		}
		status := http.StatusOK
		if !healthy {
			status = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"state":   state,
			"healthy": healthy,
		})
	})
	return r
}

// Serve runs the metrics listener until ctx is done.
func Serve(ctx context.Context, addr string, health HealthFunc) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return ServeListener(ctx, ln, health)
}

func ServeListener(ctx context.Context, ln net.Listener, health HealthFunc) error {
	srv := &http.Server{
		Handler:           Routes(health),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	log.Info().Str("addr", ln.Addr().String()).Msg("observability.Serve listening")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		<-errCh
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
