package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/emberwatch/evac-cli/internal/model"
)

var servePort int

// guidanceBuilder is what the HTTP layer needs from the pipeline.
type guidanceBuilder interface {
	Build(ctx context.Context, lat, lng float64) *model.GuidanceResult
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the evacuation guidance HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("serve"); err != nil {
			return eris.Wrap(err, "validate config")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(newPipeline(cfg)),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(context.Background()) //nolint:errcheck
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// newRouter builds the HTTP API around the pipeline.
func newRouter(builder guidanceBuilder) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
	}))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/v1/guidance", func(w http.ResponseWriter, req *http.Request) {
		lat, err := parseCoord(req.URL.Query().Get("lat"), 90)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "lat must be a number in [-90, 90]"})
			return
		}
		lng, err := parseCoord(req.URL.Query().Get("lng"), 180)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "lng must be a number in [-180, 180]"})
			return
		}

		// The pipeline never fails; degraded results are still 200s with
		// warnings inside.
		result := builder.Build(req.Context(), lat, lng)
		writeJSON(w, http.StatusOK, result)
	})

	return r
}

// requestID tags every request with a UUID for log correlation.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)
		zap.L().Debug("request",
			zap.String("request_id", id),
			zap.String("path", req.URL.Path),
		)
		next.ServeHTTP(w, req)
	})
}

func parseCoord(raw string, bound float64) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if v < -bound || v > bound {
		return 0, eris.Errorf("coordinate %f out of range", v)
	}
	return v, nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zap.L().Warn("write response", zap.Error(err))
	}
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
