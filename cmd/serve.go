package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/sells-group/fit-engine/internal/audit"
	"github.com/sells-group/fit-engine/internal/model"
	"github.com/sells-group/fit-engine/internal/orchestrator"
)

var servePort int

// requestDeadline bounds one enrichment request: it must be enough to cover
// three source calls (30s each) plus a render (15s) plus the CRM write
// under retry, all if something upstream stalls.
const requestDeadline = 90 * time.Second

// enrichResponse is the §6 wire response: the terminal status, the score
// and its breakdown, the nine projected CRM fields (flattened in via the
// embedded CrmProjection), the CRM write outcome, and request bookkeeping.
type enrichResponse struct {
	EnrichmentStatus string               `json:"enrichment_status"`
	FitScore         int                  `json:"fit_score"`
	ScoreBreakdown   model.ScoreBreakdown `json:"score_breakdown"`
	model.CrmProjection
	CRMUpdateStatus     string    `json:"crm_update_status"`
	RequestID           string    `json:"request_id"`
	EnrichmentTimestamp time.Time `json:"enrichment_timestamp"`
}

// buildMux constructs the HTTP handler for the synchronous enrichment
// server: POST /enrich blocks until orch.Enrich returns and answers with its
// full result. It returns the mux and a drain function that waits for any
// in-flight request handlers to finish; the caller should invoke drain
// after the HTTP server has stopped accepting new requests, as a second
// guarantee alongside http.Server's own graceful Shutdown.
func buildMux(_ context.Context, orch *orchestrator.Orchestrator, store audit.Store, ingressKey string, maxInFlight int) (*http.ServeMux, func()) {
	mux := http.NewServeMux()
	sem := semaphore.NewWeighted(int64(maxInFlight))
	var wg sync.WaitGroup

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if store != nil {
			if err := store.Ping(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_ = json.NewEncoder(w).Encode(map[string]string{"status": "unhealthy", "error": err.Error()})
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	mux.HandleFunc("POST /enrich", func(w http.ResponseWriter, r *http.Request) {
		if ingressKey != "" {
			if r.Header.Get("X-Api-Key") != ingressKey {
				http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
				return
			}
		}

		var identity model.LeadIdentity
		if err := json.NewDecoder(r.Body).Decode(&identity); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}

		if err := identity.Validate(); err != nil {
			http.Error(w, fmt.Sprintf(`{"error":%q}`, err.Error()), http.StatusBadRequest)
			return
		}

		if orch == nil {
			http.Error(w, `{"error":"orchestrator not initialized"}`, http.StatusInternalServerError)
			return
		}

		if !sem.TryAcquire(1) {
			http.Error(w, `{"error":"too many concurrent requests"}`, http.StatusServiceUnavailable)
			return
		}
		wg.Add(1)
		defer wg.Done()
		defer sem.Release(1)

		ctx, cancel := context.WithTimeout(r.Context(), requestDeadline)
		defer cancel()

		result, err := orch.Enrich(ctx, identity)
		if err != nil {
			zap.L().Error("enrichment failed",
				zap.String("business_name", identity.BusinessName),
				zap.Error(err),
			)
			status := http.StatusInternalServerError
			if errors.Is(err, context.DeadlineExceeded) {
				status = http.StatusServiceUnavailable
			}
			http.Error(w, fmt.Sprintf(`{"error":%q}`, err.Error()), status)
			return
		}

		resp := enrichResponse{
			EnrichmentStatus:    string(result.Status),
			FitScore:            result.Score,
			ScoreBreakdown:      result.Breakdown,
			CrmProjection:       result.Projection,
			CRMUpdateStatus:     result.CRMUpdateStatus,
			RequestID:           result.AuditID,
			EnrichmentTimestamp: time.Now().UTC(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(resp)
	})

	drain := func() {
		wg.Wait()
	}
	return mux, drain
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the enrichment webhook server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		env, err := initEnrichEnv(ctx, "serve")
		if err != nil {
			return err
		}
		defer env.Close()

		mux, drain := buildMux(ctx, env.Orchestrator, env.Audit, cfg.Server.IngressKey, resolveMaxInFlight(cfg.Server.MaxInFlight))
		port := resolvePort(servePort, cfg.Server.Port)
		srvErr := startServer(ctx, mux, port)
		drain() // wait for in-flight enrichment jobs after server shutdown
		return srvErr
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// startServer creates and runs the HTTP server with graceful shutdown.
func startServer(ctx context.Context, handler http.Handler, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown uses a fresh context since ctx is already cancelled.
	go func() {
		<-ctx.Done()
		zap.L().Info("shutting down server")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer shutdownCancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	zap.L().Info("starting server", zap.Int("port", port))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return eris.Wrap(err, "server listen")
	}

	return nil
}

// resolvePort returns the port flag value if non-zero, otherwise the config default.
func resolvePort(flagPort, configPort int) int {
	if flagPort != 0 {
		return flagPort
	}
	return configPort
}

// resolveMaxInFlight falls back to a conservative default when the config
// value is unset or non-positive.
func resolveMaxInFlight(configured int) int {
	if configured <= 0 {
		return 20
	}
	return configured
}
