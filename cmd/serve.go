package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/legis-cli/internal/model"
	"github.com/sells-group/legis-cli/internal/report"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve compliance artifacts over a read-only HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		r := newResultsRouter(cfg.Output.Dir)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port), zap.String("dir", cfg.Output.Dir))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// newResultsRouter exposes the per-committee artifacts already written to the
// output directory. The server never scrapes; it only reads what runs
// produced.
func newResultsRouter(dir string) chi.Router {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/api/results", func(w http.ResponseWriter, _ *http.Request) {
		ids, err := artifactCommittees(dir)
		if err != nil {
			zap.L().Error("list artifacts failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "list artifacts"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"committees": ids})
	})

	r.Get("/api/results/{committeeID}", func(w http.ResponseWriter, req *http.Request) {
		id := chi.URLParam(req, "committeeID")
		if !validCommitteeID(id) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid committee id"})
			return
		}
		data, err := os.ReadFile(report.JSONPath(dir, id))
		if err != nil {
			if os.IsNotExist(err) {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "no artifact for " + id})
				return
			}
			zap.L().Error("read artifact failed", zap.String("committee_id", id), zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "read artifact"})
			return
		}

		var results []model.BillResult
		if err := json.Unmarshal(data, &results); err != nil {
			zap.L().Error("corrupt artifact", zap.String("committee_id", id), zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "corrupt artifact"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"committee_id": id,
			"bills":        results,
		})
	})

	return r
}

// artifactCommittees lists committee IDs with a written JSON artifact.
func artifactCommittees(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "basic_*.json"))
	if err != nil {
		return nil, eris.Wrap(err, "glob artifacts")
	}
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		name := strings.TrimSuffix(filepath.Base(m), ".json")
		ids = append(ids, strings.TrimPrefix(name, "basic_"))
	}
	return ids, nil
}

// validCommitteeID guards the file lookup against path tricks.
func validCommitteeID(id string) bool {
	if id == "" || len(id) > 8 {
		return false
	}
	for _, c := range id {
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
