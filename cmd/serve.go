package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/usercue/thematic-cli/internal/report"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API for triggering and inspecting analyses",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(middleware.Timeout(60 * time.Second))
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))

		r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Route("/analysis", func(r chi.Router) {
			r.Post("/trigger", func(w http.ResponseWriter, req *http.Request) {
				wb, err := loadWorkbook("")
				if err != nil {
					writeError(w, http.StatusBadRequest, err)
					return
				}
				project, err := env.Engine.Trigger(req.Context(), wb.Rows())
				if err != nil {
					writeError(w, http.StatusInternalServerError, err)
					return
				}
				writeJSON(w, http.StatusAccepted, map[string]any{
					"status":  "accepted",
					"project": project.Name,
					"total":   project.Progress.Total,
				})
			})

			r.Get("/status", func(w http.ResponseWriter, req *http.Request) {
				status, err := env.Engine.Status(req.Context())
				if err != nil {
					writeError(w, http.StatusNotFound, err)
					return
				}
				writeJSON(w, http.StatusOK, status)
			})

			r.Get("/results", func(w http.ResponseWriter, req *http.Request) {
				project, err := env.Engine.Results(req.Context())
				if err != nil {
					writeError(w, http.StatusNotFound, err)
					return
				}
				if req.URL.Query().Get("format") == "markdown" {
					w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
					w.WriteHeader(http.StatusOK)
					fmt.Fprint(w, report.Project(project, env.Study.QuestionKeys()))
					return
				}
				writeJSON(w, http.StatusOK, project)
			})

			r.Post("/reprocess/{questionKey}", func(w http.ResponseWriter, req *http.Request) {
				wb, err := loadWorkbook("")
				if err != nil {
					writeError(w, http.StatusBadRequest, err)
					return
				}
				key := chi.URLParam(req, "questionKey")
				if err := env.Engine.Reprocess(req.Context(), key, wb.Rows()); err != nil {
					writeError(w, http.StatusBadRequest, err)
					return
				}
				writeJSON(w, http.StatusAccepted, map[string]string{
					"status":   "accepted",
					"question": key,
				})
			})

			r.Post("/clear", func(w http.ResponseWriter, req *http.Request) {
				if err := env.Engine.Clear(req.Context()); err != nil {
					writeError(w, http.StatusInternalServerError, err)
					return
				}
				writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
			})
		})

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

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
