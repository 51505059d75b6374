package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/pe-research/internal/model"
	"github.com/sells-group/pe-research/internal/research"
	"github.com/sells-group/pe-research/internal/store"
)

var servePort int

// analyzer is what the HTTP surface needs from the engine; tests stub it.
type analyzer interface {
	Analyze(ctx context.Context, query string, history []model.Message) *research.Result
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the chat API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		engine, err := initEngine()
		if err != nil {
			return err
		}
		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           newRouter(engine, st),
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("chat API listening", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

// newRouter builds the chat API routes.
func newRouter(engine analyzer, st store.Store) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/api/chat", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			SessionID string `json:"session_id"`
			Query     string `json:"query"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		if body.Query == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query is required"})
			return
		}

		ctx := req.Context()

		var history []model.Message
		if body.SessionID == "" {
			sess, err := st.CreateSession(ctx, sessionTitle(body.Query))
			if err != nil {
				serverError(w, "create session", err)
				return
			}
			body.SessionID = sess.ID
		} else {
			sess, err := st.GetSession(ctx, body.SessionID)
			if err != nil {
				serverError(w, "get session", err)
				return
			}
			if sess == nil {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
				return
			}
			if history, err = st.ListMessages(ctx, body.SessionID); err != nil {
				serverError(w, "list messages", err)
				return
			}
		}

		result := engine.Analyze(ctx, body.Query, history)

		// The report is always appended, error reports included, so the
		// stored conversation stays coherent.
		if err := st.AppendMessage(ctx, body.SessionID, model.Message{Role: model.RoleUser, Content: body.Query}); err != nil {
			serverError(w, "append user turn", err)
			return
		}
		if err := st.AppendMessage(ctx, body.SessionID, model.Message{Role: model.RoleAssistant, Content: result.Report}); err != nil {
			serverError(w, "append assistant turn", err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"session_id":      body.SessionID,
			"company":         result.Company,
			"report":          result.Report,
			"follow_up":       result.FollowUp,
			"degraded_stages": result.Degraded,
		})
	})

	r.Get("/api/sessions", func(w http.ResponseWriter, req *http.Request) {
		sessions, err := st.ListSessions(req.Context(), store.SessionFilter{})
		if err != nil {
			serverError(w, "list sessions", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
	})

	r.Get("/api/sessions/{id}/messages", func(w http.ResponseWriter, req *http.Request) {
		id := chi.URLParam(req, "id")
		sess, err := st.GetSession(req.Context(), id)
		if err != nil {
			serverError(w, "get session", err)
			return
		}
		if sess == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
			return
		}
		msgs, err := st.ListMessages(req.Context(), id)
		if err != nil {
			serverError(w, "list messages", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"session": sess, "messages": msgs})
	})

	// "New chat" reset: history goes, the session stays.
	r.Post("/api/sessions/{id}/reset", func(w http.ResponseWriter, req *http.Request) {
		if err := st.ClearMessages(req.Context(), chi.URLParam(req, "id")); err != nil {
			serverError(w, "clear messages", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func serverError(w http.ResponseWriter, op string, err error) {
	zap.L().Error("serve: "+op, zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "listen port (defaults to server.port config)")
	rootCmd.AddCommand(serveCmd)
}
