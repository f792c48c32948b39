package httpapi

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/omarnaeem59-commits/Modern-Boostly/internal/engine"
)

const (
	requestTimeout  = 30 * time.Second
	shutdownTimeout = 10 * time.Second
	maxBodyBytes    = 64 * 1024
	version         = "v0.1.0"
)

type api struct {
	svc    *engine.Service
	tokens *Tokens
	log    *zap.Logger
}

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

// NewRouter returns the API router with default middleware and a health endpoint.
func NewRouter(svc *engine.Service, tokens *Tokens, log *zap.Logger) *chi.Mux {
	if log == nil {
		log = zap.NewNop()
	}
	a := &api{svc: svc, tokens: tokens, log: log}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Service: "boostly", Version: version})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/signup", a.signup)
		r.Post("/login", a.login)

		r.Group(func(r chi.Router) {
			r.Use(a.authenticate)

			r.Get("/me", a.getProfile)
			r.Patch("/me", a.updateProfile)

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", a.listTasks)
				r.Post("/", a.createTask)
				r.Patch("/{id}", a.editTask)
				r.Delete("/{id}", a.deleteTask)
				r.Post("/{id}/toggle", a.toggleTask)
			})

			r.Route("/habits", func(r chi.Router) {
				r.Get("/", a.listHabits)
				r.Post("/", a.createHabit)
				r.Delete("/{id}", a.deleteHabit)
				r.Post("/{id}/complete", a.completeHabit)
				r.Post("/{id}/undo", a.undoHabit)
			})

			r.Get("/focus", a.listFocus)
			r.Post("/focus", a.completeFocus)

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", a.listNotifications)
				r.Delete("/", a.clearNotifications)
				r.Post("/read-all", a.markAllRead)
				r.Post("/{id}/read", a.markRead)
				r.Delete("/{id}", a.deleteNotification)
			})

			r.Get("/leaderboard", a.leaderboard)

			r.Route("/posts", func(r chi.Router) {
				r.Get("/", a.feed)
				r.Post("/", a.createPost)
				r.Post("/{id}/like", a.toggleLike)
				r.Get("/{id}/comments", a.listComments)
				r.Post("/{id}/comments", a.addComment)
			})
		})
	})

	return r
}

// Run serves until ctx is cancelled or the process receives an interrupt, then shuts down gracefully.
func Run(ctx context.Context, srv *http.Server, log *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case <-ctx.Done():
	case sig := <-sigCh:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
