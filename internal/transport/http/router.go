// Package http wires the REST and websocket surface of the quiz service.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"classquiz/internal/domain"
)

// RouterDeps bundles everything the router needs; all handles are
// constructed at process start and injected.
type RouterDeps struct {
	Authn       *Authenticator
	Quizzes     *QuizHandler
	Users       *UserHandler
	WS          *WSHandler
	CORSOrigins []string
}

func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	origins := deps.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/ws", deps.WS.ServeWS)

	r.Route("/api/users", func(r chi.Router) {
		r.Post("/", deps.Users.Register)
		r.Group(func(r chi.Router) {
			r.Use(deps.Authn.Middleware)
			r.Get("/profile", deps.Users.Profile)
			r.Put("/profile", deps.Users.UpdateProfile)
			r.With(RequireRole(domain.RoleTeacher)).Get("/", deps.Users.List)
		})
	})

	r.Route("/api/quizzes", func(r chi.Router) {
		r.Use(deps.Authn.Middleware)
		r.With(RequireRole(domain.RoleTeacher)).Post("/", deps.Quizzes.Create)
		r.Get("/", deps.Quizzes.List)
		r.Get("/{id}", deps.Quizzes.Get)
		r.With(RequireRole(domain.RoleTeacher)).Put("/{id}", deps.Quizzes.Update)
		r.With(RequireRole(domain.RoleTeacher)).Patch("/{id}/live", deps.Quizzes.ToggleLive)
		r.With(RequireRole(domain.RoleStudent)).Post("/{id}/submit", deps.Quizzes.Submit)
		r.Get("/{id}/leaderboard", deps.Quizzes.Leaderboard)
		r.With(RequireRole(domain.RoleTeacher)).Delete("/{id}", deps.Quizzes.Delete)
	})

	return r
}
