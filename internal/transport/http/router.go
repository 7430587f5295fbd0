package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"quizdeck-service/internal/auth"
	"quizdeck-service/internal/domain"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth     *AuthHandler
	Users    *UserHandler
	Quizzes  *QuizHandler
	Attempts *AttemptHandler
	Uploads  *UploadHandler
	WS       *WSHandler
}

// NewRouter wires the full route table. Every protected route passes
// through the authenticator and a role check.
func NewRouter(tokens *auth.TokenManager, h Handlers, uploadDir string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeMessage(w, http.StatusOK, "ok")
	})

	r.Get("/ws", h.WS.Serve)

	fs := http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadDir)))
	r.Get("/uploads/*", fs.ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", h.Auth.Register)
		r.Post("/auth/login", h.Auth.Login)

		r.Group(func(r chi.Router) {
			r.Use(Authenticator(tokens))

			r.Post("/auth/logout", h.Auth.Logout)

			r.Route("/users/{userID}", func(r chi.Router) {
				r.Get("/", h.Users.GetProfile)
				r.Patch("/", h.Users.UpdateProfile)
				r.With(RequireRole(domain.RoleAdmin)).Patch("/role", h.Users.ChangeRole)
			})

			r.Post("/upload/profile-image", h.Uploads.UploadProfileImage)

			r.Route("/quizzes", func(r chi.Router) {
				r.Get("/", h.Quizzes.ListApproved)
				r.With(RequireRole(domain.RoleModerator, domain.RoleAdmin)).Post("/", h.Quizzes.Create)
				r.With(RequireRole(domain.RoleAdmin)).Get("/pending", h.Quizzes.ListPending)
				r.With(RequireRole(domain.RoleModerator, domain.RoleAdmin)).Get("/mine", h.Quizzes.ListMine)

				r.Route("/{quizID}", func(r chi.Router) {
					r.Get("/", h.Quizzes.Get)
					r.With(RequireRole(domain.RoleModerator, domain.RoleAdmin)).Put("/", h.Quizzes.Update)
					r.With(RequireRole(domain.RoleAdmin)).Patch("/approve", h.Quizzes.Approve)
					r.With(RequireRole(domain.RoleAdmin)).Patch("/reject", h.Quizzes.Reject)
					r.With(RequireRole(domain.RoleAdmin)).Post("/report", h.Quizzes.Report)

					r.With(RequireRole(domain.RolePlayer)).Post("/start", h.Attempts.Start)
					r.With(RequireRole(domain.RolePlayer)).Post("/submit", h.Attempts.Submit)
					r.With(RequireRole(domain.RolePlayer)).Get("/result/me", h.Attempts.Result)
					r.Get("/leaderboard", h.Attempts.Leaderboard)
				})
			})
		})
	})

	return r
}
