package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/kdiomande/courrier-registry/internal/auth"
	"github.com/kdiomande/courrier-registry/internal/courrier"
	"github.com/kdiomande/courrier-registry/internal/directory"
	"github.com/kdiomande/courrier-registry/internal/instruction"
	"github.com/kdiomande/courrier-registry/internal/organization"
	"github.com/kdiomande/courrier-registry/internal/signaling"
	"github.com/kdiomande/courrier-registry/internal/transport/middleware"
	"github.com/kdiomande/courrier-registry/internal/transport/swagger"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth         *auth.Handler
	Organization *organization.Handler
	Directory    *directory.Handler
	Instruction  *instruction.Handler
	Courrier     *courrier.Handler
	Signaling    *signaling.Handler
}

// RegisterAllRoutes wires the full HTTP surface. The path layout under
// /api/v1/courrier follows the legacy courrier API.
func RegisterAllRoutes(router *chi.Mux, db *sql.DB, h Handlers, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	if h.Signaling != nil {
		router.Get("/ws/signaling", h.Signaling.Connect)
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if h.Auth != nil {
			r.Route("/auth", func(sr chi.Router) {
				sr.Post("/login", h.Auth.Login)
				sr.Post("/refresh", h.Auth.RefreshToken)
			})
		}

		r.Route("/courrier", func(cr chi.Router) {
			// Reference-data reads are open; everything touching the
			// ledger or mutating master data needs a resolved caller.
			cr.Get("/departements", h.Organization.ListDepartments)
			cr.Get("/services", h.Organization.ListServices)
			cr.Get("/fonctions", h.Organization.ListFunctions)
			cr.Get("/instructions", h.Instruction.ListInstructions)
			cr.Get("/envoie", h.Courrier.ListCorrespondence)
			cr.Get("/envoie/{id}", h.Courrier.GetCorrespondence)
			cr.Get("/search", h.Courrier.SearchCorrespondence)

			if h.Auth != nil {
				cr.Group(func(pr chi.Router) {
					pr.Use(h.Auth.AuthMiddleware)

					pr.Post("/departements", h.Organization.CreateDepartment)
					pr.Post("/services", h.Organization.CreateService)
					pr.Post("/fonctions", h.Organization.CreateFunction)
					pr.Post("/utilisateurs", h.Directory.CreateUser)
					pr.Get("/utilisateurs", h.Directory.ListUsers)
					pr.Post("/instructions", h.Instruction.CreateInstruction)
					pr.Post("/envoie", h.Courrier.CreateCorrespondence)
					pr.Get("/recu", h.Courrier.ListRoutings)
					pr.Get("/stats", h.Courrier.GetStats)
				})
			}
		})

		if h.Signaling != nil {
			r.Get("/signaling/peers", h.Signaling.ListPeers)
		}
	})
}
