package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Dosada05/bracket-pools/handlers"
	"github.com/Dosada05/bracket-pools/middleware"
)

func SetupRoutes(
	router *chi.Mux,
	auth *middleware.Auth,
	resolutionHandler *handlers.ResolutionHandler,
	poolHandler *handlers.PoolHandler,
	webSocketHandler *handlers.WebSocketHandler,
	allowedOrigins []string,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	router.Handle("/metrics", promhttp.Handler())

	// Публичные маршруты для просмотра пулов
	router.Route("/pools/{poolID}", func(r chi.Router) {
		r.Get("/matchups", poolHandler.ListMatchupsHandler)
		r.Get("/ownership", poolHandler.ListOwnershipHandler)
		r.Get("/audit", poolHandler.ListAuditTrailHandler)

		// Экспорт аудита — только для комиссионеров
		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Use(auth.Authorize(middleware.RoleCommissioner, middleware.RoleAdmin))
			r.Post("/audit/archive", poolHandler.ArchiveAuditTrailHandler)
		})
	})

	// Разрешение и коррекция матчапов — только для комиссионеров
	router.Group(func(r chi.Router) {
		r.Use(auth.Authenticate)
		r.Use(auth.Authorize(middleware.RoleCommissioner, middleware.RoleAdmin))

		r.Post("/matchups/{matchupID}/resolve", resolutionHandler.ResolveMatchupHandler)
		r.Post("/matchups/{matchupID}/re-resolve", resolutionHandler.ReResolveMatchupHandler)
		r.Post("/events/{eventID}/resolve", resolutionHandler.ResolveEventHandler)
		r.Post("/events/{eventID}/re-resolve", resolutionHandler.ReResolveEventHandler)
	})

	router.Get("/ws/pools/{poolID}", webSocketHandler.ServeWs)
}
