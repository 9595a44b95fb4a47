package routes

import (
	"github.com/Dosada05/rating-system/handlers"
	"github.com/Dosada05/rating-system/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func SetupRoutes(
	router *chi.Mux,
	auth *middleware.Authenticator,
	authHandler *handlers.AuthHandler,
	competitionHandler *handlers.CompetitionHandler,
	playerHandler *handlers.PlayerHandler,
	resultHandler *handlers.ResultHandler,
	rankHandler *handlers.RankHandler,
	adjustmentHandler *handlers.AdjustmentHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Post("/auth/token", authHandler.IssueToken)

	router.Route("/guilds/{guildID}", func(r chi.Router) {
		// Публичные маршруты для чтения
		r.Get("/competition", competitionHandler.Get)
		r.Get("/ranks", rankHandler.List)
		r.Get("/players/{userID}", playerHandler.Profile)
		r.Get("/leaderboard", playerHandler.Leaderboard)

		// Защищённые маршруты для записи
		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Use(middleware.Authorize("admin"))

			r.Put("/competition", competitionHandler.UpdateOptions)
			r.Delete("/competition", competitionHandler.Delete)

			r.Post("/players", playerHandler.Register)
			r.Patch("/players/{userID}/name", playerHandler.Rename)

			r.Post("/results", resultHandler.RecordResults)

			r.Post("/ranks", rankHandler.Create)
			r.Put("/ranks/{roleID}", rankHandler.Update)
			r.Delete("/ranks/{roleID}", rankHandler.Delete)

			r.Post("/adjustments", adjustmentHandler.Enqueue)
			r.Get("/adjustments", adjustmentHandler.ListPending)
		})
	})

	router.Group(func(r chi.Router) {
		r.Use(auth.Authenticate)
		r.Use(middleware.Authorize("admin"))

		r.Post("/adjustments/{id}/apply", adjustmentHandler.Apply)
		r.Post("/adjustments/{id}/reject", adjustmentHandler.Reject)
	})

	router.Get("/ws/guilds/{guildID}", webSocketHandler.ServeWs)
}
