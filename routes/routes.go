package routes

import (
	"net/http"

	"github.com/Dosada05/football-tournament/handlers"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Handlers struct {
	Team      *handlers.TeamHandler
	Player    *handlers.PlayerHandler
	Phase     *handlers.PhaseHandler
	Match     *handlers.MatchHandler
	WebSocket *handlers.WebSocketHandler
}

func SetupRoutes(router *chi.Mux, allowedOrigins []string, h Handlers) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	router.Route("/teams", func(r chi.Router) {
		r.Get("/", h.Team.ListTeams)
		r.Post("/", h.Team.CreateTeam)

		r.Route("/{teamID}", func(r chi.Router) {
			r.Get("/", h.Team.GetTeamByID)
			r.Patch("/status", h.Team.UpdateTeamStatus)
			r.Get("/can-add-player", h.Team.CanAddPlayer)
			r.Get("/stats", h.Team.GetTeamStats)
			r.Get("/matches", h.Team.ListTeamMatches)
			r.Get("/players", h.Team.ListTeamPlayers)
			r.Post("/players", h.Player.CreatePlayer)
		})
	})

	router.Route("/players", func(r chi.Router) {
		r.Get("/", h.Player.ListPlayers)

		r.Route("/{playerID}", func(r chi.Router) {
			r.Get("/", h.Player.GetPlayerByID)
			r.Patch("/", h.Player.UpdatePlayer)
			r.Delete("/", h.Player.DeletePlayer)
			r.Patch("/validation", h.Player.SetValidationStatus)
			r.Get("/regulation", h.Player.CheckRegulation)
		})
	})

	router.Route("/phases", func(r chi.Router) {
		r.Get("/", h.Phase.ListPhases)
		r.Post("/", h.Phase.CreatePhase)

		r.Route("/{phaseID}", func(r chi.Router) {
			r.Get("/", h.Phase.GetPhase)
			r.Put("/participants", h.Phase.SetParticipants)
			r.Post("/schedule", h.Phase.GenerateSchedule)
			r.Get("/standings", h.Phase.GetStandings)
			r.Get("/qualifiers", h.Phase.GetQualifiers)
			r.Get("/group-qualifiers", h.Phase.GetGroupQualifiers)
			r.Get("/knockout-winners", h.Phase.GetKnockoutWinners)
			r.Patch("/finish", h.Phase.FinishPhase)
			r.Get("/matches", h.Phase.ListPhaseMatches)
		})
	})

	router.Route("/matches", func(r chi.Router) {
		r.Post("/", h.Match.CreateMatch)
		r.Get("/upcoming", h.Match.ListUpcoming)

		r.Route("/{matchID}", func(r chi.Router) {
			r.Get("/", h.Match.GetMatch)
			r.Put("/", h.Match.UpdateMatch)
			r.Delete("/", h.Match.DeleteMatch)
			r.Patch("/start", h.Match.StartMatch)
			r.Post("/goals", h.Match.RecordGoal)
			r.Post("/cards", h.Match.RecordCard)
			r.Patch("/finish", h.Match.FinishMatch)
			r.Patch("/cancel", h.Match.CancelMatch)
			r.Patch("/suspend", h.Match.SuspendMatch)
		})
	})

	router.Get("/ws/phases/{phaseID}", h.WebSocket.ServeWs)
}
