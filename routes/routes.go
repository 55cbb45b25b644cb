package routes

import (
	"github.com/courtside/tennis-tournament-system/handlers"
	"github.com/courtside/tennis-tournament-system/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

// SetupRoutes mounts every API route on the router. Mutating tournament
// routes require the organizer role; scoring routes accept any
// authenticated user so a court-side umpire account can drive them.
func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	clubHandler *handlers.ClubHandler,
	tournamentHandler *handlers.TournamentHandler,
	teamHandler *handlers.TeamHandler,
	bracketHandler *handlers.BracketHandler,
	matchHandler *handlers.MatchHandler,
	scheduleHandler *handlers.ScheduleHandler,
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

	authenticate := middleware.Authenticate([]byte(jwtSecret))
	organizerOnly := middleware.Authorize("organizer", "admin")

	router.Get("/swagger/*", httpSwagger.Handler())

	router.Post("/auth/register", authHandler.Register)
	router.Post("/auth/login", authHandler.Login)

	router.Route("/users", func(r chi.Router) {
		r.Get("/{userID}", userHandler.GetUser)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Patch("/{userID}", userHandler.UpdateProfile)
			r.Post("/{userID}/logo", userHandler.UploadUserLogo)
			r.Delete("/{userID}", userHandler.DeleteUser)
		})
	})

	router.Route("/clubs", func(r chi.Router) {
		r.Get("/{clubID}", clubHandler.GetClub)
		r.Get("/{clubID}/courts", clubHandler.ListCourts)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(organizerOnly)
			r.Post("/", clubHandler.CreateClub)
			r.Get("/", clubHandler.ListMyClubs)
			r.Put("/{clubID}", clubHandler.UpdateClub)
			r.Delete("/{clubID}", clubHandler.DeleteClub)
			r.Post("/{clubID}/logo", clubHandler.UploadClubLogo)
			r.Post("/{clubID}/courts", clubHandler.AddCourt)
			r.Post("/{clubID}/courts/{courtID}/photo", clubHandler.UploadCourtPhoto)
			r.Delete("/{clubID}/courts/{courtID}", clubHandler.RemoveCourt)
		})
	})

	router.Route("/tournaments", func(r chi.Router) {
		r.Get("/", tournamentHandler.ListTournaments)
		r.Get("/{tournamentID}", tournamentHandler.GetTournament)
		r.Get("/{tournamentID}/teams", teamHandler.ListTournamentTeams)
		r.Get("/{tournamentID}/bracket", bracketHandler.GetBracket)
		r.Get("/{tournamentID}/standings", bracketHandler.GetStandings)
		r.Get("/{tournamentID}/matches", matchHandler.ListTournamentMatches)
		r.Get("/{tournamentID}/schedule", scheduleHandler.GetSchedule)

		// Entry registration requires a signed-in player.
		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/{tournamentID}/teams", teamHandler.RegisterTeam)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(organizerOnly)
			r.Post("/", tournamentHandler.CreateTournament)
			r.Put("/{tournamentID}", tournamentHandler.UpdateTournament)
			r.Patch("/{tournamentID}/status", tournamentHandler.UpdateTournamentStatus)
			r.Delete("/{tournamentID}", tournamentHandler.DeleteTournament)
			r.Post("/{tournamentID}/logo", tournamentHandler.UploadTournamentLogo)
			r.Post("/{tournamentID}/bracket", bracketHandler.GenerateBracket)
			r.Post("/{tournamentID}/schedule", scheduleHandler.GenerateSchedule)
		})
	})

	router.Route("/teams", func(r chi.Router) {
		r.Use(authenticate)
		r.Patch("/{teamID}/seed", teamHandler.UpdateTeamSeed)
		r.Delete("/{teamID}", teamHandler.WithdrawTeam)
	})

	router.Route("/matches", func(r chi.Router) {
		r.Get("/{matchID}", matchHandler.GetMatch)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/{matchID}/start", matchHandler.StartMatch)
			r.Post("/{matchID}/points", matchHandler.AwardPoint)
		})
	})

	router.Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeWs)
}
