package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/courtside/tennis-tournament-system/brackets"
	"github.com/courtside/tennis-tournament-system/config"
	"github.com/courtside/tennis-tournament-system/db"
	"github.com/courtside/tennis-tournament-system/handlers"
	"github.com/courtside/tennis-tournament-system/repositories"
	api "github.com/courtside/tennis-tournament-system/routes"
	"github.com/courtside/tennis-tournament-system/scheduling"
	"github.com/courtside/tennis-tournament-system/services"
	"github.com/courtside/tennis-tournament-system/storage"
	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"
)

// statusSchedulerInterval controls how often due tournament status
// transitions are applied.
const statusSchedulerInterval = 30 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		}
	}()
	logger.Info("database connection established")

	uploader, err := storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		BucketName:      cfg.R2BucketName,
		PublicBaseURL:   cfg.R2PublicBaseURL,
	})
	if err != nil {
		logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
		os.Exit(1)
	}

	wsHub := brackets.NewHub()
	go wsHub.Run()

	userRepo := repositories.NewPostgresUserRepository(dbConn)
	clubRepo := repositories.NewPostgresClubRepository(dbConn)
	courtRepo := repositories.NewPostgresCourtRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	bracketRepo := repositories.NewPostgresBracketRepository(dbConn)
	timeSlotRepo := repositories.NewPostgresTimeSlotRepository(dbConn)
	scheduleRepo := repositories.NewPostgresScheduleRepository(dbConn)

	authService := services.NewAuthService(userRepo)
	userService := services.NewUserService(userRepo, uploader)
	clubService := services.NewClubService(clubRepo, courtRepo, userRepo, uploader)
	tournamentService := services.NewTournamentService(
		dbConn, tournamentRepo, clubRepo, teamRepo, matchRepo, uploader, wsHub, logger)
	teamService := services.NewTeamService(teamRepo, tournamentRepo, userRepo)
	bracketService := services.NewBracketService(
		dbConn, tournamentRepo, teamRepo, bracketRepo, matchRepo, wsHub, logger)
	matchService := services.NewMatchService(
		dbConn, matchRepo, bracketRepo, tournamentRepo, wsHub, logger)
	scheduleService := services.NewScheduleService(
		dbConn, tournamentRepo, courtRepo, matchRepo, timeSlotRepo, scheduleRepo, teamRepo,
		scheduling.NewAllocator(logger), wsHub, logger)
	logger.Info("services initialized")

	authHandler := handlers.NewAuthHandler(authService, cfg.JWTSecretKey)
	userHandler := handlers.NewUserHandler(userService)
	clubHandler := handlers.NewClubHandler(clubService)
	tournamentHandler := handlers.NewTournamentHandler(tournamentService)
	teamHandler := handlers.NewTeamHandler(teamService)
	bracketHandler := handlers.NewBracketHandler(bracketService)
	matchHandler := handlers.NewMatchHandler(matchService)
	scheduleHandler := handlers.NewScheduleHandler(scheduleService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, logger)

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		cfg.JWTSecretKey,
		authHandler,
		userHandler,
		clubHandler,
		tournamentHandler,
		teamHandler,
		bracketHandler,
		matchHandler,
		scheduleHandler,
		webSocketHandler,
	)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.Info("starting server", slog.String("address", server.Addr))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		ticker := time.NewTicker(statusSchedulerInterval)
		defer ticker.Stop()
		logger.Info("tournament status scheduler started", slog.Duration("interval", statusSchedulerInterval))

		if err := tournamentService.AdvanceDueStatuses(groupCtx, time.Now()); err != nil {
			logger.Error("status scheduler: initial run failed", slog.Any("error", err))
		}
		for {
			select {
			case <-groupCtx.Done():
				return nil
			case <-ticker.C:
				if err := tournamentService.AdvanceDueStatuses(groupCtx, time.Now()); err != nil {
					logger.Error("status scheduler: periodic run failed", slog.Any("error", err))
				}
			}
		}
	})

	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			_ = server.Close()
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})

	if err := group.Wait(); err != nil {
		logger.Error("application terminated with error", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("application exited")
}
