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

	"github.com/Dosada05/football-tournament/config"
	"github.com/Dosada05/football-tournament/db"
	"github.com/Dosada05/football-tournament/handlers"
	"github.com/Dosada05/football-tournament/live"
	"github.com/Dosada05/football-tournament/repositories"
	"github.com/Dosada05/football-tournament/repositories/memory"
	api "github.com/Dosada05/football-tournament/routes"
	"github.com/Dosada05/football-tournament/scheduler"
	"github.com/Dosada05/football-tournament/services"
	"github.com/Dosada05/football-tournament/storage"
	"github.com/go-chi/chi/v5"
)

type repositorySet struct {
	teams      repositories.TeamRepository
	players    repositories.PlayerRepository
	phases     repositories.PhaseRepository
	matches    repositories.MatchRepository
	transactor repositories.Transactor
	close      func()
}

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Настройка логгера
	level, _ := cfg.SlogLevel()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort), slog.String("log_level", level.String()))

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	repos, err := openRepositories(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize storage", slog.Any("error", err))
		os.Exit(1)
	}
	defer repos.close()

	// Инициализация WebSocket Hub
	wsHub := live.NewHub(logger)
	go wsHub.Run(ctx)
	logger.Info("WebSocket Hub started")

	// Архив итоговых таблиц в Cloudflare R2 подключается только при наличии настроек
	var archiver services.StandingsArchiver
	r2Config := storage.CloudflareR2UploaderConfig{
		AccountID:       cfg.R2.AccountID,
		AccessKeyID:     cfg.R2.AccessKeyID,
		SecretAccessKey: cfg.R2.SecretAccessKey,
		BucketName:      cfg.R2.BucketName,
		PublicBaseURL:   cfg.R2.PublicBaseURL,
	}
	if r2Config.Enabled() {
		uploader, err := storage.NewCloudflareR2Uploader(ctx, r2Config)
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		archiver = storage.NewStandingsArchiver(uploader, cfg.R2.ArchivePrefix)
		logger.Info("standings archive enabled", slog.String("bucket", cfg.R2.BucketName))
	}

	// Инициализация сервисов
	teamService := services.NewTeamService(repos.teams, repos.players, logger)
	playerService := services.NewPlayerService(repos.players, repos.teams, repos.transactor, logger)
	phaseService := services.NewPhaseService(repos.phases, repos.matches, repos.teams, repos.transactor, wsHub, archiver, logger)
	matchService := services.NewMatchService(repos.matches, repos.phases, repos.teams, repos.players, repos.transactor, wsHub, logger)
	logger.Info("Services initialized")

	// Автоматический старт матчей по расписанию
	var autoStarter *scheduler.Scheduler
	if cfg.AutoStartMatches {
		autoStarter, err = scheduler.NewScheduler(matchService, logger)
		if err != nil {
			logger.Error("failed to create scheduler", slog.Any("error", err))
			os.Exit(1)
		}
		if err = autoStarter.Start(ctx, cfg.AutoStartInterval); err != nil {
			logger.Error("failed to start scheduler", slog.Any("error", err))
			os.Exit(1)
		}
	}

	// Инициализация обработчиков HTTP и маршрутов
	router := chi.NewRouter()
	api.SetupRoutes(router, cfg.CORSAllowedOrigins, api.Handlers{
		Team:      handlers.NewTeamHandler(teamService, playerService, matchService),
		Player:    handlers.NewPlayerHandler(playerService),
		Phase:     handlers.NewPhaseHandler(phaseService),
		Match:     handlers.NewMatchHandler(matchService),
		WebSocket: handlers.NewWebSocketHandler(wsHub, phaseService, cfg.CORSAllowedOrigins, logger),
	})
	logger.Info("Routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	exitCode := 0
	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			exitCode = 1
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			exitCode = 1
		} else {
			logger.Info("server shutdown complete")
		}
	}

	if autoStarter != nil {
		if err := autoStarter.Stop(); err != nil {
			logger.Error("failed to stop scheduler", slog.Any("error", err))
		}
	}
	stop()
	repos.close()
	logger.Info("application exited")
	os.Exit(exitCode)
}

// openRepositories подключает PostgreSQL, если задан DATABASE_URL, иначе
// использует хранилище в памяти.
func openRepositories(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*repositorySet, error) {
	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL is empty, using in-memory storage")
		return &repositorySet{
			teams:      memory.NewTeamRepository(),
			players:    memory.NewPlayerRepository(),
			phases:     memory.NewPhaseRepository(),
			matches:    memory.NewMatchRepository(),
			transactor: memory.NewTransactor(),
			close:      func() {},
		}, nil
	}

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second, logger)
	if err != nil {
		return nil, err
	}
	if err = db.Migrate(ctx, dbConn); err != nil {
		dbConn.Close()
		return nil, err
	}
	logger.Info("database connection established")

	closed := false
	return &repositorySet{
		teams:      repositories.NewPostgresTeamRepository(dbConn),
		players:    repositories.NewPostgresPlayerRepository(dbConn),
		phases:     repositories.NewPostgresPhaseRepository(dbConn),
		matches:    repositories.NewPostgresMatchRepository(dbConn),
		transactor: repositories.NewPostgresTransactor(dbConn, logger),
		close: func() {
			if closed {
				return
			}
			closed = true
			if err := dbConn.Close(); err != nil {
				logger.Error("failed to close database connection", slog.Any("error", err))
			} else {
				logger.Info("database connection closed")
			}
		},
	}, nil
}
