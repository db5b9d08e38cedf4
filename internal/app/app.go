package app

import (
	"context"
	"fmt"
	"log/slog"

	httpapp "github.com/alx-polly/backend/internal/app/http"
	"github.com/alx-polly/backend/internal/config"
	"github.com/alx-polly/backend/internal/handlers"
	"github.com/alx-polly/backend/internal/middleware"
	"github.com/alx-polly/backend/internal/notify"
	"github.com/alx-polly/backend/internal/repo/postgres"
	"github.com/alx-polly/backend/internal/results"
	"github.com/alx-polly/backend/internal/routes"
	"github.com/alx-polly/backend/internal/services/auth"
	"github.com/alx-polly/backend/internal/services/polls"
	"github.com/alx-polly/backend/internal/services/voting"
)

type App struct {
	HTTPServer *httpapp.App
	Auth       *auth.Auth
	Polls      *polls.Service
	Voting     *voting.Service
	Broker     *notify.Broker

	storage *postgres.Storage
}

func NewApp(log *slog.Logger, cfg *config.Config) (*App, error) {
	storage, err := postgres.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	broker := notify.NewBroker()
	cache := results.NewCache(cfg.Stats.CacheTTL)

	authService := auth.New(
		log, storage, storage, storage,
		cfg.Auth.Secret, cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL, cfg.Auth.SweepInterval,
	)
	pollService := polls.NewService(log, storage, storage)
	votingService := voting.NewService(log, storage, storage, broker, cache)

	h := routes.Handlers{
		Auth:    handlers.NewAuthHandler(authService),
		Polls:   handlers.NewPollHandler(pollService, votingService),
		Votes:   handlers.NewVoteHandler(votingService),
		Updates: handlers.NewUpdatesHandler(broker, votingService),
	}

	authMiddleware := middleware.NewAuthMiddleware(authService)
	httpApp := httpapp.NewApp(log, cfg.HTTP.Port, cfg.HTTP.AllowedOrigins, h, authMiddleware)

	authService.Start()

	return &App{
		HTTPServer: httpApp,
		Auth:       authService,
		Polls:      pollService,
		Voting:     votingService,
		Broker:     broker,
		storage:    storage,
	}, nil
}

func (a *App) Stop(ctx context.Context) error {
	if err := a.HTTPServer.Stop(ctx); err != nil {
		return err
	}
	a.Auth.Stop()
	return a.storage.Close()
}
