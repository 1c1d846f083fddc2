package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jaekwang-park/todo-client/internal/apiclient"
	cognitopkg "github.com/jaekwang-park/todo-client/internal/cognito"
	"github.com/jaekwang-park/todo-client/internal/config"
	"github.com/jaekwang-park/todo-client/internal/credentials"
	"github.com/jaekwang-park/todo-client/internal/dashboard"
	"github.com/jaekwang-park/todo-client/internal/repository"
	"github.com/jaekwang-park/todo-client/internal/service"
)

// App holds the wired todo client components shared by the server and the CLI.
type App struct {
	Todos     *service.TodoService
	Dashboard *dashboard.Dashboard
	// Snapshots is nil unless SNAPSHOTS_ENABLED is set.
	Snapshots *repository.PostgresSnapshotRepository
	DB        *sql.DB
}

type Options struct {
	Config config.Config
	Logger *slog.Logger
	// Registerer receives the client request metrics. Nil disables them.
	Registerer prometheus.Registerer
	// Snapshots opens the snapshot database when enabled in Config.
	Snapshots bool
}

func New(ctx context.Context, opts Options) (*App, error) {
	cfg := opts.Config
	logger := opts.Logger

	creds, err := NewCredentials(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	var metrics *apiclient.Metrics
	if opts.Registerer != nil {
		metrics = apiclient.NewMetrics(opts.Registerer)
	}

	client, err := apiclient.New(apiclient.Config{
		BaseURL:     cfg.API.BaseURL,
		Timeout:     cfg.API.Timeout,
		Credentials: creds,
		Logger:      logger,
		Metrics:     metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create api client: %w", err)
	}

	a := &App{Todos: service.NewTodoService(client)}

	var recorder dashboard.SnapshotRecorder
	if opts.Snapshots && cfg.SnapshotsEnabled {
		db, err := repository.NewDB(ctx, cfg.DB.DSN())
		if err != nil {
			return nil, err
		}
		if err := repository.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		a.DB = db
		a.Snapshots = repository.NewPostgresSnapshot(db)
		recorder = a.Snapshots
		logger.Info("snapshot database connected")
	}

	a.Dashboard = dashboard.New(dashboard.Config{
		Aggregator: dashboard.NewAggregator(a.Todos, dashboard.AggregatorConfig{
			PageSize: cfg.Dashboard.PageSize,
			MaxPages: cfg.Dashboard.MaxPages,
			Logger:   logger,
		}),
		Recorder: recorder,
		Logger:   logger,
	})

	return a, nil
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}

// NewCredentials builds the credential collaborator selected by AUTH_MODE.
func NewCredentials(ctx context.Context, cfg config.Config, logger *slog.Logger) (apiclient.Credentials, error) {
	switch cfg.Auth.Mode {
	case config.AuthModeNone:
		return credentials.None{}, nil
	case config.AuthModeAPIKey:
		if cfg.Auth.APIKey == "" {
			logger.Warn("TODO_API_KEY not set: requests are sent without an api key")
		}
		return credentials.APIKey(cfg.Auth.APIKey), nil
	case config.AuthModeCognito:
		client, err := cognitopkg.NewAWSClient(ctx, cfg.Cognito.Region, cfg.Cognito.AppClientID, cfg.Cognito.AppClientSecret)
		if err != nil {
			return nil, err
		}
		logger.Info("cognito client initialized", "region", cfg.Cognito.Region)
		return credentials.NewCognitoToken(credentials.CognitoTokenConfig{
			Client:   client,
			Username: cfg.Cognito.Username,
			Password: cfg.Cognito.Password,
			Logger:   logger,
		}), nil
	default:
		return nil, fmt.Errorf("unsupported AUTH_MODE %q", cfg.Auth.Mode)
	}
}
