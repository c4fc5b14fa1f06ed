// Package bootstrap wires configuration into stores, services and the router.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"onlyu-media/internal/content"
	"onlyu-media/internal/objects"
	"onlyu-media/internal/queue"
	"onlyu-media/internal/services/health"
	"onlyu-media/internal/shared/auth"
	"onlyu-media/internal/shared/config"
	"onlyu-media/internal/shared/server"
	"onlyu-media/internal/shared/storage/db"
	"onlyu-media/internal/shared/storage/object"
	gcsstore "onlyu-media/internal/shared/storage/object/gcs"
	localstore "onlyu-media/internal/shared/storage/object/local"
	s3store "onlyu-media/internal/shared/storage/object/s3"
	"onlyu-media/internal/shared/telemetry"
)

// App holds shared dependencies and the HTTP router.
type App struct {
	Config         config.Config
	Router         *gin.Engine
	DB             *sql.DB
	Store          object.Store
	Queue          queue.Client
	Objects        *objects.Service
	ContentRepo    content.Repo
	ContentService *content.Service

	closers []func() error
}

// Build prepares dependencies and mounts every route.
func Build(cfg config.Config) (*App, error) {
	ctx := context.Background()

	verifier, err := auth.NewVerifier(cfg.SessionSecret)
	if err != nil {
		return nil, err
	}

	app := &App{Config: cfg}

	store, closeStore, err := BuildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.Store = store
	app.addCloser(closeStore)
	app.Objects = objects.NewService(store, ObjectsConfig(cfg))

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	app.DB = sqlDB

	queueClient, err := buildQueue(ctx, cfg)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	app.Queue = queueClient

	if app.DB != nil {
		app.ContentRepo = &content.PGRepo{DB: app.DB}
	} else {
		app.ContentRepo = content.NewMemoryRepo()
	}
	app.ContentService = content.NewService(app.Objects, app.ContentRepo)
	if app.Queue != nil {
		app.ContentService.OnDelete(content.NewEnqueueHook(app.Queue))
	} else {
		app.ContentService.OnDelete(content.LogHook)
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:   cfg,
		Verifier: verifier,
		Objects:  objects.NewHandler(app.Objects, cfg.MaxUploadBytes),
		Content:  content.NewHandler(app.ContentService),
		Health:   health.NewService(app.Objects),
	})

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":           cfg.Env,
		"object_store":  cfg.ObjectStoreType,
		"database":      app.DB != nil,
		"cleanup_queue": app.Queue != nil,
		"read_acl":      cfg.EnforceReadACL,
	})
	return app, nil
}

// Close releases the store client. The database pool is process-wide and
// stays open.
func (a *App) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}

func (a *App) addCloser(fn func() error) {
	if fn != nil {
		a.closers = append(a.closers, fn)
	}
}

// ObjectsConfig maps process configuration onto the object service layout.
func ObjectsConfig(cfg config.Config) objects.Config {
	return objects.Config{
		BucketName:        cfg.BucketName,
		BucketPrefix:      cfg.BucketPrefix,
		PublicSearchPaths: cfg.PublicSearchPaths,
		PrivateObjectDir:  cfg.PrivateObjectDir,
		EnforceReadACL:    cfg.EnforceReadACL,
		AllowedTypes:      cfg.UploadAllowedTypes,
	}
}

// BuildStore selects the object store backend. The returned closer may be nil.
func BuildStore(ctx context.Context, cfg config.Config) (object.Store, func() error, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		store, err := s3store.New(ctx, s3store.Options{
			Region:       cfg.AWSRegion,
			Endpoint:     cfg.S3Endpoint,
			UsePathStyle: cfg.S3UsePathStyle,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("build s3 store: %w", err)
		}
		return store, nil, nil
	case "gcs":
		store, err := gcsstore.New(ctx, gcsstore.Options{
			ProjectID: cfg.GCSProjectID,
			TokenURL:  cfg.GCSTokenURL,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("build gcs store: %w", err)
		}
		return store, store.Close, nil
	default:
		return localstore.New(cfg.LocalStoreDir), nil, nil
	}
}

// BuildWorkerDB opens the shared pool for the cleanup worker. A nil DB means
// records are not purged.
func BuildWorkerDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return nil, nil
	}
	return db.Shared(ctx, cfg.DatabaseURL, db.OptionsFor(db.RoleWorker, cfg.WorkerConcurrency, DBTuning(cfg)))
}

// DBTuning carries the DB_* pool overrides from cfg.
func DBTuning(cfg config.Config) db.Tuning {
	return db.Tuning{MaxOpenConns: cfg.DBMaxOpenConns, PingTimeout: cfg.DBPingTimeout}
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.database.memory", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	sqlDB, err := db.Shared(ctx, cfg.DatabaseURL, db.OptionsFor(db.RoleAPI, 0, DBTuning(cfg)))
	if err == nil {
		err = db.RunMigrations(ctx, sqlDB)
	}
	if err != nil {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.database.memory", map[string]any{"reason": err.Error()})
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildQueue(ctx context.Context, cfg config.Config) (queue.Client, error) {
	if strings.TrimSpace(cfg.CleanupQueueURL) == "" {
		return nil, nil
	}
	client, err := queue.NewSQSClient(ctx, cfg.CleanupQueueURL, cfg.AWSRegion)
	if err != nil {
		return nil, err
	}
	return client, nil
}
