package container

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/taller/photovault/cmd/photovault/handlers"
	"github.com/taller/photovault/cmd/photovault/repository"
	"github.com/taller/photovault/cmd/photovault/service"
	"github.com/taller/photovault/common/bootstrap"
	"github.com/taller/photovault/common/logger"
	"github.com/taller/photovault/common/mailer"
	"github.com/taller/photovault/common/policy"
	rediscommon "github.com/taller/photovault/common/redis"
	"github.com/taller/photovault/common/storage"
	"github.com/taller/photovault/common/telemetry"
	"github.com/taller/photovault/common/viewcache"
)

// Container holds all initialized services and repositories. Everything is
// constructed once here and passed down explicitly; no package-level state.
type Container struct {
	Components *bootstrap.Components
	Redis      *rediscommon.Client
	Storage    *storage.Client
	Views      *viewcache.ViewCache

	// Repositories
	PhotoRepo *repository.PhotoRepository

	// Services
	UploadService *service.UploadService
	DeleteService *service.DeleteService
	PhotoService  *service.PhotoService

	// Handlers
	UploadHandler  *handlers.UploadHandler
	PhotoHandler   *handlers.PhotoHandler
	ArchiveHandler *handlers.ArchiveHandler
}

// NewContainer initializes all services and repositories once
func NewContainer(ctx context.Context, components *bootstrap.Components) (*Container, error) {
	cfg := components.Config
	log := components.Logger

	// Redis backs the view cache
	redisRaw := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	redisClient := rediscommon.NewClient(redisRaw, log)
	components.AddCleanup(redisClient.Close)

	views := viewcache.New(redisClient, cfg.Cache.DefaultTTL, log)

	// Object store for the photo bucket
	store, err := storage.New(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create object store client: %w", err)
	}

	// Best-effort notifier; disabled mail means a logging no-op
	var notifier service.Notifier
	if cfg.Mail.Enabled {
		notifier, err = mailer.New(cfg, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create mailer: %w", err)
		}
	} else {
		notifier = &noopNotifier{log: log}
	}

	// Operator-supplied acceptance policy, compiled once
	accept, err := policy.Compile(cfg.Upload.AcceptPolicy)
	if err != nil {
		return nil, fmt.Errorf("failed to compile acceptance policy: %w", err)
	}

	metrics := components.Telemetry
	if metrics == nil {
		// Metrics endpoint disabled; collectors still back the counters.
		metrics = telemetry.New(cfg.Telemetry.PprofPort, cfg.Telemetry.MetricsPort, false, log)
	}

	// Repositories
	photoRepo := repository.NewPhotoRepository(components.DB)

	// Services (bottom-up: dependencies first)
	uploadService := service.NewUploadService(
		store,
		photoRepo,
		views,
		notifier,
		accept,
		cfg.Upload,
		metrics,
		log,
	)
	deleteService := service.NewDeleteService(store, photoRepo, views, metrics, log)
	photoService := service.NewPhotoService(store, photoRepo, views, log)

	return &Container{
		Components:     components,
		Redis:          redisClient,
		Storage:        store,
		Views:          views,
		PhotoRepo:      photoRepo,
		UploadService:  uploadService,
		DeleteService:  deleteService,
		PhotoService:   photoService,
		UploadHandler:  handlers.NewUploadHandler(uploadService, log),
		PhotoHandler:   handlers.NewPhotoHandler(photoService, deleteService, log),
		ArchiveHandler: handlers.NewArchiveHandler(photoService, log),
	}, nil
}

// noopNotifier stands in when mail is disabled
type noopNotifier struct {
	log *logger.Logger
}

func (n *noopNotifier) Notify(ctx context.Context, summary mailer.BatchSummary) error {
	n.log.Debug("mail disabled, skipping notification",
		"group_id", summary.GroupID,
		"count", summary.Count,
	)
	return nil
}
