package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"summarizer-session-be/internal/config"
	"summarizer-session-be/internal/entity"
	"summarizer-session-be/internal/pkg/logger"
	"summarizer-session-be/internal/repository/memory"
	"summarizer-session-be/internal/repository/unitofwork"
	"summarizer-session-be/internal/service"
	"summarizer-session-be/pkg/database"
	"summarizer-session-be/pkg/engine"
	"summarizer-session-be/pkg/events"
	"summarizer-session-be/pkg/lock"
	pktNats "summarizer-session-be/pkg/nats"
	"summarizer-session-be/pkg/snapshot"
	"summarizer-session-be/pkg/snapshot/badgerstore"
	"summarizer-session-be/pkg/snapshot/dbstore"
	"summarizer-session-be/pkg/snapshot/filestore"
	"summarizer-session-be/pkg/snapshot/gcsstore"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const lockTTL = 30 * time.Second

type Options struct {
	// InMemory keeps sessions in process memory instead of Postgres.
	InMemory bool
	// Quiet turns SQL logging off.
	Quiet bool
}

type Container struct {
	Config *config.Config
	Logger logger.ILogger
	DB     *gorm.DB

	Gateway           *engine.ProcessGateway
	UserService       service.IUserService
	TemplateService   service.ITemplateService
	AssignmentService service.IAssignmentService
	WarmupService     service.IWarmupService

	closers []func()
}

func NewContainer(ctx context.Context, cfg *config.Config, opts Options) (*Container, error) {
	c := &Container{Config: cfg}
	c.Logger = logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	engineLog := logger.NewIsolatedLogger(cfg.App.EngineLogPath)
	c.onClose(func() { engineLog.Sync(); c.Logger.Sync() })

	// 1. Persistence
	var uowFactory unitofwork.RepositoryFactory
	if opts.InMemory {
		uowFactory = memory.NewRepositoryFactory(memory.NewStore())
	} else {
		var dbOpts []database.Option
		if opts.Quiet {
			dbOpts = append(dbOpts, database.WithSilentLogger())
		}
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection, dbOpts...)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("connect database: %w", err)
		}
		c.DB = db
		uowFactory = unitofwork.NewRepositoryFactory(db)
	}

	snapshots, err := c.newSnapshotStore(ctx)
	if err != nil {
		c.Close()
		return nil, err
	}

	// 2. Infrastructure
	locker := c.newLocker(ctx)

	var publisher events.Publisher
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			c.Logger.Warn("BOOTSTRAP", "Failed to connect to NATS Publisher, events disabled", map[string]interface{}{"error": err.Error()})
		} else {
			publisher = natsPub
			c.onClose(natsPub.Close)
		}
	}

	gateway, err := engine.NewProcessGateway(engine.Config{
		Command:        cfg.Engine.Command,
		WorkDir:        cfg.Engine.WorkDir,
		BaseDir:        cfg.Engine.BaseDir,
		TempDir:        cfg.Engine.TempDir,
		Timeout:        cfg.Engine.Timeout,
		MaxConcurrent:  cfg.Engine.MaxConcurrent,
		PrepareCommand: cfg.Engine.PrepareCommand,
		PrepareMarker:  cfg.Engine.PrepareMarker,
	}, c.Logger, engineLog)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Gateway = gateway

	variants, err := parseVariants(cfg.Engine.Variants)
	if err != nil {
		c.Close()
		return nil, err
	}

	// 3. Services
	c.TemplateService = service.NewTemplateService(
		uowFactory,
		gateway,
		snapshots,
		locker,
		memory.NewTemplateCache(cfg.App.TemplateCacheTTL),
		service.NewTemplatePicker(cfg.Engine.PickSeed),
		variants,
		publisher,
		c.Logger,
	)
	c.AssignmentService = service.NewAssignmentService(uowFactory, c.TemplateService, gateway, snapshots, locker, publisher, c.Logger)
	c.UserService = service.NewUserService(uowFactory, c.Logger)

	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		watermill.NewStdLogger(false, false),
	)
	c.onClose(func() { pubSub.Close() })
	c.WarmupService = service.NewWarmupService(pubSub, service.WarmupTopic, c.TemplateService, c.Logger)

	return c, nil
}

func (c *Container) newSnapshotStore(ctx context.Context) (snapshot.Store, error) {
	cfg := c.Config.Snapshot
	switch cfg.Backend {
	case "", "file":
		store, err := filestore.New(cfg.Dir)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "database":
		if c.DB == nil {
			return nil, errors.New("snapshot backend \"database\" needs a database connection")
		}
		return dbstore.New(c.DB), nil
	case "gcs":
		store, err := gcsstore.New(ctx, cfg.GCSBucket, cfg.GCSPrefix, cfg.GCSCredentialsFile)
		if err != nil {
			return nil, err
		}
		c.onClose(func() { store.Close() })
		return store, nil
	case "badger":
		store, err := badgerstore.Open(badgerstore.Config{Path: cfg.BadgerPath, Logger: c.Logger})
		if err != nil {
			return nil, err
		}
		c.onClose(func() { store.Close() })
		return store, nil
	}
	return nil, fmt.Errorf("unknown snapshot backend %q", cfg.Backend)
}

// newLocker falls back to process local locks when Redis is not configured or
// not reachable.
func (c *Container) newLocker(ctx context.Context) lock.Locker {
	if c.Config.App.LockBackend != "redis" {
		return lock.NewLocalLocker()
	}

	opt, err := redis.ParseURL(c.Config.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: c.Config.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		c.Logger.Warn("BOOTSTRAP", "Failed to connect to Redis, using local locks", map[string]interface{}{"error": err.Error()})
		rdb.Close()
		return lock.NewLocalLocker()
	}
	c.onClose(func() { rdb.Close() })
	return lock.NewRedisLocker(rdb, "summarizer:lock:", lockTTL)
}

func parseVariants(raw []string) ([]entity.Variant, error) {
	variants := make([]entity.Variant, 0, len(raw))
	for _, r := range raw {
		v, err := entity.ParseVariant(r)
		if err != nil {
			return nil, fmt.Errorf("ENGINE_TEMPLATE_VARIANTS: %w", err)
		}
		variants = append(variants, v)
	}
	return variants, nil
}

func (c *Container) onClose(fn func()) {
	c.closers = append(c.closers, fn)
}

// Close releases everything in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
	if c.DB != nil {
		if sqlDB, err := c.DB.DB(); err == nil {
			sqlDB.Close()
		}
	}
}
