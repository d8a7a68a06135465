package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"

	"cv-builder/internal/account"
	"cv-builder/internal/cv"
	"cv-builder/internal/cvs"
	"cv-builder/internal/services/health"
	"cv-builder/internal/shared/config"
	"cv-builder/internal/shared/server"
	"cv-builder/internal/shared/server/middleware"
	"cv-builder/internal/shared/storage/db"
	"cv-builder/internal/shared/storage/kv"
	"cv-builder/internal/shared/storage/kv/local"
	"cv-builder/internal/shared/storage/kv/memory"
	kvpg "cv-builder/internal/shared/storage/kv/pg"
	kvredis "cv-builder/internal/shared/storage/kv/redis"
	kvs3 "cv-builder/internal/shared/storage/kv/s3"
	"cv-builder/internal/shared/telemetry"
	"cv-builder/internal/tier"
	"cv-builder/internal/workingdoc"
)

const redisKeyPrefix = "cvb:"

// App holds shared dependencies.
type App struct {
	Config            config.Config
	Router            *gin.Engine
	DB                *sql.DB
	Redis             *goredis.Client
	Store             kv.Store
	TierService       *tier.Service
	CVService         *cvs.Service
	AccountService    *account.Service
	CVHandler         *cvs.Handler
	WorkingDocHandler *workingdoc.Handler
	TierHandler       *tier.Handler
	AccountHandler    *account.Handler
	Health            *health.Service
}

// Build prepares storage, services and the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.KVStore) == "" {
		cfg.KVStore = "memory"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{Config: cfg, DB: sqlDB}

	store, err := buildStore(ctx, app)
	if err != nil {
		return nil, err
	}
	app.Store = store

	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:            app.Config,
		Health:            app.Health,
		CVHandler:         app.CVHandler,
		WorkingDocHandler: app.WorkingDocHandler,
		TierHandler:       app.TierHandler,
		AccountHandler:    app.AccountHandler,
		RateLimits:        defaultRateLimits(),
	})

	return app, nil
}

// Close releases pooled connections.
func (a *App) Close() {
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if a.DB != nil && !db.IsLambdaRuntime() {
		_ = a.DB.Close()
	}
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.KVStore == "postgres" && !isDevLike(cfg.Env) {
			return nil, fmt.Errorf("DATABASE_URL is required for KV_STORE=postgres")
		}
		if cfg.KVStore == "postgres" {
			telemetry.Warn("bootstrap.store_fallback", map[string]any{"store": cfg.KVStore, "reason": "DATABASE_URL empty"})
		}
		return nil, nil
	}

	var (
		sqlDB *sql.DB
		err   error
	)
	if db.IsLambdaRuntime() {
		opts := db.Defaults(db.ProfileLambda).FromEnv()
		sqlDB, err = db.GetSingleton(ctx, cfg.DatabaseURL, opts)
	} else {
		opts := db.Defaults(db.ProfileServer).FromEnv()
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, opts)
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.store_fallback", map[string]any{"store": cfg.KVStore, "reason": "database connect failed", "error": err})
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, app *App) (kv.Store, error) {
	cfg := app.Config
	switch cfg.KVStore {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("KV_STORE=s3 requires S3_BUCKET")
		}
		return kvs3.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	case "postgres":
		if app.DB == nil {
			return memory.New(), nil
		}
		return &kvpg.Store{DB: app.DB}, nil
	case "redis":
		if strings.TrimSpace(cfg.RedisURL) == "" {
			return nil, fmt.Errorf("KV_STORE=redis requires REDIS_URL")
		}
		client, err := kvredis.Connect(ctx, cfg.RedisURL, kvredis.Options{
			PoolSize:     10,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		})
		if err != nil {
			if isDevLike(cfg.Env) {
				telemetry.Warn("bootstrap.store_fallback", map[string]any{"store": cfg.KVStore, "reason": "redis connect failed", "error": err})
				return memory.New(), nil
			}
			return nil, err
		}
		app.Redis = client
		return kvredis.New(client, redisKeyPrefix), nil
	case "local":
		return local.New(cfg.LocalStoreDir), nil
	default:
		return memory.New(), nil
	}
}

func buildServices(app *App) {
	limits := tier.Limits{
		Free:    app.Config.FreeSavedCVs,
		Pro:     app.Config.ProSavedCVs,
		Premium: app.Config.PremiumSavedCVs,
	}
	if limits.Free <= 0 && limits.Pro <= 0 && limits.Premium <= 0 {
		limits = tier.DefaultLimits()
	}

	if app.DB != nil {
		app.TierService = tier.NewPostgresService(tier.NewPGStore(app.DB), limits, app.Config.SubscriptionTerm)
	} else {
		app.TierService = tier.NewService(limits, app.Config.SubscriptionTerm)
	}

	var opts []cv.Option
	if app.Config.TrashRetention > 0 {
		opts = append(opts, cv.WithRetention(app.Config.TrashRetention))
	}
	app.CVService = cvs.NewService(app.Store, app.TierService, opts...)
	app.AccountService = account.NewService(app.CVService)

	app.CVHandler = cvs.NewHandler(app.CVService)
	app.WorkingDocHandler = workingdoc.NewHandler(app.CVService.WorkingDoc)
	app.TierHandler = tier.NewHandler(app.TierService, app.CVService.Count)
	app.AccountHandler = account.NewHandler(app.AccountService)

	checks := map[string]health.Check{}
	if app.DB != nil {
		checks["postgres"] = app.DB.PingContext
	}
	if rs, ok := app.Store.(*kvredis.Store); ok {
		checks["redis"] = rs.Health
	}
	app.Health = health.NewService(checks)
}

func defaultRateLimits() map[string]middleware.RateLimitRule {
	return map[string]middleware.RateLimitRule{
		middleware.WriteRateLimitGroup: {Rate: 1, Burst: 10},
	}
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
