package main

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/gin-gonic/gin"

	"github.com/samudrayan/backend/internal/api"
	"github.com/samudrayan/backend/internal/app"
	"github.com/samudrayan/backend/internal/app/maintenance"
	iauth "github.com/samudrayan/backend/internal/auth"
	"github.com/samudrayan/backend/internal/cache"
	"github.com/samudrayan/backend/internal/database"
	"github.com/samudrayan/backend/internal/middleware"
	"github.com/samudrayan/backend/internal/services"
	"github.com/samudrayan/backend/internal/storage"
	"github.com/samudrayan/backend/internal/verification"
	"github.com/samudrayan/backend/pkg/logger"
)

// runtimeStack bundles long-lived services used by the HTTP server.
type runtimeStack struct {
	DB           *gorm.DB
	Redis        *cache.RedisStore
	Verification *verification.Service
	Cleaner      *maintenance.Cleaner
	RateStore    middleware.RateStore
	Router       *gin.Engine
}

// bootstrapRuntime initialises the database, cache, verification pipeline,
// storage backend and the HTTP router.
func bootstrapRuntime(cfg *app.Config, log *zap.Logger) (*runtimeStack, error) {
	stack := &runtimeStack{}
	var err error
	success := false

	defer func() {
		if !success {
			stack.Shutdown(log)
		}
	}()

	if debug, _ := os.LookupEnv("GIN_DEBUG"); debug != "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	stack.DB, err = initialiseDatabase(cfg)
	if err != nil {
		return nil, err
	}

	dbStore := cache.NewDatabaseStore(stack.DB)

	if cfg.Cache.Redis.Enabled {
		if stack.Redis, err = cache.NewRedisStore(cfg.Cache.Redis.URL); err != nil {
			log.Warn("redis unavailable; falling back to database-backed operations", zap.Error(err))
			stack.Redis = nil
		} else {
			log.Info("redis connected")
		}
	}

	var tokenCache cache.Store = dbStore
	if stack.Redis != nil {
		tokenCache = stack.Redis
	}

	jwtSvc, err := iauth.NewJWTService(cfg.Auth.JWTServiceConfig())
	if err != nil {
		return nil, fmt.Errorf("initialise jwt service: %w", err)
	}

	masterKey, err := cfg.Verification.MasterKey()
	if err != nil {
		return nil, fmt.Errorf("decode verification master secret: %w", err)
	}

	codec, err := verification.NewCodec(masterKey)
	if err != nil {
		return nil, fmt.Errorf("initialise verification codec: %w", err)
	}

	audit, err := verification.NewAuditWriter(stack.DB)
	if err != nil {
		return nil, fmt.Errorf("initialise audit writer: %w", err)
	}

	uidai, err := verification.NewUIDAIClient(cfg.Verification.UIDAIClientConfig())
	if err != nil {
		return nil, fmt.Errorf("initialise uidai client: %w", err)
	}

	var verificationOpts []verification.ServiceOption
	if cfg.Verification.DigiLockerConfigured() {
		digilocker, dlErr := verification.NewDigiLockerClient(cfg.Verification.DigiLockerClientConfig(), tokenCache)
		if dlErr != nil {
			return nil, fmt.Errorf("initialise digilocker client: %w", dlErr)
		}
		verificationOpts = append(verificationOpts, verification.WithFallbackProvider(digilocker))
	}

	stack.Verification, err = verification.NewService(stack.DB, codec, audit, uidai, verificationOpts...)
	if err != nil {
		return nil, fmt.Errorf("initialise verification service: %w", err)
	}

	store, err := initialiseStorage(cfg)
	if err != nil {
		return nil, err
	}

	verifier, err := initialiseIdentityVerifier(cfg)
	if err != nil {
		return nil, err
	}

	bookingSvc, err := services.NewBookingService(stack.DB)
	if err != nil {
		return nil, fmt.Errorf("initialise booking service: %w", err)
	}

	stack.Cleaner = maintenance.NewCleaner(bookingSvc, dbStore,
		maintenance.WithBookingMaxAge(cfg.Maintenance.BookingMaxAge),
		maintenance.WithBookingSchedule(cfg.Maintenance.BookingSchedule),
		maintenance.WithCacheSchedule(cfg.Maintenance.CacheSchedule),
	)
	if err := stack.Cleaner.Start(); err != nil {
		return nil, fmt.Errorf("start maintenance jobs: %w", err)
	}

	if stack.Redis != nil {
		stack.RateStore = middleware.NewCacheRateStore(stack.Redis)
	} else {
		stack.RateStore = middleware.NewCacheRateStore(dbStore)
	}

	stack.Router, err = api.NewRouter(api.Dependencies{
		DB:           stack.DB,
		JWT:          jwtSvc,
		Verifier:     verifier,
		Verification: stack.Verification,
		Store:        store,
		RateStore:    stack.RateStore,
	})
	if err != nil {
		return nil, fmt.Errorf("build api router: %w", err)
	}

	success = true
	return stack, nil
}

// Shutdown gracefully stops background jobs and releases resources.
func (s *runtimeStack) Shutdown(log *zap.Logger) {
	if s == nil {
		return
	}

	if s.Cleaner != nil {
		stopCtx := s.Cleaner.Stop()
		if err := s.Cleaner.RunOnce(stopCtx); err != nil {
			log.Warn("maintenance shutdown cleanup failed", zap.Error(err))
		}
	}

	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			log.Warn("redis shutdown", zap.Error(err))
		}
	}

	if s.DB != nil {
		closeDatabase(s.DB, log)
	}
}

func initialiseDatabase(cfg *app.Config) (*gorm.DB, error) {
	dbCfg := convertDatabaseConfig(cfg)
	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := database.AutoMigrateAndSeed(db); err != nil {
		return nil, fmt.Errorf("auto-migrate database: %w", err)
	}

	log := logger.WithModule("database")
	log.Info("database connected", zap.String("driver", strings.ToLower(strings.TrimSpace(dbCfg.Driver))))

	return db, nil
}

func convertDatabaseConfig(cfg *app.Config) database.Config {
	dbCfg := database.Config{
		Driver: strings.ToLower(strings.TrimSpace(cfg.Database.Driver)),
		Path:   strings.TrimSpace(cfg.Database.Path),
		DSN:    strings.TrimSpace(cfg.Database.DSN),
	}

	switch dbCfg.Driver {
	case "", "sqlite":
		dbCfg.Driver = "sqlite"
	case "postgres", "postgresql":
		dbCfg.Driver = "postgres"
		dbCfg.Host = strings.TrimSpace(cfg.Database.Postgres.Host)
		dbCfg.Port = cfg.Database.Postgres.Port
		dbCfg.Name = strings.TrimSpace(cfg.Database.Postgres.Database)
		dbCfg.User = strings.TrimSpace(cfg.Database.Postgres.Username)
		dbCfg.Password = strings.TrimSpace(cfg.Database.Postgres.Password)
	case "mysql":
		dbCfg.Host = strings.TrimSpace(cfg.Database.MySQL.Host)
		dbCfg.Port = cfg.Database.MySQL.Port
		dbCfg.Name = strings.TrimSpace(cfg.Database.MySQL.Database)
		dbCfg.User = strings.TrimSpace(cfg.Database.MySQL.Username)
		dbCfg.Password = strings.TrimSpace(cfg.Database.MySQL.Password)
	default:
		// Leave driver as-is to surface unsupported driver error during open.
	}

	return dbCfg
}

func initialiseStorage(cfg *app.Config) (storage.Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Storage.Backend)) {
	case "cloudinary":
		store, err := storage.NewCloudinaryStore(
			cfg.Storage.Cloudinary.CloudName,
			cfg.Storage.Cloudinary.APIKey,
			cfg.Storage.Cloudinary.APISecret,
		)
		if err != nil {
			return nil, fmt.Errorf("initialise cloudinary storage: %w", err)
		}
		return store, nil
	case "", "local":
		store, err := storage.NewLocalStore(cfg.Storage.Local.Dir, cfg.Storage.Local.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("initialise local storage: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Storage.Backend)
	}
}

func initialiseIdentityVerifier(cfg *app.Config) (iauth.IdentityVerifier, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Identity.Mode)) {
	case "http":
		verifier, err := iauth.NewHTTPIdentityVerifier(cfg.Identity.BaseURL, cfg.Identity.APIKey, nil)
		if err != nil {
			return nil, fmt.Errorf("initialise identity verifier: %w", err)
		}
		return verifier, nil
	case "", "static":
		return iauth.StaticIdentityVerifier{}, nil
	default:
		return nil, fmt.Errorf("unsupported identity mode %q", cfg.Identity.Mode)
	}
}

func closeDatabase(db *gorm.DB, log *zap.Logger) {
	if db == nil {
		return
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Warn("failed to obtain underlying sql DB for closing", zap.Error(err))
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Warn("failed to close database", zap.Error(err))
	}
}
