package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/lostid-api/api/swagger"
	"github.com/noah-isme/lostid-api/internal/handler"
	internalmiddleware "github.com/noah-isme/lostid-api/internal/middleware"
	"github.com/noah-isme/lostid-api/internal/models"
	"github.com/noah-isme/lostid-api/internal/repository"
	"github.com/noah-isme/lostid-api/internal/service"
	"github.com/noah-isme/lostid-api/pkg/cache"
	"github.com/noah-isme/lostid-api/pkg/config"
	"github.com/noah-isme/lostid-api/pkg/database"
	"github.com/noah-isme/lostid-api/pkg/imaging"
	"github.com/noah-isme/lostid-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/lostid-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/lostid-api/pkg/middleware/requestid"
	"github.com/noah-isme/lostid-api/pkg/storage"
)

// @title Lost ID API
// @version 1.0.0
// @description Campus lost-ID recovery: admins register found IDs, students claim them.
// @BasePath /api
// @schemes http https

const usage = `usage: lostid-api <command>

commands:
  serve                     run the HTTP server (default)
  migrate up|down           apply or roll back database migrations
  create-admin [flags]      create an admin account
`

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	args := os.Args[1:]
	cmd := "serve"
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "serve":
		err = serve(cfg, logr)
	case "migrate":
		err = runMigrate(cfg, args)
	case "create-admin":
		err = createAdmin(cfg, logr, args)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		logr.Sugar().Fatalw("command failed", "command", cmd, "error", err)
	}
}

func openDB(cfg *config.Config) (*sqlx.DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return database.NewPostgres(ctx, cfg.Database)
}

func runMigrate(cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return errors.New("migrate expects exactly one argument: up or down")
	}
	dir, err := database.ParseDirection(args[0])
	if err != nil {
		return err
	}
	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	return database.Migrate(db, dir)
}

func createAdmin(cfg *config.Config, logr *zap.Logger, args []string) error {
	fs := flag.NewFlagSet("create-admin", flag.ContinueOnError)
	name := fs.String("name", "", "full name")
	email := fs.String("email", "", "login email")
	password := fs.String("password", "", "initial password (min 8 characters)")
	role := fs.String("role", string(models.RoleAdmin), "admin or super_admin")
	if err := fs.Parse(args); err != nil {
		return err
	}

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	auth := service.NewAuthService(nil, repository.NewAdminRepository(db), nil, validator.New(), logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	admin, err := auth.CreateAdmin(context.Background(), *name, *email, *password, models.UserRole(*role))
	if err != nil {
		return err
	}
	logr.Sugar().Infow("admin created", "id", admin.ID, "email", admin.Email, "role", admin.Role)
	return nil
}

func serve(cfg *config.Config, logr *zap.Logger) error {
	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db, database.Up); err != nil {
			return err
		}
	}

	metrics := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	if cfg.Stats.CacheEnabled {
		client, err := cache.NewRedis(context.Background(), cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, statistics will not be cached", zap.Error(err))
		} else {
			defer client.Close()
			cacheRepo = repository.NewCacheRepository(client)
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Stats.CacheTTL, logr, cfg.Stats.CacheEnabled)

	images, err := storage.NewImageStore(cfg.Uploads.Dir)
	if err != nil {
		return err
	}
	signer := storage.NewSignedURLSigner(cfg.Uploads.SignedURLSecret, cfg.Uploads.SignedURLTTL)
	links := service.NewImageLinks(signer, "/uploads")
	processor := imaging.NewProcessor(cfg.Uploads.AllowedMIMEs, cfg.Uploads.MaxDimension)

	validate := validator.New()
	students := repository.NewStudentRepository(db)
	admins := repository.NewAdminRepository(db)
	audit := repository.NewAuditRepository(db)
	items := repository.NewLostItemRepository(db)
	claims := repository.NewClaimRepository(db)
	stats := repository.NewStatsRepository(db)

	authSvc := service.NewAuthService(students, admins, audit, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	claimSvc := service.NewClaimService(db, claims, items, audit, cacheSvc, metrics, links, validate, logr)
	itemSvc := service.NewLostItemService(db, items, claims, images, processor, links, audit, cacheSvc, validate, logr,
		service.LostItemConfig{MaxImageSize: cfg.Uploads.MaxFileSize})
	statsSvc := service.NewStatsService(stats, cacheSvc, metrics, logr)
	exportSvc := service.NewExportService(stats, logr)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics))
	r.Use(internalmiddleware.WithResponseMeta())

	handler.RegisterRoutes(r, handler.Router{
		Auth:       handler.NewAuthHandler(authSvc, handler.CookieConfig{Name: cfg.JWT.CookieName, Secure: cfg.JWT.CookieSecure}),
		LostItems:  handler.NewLostItemHandler(itemSvc, cfg.Uploads.MaxFileSize),
		Claims:     handler.NewClaimHandler(claimSvc),
		Stats:      handler.NewStatsHandler(statsSvc),
		Export:     handler.NewExportHandler(exportSvc),
		Images:     handler.NewImageHandler(itemSvc),
		Metrics:    handler.NewMetricsHandler(metrics, stats),
		Tokens:     authSvc,
		Audit:      audit,
		Logger:     logr,
		CookieName: cfg.JWT.CookieName,
		APIPrefix:  cfg.APIPrefix,
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
