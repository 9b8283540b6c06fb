package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appcore "trackai.dev/trackai/core"
	"trackai.dev/trackai/infrastructure/devops"
	"trackai.dev/trackai/infrastructure/filesystem"
	saras "trackai.dev/trackai/saras/v1"
	trackai "trackai.dev/trackai/trackai/core"
	"trackai.dev/trackai/trackai/store/mysql"
	"trackai.dev/trackai/web/handlers/attendance"
	"trackai.dev/trackai/web/handlers/auth"
	"trackai.dev/trackai/web/handlers/progress"
	"trackai.dev/trackai/web/handlers/projects"
	"trackai.dev/trackai/web/handlers/sarasstatus"
	"trackai.dev/trackai/web/handlers/uploads"
	"trackai.dev/trackai/web/middlewares"
)

func main() {
	ctx := context.Background()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	cfg, err := devops.LoadAppConfig(ctx)
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	dm, err := appcore.New(cfg.DSN, cfg.MaxConnections)
	if err != nil {
		logger.Fatal("connect database", zap.Error(err))
	}
	defer dm.Close()

	if err := dm.Migrate(); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	sessionStore := mysql.NewSessionStore(dm.DB)
	uploadStore := mysql.NewUploadStore(dm.DB)
	projectStore := mysql.NewProjectStore(dm.DB)
	userStore := mysql.NewUserStore(dm.DB)
	auditStore := mysql.NewAuditStore(dm.DB, logger)

	var files filesystem.Store
	if cfg.StorageBucket != "" {
		s3, err := filesystem.NewS3Store(ctx, cfg.StorageBucket)
		if err != nil {
			logger.Fatal("connect storage bucket", zap.Error(err))
		}
		files = s3
	} else {
		files = filesystem.NewLocalStore(cfg.StorageDir)
	}

	tokens := newTokenManager(cfg.Saras, userStore, logger)
	client := saras.NewClient(cfg.Saras, tokens, logger)
	logger.Info("saras client ready",
		zap.String("mode", cfg.Saras.Mode),
		zap.String("token_mode", cfg.Saras.TokenMode),
	)

	sessions := trackai.NewSessionEngine(sessionStore)
	attendanceService := trackai.NewAttendanceService(client, sessions, auditStore, cfg.Saras, logger)
	uploadEngine := trackai.NewUploadEngine(client, uploadStore, projectStore, files, auditStore, cfg.Saras, logger)
	progressService := trackai.NewProgressService(client, auditStore, cfg.Saras, logger)
	projectSync := trackai.NewProjectSyncService(client, projectStore, logger)

	r := gin.Default()
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	api := r.Group("/api")
	auth.Register(api, userStore, cfg.Saras, cfg.JWTSecret, logger)

	protected := r.Group("/api")
	protected.Use(middlewares.Authentication(cfg.JWTSecret))
	{
		attendance.Register(protected, attendanceService, sessions, sessionStore, projectStore)
		uploads.Register(protected, uploadEngine, uploadStore, projectStore, files)
		progress.Register(protected, progressService)
		projects.Register(protected, projectSync, projectStore)
		sarasstatus.Register(protected, client, cfg.Saras)
	}

	r.Run("0.0.0.0:8090")
}
