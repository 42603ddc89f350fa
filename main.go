package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"giftmarket/internal/app"
	"giftmarket/internal/config"
	"giftmarket/internal/database"
	"giftmarket/internal/notify"
	"giftmarket/pkg/logger"
	"giftmarket/pkg/mailer"
	"giftmarket/pkg/media"
	"giftmarket/pkg/rabbitmq"
	"giftmarket/pkg/social"
	"giftmarket/pkg/tokenstore"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load(viper.New())
	if err != nil {
		// The logger depends on the configuration, so fall back to a basic one.
		zap.NewExample().Fatal("invalid configuration", zap.Error(err))
	}

	logCfg := logger.ForEnvironment(cfg.AppEnv)
	logCfg.Level = cfg.LogLevel
	if cfg.LogFormat != "" {
		logCfg.Format = cfg.LogFormat
	}
	log := logger.New(logCfg)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Database ---
	db, err := database.Open(database.Config{
		Driver:   cfg.DatabaseDriver,
		DSN:      cfg.DatabaseDSN,
		LogLevel: cfg.LogLevel,
	}, log)
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("failed to migrate database", zap.Error(err))
	}

	// --- Token blacklist ---
	var blacklist tokenstore.Blacklist = tokenstore.NewMemoryBlacklist()
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Fatal("failed to connect to redis", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		blacklist = tokenstore.NewRedisBlacklist(rdb)
		log.Info("using redis token blacklist", zap.String("addr", cfg.RedisAddr))
	}

	// --- Outbound integrations ---
	mail := mailer.New(mailer.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	}, log)
	poster := social.NewClient(social.Config{APIURL: cfg.XAPIURL, AccessToken: cfg.XAccessToken}, log)

	var resolver media.Resolver = media.NewStaticResolver(cfg.MediaBaseURL)
	if cfg.MediaBackend == "s3" {
		s3Resolver, err := media.NewS3Resolver(ctx, media.S3Config{
			Endpoint:     cfg.S3Endpoint,
			Region:       cfg.S3Region,
			Bucket:       cfg.S3Bucket,
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
			UsePathStyle: cfg.S3PathStyle,
			PresignTTL:   cfg.S3PresignTTL,
		})
		if err != nil {
			log.Fatal("failed to configure s3 media", zap.Error(err))
		}
		resolver = s3Resolver
	}

	// Announcements go through RabbitMQ when it is configured and are posted
	// by the consumer below; otherwise they are posted directly.
	var dispatcher notify.Dispatcher = notify.NewDirectDispatcher(poster)
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL}, log)
		if err != nil {
			log.Fatal("failed to initialize RabbitMQ client", zap.Error(err))
		}
		defer mqClient.Close()

		if err := mqClient.Consume(ctx, notify.ConsumeHandler(ctx, poster, cfg.NotifyTimeout, log)); err != nil {
			log.Fatal("failed to start RabbitMQ consumer", zap.Error(err))
		}
		dispatcher = notify.NewQueueDispatcher(mqClient)
	}
	notifier := notify.NewNotifier(dispatcher, resolver, cfg.NotifyTimeout, log)

	// --- HTTP ---
	server, err := app.New(app.Deps{
		DB:        db,
		Config:    cfg,
		Log:       log,
		Blacklist: blacklist,
		Mailer:    mail,
		Announcer: notifier,
		Media:     resolver,
	})
	if err != nil {
		log.Fatal("failed to build application", zap.Error(err))
	}

	go func() {
		log.Info("starting server", zap.String("addr", cfg.AppPort), zap.String("env", cfg.AppEnv))
		if err := server.Listen(cfg.AppPort); err != nil {
			log.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down server")
	if err := server.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error("error during shutdown", zap.Error(err))
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("server gracefully stopped")
}
