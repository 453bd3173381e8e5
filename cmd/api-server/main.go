package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rabbitmq/amqp091-go"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ruthwik162/OTSchedular-Backend/internal/api"
	"github.com/ruthwik162/OTSchedular-Backend/internal/booking"
	"github.com/ruthwik162/OTSchedular-Backend/internal/config"
	"github.com/ruthwik162/OTSchedular-Backend/internal/consult"
	"github.com/ruthwik162/OTSchedular-Backend/internal/db"
	"github.com/ruthwik162/OTSchedular-Backend/internal/logger"
	"github.com/ruthwik162/OTSchedular-Backend/internal/notify"
	redisclient "github.com/ruthwik162/OTSchedular-Backend/internal/redis"
	"github.com/ruthwik162/OTSchedular-Backend/internal/report"
	"github.com/ruthwik162/OTSchedular-Backend/internal/staff"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	zlog, err := logger.New(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	zlog.Info("api-server starting up",
		zap.String("env", cfg.Env),
		zap.String("http_port", cfg.HTTPPort),
		zap.String("slot_registry", cfg.SlotRegistry))

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		zlog.Fatal("postgres connection error", zap.Error(err))
	}
	defer pgPool.Close()
	zlog.Info("connected to Postgres")

	var rdb *goredis.Client
	var registry booking.Registry
	if cfg.SlotRegistry == config.RegistryRedis {
		rdb, err = redisclient.NewRedisClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
		if err != nil {
			zlog.Fatal("redis connection error", zap.Error(err))
		}
		defer func() {
			if err := rdb.Close(); err != nil {
				zlog.Error("error closing redis", zap.Error(err))
			}
		}()
		registry = redisclient.NewSlotRegistry(rdb)
		zlog.Info("connected to Redis, using shared slot registry")
	} else {
		registry = booking.NewMemoryRegistry()
		zlog.Info("using in-memory slot registry")
	}

	notifier := buildNotifier(cfg, zlog)

	directory := staff.NewPgDirectory(pgPool)
	selector := staff.NewSelector(directory, cfg.NurseCooldown, cfg.NurseTeamSize, cfg.NurseMinimum)
	store := booking.NewPgStore(pgPool)

	bookingSvc := booking.NewService(store, registry, directory, selector, notifier, zlog, cfg.NotifyStaff)
	consultSvc := consult.NewService(consult.NewPgRepository(pgPool), directory, notifier, zlog)

	var reportSvc *report.Service
	if cfg.MinioEndpoint != "" {
		minioClient, err := minio.New(cfg.MinioEndpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
			Secure: cfg.MinioUseSSL,
		})
		if err != nil {
			zlog.Fatal("minio client error", zap.Error(err))
		}
		files := report.NewMinioStore(minioClient, cfg.MinioBucket, cfg.MinioPublicURL)
		reportSvc = report.NewService(files, report.NewPgRepository(pgPool), store, directory, zlog)
		zlog.Info("report storage enabled", zap.String("bucket", cfg.MinioBucket))
	} else {
		zlog.Warn("MINIO_ENDPOINT not set, report upload endpoints disabled")
	}

	router := api.NewRouter(api.RouterConfig{
		Booking:  bookingSvc,
		Consults: consultSvc,
		Reports:  reportSvc,
		PgPool:   pgPool,
		Redis:    rdb,
		Log:      zlog,
		Env:      cfg.Env,
		Version:  version,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		zlog.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("http server error", zap.Error(err))
		}
	}()

	<-rootCtx.Done()
	zlog.Info("shutting down api-server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("graceful shutdown failed", zap.Error(err))
	}
}

// buildNotifier picks the outbound mail transport: RabbitMQ queue when
// configured, direct SMTP otherwise, log-only as the last resort.
func buildNotifier(cfg config.Config, zlog *zap.Logger) notify.Notifier {
	if cfg.AMQPURL != "" {
		conn, err := amqp091.Dial(cfg.AMQPURL)
		if err != nil {
			zlog.Fatal("rabbitmq connection error", zap.Error(err))
		}
		publisher, err := notify.NewPublisher(conn, cfg.NotifyQueue)
		if err != nil {
			zlog.Fatal("rabbitmq publisher error", zap.Error(err))
		}
		zlog.Info("notifications via queue", zap.String("queue", cfg.NotifyQueue))
		return publisher
	}

	if cfg.SMTPHost != "" {
		zlog.Info("notifications via direct SMTP", zap.String("host", cfg.SMTPHost))
		return notify.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPSender)
	}

	zlog.Warn("no notification transport configured, mails will only be logged")
	return notify.NewLogNotifier(zlog)
}
