package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"
	_ "time/tzdata"

	"github.com/md-rashed-zaman/meetslots/libs/config"
	"github.com/md-rashed-zaman/meetslots/libs/db"
	"github.com/md-rashed-zaman/meetslots/libs/httpx"
	"github.com/md-rashed-zaman/meetslots/libs/kafkax"
	otelx "github.com/md-rashed-zaman/meetslots/libs/otel"
	"github.com/md-rashed-zaman/meetslots/libs/runtime"
	"github.com/md-rashed-zaman/meetslots/services/availability-service/internal/calendar"
	"github.com/md-rashed-zaman/meetslots/services/availability-service/internal/consumer"
	"github.com/md-rashed-zaman/meetslots/services/availability-service/internal/handlers"
	"github.com/md-rashed-zaman/meetslots/services/availability-service/internal/inbox"
	"github.com/md-rashed-zaman/meetslots/services/availability-service/internal/outbox"
	"github.com/md-rashed-zaman/meetslots/services/availability-service/internal/storage"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	service := config.String("SERVICE_NAME", "availability-service")
	port, err := config.Port("PORT", "13778")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		panic(err)
	}
	maxConns, err := config.Int("DB_MAX_CONNS", 10, 1, 1000)
	if err != nil {
		panic(err)
	}
	pool, err := db.Open(ctx, dbURL, db.Options{MaxConns: int32(maxConns)})
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	if config.Bool("MIGRATE_ON_START", true) {
		applied, err := storage.Migrate(ctx, pool)
		if err != nil {
			logger.Error("migrations failed", "err", err)
			panic(err)
		}
		logger.Info("migrations applied", "versions", applied)
	}

	limits, err := queryLimits()
	if err != nil {
		panic(err)
	}

	userRepo := storage.NewUserRepository(pool)
	outboxRepo := outbox.NewRepository()
	calendarService := calendar.NewService(pool, userRepo, outboxRepo)

	brokers := config.String("KAFKA_BROKERS", "")
	outboxPublisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   brokers,
		PollEvery: config.Seconds("OUTBOX_POLL_SECONDS", 2*time.Second),
		BatchSize: 50,
	})
	go outboxPublisher.Run(ctx)

	if topic := config.String("KAFKA_SYNC_TOPIC", "calendar.user.synced.v1"); brokers != "" && topic != "" {
		syncConsumer := consumer.New(logger, inbox.NewRepository(pool), consumer.Config{
			Brokers: brokers,
			GroupID: config.String("KAFKA_GROUP_ID", service),
			Topic:   topic,
		}, consumer.UserSnapshotHandler(calendarService, logger))
		go syncConsumer.Run(ctx)
	} else {
		logger.Warn("calendar sync consumer disabled (no kafka brokers configured)")
	}

	checks := []runtime.ReadyCheck{
		{Name: "db", Check: db.ReadyCheck(pool)},
	}
	if brokers != "" {
		checks = append(checks, runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(brokers)})
	}

	limiter, rdb := rateLimiter(logger)
	if rdb != nil {
		defer rdb.Close()
		checks = append(checks, runtime.ReadyCheck{Name: "redis", Check: httpx.RedisReadyCheck(rdb)})
	}

	if err := startGrpcServer(ctx, logger, db.ReadyCheck(pool)); err != nil {
		logger.Error("grpc server failed to start", "err", err)
		panic(err)
	}

	userHandler := handlers.NewUserHandler(calendarService, logger)
	availabilityHandler := handlers.NewAvailabilityHandler(calendarService, logger, limits)

	mux := runtime.NewBaseMuxWithReady(checks...)
	mux.HandleFunc("GET /ping", handlers.Ping)
	mux.HandleFunc("GET /v1/users", userHandler.List)
	mux.HandleFunc("DELETE /v1/users", userHandler.DeleteAll)
	mux.HandleFunc("GET /v1/users/{userId}", userHandler.Get)
	mux.HandleFunc("PUT /v1/users/{userId}", userHandler.Upsert)
	mux.HandleFunc("GET /v1/availabilities", availabilityHandler.List)
	mux.HandleFunc("/", handlers.NotFound)

	bodyLimit, err := config.Int("REQUEST_BODY_LIMIT_BYTES", 1<<20, 1, 64<<20)
	if err != nil {
		panic(err)
	}
	var rateLimit httpx.Middleware
	if limiter != nil {
		rateLimit = httpx.WithRateLimit(limiter, logger, config.Bool("RATE_LIMIT_FAIL_OPEN", true))
	}
	httpHandler := httpx.Chain(mux,
		httpx.WithCORS(httpx.CORSPolicy{
			AllowedOrigins: config.List("CORS_ALLOWED_ORIGINS", ""),
			AllowedMethods: config.List("CORS_ALLOWED_METHODS", "GET,PUT,DELETE,OPTIONS"),
			AllowedHeaders: config.List("CORS_ALLOWED_HEADERS", "Content-Type,X-Request-ID"),
			MaxAge:         config.Seconds("CORS_MAX_AGE_SECONDS", 10*time.Minute),
		}),
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		rateLimit,
		httpx.WithBodyLimit(int64(bodyLimit)),
		httpx.WithTimeout(config.Seconds("REQUEST_TIMEOUT_SECONDS", 15*time.Second)),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "availability")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}

func queryLimits() (handlers.QueryLimits, error) {
	interval, err := config.Int("DEFAULT_INTERVAL_MINUTES", 15, 1, 1440)
	if err != nil {
		return handlers.QueryLimits{}, err
	}
	limit, err := config.Int("DEFAULT_LIMIT", 5, 0, 1000)
	if err != nil {
		return handlers.QueryLimits{}, err
	}
	maxSlices, err := config.Int("MAX_SLICES", 10000, 1, 10000000)
	if err != nil {
		return handlers.QueryLimits{}, err
	}
	return handlers.QueryLimits{
		DefaultInterval: time.Duration(interval) * time.Minute,
		DefaultLimit:    limit,
		MaxSlices:       maxSlices,
	}, nil
}

// rateLimiter prefers a Redis limiter shared by all replicas and falls back to an in-process
// one. RATE_LIMIT_PER_MINUTE=0 disables limiting.
func rateLimiter(logger *slog.Logger) (httpx.Limiter, *redis.Client) {
	perMinute, err := config.Int("RATE_LIMIT_PER_MINUTE", 600, 0, 1000000)
	if err != nil {
		logger.Warn("invalid rate limit; using default", "err", err)
		perMinute = 600
	}
	if perMinute == 0 {
		return nil, nil
	}

	addr := config.String("REDIS_ADDR", "")
	if addr == "" {
		return httpx.NewMemoryLimiter(perMinute, time.Minute), nil
	}
	redisDB, err := config.Int("REDIS_DB", 0, 0, 15)
	if err != nil {
		logger.Warn("invalid redis db; using 0", "err", err)
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: config.String("REDIS_PASSWORD", ""),
		DB:       redisDB,
	})
	return httpx.NewRedisLimiter(rdb, perMinute, time.Minute, config.String("RATE_LIMIT_PREFIX", "meetslots:rl")), rdb
}
