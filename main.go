package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"rental-market/internal/auth"
	"rental-market/internal/config"
	"rental-market/internal/db"
	"rental-market/internal/handlers"
	"rental-market/internal/logging"
	"rental-market/internal/middleware"
	"rental-market/internal/observability"
	"rental-market/internal/pubsub"
	"rental-market/internal/rabbitmq"
	"rental-market/internal/repositories"
	"rental-market/internal/services"
	"rental-market/internal/telemetry"
	"rental-market/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.ServiceName, cfg.Environment)
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.SetupTracing(ctx, cfg.ServiceName, cfg.Environment, cfg.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(flushCtx)
	}()

	database, err := db.Connect(ctx, cfg.DatabaseDSN, logger)
	if err != nil {
		return err
	}
	defer database.Close()

	userRepo := repositories.NewUserRepo(database)
	roomRepo := repositories.NewRoomRepo(database)
	messageRepo := repositories.NewMessageRepo(database)
	articleRepo := repositories.NewArticleRepo(database)
	bookmarkRepo := repositories.NewBookmarkRepo(database)
	reviewRepo := repositories.NewReviewRepo(database)

	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		return err
	}

	publisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, logger, observability.IncAMQPPublishError)
	defer publisher.Close()
	logger.Info("audit publisher ready",
		zap.String("mode", rabbitmq.PublisherMode(publisher)),
		zap.String("noop_reason", rabbitmq.PublisherNoopReason(publisher)),
	)
	audit := telemetry.NewAuditEmitter(publisher, "audit.rental", cfg.ServiceName, cfg.Environment, logger)

	userService := services.NewUserService(userRepo, audit)
	authService := services.NewAuthService(userRepo, tokens, cfg.BcryptCost, audit)
	articleService := services.NewArticleService(articleRepo)
	bookmarkService := services.NewBookmarkService(bookmarkRepo, articleService)
	reviewService := services.NewReviewService(reviewRepo, articleService)

	hub := ws.NewHub(logger)
	chatService := services.NewChatService(roomRepo, messageRepo, userService, hub, audit)
	if cfg.RedisAddr != "" {
		redisClient, err := pubsub.NewRedisClient(ctx, cfg.RedisAddr)
		if err != nil {
			return err
		}
		defer redisClient.Close()

		relay := pubsub.NewRedisRelay(redisClient, hub, logger)
		chatService.SetRelay(relay)
		go func() {
			if err := relay.Run(ctx); err != nil {
				logger.Error("redis relay stopped", zap.Error(err))
			}
		}()
		logger.Info("chat relay bridged through redis", zap.String("addr", cfg.RedisAddr))
	}

	cookie := handlers.SessionCookie{Name: cfg.CookieName, Secure: cfg.CookieSecure, TTL: tokens.TTL()}
	authMW := middleware.AuthRequired(tokens, cfg.CookieName)
	allowOrigin := func(origin string) bool { return slices.Contains(cfg.CORSOrigins, origin) }

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		otelgin.Middleware(cfg.ServiceName),
		observability.HTTPMetricsMiddleware(),
		logging.RequestLogger(logger),
		cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowHeaders:     []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
	)

	router.GET("/metrics", observability.MetricsHandler())
	router.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	handlers.NewAuthHandler(authService, cookie, logger).RegisterRoutes(router)
	handlers.NewUserHandler(userService, authService, cookie, logger).RegisterRoutes(router, authMW)
	handlers.NewArticleHandler(articleService, logger).RegisterRoutes(router, authMW)
	handlers.NewBookmarkHandler(bookmarkService, logger).RegisterRoutes(router, authMW)
	handlers.NewReviewHandler(reviewService, logger).RegisterRoutes(router, authMW)
	handlers.NewChatHandler(chatService, logger).RegisterRoutes(router, authMW)
	handlers.RegisterDebugRoutes(router, audit, cfg.DebugRoutes)

	chatWS := ws.NewChatWebSocketHandler(hub, chatService, tokens, cfg.CookieName, audit, logger, allowOrigin)
	router.GET("/chat/ws", chatWS.Handle)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
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

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
