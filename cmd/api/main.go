package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/MoNabawy-2003/al-safaa-hospital/config"
	"github.com/MoNabawy-2003/al-safaa-hospital/internal/handler"
	analyticsHandler "github.com/MoNabawy-2003/al-safaa-hospital/internal/handler/analytics"
	appointmentHandler "github.com/MoNabawy-2003/al-safaa-hospital/internal/handler/appointment"
	authHandler "github.com/MoNabawy-2003/al-safaa-hospital/internal/handler/auth"
	chatHandler "github.com/MoNabawy-2003/al-safaa-hospital/internal/handler/chat"
	messagingHandler "github.com/MoNabawy-2003/al-safaa-hospital/internal/handler/messaging"
	"github.com/MoNabawy-2003/al-safaa-hospital/internal/middleware"
	redisrepo "github.com/MoNabawy-2003/al-safaa-hospital/internal/repository/redis"
	"github.com/MoNabawy-2003/al-safaa-hospital/internal/router"
	analyticsService "github.com/MoNabawy-2003/al-safaa-hospital/internal/service/analytics"
	appointmentService "github.com/MoNabawy-2003/al-safaa-hospital/internal/service/appointment"
	authService "github.com/MoNabawy-2003/al-safaa-hospital/internal/service/auth"
	chatService "github.com/MoNabawy-2003/al-safaa-hospital/internal/service/chat"
	messagingService "github.com/MoNabawy-2003/al-safaa-hospital/internal/service/messaging"
	"github.com/MoNabawy-2003/al-safaa-hospital/pkg/auth"
	"github.com/MoNabawy-2003/al-safaa-hospital/pkg/locker"
	"github.com/MoNabawy-2003/al-safaa-hospital/pkg/logger"
	redisbroker "github.com/MoNabawy-2003/al-safaa-hospital/pkg/messaging/redis"
	"github.com/MoNabawy-2003/al-safaa-hospital/pkg/metrics"
	"github.com/MoNabawy-2003/al-safaa-hospital/pkg/validator"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	appLogger := logger.NewLogger(&logger.Config{
		Level:      level,
		TimeFormat: time.RFC3339,
		Pretty:     cfg.Logging.Pretty,
	})
	lg := appLogger.Zerolog()

	// Storage client
	client, err := redisrepo.NewClient(redisrepo.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		RetryBackoff: cfg.Redis.RetryBackoff,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer client.Close()

	m := metrics.NewMetrics("hospital")
	store := redisrepo.NewStore(client, lg, m)

	// Repositories
	appointmentStore := redisrepo.NewAppointmentStore(store)
	userRepo := redisrepo.NewUserRepository(store)
	messageRepo := redisrepo.NewMessageRepository(store)

	// Message broker for appointment events
	broker, err := redisbroker.NewRedisBroker(redisbroker.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		RetryBackoff: cfg.Redis.RetryBackoff,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, lg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect broker to Redis")
	}
	defer broker.Close()

	slotLocker := locker.NewRedisLocker(client, cfg.Redis.LockTTL)
	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)

	// Services
	appointmentSvc := appointmentService.NewService(appointmentStore, slotLocker, broker, lg, m, cfg.Scheduling.SlotTimes)
	authSvc := authService.NewService(userRepo, jwtSvc, lg)
	messagingSvc := messagingService.NewService(messageRepo, userRepo, lg)
	analyticsSvc := analyticsService.NewService(userRepo, appointmentStore, lg)
	chatSvc := chatService.NewService(chatService.Config{
		APIURL:  cfg.Chat.APIURL,
		APIKey:  cfg.Chat.APIKey,
		Model:   cfg.Chat.Model,
		Timeout: cfg.Chat.Timeout,
	}, lg)

	// Handlers
	v := validator.New()
	h := handler.NewHandler()
	authH := authHandler.NewHandler(authSvc, v)
	appointmentH := appointmentHandler.NewHandler(appointmentSvc, userRepo, v)
	messagingH := messagingHandler.NewHandler(messagingSvc, v)
	analyticsH := analyticsHandler.NewHandler(analyticsSvc)
	chatH := chatHandler.NewHandler(chatSvc, v)

	authMiddleware := middleware.NewAuthMiddleware(jwtSvc)

	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.Security.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.Security.AllowedOrigins
	}

	r := router.NewRouter(
		authMiddleware,
		authH,
		appointmentH,
		messagingH,
		analyticsH,
		chatH,
		h,
		router.RouterConfig{
			RateLimit:  rate.Limit(cfg.RateLimit.RequestsPerSecond),
			RateBurst:  cfg.RateLimit.Burst,
			CORSConfig: corsConfig,
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server stopped")
}
