package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/MoNabawy-2003/al-safaa-hospital/config"
	"github.com/MoNabawy-2003/al-safaa-hospital/internal/email"
	redisrepo "github.com/MoNabawy-2003/al-safaa-hospital/internal/repository/redis"
	"github.com/MoNabawy-2003/al-safaa-hospital/internal/service/notification"
	"github.com/MoNabawy-2003/al-safaa-hospital/pkg/logger"
	redisbroker "github.com/MoNabawy-2003/al-safaa-hospital/pkg/messaging/redis"
)

// The worker consumes appointment events and mails patients, keeping email
// delivery off the booking path.
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

	store := redisrepo.NewStore(client, lg, nil)
	userRepo := redisrepo.NewUserRepository(store)

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

	emailSvc := email.NewSMTPService(email.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})

	svc := notification.NewService(broker, userRepo, emailSvc, lg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Msg("notification worker started")
	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("notification worker failed")
	}
	log.Info().Msg("notification worker stopped")
}
