package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"dataset-market/internal/config"
	"dataset-market/internal/db"
	"dataset-market/internal/email"
	apihttp "dataset-market/internal/http"
	"dataset-market/internal/repository"
	"dataset-market/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	userRepo := repository.NewPgUserRepository(pool)
	otpRepo := repository.NewPgOTPRepository(pool)
	categoryRepo := repository.NewPgCategoryRepository(pool)

	emailSender := email.NewDisabledSender("email sender not configured")
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			emailSender = sender
		}
	}

	var otpLimiter service.OTPRateLimiter
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			otpLimiter = service.NewRedisOTPRateLimiter(redisClient, 10*time.Minute, 3)
		}
		cancel()
	}

	otpSvc := service.NewOTPService(otpRepo)
	tokenSvc := service.NewTokenService(
		cfg.JWTAccessSecret,
		cfg.JWTRefreshSecret,
		time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute,
		time.Duration(cfg.JWTRefreshTTLMinutes)*time.Minute,
		userRepo,
	)
	authSvc := service.NewAuthService(logger, cfg.AppName, cfg.SupportEmail, userRepo, otpSvc, tokenSvc, emailSender, otpLimiter)
	userSvc := service.NewUserService(logger, userRepo)
	categorySvc := service.NewCategoryService(categoryRepo)

	authHandler := apihttp.NewAuthHandler(logger, authSvc)
	userHandler := apihttp.NewUserHandler(logger, userSvc)
	categoryHandler := apihttp.NewCategoryHandler(logger, categorySvc)
	router := apihttp.NewRouter(logger, tokenSvc, authHandler, userHandler, categoryHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
