package main

import (
	"context"
	"flag"
	"log"

	"perfume-pos/internal/config"
	"perfume-pos/internal/repository"
	"perfume-pos/internal/service"
	"perfume-pos/pkg/database"
	"perfume-pos/pkg/jwt"
	"perfume-pos/pkg/logger"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	email := flag.String("email", "", "account email")
	password := flag.String("password", "", "new password (at least 6 characters)")
	flag.Parse()

	if *email == "" || len(*password) < 6 {
		log.Fatal("usage: reset-password -email <email> -password <new password, min 6 chars>")
	}

	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, relying on system env")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	zlog := logger.New(cfg.LogLevel, "reset-password")
	defer func() { _ = zlog.Sync() }()

	// 2. Setup Database
	db, err := database.ConnectDB(cfg.DSN(), false)
	if err != nil {
		zlog.Fatal("database unavailable", zap.Error(err))
	}

	// 3. Reset
	auth := service.NewAuthService(repository.NewUserRepo(db), jwt.NewManager(cfg.JWTSecret, cfg.JWTTTL), zlog)
	if err := auth.ResetPassword(context.Background(), *email, *password); err != nil {
		zlog.Fatal("password reset failed", zap.String("email", *email), zap.Error(err))
	}

	zlog.Info("password reset", zap.String("email", *email))
}
