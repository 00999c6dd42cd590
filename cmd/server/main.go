package main

import (
	"context"
	"log"

	"simple-chats/config"
	"simple-chats/internal/email"
	"simple-chats/internal/handler"
	"simple-chats/internal/repository"
	"simple-chats/internal/server"
	"simple-chats/internal/services"
	"simple-chats/internal/session"
	"simple-chats/pkg/database"
	"simple-chats/pkg/logger"
)

func main() {
	cfg := config.LoadConfig()

	mode := logger.DevelopmentMode
	if cfg.AppMode == server.ReleaseMode {
		mode = logger.ProductionMode
	}
	l := logger.New(mode)
	logger.SetGlobalLogger(l)

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := repository.InitSchema(context.Background(), db, cfg.DBDriver); err != nil {
		log.Fatalf("Failed to apply schema: %v", err)
	}

	userRepo := repository.NewUserRepository(db, cfg.DBDriver)
	chatRepo := repository.NewChatRepository(db, cfg.DBDriver)
	messageRepo := repository.NewMessageRepository(db, cfg.DBDriver)

	tokens := services.NewTokenService(cfg)
	mailer := email.NewSMTPSender(cfg, l)
	authService := services.NewAuthService(userRepo, tokens, mailer, cfg)
	chatService := services.NewChatService(chatRepo, messageRepo)
	userService := services.NewUserService(userRepo)

	sessions := session.NewManager(cfg.SecretKey)

	srv := server.New(cfg, l)
	srv.SetupRoutes(&server.Handlers{
		Pages: handler.NewPageHandler(sessions),
		Auth:  handler.NewAuthHandler(authService, sessions, l),
		Chats: handler.NewChatHandler(chatService, userService, sessions, l),
		Users: handler.NewUserHandler(userService),
	}, sessions, tokens, authService, db, "templates/*.html")

	if err := srv.Start(); err != nil {
		l.Errorf("Server shutdown failed: %s", err)
	}
}
