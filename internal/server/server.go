package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"simple-chats/config"
	"simple-chats/internal/handler"
	"simple-chats/internal/middleware"
	"simple-chats/internal/services"
	"simple-chats/internal/session"
	"simple-chats/internal/transport/httpdto"
	"simple-chats/pkg/database"
	"simple-chats/pkg/logger"

	"github.com/gin-gonic/gin"
)

type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	config     *config.Config
	logger     *logger.Logger
}

var (
	ReleaseMode = "release"
	DebugMode   = "debug"
	TestMode    = "test"
)

type Handlers struct {
	Pages *handler.PageHandler
	Auth  *handler.AuthHandler
	Chats *handler.ChatHandler
	Users *handler.UserHandler
}

func New(cfg *config.Config, l *logger.Logger) *Server {
	if cfg.AppMode == ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	} else if cfg.AppMode == TestMode {
		gin.SetMode(gin.TestMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	return &Server{
		httpServer: &http.Server{
			Addr:    fmt.Sprintf(":%s", cfg.AppPort),
			Handler: engine,
		},
		engine: engine,
		config: cfg,
		logger: l,
	}
}

// SetupRoutes mounts the web pages, the chat pages and the JSON API.
// templatesGlob points at the html/template files.
func (s *Server) SetupRoutes(
	handlers *Handlers,
	sessions *session.Manager,
	tokens *services.TokenService,
	authService *services.AuthService,
	db *sql.DB,
	templatesGlob string,
) {
	s.engine.LoadHTMLGlob(templatesGlob)

	s.engine.Use(middleware.RequestIDMiddleware())
	s.engine.Use(middleware.LoggingMiddleware(s.logger))
	s.engine.Use(middleware.SessionMiddleware(sessions, authService))

	s.engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"message": "pong"}))
	})

	s.engine.GET("/health", func(c *gin.Context) {
		if err := database.HealthCheck(db); err != nil {
			c.JSON(http.StatusServiceUnavailable, httpdto.NewErrorResponse(err.Error(), "UNHEALTHY"))
			return
		}
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"status": "healthy"}))
	})

	s.engine.GET("/", handlers.Pages.Index)

	auth := s.engine.Group("/authentication")
	{
		anonymous := middleware.AnonymousRequired(sessions)
		auth.GET("/register", anonymous, handlers.Auth.RegisterForm)
		auth.POST("/register", anonymous, handlers.Auth.Register)
		auth.GET("/login", anonymous, handlers.Auth.LoginForm)
		auth.POST("/login", anonymous, handlers.Auth.Login)
		auth.GET("/forgot_password", anonymous, handlers.Auth.ForgotPasswordForm)
		auth.POST("/forgot_password", anonymous, handlers.Auth.ForgotPassword)
		auth.GET("/reset_password/:token", anonymous, handlers.Auth.ResetPasswordForm)
		auth.POST("/reset_password/:token", anonymous, handlers.Auth.ResetPassword)
		auth.GET("/logout", handlers.Auth.Logout)
	}

	chats := s.engine.Group("/chats", middleware.LoginRequired(sessions))
	{
		chats.GET("/list", handlers.Chats.List)
		chats.GET("/begin/:username", handlers.Chats.Begin)
		chats.GET("/going", handlers.Chats.Going)
		chats.POST("/going", handlers.Chats.Send)
		chats.GET("/end", handlers.Chats.End)
		chats.GET("/search", handlers.Chats.SearchPage)
		chats.GET("/ajax-search", handlers.Chats.AjaxSearch)
	}

	api := s.engine.Group("/api", middleware.TokenAuth(tokens, authService))
	{
		api.GET("/users", handlers.Users.ListUsers)
		api.GET("/users/:id", handlers.Users.GetUser)
	}

	s.engine.NoRoute(handlers.Pages.NotFound)
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) Start() error {
	go func() {
		if s.logger != nil {
			s.logger.Infof("Starting the server on port %s...", s.config.AppPort)
		}
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if s.logger != nil {
				s.logger.Errorf("Error in starting the server: %s", err)
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	if s.logger != nil {
		s.logger.Infof("Server is running on :%s", s.config.AppPort)
	}

	<-quit

	if s.logger != nil {
		s.logger.Infof("Quitting signal received.. Shutting down after 5 seconds")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	return s.httpServer.Shutdown(ctx)
}
