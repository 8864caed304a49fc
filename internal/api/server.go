package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"sellmaster/internal/api/handlers"
	"sellmaster/internal/api/middleware"
	"sellmaster/internal/config"
	"sellmaster/internal/credentials"
	"sellmaster/internal/database"
	"sellmaster/internal/events"
	"sellmaster/internal/logger"
	syncsvc "sellmaster/internal/sync"
)

type Server struct {
	config    *config.Config
	logger    *logger.Logger
	db        *database.Database
	router    *gin.Engine
	server    *http.Server
	publisher *events.Publisher
}

func New(cfg *config.Config, logger *logger.Logger, db *database.Database) *Server {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	sessionStore := middleware.NewSessionStore(cfg.SessionAuthKey)
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CORS())
	router.Use(middleware.Session(sessionStore, logger))

	// Shared services
	creds := credentials.NewGormStore(db.DB)
	links := syncsvc.NewGormLinkRepo(db.DB)
	runs := syncsvc.NewGormRunRepo(db.DB)
	service := syncsvc.NewService(cfg, creds, links, runs, logger)
	publisher := events.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)

	// Handlers
	authHandler := handlers.NewAuthHandler(cfg, creds, logger)
	syncHandler := handlers.NewSyncHandler(cfg, creds, service, publisher, logger)

	// Routes
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authRoutes := router.Group("/auth/:platform")
	{
		authRoutes.GET("/initiate", authHandler.Initiate)
		authRoutes.GET("/callback", authHandler.Callback)
	}

	v1 := router.Group("/api/v1")
	{
		v1.POST("/requestEbay", syncHandler.RequestEbay)
		v1.POST("/dumpToShopify", syncHandler.DumpToShopify)
		v1.GET("/runs/:id", syncHandler.GetRun)

		products := v1.Group("/products")
		{
			products.GET("/ebaylist", syncHandler.EbayList)
			products.GET("/shopifylist", syncHandler.ShopifyList)
		}
	}

	return &Server{
		config:    cfg,
		logger:    logger,
		db:        db,
		router:    router,
		publisher: publisher,
	}
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%s", s.config.APIHost, s.config.APIPort)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("Starting server on " + addr)
	return s.server.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	if err := s.publisher.Close(); err != nil {
		s.logger.Error("Failed to close publisher: %v", err)
	}
	return s.server.Shutdown(ctx)
}
