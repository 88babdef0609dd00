package server

import (
	"log"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/avivpaz10/importing-costs/internal/api"
	"github.com/avivpaz10/importing-costs/internal/config"
	"github.com/avivpaz10/importing-costs/internal/store"
)

// Server is the HTTP server.
type Server struct {
	router *gin.Engine
	store  *store.Store
	api    *api.Handler
}

// NewServer wires the store and API handler into a gin engine.
func NewServer(cfg *config.AppConfig) *Server {
	devMode := cfg.Server.DevMode
	if !devMode {
		gin.SetMode(gin.ReleaseMode)
	}

	dataDir, err := config.EnsureDataDir(cfg)
	if err != nil {
		dataDir = cfg.Data.DataDir
	}
	dbPath := filepath.Join(dataDir, "importcost.db")

	sqliteStore, err := store.New(dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	apiHandler := api.NewHandler(sqliteStore, cfg, dataDir)

	s := &Server{
		router: gin.Default(),
		store:  sqliteStore,
		api:    apiHandler,
	}

	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	// CORS
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	apiGroup := s.router.Group("/api")
	{
		s.api.RegisterRoutes(apiGroup)
	}

	s.router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "importing-costs",
			"api":     "/api",
		})
	})
}

// Run starts the server.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// Close releases the store.
func (s *Server) Close() error {
	return s.store.Close()
}

// GetStore exposes the store for tests.
func (s *Server) GetStore() *store.Store {
	return s.store
}
