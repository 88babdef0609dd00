package api

import (
	"github.com/gin-gonic/gin"

	"github.com/avivpaz10/importing-costs/internal/config"
	"github.com/avivpaz10/importing-costs/internal/store"
)

// Handler is the HTTP API surface.
type Handler struct {
	store     *store.Store
	cfg       *config.AppConfig
	dataDir   string
	downloads *exportDownloadStore
}

// NewHandler creates the API handler. dataDir must contain the uploads and
// exports subdirectories.
func NewHandler(store *store.Store, cfg *config.AppConfig, dataDir string) *Handler {
	return &Handler{
		store:     store,
		cfg:       cfg,
		dataDir:   dataDir,
		downloads: newExportDownloadStore(),
	}
}

// RegisterRoutes registers the API routes.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// System status
	router.GET("/status", h.GetStatus)

	// Invoice upload and extraction
	router.POST("/upload", h.Upload)
	router.GET("/imports", h.ListImports)

	// Cost calculation
	router.POST("/calculate", h.Calculate)

	// Shipment parameter preset
	router.GET("/params", h.GetParams)
	router.PUT("/params", h.PutParams)

	// Report export
	router.POST("/export", h.Export)
	router.GET("/export/download/:token", h.DownloadExport)
}
