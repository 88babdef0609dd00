package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// StatusResponse is the service health snapshot.
type StatusResponse struct {
	Initialized    bool   `json:"initialized"`
	ImportCount    int    `json:"importCount"`
	LastImportTime string `json:"lastImportTime"`
	PresetSaved    bool   `json:"presetSaved"`
}

// GetStatus reports import counts and preset state.
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	count, err := h.store.CountImportLogs()
	if err != nil {
		count = 0
	}

	lastImport, err := h.store.LastImportTime()
	if err != nil {
		lastImport = ""
	}

	_, presetSaved, err := h.store.GetShipmentParams()
	if err != nil {
		presetSaved = false
	}

	c.JSON(http.StatusOK, StatusResponse{
		Initialized:    count > 0,
		ImportCount:    count,
		LastImportTime: lastImport,
		PresetSaved:    presetSaved,
	})
}
