package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avivpaz10/importing-costs/internal/calculator"
)

// GetParams returns the saved shipment parameter preset, falling back to
// the configured defaults when nothing has been saved yet.
// GET /api/params
func (h *Handler) GetParams(c *gin.Context) {
	params, ok, err := h.store.GetShipmentParams()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load parameters"})
		return
	}
	if !ok {
		params = calculator.ShipmentParameters{
			ContainerVolume: h.cfg.Shipment.DefaultContainerVolume,
			ImportTaxRate:   h.cfg.Shipment.DefaultImportTaxRate,
		}
	}
	c.JSON(http.StatusOK, gin.H{"params": params, "saved": ok})
}

// PutParams replaces the shipment parameter preset.
// PUT /api/params
func (h *Handler) PutParams(c *gin.Context) {
	var params calculator.ShipmentParameters
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if params.ContainerVolume < 0 || params.ContainerCost < 0 || params.ImportTaxRate < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "parameters must not be negative"})
		return
	}

	if err := h.store.SaveShipmentParams(params); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save parameters"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"params": params, "saved": true})
}
