package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avivpaz10/importing-costs/internal/calculator"
	"github.com/avivpaz10/importing-costs/internal/parser"
)

// CalculateRequest carries the products to allocate and the shipment
// parameters to allocate with.
type CalculateRequest struct {
	Products []parser.ProductRecord        `json:"products"`
	Params   calculator.ShipmentParameters `json:"params"`
}

// CalculateSummary aggregates the breakdown for display.
type CalculateSummary struct {
	ProductCount  int     `json:"productCount"`
	TotalQuantity float64 `json:"totalQuantity"`
	TotalVolume   float64 `json:"totalVolume"`
	TotalCost     float64 `json:"totalCost"`
}

// CalculateResponse is the full landed-cost breakdown.
type CalculateResponse struct {
	Lines   []calculator.CostLine `json:"lines"`
	Totals  calculator.CostLine   `json:"totals"`
	Summary CalculateSummary      `json:"summary"`
}

// Calculate allocates shipping and local costs over the given products.
// POST /api/calculate
func (h *Handler) Calculate(c *gin.Context) {
	var req CalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if len(req.Products) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no products to calculate"})
		return
	}

	lines, totals, err := calculator.Allocate(req.Products, req.Params)
	if err != nil {
		if errors.Is(err, calculator.ErrInvalidShipment) || errors.Is(err, calculator.ErrMissingExchangeRate) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, CalculateResponse{
		Lines:  lines,
		Totals: totals,
		Summary: CalculateSummary{
			ProductCount:  len(lines),
			TotalQuantity: totals.Quantity,
			TotalVolume:   totals.TotalVolume,
			TotalCost:     totals.TotalCost,
		},
	})
}
