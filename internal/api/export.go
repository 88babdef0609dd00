package api

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/avivpaz10/importing-costs/internal/calculator"
	"github.com/avivpaz10/importing-costs/internal/exporter"
)

const downloadTTL = 10 * time.Minute

// Export writes the landed-cost breakdown to an .xlsx and hands back a
// one-shot download token.
// POST /api/export
func (h *Handler) Export(c *gin.Context) {
	var req CalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if len(req.Products) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no products to export"})
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

	file, err := exporter.NewExporter().Export(exporter.ExportOptions{
		Lines:  lines,
		Totals: totals,
		Params: req.Params,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("failed to build report: %v", err)})
		return
	}
	defer file.Close()

	exportPath := filepath.Join(h.dataDir, "exports", uuid.NewString()+".xlsx")
	if err := file.SaveAs(exportPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to write report file"})
		return
	}

	filename := fmt.Sprintf("landed-costs-%s.xlsx", time.Now().Format("2006-01-02"))
	token := h.downloads.put(exportPath, filename, downloadTTL)

	c.JSON(http.StatusOK, gin.H{
		"token":       token,
		"downloadUrl": "/api/export/download/" + token,
	})
}

// DownloadExport streams an exported report once, then removes it.
// GET /api/export/download/:token
func (h *Handler) DownloadExport(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing token"})
		return
	}

	item, ok := h.downloads.get(token)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "download link expired"})
		return
	}

	if _, err := os.Stat(item.filePath); err != nil {
		h.downloads.delete(token)
		c.JSON(http.StatusNotFound, gin.H{"error": "export file missing"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", item.filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.File(item.filePath)

	h.downloads.delete(token)
	_ = os.Remove(item.filePath)
}
