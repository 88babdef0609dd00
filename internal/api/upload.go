package api

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/avivpaz10/importing-costs/internal/importer"
	"github.com/avivpaz10/importing-costs/internal/parser"
	"github.com/avivpaz10/importing-costs/internal/store"
)

var allowedUploadExts = map[string]bool{
	".xlsx": true,
	".xlsm": true,
	".xls":  true,
}

// UploadResponse is returned for a parsed invoice upload.
type UploadResponse struct {
	Success     bool                      `json:"success"`
	Message     string                    `json:"message"`
	ImportID    string                    `json:"importId"`
	SheetName   string                    `json:"sheetName"`
	Products    []parser.ProductRecord    `json:"products"`
	Columns     map[parser.ColumnRole]int `json:"columns"`
	Currency    parser.Currency           `json:"currency"`
	SkippedRows int                       `json:"skippedRows"`
	Events      []importer.ProgressEvent  `json:"events"`
	Trace       []parser.TraceEvent       `json:"trace"`
}

// Upload parses an uploaded invoice workbook.
// POST /api/upload
func (h *Handler) Upload(c *gin.Context) {
	uploadedFile, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file in upload form"})
		return
	}

	ext := strings.ToLower(filepath.Ext(uploadedFile.Filename))
	if !allowedUploadExts[ext] {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unsupported file type %q, expected an Excel workbook", ext)})
		return
	}

	// Saved under a uuid name so hostile filenames never touch the fs.
	uploadPath := filepath.Join(h.dataDir, "uploads", uuid.NewString()+ext)
	if err := c.SaveUploadedFile(uploadedFile, uploadPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save upload"})
		return
	}
	defer os.Remove(uploadPath)

	coordinator := importer.NewCoordinator(h.store)
	result, err := coordinator.ImportFile(importer.ImportOptions{
		FilePath: uploadPath,
		Filename: uploadedFile.Filename,
		FileSize: uploadedFile.Size,
	})
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": fmt.Sprintf("failed to parse workbook: %v", err)})
		return
	}

	if !result.Succeeded() {
		c.JSON(http.StatusUnprocessableEntity, UploadResponse{
			Success:  false,
			Message:  importer.FailureMessage(result.Extract.Reason),
			ImportID: result.Report.ImportID,
			Events:   result.Events,
			Trace:    result.Trace,
		})
		return
	}

	c.JSON(http.StatusOK, UploadResponse{
		Success:     true,
		Message:     fmt.Sprintf("extracted %d product(s) from sheet %q", len(result.Products), result.Report.SheetName),
		ImportID:    result.Report.ImportID,
		SheetName:   result.Report.SheetName,
		Products:    result.Products,
		Columns:     result.Extract.Roles,
		Currency:    result.Extract.Currency,
		SkippedRows: result.Extract.SkippedRows,
		Events:      result.Events,
		Trace:       result.Trace,
	})
}

// ListImports returns recent import log entries.
// GET /api/imports
func (h *Handler) ListImports(c *gin.Context) {
	limit := 50
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}

	entries, err := h.store.ListImportLogs(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list imports"})
		return
	}
	if entries == nil {
		entries = []store.ImportLogEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"imports": entries})
}
