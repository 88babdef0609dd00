package importer

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/avivpaz10/importing-costs/internal/parser"
	"github.com/avivpaz10/importing-costs/internal/store"
)

// Coordinator drives an invoice workbook through the extraction pipeline
// and records the outcome in the import log.
type Coordinator struct {
	store *store.Store
}

// NewCoordinator creates an import coordinator. The store may be nil, in
// which case no import log is written.
func NewCoordinator(store *store.Store) *Coordinator {
	return &Coordinator{store: store}
}

// ImportOptions describes one upload to process.
type ImportOptions struct {
	FilePath string
	Filename string
	FileSize int64
}

// ProgressEvent is one step of the import, surfaced as diagnostics in the
// API response.
type ProgressEvent struct {
	Type      string      `json:"type"` // start/sheet_start/sheet_done/done/error
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// SheetResult records how one sheet fared.
type SheetResult struct {
	SheetName   string               `json:"sheetName"`
	Status      string               `json:"status"` // extracted/empty/error
	Products    int                  `json:"products"`
	SkippedRows int                  `json:"skippedRows"`
	Reason      parser.FailureReason `json:"reason,omitempty"`
	Errors      []string             `json:"errors,omitempty"`
	Duration    time.Duration        `json:"duration"`
}

// ImportReport summarizes a whole import.
type ImportReport struct {
	ImportID      string        `json:"importId"`
	Filename      string        `json:"filename"`
	SheetName     string        `json:"sheetName"`
	TotalSheets   int           `json:"totalSheets"`
	ScannedSheets int           `json:"scannedSheets"`
	ProductCount  int           `json:"productCount"`
	SkippedRows   int           `json:"skippedRows"`
	Sheets        []SheetResult `json:"sheets"`
	Duration      time.Duration `json:"duration"`
}

// ImportResult is the full outcome of one import.
type ImportResult struct {
	Report   *ImportReport          `json:"report"`
	Products []parser.ProductRecord `json:"products"`
	Extract  parser.ExtractResult   `json:"-"`
	Events   []ProgressEvent        `json:"events"`
	Trace    []parser.TraceEvent    `json:"trace"`
}

// Succeeded reports whether any products were extracted.
func (r *ImportResult) Succeeded() bool {
	return r != nil && len(r.Products) > 0
}

// FailureMessage renders an extraction failure reason for users.
func FailureMessage(reason parser.FailureReason) string {
	switch reason {
	case parser.FailureHeaderNotFound:
		return "could not locate a header row in any sheet"
	case parser.FailureColumnsUnresolved:
		return "could not identify enough product columns"
	case parser.FailureNoProductRows:
		return "no product rows found below the header"
	default:
		return "no products could be extracted from the file"
	}
}

// ImportFile parses the workbook at opts.FilePath. Sheets are scanned in
// workbook order; the first one that yields products wins.
func (c *Coordinator) ImportFile(opts ImportOptions) (*ImportResult, error) {
	startTime := time.Now()

	importID := uuid.NewString()
	filename := opts.Filename
	if filename == "" {
		filename = filepath.Base(opts.FilePath)
	}

	result := &ImportResult{
		Report: &ImportReport{
			ImportID: importID,
			Filename: filename,
		},
	}

	c.logCreate(importID, filename, opts.FilePath, opts.FileSize)

	c.addEvent(result, "start", fmt.Sprintf("importing %s", filename), map[string]string{
		"filename": filename,
	})

	file, err := excelize.OpenFile(opts.FilePath)
	if err != nil {
		c.addEvent(result, "error", fmt.Sprintf("failed to open workbook: %v", err), nil)
		c.logComplete(importID, "", 0, 0, "error", err.Error())
		return result, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer file.Close()

	sheetList := file.GetSheetList()
	result.Report.TotalSheets = len(sheetList)

	c.addEvent(result, "info", fmt.Sprintf("found %d sheet(s)", len(sheetList)), map[string]interface{}{
		"total_sheets": len(sheetList),
	})

	firstReason := parser.FailureNone
	for _, sheetName := range sheetList {
		sheetResult, extract, trace := c.processSheet(file, sheetName, result)
		result.Report.Sheets = append(result.Report.Sheets, sheetResult)
		result.Report.ScannedSheets++

		if sheetResult.Status == "extracted" {
			result.Report.SheetName = sheetName
			result.Report.ProductCount = len(extract.Products)
			result.Report.SkippedRows = extract.SkippedRows
			result.Products = extract.Products
			result.Extract = extract
			result.Trace = trace
			break
		}
		if firstReason == parser.FailureNone {
			firstReason = sheetResult.Reason
		}
	}

	result.Report.Duration = time.Since(startTime)

	if !result.Succeeded() {
		result.Extract.Reason = firstReason
		c.addEvent(result, "done", FailureMessage(firstReason), result.Report)
		c.logComplete(importID, "", 0, 0, "empty", FailureMessage(firstReason))
		return result, nil
	}

	c.addEvent(result, "done",
		fmt.Sprintf("extracted %d product(s) from sheet %q", result.Report.ProductCount, result.Report.SheetName),
		result.Report)
	c.logComplete(importID, result.Report.SheetName, result.Report.ProductCount, result.Report.SkippedRows, "success", "")

	return result, nil
}

// processSheet runs the extractor over a single sheet.
func (c *Coordinator) processSheet(file *excelize.File, sheetName string, result *ImportResult) (SheetResult, parser.ExtractResult, []parser.TraceEvent) {
	sheetStartTime := time.Now()

	c.addEvent(result, "sheet_start", fmt.Sprintf("scanning sheet %q", sheetName), map[string]string{
		"sheet_name": sheetName,
	})

	rows, err := file.GetRows(sheetName)
	if err != nil {
		return SheetResult{
			SheetName: sheetName,
			Status:    "error",
			Errors:    []string{fmt.Sprintf("failed to read sheet: %v", err)},
			Duration:  time.Since(sheetStartTime),
		}, parser.ExtractResult{}, nil
	}

	tracer := parser.NewRecordingTracer()
	extract := parser.Extract(parser.Grid(rows), tracer)

	if len(extract.Products) == 0 {
		c.addEvent(result, "sheet_done", fmt.Sprintf("sheet %q: %s", sheetName, FailureMessage(extract.Reason)), nil)
		return SheetResult{
			SheetName:   sheetName,
			Status:      "empty",
			SkippedRows: extract.SkippedRows,
			Reason:      extract.Reason,
			Duration:    time.Since(sheetStartTime),
		}, extract, tracer.Events
	}

	c.addEvent(result, "sheet_done",
		fmt.Sprintf("sheet %q: %d product(s), %d row(s) skipped", sheetName, len(extract.Products), extract.SkippedRows),
		map[string]interface{}{
			"sheet_name": sheetName,
			"products":   len(extract.Products),
		})

	return SheetResult{
		SheetName:   sheetName,
		Status:      "extracted",
		Products:    len(extract.Products),
		SkippedRows: extract.SkippedRows,
		Duration:    time.Since(sheetStartTime),
	}, extract, tracer.Events
}

func (c *Coordinator) addEvent(result *ImportResult, eventType, message string, data interface{}) {
	result.Events = append(result.Events, ProgressEvent{
		Type:      eventType,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	})
}

func (c *Coordinator) logCreate(importID, filename, filePath string, fileSize int64) {
	if c.store == nil {
		return
	}
	if _, err := c.store.CreateImportLog(importID, filename, filePath, fileSize); err != nil {
		// Bookkeeping only, the import itself proceeds.
		return
	}
}

func (c *Coordinator) logComplete(importID, sheetName string, productCount, skippedRows int, status, errorMessage string) {
	if c.store == nil {
		return
	}
	_ = c.store.CompleteImportLog(importID, sheetName, productCount, skippedRows, status, errorMessage)
}
