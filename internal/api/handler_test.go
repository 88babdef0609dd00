package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/avivpaz10/importing-costs/internal/calculator"
	"github.com/avivpaz10/importing-costs/internal/config"
	"github.com/avivpaz10/importing-costs/internal/parser"
	"github.com/avivpaz10/importing-costs/internal/store"
)

func newTestRouter(t *testing.T) (*gin.Engine, *Handler) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dataDir := t.TempDir()
	for _, subdir := range []string{"uploads", "exports"} {
		if err := os.MkdirAll(filepath.Join(dataDir, subdir), 0755); err != nil {
			t.Fatalf("mkdir %s: %v", subdir, err)
		}
	}

	st, err := store.New(filepath.Join(dataDir, "test.db"))
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	h := NewHandler(st, config.DefaultConfig(), dataDir)
	router := gin.New()
	h.RegisterRoutes(router.Group("/api"))
	return router, h
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func calculateRequest() CalculateRequest {
	return CalculateRequest{
		Products: []parser.ProductRecord{
			{Code: "A100", ItemNumber: "X1", Quantity: 100, UnitPrice: 2.5, TotalVolume: 2, Currency: parser.CurrencyUSD},
			{Code: "B200", ItemNumber: "Y2", Quantity: 50, UnitPrice: 4, TotalVolume: 3, Currency: parser.CurrencyUSD},
		},
		Params: calculator.ShipmentParameters{
			ContainerCost:      1000,
			ContainerVolume:    10,
			ImportTaxRate:      0.17,
			USDToLocalRate:     3.6,
			LocalTransportCost: 900,
			UnloadingCost:      360,
			AdditionalFees:     180,
		},
	}
}

func TestCalculate_OK(t *testing.T) {
	t.Parallel()
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/calculate", calculateRequest())
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp CalculateResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(resp.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(resp.Lines))
	}
	if resp.Lines[0].VolumeRatio != 0.2 || resp.Lines[1].VolumeRatio != 0.3 {
		t.Fatalf("unexpected volume ratios: %v, %v", resp.Lines[0].VolumeRatio, resp.Lines[1].VolumeRatio)
	}
	if !resp.Totals.IsTotal {
		t.Fatal("totals row not flagged")
	}
	if resp.Summary.ProductCount != 2 || resp.Summary.TotalQuantity != 150 {
		t.Fatalf("unexpected summary: %+v", resp.Summary)
	}
}

func TestCalculate_AllocatorErrorsAre400(t *testing.T) {
	t.Parallel()
	router, _ := newTestRouter(t)

	// Volume exceeds the container.
	req := calculateRequest()
	req.Params.ContainerVolume = 1
	w := doJSON(t, router, http.MethodPost, "/api/calculate", req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	// RMB product without an RMB rate.
	req = calculateRequest()
	req.Products[0].Currency = parser.CurrencyRMB
	w = doJSON(t, router, http.MethodPost, "/api/calculate", req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	// Empty product list.
	w = doJSON(t, router, http.MethodPost, "/api/calculate", CalculateRequest{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestParams_DefaultsThenRoundTrip(t *testing.T) {
	t.Parallel()
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/params", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var got struct {
		Params calculator.ShipmentParameters `json:"params"`
		Saved  bool                          `json:"saved"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if got.Saved {
		t.Fatal("expected unsaved preset on fresh store")
	}
	if got.Params.ContainerVolume != config.DefaultConfig().Shipment.DefaultContainerVolume {
		t.Fatalf("expected configured default container volume, got %v", got.Params.ContainerVolume)
	}

	want := calculateRequest().Params
	w = doJSON(t, router, http.MethodPut, "/api/params", want)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodGet, "/api/params", nil)
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if !got.Saved || got.Params != want {
		t.Fatalf("round trip mismatch: saved=%v params=%+v", got.Saved, got.Params)
	}
}

func TestParams_RejectsNegative(t *testing.T) {
	t.Parallel()
	router, _ := newTestRouter(t)

	params := calculateRequest().Params
	params.ContainerCost = -1
	w := doJSON(t, router, http.MethodPut, "/api/params", params)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func invoiceWorkbookBytes(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	rows := [][]interface{}{
		{"Item NO.", "DESCRIPTION", "QTY(PCS)", "PRICE(USD)", "CBM"},
		{"A100\nItem No.：X1\nMaterial: aluminum", "", 100, 2.5, 0.05},
		{"TOTAL", "", 100, "", 0.05},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

func TestUpload_ExtractsProducts(t *testing.T) {
	t.Parallel()
	router, _ := newTestRouter(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "invoice.xlsx")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write(invoiceWorkbookBytes(t)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp UploadResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if !resp.Success || len(resp.Products) != 1 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	p := resp.Products[0]
	if p.Code != "A100" || p.ItemNumber != "X1" || p.Quantity != 100 {
		t.Fatalf("unexpected product: %+v", p)
	}
	if resp.Currency != parser.CurrencyUSD {
		t.Fatalf("expected USD, got %s", resp.Currency)
	}

	// The import shows up in the log.
	w = doJSON(t, router, http.MethodGet, "/api/imports", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var imports struct {
		Imports []store.ImportLogEntry `json:"imports"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &imports); err != nil {
		t.Fatalf("unmarshal imports: %v", err)
	}
	if len(imports.Imports) != 1 || imports.Imports[0].Status != "success" {
		t.Fatalf("unexpected import log: %+v", imports.Imports)
	}
}

func TestUpload_RejectsNonExcel(t *testing.T) {
	t.Parallel()
	router, _ := newTestRouter(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "invoice.pdf")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	fw.Write([]byte("not an excel file"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestExport_OneShotDownload(t *testing.T) {
	t.Parallel()
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/export", calculateRequest())
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Token       string `json:"token"`
		DownloadURL string `json:"downloadUrl"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Token == "" || resp.DownloadURL == "" {
		t.Fatalf("missing token in response: %s", w.Body.String())
	}

	w = doJSON(t, router, http.MethodGet, resp.DownloadURL, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("download status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Fatalf("unexpected content type %q", ct)
	}
	if w.Body.Len() == 0 {
		t.Fatal("empty download body")
	}

	// Token is single use.
	w = doJSON(t, router, http.MethodGet, resp.DownloadURL, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected expired token, got %d", w.Code)
	}
}

func TestStatus(t *testing.T) {
	t.Parallel()
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/status", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp StatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Initialized || resp.ImportCount != 0 || resp.PresetSaved {
		t.Fatalf("unexpected fresh status: %+v", resp)
	}
}
