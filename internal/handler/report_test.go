package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"greenfield-reports/internal/config"
	"greenfield-reports/internal/models"
	"greenfield-reports/internal/notify"
	"greenfield-reports/internal/report"
	"greenfield-reports/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testRouter(t *testing.T) (*gin.Engine, *store.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	db, err := gorm.Open(sqlite.Open(filepath.Join(dir, "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(
		&models.Zone{}, &models.Clerk{}, &models.Vehicle{}, &models.Route{},
		&models.DailyEntry{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	entryStore := store.New(db, 48*time.Hour)

	// minimal workbook template with the expected sheet
	tmplPath := filepath.Join(dir, "Report.xlsx")
	tmpl := excelize.NewFile()
	if err := tmpl.SetSheetName("Sheet1", "Report"); err != nil {
		t.Fatalf("rename template sheet: %v", err)
	}
	if err := tmpl.SaveAs(tmplPath); err != nil {
		t.Fatalf("save template: %v", err)
	}
	tmpl.Close()

	log := zap.NewNop()
	reportCfg := config.ReportConfig{
		TemplatePath: tmplPath,
		OutputDir:    filepath.Join(dir, "out"),
	}
	svc := NewReportService(
		entryStore,
		report.NewCompiler(reportCfg, log),
		report.NewRenderer(config.RenderConfig{}, log), // renderer off
		notify.NewNotifier(config.NotifyConfig{}, log),
		log,
	)

	entryHandler := NewEntryHandler(entryStore, svc, log)
	reportHandler := NewReportHandler(svc, reportCfg.OutputDir, log)

	r := gin.New()
	r.POST("/api/preview/:type", entryHandler.Preview)
	r.GET("/api/reports/html/:date", reportHandler.HTMLByDate)
	return r, entryStore
}

const previewBody = `{"date":"2025-08-01","entries":[{
	"date":"2025-08-01","zone":"Zone 2","clerk":"Mary Cheptoo",
	"vehicle":"KYY 002B","route":"Simbi",
	"time_out":"06:45","time_in":"11:30","tare_time":"11:55",
	"fld_wgt":800,"fact_wgt":792,"scorch_kg":8,"quality_pct":90}]}`

func TestPreviewRejectsUnknownType(t *testing.T) {
	r, _ := testRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/preview/docx",
		strings.NewReader(previewBody))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestPreviewSavesEntriesAndStreamsHTML(t *testing.T) {
	r, s := testRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/preview/html",
		strings.NewReader(previewBody))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body %s", w.Code, http.StatusOK, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Errorf("content type = %q, want text/html", ct)
	}
	body := w.Body.String()
	if !strings.Contains(body, "<!DOCTYPE html") {
		t.Error("response is not an html document")
	}
	if !strings.Contains(body, "ZONE 2") {
		t.Error("response does not embed the submitted entry")
	}

	// the preview persisted the entries before rendering
	records, err := s.FetchByDate("2025-08-01")
	if err != nil {
		t.Fatalf("fetch by date: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("stored entries = %d, want 1", len(records))
	}
}

func TestPreviewPDFFallsBackToWorkbook(t *testing.T) {
	r, _ := testRouter(t)

	// the renderer is off, so the pdf preview serves the workbook
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/preview/pdf",
		strings.NewReader(previewBody))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body %s", w.Code, http.StatusOK, w.Body.String())
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("PK")) {
		t.Error("response is not a workbook file")
	}
}

func TestHTMLByDateNoEntries(t *testing.T) {
	r, _ := testRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/reports/html/2025-08-01", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestHTMLByDateRegeneratesFromStore(t *testing.T) {
	r, s := testRouter(t)

	f := func(v float64) *float64 { return &v }
	_, err := s.Insert(&store.EntryInput{
		Date: "2025-08-01", Zone: "Zone 1 Norah", Clerk: "John Kemboi",
		Vehicle: "KXX 001A", Route: "Kapset",
		TimeOut: "06:30", TimeIn: "11:15", TareTime: "11:40",
		FieldWgt: f(1200), FactoryWgt: f(1185.5), ScorchKg: f(12), QualityPct: f(87.5),
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/reports/html/2025-08-01", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body %s", w.Code, http.StatusOK, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "ZONE 1 NORAH") {
		t.Error("dashboard does not embed the stored entry")
	}
}
