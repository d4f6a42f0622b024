package handler

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"greenfield-reports/internal/notify"
	"greenfield-reports/internal/report"
	"greenfield-reports/internal/store"
	"greenfield-reports/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ReportService ties the compiler, renderer and notifier together:
// compile synchronously, then render the PDF and send the email as a
// detached background task. A render failure degrades the artifact set
// to the workbook and HTML; it never rolls anything back.
type ReportService struct {
	Store    *store.Store
	Compiler *report.Compiler
	Renderer *report.Renderer
	Notifier notify.Notifier
	Log      *zap.Logger
}

func NewReportService(s *store.Store, c *report.Compiler, r *report.Renderer, n notify.Notifier, log *zap.Logger) *ReportService {
	return &ReportService{Store: s, Compiler: c, Renderer: r, Notifier: n, Log: log}
}

// Generate compiles the date's report from the stored rows and kicks
// off rendering + notification in the background. Returns the workbook
// path.
func (s *ReportService) Generate(ctx context.Context, date string) (string, error) {
	entries, err := s.Store.FetchByDate(date)
	if err != nil {
		return "", err
	}
	history, err := s.Store.FetchAll()
	if err != nil {
		return "", err
	}

	workbook, err := s.Compiler.Compile(date, entries, history)
	if err != nil {
		return "", err
	}

	htmlPath, err := s.Compiler.WriteHTML(date, entries)
	if err != nil {
		// the workbook is already written; an HTML failure only
		// shrinks the attachment set
		s.Log.Warn("html report failed", zap.String("date", date), zap.Error(err))
		htmlPath = ""
	}

	// detach from the request: rendering waits on an external process
	go s.renderAndNotify(date, workbook, htmlPath)

	return workbook, nil
}

// Preview compiles the date's artifacts in-request and returns the
// path of the requested kind. Unlike Generate nothing runs in the
// background and no email goes out; when PDF rendering is unavailable
// the workbook path comes back instead.
func (s *ReportService) Preview(ctx context.Context, date, kind string) (string, error) {
	entries, err := s.Store.FetchByDate(date)
	if err != nil {
		return "", err
	}
	history, err := s.Store.FetchAll()
	if err != nil {
		return "", err
	}

	workbook, err := s.Compiler.Compile(date, entries, history)
	if err != nil {
		return "", err
	}

	if kind == "html" {
		return s.Compiler.WriteHTML(date, entries)
	}

	pdf, err := s.Renderer.Render(ctx, workbook)
	if err != nil {
		if !errors.Is(err, report.ErrRenderingUnavailable) {
			s.Log.Warn("render error", zap.String("date", date), zap.Error(err))
		}
		return workbook, nil
	}
	return pdf, nil
}

func (s *ReportService) renderAndNotify(date, workbook, htmlPath string) {
	ctx := context.Background()

	attachments := make([]string, 0, 2)
	pdf, err := s.Renderer.Render(ctx, workbook)
	if err != nil {
		if !errors.Is(err, report.ErrRenderingUnavailable) {
			s.Log.Warn("render error", zap.String("date", date), zap.Error(err))
		}
		// degraded: attach the workbook itself
		attachments = append(attachments, workbook)
	} else {
		attachments = append(attachments, pdf)
	}
	if htmlPath != "" {
		attachments = append(attachments, htmlPath)
	}

	if err := s.Notifier.SendReport(ctx, date, attachments); err != nil {
		s.Log.Warn("report notification failed", zap.String("date", date), zap.Error(err))
	}
}

// ReportHandler serves the report artifact boundary: listing, download
// and on-demand re-send.
type ReportHandler struct {
	Service   *ReportService
	OutputDir string
	Log       *zap.Logger
}

func NewReportHandler(service *ReportService, outputDir string, log *zap.Logger) *ReportHandler {
	return &ReportHandler{Service: service, OutputDir: outputDir, Log: log}
}

var artifactExts = map[string]bool{
	".pdf":  true,
	".xlsx": true,
	".html": true,
}

// List returns compiled report artifacts, newest first.
func (h *ReportHandler) List(c *gin.Context) {
	dirEntries, err := os.ReadDir(h.OutputDir)
	if os.IsNotExist(err) {
		util.Success(c, util.Response{"reports": []string{}})
		return
	}
	if err != nil {
		h.Log.Error("list reports failed", zap.Error(err))
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list reports")
		return
	}

	names := make([]string, 0, len(dirEntries))
	for _, e := range dirEntries {
		if e.IsDir() {
			continue
		}
		if artifactExts[strings.ToLower(filepath.Ext(e.Name()))] {
			names = append(names, e.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))

	util.Success(c, util.Response{"reports": names})
}

// Download serves one artifact by filename.
func (h *ReportHandler) Download(c *gin.Context) {
	// base-name only, no traversal out of the output dir
	name := filepath.Base(c.Param("filename"))
	if name == "." || name == "/" || !artifactExts[strings.ToLower(filepath.Ext(name))] {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid report filename")
		return
	}

	path := filepath.Join(h.OutputDir, name)
	if _, err := os.Stat(path); err != nil {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "report not found")
		return
	}
	c.FileAttachment(path, name)
}

// HTMLByDate regenerates the interactive dashboard for a date straight
// from the stored rows and serves it inline.
func (h *ReportHandler) HTMLByDate(c *gin.Context) {
	date := c.Param("date")
	if err := util.ValidateDate(date); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	entries, err := h.Service.Store.FetchByDate(date)
	if err != nil {
		h.Log.Error("fetch entries failed", zap.String("date", date), zap.Error(err))
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to read entries")
		return
	}
	if len(entries) == 0 {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "no data for this date")
		return
	}

	path, err := h.Service.Compiler.WriteHTML(date, entries)
	if err != nil {
		h.Log.Error("html report failed", zap.String("date", date), zap.Error(err))
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to generate report")
		return
	}
	c.File(path)
}

// Send regenerates a date's report and emails the artifacts.
func (h *ReportHandler) Send(c *gin.Context) {
	date := c.Param("date")
	if err := util.ValidateDate(date); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	entries, err := h.Service.Store.FetchByDate(date)
	if err != nil {
		h.Log.Error("fetch entries failed", zap.String("date", date), zap.Error(err))
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to read entries")
		return
	}
	if len(entries) == 0 {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "no data for this date")
		return
	}

	path, err := h.Service.Generate(c.Request.Context(), date)
	if err != nil {
		h.Log.Error("report generation failed", zap.String("date", date), zap.Error(err))
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to generate report")
		return
	}

	util.Success(c, util.Response{
		"status": "success",
		"file":   path,
	})
}
