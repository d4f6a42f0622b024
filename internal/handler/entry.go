package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"greenfield-reports/internal/metrics"
	"greenfield-reports/internal/store"
	"greenfield-reports/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// EntryHandler serves the submission, edit and read boundaries.
type EntryHandler struct {
	Store   *store.Store
	Reports *ReportService
	Log     *zap.Logger
}

func NewEntryHandler(s *store.Store, reports *ReportService, log *zap.Logger) *EntryHandler {
	return &EntryHandler{Store: s, Reports: reports, Log: log}
}

type submitReq struct {
	Date    string             `json:"date" binding:"required"`
	Entries []store.EntryInput `json:"entries" binding:"required,min=1"`
}

func validateInput(in *store.EntryInput) error {
	if err := util.ValidateDate(in.Date); err != nil {
		return err
	}
	for _, w := range []*float64{in.FieldWgt, in.FactoryWgt, in.ScorchKg} {
		if w == nil {
			continue // the store reports missing measures precisely
		}
		if err := util.ValidateWeight(*w); err != nil {
			return err
		}
	}
	if in.QualityPct != nil {
		if err := util.ValidateQuality(*in.QualityPct); err != nil {
			return err
		}
	}
	return nil
}

// Submit accepts a day's ordered entry records, persists them, then
// recompiles the report for that date from the authoritative stored
// rows. Rendering and email run in the background; the response
// carries the workbook path.
func (h *EntryHandler) Submit(c *gin.Context) {
	var req submitReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}
	if err := util.ValidateDate(req.Date); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	for i := range req.Entries {
		if err := validateInput(&req.Entries[i]); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
			return
		}
	}

	if !h.persistEntries(c, req.Entries) {
		return
	}

	path, err := h.Reports.Generate(c.Request.Context(), req.Date)
	if err != nil {
		h.Log.Error("report generation failed", zap.String("date", req.Date), zap.Error(err))
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to generate report")
		return
	}

	util.Success(c, util.Response{
		"status": "success",
		"file":   path,
	})
}

// persistEntries inserts each entry and writes the error response on
// failure. Returns true when every row landed.
func (h *EntryHandler) persistEntries(c *gin.Context, entries []store.EntryInput) bool {
	for i := range entries {
		if _, err := h.Store.Insert(&entries[i]); err != nil {
			var verr *store.ValidationError
			if errors.As(err, &verr) {
				util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, verr.Error())
				return false
			}
			h.Log.Error("insert entry failed", zap.Error(err))
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to save entry")
			return false
		}
		metrics.EntriesCreated.Inc()
	}
	return true
}

// Preview persists the submitted entries like Submit, then streams the
// freshly compiled artifact back inline so the caller can inspect it
// before anything is emailed. Accepts "pdf" or "html"; an unavailable
// PDF renderer falls back to the workbook file.
func (h *EntryHandler) Preview(c *gin.Context) {
	kind := strings.ToLower(c.Param("type"))
	if kind != "pdf" && kind != "html" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "preview type must be pdf or html")
		return
	}

	var req submitReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}
	if err := util.ValidateDate(req.Date); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}
	for i := range req.Entries {
		if err := validateInput(&req.Entries[i]); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
			return
		}
	}

	if !h.persistEntries(c, req.Entries) {
		return
	}

	path, err := h.Reports.Preview(c.Request.Context(), req.Date, kind)
	if err != nil {
		h.Log.Error("preview generation failed", zap.String("date", req.Date), zap.Error(err))
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to generate preview")
		return
	}
	c.File(path)
}

// Update overwrites an existing entry within its edit window.
func (h *EntryHandler) Update(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid entry id")
		return
	}

	var in store.EntryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}
	if err := validateInput(&in); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	err = h.Store.Update(uint(id), &in)
	switch {
	case err == nil:
		util.Success(c, util.Response{"status": "success"})
	case errors.Is(err, store.ErrNotFound):
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "entry not found")
	case errors.Is(err, store.ErrEditWindowExpired):
		util.Error(c, http.StatusForbidden, util.CodeEditWindow,
			"edit window ("+h.Store.EditWindow().String()+") has expired")
	default:
		var verr *store.ValidationError
		if errors.As(err, &verr) {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, verr.Error())
			return
		}
		h.Log.Error("update entry failed", zap.Int("id", id), zap.Error(err))
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to update entry")
	}
}

// List returns entries for a date when ?date= is given, otherwise the
// full history.
func (h *EntryHandler) List(c *gin.Context) {
	date := c.Query("date")

	var (
		records []store.EntryRecord
		err     error
	)
	if date != "" {
		if verr := util.ValidateDate(date); verr != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, verr.Error())
			return
		}
		records, err = h.Store.FetchByDate(date)
	} else {
		records, err = h.Store.FetchAll()
	}
	if err != nil {
		h.Log.Error("list entries failed", zap.Error(err))
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to read entries")
		return
	}

	util.Success(c, util.Response{"entries": records})
}

// Get returns one joined entry by id.
func (h *EntryHandler) Get(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid entry id")
		return
	}

	record, err := h.Store.FetchByID(uint(id))
	if errors.Is(err, store.ErrNotFound) {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "entry not found")
		return
	}
	if err != nil {
		h.Log.Error("fetch entry failed", zap.Int("id", id), zap.Error(err))
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to read entry")
		return
	}

	util.Success(c, util.Response{"entry": record})
}
