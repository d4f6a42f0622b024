package handler

import (
	"net/http"

	"greenfield-reports/internal/store"
	"greenfield-reports/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MetadataHandler serves the label sets and the analysis feed used by
// the selection and dashboard UIs.
type MetadataHandler struct {
	Store *store.Store
	Log   *zap.Logger
}

func NewMetadataHandler(s *store.Store, log *zap.Logger) *MetadataHandler {
	return &MetadataHandler{Store: s, Log: log}
}

// Metadata returns the distinct zone/route/vehicle labels ever seen.
func (h *MetadataHandler) Metadata(c *gin.Context) {
	meta, err := h.Store.DistinctMetadata()
	if err != nil {
		h.Log.Error("metadata query failed", zap.Error(err))
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to derive metadata")
		return
	}

	util.Success(c, util.Response{
		"zones":    meta.Zones,
		"routes":   meta.Routes,
		"vehicles": meta.Vehicles,
	})
}

// Analysis returns the full joined history for trend analysis.
func (h *MetadataHandler) Analysis(c *gin.Context) {
	records, err := h.Store.FetchAll()
	if err != nil {
		h.Log.Error("analysis query failed", zap.Error(err))
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to read history")
		return
	}

	util.Success(c, util.Response{"entries": records})
}
