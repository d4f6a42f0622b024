package router

import (
	"greenfield-reports/internal/config"
	"greenfield-reports/internal/handler"
	"greenfield-reports/internal/middleware"
	"greenfield-reports/internal/notify"
	"greenfield-reports/internal/report"
	"greenfield-reports/internal/store"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SetupRouter configures the Gin engine and all API routes.
func SetupRouter(cfg *config.Config, db *gorm.DB, log *zap.Logger) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(middleware.AccessLog(log), gin.Recovery())

	// the browser UI is served separately and calls in cross-origin
	r.Use(cors.Default())

	entryStore := store.New(db, store.EditWindowFromHours(cfg.Report.EditWindowHours))
	compiler := report.NewCompiler(cfg.Report, log)
	renderer := report.NewRenderer(cfg.Render, log)
	notifier := notify.NewNotifier(cfg.Notify, log)

	reportService := handler.NewReportService(entryStore, compiler, renderer, notifier, log)
	entryHandler := handler.NewEntryHandler(entryStore, reportService, log)
	reportHandler := handler.NewReportHandler(reportService, cfg.Report.OutputDir, log)
	metadataHandler := handler.NewMetadataHandler(entryStore, log)

	api := r.Group("/api")

	api.POST("/submit", entryHandler.Submit)
	api.POST("/preview/:type", entryHandler.Preview)
	api.GET("/entries", entryHandler.List)
	api.GET("/entries/:id", entryHandler.Get)
	api.PUT("/entries/:id", entryHandler.Update)

	api.GET("/metadata", metadataHandler.Metadata)
	api.GET("/analysis", metadataHandler.Analysis)

	api.GET("/reports", reportHandler.List)
	api.GET("/reports/html/:date", reportHandler.HTMLByDate)
	api.GET("/reports/:filename", reportHandler.Download)
	api.POST("/reports/send/:date", reportHandler.Send)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}
