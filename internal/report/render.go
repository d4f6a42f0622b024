package report

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"greenfield-reports/internal/config"
	"greenfield-reports/internal/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrRenderingUnavailable means the external PDF renderer could not be
// invoked or failed. Callers fall back to the workbook artifact.
var ErrRenderingUnavailable = errors.New("rendering collaborator unavailable")

// Renderer drives the external spreadsheet-to-PDF converter. The
// conversion can take several seconds (the external process reloads
// and recalculates the workbook), so callers run it in the background
// with the context controlling cancellation on top of the configured
// timeout.
type Renderer struct {
	cfg config.RenderConfig
	log *zap.Logger
}

func NewRenderer(cfg config.RenderConfig, log *zap.Logger) *Renderer {
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = 60
	}
	return &Renderer{cfg: cfg, log: log}
}

// Render converts a saved workbook to a PDF at the sibling path.
// A failure never touches the already-written workbook.
func (r *Renderer) Render(ctx context.Context, workbookPath string) (string, error) {
	if !r.cfg.Enabled || r.cfg.ConverterPath == "" {
		return "", ErrRenderingUnavailable
	}

	jobID := uuid.NewString()
	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.TimeoutSeconds)*time.Second)
	defer cancel()

	outDir := filepath.Dir(workbookPath)
	cmd := exec.CommandContext(ctx, r.cfg.ConverterPath,
		"--headless", "--convert-to", "pdf", "--outdir", outDir, workbookPath)

	r.log.Info("render started",
		zap.String("job", jobID), zap.String("workbook", workbookPath))

	out, err := cmd.CombinedOutput()
	if err != nil {
		metrics.RenderFailures.Inc()
		r.log.Warn("render failed",
			zap.String("job", jobID),
			zap.ByteString("output", out),
			zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrRenderingUnavailable, err)
	}

	pdfPath := strings.TrimSuffix(workbookPath, filepath.Ext(workbookPath)) + ".pdf"
	if _, err := os.Stat(pdfPath); err != nil {
		metrics.RenderFailures.Inc()
		return "", fmt.Errorf("%w: converter produced no output at %s", ErrRenderingUnavailable, pdfPath)
	}

	r.log.Info("render complete",
		zap.String("job", jobID), zap.String("pdf", pdfPath))
	return pdfPath, nil
}
