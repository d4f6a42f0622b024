// Package report compiles a day's weighing entries, plus the full
// history, into the fixed-layout workbook template and its sibling
// artifacts. The compiler holds no persistent state: each invocation
// reads, builds a fresh grid, and writes one workbook per date.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"greenfield-reports/internal/config"
	"greenfield-reports/internal/metrics"
	"greenfield-reports/internal/registry"
	"greenfield-reports/internal/store"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

type Compiler struct {
	cfg config.ReportConfig
	log *zap.Logger
}

func NewCompiler(cfg config.ReportConfig, log *zap.Logger) *Compiler {
	if cfg.SummaryMaxDates <= 0 {
		cfg.SummaryMaxDates = 25
	}
	return &Compiler{cfg: cfg, log: log}
}

// OutputPath is the deterministic workbook location for a date:
// Report_<yyyymmdd>.xlsx in the output directory. Recompiling the same
// date overwrites the prior artifact.
func (c *Compiler) OutputPath(date string) string {
	name := fmt.Sprintf("Report_%s.xlsx", strings.ReplaceAll(date, "-", ""))
	return filepath.Join(c.cfg.OutputDir, name)
}

// matchZoneLabel finds the template label a zone text belongs to.
// The match is tolerant: after normalization, either string may
// contain the other, which absorbs decorative extra words in template
// labels. A containment that splits a trailing number is rejected, so
// "ZONE 2" does not claim entries for "ZONE 20".
func matchZoneLabel(zone string) (string, bool) {
	z := registry.Normalize(zone)
	if z == "" {
		return "", false
	}
	for _, label := range zoneLabels {
		l := registry.Normalize(label)
		if containsLabel(l, z) || containsLabel(z, l) {
			return label, true
		}
	}
	return "", false
}

func containsLabel(haystack, needle string) bool {
	idx := strings.Index(haystack, needle)
	if idx < 0 {
		return false
	}
	if idx > 0 && isDigit(haystack[idx-1]) && isDigit(needle[0]) {
		return false
	}
	end := idx + len(needle)
	if end < len(haystack) && isDigit(haystack[end]) && isDigit(needle[len(needle)-1]) {
		return false
	}
	return true
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// buildGrid projects the day's entries and the historical summary
// onto a fresh grid. Returns the grid and the per-zone running totals
// of factory weight.
func (c *Compiler) buildGrid(date string, entries, history []store.EntryRecord) (*Grid, map[string]float64) {
	g := newGrid()
	g.set(dateRow, dateCol, date)

	// group entries by zone before placement
	sorted := make([]store.EntryRecord, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return registry.Normalize(sorted[i].Zone) < registry.Normalize(sorted[j].Zone)
	})

	cursor := make(map[string]int, len(zoneLabels))
	totals := make(map[string]float64, len(zoneLabels))
	for _, label := range zoneLabels {
		cursor[label] = zoneStartRows[label]
	}

	for _, e := range sorted {
		label, ok := matchZoneLabel(e.Zone)
		if !ok {
			// stays in the store and in historical aggregates, just
			// not in the positional listing
			metrics.UnmatchedZones.Inc()
			c.log.Warn("entry zone matches no template label, dropped from listing",
				zap.String("zone", e.Zone), zap.Uint("entry_id", e.ID))
			continue
		}

		r := cursor[label]
		if r >= zoneStartRows[label]+rowsPerZone {
			metrics.RowOverflows.Inc()
			c.log.Warn("zone row window exceeded, entry spills into rows below",
				zap.String("zone", label), zap.Int("row", r))
		}

		g.set(r, colClerk, e.Clerk)
		g.set(r, colVehicle, e.Vehicle)
		g.set(r, colRoute, e.Route)
		g.set(r, colTimeOut, e.TimeOut)
		g.set(r, colTimeIn, e.TimeIn)
		g.set(r, colFieldWgt, e.FieldWgt)
		g.set(r, colFactoryWgt, e.FactoryWgt)
		g.set(r, colScorch, e.ScorchKg)
		g.set(r, colQuality, e.QualityPct)

		cursor[label]++
		totals[label] += e.FactoryWgt
	}

	c.writeSummary(g, history)
	return g, totals
}

// writeSummary aggregates the full history into a date-by-zone matrix
// of factory weight, keeps the most recent configured number of dates,
// and lays them out ascending in the summary region.
func (c *Compiler) writeSummary(g *Grid, history []store.EntryRecord) {
	sums := make(map[string]map[string]float64) // date -> label -> weight
	for _, e := range history {
		label, ok := matchZoneLabel(e.Zone)
		if !ok {
			continue
		}
		if sums[e.Date] == nil {
			sums[e.Date] = make(map[string]float64, len(zoneLabels))
		}
		sums[e.Date][label] += e.FactoryWgt
	}

	dates := make([]string, 0, len(sums))
	for d := range sums {
		dates = append(dates, d)
	}
	sort.Strings(dates) // ISO dates sort chronologically
	if len(dates) > c.cfg.SummaryMaxDates {
		dates = dates[len(dates)-c.cfg.SummaryMaxDates:]
	}

	for i, d := range dates {
		row := summaryStartRow + i
		g.set(row, summaryDateCol, d)
		for zi, label := range zoneLabels {
			g.set(row, summaryZoneCol0+zi, sums[d][label])
		}
	}
}

// Compile builds the grid for a date and writes it into the workbook
// template, saving the result under the date-keyed output path. It
// only reads entry data; concurrent compilations of the same date must
// be serialized by the caller, since the template write is
// clear-then-fill and not atomic.
func (c *Compiler) Compile(date string, entries, history []store.EntryRecord) (string, error) {
	started := time.Now()

	grid, totals := c.buildGrid(date, entries, history)

	f, err := excelize.OpenFile(c.cfg.TemplatePath)
	if err != nil {
		return "", fmt.Errorf("open template %s: %w", c.cfg.TemplatePath, err)
	}
	defer f.Close()

	// blank every candidate cell first so rows that receive fewer
	// entries this time don't keep stale values from the template
	for _, ref := range candidateCells() {
		axis, aerr := excelize.CoordinatesToCellName(ref.col, ref.row)
		if aerr != nil {
			return "", fmt.Errorf("cell %d,%d: %w", ref.col, ref.row, aerr)
		}
		if err := f.SetCellValue(sheetName, axis, grid.Value(ref.row, ref.col)); err != nil {
			return "", fmt.Errorf("write cell %s: %w", axis, err)
		}
	}

	// overflow rows land outside the candidate regions; cover them too
	for ref, v := range grid.cells {
		axis, aerr := excelize.CoordinatesToCellName(ref.col, ref.row)
		if aerr != nil {
			return "", fmt.Errorf("cell %d,%d: %w", ref.col, ref.row, aerr)
		}
		if err := f.SetCellValue(sheetName, axis, v); err != nil {
			return "", fmt.Errorf("write cell %s: %w", axis, err)
		}
	}

	if err := os.MkdirAll(c.cfg.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	out := c.OutputPath(date)
	if err := f.SaveAs(out); err != nil {
		return "", fmt.Errorf("save report %s: %w", out, err)
	}

	metrics.ReportsCompiled.Inc()
	metrics.CompileDuration.Observe(time.Since(started).Seconds())
	c.log.Info("report compiled",
		zap.String("date", date),
		zap.String("path", out),
		zap.Int("entries", len(entries)),
		zap.Any("zone_totals", totals))
	return out, nil
}
