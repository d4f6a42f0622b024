package report

import (
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"greenfield-reports/internal/store"
)

// WriteHTML renders the day's entries into a self-contained
// interactive dashboard next to the workbook artifact and returns its
// path.
func (c *Compiler) WriteHTML(date string, entries []store.EntryRecord) (string, error) {
	raw, err := json.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("encode entries: %w", err)
	}

	if err := os.MkdirAll(c.cfg.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	out := filepath.Join(c.cfg.OutputDir, fmt.Sprintf("Report_%s.html", date))

	f, err := os.Create(out)
	if err != nil {
		return "", fmt.Errorf("create html report: %w", err)
	}
	defer f.Close()

	data := struct {
		Date string
		Rows template.JS
	}{
		Date: date,
		Rows: template.JS(raw),
	}
	if err := htmlReport.Execute(f, data); err != nil {
		return "", fmt.Errorf("render html report: %w", err)
	}
	return out, nil
}

var htmlReport = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>GL Collection Report - {{.Date}}</title>
<style>
  body { background: #020617; color: #e2e8f0; font-family: system-ui, sans-serif; margin: 0; padding: 2rem; }
  .wrap { max-width: 70rem; margin: 0 auto; }
  header { display: flex; justify-content: space-between; align-items: flex-end; border-bottom: 1px solid #1e293b; padding-bottom: 1rem; }
  h1 { margin: 0; font-size: 1.6rem; }
  .sub { color: #64748b; text-transform: uppercase; letter-spacing: .1em; font-size: .7rem; }
  .brand { color: #22c55e; font-weight: 700; }
  .cards { display: grid; grid-template-columns: repeat(auto-fit, minmax(10rem, 1fr)); gap: 1rem; margin: 1.5rem 0; }
  .card { background: rgba(255,255,255,.03); border: 1px solid rgba(255,255,255,.05); border-radius: .75rem; padding: 1rem; }
  .card .label { color: #64748b; font-size: .7rem; text-transform: uppercase; }
  .card .value { font-size: 1.6rem; font-weight: 700; }
  input, select { background: rgba(0,0,0,.3); border: 1px solid rgba(255,255,255,.1); color: #fff; padding: .4rem .6rem; border-radius: .4rem; margin-right: .5rem; }
  table { width: 100%; border-collapse: collapse; font-size: .85rem; margin-top: 1rem; }
  th { text-align: left; color: #64748b; text-transform: uppercase; font-size: .7rem; padding: .6rem; cursor: pointer; }
  td { padding: .6rem; border-top: 1px solid rgba(255,255,255,.06); }
  td.num { text-align: right; }
  .wgt { color: #4ade80; font-weight: 700; }
</style>
</head>
<body>
<div class="wrap">
  <header>
    <div>
      <h1>GL Collection Report</h1>
      <div class="sub">{{.Date}}</div>
    </div>
    <div>
      <div class="brand">GREENFIELDS TEA</div>
      <div class="sub">Interactive Digital Dashboard</div>
    </div>
  </header>

  <div>
    <select id="zoneFilter" onchange="render()"><option value="">All Zones</option></select>
    <select id="routeFilter" onchange="render()"><option value="">All Routes</option></select>
    <input type="text" id="search" onkeyup="render()" placeholder="Search clerk, vehicle...">
  </div>

  <div class="cards">
    <div class="card"><div class="label">Total Weight (KG)</div><div class="value" id="totalWeight">0</div></div>
    <div class="card"><div class="label">Avg Quality (%)</div><div class="value" id="avgQuality">0</div></div>
    <div class="card"><div class="label">Routes Active</div><div class="value" id="totalRoutes">0</div></div>
    <div class="card"><div class="label">Entries</div><div class="value" id="totalCount">0</div></div>
  </div>

  <table>
    <thead><tr>
      <th onclick="sortBy('zone')">Zone</th>
      <th onclick="sortBy('route')">Route</th>
      <th onclick="sortBy('vehicle')">Vehicle</th>
      <th onclick="sortBy('clerk')">Clerk</th>
      <th onclick="sortBy('fact_wgt')">Weight (KG)</th>
      <th onclick="sortBy('quality_pct')">Quality %</th>
    </tr></thead>
    <tbody id="rows"></tbody>
  </table>
</div>

<script>
const rawData = {{.Rows}};
let sortField = 'zone', sortAsc = true;

function uniq(field) {
  return [...new Set(rawData.map(d => d[field]).filter(Boolean))].sort();
}

function init() {
  for (const [id, field] of [['zoneFilter', 'zone'], ['routeFilter', 'route']]) {
    const sel = document.getElementById(id);
    uniq(field).forEach(v => {
      const o = document.createElement('option');
      o.value = o.textContent = v;
      sel.appendChild(o);
    });
  }
  render();
}

function sortBy(field) {
  if (sortField === field) sortAsc = !sortAsc; else { sortField = field; sortAsc = true; }
  render();
}

function render() {
  const z = document.getElementById('zoneFilter').value;
  const r = document.getElementById('routeFilter').value;
  const s = document.getElementById('search').value.toLowerCase();

  const rows = rawData.filter(d =>
    (!z || d.zone === z) && (!r || d.route === r) &&
    (!s || (d.clerk || '').toLowerCase().includes(s) || (d.vehicle || '').toLowerCase().includes(s)));

  rows.sort((a, b) => {
    let va = a[sortField], vb = b[sortField];
    if (typeof va === 'number' && typeof vb === 'number') return sortAsc ? va - vb : vb - va;
    va = String(va || '').toLowerCase(); vb = String(vb || '').toLowerCase();
    return sortAsc ? va.localeCompare(vb) : vb.localeCompare(va);
  });

  const totalWgt = rows.reduce((t, d) => t + (d.fact_wgt || 0), 0);
  const avgQual = rows.length ? rows.reduce((t, d) => t + (d.quality_pct || 0), 0) / rows.length : 0;
  document.getElementById('totalWeight').textContent = totalWgt.toFixed(1);
  document.getElementById('avgQuality').textContent = avgQual.toFixed(1);
  document.getElementById('totalRoutes').textContent = new Set(rows.map(d => d.route)).size;
  document.getElementById('totalCount').textContent = rows.length;

  document.getElementById('rows').innerHTML = rows.map(d =>
    '<tr><td>' + d.zone + '</td><td>' + d.route + '</td><td>' + d.vehicle + '</td><td>' + d.clerk +
    '</td><td class="num wgt">' + (d.fact_wgt || 0).toFixed(1) + '</td><td class="num">' + (d.quality_pct || 0) + '%</td></tr>').join('');
}

document.addEventListener('DOMContentLoaded', init);
</script>
</body>
</html>
`))
