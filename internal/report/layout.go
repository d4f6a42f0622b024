package report

// The template geometry is fixed: one workbook, one "Report" sheet,
// with a positional per-zone listing and a trailing date-by-zone
// summary table. Rows and columns below are 1-based like the sheet.

const sheetName = "Report"

// report date cell (F4)
const (
	dateRow = 4
	dateCol = 6
)

// zoneLabels in template order; zoneStartRows maps each label to the
// first row of its listing region.
var zoneLabels = []string{
	"ZONE 1 NORAH",
	"ZONE 2",
	"ZONE 3 DENNIS",
	"ZONE 4 WESTONE",
}

var zoneStartRows = map[string]int{
	"ZONE 1 NORAH":   6,
	"ZONE 2":         9,
	"ZONE 3 DENNIS":  15,
	"ZONE 4 WESTONE": 21,
}

// rowsPerZone is the row window the template reserves per zone. A zone
// with more entries than this spills into the rows below it.
const rowsPerZone = 4

// entry columns within a listing row
const (
	colClerk      = 5
	colVehicle    = 7
	colRoute      = 8
	colTimeOut    = 9
	colTimeIn     = 10
	colFieldWgt   = 11
	colFactoryWgt = 12
	colScorch     = 16
	colQuality    = 17
)

// entryColumns is the set of columns cleared and written per listing
// row.
var entryColumns = []int{
	colClerk, colVehicle, colRoute, colTimeOut, colTimeIn,
	colFieldWgt, colFactoryWgt, colScorch, colQuality,
}

// summary region: one row per date, date in column C then one column
// per zone in template order. Sized to the maximum history window so
// shrinking history never leaves stale trailing rows.
const (
	summaryStartRow = 30
	summaryEndRow   = 55
	summaryDateCol  = 3
	summaryZoneCol0 = 4
)
