package report

// Grid is a freshly-allocated cell image of the template regions a
// compilation writes. An unset cell is empty, so "clear before write"
// is the grid's default state: the write-out pass covers every
// candidate cell and empty ones blank whatever the template held.
type Grid struct {
	cells map[cellRef]interface{}
}

type cellRef struct {
	row, col int
}

func newGrid() *Grid {
	return &Grid{cells: make(map[cellRef]interface{})}
}

func (g *Grid) set(row, col int, v interface{}) {
	g.cells[cellRef{row, col}] = v
}

// Value returns the cell value, or nil for an empty cell.
func (g *Grid) Value(row, col int) interface{} {
	return g.cells[cellRef{row, col}]
}

// candidateCells enumerates every cell a compilation may touch: the
// date cell, the union of all zone listing windows, and the summary
// region.
func candidateCells() []cellRef {
	refs := []cellRef{{dateRow, dateCol}}

	for _, label := range zoneLabels {
		start := zoneStartRows[label]
		for r := start; r < start+rowsPerZone; r++ {
			for _, c := range entryColumns {
				refs = append(refs, cellRef{r, c})
			}
		}
	}

	for r := summaryStartRow; r <= summaryEndRow; r++ {
		for c := summaryDateCol; c <= summaryZoneCol0+len(zoneLabels)-1; c++ {
			refs = append(refs, cellRef{r, c})
		}
	}
	return refs
}
