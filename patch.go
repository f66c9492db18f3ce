package cellgraph

// CellUpdate is one cell's part of a batch edit: either Value or Formula
// is set, never both (a literal edit clears any formula; a formula edit
// clears any literal, per the cell's NoFormula/Parsed lifecycle).
type CellUpdate struct {
	Row     int     `json:"row"`
	Col     int     `json:"col"`
	Value   *string `json:"value,omitempty"`
	Formula *string `json:"formula,omitempty"`
}

// GridPatch is a batch of cell updates applied atomically with respect to
// recalculation: every update is written to the grid first, then the
// whole batch's affected cells are recomputed together.
type GridPatch struct {
	Updates []CellUpdate
}

// GridDiff is the minimal set of changed cells reported back to a host UI
// after a patch or edit, so it can repaint only what moved.
type GridDiff struct {
	Cells []CellData
}

// diffFromCells builds a GridDiff from a set of CellRefs, skipping any
// that are absent from the grid (an edit can affect a cell that ends up
// Empty, which carries no CellData to report).
func diffFromCells(grid *Grid, refs []CellRef) GridDiff {
	var cells []CellData
	for _, ref := range refs {
		c, ok := grid.Get(ref)
		if !ok {
			continue
		}
		cells = append(cells, CellData{
			Row:     ref.Row,
			Col:     ref.Col,
			Value:   c.Value.Display(),
			Formula: c.Formula,
			Format:  c.Format,
		})
	}
	return GridDiff{Cells: cells}
}

// appendUnique appends ref to refs if it is not already present.
func appendUnique(refs []CellRef, ref CellRef) []CellRef {
	for _, existing := range refs {
		if existing == ref {
			return refs
		}
	}
	return append(refs, ref)
}
