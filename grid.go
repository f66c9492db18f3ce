package cellgraph

import "golang.org/x/exp/slices"

const (
	defaultColWidth  float32 = 100.0
	defaultRowHeight float32 = 24.0
	sizeEpsilon      float32 = 0.01
)

// Cell is the grid's storage unit: a computed value, the original formula
// text (if any, kept verbatim), and optional formatting.
type Cell struct {
	Value   CellValue
	Formula *string
	Format  *CellFormat
}

// Grid is a bounded rows x cols rectangle backed by sparse columnar
// storage: a cell absent from the map is implicitly Empty, formula-less,
// and unformatted.
type Grid struct {
	rows, cols int

	// columns maps column -> row -> cell. Columnar layout mirrors the
	// original engine's column-major access pattern for range scans.
	columns map[int]map[int]*Cell

	colWidths        map[int]float32
	rowHeights       map[int]float32
	defaultColWidth  float32
	defaultRowHeight float32
}

// NewGrid constructs an empty grid with the given fixed extent.
func NewGrid(rows, cols int) *Grid {
	return &Grid{
		rows:             rows,
		cols:             cols,
		columns:          make(map[int]map[int]*Cell),
		colWidths:        make(map[int]float32),
		rowHeights:       make(map[int]float32),
		defaultColWidth:  defaultColWidth,
		defaultRowHeight: defaultRowHeight,
	}
}

// Rows and Cols report the grid's fixed extent.
func (g *Grid) Rows() int { return g.rows }
func (g *Grid) Cols() int { return g.cols }

func (g *Grid) checkBounds(ref CellRef) error {
	if ref.Row < 0 || ref.Row >= g.rows || ref.Col < 0 || ref.Col >= g.cols {
		return newOutOfBoundsError(ref)
	}
	return nil
}

func (g *Grid) cellAt(ref CellRef) *Cell {
	col, ok := g.columns[ref.Col]
	if !ok {
		return nil
	}
	return col[ref.Row]
}

// Get returns a snapshot of the cell at ref, or ok=false if absent. The
// returned Cell's Format, if any, is a deep copy owned by the caller.
func (g *Grid) Get(ref CellRef) (Cell, bool) {
	c := g.cellAt(ref)
	if c == nil {
		return Cell{}, false
	}
	return Cell{Value: c.Value, Formula: c.Formula, Format: c.Format.clone()}, true
}

func (g *Grid) ensureColumn(col int) map[int]*Cell {
	m, ok := g.columns[col]
	if !ok {
		m = make(map[int]*Cell)
		g.columns[col] = m
	}
	return m
}

// removeIfEmpty deletes the stored cell at ref if it now carries no value,
// formula, or format, and prunes an emptied column map. This is the
// "absence means Empty" invariant from spec §3.
func (g *Grid) removeIfEmpty(ref CellRef) {
	col, ok := g.columns[ref.Col]
	if !ok {
		return
	}
	c, ok := col[ref.Row]
	if !ok {
		return
	}
	if c.Value.Kind == KindEmpty && c.Formula == nil && c.Format == nil {
		delete(col, ref.Row)
		if len(col) == 0 {
			delete(g.columns, ref.Col)
		}
	}
}

// SetValue sets a raw (non-formula) value on ref. Setting Empty on a cell
// with no formula and no format removes the cell entirely.
func (g *Grid) SetValue(ref CellRef, value CellValue) error {
	if err := g.checkBounds(ref); err != nil {
		return err
	}
	if value.Kind == KindEmpty {
		if col, ok := g.columns[ref.Col]; ok {
			if c, ok := col[ref.Row]; ok {
				c.Value = Empty
				c.Formula = nil
				g.removeIfEmpty(ref)
			}
		}
		return nil
	}
	col := g.ensureColumn(ref.Col)
	c, ok := col[ref.Row]
	if !ok {
		c = &Cell{}
		col[ref.Row] = c
	}
	c.Value = value
	c.Formula = nil
	return nil
}

// SetFormula records raw as the cell's formula text and resets its value
// to Empty; the evaluator overwrites the value via SetComputedValue.
func (g *Grid) SetFormula(ref CellRef, raw string) error {
	if err := g.checkBounds(ref); err != nil {
		return err
	}
	col := g.ensureColumn(ref.Col)
	c, ok := col[ref.Row]
	if !ok {
		c = &Cell{}
		col[ref.Row] = c
	}
	rawCopy := raw
	c.Formula = &rawCopy
	c.Value = Empty
	return nil
}

// ClearFormula drops a cell back to NoFormula (re-edit with a literal),
// removing its formula text without touching the current value.
func (g *Grid) ClearFormula(ref CellRef) error {
	if err := g.checkBounds(ref); err != nil {
		return err
	}
	col, ok := g.columns[ref.Col]
	if !ok {
		return nil
	}
	c, ok := col[ref.Row]
	if !ok {
		return nil
	}
	c.Formula = nil
	g.removeIfEmpty(ref)
	return nil
}

// SetComputedValue writes an evaluated result without touching the
// cell's stored formula text. No-op if the cell is absent (a dangling
// formula reference should not materialize a cell).
func (g *Grid) SetComputedValue(ref CellRef, value CellValue) error {
	if err := g.checkBounds(ref); err != nil {
		return err
	}
	c := g.cellAt(ref)
	if c == nil {
		return nil
	}
	c.Value = value
	return nil
}

// SetFormat merges patch into ref's existing format (creating the cell if
// necessary), per-field: a present field overwrites, an absent one is
// preserved.
func (g *Grid) SetFormat(ref CellRef, patch *CellFormat) error {
	if err := g.checkBounds(ref); err != nil {
		return err
	}
	col := g.ensureColumn(ref.Col)
	c, ok := col[ref.Row]
	if !ok {
		c = &Cell{}
		col[ref.Row] = c
	}
	if c.Format == nil {
		c.Format = &CellFormat{}
	}
	patch.mergeInto(c.Format)
	return nil
}

// ApplyFormatToRange applies SetFormat to every cell in the inclusive
// rectangle, clamped to the grid's bounds.
func (g *Grid) ApplyFormatToRange(r0, c0, r1, c1 int, patch *CellFormat) error {
	r1 = min(r1, g.rows-1)
	c1 = min(c1, g.cols-1)
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			if err := g.SetFormat(CellRef{Row: row, Col: col}, patch); err != nil {
				return err
			}
		}
	}
	return nil
}

// CellData is a denormalized, owned view of one cell for transfer to a
// host UI: coordinates plus the cell's display string, formula, and
// format.
type CellData struct {
	Row     int         `json:"row"`
	Col     int         `json:"col"`
	Value   string      `json:"value"`
	Formula *string     `json:"formula,omitempty"`
	Format  *CellFormat `json:"format,omitempty"`
}

// GetRange returns every non-empty cell in the inclusive rectangle,
// ordered (row, col) lexicographically for reproducible diffs.
func (g *Grid) GetRange(r0, c0, r1, c1 int) []CellData {
	r1 = min(r1, g.rows-1)
	c1 = min(c1, g.cols-1)

	var out []CellData
	for col := c0; col <= c1; col++ {
		rowMap, ok := g.columns[col]
		if !ok {
			continue
		}
		for row, c := range rowMap {
			if row < r0 || row > r1 {
				continue
			}
			out = append(out, CellData{
				Row:     row,
				Col:     col,
				Value:   c.Value.Display(),
				Formula: c.Formula,
				Format:  c.Format.clone(),
			})
		}
	}
	slices.SortFunc(out, func(a, b CellData) bool {
		if a.Row != b.Row {
			return a.Row < b.Row
		}
		return a.Col < b.Col
	})
	return out
}

// CellEntry is a raw (ref, cell) pair: unlike CellData's display string,
// Value keeps its tagged CellValue so a persistence format can round-trip
// Error values, ambiguous Text ("TRUE", "3.5") and Boolean cells exactly.
type CellEntry struct {
	Ref     CellRef
	Value   CellValue
	Formula *string
	Format  *CellFormat
}

// AllCells returns every non-empty cell in the grid, ordered (row, col)
// lexicographically, carrying each cell's raw CellValue.
func (g *Grid) AllCells() []CellEntry {
	var out []CellEntry
	for col, rowMap := range g.columns {
		for row, c := range rowMap {
			out = append(out, CellEntry{
				Ref:     CellRef{Row: row, Col: col},
				Value:   c.Value,
				Formula: c.Formula,
				Format:  c.Format.clone(),
			})
		}
	}
	slices.SortFunc(out, func(a, b CellEntry) bool {
		if a.Ref.Row != b.Ref.Row {
			return a.Ref.Row < b.Ref.Row
		}
		return a.Ref.Col < b.Ref.Col
	})
	return out
}

// ColWidthOverrides and RowHeightOverrides return a copy of every
// column/row's non-default sizing, for persistence.
func (g *Grid) ColWidthOverrides() map[int]float32 {
	out := make(map[int]float32, len(g.colWidths))
	for k, v := range g.colWidths {
		out[k] = v
	}
	return out
}

func (g *Grid) RowHeightOverrides() map[int]float32 {
	out := make(map[int]float32, len(g.rowHeights))
	for k, v := range g.rowHeights {
		out[k] = v
	}
	return out
}

// DefaultColWidth and DefaultRowHeight report the grid's fallback sizing.
func (g *Grid) DefaultColWidth() float32  { return g.defaultColWidth }
func (g *Grid) DefaultRowHeight() float32 { return g.defaultRowHeight }

// Count returns the number of non-empty cells in the grid.
func (g *Grid) Count() int {
	n := 0
	for _, col := range g.columns {
		n += len(col)
	}
	return n
}

// ColWidth returns the width of col, or the grid's default if unset.
func (g *Grid) ColWidth(col int) float32 {
	if w, ok := g.colWidths[col]; ok {
		return w
	}
	return g.defaultColWidth
}

// SetColWidth sets col's width; a width equal to the default (within a
// small epsilon) removes the override, keeping sizing storage sparse the
// same way cell storage is sparse.
func (g *Grid) SetColWidth(col int, width float32) {
	if absDiff32(width, g.defaultColWidth) < sizeEpsilon {
		delete(g.colWidths, col)
		return
	}
	g.colWidths[col] = width
}

// RowHeight returns the height of row, or the grid's default if unset.
func (g *Grid) RowHeight(row int) float32 {
	if h, ok := g.rowHeights[row]; ok {
		return h
	}
	return g.defaultRowHeight
}

// SetRowHeight sets row's height, snapping to the default as SetColWidth does.
func (g *Grid) SetRowHeight(row int, height float32) {
	if absDiff32(height, g.defaultRowHeight) < sizeEpsilon {
		delete(g.rowHeights, row)
		return
	}
	g.rowHeights[row] = height
}

func absDiff32(a, b float32) float32 {
	if a > b {
		return a - b
	}
	return b - a
}
