package cellgraph

import (
	"encoding/json"
	"strings"
)

// Engine is the public façade of the calculation core: a Grid plus the
// DependencyGraph that tracks formula relationships between its cells.
// It is the only type a host binding needs to construct.
type Engine struct {
	grid  *Grid
	graph *DependencyGraph
}

// New creates an engine over a fixed rows x cols grid.
func New(rows, cols int) *Engine {
	return &Engine{
		grid:  NewGrid(rows, cols),
		graph: newDependencyGraph(),
	}
}

// SetCell assigns raw to ref: a leading '=' parses it as a formula
// (replacing any formula previously on ref), otherwise it is parsed as a
// literal value via ParseValue. Returns the diff of every cell recomputed
// as a result, including ref itself.
func (e *Engine) SetCell(ref CellRef, raw string) (GridDiff, error) {
	if err := e.grid.checkBounds(ref); err != nil {
		return GridDiff{}, err
	}

	if strings.HasPrefix(raw, "=") {
		formula, err := ParseFormula(raw)
		if err != nil {
			return GridDiff{}, err
		}
		for _, dep := range formula.Dependencies {
			if err := e.grid.checkBounds(dep); err != nil {
				return GridDiff{}, err
			}
		}
		if err := e.grid.SetFormula(ref, raw); err != nil {
			return GridDiff{}, err
		}
		e.graph.RegisterFormula(ref, formula)
	} else {
		e.graph.Unregister(ref)
		if err := e.grid.SetValue(ref, ParseValue(raw)); err != nil {
			return GridDiff{}, err
		}
	}

	affected, err := e.graph.Recalculate(e.grid, ref)
	if err != nil {
		return GridDiff{}, err
	}
	affected = appendUnique(affected, ref)
	return diffFromCells(e.grid, affected), nil
}

// GetCell returns a snapshot of the cell at ref.
func (e *Engine) GetCell(ref CellRef) (Cell, bool) {
	return e.grid.Get(ref)
}

// GetRange returns every non-empty cell in the inclusive rectangle.
func (e *Engine) GetRange(r0, c0, r1, c1 int) []CellData {
	return e.grid.GetRange(r0, c0, r1, c1)
}

// ApplyFormat merges patch into every cell in the inclusive rectangle.
func (e *Engine) ApplyFormat(r0, c0, r1, c1 int, patch *CellFormat) error {
	return e.grid.ApplyFormatToRange(r0, c0, r1, c1, patch)
}

// ColWidth, SetColWidth, RowHeight, and SetRowHeight expose the grid's
// column/row sizing, unchanged by recalculation.
func (e *Engine) ColWidth(col int) float32             { return e.grid.ColWidth(col) }
func (e *Engine) SetColWidth(col int, width float32)   { e.grid.SetColWidth(col, width) }
func (e *Engine) RowHeight(row int) float32            { return e.grid.RowHeight(row) }
func (e *Engine) SetRowHeight(row int, height float32) { e.grid.SetRowHeight(row, height) }

// CellCount returns the number of non-empty cells in the grid.
func (e *Engine) CellCount() int { return e.grid.Count() }

// ApplyPatch applies a batch of cell updates, then recalculates from each
// touched cell in turn, returning the combined diff. Every touched cell's
// affected set is checked for cycles before the first recalculation, so
// a circular reference introduced anywhere in the batch aborts the whole
// patch: updates already written to the grid are not rolled back, but no
// downstream computed value is disturbed, matching a single SetCell's
// atomicity guarantee extended to the batch.
func (e *Engine) ApplyPatch(patch GridPatch) (GridDiff, error) {
	var touched []CellRef
	for _, update := range patch.Updates {
		ref := CellRef{Row: update.Row, Col: update.Col}
		if err := e.grid.checkBounds(ref); err != nil {
			return GridDiff{}, err
		}

		switch {
		case update.Formula != nil:
			formula, err := ParseFormula(*update.Formula)
			if err != nil {
				return GridDiff{}, err
			}
			if err := e.grid.SetFormula(ref, *update.Formula); err != nil {
				return GridDiff{}, err
			}
			e.graph.RegisterFormula(ref, formula)
		case update.Value != nil:
			e.graph.Unregister(ref)
			if err := e.grid.SetValue(ref, ParseValue(*update.Value)); err != nil {
				return GridDiff{}, err
			}
		}
		touched = appendUnique(touched, ref)
	}

	for _, ref := range touched {
		if _, err := e.graph.topoSort(e.graph.affected(ref)); err != nil {
			return GridDiff{}, err
		}
	}

	affected := append([]CellRef(nil), touched...)
	for _, ref := range touched {
		recalced, err := e.graph.Recalculate(e.grid, ref)
		if err != nil {
			return GridDiff{}, err
		}
		for _, a := range recalced {
			affected = appendUnique(affected, a)
		}
	}

	return diffFromCells(e.grid, affected), nil
}

// persistedCell is one cell's entry in the JSON persistence format. Unlike
// CellData (patch.go), which renders a display string for a host UI, Value
// keeps its tagged CellValue so Error codes, Boolean cells, and Text that
// merely looks numeric or boolean round-trip exactly rather than being
// silently reinterpreted by ParseValue on import.
type persistedCell struct {
	Row     int         `json:"row"`
	Col     int         `json:"col"`
	Value   CellValue   `json:"value"`
	Formula *string     `json:"formula,omitempty"`
	Format  *CellFormat `json:"format,omitempty"`
}

// document is the JSON persistence envelope: the grid's extent, every
// non-empty cell with its tagged value, and the column/row sizing
// overrides and defaults. It does not carry the dependency graph, which
// is rebuilt from formula text on import.
type document struct {
	Rows             int             `json:"rows"`
	Cols             int             `json:"cols"`
	Cells            []persistedCell `json:"cells"`
	ColWidths        map[int]float32 `json:"colWidths,omitempty"`
	RowHeights       map[int]float32 `json:"rowHeights,omitempty"`
	DefaultColWidth  float32         `json:"defaultColWidth"`
	DefaultRowHeight float32         `json:"defaultRowHeight"`
}

// ExportJSON serializes the grid's full contents (not the dependency
// graph, which is rebuilt from formula text on import).
func (e *Engine) ExportJSON() ([]byte, error) {
	entries := e.grid.AllCells()
	cells := make([]persistedCell, len(entries))
	for i, entry := range entries {
		cells[i] = persistedCell{
			Row:     entry.Ref.Row,
			Col:     entry.Ref.Col,
			Value:   entry.Value,
			Formula: entry.Formula,
			Format:  entry.Format,
		}
	}

	doc := document{
		Rows:             e.grid.Rows(),
		Cols:             e.grid.Cols(),
		Cells:            cells,
		ColWidths:        e.grid.ColWidthOverrides(),
		RowHeights:       e.grid.RowHeightOverrides(),
		DefaultColWidth:  e.grid.DefaultColWidth(),
		DefaultRowHeight: e.grid.DefaultRowHeight(),
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, ErrSerialization
	}
	return data, nil
}

// ImportJSON builds a new engine from the document encoded in data,
// re-parsing every formula cell to rebuild the dependency graph and then
// recalculating from each formula cell in turn, in document order.
func ImportJSON(data []byte) (*Engine, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, ErrSerialization
	}

	e := New(doc.Rows, doc.Cols)
	var formulaCells []CellRef
	for _, pc := range doc.Cells {
		ref := CellRef{Row: pc.Row, Col: pc.Col}
		if pc.Formula != nil {
			formula, err := ParseFormula(*pc.Formula)
			if err != nil {
				return nil, err
			}
			if err := e.grid.SetFormula(ref, *pc.Formula); err != nil {
				return nil, err
			}
			e.graph.RegisterFormula(ref, formula)
			formulaCells = append(formulaCells, ref)
		} else if pc.Value.Kind != KindEmpty {
			if err := e.grid.SetValue(ref, pc.Value); err != nil {
				return nil, err
			}
		}
		if pc.Format != nil {
			if err := e.grid.SetFormat(ref, pc.Format); err != nil {
				return nil, err
			}
		}
	}

	for col, width := range doc.ColWidths {
		e.grid.SetColWidth(col, width)
	}
	for row, height := range doc.RowHeights {
		e.grid.SetRowHeight(row, height)
	}

	for _, ref := range formulaCells {
		if _, err := e.graph.Recalculate(e.grid, ref); err != nil {
			return nil, err
		}
	}
	return e, nil
}
