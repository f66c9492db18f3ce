package cellgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEngine_SetCell_literalAndFormula(t *testing.T) {
	e := New(5, 5)
	diff, err := e.SetCell(NewCellRef(0, 0), "42")
	assert.NoError(t, err)
	assert.Len(t, diff.Cells, 1)
	assert.Equal(t, "42", diff.Cells[0].Value)

	_, err = e.SetCell(NewCellRef(0, 1), "=A1*2")
	assert.NoError(t, err)
	c, ok := e.GetCell(NewCellRef(0, 1))
	assert.True(t, ok)
	n, _ := c.Value.ToNumber()
	assert.Equal(t, 84.0, n)
}

func TestEngine_SetCell_dependencyOutOfBounds(t *testing.T) {
	e := New(2, 2)
	_, err := e.SetCell(NewCellRef(0, 0), "=Z99")
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestEngine_ApplyPatch_batch(t *testing.T) {
	e := New(5, 5)
	oneVal := "1"
	twoVal := "2"
	formula := "=A1+A2"

	diff, err := e.ApplyPatch(GridPatch{
		Updates: []CellUpdate{
			{Row: 0, Col: 0, Value: &oneVal},
			{Row: 1, Col: 0, Value: &twoVal},
			{Row: 0, Col: 1, Formula: &formula},
		},
	})
	assert.NoError(t, err)
	assert.GreaterOrEqual(t, len(diff.Cells), 3)

	c, ok := e.GetCell(NewCellRef(0, 1))
	assert.True(t, ok)
	n, _ := c.Value.ToNumber()
	assert.Equal(t, 3.0, n)
}

func TestEngine_ApplyFormat_range(t *testing.T) {
	e := New(5, 5)
	_, err := e.SetCell(NewCellRef(0, 0), "1")
	assert.NoError(t, err)

	bold := true
	assert.NoError(t, e.ApplyFormat(0, 0, 1, 1, &CellFormat{FontBold: &bold}))

	c, ok := e.GetCell(NewCellRef(0, 0))
	assert.True(t, ok)
	assert.NotNil(t, c.Format)
	assert.True(t, *c.Format.FontBold)
}

func TestEngine_ColRowSizing(t *testing.T) {
	e := New(5, 5)
	assert.Equal(t, float32(100.0), e.ColWidth(0))
	e.SetColWidth(0, 200)
	assert.Equal(t, float32(200), e.ColWidth(0))

	assert.Equal(t, float32(24.0), e.RowHeight(0))
	e.SetRowHeight(0, 40)
	assert.Equal(t, float32(40), e.RowHeight(0))
}

func TestEngine_ExportImportJSON_roundTrip(t *testing.T) {
	e := New(3, 3)
	_, err := e.SetCell(NewCellRef(0, 0), "10")
	assert.NoError(t, err)
	_, err = e.SetCell(NewCellRef(1, 0), "=A1*3")
	assert.NoError(t, err)

	data, err := e.ExportJSON()
	assert.NoError(t, err)

	imported, err := ImportJSON(data)
	assert.NoError(t, err)
	assert.Equal(t, e.CellCount(), imported.CellCount())

	c, ok := imported.GetCell(NewCellRef(1, 0))
	assert.True(t, ok)
	n, _ := c.Value.ToNumber()
	assert.Equal(t, 30.0, n)

	// the imported formula graph must still react to edits.
	_, err = imported.SetCell(NewCellRef(0, 0), "20")
	assert.NoError(t, err)
	c, _ = imported.GetCell(NewCellRef(1, 0))
	n, _ = c.Value.ToNumber()
	assert.Equal(t, 60.0, n)
}

func TestEngine_ExportImportJSON_preservesTaggedValuesAndSizing(t *testing.T) {
	e := New(3, 3)
	_, err := e.SetCell(NewCellRef(0, 0), "TRUE")
	assert.NoError(t, err)
	assert.NoError(t, e.grid.SetValue(NewCellRef(1, 0), NewError("DIV/0")))
	assert.NoError(t, e.grid.SetValue(NewCellRef(2, 0), NewText("3.5")))
	e.SetColWidth(0, 250)
	e.SetRowHeight(1, 48)

	data, err := e.ExportJSON()
	assert.NoError(t, err)

	imported, err := ImportJSON(data)
	assert.NoError(t, err)

	c, ok := imported.GetCell(NewCellRef(0, 0))
	assert.True(t, ok)
	assert.Equal(t, KindBoolean, c.Value.Kind)
	assert.True(t, c.Value.Bool)

	c, ok = imported.GetCell(NewCellRef(1, 0))
	assert.True(t, ok)
	code, isErr := c.Value.IsError()
	assert.True(t, isErr)
	assert.Equal(t, "DIV/0", code)

	// Text that merely looks numeric must not be reinterpreted as a Number.
	c, ok = imported.GetCell(NewCellRef(2, 0))
	assert.True(t, ok)
	assert.Equal(t, KindText, c.Value.Kind)
	assert.Equal(t, "3.5", c.Value.Text)

	assert.Equal(t, float32(250), imported.ColWidth(0))
	assert.Equal(t, float32(48), imported.RowHeight(1))
}

func TestEngine_CellCount(t *testing.T) {
	e := New(5, 5)
	assert.Equal(t, 0, e.CellCount())
	_, err := e.SetCell(NewCellRef(0, 0), "1")
	assert.NoError(t, err)
	assert.Equal(t, 1, e.CellCount())
}
