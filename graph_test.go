package cellgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestEngine(t *testing.T, rows, cols int) *Engine {
	t.Helper()
	return New(rows, cols)
}

func cellNumber(t *testing.T, e *Engine, ref CellRef) float64 {
	t.Helper()
	c, ok := e.GetCell(ref)
	assert.True(t, ok)
	n, ok := c.Value.ToNumber()
	assert.True(t, ok)
	return n
}

func TestRecalculate_basicChain(t *testing.T) {
	e := newTestEngine(t, 10, 10)
	a1, a2, b1 := NewCellRef(0, 0), NewCellRef(1, 0), NewCellRef(0, 1)

	_, err := e.SetCell(b1, "=A1+A2")
	assert.NoError(t, err)
	_, err = e.SetCell(a1, "12")
	assert.NoError(t, err)
	// A2 is still empty, and Empty does not coerce to a number.
	c, _ := e.GetCell(b1)
	assert.True(t, NewError("VALUE").Equal(c.Value))

	_, err = e.SetCell(a2, "12")
	assert.NoError(t, err)
	assert.Equal(t, 24.0, cellNumber(t, e, b1))
}

func TestRecalculate_fibonacci(t *testing.T) {
	e := newTestEngine(t, 20, 2)
	_, err := e.SetCell(NewCellRef(0, 0), "0")
	assert.NoError(t, err)
	_, err = e.SetCell(NewCellRef(1, 0), "1")
	assert.NoError(t, err)
	for i := 2; i < 14; i++ {
		formula := "=" + NewCellRef(i-2, 0).A1() + "+" + NewCellRef(i-1, 0).A1()
		_, err := e.SetCell(NewCellRef(i, 0), formula)
		assert.NoError(t, err)
	}
	assert.Equal(t, 233.0, cellNumber(t, e, NewCellRef(13, 0)))
}

func TestRecalculate_circularReferenceLeavesStaleValues(t *testing.T) {
	e := newTestEngine(t, 5, 5)
	a1, a2 := NewCellRef(0, 0), NewCellRef(1, 0)

	_, err := e.SetCell(a1, "=A2")
	assert.NoError(t, err)
	_, err = e.SetCell(a2, "5")
	assert.NoError(t, err)
	assert.Equal(t, 5.0, cellNumber(t, e, a1))

	_, err = e.SetCell(a2, "=A1")
	assert.ErrorIs(t, err, ErrCircularReference)

	// a1's stale computed value (5) must survive the aborted recalculation.
	assert.Equal(t, 5.0, cellNumber(t, e, a1))
}

func TestRecalculate_selfReference(t *testing.T) {
	e := newTestEngine(t, 5, 5)
	_, err := e.SetCell(NewCellRef(0, 0), "=A1")
	assert.ErrorIs(t, err, ErrCircularReference)
}

func TestRecalculate_reEditWithLiteralDropsEdges(t *testing.T) {
	e := newTestEngine(t, 5, 5)
	a1, b1 := NewCellRef(0, 0), NewCellRef(0, 1)

	_, err := e.SetCell(b1, "=A1")
	assert.NoError(t, err)
	_, err = e.SetCell(a1, "1")
	assert.NoError(t, err)
	assert.Equal(t, 1.0, cellNumber(t, e, b1))

	_, err = e.SetCell(b1, "99")
	assert.NoError(t, err)
	_, err = e.SetCell(a1, "2")
	assert.NoError(t, err)
	// b1 no longer depends on a1, so it must not have been recomputed.
	assert.Equal(t, 99.0, cellNumber(t, e, b1))
}
