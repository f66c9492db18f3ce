package cellgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluate_divisionByZero(t *testing.T) {
	g := NewGrid(3, 3)
	v := evalRaw(t, g, "=1/0")
	code, isErr := v.IsError()
	assert.True(t, isErr)
	assert.Equal(t, "DIV/0", code)
}

func TestEvaluate_errorPropagatesThroughArithmetic(t *testing.T) {
	g := NewGrid(3, 3)
	assert.NoError(t, g.SetValue(NewCellRef(0, 0), NewError("DIV/0")))

	v := evalRaw(t, g, "=A1+1")
	code, isErr := v.IsError()
	assert.True(t, isErr)
	assert.Equal(t, "DIV/0", code)
}

func TestEvaluate_errorOperandComparisonConcat(t *testing.T) {
	g := NewGrid(3, 3)
	assert.NoError(t, g.SetValue(NewCellRef(0, 0), NewError("DIV/0")))

	// comparisons against a non-numeric operand (including an Error) coerce
	// to false rather than propagating.
	v := evalRaw(t, g, "=A1<1")
	assert.True(t, NewBoolean(false).Equal(v))

	// Eq/Ne compare structurally: an Error only equals the same Error.
	v = evalRaw(t, g, `=A1="#DIV/0"`)
	assert.True(t, NewBoolean(false).Equal(v))

	// concatenation joins display strings, Error included.
	v = evalRaw(t, g, `=A1&"!"`)
	assert.True(t, NewText("#DIV/0!").Equal(v))
}

func TestEvaluate_danglingRefIsEmpty(t *testing.T) {
	g := NewGrid(5, 5)
	v := evalRaw(t, g, "=A1")
	assert.True(t, Empty.Equal(v))
}

func TestEvaluate_functions(t *testing.T) {
	g := NewGrid(5, 5)
	assert.NoError(t, g.SetValue(NewCellRef(0, 0), NewNumber(10)))
	assert.NoError(t, g.SetValue(NewCellRef(1, 0), NewNumber(20)))
	assert.NoError(t, g.SetValue(NewCellRef(2, 0), NewText("skip me")))

	tests := []struct {
		name string
		expr string
		want CellValue
	}{
		{"sum", "=SUM(A1:A3)", NewNumber(30)},
		{"average", "=AVERAGE(A1:A2)", NewNumber(15)},
		{"avg alias", "=AVG(A1:A2)", NewNumber(15)},
		{"min", "=MIN(A1:A2)", NewNumber(10)},
		{"max", "=MAX(A1:A2)", NewNumber(20)},
		{"count ignores text", "=COUNT(A1:A3)", NewNumber(2)},
		{"if true", "=IF(1=1,10,20)", NewNumber(10)},
		{"if false", "=IF(1=2,10,20)", NewNumber(20)},
		{"if no else", "=IF(1=2,10)", NewBoolean(false)},
		{"abs", "=ABS(-5)", NewNumber(5)},
		{"round", "=ROUND(3.14159,2)", NewNumber(3.14)},
		{"round no decimals", "=ROUND(3.6)", NewNumber(4)},
		{"sqrt", "=SQRT(16)", NewNumber(4)},
		{"power", "=POWER(2,10)", NewNumber(1024)},
		{"pow alias", "=POW(2,3)", NewNumber(8)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := evalRaw(t, g, tt.expr)
			assert.True(t, tt.want.Equal(got), "%s => %+v, want %+v", tt.expr, got, tt.want)
		})
	}
}

func TestEvaluate_averageOfEmptyRangeIsDivByZero(t *testing.T) {
	g := NewGrid(5, 5)
	v := evalRaw(t, g, "=AVERAGE(A1:A3)")
	code, isErr := v.IsError()
	assert.True(t, isErr)
	assert.Equal(t, "DIV/0", code)
}

func TestEvaluate_unknownFunction(t *testing.T) {
	f, err := ParseFormula("=NOPE(1)")
	assert.NoError(t, err)
	_, err = Evaluate(f, NewGrid(3, 3))
	assert.ErrorIs(t, err, ErrUnknownFunction)
}

func TestEvaluate_argumentCountError(t *testing.T) {
	f, err := ParseFormula("=ABS(1,2)")
	assert.NoError(t, err)
	_, err = Evaluate(f, NewGrid(3, 3))
	var argErr *ArgumentCountError
	assert.ErrorAs(t, err, &argErr)
	assert.Equal(t, "ABS", argErr.Func)
}

func TestEvaluate_typeError(t *testing.T) {
	f, err := ParseFormula("=1+\"abc\"")
	assert.NoError(t, err)
	_, err = Evaluate(f, NewGrid(3, 3))
	var typeErr *TypeError
	assert.ErrorAs(t, err, &typeErr)
}
