package cellgraph

import "math"

// evaluator walks a Formula's AST against a Grid, producing a CellValue or
// an error. It holds no state of its own; it exists as a receiver that
// groups the operator and built-in function methods, each of which takes
// the grid as an explicit argument.
type evaluator struct{}

// Evaluate computes the value of a parsed formula against grid. Dangling
// cell references (outside the grid or never set) evaluate to Empty, not
// an error, matching the "absence means Empty" rule cells already follow.
func Evaluate(f *Formula, grid *Grid) (CellValue, error) {
	var e evaluator
	return e.eval(f.AST, grid)
}

func (e evaluator) eval(node *FormulaNode, grid *Grid) (CellValue, error) {
	switch node.Kind {
	case NodeNumber:
		return NewNumber(node.Number), nil
	case NodeText:
		return NewText(node.Text), nil
	case NodeBoolean:
		return NewBoolean(node.Boolean), nil

	case NodeCellRef:
		if c, ok := grid.Get(node.Ref); ok {
			return c.Value, nil
		}
		return Empty, nil

	case NodeRange:
		// A bare range outside of a function call (e.g. "=A1:A3") has no
		// single value to collapse to.
		return CellValue{}, &TypeError{Expected: "single value", Got: "range " + node.RangeStart.A1() + ":" + node.RangeEnd.A1()}

	case NodeBinaryOp:
		left, err := e.eval(node.Left, grid)
		if err != nil {
			return CellValue{}, err
		}
		right, err := e.eval(node.Right, grid)
		if err != nil {
			return CellValue{}, err
		}
		return e.evalBinaryOp(node.BinOp, left, right)

	case NodeUnaryOp:
		val, err := e.eval(node.Operand, grid)
		if err != nil {
			return CellValue{}, err
		}
		return e.evalUnaryOp(node.UnOp, val)

	case NodeFunction:
		return e.evalFunction(node.FuncName, node.FuncArgs, grid)
	}
	panic("unreachable: unknown formula node kind")
}

// propagateError returns (code, true) if either operand is an Error, so
// arithmetic (+ − × ÷ ^) on an erroring dependency surfaces that same error
// rather than masking it behind a fresh type error. Comparisons, equality,
// and concatenation do not propagate: a non-numeric comparison coerces to
// false, Eq/Ne compare structurally, and & joins display strings — an Error
// cell displays its code like any other value.
func propagateError(left, right CellValue) (CellValue, bool) {
	if code, ok := left.IsError(); ok {
		return NewError(code), true
	}
	if code, ok := right.IsError(); ok {
		return NewError(code), true
	}
	return CellValue{}, false
}

func (e evaluator) evalBinaryOp(op BinaryOperator, left, right CellValue) (CellValue, error) {
	switch op {
	case OpAdd, OpSub, OpMul, OpDiv, OpPow:
		if errVal, ok := propagateError(left, right); ok {
			return errVal, nil
		}
	}

	leftNum, leftOK := left.ToNumber()
	rightNum, rightOK := right.ToNumber()
	numeric := leftOK && rightOK

	switch op {
	case OpAdd:
		if !numeric {
			return CellValue{}, &TypeError{Expected: "number", Got: "non-numeric"}
		}
		return NewNumber(leftNum + rightNum), nil
	case OpSub:
		if !numeric {
			return CellValue{}, &TypeError{Expected: "number", Got: "non-numeric"}
		}
		return NewNumber(leftNum - rightNum), nil
	case OpMul:
		if !numeric {
			return CellValue{}, &TypeError{Expected: "number", Got: "non-numeric"}
		}
		return NewNumber(leftNum * rightNum), nil
	case OpDiv:
		if !numeric {
			return CellValue{}, &TypeError{Expected: "number", Got: "non-numeric"}
		}
		if rightNum == 0 {
			return NewError("DIV/0"), nil
		}
		return NewNumber(leftNum / rightNum), nil
	case OpPow:
		if !numeric {
			return CellValue{}, &TypeError{Expected: "number", Got: "non-numeric"}
		}
		return NewNumber(math.Pow(leftNum, rightNum)), nil
	case OpEq:
		return NewBoolean(left.Equal(right)), nil
	case OpNe:
		return NewBoolean(!left.Equal(right)), nil
	case OpLt:
		if !numeric {
			return NewBoolean(false), nil
		}
		return NewBoolean(leftNum < rightNum), nil
	case OpLe:
		if !numeric {
			return NewBoolean(false), nil
		}
		return NewBoolean(leftNum <= rightNum), nil
	case OpGt:
		if !numeric {
			return NewBoolean(false), nil
		}
		return NewBoolean(leftNum > rightNum), nil
	case OpGe:
		if !numeric {
			return NewBoolean(false), nil
		}
		return NewBoolean(leftNum >= rightNum), nil
	case OpConcat:
		return NewText(left.Display() + right.Display()), nil
	}
	panic("unreachable: unknown binary operator")
}

func (e evaluator) evalUnaryOp(op UnaryOperator, val CellValue) (CellValue, error) {
	if code, ok := val.IsError(); ok {
		return NewError(code), nil
	}
	n, ok := val.ToNumber()
	if !ok {
		return CellValue{}, &TypeError{Expected: "number", Got: "non-numeric"}
	}
	switch op {
	case OpNeg:
		return NewNumber(-n), nil
	case OpPercent:
		return NewNumber(n / 100), nil
	}
	panic("unreachable: unknown unary operator")
}

func (e evaluator) evalFunction(name string, args []*FormulaNode, grid *Grid) (CellValue, error) {
	switch name {
	case "SUM":
		return e.fnSum(args, grid)
	case "AVERAGE", "AVG":
		return e.fnAverage(args, grid)
	case "MIN":
		return e.fnMin(args, grid)
	case "MAX":
		return e.fnMax(args, grid)
	case "COUNT":
		return e.fnCount(args, grid)
	case "IF":
		return e.fnIf(args, grid)
	case "ABS":
		return e.fnAbs(args, grid)
	case "ROUND":
		return e.fnRound(args, grid)
	case "SQRT":
		return e.fnSqrt(args, grid)
	case "POWER", "POW":
		return e.fnPower(args, grid)
	}
	return CellValue{}, newUnknownFunctionError(name)
}

// collectNumbers flattens args into a single slice of numbers: a Range
// argument contributes every numeric cell it covers, any other argument
// contributes its own numeric value if it evaluates to one. Non-numeric
// values and evaluation errors are silently skipped, matching a
// spreadsheet's habit of ignoring text cells inside SUM ranges rather than
// failing the whole formula.
func (e evaluator) collectNumbers(args []*FormulaNode, grid *Grid) []float64 {
	var numbers []float64
	for _, arg := range args {
		if arg.Kind == NodeRange {
			for row := arg.RangeStart.Row; row <= arg.RangeEnd.Row; row++ {
				for col := arg.RangeStart.Col; col <= arg.RangeEnd.Col; col++ {
					if c, ok := grid.Get(CellRef{Row: row, Col: col}); ok {
						if n, ok := c.Value.ToNumber(); ok {
							numbers = append(numbers, n)
						}
					}
				}
			}
			continue
		}
		if val, err := e.eval(arg, grid); err == nil {
			if n, ok := val.ToNumber(); ok {
				numbers = append(numbers, n)
			}
		}
	}
	return numbers
}

func (e evaluator) fnSum(args []*FormulaNode, grid *Grid) (CellValue, error) {
	var total float64
	for _, n := range e.collectNumbers(args, grid) {
		total += n
	}
	return NewNumber(total), nil
}

func (e evaluator) fnAverage(args []*FormulaNode, grid *Grid) (CellValue, error) {
	numbers := e.collectNumbers(args, grid)
	if len(numbers) == 0 {
		return NewError("DIV/0"), nil
	}
	var total float64
	for _, n := range numbers {
		total += n
	}
	return NewNumber(total / float64(len(numbers))), nil
}

func (e evaluator) fnMin(args []*FormulaNode, grid *Grid) (CellValue, error) {
	numbers := e.collectNumbers(args, grid)
	if len(numbers) == 0 {
		return CellValue{}, &ArgumentCountError{Func: "MIN", Expected: "at least 1", Got: 0}
	}
	m := numbers[0]
	for _, n := range numbers[1:] {
		m = math.Min(m, n)
	}
	return NewNumber(m), nil
}

func (e evaluator) fnMax(args []*FormulaNode, grid *Grid) (CellValue, error) {
	numbers := e.collectNumbers(args, grid)
	if len(numbers) == 0 {
		return CellValue{}, &ArgumentCountError{Func: "MAX", Expected: "at least 1", Got: 0}
	}
	m := numbers[0]
	for _, n := range numbers[1:] {
		m = math.Max(m, n)
	}
	return NewNumber(m), nil
}

func (e evaluator) fnCount(args []*FormulaNode, grid *Grid) (CellValue, error) {
	return NewNumber(float64(len(e.collectNumbers(args, grid)))), nil
}

func (e evaluator) fnIf(args []*FormulaNode, grid *Grid) (CellValue, error) {
	if len(args) < 2 || len(args) > 3 {
		return CellValue{}, &ArgumentCountError{Func: "IF", Expected: "2 or 3", Got: len(args)}
	}
	cond, err := e.eval(args[0], grid)
	if err != nil {
		return CellValue{}, err
	}
	if cond.Truthy() {
		return e.eval(args[1], grid)
	}
	if len(args) > 2 {
		return e.eval(args[2], grid)
	}
	return NewBoolean(false), nil
}

func (e evaluator) fnAbs(args []*FormulaNode, grid *Grid) (CellValue, error) {
	if len(args) != 1 {
		return CellValue{}, &ArgumentCountError{Func: "ABS", Expected: "1", Got: len(args)}
	}
	val, err := e.eval(args[0], grid)
	if err != nil {
		return CellValue{}, err
	}
	n, ok := val.ToNumber()
	if !ok {
		return CellValue{}, &TypeError{Expected: "number", Got: "non-numeric"}
	}
	return NewNumber(math.Abs(n)), nil
}

func (e evaluator) fnRound(args []*FormulaNode, grid *Grid) (CellValue, error) {
	if len(args) == 0 || len(args) > 2 {
		return CellValue{}, &ArgumentCountError{Func: "ROUND", Expected: "1 or 2", Got: len(args)}
	}
	val, err := e.eval(args[0], grid)
	if err != nil {
		return CellValue{}, err
	}
	decimals := 0.0
	if len(args) > 1 {
		decVal, err := e.eval(args[1], grid)
		if err != nil {
			return CellValue{}, err
		}
		if n, ok := decVal.ToNumber(); ok {
			decimals = n
		}
	}
	n, ok := val.ToNumber()
	if !ok {
		return CellValue{}, &TypeError{Expected: "number", Got: "non-numeric"}
	}
	multiplier := math.Pow(10, decimals)
	return NewNumber(math.Round(n*multiplier) / multiplier), nil
}

func (e evaluator) fnSqrt(args []*FormulaNode, grid *Grid) (CellValue, error) {
	if len(args) != 1 {
		return CellValue{}, &ArgumentCountError{Func: "SQRT", Expected: "1", Got: len(args)}
	}
	val, err := e.eval(args[0], grid)
	if err != nil {
		return CellValue{}, err
	}
	n, ok := val.ToNumber()
	if !ok {
		return CellValue{}, &TypeError{Expected: "number", Got: "non-numeric"}
	}
	return NewNumber(math.Sqrt(n)), nil
}

func (e evaluator) fnPower(args []*FormulaNode, grid *Grid) (CellValue, error) {
	if len(args) != 2 {
		return CellValue{}, &ArgumentCountError{Func: "POWER", Expected: "2", Got: len(args)}
	}
	base, err := e.eval(args[0], grid)
	if err != nil {
		return CellValue{}, err
	}
	exp, err := e.eval(args[1], grid)
	if err != nil {
		return CellValue{}, err
	}
	b, bOK := base.ToNumber()
	x, xOK := exp.ToNumber()
	if !bOK || !xOK {
		return CellValue{}, &TypeError{Expected: "number", Got: "non-numeric"}
	}
	return NewNumber(math.Pow(b, x)), nil
}
