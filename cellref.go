package cellgraph

import (
	"fmt"
	"regexp"
	"strconv"
)

// CellRef is a (row, col) pair of non-negative integers, both zero-indexed
// internally. Total ordering is (row, col) lexicographic.
type CellRef struct {
	Row int
	Col int
}

// NewCellRef builds a CellRef from zero-indexed row and column.
func NewCellRef(row, col int) CellRef {
	return CellRef{Row: row, Col: col}
}

// Less reports whether r sorts before other under (row, col) lexicographic
// ordering. Used to make topological batches and range output reproducible.
func (r CellRef) Less(other CellRef) bool {
	if r.Row != other.Row {
		return r.Row < other.Row
	}
	return r.Col < other.Col
}

// note: Go's regexp package guarantees linear-time matching in input size.
var cellRefPattern = regexp.MustCompile(`^([A-Za-z]+)([0-9]+)$`)

// ParseA1 parses a string like "A1" or "BC42" into a CellRef. Rows are
// 1-indexed in A1 notation and converted to 0-indexed internally.
func ParseA1(s string) (CellRef, error) {
	groups := cellRefPattern.FindStringSubmatch(s)
	if len(groups) != 3 {
		return CellRef{}, newInvalidRefError(s)
	}
	colExpr, rowExpr := groups[1], groups[2]

	col, err := LetterToCol(colExpr)
	if err != nil {
		return CellRef{}, newInvalidRefError(s)
	}
	row, err := strconv.Atoi(rowExpr)
	if err != nil || row < 1 {
		return CellRef{}, newInvalidRefError(s)
	}
	return CellRef{Row: row - 1, Col: col}, nil
}

// A1 formats r as an Excel-style reference, e.g. "A1", "BC42".
func (r CellRef) A1() string {
	return fmt.Sprintf("%s%d", ColToLetter(r.Col), r.Row+1)
}

func (r CellRef) String() string { return r.A1() }

// ColToLetter converts a zero-indexed column into its bijective base-26
// letter representation: 0 -> "A", 25 -> "Z", 26 -> "AA".
func ColToLetter(col int) string {
	var buf []byte
	n := col
	for {
		buf = append([]byte{byte('A' + n%26)}, buf...)
		if n < 26 {
			break
		}
		n = n/26 - 1
	}
	return string(buf)
}

// LetterToCol converts a bijective base-26 column letter string (A=1..Z=26,
// AA=27, ...) into a zero-indexed column. Returns an error for empty input
// or any non-alphabetic rune.
func LetterToCol(s string) (int, error) {
	if s == "" {
		return 0, newInvalidRefError(s)
	}
	col := 0
	for _, ch := range s {
		var v int
		switch {
		case ch >= 'A' && ch <= 'Z':
			v = int(ch-'A') + 1
		case ch >= 'a' && ch <= 'z':
			v = int(ch-'a') + 1
		default:
			return 0, newInvalidRefError(s)
		}
		col = col*26 + v
	}
	return col - 1, nil
}
