package cellgraph

import (
	"errors"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// DependencyGraph tracks, for every cell that participates in some formula,
// the set of cells it reads from (incoming) and the set of cells that read
// from it (outgoing). An edge u -> v means "v's formula reads u": changing
// u requires recomputing v.
type DependencyGraph struct {
	formulas map[CellRef]*Formula

	// refersTo maps a cell to the cells its own formula reads.
	refersTo map[CellRef]map[CellRef]struct{}
	// referredFrom maps a cell to the cells whose formulas read it. It is
	// the inverse of refersTo.
	referredFrom map[CellRef]map[CellRef]struct{}
}

func newDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		formulas:     make(map[CellRef]*Formula),
		refersTo:     make(map[CellRef]map[CellRef]struct{}),
		referredFrom: make(map[CellRef]map[CellRef]struct{}),
	}
}

// RegisterFormula attaches formula to cell, replacing any formula already
// there: the cell's old incoming edges are removed before the new
// dependencies are added, per the "replaced wholesale on re-edit" cell
// lifecycle.
func (g *DependencyGraph) RegisterFormula(cell CellRef, formula *Formula) {
	for dep := range g.refersTo[cell] {
		delete(g.referredFrom[dep], cell)
	}
	maps.Clear(g.refersTo[cell])

	for _, dep := range formula.Dependencies {
		g.addEdge(cell, dep)
	}
	g.formulas[cell] = formula
}

// Unregister drops cell's formula and its incoming edges, used when a cell
// is re-edited with a literal value and falls back to NoFormula.
func (g *DependencyGraph) Unregister(cell CellRef) {
	for dep := range g.refersTo[cell] {
		delete(g.referredFrom[dep], cell)
	}
	delete(g.refersTo, cell)
	delete(g.formulas, cell)
}

// addEdge records that cell's formula reads dep.
func (g *DependencyGraph) addEdge(cell, dep CellRef) {
	if _, ok := g.refersTo[cell]; !ok {
		g.refersTo[cell] = make(map[CellRef]struct{})
	}
	if _, ok := g.referredFrom[dep]; !ok {
		g.referredFrom[dep] = make(map[CellRef]struct{})
	}
	g.refersTo[cell][dep] = struct{}{}
	g.referredFrom[dep][cell] = struct{}{}
}

// affected returns every cell transitively dependent on changed (changed
// itself included), found by BFS over referredFrom. Used to restrict which
// cells in a topoSort order actually get recomputed.
func (g *DependencyGraph) affected(changed CellRef) []CellRef {
	frontier := []CellRef{changed}
	seen := map[CellRef]struct{}{changed: {}}
	result := []CellRef{changed}

	for len(frontier) > 0 {
		curr := frontier[0]
		frontier = frontier[1:]
		for dependent := range g.referredFrom[curr] {
			if _, ok := seen[dependent]; !ok {
				seen[dependent] = struct{}{}
				frontier = append(frontier, dependent)
				result = append(result, dependent)
			}
		}
	}
	return result
}

// rootReferrers finds the cells transitively dependent on changed that are
// themselves not depended on by anything else: the tops of the affected
// subgraph. When the affected subgraph has no cycle, walking refersTo down
// from these roots during topoSort reaches every affected cell, since each
// root's dependency chain passes through changed.
func (g *DependencyGraph) rootReferrers(changed CellRef) []CellRef {
	frontier := []CellRef{changed}
	seen := map[CellRef]struct{}{changed: {}}
	var roots []CellRef

	for len(frontier) > 0 {
		curr := frontier[0]
		frontier = frontier[1:]
		if len(g.referredFrom[curr]) == 0 {
			roots = append(roots, curr)
		}
		for dependent := range g.referredFrom[curr] {
			if _, ok := seen[dependent]; !ok {
				seen[dependent] = struct{}{}
				frontier = append(frontier, dependent)
			}
		}
	}
	if len(roots) == 0 {
		return []CellRef{changed}
	}
	return roots
}

// topoSort returns every cell reachable from roots by following refersTo
// (i.e. every cell in roots plus, transitively, everything those cells
// depend on) in dependency order: a cell always appears after everything
// it refers to. Returns ErrCircularReference if that subgraph is cyclic.
// The roots, and each cell's dependencies, are visited in (row, col)
// lexicographic order so recalculation order is reproducible.
func (g *DependencyGraph) topoSort(roots []CellRef) ([]CellRef, error) {
	sortedRoots := append([]CellRef(nil), roots...)
	sortRefs(sortedRoots)

	var result []CellRef
	perm := make(map[CellRef]struct{})
	temp := make(map[CellRef]struct{})

	var visit func(curr CellRef) error
	visit = func(curr CellRef) error {
		if _, ok := perm[curr]; ok {
			return nil
		}
		if _, ok := temp[curr]; ok {
			return ErrCircularReference
		}
		temp[curr] = struct{}{}

		deps := maps.Keys(g.refersTo[curr])
		sortRefs(deps)
		for _, dep := range deps {
			if err := visit(dep); err != nil {
				return err
			}
		}
		delete(temp, curr)
		perm[curr] = struct{}{}
		result = append(result, curr)
		return nil
	}

	for _, root := range sortedRoots {
		if err := visit(root); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func sortRefs(refs []CellRef) {
	slices.SortFunc(refs, func(a, b CellRef) bool { return a.Less(b) })
}

// Recalculate recomputes changed and every cell transitively dependent on
// it, in dependency order, writing each result into grid as soon as it is
// evaluated so every dependent reads its dependencies' fresh values. The
// whole affected set is sorted, and any cycle reported, before the first
// evaluation, so a circular reference leaves every existing computed value
// untouched. Returns the cells recomputed, in the order they were
// evaluated.
func (g *DependencyGraph) Recalculate(grid *Grid, changed CellRef) ([]CellRef, error) {
	affectedSet := make(map[CellRef]struct{})
	for _, ref := range g.affected(changed) {
		affectedSet[ref] = struct{}{}
	}

	roots := g.rootReferrers(changed)
	order, err := g.topoSort(roots)
	if err != nil {
		return nil, err
	}
	// An affected cell the walk from roots never reached is in, or feeds
	// into, a cycle with no exit to any root.
	reached := make(map[CellRef]struct{}, len(order))
	for _, cell := range order {
		reached[cell] = struct{}{}
	}
	for cell := range affectedSet {
		if _, ok := reached[cell]; !ok {
			return nil, ErrCircularReference
		}
	}

	var recomputed []CellRef
	for _, cell := range order {
		if _, ok := affectedSet[cell]; !ok {
			continue
		}
		formula, ok := g.formulas[cell]
		if !ok {
			continue
		}
		value, err := Evaluate(formula, grid)
		if err != nil {
			value = errorValueFor(err)
		}
		_ = grid.SetComputedValue(cell, value)
		recomputed = append(recomputed, cell)
	}
	return recomputed, nil
}

// errorValueFor converts an evaluation error into the CellValue the host
// UI displays in place of the failed formula's result.
func errorValueFor(err error) CellValue {
	switch {
	case errors.As(err, new(*TypeError)):
		return NewError("VALUE")
	case errors.As(err, new(*ArgumentCountError)):
		return NewError("VALUE")
	case errors.Is(err, ErrUnknownFunction):
		return NewError("NAME")
	default:
		return NewError("ERROR")
	}
}
