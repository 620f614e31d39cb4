package engine

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/pegada/calcpc/internal/formula"
	"github.com/pegada/calcpc/internal/sheet"
)

// graph records which same-sheet cells each derived cell reads.
type graph struct {
	cells      map[string]*sheet.Cell
	precedents map[string][]string
	dependents map[string][]string
}

func newGraph(sheetName, linkSource string, cells []*sheet.Cell) *graph {
	g := &graph{
		cells:      make(map[string]*sheet.Cell, len(cells)),
		precedents: make(map[string][]string, len(cells)),
		dependents: make(map[string][]string),
	}
	for _, c := range cells {
		g.cells[c.Name] = c
	}
	for _, c := range cells {
		for _, p := range precedentsOf(c, sheetName, linkSource) {
			g.precedents[c.Name] = append(g.precedents[c.Name], p)
			g.dependents[p] = append(g.dependents[p], c.Name)
		}
	}
	return g
}

// precedentsOf lists the same-sheet names a derived cell reads.
func precedentsOf(c *sheet.Cell, sheetName, linkSource string) []string {
	local := func(r formula.Ref) bool { return r.Sheet == "" || r.Sheet == sheetName }

	var out []string
	switch c.Type.Visible() {
	case sheet.TypeFormula:
		for _, r := range formula.References(c.Expression) {
			if local(r) {
				out = append(out, r.Name)
			}
		}
	case sheet.TypeConditional:
		if r := formula.ParseRef(strings.TrimSpace(c.Expression)); r.Name != "" && local(r) {
			out = append(out, r.Name)
		}
	case sheet.TypeLink:
		r := formula.ParseRef(strings.TrimSpace(c.TextValue))
		if r.Sheet == "" {
			r.Sheet = linkSource
		}
		if r.Name != "" && r.Sheet == sheetName {
			out = append(out, r.Name)
		}
	}
	return out
}

// order returns the derived cells so that each follows the derived cells it
// reads. Roots are visited by ascending id so the order is deterministic.
func (g *graph) order() ([]*sheet.Cell, error) {
	// Absent: unvisited. false: on the current path. true: done.
	state := make(map[string]bool, len(g.cells))
	out := make([]*sheet.Cell, 0, len(g.cells))
	var cycle []string

	var visit func(name string, path []string) bool
	visit = func(name string, path []string) bool {
		if done, seen := state[name]; seen {
			if !done {
				// Keep only the loop, not the path that led into it.
				start := slices.Index(path, name)
				cycle = append(slices.Clone(path[start:]), name)
				return true
			}
			return false
		}
		c, ok := g.cells[name]
		if !ok || !c.Type.IsDerived() {
			return false
		}
		state[name] = false
		for _, p := range g.precedents[name] {
			if visit(p, append(path, name)) {
				return true
			}
		}
		state[name] = true
		out = append(out, c)
		return false
	}

	for _, c := range g.byID() {
		if visit(c.Name, nil) {
			return nil, fmt.Errorf("%w: %s", sheet.ErrCyclicDependency, strings.Join(cycle, " -> "))
		}
	}
	return out, nil
}

// affected returns the derived cells that transitively read any of names,
// in calculation order.
func (g *graph) affected(names ...string) ([]*sheet.Cell, error) {
	reach := make(map[string]bool)
	queue := append([]string(nil), names...)
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, d := range g.dependents[n] {
			if !reach[d] {
				reach[d] = true
				queue = append(queue, d)
			}
		}
	}

	ordered, err := g.order()
	if err != nil {
		return nil, err
	}
	out := make([]*sheet.Cell, 0, len(reach))
	for _, c := range ordered {
		if reach[c.Name] {
			out = append(out, c)
		}
	}
	return out, nil
}

func (g *graph) byID() []*sheet.Cell {
	cells := make([]*sheet.Cell, 0, len(g.cells))
	for _, c := range g.cells {
		cells = append(cells, c)
	}
	sort.Slice(cells, func(i, j int) bool { return cells[i].ID < cells[j].ID })
	return cells
}
