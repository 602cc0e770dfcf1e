package npulower

import (
	"fmt"
	"io"
	"slices"
)

// WriteDot writes the graph in Graphviz dot format, one record per node
// labelled with its kind, output shape, format and provenance set.
func (g *Graph) WriteDot(writer io.Writer) error {
	var err error
	w := func(format string, args ...any) {
		if err != nil {
			// No op if an error was encountered earlier
			return
		}
		_, err = fmt.Fprintf(writer, format, args...)
	}

	ids := make(map[Node]int, len(g.nodes))
	for i, n := range g.nodes {
		ids[n] = i
	}

	w("digraph LoweredGraph {\n")
	for i, n := range g.nodes {
		opIDs := make([]uint32, 0, len(n.OperationIDs()))
		for id := range n.OperationIDs() {
			opIDs = append(opIDs, id)
		}
		slices.Sort(opIDs)
		w("  n%d [label=\"%s\\n%s %s\\nops %v\"];\n", i, n.Kind(), n.Shape(), n.Format(), opIDs)
	}
	for _, e := range g.edges {
		w("  n%d -> n%d;\n", ids[e.Source()], ids[e.Dest()])
	}
	w("}\n")
	return err
}
