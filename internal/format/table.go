package format

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// Tabler renders as an aligned text table. CLI list commands implement this
// next to their JSON shape.
type Tabler interface {
	TableHeader() []string
	TableRows() [][]string
}

// WriteTable writes v as a tab-aligned table with a header row. An empty
// table still prints its header so scripts can rely on the shape.
func WriteTable(w io.Writer, v Tabler) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	writeRow(tw, v.TableHeader())
	for _, row := range v.TableRows() {
		writeRow(tw, row)
	}
	return tw.Flush()
}

func writeRow(w io.Writer, cells []string) {
	for i, c := range cells {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, c)
	}
	fmt.Fprintln(w)
}
