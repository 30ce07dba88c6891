package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/arkadconsole/internal/client/liststore"
)

const maxCellWidth = 40

func printTable(w io.Writer, columns []string, rows [][]string) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(columns, "\t"))
	for _, r := range rows {
		cells := make([]string, len(r))
		for i, c := range r {
			cells[i] = clip(c)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	_ = tw.Flush()
}

func clip(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= maxCellWidth {
		return s
	}
	return string(r[:maxCellWidth-3]) + "..."
}

// printPage prints one page of items, or a note when there are none.
func printPage[T any](w io.Writer, p liststore.Page[T], columns []string, row func(T) []string) {
	if p.Total == 0 {
		fmt.Fprintln(w, "No records found.")
		return
	}
	rows := make([][]string, 0, len(p.Items))
	for _, it := range p.Items {
		rows = append(rows, row(it))
	}
	printTable(w, columns, rows)
	fmt.Fprintf(w, "Page %d of %d (%d total)\n", p.Page, p.TotalPages, p.Total)
}

// pageArg reads an optional 1-based page number at args[i].
func pageArg(args []string, i int) (int, error) {
	if len(args) <= i {
		return 1, nil
	}
	n, err := strconv.Atoi(args[i])
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid page %q", args[i])
	}
	return n, nil
}
