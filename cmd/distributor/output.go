package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/Joseda-hg/distributor/internal/db"
)

// printTable writes a routine result as aligned columns, or as JSON objects
// keyed by column name.
func printTable(w io.Writer, table db.Table, asJSON bool) error {
	if asJSON {
		rows := make([]map[string]string, 0, table.Len())
		for _, row := range table.Rows {
			item := make(map[string]string, len(table.Columns))
			for i, column := range table.Columns {
				if i < len(row) {
					item[column] = db.CellText(row[i])
				}
			}
			rows = append(rows, item)
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(table.Columns, "\t"))
	for _, row := range table.Rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = db.CellText(cell)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "(%d rows)\n", table.Len())
	return nil
}
