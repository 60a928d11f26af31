package db

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/Joseda-hg/distributor/internal/model"
)

// Table is a materialized result set. Cells are nil, int64, float64, bool,
// string or time.Time.
type Table struct {
	Columns []string
	Rows    [][]any
}

func (t Table) Len() int {
	return len(t.Rows)
}

// Values flattens every cell, row by row, into text.
func (t Table) Values() []string {
	values := make([]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		for _, cell := range row {
			values = append(values, CellText(cell))
		}
	}
	return values
}

// Pairs joins each cell with its right neighbour as "left-right". A two
// column row yields one token; wider rows yield one token per adjacent pair,
// including pairs that mix unrelated columns.
func (t Table) Pairs() []string {
	pairs := make([]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		for i := 0; i < len(row)-1; i++ {
			pairs = append(pairs, CellText(row[i])+"-"+CellText(row[i+1]))
		}
	}
	return pairs
}

func CellText(cell any) string {
	switch v := cell.(type) {
	case nil:
		return ""
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		if v.Hour() == 0 && v.Minute() == 0 && v.Second() == 0 && v.Nanosecond() == 0 {
			return model.FormatDate(v)
		}
		return v.Format("2006-01-02 15:04:05")
	default:
		return fmt.Sprint(v)
	}
}

func readTable(rows *sql.Rows) (Table, error) {
	columns, err := rows.Columns()
	if err != nil {
		return Table{}, err
	}

	table := Table{Columns: columns, Rows: [][]any{}}
	for rows.Next() {
		cells := make([]any, len(columns))
		targets := make([]any, len(columns))
		for i := range cells {
			targets[i] = &cells[i]
		}
		if err := rows.Scan(targets...); err != nil {
			return Table{}, err
		}

		row := make([]any, len(columns))
		for i, cell := range cells {
			row[i] = normalizeCell(cell)
		}
		table.Rows = append(table.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return Table{}, err
	}
	return table, nil
}

func normalizeCell(cell any) any {
	switch v := cell.(type) {
	case []byte:
		return string(v)
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float32:
		return float64(v)
	default:
		return v
	}
}
