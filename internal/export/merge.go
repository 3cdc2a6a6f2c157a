package export

import (
	"sort"
	"strconv"
	"time"
)

// Merge outer-joins the per-category tables on (DeviceID, Date) and splits
// the result on the presence of a sleep LogID: rows with one are complete,
// rows without land in the incomplete table. Rows are ordered by date so the
// output is stable across runs.
func Merge(tables []Table) (complete, incomplete Table) {
	header := []string{"DeviceID", "Date"}
	for _, t := range tables {
		if len(t.Header) < 2 {
			continue
		}
		header = append(header, t.Header[2:]...)
	}

	type key struct{ device, date string }
	merged := make(map[key]map[string]string)
	var order []key

	col := 2
	for _, t := range tables {
		if len(t.Header) < 2 {
			continue
		}
		for _, row := range t.Rows {
			k := key{row[0], row[1]}
			cells, ok := merged[k]
			if !ok {
				cells = make(map[string]string)
				merged[k] = cells
				order = append(order, k)
			}
			for i, name := range t.Header[2:] {
				if i+2 < len(row) {
					cells[colName(col+i, name)] = row[i+2]
				}
			}
		}
		col += len(t.Header) - 2
	}

	sort.SliceStable(order, func(i, j int) bool {
		di, dj := parseDisplayDate(order[i].date), parseDisplayDate(order[j].date)
		if di.Equal(dj) {
			return order[i].device < order[j].device
		}
		return di.Before(dj)
	})

	complete = Table{Name: "Merged", Header: header}
	incomplete = Table{Name: "Incomplete", Header: header}
	for _, k := range order {
		cells := merged[k]
		row := []string{k.device, k.date}
		for i, name := range header[2:] {
			row = append(row, cells[colName(i+2, name)])
		}
		if cells[colName(logIDColumn(tables), "LogID")] != "" {
			complete.Rows = append(complete.Rows, row)
		} else {
			incomplete.Rows = append(incomplete.Rows, row)
		}
	}
	return complete, incomplete
}

// colName disambiguates columns by absolute position, so two tables sharing
// a column label cannot collide in the join.
func colName(pos int, name string) string {
	return name + "#" + strconv.Itoa(pos)
}

// logIDColumn finds the absolute position of the sleep table's LogID column.
func logIDColumn(tables []Table) int {
	pos := 2
	for _, t := range tables {
		for i, name := range t.Header[2:] {
			if name == "LogID" {
				return pos + i
			}
		}
		pos += len(t.Header) - 2
	}
	return -1
}

func parseDisplayDate(s string) time.Time {
	t, err := time.Parse("02/01/2006", s)
	if err != nil {
		return time.Time{}
	}
	return t
}
