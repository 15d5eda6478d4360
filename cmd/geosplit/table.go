package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// tableView describes a rendered table. Columns listed in numeric are
// right-aligned.
type tableView struct {
	title   string
	headers []string
	rows    [][]string
	numeric map[int]bool
}

func renderTable(view tableView) string {
	columns := len(view.headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	if view.title != "" {
		tw.SetTitle(view.title)
	}

	header := make(table.Row, columns)
	for i, h := range view.headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range view.rows {
		r := make(table.Row, columns)
		for i := range r {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if view.numeric[i] {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}
