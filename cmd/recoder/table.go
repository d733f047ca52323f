package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}
	tw := newTableWriter(columns, aligns)

	header := make(table.Row, columns)
	for i := range columns {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)
	appendRows(tw, columns, rows)
	return tw.Render()
}

// renderKeyValueTable renders two-column label/value rows under a title.
func renderKeyValueTable(title string, rows [][]string) string {
	tw := newTableWriter(2, nil)
	if title != "" {
		tw.SetTitle(title)
	}
	appendRows(tw, 2, rows)
	return tw.Render()
}

func newTableWriter(columns int, aligns []columnAlignment) table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	configs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{Number: i + 1, Align: align, AlignHeader: text.AlignLeft})
	}
	tw.SetColumnConfigs(configs)
	return tw
}

func appendRows(tw table.Writer, columns int, rows [][]string) {
	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}
}
