package cmd

import (
	"fmt"
	"io"

	"github.com/AlfredBerg/job-crawler/internal/jobs"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

const previewCellWidth = 40

func printPreview(w io.Writer, records []jobs.Record, n int) {
	if n > len(records) {
		n = len(records)
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"#", "Title", "Company", "Location", "Salary"})
	for i, r := range records[:n] {
		t.AppendRow(table.Row{i + 1, r.Title, orDash(r.Company), orDash(r.Location), orDash(r.Salary)})
	}
	if n < len(records) {
		t.AppendFooter(table.Row{"", "", "", "", fmt.Sprintf("+%d more", len(records)-n)})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, WidthMax: previewCellWidth, WidthMaxEnforcer: text.Trim},
		{Number: 3, WidthMax: previewCellWidth, WidthMaxEnforcer: text.Trim},
	})
	t.Render()
}

func orDash(v *string) string {
	if v == nil || *v == "" {
		return "-"
	}
	return *v
}
