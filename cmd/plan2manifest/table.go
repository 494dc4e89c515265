package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ivlev/plan2manifest/internal/manifest"
	"github.com/ivlev/plan2manifest/internal/validator"
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

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

func seconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "s"
}

func scenesTable(m *manifest.Manifest) string {
	rows := make([][]string, 0, len(m.Scenes))
	for _, s := range m.Scenes {
		names := make([]string, 0, len(s.Effects))
		for _, e := range s.Effects {
			names = append(names, fmt.Sprintf("%s(%d)", e.Name, e.OrderingHint))
		}
		rows = append(rows, []string{
			s.ID,
			s.Purpose,
			seconds(s.StartAtSec),
			seconds(s.DurationSeconds),
			strings.Join(names, ", "),
		})
	}
	return renderTable(
		[]string{"Scene", "Purpose", "Start", "Duration", "Effects"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft},
	)
}

func jobsTable(m *manifest.Manifest) string {
	rows := make([][]string, 0, len(m.Jobs))
	for _, j := range m.Jobs {
		rows = append(rows, []string{
			strconv.Itoa(j.OrderingHint),
			j.ID,
			j.Type,
			strconv.Itoa(j.Priority),
			strings.Join(j.DependsOn, ", "),
		})
	}
	return renderTable(
		[]string{"#", "Job", "Type", "Priority", "Depends on"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft},
	)
}

func printReport(w io.Writer, r validator.Report) {
	for _, msg := range r.Warnings {
		fmt.Fprintf(w, "[!] %s\n", msg)
	}
	for _, msg := range r.Optimizations {
		fmt.Fprintf(w, "[*] %s\n", msg)
	}
	if r.IsValid {
		fmt.Fprintf(w, "[+] Манифест корректен (предупреждений: %d, оптимизаций: %d)\n", len(r.Warnings), len(r.Optimizations))
	} else {
		fmt.Fprintln(w, "[-] Структурная проверка не пройдена")
	}
}
