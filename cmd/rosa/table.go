package main

import (
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"github.com/FocuswithJustin/RosaArchive/core/errors"
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
	for i := range headers {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
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
		if i < len(aligns) && aligns[i] == alignRight {
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

func printTable(out io.Writer, headers []string, rows [][]string, aligns []columnAlignment) error {
	_, err := fmt.Fprintln(out, renderTable(headers, rows, aligns))
	return err
}

// printDiagnostics writes one line per collected diagnostic.
func printDiagnostics(out io.Writer, label string, errs *errors.Collector) {
	for _, msg := range errs.Strings() {
		fmt.Fprintf(out, "%s: %s\n", label, msg)
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func shouldColorize(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// status renders a pass/fail cell, in color on a terminal.
func status(pass, colorize bool) string {
	switch {
	case pass && colorize:
		return text.FgGreen.Sprint("pass")
	case pass:
		return "pass"
	case colorize:
		return text.FgRed.Sprint("FAIL")
	}
	return "FAIL"
}
