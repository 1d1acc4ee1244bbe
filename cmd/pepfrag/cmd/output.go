package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"
)

// report is a rendered result: column headers and string rows for table
// and tsv output, and doc for yaml output.
type report struct {
	header []string
	rows   [][]string
	footer []string
	doc    any
}

func (r *report) append(row ...string) {
	r.rows = append(r.rows, row)
}

// render writes the report to w in the given format
func (r *report) render(w io.Writer, format string) error {
	switch strings.ToLower(format) {
	case "", "table":
		return r.renderTable(w)
	case "tsv":
		return r.renderTSV(w)
	case "yaml", "yml":
		return r.renderYAML(w)
	default:
		return fmt.Errorf("invalid output format '%s', must be table, tsv or yaml", format)
	}
}

func (r *report) renderTable(w io.Writer) error {
	table := tablewriter.NewWriter(w)
	table.SetHeader(r.header)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.AppendBulk(r.rows)
	if len(r.footer) > 0 {
		table.SetFooter(r.footer)
	}
	table.Render()
	return nil
}

func (r *report) renderTSV(w io.Writer) error {
	if _, err := fmt.Fprintln(w, strings.Join(r.header, "\t")); err != nil {
		return err
	}
	for _, row := range r.rows {
		if _, err := fmt.Fprintln(w, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	return nil
}

func (r *report) renderYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r.doc); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	return enc.Close()
}

func formatMass(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
