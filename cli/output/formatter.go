// Package output renders preppy command results for the terminal.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"
)

// Format selects how command results are rendered
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat parses the --output flag
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "table":
		return FormatTable, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("invalid output format: %s (valid: table, json, yaml)", s)
}

// Tabular is implemented by results with a table rendering
type Tabular interface {
	Table() TableData
}

// TableData is a headed grid of cells
type TableData struct {
	Headers []string
	Rows    [][]string
}

// records keys every row by its column header
func (d TableData) records() []map[string]string {
	records := make([]map[string]string, 0, len(d.Rows))
	for _, row := range d.Rows {
		record := make(map[string]string, len(d.Headers))
		for i, header := range d.Headers {
			if i < len(row) {
				record[header] = row[i]
			}
		}
		records = append(records, record)
	}
	return records
}

// Formatter writes results to Writer and warnings to ErrWriter. Quiet
// suppresses both.
type Formatter struct {
	Format    Format
	NoHeaders bool
	Quiet     bool
	Writer    io.Writer
	ErrWriter io.Writer
}

// NewFormatter creates a formatter on stdout and stderr
func NewFormatter(format Format, noHeaders, quiet bool) *Formatter {
	return &Formatter{
		Format:    format,
		NoHeaders: noHeaders,
		Quiet:     quiet,
		Writer:    os.Stdout,
		ErrWriter: os.Stderr,
	}
}

// Print renders v. In table mode a Tabular value becomes a table and
// anything else is written as YAML.
func (f *Formatter) Print(v interface{}) error {
	if f.Quiet {
		return nil
	}
	if f.Format == FormatJSON {
		return f.encodeJSON(v)
	}
	if t, ok := v.(Tabular); ok && f.Format == FormatTable {
		f.PrintTable(t.Table())
		return nil
	}
	return f.encodeYAML(v)
}

// PrintTable renders data as a borderless tab-padded table, or as a list
// of records in the JSON and YAML formats
func (f *Formatter) PrintTable(data TableData) {
	if f.Quiet {
		return
	}
	switch f.Format {
	case FormatJSON:
		_ = f.encodeJSON(data.records())
		return
	case FormatYAML:
		_ = f.encodeYAML(data.records())
		return
	}

	table := tablewriter.NewWriter(f.Writer)
	if !f.NoHeaders && len(data.Headers) > 0 {
		table.SetHeader(data.Headers)
	}
	plain(table)
	table.AppendBulk(data.Rows)
	table.Render()
}

// plain strips every border and separator from table
func plain(table *tablewriter.Table) {
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetTablePadding("\t")
	table.SetNoWhiteSpace(true)
}

// PrintLine writes a status line such as "Nothing to build" or the build's
// closing message
func (f *Formatter) PrintLine(line string) {
	if f.Quiet {
		return
	}
	_, _ = fmt.Fprintln(f.Writer, line)
}

// PrintWarning writes a plan or build warning to ErrWriter
func (f *Formatter) PrintWarning(message string) {
	if f.Quiet {
		return
	}
	_, _ = fmt.Fprintln(f.ErrWriter, "Warning:", message)
}

func (f *Formatter) encodeJSON(v interface{}) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (f *Formatter) encodeYAML(v interface{}) error {
	enc := yaml.NewEncoder(f.Writer)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
