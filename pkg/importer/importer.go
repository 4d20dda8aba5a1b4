// Package importer loads hardware assets from .xlsx workbooks. Columns are
// located through a YAML mapping and rows are upserted by serial number.
package importer

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/tealeg/xlsx/v3"
	"gopkg.in/yaml.v3"
)

//go:embed mapping/hardware_assets.yaml
var defaultMapping []byte

// AnySheet is the mapping key that applies to sheets without their own entry
const AnySheet = "*"

// PurchaseDateLayout is the layout imported purchase dates are stored in
const PurchaseDateLayout = "02/01/2006"

// Statuses are the accepted asset statuses, in canonical spelling
var Statuses = []string{"Available", "Assigned", "Maintenance", "Retired"}

// ErrTooManyErrors stops an import once the error budget is spent
var ErrTooManyErrors = errors.New("too many errors")

// ImportOptions defines the configuration for Excel import operations
type ImportOptions struct {
	MappingPath string // empty uses the embedded mapping
	DryRun      bool
	MaxErrors   int // default 50
}

// Record is one asset read from a workbook row
type Record struct {
	AssetID      string
	Name         string
	SerialNumber string
	Category     string
	Status       string
	AssignedTo   string
	PurchaseDate string

	// Blank holds the fields whose cell was empty, including those
	// filled from the mapping defaults
	Blank map[string]bool
}

// Sink stores imported records
type Sink interface {
	// Exists reports whether an asset with the serial number is stored
	Exists(ctx context.Context, serial string) (bool, error)
	// Upsert stores the record and reports whether it was new
	Upsert(ctx context.Context, rec Record) (bool, error)
}

// RowError represents an error that occurred during row processing
type RowError struct {
	Sheet   string `json:"sheet"`
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// SheetSummary contains the import statistics for a single sheet
type SheetSummary struct {
	Name     string     `json:"name"`
	Inserted int        `json:"inserted"`
	Updated  int        `json:"updated"`
	Skipped  int        `json:"skipped"`
	Errors   int        `json:"errors"`
	Samples  []RowError `json:"error_samples,omitempty"`
}

// ImportSummary contains the overall import statistics
type ImportSummary struct {
	Inserted int            `json:"inserted"`
	Updated  int            `json:"updated"`
	Skipped  int            `json:"skipped"`
	Errors   int            `json:"errors"`
	Sheets   []SheetSummary `json:"sheets"`
	DryRun   bool           `json:"dry_run"`
}

// maxSamples bounds the row errors kept per sheet
const maxSamples = 10

// MappingConfig represents the YAML mapping configuration
type MappingConfig struct {
	Version  int                    `yaml:"version"`
	Defaults map[string]string      `yaml:"defaults"`
	Sheets   map[string]SheetConfig `yaml:"sheets"`
}

type SheetConfig struct {
	Columns map[string]ColumnConfig `yaml:"columns"`
	Aliases map[string][]string     `yaml:"aliases"`
}

type ColumnConfig struct {
	Header   string `yaml:"header"`
	Type     string `yaml:"type"`
	Required bool   `yaml:"required"`
}

var recordFields = map[string]func(*Record) *string{
	"asset_id":      func(r *Record) *string { return &r.AssetID },
	"name":          func(r *Record) *string { return &r.Name },
	"serial_number": func(r *Record) *string { return &r.SerialNumber },
	"category":      func(r *Record) *string { return &r.Category },
	"status":        func(r *Record) *string { return &r.Status },
	"assigned_to":   func(r *Record) *string { return &r.AssignedTo },
	"purchase_date": func(r *Record) *string { return &r.PurchaseDate },
}

// ParseMapping decodes and checks a mapping document
func ParseMapping(data []byte) (*MappingConfig, error) {
	var m MappingConfig
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse mapping: %w", err)
	}
	if len(m.Sheets) == 0 {
		return nil, errors.New("mapping defines no sheets")
	}
	for sheet, sc := range m.Sheets {
		serial, ok := sc.Columns["serial_number"]
		if !ok || !serial.Required {
			return nil, fmt.Errorf("sheet %q: serial_number must be a required column", sheet)
		}
		for field := range sc.Columns {
			if _, known := recordFields[field]; !known {
				return nil, fmt.Errorf("sheet %q: unknown field %q", sheet, field)
			}
		}
	}
	for field := range m.Defaults {
		if _, known := recordFields[field]; !known {
			return nil, fmt.Errorf("defaults: unknown field %q", field)
		}
	}
	return &m, nil
}

// LoadMapping reads the mapping at path, or the embedded one when path is empty
func LoadMapping(path string) (*MappingConfig, error) {
	if path == "" {
		return ParseMapping(defaultMapping)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mapping %s: %w", path, err)
	}
	return ParseMapping(data)
}

func (m *MappingConfig) sheet(name string) (SheetConfig, bool) {
	if sc, ok := m.Sheets[name]; ok {
		return sc, true
	}
	sc, ok := m.Sheets[AnySheet]
	return sc, ok
}

// ImportExcel reads the workbook in r and hands every valid row to sink.
// In dry-run mode nothing is written and inserted/updated are predicted.
func ImportExcel(ctx context.Context, sink Sink, r io.Reader, opts ImportOptions) (ImportSummary, error) {
	summary := ImportSummary{
		DryRun: opts.DryRun,
		Sheets: []SheetSummary{},
	}
	if opts.MaxErrors <= 0 {
		opts.MaxErrors = 50
	}

	mapping, err := LoadMapping(opts.MappingPath)
	if err != nil {
		return summary, fmt.Errorf("failed to load mapping config: %w", err)
	}

	// xlsx needs random access, so the upload is buffered
	data, err := io.ReadAll(r)
	if err != nil {
		return summary, fmt.Errorf("failed to read Excel file: %w", err)
	}
	xlFile, err := xlsx.OpenBinary(data)
	if err != nil {
		return summary, fmt.Errorf("failed to open Excel file: %w", err)
	}

	for _, sheet := range xlFile.Sheets {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		sheetConfig, ok := mapping.sheet(sheet.Name)
		if !ok {
			continue
		}

		sheetSummary, err := processSheet(ctx, sink, sheet, sheetConfig, mapping.Defaults, opts)
		summary.Sheets = append(summary.Sheets, sheetSummary)
		summary.Inserted += sheetSummary.Inserted
		summary.Updated += sheetSummary.Updated
		summary.Skipped += sheetSummary.Skipped
		summary.Errors += sheetSummary.Errors
		if err != nil {
			return summary, err
		}
		if summary.Errors > opts.MaxErrors {
			return summary, fmt.Errorf("%w (%d), stopping import", ErrTooManyErrors, summary.Errors)
		}
	}
	return summary, nil
}

func (s *SheetSummary) fail(row int, msg string) {
	s.Errors++
	if len(s.Samples) < maxSamples {
		s.Samples = append(s.Samples, RowError{Sheet: s.Name, Row: row, Message: msg})
	}
}

// headerColumns maps each mapped field to its column index
func headerColumns(sheet *xlsx.Sheet, sc SheetConfig) (map[string]int, error) {
	header, err := sheet.Row(0)
	if err != nil {
		return nil, err
	}

	byName := map[string]int{}
	for col := 0; col < sheet.MaxCol; col++ {
		name := strings.ToUpper(strings.TrimSpace(header.GetCell(col).String()))
		if name != "" {
			if _, dup := byName[name]; !dup {
				byName[name] = col
			}
		}
	}

	cols := map[string]int{}
	for field, cc := range sc.Columns {
		candidates := append([]string{cc.Header, field}, sc.Aliases[field]...)
		for _, c := range candidates {
			if idx, ok := byName[strings.ToUpper(strings.TrimSpace(c))]; ok {
				cols[field] = idx
				break
			}
		}
	}

	var missing []string
	for field, cc := range sc.Columns {
		if _, ok := cols[field]; !ok && cc.Required {
			missing = append(missing, cc.Header)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return cols, nil
}

func processSheet(ctx context.Context, sink Sink, sheet *xlsx.Sheet, sc SheetConfig, defaults map[string]string, opts ImportOptions) (SheetSummary, error) {
	summary := SheetSummary{Name: sheet.Name}

	cols, err := headerColumns(sheet, sc)
	if err != nil {
		summary.fail(1, "Failed to read header row: "+err.Error())
		return summary, nil
	}

	// Serials seen earlier in this sheet count as updates in a dry run
	seen := map[string]bool{}

	for rowIdx := 1; rowIdx < sheet.MaxRow; rowIdx++ {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		row, err := sheet.Row(rowIdx)
		if err != nil {
			break
		}
		line := rowIdx + 1

		rec, empty, err := buildRecord(row, cols, sc, defaults)
		if empty {
			summary.Skipped++
			continue
		}
		if err != nil {
			summary.fail(line, err.Error())
			continue
		}

		var created bool
		if opts.DryRun {
			exists, err := sink.Exists(ctx, rec.SerialNumber)
			if err != nil {
				summary.fail(line, err.Error())
				continue
			}
			created = !exists && !seen[rec.SerialNumber]
		} else {
			created, err = sink.Upsert(ctx, rec)
			if err != nil {
				summary.fail(line, err.Error())
				continue
			}
		}
		seen[rec.SerialNumber] = true

		if created {
			summary.Inserted++
		} else {
			summary.Updated++
		}
	}
	return summary, nil
}

// buildRecord reads one row. empty is true when no mapped cell has a value.
func buildRecord(row *xlsx.Row, cols map[string]int, sc SheetConfig, defaults map[string]string) (Record, bool, error) {
	var rec Record
	values := map[string]string{}
	for field, idx := range cols {
		cell := row.GetCell(idx)
		v, err := cellValue(cell, sc.Columns[field].Type)
		if err != nil {
			return rec, false, fmt.Errorf("%s: %v", sc.Columns[field].Header, err)
		}
		if v != "" {
			values[field] = v
		}
	}
	if len(values) == 0 {
		return rec, true, nil
	}

	for field, v := range defaults {
		*recordFields[field](&rec) = v
	}
	for field, v := range values {
		*recordFields[field](&rec) = v
	}
	rec.Blank = map[string]bool{}
	for field := range recordFields {
		if values[field] == "" {
			rec.Blank[field] = true
		}
	}

	var missing []string
	for field, cc := range sc.Columns {
		if cc.Required && values[field] == "" {
			missing = append(missing, cc.Header)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return rec, false, fmt.Errorf("missing %s", strings.Join(missing, ", "))
	}
	return rec, false, nil
}

func cellValue(cell *xlsx.Cell, typ string) (string, error) {
	switch strings.ToUpper(typ) {
	case "DATE":
		if cell.IsTime() {
			t, err := cell.GetTime(false)
			if err != nil {
				return "", err
			}
			return t.Format(PurchaseDateLayout), nil
		}
		return parseDate(strings.TrimSpace(cell.String()))
	case "STATUS":
		return parseStatus(strings.TrimSpace(cell.String()))
	default:
		return strings.TrimSpace(cell.String()), nil
	}
}

var dateLayouts = []string{
	PurchaseDateLayout,
	"2006-01-02",
	"2/1/2006",
	"02.01.2006",
	"2006-01-02 15:04:05",
}

func parseDate(v string) (string, error) {
	if v == "" {
		return "", nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Format(PurchaseDateLayout), nil
		}
	}
	return "", fmt.Errorf("invalid date %q (want DD/MM/YYYY)", v)
}

func parseStatus(v string) (string, error) {
	if v == "" {
		return "", nil
	}
	for _, s := range Statuses {
		if strings.EqualFold(s, v) {
			return s, nil
		}
	}
	return "", fmt.Errorf("invalid status %q", v)
}
