// Package importer turns an uploaded pricing schedule into line items.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"

	"github.com/spf13/cast"
	"github.com/xuri/excelize/v2"

	"github.com/Simplici0/tenderpricing/internal/pricing"
)

// ErrUnsupportedFormat is returned for files that are not .csv, .xlsx or .json.
var ErrUnsupportedFormat = errors.New("unsupported file format: must be .csv, .xlsx or .json")

// Column keys a schedule header can map to.
const (
	colDescription = "description"
	colQuantity    = "quantity"
	colUnitCost    = "unit_cost"
	colRiskFactor  = "risk_factor"
	colRiskLevel   = "risk_level"
	colUnit        = "unit"
	colCategory    = "category"
	colNotes       = "notes"
)

var headerAliases = map[string]string{
	"description":    colDescription,
	"item":           colDescription,
	"quantity":       colQuantity,
	"qty":            colQuantity,
	"unit_cost":      colUnitCost,
	"unit cost":      colUnitCost,
	"rate":           colUnitCost,
	"base_unit_cost": colUnitCost,
	"risk_factor":    colRiskFactor,
	"risk factor":    colRiskFactor,
	"risk_level":     colRiskLevel,
	"risk level":     colRiskLevel,
	"risk":           colRiskLevel,
	"unit":           colUnit,
	"category":       colCategory,
	"notes":          colNotes,
}

// Parse reads a schedule and picks the format from the file extension.
// Errors in the data are returned as *pricing.ValidationError with Index set
// to the 0-based data row (the header row is not counted).
func Parse(r io.Reader, fileName string) ([]pricing.Item, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv":
		return ParseCSV(r)
	case ".xlsx":
		return ParseXLSX(r)
	case ".json":
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("read json schedule: %w", err)
		}
		return pricing.DecodeItems(data)
	default:
		return nil, ErrUnsupportedFormat
	}
}

// ParseCSV reads a comma separated schedule with a header row.
func ParseCSV(r io.Reader) ([]pricing.Item, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv schedule: %w", err)
	}
	return itemsFromRows(rows)
}

// ParseXLSX reads the first sheet of a workbook with a header row.
func ParseXLSX(r io.Reader) ([]pricing.Item, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx schedule: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("read xlsx sheet: %w", err)
	}
	return itemsFromRows(rows)
}

func itemsFromRows(rows [][]string) ([]pricing.Item, error) {
	if len(rows) == 0 {
		return nil, &pricing.ValidationError{Index: -1, Field: "schedule", Message: "file must contain a header row"}
	}

	columns, err := mapHeaders(rows[0])
	if err != nil {
		return nil, err
	}

	// Error indexes count data rows as they appear in the file, blank rows
	// included.
	items := make([]pricing.Item, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		item, err := itemFromRow(i, columns, row)
		if err != nil {
			return nil, err
		}
		if err := pricing.Validate([]pricing.Item{item}, pricing.Parameters{}); err != nil {
			var ve *pricing.ValidationError
			if errors.As(err, &ve) {
				return nil, &pricing.ValidationError{Index: i, Field: ve.Field, Message: ve.Message}
			}
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// mapHeaders returns the column position of every recognised key.
func mapHeaders(headers []string) (map[string]int, error) {
	columns := make(map[string]int, len(headers))
	for i, h := range headers {
		norm := strings.ToLower(strings.TrimSpace(h))
		norm = strings.TrimSuffix(norm, " *")
		key, ok := headerAliases[norm]
		if !ok {
			continue
		}
		if _, dup := columns[key]; !dup {
			columns[key] = i
		}
	}

	for _, required := range []string{colDescription, colQuantity, colUnitCost} {
		if _, ok := columns[required]; !ok {
			return nil, &pricing.ValidationError{Index: -1, Field: required, Message: "column is missing from the header row"}
		}
	}
	return columns, nil
}

func itemFromRow(index int, columns map[string]int, row []string) (pricing.Item, error) {
	cell := func(key string) string {
		pos, ok := columns[key]
		if !ok || pos >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[pos])
	}

	item := pricing.Item{
		Description: cell(colDescription),
		Unit:        cell(colUnit),
		Category:    cell(colCategory),
		Notes:       cell(colNotes),
		RiskFactor:  pricing.DefaultRiskFactor,
	}
	if item.Description == "" {
		return pricing.Item{}, &pricing.ValidationError{Index: index, Field: colDescription, Message: "is required"}
	}

	var err error
	if item.Quantity, err = number(index, colQuantity, cell(colQuantity), true); err != nil {
		return pricing.Item{}, err
	}
	if item.UnitCost, err = number(index, colUnitCost, cell(colUnitCost), true); err != nil {
		return pricing.Item{}, err
	}

	if raw := cell(colRiskFactor); raw != "" {
		if item.RiskFactor, err = number(index, colRiskFactor, raw, false); err != nil {
			return pricing.Item{}, err
		}
	} else if level := strings.ToLower(cell(colRiskLevel)); level != "" {
		f, ok := pricing.RiskLevelFactor(level)
		if !ok {
			return pricing.Item{}, &pricing.ValidationError{Index: index, Field: colRiskLevel, Message: "must be one of low, medium, high"}
		}
		item.RiskFactor = f
	}

	return item, nil
}

// number converts a spreadsheet cell, tolerating thousands separators and
// surrounding spaces.
func number(index int, field, raw string, required bool) (float64, error) {
	if raw == "" {
		if required {
			return 0, &pricing.ValidationError{Index: index, Field: field, Message: "is required"}
		}
		return 0, nil
	}

	cleaned := strings.NewReplacer(",", "", " ", "", "\u00a0", "").Replace(raw)
	v, err := cast.ToFloat64E(cleaned)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &pricing.ValidationError{Index: index, Field: field, Message: fmt.Sprintf("must be a number, got %q", raw)}
	}
	return v, nil
}
