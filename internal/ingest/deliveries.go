// Package ingest reads delivery and schedule workbooks into rows ready for
// batch resolution.
package ingest

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// DefaultDeliverySheet is the worksheet deliveries are read from when the
// configuration does not override it.
const DefaultDeliverySheet = "Deliveries"

// Delivery workbook column headers.
const (
	colSupplierName = "SUPPLIER_NAME"
	colSite         = "PRODUCTION_UNIT"
	colEntryDate    = "ENTRY_DATE"
	colOriginVolume = "ORIGIN_VOLUME"
	colEntryVolume  = "ENTRY_VOLUME"
	colMoisture     = "MOISTURE"
	colDensity      = "DENSITY"
	colFines        = "FINES"
	colVehiclePlate = "VEHICLE_PLATE"
	colOriginTicket = "ORIGIN_TICKET"
)

// DeliveryRow is one material delivery as typed in a source workbook.
type DeliveryRow struct {
	SupplierName string
	Site         string
	EntryDate    time.Time
	OriginVolume float64
	EntryVolume  float64
	Moisture     float64
	Density      float64
	Fines        float64
	VehiclePlate string
	OriginTicket string
}

// CounterpartyName joins the typed supplier name with the production-site
// prefix (the part before the first dash). Deliveries from different sites
// of one supplier are registered as distinct suppliers in the catalog, so
// the site is part of the identity being resolved.
func (r DeliveryRow) CounterpartyName() string {
	site := r.Site
	if i := strings.Index(site, "-"); i >= 0 {
		site = site[:i]
	}
	return strings.TrimSpace(strings.TrimSpace(r.SupplierName) + " " + strings.TrimSpace(site))
}

// ReadDeliveries reads every delivery row from the given sheet of an xlsx
// workbook. Rows with an empty supplier name are dropped; a malformed date
// or volume aborts the read with the offending row number.
func ReadDeliveries(path, sheet string) ([]DeliveryRow, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	if sheet == "" {
		sheet = DefaultDeliverySheet
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q from %s: %w", sheet, path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q in %s is empty", sheet, path)
	}

	columns, err := headerIndex(rows[0])
	if err != nil {
		return nil, fmt.Errorf("invalid header in %s: %w", path, err)
	}

	var deliveries []DeliveryRow
	for i, row := range rows[1:] {
		name := cell(row, columns[colSupplierName])
		if strings.TrimSpace(name) == "" {
			// Trailing or separator rows without a supplier name
			continue
		}

		rowNum := i + 2 // 1-based, after the header

		entryDate, err := parseDate(cell(row, columns[colEntryDate]))
		if err != nil {
			return nil, fmt.Errorf("row %d of %s: %w", rowNum, path, err)
		}

		d := DeliveryRow{
			SupplierName: name,
			Site:         cell(row, columns[colSite]),
			EntryDate:    entryDate,
			VehiclePlate: cell(row, columns[colVehiclePlate]),
			OriginTicket: cell(row, columns[colOriginTicket]),
		}

		for _, field := range []struct {
			column string
			dest   *float64
		}{
			{colOriginVolume, &d.OriginVolume},
			{colEntryVolume, &d.EntryVolume},
			{colMoisture, &d.Moisture},
			{colDensity, &d.Density},
			{colFines, &d.Fines},
		} {
			value, err := parseFloat(cell(row, columns[field.column]))
			if err != nil {
				return nil, fmt.Errorf("row %d of %s, column %s: %w", rowNum, path, field.column, err)
			}
			*field.dest = value
		}

		deliveries = append(deliveries, d)
	}

	return deliveries, nil
}

// headerIndex maps required column headers to their positions.
func headerIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToUpper(strings.TrimSpace(name))] = i
	}

	required := []string{
		colSupplierName, colSite, colEntryDate,
		colOriginVolume, colEntryVolume, colMoisture, colDensity, colFines,
		colVehiclePlate, colOriginTicket,
	}
	for _, name := range required {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}

	return index, nil
}

// cell returns the trimmed cell value at idx, tolerating short rows.
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseDate accepts either an Excel serial number or a formatted date
// string, matching how typed workbooks vary across years. Ambiguous slashed
// and dashed dates are always read day-first.
func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("empty entry date")
	}

	if serial, err := strconv.ParseFloat(value, 64); err == nil {
		date, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid serial date %q: %w", value, err)
		}
		return date, nil
	}

	for _, layout := range []string{"2006-01-02", "02/01/2006", "02-01-2006", "2006-01-02 15:04:05"} {
		if date, err := time.Parse(layout, value); err == nil {
			return date, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized entry date %q", value)
}

// parseFloat parses a numeric cell, treating blank as zero and tolerating a
// decimal comma.
func parseFloat(value string) (float64, error) {
	if value == "" {
		return 0, nil
	}
	value = strings.ReplaceAll(value, ",", ".")
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", value)
	}
	return parsed, nil
}
