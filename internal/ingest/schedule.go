package ingest

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/supplyline/resolve/internal/normalize"
)

// Schedule workbooks use a fixed grid layout: the table starts in the
// second column, supplier and site occupy the first two table columns, each
// supplier block carries one row per kind ("scheduled", "actual"), and the
// twelve month columns follow the kind column. A totals row terminates the
// table.
const (
	scheduleNameIdx  = 1
	scheduleSiteIdx  = 2
	scheduleKindIdx  = 4
	scheduleMonthIdx = 4 // month m lives at scheduleMonthIdx + m

	scheduleDataRow = 9 // 0-based index of the first supplier row

	scheduledKind = "scheduled"
	totalsMarker  = "total"
)

// ScheduleRow is one supplier's planned volumes for a year.
type ScheduleRow struct {
	SupplierName string
	Site         string
	Volumes      [13]float64 // indexed by month, 1-12
}

// CounterpartyName returns the display-uppercase join of supplier and site,
// which is how schedule entries are keyed for aliasing and matching.
func (r ScheduleRow) CounterpartyName() string {
	return normalize.DisplayUpper(strings.TrimSpace(r.SupplierName) + " " + strings.TrimSpace(r.Site))
}

// ReadSchedule reads the scheduled-volume rows from the active sheet of a
// schedule workbook. Only "scheduled" rows are kept; "actual" rows and
// everything after the totals row are skipped.
func ReadSchedule(path string) ([]ScheduleRow, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if sheet == "" {
		return nil, fmt.Errorf("workbook %s has no active sheet", path)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q from %s: %w", sheet, path, err)
	}
	if len(rows) <= scheduleDataRow {
		return nil, fmt.Errorf("sheet %q in %s has no schedule rows", sheet, path)
	}

	var schedule []ScheduleRow
	for i, row := range rows[scheduleDataRow:] {
		name := cell(row, scheduleNameIdx)

		// The table ends at the totals row or the first blank name
		if name == "" || strings.Contains(strings.ToLower(name), totalsMarker) {
			break
		}

		// Keep only the scheduled volumes for each supplier
		if !strings.EqualFold(cell(row, scheduleKindIdx), scheduledKind) {
			continue
		}

		r := ScheduleRow{
			SupplierName: name,
			Site:         cell(row, scheduleSiteIdx),
		}

		for month := 1; month <= 12; month++ {
			volume, err := parseFloat(cell(row, scheduleMonthIdx+month))
			if err != nil {
				return nil, fmt.Errorf("row %d of %s, month %d: %w", scheduleDataRow+i+1, path, month, err)
			}
			r.Volumes[month] = volume
		}

		schedule = append(schedule, r)
	}

	if len(schedule) == 0 {
		return nil, fmt.Errorf("no scheduled rows found in %s", path)
	}

	return schedule, nil
}
