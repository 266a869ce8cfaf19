package catalog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestAddSupplierAndNames(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	_, err := s.AddSupplier(ctx, "SANTA FE CARVOES")
	require.NoError(t, err)
	supplier, err := s.AddSupplier(ctx, "ACME LTDA")
	require.NoError(t, err)
	assert.NotEmpty(t, supplier.ID)

	names, err := s.Names(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ACME LTDA", "SANTA FE CARVOES"}, names)

	count, err := s.CountSuppliers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestAddSupplierDuplicateNameFails(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	_, err := s.AddSupplier(ctx, "ACME LTDA")
	require.NoError(t, err)
	_, err = s.AddSupplier(ctx, "ACME LTDA")
	assert.Error(t, err)
}

func TestSupplierByNameMissing(t *testing.T) {
	s := newStore(t)

	_, err := s.SupplierByName(context.Background(), "NOBODY")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found in the catalog")
}

func TestAddDeliveriesIgnoresDuplicateTickets(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	_, err := s.AddSupplier(ctx, "ACME LTDA")
	require.NoError(t, err)

	date := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	rows := []Delivery{
		{EntryDate: date, EntryVolume: 120.5, OriginTicket: "T-1"},
		{EntryDate: date, EntryVolume: 80.0, OriginTicket: "T-2"},
		{EntryDate: date, EntryVolume: 80.0, OriginTicket: "T-2"}, // duplicate
	}

	inserted, err := s.AddDeliveries(ctx, "ACME LTDA", rows)
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)

	count, err := s.CountDeliveries(ctx, "ACME LTDA")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// Re-running the same workbook inserts nothing new
	inserted, err = s.AddDeliveries(ctx, "ACME LTDA", rows[:2])
	require.NoError(t, err)
	assert.Equal(t, 0, inserted)
}

func TestAddDeliveriesEmptyTicketsDoNotConflict(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	_, err := s.AddSupplier(ctx, "ACME LTDA")
	require.NoError(t, err)

	date := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	rows := []Delivery{
		{EntryDate: date, EntryVolume: 10},
		{EntryDate: date, EntryVolume: 20},
	}

	inserted, err := s.AddDeliveries(ctx, "ACME LTDA", rows)
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)
}

func TestAddDeliveriesUnknownSupplier(t *testing.T) {
	s := newStore(t)

	_, err := s.AddDeliveries(context.Background(), "NOBODY", []Delivery{{}})
	assert.Error(t, err)
}

func TestUpsertMonthlyPlan(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	_, err := s.AddSupplier(ctx, "ACME LTDA")
	require.NoError(t, err)

	plan := MonthlyPlan{Month: 3, Year: 2024, PlannedVolume: 500}
	require.NoError(t, s.UpsertMonthlyPlan(ctx, "ACME LTDA", plan))

	// Upsert replaces the previous value for the same month
	plan.PlannedVolume = 650
	require.NoError(t, s.UpsertMonthlyPlan(ctx, "ACME LTDA", plan))

	volume, err := s.MonthlyPlanVolume(ctx, "ACME LTDA", 3, 2024)
	require.NoError(t, err)
	assert.Equal(t, 650.0, volume)
}

func TestUpsertMonthlyPlanInvalidMonth(t *testing.T) {
	s := newStore(t)

	err := s.UpsertMonthlyPlan(context.Background(), "ACME LTDA", MonthlyPlan{Month: 13, Year: 2024})
	assert.Error(t, err)
}
