package resolve

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/supplyline/resolve/internal/alias"
	"github.com/supplyline/resolve/internal/batch"
	"github.com/supplyline/resolve/internal/catalog"
	"github.com/supplyline/resolve/internal/ingest"
	"github.com/supplyline/resolve/internal/resolver"
)

var nonInteractive bool

// entriesCmd represents the entries command
var entriesCmd = &cobra.Command{
	Use:   "entries [file...]",
	Short: "Ingest delivery workbooks into the catalog",
	Long: `Read delivery rows from one or more xlsx workbooks, resolve each typed
supplier name against the catalog and persist the rows. The run is
all-or-nothing: if any name cannot be resolved, nothing is written and every
unknown name is reported at once.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := catalog.Open(cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("failed to open catalog: %w", err)
		}
		defer cat.Close() //nolint:errcheck

		ctx := context.Background()
		names, err := cat.Names(ctx)
		if err != nil {
			return err
		}

		store, err := alias.Open(cfg.Aliases.Dir, "deliveries")
		if err != nil {
			return err
		}

		var chooser resolver.Chooser
		if nonInteractive {
			chooser = resolver.SilentChooser{}
		} else {
			chooser = resolver.NewPromptChooser(os.Stdin, os.Stdout)
		}

		res := resolver.New(resolver.Config{
			AutoAcceptThreshold: cfg.Matching.AutoAcceptThreshold,
			CandidateLimit:      cfg.Matching.CandidateLimit,
		}, store, names, chooser, logger)
		processor := batch.NewProcessor(res, logger)

		for _, path := range args {
			if err := ingestDeliveryFile(ctx, cat, processor, path); err != nil {
				return err
			}
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(entriesCmd)

	entriesCmd.Flags().BoolVar(&nonInteractive, "non-interactive", false, "Never prompt; unknown names fail the run")
}

func ingestDeliveryFile(ctx context.Context, cat *catalog.Store, processor *batch.Processor, path string) error {
	deliveries, err := ingest.ReadDeliveries(path, cfg.Ingest.DeliverySheet)
	if err != nil {
		return err
	}

	rows := make([]batch.Row, len(deliveries))
	for i, d := range deliveries {
		rows[i] = d
	}

	groups, err := processor.ProcessStrict(rows)
	if err != nil {
		return fmt.Errorf("workbook %s was not ingested: %w", path, err)
	}

	total := 0
	for _, g := range groups {
		toInsert := make([]catalog.Delivery, 0, len(g.Rows))
		for _, row := range g.Rows {
			d := row.(ingest.DeliveryRow)
			toInsert = append(toInsert, catalog.Delivery{
				EntryDate:    d.EntryDate,
				OriginVolume: d.OriginVolume,
				EntryVolume:  d.EntryVolume,
				Moisture:     d.Moisture,
				Density:      d.Density,
				Fines:        d.Fines,
				VehiclePlate: d.VehiclePlate,
				OriginTicket: d.OriginTicket,
			})
		}

		inserted, err := cat.AddDeliveries(ctx, g.Entity, toInsert)
		if err != nil {
			return err
		}
		total += inserted

		logger.Info("deliveries ingested",
			"file", path, "supplier", g.Entity, "rows", len(toInsert), "inserted", inserted)
	}

	fmt.Printf("%s: %d rows inserted across %d suppliers\n", path, total, len(groups))
	return nil
}
