package resolve

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/supplyline/resolve/internal/alias"
	"github.com/supplyline/resolve/internal/batch"
	"github.com/supplyline/resolve/internal/catalog"
	"github.com/supplyline/resolve/internal/ingest"
	"github.com/supplyline/resolve/internal/resolver"
)

var (
	scheduleMonth int
	scheduleYear  int
)

// scheduleCmd represents the schedule command
var scheduleCmd = &cobra.Command{
	Use:   "schedule [file]",
	Short: "Ingest a monthly supply schedule workbook",
	Long: `Read the scheduled volumes from a supply schedule workbook and record
the plan for the given month. Suppliers that cannot be resolved are reported
and skipped; resolved plans are written regardless.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if scheduleMonth < 1 || scheduleMonth > 12 {
			return fmt.Errorf("invalid month %d", scheduleMonth)
		}

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

		store, err := alias.Open(cfg.Aliases.Dir, "schedules")
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

		schedule, err := ingest.ReadSchedule(args[0])
		if err != nil {
			return err
		}

		rows := make([]batch.Row, len(schedule))
		for i, r := range schedule {
			rows[i] = r
		}

		groups, unresolved, err := processor.Process(rows)
		if err != nil {
			return err
		}

		updated := 0
		for _, g := range groups {
			for _, row := range g.Rows {
				r := row.(ingest.ScheduleRow)
				plan := catalog.MonthlyPlan{
					Month:         scheduleMonth,
					Year:          scheduleYear,
					PlannedVolume: r.Volumes[scheduleMonth],
				}
				if err := cat.UpsertMonthlyPlan(ctx, g.Entity, plan); err != nil {
					return err
				}
				updated++
			}
		}

		for _, name := range unresolved {
			fmt.Printf("skipped unresolved supplier: %s\n", name)
		}
		fmt.Printf("%s: %d plans recorded for %02d/%d, %d suppliers skipped\n",
			args[0], updated, scheduleMonth, scheduleYear, len(unresolved))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scheduleCmd)

	scheduleCmd.Flags().IntVarP(&scheduleMonth, "month", "m", 0, "Plan month (1-12)")
	scheduleCmd.Flags().IntVarP(&scheduleYear, "year", "y", time.Now().Year(), "Plan year")
	scheduleCmd.Flags().BoolVar(&nonInteractive, "non-interactive", false, "Never prompt; unknown names are skipped")
	_ = scheduleCmd.MarkFlagRequired("month")
}
