package resolve

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/supplyline/resolve/internal/catalog"
	"github.com/supplyline/resolve/internal/normalize"
)

// supplierCmd groups catalog management
var supplierCmd = &cobra.Command{
	Use:   "supplier",
	Short: "Manage the canonical supplier catalog",
}

var supplierAddCmd = &cobra.Command{
	Use:   "add [corporate-name]",
	Short: "Register a canonical supplier",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := catalog.Open(cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("failed to open catalog: %w", err)
		}
		defer cat.Close() //nolint:errcheck

		// Names are stored in display-uppercase form so workbook spellings
		// and catalog entries compare cleanly
		name := normalize.DisplayUpper(args[0])
		supplier, err := cat.AddSupplier(context.Background(), name)
		if err != nil {
			return err
		}

		fmt.Printf("Registered supplier %q (%s).\n", supplier.CorporateName, supplier.ID)
		return nil
	},
}

var supplierListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every registered supplier",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := catalog.Open(cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("failed to open catalog: %w", err)
		}
		defer cat.Close() //nolint:errcheck

		names, err := cat.Names(context.Background())
		if err != nil {
			return err
		}

		if len(names) == 0 {
			fmt.Println("The catalog is empty.")
			return nil
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(supplierCmd)
	supplierCmd.AddCommand(supplierAddCmd, supplierListCmd)
}
