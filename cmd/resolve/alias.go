package resolve

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/supplyline/resolve/internal/alias"
	"github.com/supplyline/resolve/internal/catalog"
)

var aliasNamespace string

// aliasCmd groups alias store management
var aliasCmd = &cobra.Command{
	Use:   "alias",
	Short: "Manage learned alias mappings",
	Long: `Inspect and edit the alias store for a namespace. Each namespace holds
the raw spellings learned for one data source, mapped to canonical supplier
names.`,
}

var aliasListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every learned alias in the namespace",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := alias.Open(cfg.Aliases.Dir, aliasNamespace)
		if err != nil {
			return err
		}

		aliases := store.All()
		if len(aliases) == 0 {
			fmt.Printf("No aliases in namespace %q.\n", aliasNamespace)
			return nil
		}

		raws := make([]string, 0, len(aliases))
		for raw := range aliases {
			raws = append(raws, raw)
		}
		sort.Strings(raws)

		for _, raw := range raws {
			fmt.Printf("%s -> %s\n", raw, aliases[raw])
		}
		return nil
	},
}

var aliasAddCmd = &cobra.Command{
	Use:   "add [raw-name] [supplier]",
	Short: "Map a raw spelling to a catalog supplier",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rawName, supplierName := args[0], args[1]

		cat, err := catalog.Open(cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("failed to open catalog: %w", err)
		}
		defer cat.Close() //nolint:errcheck

		// The target must be a registered supplier
		supplier, err := cat.SupplierByName(context.Background(), supplierName)
		if err != nil {
			return err
		}

		store, err := alias.Open(cfg.Aliases.Dir, aliasNamespace)
		if err != nil {
			return err
		}
		if err := store.Add(rawName, supplier.CorporateName); err != nil {
			return err
		}

		fmt.Printf("Registered alias %q -> %q in namespace %q.\n", rawName, supplier.CorporateName, aliasNamespace)
		return nil
	},
}

var aliasRemoveCmd = &cobra.Command{
	Use:   "remove [raw-name]",
	Short: "Forget the mapping for a raw spelling",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := alias.Open(cfg.Aliases.Dir, aliasNamespace)
		if err != nil {
			return err
		}

		removed, err := store.Remove(args[0])
		if err != nil {
			return err
		}
		if !removed {
			return fmt.Errorf("no alias registered for %q in namespace %q", args[0], aliasNamespace)
		}

		fmt.Printf("Removed alias %q from namespace %q.\n", args[0], aliasNamespace)
		return nil
	},
}

var aliasClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop every alias in the namespace",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := alias.Open(cfg.Aliases.Dir, aliasNamespace)
		if err != nil {
			return err
		}

		count := store.Len()
		if err := store.Clear(); err != nil {
			return err
		}

		fmt.Printf("Cleared %d aliases from namespace %q.\n", count, aliasNamespace)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(aliasCmd)
	aliasCmd.AddCommand(aliasListCmd, aliasAddCmd, aliasRemoveCmd, aliasClearCmd)

	aliasCmd.PersistentFlags().StringVar(&aliasNamespace, "namespace", "deliveries", "Alias namespace")
}
