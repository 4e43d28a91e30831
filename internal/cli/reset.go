package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewResetCommand creates the reset command.
func NewResetCommand(_ *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Drop every drink and seed the default one",
		Long: `Deletes all drinks, restarts id numbering and inserts a single
"water" drink. Intended for local development and test fixtures.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			if err := a.Migrate(cmd.Context()); err != nil {
				return err
			}
			drink, err := a.Drinks.Reset(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "reset drinks; seeded %q with id %d\n", drink.Title, drink.ID)
			return nil
		},
	}
}
