package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSettingsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change local preferences",
	}
	cmd.AddCommand(&cobra.Command{
		Use:       "unit [kg|lbs]",
		Short:     "Show or set the weight unit",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"kg", "lbs"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				if err := a.settings.SetUnit(args[0]); err != nil {
					return err
				}
			}
			unit, err := a.settings.Unit()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Weight unit: %s\n", unit)
			return nil
		},
	})
	return cmd
}
