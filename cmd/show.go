package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ChaseHampton/graver/internal/export"
)

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Print a stored memorial",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid memorial id %q", args[0])
			}
			app, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			store, err := app.Store(cmd.Context())
			if err != nil {
				return err
			}
			m, err := store.GetMemorial(cmd.Context(), id)
			if err != nil {
				return err
			}
			return export.WriteJSON(cmd.OutOrStdout(), m)
		},
	}
}
