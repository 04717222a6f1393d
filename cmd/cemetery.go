package cmd

import (
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ChaseHampton/graver/internal/cemetery"
	"github.com/ChaseHampton/graver/internal/export"
)

func newCemeteryCmd() *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "cemetery ID|URL",
		Short: "Scrape a cemetery page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}

			u := cemeteryURL(args[0], app.Config.Site.BaseURL)
			c, err := app.Cemeteries.Parse(cmd.Context(), u)
			if err != nil {
				return err
			}

			if save {
				store, err := app.Store(cmd.Context())
				if err != nil {
					return err
				}
				if err := store.SaveCemetery(cmd.Context(), c); err != nil {
					return err
				}
				app.Logger.Info("saved cemetery", zap.Int64("cemetery_id", c.CemeteryID))
			}
			return export.WriteJSON(cmd.OutOrStdout(), c)
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "save the cemetery to the database")
	return cmd
}

// cemeteryURL accepts a bare cemetery id or a full URL.
func cemeteryURL(arg, base string) string {
	if id, err := strconv.ParseInt(arg, 10, 64); err == nil && id > 0 {
		return cemetery.CanonicalURL(base, id)
	}
	return arg
}
