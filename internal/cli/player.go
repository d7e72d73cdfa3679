package cli

import (
	"net/url"

	"github.com/spf13/cobra"
)

func newProgressionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "progression <player_id>",
		Short: "Show a player's level and XP",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Progression

			if err := client.Get("/api/v1/players/"+url.PathEscape(args[0])+"/progression", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newDuelsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "duels <player_id>",
		Short: "List a player's recent duels",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result DuelList

			path := "/api/v1/players/" + url.PathEscape(args[0]) + "/duels" + limitQuery(limit)
			if err := client.Get(path, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of duels (server default when 0)")

	return cmd
}
