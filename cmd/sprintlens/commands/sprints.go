package commands

import (
	"github.com/spf13/cobra"
)

var (
	sprintsLimit  int
	sprintsFilter string
)

var sprintsCmd = &cobra.Command{
	Use:   "sprints <project>",
	Short: "List the active sprint and recent closed sprints of a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sprints, err := pipe.Sprints(cmd.Context(), args[0], sprintsLimit, sprintsFilter)
		if err != nil {
			return err
		}
		return printJSON(sprints)
	},
}

func init() {
	sprintsCmd.Flags().IntVar(&sprintsLimit, "limit", 10, "maximum number of closed sprints to list")
	sprintsCmd.Flags().StringVar(&sprintsFilter, "filter", "", "keep only sprints whose name contains this text")
	rootCmd.AddCommand(sprintsCmd)
}
