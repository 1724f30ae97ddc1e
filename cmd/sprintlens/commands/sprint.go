package commands

import (
	"strconv"

	"github.com/spf13/cobra"
)

var sprintCmd = &cobra.Command{
	Use:   "sprint <project> <sprint-id>",
	Short: "Fetch and summarize all issues of one sprint",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[1])
		if err != nil {
			return err
		}
		entry, err := pipe.FetchSprint(cmd.Context(), args[0], id)
		if err != nil {
			return err
		}
		return printJSON(entry)
	},
}

func init() {
	rootCmd.AddCommand(sprintCmd)
}
