package commands

import (
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history <project> <from> <to>",
	Short: "Summarize issues resolved in a date range (YYYY-MM-DD)",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		entry, err := pipe.FetchRange(cmd.Context(), args[0], args[1], args[2])
		if err != nil {
			return err
		}
		return printJSON(entry)
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
}
