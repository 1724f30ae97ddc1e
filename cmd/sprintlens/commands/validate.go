package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <project>",
	Short: "Check that a Jira project exists and has visible issues",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ok, err := pipe.ValidateProject(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("project %q not found or has no visible issues", args[0])
		}
		return printJSON(map[string]interface{}{"project": args[0], "valid": true})
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
