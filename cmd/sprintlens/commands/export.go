package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"sprintlens/internal/cache"
	"sprintlens/internal/export"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	exportSprintID int
	exportFrom     string
	exportTo       string
	exportDir      string
)

var exportCmd = &cobra.Command{
	Use:   "export <project>",
	Short: "Export normalized issues of a sprint or date range to CSV",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		project := args[0]

		var entry *cache.Entry
		var err error
		switch {
		case exportSprintID > 0:
			entry, err = pipe.FetchSprint(cmd.Context(), project, exportSprintID)
		case exportFrom != "" || exportTo != "":
			entry, err = pipe.FetchRange(cmd.Context(), project, exportFrom, exportTo)
		default:
			return fmt.Errorf("pass --sprint, or --from and --to")
		}
		if err != nil {
			return err
		}

		path := filepath.Join(exportDir, entry.Key.Label()+".csv")
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()

		if err := export.WriteCSV(f, entry.Records); err != nil {
			return err
		}
		log.Info().Str("path", path).Int("records", len(entry.Records)).Msg("CSV written")
		fmt.Fprintln(os.Stdout, path)
		return nil
	},
}

func init() {
	exportCmd.Flags().IntVar(&exportSprintID, "sprint", 0, "sprint ID to export")
	exportCmd.Flags().StringVar(&exportFrom, "from", "", "range start (YYYY-MM-DD)")
	exportCmd.Flags().StringVar(&exportTo, "to", "", "range end (YYYY-MM-DD)")
	exportCmd.Flags().StringVar(&exportDir, "out", ".", "output directory")
	rootCmd.AddCommand(exportCmd)
}
