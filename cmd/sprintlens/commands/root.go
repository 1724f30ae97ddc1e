package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"sprintlens/internal/config"
	"sprintlens/internal/jira"
	"sprintlens/internal/logging"
	"sprintlens/internal/pipeline"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose bool
	cfg     *config.AppConfig

	pipe *pipeline.Pipeline
)

var rootCmd = &cobra.Command{
	Use:   "sprintlens",
	Short: "Sprintlens summarizes Jira sprint and delivery data",
	Long: `Sprintlens fetches Jira issues for a sprint or a resolution date range,
normalizes Portuguese and English type/status names into canonical buckets
and reports throughput, story points and resolution-time statistics.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(verbose)

		var err error
		cfg, err = config.Load()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load configuration")
		}

		client := jira.NewClient(cfg.Jira)
		pipe = pipeline.New(client, pipeline.Options{
			SprintTTL:        cfg.SprintTTL,
			ProjectTTL:       cfg.ProjectTTL,
			SprintFieldStyle: cfg.SprintFieldStyle,
		})

		log.Info().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Msg("Sprintlens starting")
	},
}

func Execute() error {
	return rootCmd.Execute()
}

// printJSON writes data as indented JSON to stdout.
func printJSON(data interface{}) error {
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(os.Stdout, string(out))
	return err
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}
