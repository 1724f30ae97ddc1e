package commands

import (
	"sprintlens/internal/rpc"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the JSON-RPC tool server over stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		log.Info().Msg("Starting stdio JSON-RPC loop")
		server := rpc.NewServer(pipe, Version)
		return server.Serve(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
