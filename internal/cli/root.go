// Package cli implements the clipv command tree. Every subcommand is
// a protocol client of the daemon; none touches the history store
// directly.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clipv/clipv/internal/client"
	"github.com/clipv/clipv/internal/config"
)

var (
	cfgFile    string
	socketPath string

	cfg *config.Config

	// Version is stamped by the build.
	Version = "dev"
)

// RootCmd is the base clipv command.
var RootCmd = &cobra.Command{
	Use:   "clipv",
	Short: "clipv talks to the clipvd clipboard history daemon",
	Long: `clipv is the command-line client for clipvd, the clipboard
history daemon. It lists the recorded history, promotes an entry back
onto the clipboard, deletes entries, and stops the daemon.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if socketPath != "" {
			cfg.SocketPath = socketPath
		}
		return nil
	},
}

// Execute runs the clipv command tree.
func Execute() error {
	RootCmd.Version = Version
	return RootCmd.Execute()
}

func init() {
	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	RootCmd.PersistentFlags().StringVar(&socketPath, "socket", "", "daemon socket path override")

	RootCmd.AddCommand(
		historyCmd,
		promoteCmd,
		deleteCmd,
		clearCmd,
		stopCmd,
		statusCmd,
	)
}

// daemonClient returns a client bound to the configured socket.
func daemonClient() *client.Client {
	return client.New(cfg.SocketPath)
}
