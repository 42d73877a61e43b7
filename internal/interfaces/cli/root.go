// Package cli defines the keyipchat command-line interface: serving the API,
// running batch ingestion and asking one-shot questions.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/turtacn/KeyIP-Chat/internal/config"
)

// rootOptions carries the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
}

// NewRootCommand builds the root command with all subcommands attached.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "keyipchat",
		Short:         "Patent corpus chatbot: hybrid retrieval over ingested patent documents",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to config file (default: environment variables only)")

	root.AddCommand(
		newServeCommand(opts),
		newIngestCommand(opts),
		newAskCommand(opts),
	)
	return root
}

// loadConfig resolves configuration from the --config file or, when omitted,
// from KEYIPCHAT_* environment variables alone.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	if o.configPath != "" {
		return config.Load(o.configPath)
	}
	return config.LoadFromEnv()
}

// Execute runs the CLI and exits non-zero on error.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
