package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	client *Client
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "homeguess",
		Short: "CLI tool for the homeguess multiplayer API",
		Long: `homeguess is a CLI tool for playing two-player home guessing matches.

It supports every session operation (create, join, advance, guess, score,
leave), catalog lookups, and real-time session updates over a websocket.

create and join remember the session and player ids in the state file so
later commands can omit them.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.LoadState(); err != nil {
				return err
			}

			client = NewClient(cfg.ServerURL)
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: HOMEGUESS_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.StateFile, "state-file", cfg.StateFile, "Session state file (env: HOMEGUESS_STATE_FILE)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().StringVar(&cfg.SessionID, "session", "", "Session id (default: from state file)")
	rootCmd.PersistentFlags().StringVar(&cfg.PlayerID, "player", "", "Player id (default: from state file)")

	// Add subcommands
	rootCmd.AddCommand(newCreateCmd())
	rootCmd.AddCommand(newJoinCmd())
	rootCmd.AddCommand(newAdvanceCmd())
	rootCmd.AddCommand(newGuessCmd())
	rootCmd.AddCommand(newScoreCmd())
	rootCmd.AddCommand(newLeaveCmd())
	rootCmd.AddCommand(newStateCmd())
	rootCmd.AddCommand(newDeleteCmd())
	rootCmd.AddCommand(newZipsCmd())
	rootCmd.AddCommand(newRandomItemCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
