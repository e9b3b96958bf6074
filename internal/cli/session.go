package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

func newCreateCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new session and wait for an opponent",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result JoinResult

			if err := client.Post("/api/multiplayer/create", map[string]string{"playerName": name}, &result); err != nil {
				return err
			}

			if err := cfg.SaveState(result.SessionID, result.PlayerID); err != nil {
				return fmt.Errorf("failed to save state: %w", err)
			}

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Your display name")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newJoinCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "join <sessionId>",
		Short: "Join an existing session as the second player",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result JoinResult

			req := map[string]string{"sessionId": args[0], "playerName": name}
			if err := client.Post("/api/multiplayer/join", req, &result); err != nil {
				return err
			}

			if err := cfg.SaveState(result.SessionID, result.PlayerID); err != nil {
				return fmt.Errorf("failed to save state: %w", err)
			}

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Your display name")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newAdvanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "advance",
		Short: "Start the next round, or show the current round's home",
		RunE: func(cmd *cobra.Command, args []string) error {
			sessionID, err := cfg.RequireSession()
			if err != nil {
				return err
			}

			var result AdvanceResult

			if err := client.Post("/api/multiplayer/advance", map[string]string{"sessionId": sessionID}, &result); err != nil {
				return err
			}

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGuessCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "guess <zip>",
		Short: "Guess the zip code of the current round's home",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sessionID, err := cfg.RequireSession()
			if err != nil {
				return err
			}
			playerID, err := cfg.RequirePlayer()
			if err != nil {
				return err
			}

			var result OKResult

			req := map[string]string{"sessionId": sessionID, "playerId": playerID, "zip": args[0]}
			if err := client.Post("/api/multiplayer/guess", req, &result); err != nil {
				return err
			}

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newScoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "score",
		Short: "Score the current round once both players have guessed",
		RunE: func(cmd *cobra.Command, args []string) error {
			sessionID, err := cfg.RequireSession()
			if err != nil {
				return err
			}

			var result ScoreResult

			if err := client.Post("/api/multiplayer/score", map[string]string{"sessionId": sessionID}, &result); err != nil {
				return err
			}

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newLeaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "leave",
		Short: "Leave the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			sessionID, err := cfg.RequireSession()
			if err != nil {
				return err
			}
			playerID, err := cfg.RequirePlayer()
			if err != nil {
				return err
			}

			var result OKResult

			req := map[string]string{"sessionId": sessionID, "playerId": playerID}
			if err := client.Post("/api/multiplayer/leave", req, &result); err != nil {
				return err
			}

			if err := cfg.ClearState(); err != nil {
				return fmt.Errorf("failed to clear state: %w", err)
			}

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			out.PrintMessage("Left session " + sessionID)
			return nil
		},
	}
}

func newStateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Show the full session state",
		RunE: func(cmd *cobra.Command, args []string) error {
			sessionID, err := cfg.RequireSession()
			if err != nil {
				return err
			}

			var result Session

			if err := client.Get("/api/multiplayer/state?sessionId="+url.QueryEscape(sessionID), &result); err != nil {
				return err
			}

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete",
		Short: "Delete the session for both players",
		RunE: func(cmd *cobra.Command, args []string) error {
			sessionID, err := cfg.RequireSession()
			if err != nil {
				return err
			}

			var result OKResult

			if err := client.Post("/api/multiplayer/delete", map[string]string{"sessionId": sessionID}, &result); err != nil {
				return err
			}

			if err := cfg.ClearState(); err != nil {
				return fmt.Errorf("failed to clear state: %w", err)
			}

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			out.PrintMessage("Deleted session " + sessionID)
			return nil
		},
	}
}
