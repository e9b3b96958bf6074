package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

func newWatchCmd() *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream live session updates over a websocket",
		Long: `Connect to the server's websocket and print every session snapshot as it
changes.

Messages include:
  - state: Full session snapshot after any change
  - deleted: The session was deleted
  - error: The subscription failed

Press Ctrl+C to disconnect.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sessionID, err := cfg.RequireSession()
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			w := watcher{
				client:    client,
				out:       NewOutput(cmd.OutOrStdout(), cfg.Output),
				jsonLines: cfg.Output == "json",
				count:     count,
			}
			return w.watch(ctx, sessionID, cfg.PlayerID)
		},
	}

	cmd.Flags().IntVar(&count, "count", 0, "Exit after this many snapshots (0: until interrupted)")

	return cmd
}

// watcher holds everything a watch needs so the stream loop never reads CLI globals
type watcher struct {
	client    *Client
	out       *Output
	jsonLines bool
	count     int
}

func (w watcher) watch(ctx context.Context, sessionID, playerID string) error {
	wsURL, err := w.client.WebsocketURL(sessionID, playerID)
	if err != nil {
		return err
	}

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = conn.Close() }()

	// Unblock ReadJSON on interrupt
	stop := context.AfterFunc(ctx, func() {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		_ = conn.Close()
	})
	defer stop()

	if !w.jsonLines {
		w.out.PrintMessage(fmt.Sprintf("Watching session %s", sessionID))
	}

	seen := 0
	for {
		var msg StreamMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			var syntaxErr *json.SyntaxError
			if errors.As(err, &syntaxErr) {
				continue
			}
			return fmt.Errorf("stream error: %w", err)
		}

		if w.jsonLines {
			data, _ := json.Marshal(msg)
			fmt.Fprintln(w.out.w, string(data))
		} else {
			w.out.Print(msg)
		}

		switch msg.Type {
		case "deleted":
			return nil
		case "error":
			return fmt.Errorf("subscription failed: %s", msg.Error)
		case "state":
			seen++
			if w.count > 0 && seen >= w.count {
				return nil
			}
		}
	}
}
