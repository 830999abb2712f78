package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

func newWatchCmd() *cobra.Command {
	var jsonOutput bool
	var playerName string

	cmd := &cobra.Command{
		Use:   "watch <room>",
		Short: "Join a room and stream its events",
		Long: `Connect to the server's websocket endpoint, join the named room and
print every event the server broadcasts.

Note that watching takes a player seat in the room. A full room will
answer with a room-full event.

Press Ctrl+C to disconnect.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return watchRoom(args[0], playerName, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output events as JSON lines")
	cmd.Flags().StringVar(&playerName, "name", "pongctl", "Player name to join as")

	return cmd
}

// wireEvent is the outbound message shape on the websocket
type wireEvent struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func watchRoom(roomName, playerName string, jsonOutput bool) error {
	conn, _, err := websocket.DefaultDialer.Dial(client.WebsocketURL(), nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer func() { _ = conn.Close() }()

	join := map[string]any{
		"type": "join-room",
		"payload": map[string]string{
			"roomName":   roomName,
			"playerName": playerName,
		},
	}
	if err := conn.WriteJSON(join); err != nil {
		return fmt.Errorf("failed to join room: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Watching room %q (Ctrl+C to disconnect)\n", roomName)

	// Close the connection on Ctrl+C so the read loop unblocks
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		_ = conn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		)
		_ = conn.Close()
	}()

	for {
		var event wireEvent
		if err := conn.ReadJSON(&event); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return fmt.Errorf("connection closed: %w", err)
		}

		printEvent(event, jsonOutput)
	}
}

func printEvent(event wireEvent, jsonOutput bool) {
	if jsonOutput {
		data, _ := json.Marshal(event)
		fmt.Println(string(data))
		return
	}

	fmt.Printf("[%s] %s %s\n",
		time.Now().Format("15:04:05"),
		event.Type,
		string(event.Payload),
	)
}
