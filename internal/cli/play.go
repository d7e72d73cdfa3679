package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/mcoot/mankind/internal/model"
)

// closeWait bounds how long play waits for the server to acknowledge a close
const closeWait = 2 * time.Second

func newPlayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "play <player_id>",
		Short: "Play duels interactively",
		Long: `Connect to the duel server and chat with your opponent.

Plain lines are sent as chat messages. Commands:
  /human  judge the opponent to be human
  /ai     judge the opponent to be an AI
  /next   start a new duel
  /quit   disconnect`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			return play(ctx, cfg.ServerURL, args[0], cmd.InOrStdin(), out)
		},
	}
}

// parseInput maps one line typed by the player onto an inbound event. A nil
// event with quit false means there is nothing to send.
func parseInput(line string) (event *model.InboundEvent, quit bool) {
	line = strings.TrimSpace(line)
	switch line {
	case "":
		return nil, false
	case "/quit":
		return nil, true
	case "/human":
		return &model.InboundEvent{Type: model.EventDecision, Decision: model.DecisionHuman}, false
	case "/ai":
		return &model.InboundEvent{Type: model.EventDecision, Decision: model.DecisionAI}, false
	case "/next":
		return &model.InboundEvent{Type: model.EventNextDuel}, false
	default:
		return &model.InboundEvent{Type: model.EventChatMessage, Content: line}, false
	}
}

// play runs one websocket connection until the player quits, input ends, ctx
// is cancelled or the server closes the socket
func play(ctx context.Context, serverURL, playerID string, in io.Reader, out *Output) error {
	wsURL, err := websocketURL(serverURL, "/ws/"+url.PathEscape(playerID))
	if err != nil {
		return err
	}

	ws, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = ws.Close() }()

	readDone := make(chan error, 1)
	go func() {
		readDone <- readFrames(ws, out)
	}()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case err := <-readDone:
			return err

		case <-ctx.Done():
			return closeConn(ws, readDone)

		case line, ok := <-lines:
			if !ok {
				return closeConn(ws, readDone)
			}
			event, quit := parseInput(line)
			if quit {
				return closeConn(ws, readDone)
			}
			if event == nil {
				continue
			}
			if err := ws.WriteJSON(event); err != nil {
				return fmt.Errorf("send failed: %w", err)
			}
		}
	}
}

// readFrames prints server frames until the socket closes. A normal close
// is not an error.
func readFrames(ws *websocket.Conn, out *Output) error {
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("connection lost: %w", err)
		}

		var frame Frame
		if err := json.Unmarshal(data, &frame); err != nil {
			continue
		}
		out.PrintFrame(frame)
	}
}

// closeConn starts the close handshake and waits briefly for the reader to
// observe the server's reply
func closeConn(ws *websocket.Conn, readDone <-chan error) error {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	if err := ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeWait)); err != nil {
		// the socket is already gone
		return nil
	}

	select {
	case <-readDone:
	case <-time.After(closeWait):
	}
	return nil
}
