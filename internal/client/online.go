package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/sync/errgroup"
	nws "nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/rocketscienceinc/fading-tictactoe/internal/entity"
)

var errQuit = errors.New("quit")

type serverMessage struct {
	Type     entity.MessageType `json:"type"`
	Message  string             `json:"message"`
	Game     *entity.Game       `json:"game"`
	Player   string             `json:"player"`
	GameCode string             `json:"gameCode"`
}

type moveMessage struct {
	Type     entity.MessageType `json:"type"`
	GameCode string             `json:"gameCode"`
	Player   entity.Mark        `json:"player"`
	Position int                `json:"position"`
}

type joinMessage struct {
	Type     entity.MessageType `json:"type"`
	GameCode string             `json:"gameCode"`
}

// RunOnline joins (or creates) a game on the server and relays moves typed on
// in until the user quits, in is exhausted or the connection drops.
func RunOnline(ctx context.Context, cfg Config, in io.Reader, out io.Writer) error {
	api := newAPI(cfg.Server)

	code := cfg.Code
	if code == "" {
		created, err := api.createGame(ctx)
		if err != nil {
			return fmt.Errorf("failed to create game: %w", err)
		}

		code = created.Code
		fmt.Fprintf(out, "created game %s\n", code)
	}

	game, err := api.joinGame(ctx, code, cfg.PlayerID)
	if err != nil {
		return fmt.Errorf("failed to join game %s: %w", code, err)
	}

	mark := entity.PlayerO
	if game.Player1 == cfg.PlayerID {
		mark = entity.PlayerX
	}

	fmt.Fprintf(out, "you play %s in game %s\n", mark, code)

	conn, _, err := nws.Dial(ctx, cfg.socketURL(), nil)
	if err != nil {
		return fmt.Errorf("failed to connect to game socket: %w", err)
	}
	defer func() { _ = conn.Close(nws.StatusNormalClosure, "") }()

	if err = wsjson.Write(ctx, conn, joinMessage{Type: entity.MessageJoin, GameCode: code}); err != nil {
		return fmt.Errorf("failed to join game room: %w", err)
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return readMessages(groupCtx, conn, out)
	})

	lines := scanLines(in)
	group.Go(func() error {
		for {
			select {
			case <-groupCtx.Done():
				return nil
			case line, ok := <-lines:
				if !ok || line == commandQuit {
					return errQuit
				}

				if err := sendCommand(groupCtx, api, conn, code, mark, line, out); err != nil {
					return err
				}
			}
		}
	})

	if err = group.Wait(); err != nil && !errors.Is(err, errQuit) {
		return err
	}

	return nil
}

func sendCommand(ctx context.Context, api *api, conn *nws.Conn, code string, mark entity.Mark, line string, out io.Writer) error {
	if line == commandReset {
		if _, err := api.resetGame(ctx, code); err != nil {
			fmt.Fprintf(out, "reset failed: %v\n", err)
		}
		return nil
	}

	cell, ok := ParseCell(line)
	if !ok {
		fmt.Fprintln(out, "enter a cell 1-9, r to restart or q to quit")
		return nil
	}

	msg := moveMessage{Type: entity.MessageMove, GameCode: code, Player: mark, Position: cell}
	if err := wsjson.Write(ctx, conn, msg); err != nil {
		return fmt.Errorf("failed to send move: %w", err)
	}

	return nil
}

func readMessages(ctx context.Context, conn *nws.Conn, out io.Writer) error {
	for {
		var msg serverMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			if ctx.Err() != nil || nws.CloseStatus(err) == nws.StatusNormalClosure {
				return nil
			}
			return fmt.Errorf("failed to read from game socket: %w", err)
		}

		switch msg.Type {
		case entity.MessageGameState:
			if msg.Game != nil {
				Render(out, msg.Game)
			}
		case entity.MessagePlayerJoined:
			fmt.Fprintf(out, "player %s joined\n", msg.Player)
		case entity.MessageError:
			fmt.Fprintln(out, msg.Message)
		}
	}
}

// scanLines feeds trimmed non-empty lines from in until it is exhausted.
func scanLines(in io.Reader) <-chan string {
	lines := make(chan string)

	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			if line := strings.TrimSpace(scanner.Text()); line != "" {
				lines <- line
			}
		}
	}()

	return lines
}
