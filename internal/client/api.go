package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rocketscienceinc/fading-tictactoe/internal/entity"
)

const requestTimeout = 10 * time.Second

type apiError struct {
	Status  int
	Message string
}

func (that *apiError) Error() string {
	return fmt.Sprintf("server answered %d: %s", that.Status, that.Message)
}

type api struct {
	base string
	http *http.Client
}

func newAPI(base string) *api {
	return &api{
		base: base,
		http: &http.Client{Timeout: requestTimeout},
	}
}

func (that *api) createGame(ctx context.Context) (*entity.Game, error) {
	return that.gameRequest(ctx, "/api/games", nil)
}

func (that *api) joinGame(ctx context.Context, code, playerID string) (*entity.Game, error) {
	return that.gameRequest(ctx, "/api/games/"+code+"/join", map[string]string{"playerId": playerID})
}

func (that *api) resetGame(ctx context.Context, code string) (*entity.Game, error) {
	return that.gameRequest(ctx, "/api/games/"+code+"/reset", nil)
}

// gameRequest posts body and decodes the game in the response.
func (that *api) gameRequest(ctx context.Context, path string, body any) (*entity.Game, error) {
	var payload io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, that.base+path, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := that.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var failure struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&failure)

		return nil, &apiError{Status: resp.StatusCode, Message: failure.Message}
	}

	var game entity.Game
	if err = json.NewDecoder(resp.Body).Decode(&game); err != nil {
		return nil, fmt.Errorf("failed to decode game: %w", err)
	}

	return &game, nil
}
