package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rocketscienceinc/fading-tictactoe/internal/entity"
	"github.com/rocketscienceinc/fading-tictactoe/internal/repository"
	"github.com/rocketscienceinc/fading-tictactoe/internal/room"
	"github.com/rocketscienceinc/fading-tictactoe/internal/usecase"
	"github.com/rocketscienceinc/fading-tictactoe/transport/websocket"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	logger := zap.NewNop()
	rooms := room.NewRegistry(logger)
	games := usecase.NewGameManager(logger, repository.NewMemoryGameRepository(), rooms)
	socket := websocket.New(logger, games, rooms, websocket.Config{})

	srv := httptest.NewServer(NewRouter(logger, games, socket))
	t.Cleanup(srv.Close)

	return srv
}

func doRequest(t *testing.T, method, url, body string) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, data
}

func decodeGame(t *testing.T, data []byte) *entity.Game {
	t.Helper()

	var game entity.Game
	require.NoError(t, json.Unmarshal(data, &game))

	return &game
}

func decodeMessage(t *testing.T, data []byte) string {
	t.Helper()

	var resp errorResponse
	require.NoError(t, json.Unmarshal(data, &resp))

	return resp.Message
}

func createGame(t *testing.T, srv *httptest.Server) *entity.Game {
	t.Helper()

	status, data := doRequest(t, http.MethodPost, srv.URL+"/api/games", "")
	require.Equal(t, http.StatusOK, status)

	return decodeGame(t, data)
}

func TestPing(t *testing.T) {
	srv := newTestServer(t)

	status, data := doRequest(t, http.MethodGet, srv.URL+"/ping", "")

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "pong", string(data))
}

func TestCreateGame(t *testing.T) {
	srv := newTestServer(t)

	status, data := doRequest(t, http.MethodPost, srv.URL+"/api/games", "")

	// Then: a waiting game in wire shape comes back
	require.Equal(t, http.StatusOK, status)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))
	assert.Equal(t, "waiting", fields["status"])
	assert.Equal(t, "X", fields["currentPlayer"])
	assert.Equal(t, `["","","","","","","","",""]`, fields["board"])
	assert.Nil(t, fields["player1"])
	assert.Regexp(t, `^[A-Z0-9]{6}$`, fields["code"])
}

func TestJoinGame(t *testing.T) {
	t.Run("Seats two players and starts the game", func(t *testing.T) {
		srv := newTestServer(t)
		game := createGame(t, srv)
		url := srv.URL + "/api/games/" + game.Code + "/join"

		status, data := doRequest(t, http.MethodPost, url, `{"playerId":"alice"}`)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, entity.StatusWaiting, decodeGame(t, data).Status)

		status, data = doRequest(t, http.MethodPost, url, `{"playerId":"bob"}`)
		require.Equal(t, http.StatusOK, status)

		joined := decodeGame(t, data)
		assert.Equal(t, "alice", joined.Player1)
		assert.Equal(t, "bob", joined.Player2)
		assert.Equal(t, entity.StatusPlaying, joined.Status)
	})

	t.Run("Rejects a third player", func(t *testing.T) {
		srv := newTestServer(t)
		game := createGame(t, srv)
		url := srv.URL + "/api/games/" + game.Code + "/join"
		doRequest(t, http.MethodPost, url, `{"playerId":"alice"}`)
		doRequest(t, http.MethodPost, url, `{"playerId":"bob"}`)

		status, data := doRequest(t, http.MethodPost, url, `{"playerId":"carol"}`)

		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "Game is not available to join", decodeMessage(t, data))
	})

	t.Run("Returns not found for an unknown code", func(t *testing.T) {
		srv := newTestServer(t)

		status, data := doRequest(t, http.MethodPost, srv.URL+"/api/games/NOPE00/join", `{"playerId":"alice"}`)

		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, "Game not found", decodeMessage(t, data))
	})

	t.Run("Rejects a malformed body", func(t *testing.T) {
		srv := newTestServer(t)
		game := createGame(t, srv)

		status, _ := doRequest(t, http.MethodPost, srv.URL+"/api/games/"+game.Code+"/join", `{`)

		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("Requires a player id", func(t *testing.T) {
		srv := newTestServer(t)
		game := createGame(t, srv)

		status, _ := doRequest(t, http.MethodPost, srv.URL+"/api/games/"+game.Code+"/join", `{}`)

		assert.Equal(t, http.StatusBadRequest, status)
	})
}

func TestGetGame(t *testing.T) {
	srv := newTestServer(t)
	game := createGame(t, srv)

	status, data := doRequest(t, http.MethodGet, srv.URL+"/api/games/"+strings.ToLower(game.Code), "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, game.ID, decodeGame(t, data).ID)

	status, _ = doRequest(t, http.MethodGet, srv.URL+"/api/games/NOPE00", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestResetGame(t *testing.T) {
	srv := newTestServer(t)
	game := createGame(t, srv)
	doRequest(t, http.MethodPost, srv.URL+"/api/games/"+game.Code+"/join", `{"playerId":"alice"}`)
	doRequest(t, http.MethodPost, srv.URL+"/api/games/"+game.Code+"/join", `{"playerId":"bob"}`)

	status, data := doRequest(t, http.MethodPost, srv.URL+"/api/games/"+game.Code+"/reset", "")

	require.Equal(t, http.StatusOK, status)
	reset := decodeGame(t, data)
	assert.Equal(t, entity.StatusPlaying, reset.Status)
	assert.Equal(t, entity.Board{}, reset.Board)
	assert.Equal(t, "bob", reset.Player2)

	status, _ = doRequest(t, http.MethodPost, srv.URL+"/api/games/NOPE00/reset", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestDeleteGame(t *testing.T) {
	srv := newTestServer(t)
	game := createGame(t, srv)

	status, _ := doRequest(t, http.MethodDelete, srv.URL+"/api/games/"+game.Code, "")
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = doRequest(t, http.MethodDelete, srv.URL+"/api/games/"+game.Code, "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestConnectGame(t *testing.T) {
	srv := newTestServer(t)
	game := createGame(t, srv)

	status, data := doRequest(t, http.MethodPost, srv.URL+"/api/games/"+game.Code+"/connect", "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"success":true}`, string(data))

	status, _ = doRequest(t, http.MethodPost, srv.URL+"/api/games/NOPE00/connect", "")
	assert.Equal(t, http.StatusNotFound, status)
}

type MockGameService struct {
	mock.Mock
}

func (m *MockGameService) CreateGame(ctx context.Context) (*entity.Game, error) {
	args := m.Called(ctx)
	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

func (m *MockGameService) JoinGame(ctx context.Context, code, playerID string) (*entity.Game, error) {
	args := m.Called(ctx, code, playerID)
	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

func (m *MockGameService) GetGame(ctx context.Context, code string) (*entity.Game, error) {
	args := m.Called(ctx, code)
	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

func (m *MockGameService) ResetGame(ctx context.Context, code string) (*entity.Game, error) {
	args := m.Called(ctx, code)
	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

func (m *MockGameService) DeleteGame(ctx context.Context, code string) error {
	return m.Called(ctx, code).Error(0)
}

func TestHandlers_StoreFailure(t *testing.T) {
	// Given: a service whose store is down
	games := &MockGameService{}
	games.On("CreateGame", mock.Anything).Return(nil, errors.New("redis down")).Once()

	srv := httptest.NewServer(NewRouter(zap.NewNop(), games, http.NotFoundHandler()))
	t.Cleanup(srv.Close)

	// When: a game is created
	status, data := doRequest(t, http.MethodPost, srv.URL+"/api/games", "")

	// Then: a generic failure is reported
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "Failed to create game", decodeMessage(t, data))
	games.AssertExpectations(t)
}
