package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/rocketscienceinc/fading-tictactoe/internal/entity"
	"github.com/rocketscienceinc/fading-tictactoe/internal/room"
)

const (
	defaultWriteTimeout = 10 * time.Second
	defaultReadLimit    = 4096
)

type gameManager interface {
	GetGame(ctx context.Context, code string) (*entity.Game, error)
	MakeMove(ctx context.Context, code string, player entity.Mark, cell int) (*entity.Game, error)
}

type roomRegistry interface {
	Subscribe(code string, conn room.Conn)
	Unsubscribe(code string, conn room.Conn)
	UnsubscribeAll(conn room.Conn)
}

type Config struct {
	WriteTimeout time.Duration
	ReadLimit    int64
	// AllowedOrigins limits browser origins. Empty allows any origin.
	AllowedOrigins []string
}

type handlerFunc func(ctx context.Context, conn *connection, msg *entity.InboundMessage) error

type Server struct {
	logger   *zap.Logger
	games    gameManager
	rooms    roomRegistry
	config   Config
	upgrader websocket.Upgrader

	handlers map[entity.MessageType]handlerFunc
}

func New(logger *zap.Logger, games gameManager, rooms roomRegistry, config Config) *Server {
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = defaultWriteTimeout
	}

	if config.ReadLimit <= 0 {
		config.ReadLimit = defaultReadLimit
	}

	server := &Server{
		logger: logger.With(zap.String("component", "websocket")),
		games:  games,
		rooms:  rooms,
		config: config,

		handlers: make(map[entity.MessageType]handlerFunc),
	}

	server.upgrader = websocket.Upgrader{
		CheckOrigin: server.checkOrigin,
	}

	server.handlers[entity.MessageJoin] = server.handleJoin
	server.handlers[entity.MessageMove] = server.handleMove

	return server
}

func (that *Server) checkOrigin(req *http.Request) bool {
	if len(that.config.AllowedOrigins) == 0 {
		return true
	}

	return slices.Contains(that.config.AllowedOrigins, req.Header.Get("Origin"))
}

// ServeHTTP upgrades the request and serves the connection until it closes.
func (that *Server) ServeHTTP(writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With(zap.String("method", "ServeHTTP"))

	ws, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Warn("failed to upgrade connection", zap.Error(err))
		return
	}

	conn := newConnection(ws, that.config.WriteTimeout)
	log = log.With(zap.String("conn_id", conn.ID()))

	ws.SetReadLimit(that.config.ReadLimit)
	_ = ws.SetReadDeadline(time.Time{})

	ctx := req.Context()
	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			conn.close(websocket.CloseGoingAway, "server shutting down")
		case <-done:
		}
	}()

	defer func() {
		that.rooms.UnsubscribeAll(conn)
		_ = ws.Close()
		log.Info("websocket connection closed")
	}()

	log.Info("websocket connection established")

	that.handleMessages(ctx, conn)
}

// handleMessages - processes messages from the client until the socket fails.
func (that *Server) handleMessages(ctx context.Context, conn *connection) {
	log := that.logger.With(zap.String("method", "handleMessages"), zap.String("conn_id", conn.ID()))

	for {
		_, data, err := conn.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn("connection dropped", zap.Error(err))
			}
			return
		}

		var message entity.InboundMessage
		if err = json.Unmarshal(data, &message); err != nil {
			log.Debug("failed to unmarshal message", zap.Error(err))
			that.sendError(ctx, conn, errTextInvalidMessage)
			continue
		}

		handler, ok := that.handlers[message.Type]
		if !ok {
			log.Debug("unknown message type", zap.String("type", string(message.Type)))
			that.sendError(ctx, conn, errTextInvalidMessage)
			continue
		}

		if err = handler(ctx, conn, &message); err != nil {
			log.Error("error processing message", zap.String("type", string(message.Type)), zap.Error(err))
		}
	}
}
