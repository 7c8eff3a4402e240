package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// connection wraps one client socket. Writes are serialised because the
// socket allows a single concurrent writer.
type connection struct {
	id           string
	ws           *websocket.Conn
	writeTimeout time.Duration

	writeMu sync.Mutex
}

func newConnection(ws *websocket.Conn, writeTimeout time.Duration) *connection {
	return &connection{
		id:           uuid.NewString(),
		ws:           ws,
		writeTimeout: writeTimeout,
	}
}

func (that *connection) ID() string {
	return that.id
}

// Send writes msg as a JSON text frame.
func (that *connection) Send(ctx context.Context, msg any) error {
	that.writeMu.Lock()
	defer that.writeMu.Unlock()

	deadline := time.Now().Add(that.writeTimeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}

	if err := that.ws.SetWriteDeadline(deadline); err != nil {
		return err
	}

	return that.ws.WriteJSON(msg)
}

func (that *connection) close(code int, reason string) {
	that.writeMu.Lock()
	defer that.writeMu.Unlock()

	_ = that.ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason),
		time.Now().Add(that.writeTimeout))
	_ = that.ws.Close()
}
