package rest

import (
	"net/http"

	"go.uber.org/zap"
)

func (that *handlers) PingHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		that.logger.Warn("failed to write pong", zap.Error(err))
	}
}
