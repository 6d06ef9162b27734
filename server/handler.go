// Package server exposes generation over a websocket. Each connection
// owns a pipeline.Session: a new generate request supersedes the previous
// one and only the latest result is sent.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pthm-cable/voltex/pipeline"
	"github.com/pthm-cable/voltex/volume"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	HandshakeTimeout: 5 * time.Second,
	ReadBufferSize:   maxMessageSize,
	WriteBufferSize:  1 << 16,
}

// Handler upgrades requests to websocket clients.
type Handler struct {
	base   volume.Config
	opts   pipeline.Options
	Logger *slog.Logger
}

// NewHandler creates a handler whose requests start from base.
func NewHandler(base volume.Config, opts pipeline.Options) *Handler {
	opts.Progress = nil
	return &Handler{base: base, opts: opts}
}

func (h *Handler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger().Warn("upgrade error", "error", err)
		return
	}
	newClient(h, conn).run()
}
