package server

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pthm-cable/voltex/config"
	"github.com/pthm-cable/voltex/pipeline"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 8) / 10

	// Progress messages beyond this backlog are dropped.
	socketBufferSize = 64

	// Maximum message size allowed from peer.
	maxMessageSize = 4096
)

// client is a middleman between one websocket connection and its session.
type client struct {
	h       *Handler
	conn    *websocket.Conn
	session *pipeline.Session
	log     *slog.Logger

	send chan Outbound
	done chan struct{}
	once sync.Once
}

func newClient(h *Handler, conn *websocket.Conn) *client {
	return &client{
		h:       h,
		conn:    conn,
		session: pipeline.NewSession(h.opts),
		log:     h.logger().With("remote", conn.RemoteAddr().String()),
		send:    make(chan Outbound, socketBufferSize),
		done:    make(chan struct{}),
	}
}

func (c *client) run() {
	c.log.Info("client connected")
	go c.writePump()
	go c.readPump()
}

func (c *client) destroy() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
		c.log.Info("client disconnected")
	})
}

// queue hands a message to the write pump. Progress is dropped when the
// socket is congested; everything else waits.
func (c *client) queue(out Outbound) {
	if out.Type == TypeProgress {
		select {
		case c.send <- out:
		case <-c.done:
		default:
			c.log.Debug("dropping progress", "task", out.Task, "percent", out.Percent)
		}
		return
	}

	select {
	case c.send <- out:
	case <-c.done:
	}
}

func (c *client) readPump() {
	defer c.destroy()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, r, err := c.conn.NextReader()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn("read error", "error", err)
			}
			return
		}

		in := Inbound{Config: c.h.base}
		if err := json.NewDecoder(r).Decode(&in); err != nil {
			c.queue(Outbound{Type: TypeError, Stage: StageRequest, Reason: "malformed message: " + err.Error()})
			continue
		}
		c.handle(in)
	}
}

func (c *client) handle(in Inbound) {
	if in.Command != CommandGenerate && in.Command != CommandVerify {
		c.queue(Outbound{Type: TypeError, Stage: StageRequest, Reason: "unknown command: " + in.Command})
		return
	}
	if err := config.ValidateGeneration(in.Config); err != nil {
		c.queue(Outbound{Type: TypeError, Stage: string(pipeline.StageConfig), Reason: err.Error()})
		return
	}

	if in.Command == CommandVerify {
		_, events := c.session.SubmitVerify(in.Config)
		go c.forward(events, false)
		return
	}

	id, events := c.session.Submit(in.Config)
	c.log.Debug("generate", "task", id, "resolution", in.Config.Resolution, "seed", in.Config.Seed)
	go c.forward(events, in.IncludeRaw)
}

// forward relays a task's events until its channel closes.
func (c *client) forward(events <-chan pipeline.Event, includeRaw bool) {
	for ev := range events {
		switch ev.Type {
		case pipeline.EventProgress:
			c.queue(progressMessage(ev))
		case pipeline.EventResult:
			for _, out := range resultMessages(ev, includeRaw) {
				c.queue(out)
			}
		case pipeline.EventVerification:
			c.queue(verificationMessage(ev.Task, ev.Verification))
		case pipeline.EventError:
			c.log.Warn("task failed", "task", ev.Task, "error", ev.Err)
			c.queue(errorMessage(ev.Task, ev.Err))
		}
	}
}

func (c *client) writePump() {
	pingTicker := time.NewTicker(pingPeriod)
	defer func() {
		pingTicker.Stop()
		c.destroy()
	}()

	for {
		select {
		case out := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			if err := json.NewEncoder(w).Encode(out); err != nil {
				c.log.Error("encode error", "type", out.Type, "error", err)
				return
			}
			if err := w.Close(); err != nil {
				return
			}
		case <-pingTicker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, nil)
			return
		}
	}
}
