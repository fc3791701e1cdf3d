// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/db47h/cedarsim/host"
)

const writeTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  64 * 1024,
	WriteBufferSize: 64 * 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Frame types sent on a stream.
//
const (
	FrameStep     = "step"
	FrameResponse = "response"
)

// Frame is a message sent by the server on a session stream. Step frames
// carry runner updates, response frames carry the result of a command sent
// by the client.
//
type Frame struct {
	Type     string           `json:"type"`
	Step     *host.StepResult `json:"step,omitempty"`
	Error    string           `json:"error,omitempty"`
	Response *host.Response   `json:"response,omitempty"`
}

type wsConn struct {
	mu sync.Mutex
	ws *websocket.Conn
}

func (c *wsConn) send(f Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.ws.WriteJSON(f)
}

func (s *Server) handleStream(c *gin.Context) {
	ss := current(c)
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "session", ss.id, "err", err)
		return
	}
	defer ws.Close()
	conn := &wsConn{ws: ws}
	log := s.log.With("session", ss.id)
	log.Info("stream connected")

	updates, cancel := ss.run.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		// unblocks the reader when the runner stops
		defer ws.Close()
		for u := range updates {
			st := host.NewStepResult(u.StepResult)
			f := Frame{Type: FrameStep, Step: &st}
			if u.Err != nil {
				f.Error = u.Err.Error()
			}
			if err := conn.send(f); err != nil {
				log.Debug("stream write failed", "err", err)
				return
			}
		}
	}()

	ctx := c.Request.Context()
	for {
		var cmd host.Command
		if err := ws.ReadJSON(&cmd); err != nil {
			log.Info("stream disconnected", "err", err)
			break
		}
		if err := ss.limit.Wait(ctx); err != nil {
			break
		}
		r := ss.host.Exec(ctx, cmd)
		if err := conn.send(Frame{Type: FrameResponse, Response: &r}); err != nil {
			break
		}
	}
	cancel()
	<-done
}
