package controllers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	wsReadLimit = 1 << 20
	wsIdle      = 60 * time.Second
	wsPing      = 30 * time.Second
	wsWrite     = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS handled at HTTP level; allow WS here
		return true
	},
}

// ChatWS handles GET /ws/chat. Each text frame is one chat request:
//
//	-> {message, language?, mode?, voice_enabled?}
//	<- {reply, audio_url}
//	<- {error}
//
// Frames are answered in order on the same connection until the client
// closes it.
func ChatWS(d Dispatcher, log *zap.Logger) gin.HandlerFunc {
	log = log.With(zap.String("component", "ws"))
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Warn("upgrade failed", zap.Error(err))
			return
		}
		defer conn.Close()

		conn.SetReadLimit(wsReadLimit)
		_ = conn.SetReadDeadline(time.Now().Add(wsIdle))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsIdle))
		})

		// pings keep idle clients inside the read deadline
		done := make(chan struct{})
		defer close(done)
		go func() {
			t := time.NewTicker(wsPing)
			defer t.Stop()
			for {
				select {
				case <-done:
					return
				case <-t.C:
					if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWrite)); err != nil {
						return
					}
				}
			}
		}()

		ctx := c.Request.Context()
		for {
			mt, msg, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Warn("read failed", zap.Error(err))
				}
				return
			}
			_ = conn.SetReadDeadline(time.Now().Add(wsIdle))
			if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
				continue
			}

			var out any
			var req chatRequest
			if err := json.Unmarshal(msg, &req); err != nil {
				out = gin.H{"error": "invalid request"}
			} else if resp, err := d.Dispatch(ctx, req.toDispatch()); err != nil {
				out = gin.H{"error": err.Error()}
			} else {
				out = resp
			}

			_ = conn.SetWriteDeadline(time.Now().Add(wsWrite))
			if err := conn.WriteJSON(out); err != nil {
				log.Warn("write failed", zap.Error(err))
				return
			}
		}
	}
}
