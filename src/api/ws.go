package api

import (
	"strings"

	"github.com/fasthttp/websocket"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	"github.com/proxydeck/backend/src/bus"
)

var upgrader = websocket.FastHTTPUpgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// FastHTTPHandler returns a raw fasthttp handler for WebSocket upgrades.
// Register this on the fasthttp server at the "/ws" path.
func (h *Handler) FastHTTPHandler() fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		upgrade := string(ctx.Request.Header.Peek("Upgrade"))
		if !strings.EqualFold(upgrade, "websocket") {
			ctx.SetStatusCode(fasthttp.StatusUpgradeRequired)
			ctx.SetContentType("application/json")
			ctx.SetBodyString(`{"error":"upgrade_required","message":"WebSocket upgrade required"}`)
			return
		}

		clientID := uuid.New().String()

		err := upgrader.Upgrade(ctx, func(conn *websocket.Conn) {
			client := bus.NewClient(clientID, &wsConn{conn}, h.hub)
			h.hub.Register(client)
			h.hub.Greet(client)
			go client.WritePump()
			client.ReadPump()
		})
		if err != nil {
			h.logger.Error().Err(err).Msg("websocket upgrade failed")
		}
	}
}

// wsConn wraps fasthttp/websocket.Conn to satisfy types.Conn.
type wsConn struct {
	conn *websocket.Conn
}

func (w *wsConn) ReadMessage() ([]byte, error) {
	_, data, err := w.conn.ReadMessage()
	return data, err
}

func (w *wsConn) WriteMessage(data []byte) error {
	return w.conn.WriteMessage(websocket.TextMessage, data)
}

func (w *wsConn) Close() error { return w.conn.Close() }
