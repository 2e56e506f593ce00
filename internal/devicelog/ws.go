package devicelog

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Embedded clients on the local network don't send an Origin header.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSHandler upgrades requests to a WebSocket and logs every received message
// to the sink, acknowledging each with "ACK".
func WSHandler(sink *Sink, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Error("WebSocket upgrade failed", "err", err)
			return
		}
		defer conn.Close()

		addr := conn.RemoteAddr().String()
		log.Info("WebSocket connection accepted", "addr", addr)

		for {
			msgType, data, err := conn.ReadMessage()
			if err != nil {
				log.Info("WebSocket disconnected", "addr", addr, "err", err)
				return
			}

			switch msgType {
			case websocket.TextMessage:
				log.Info("device message", "addr", addr, "message", string(data))
				if err := sink.WriteText(addr, string(data)); err != nil {
					log.Error("couldn't log device message", "err", err)
				}
			case websocket.BinaryMessage:
				log.Info("binary device message", "addr", addr, "bytes", len(data))
				if err := sink.WriteBinary(addr, data); err != nil {
					log.Error("couldn't log device message", "err", err)
				}
			default:
				continue
			}

			if err := conn.WriteMessage(websocket.TextMessage, []byte("ACK")); err != nil {
				log.Error("couldn't send ACK", "addr", addr, "err", err)
				return
			}
		}
	}
}
