package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tandemchat/backend/internal/auth"
	"github.com/tandemchat/backend/internal/chat"
	"github.com/tandemchat/backend/internal/logging"
)

// closeInvalidToken is the application close code sent when the token on a
// websocket upgrade does not verify.
const closeInvalidToken = 4003

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// WSHandler upgrades GET /ws/hub?token=... connections. The token travels as
// a query parameter because browsers cannot set headers on websocket
// upgrades. A bad token still gets an upgrade so the client can receive a
// close frame with an application code instead of a bare HTTP error.
func WSHandler(secret []byte, registry *chat.Manager, pipeline *chat.Pipeline) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logging.Error("websocket upgrade failed", err)
			return
		}

		user, err := auth.UsernameFromToken(r.URL.Query().Get("token"), secret)
		if err != nil {
			msg := websocket.FormatCloseMessage(closeInvalidToken, "invalid token")
			conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
			conn.Close()
			return
		}

		chat.NewClient(user, conn, registry, pipeline).Run()
	}
}
