package relay

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/Uniqueq123/app/internal/metrics"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Identity is pre-validated upstream; origins are open like the
	// rest of the surface.
	CheckOrigin: func(*http.Request) bool { return true },
}

// ServeWS returns the handler that upgrades requests to websocket
// connections and runs their read/write loops.
func ServeWS(router *Router, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("websocket upgrade failed")
			return
		}

		c := newConn(ws, logger)
		metrics.ConnectionsOpened.Inc()
		logger.Info().Str("conn", c.ID()).Str("remote", r.RemoteAddr).Msg("client connected")

		go c.writeLoop()
		c.readLoop(r.Context(), router)
	}
}
