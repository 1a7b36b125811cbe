package events

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Hub is LAN-only; auth middleware gates the upgrade
	},
}

// RegisterRoutes wires the zone state stream to the router.
func RegisterRoutes(router chi.Router, hub *Hub) {
	router.HandleFunc("/v1/zones/stream", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade failed - error already written to response
			return
		}
		hub.Register(conn)
	})
}
