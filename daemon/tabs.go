package daemon

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/anatolykoptev/go-bookmarks/bus"
)

const writeTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// handleTab upgrades a UI tab to a websocket. The tab becomes active on
// connect and again whenever it sends tab-focus.
func (s *Server) handleTab(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("tab upgrade failed", slog.Any("error", err))
		return
	}
	defer conn.Close()

	id, out := s.hub.Register(s.cfg.TabBuffer)
	defer s.hub.Unregister(id)
	slog.Info("tab connected", slog.String("tab", id))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range out {
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(msg); err != nil {
				slog.Debug("tab write failed", slog.String("tab", id), slog.Any("error", err))
				return
			}
		}
	}()

	for {
		var msg bus.Message
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("tab read failed", slog.String("tab", id), slog.Any("error", err))
			}
			break
		}

		if msg.Kind() == bus.ActionTabFocus {
			s.hub.Focus(id)
			continue
		}
		reply, _ := s.dispatch(r, msg)
		s.hub.SendTo(id, reply)
	}

	s.hub.Unregister(id)
	<-done
	slog.Info("tab disconnected", slog.String("tab", id))
}
