package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"narrative-server/internal/domain"
	"narrative-server/internal/engine"
	"narrative-server/pkg/api"
	"narrative-server/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Spectator bridges one websocket connection to the broadcast hub. The
// connection is strictly read-only for the simulation: incoming messages
// only name the spectator and keep the socket alive.
type Spectator struct {
	Campaign *engine.Service
	Conn     *websocket.Conn
	Send     chan api.ServerResponse
	ID       string
}

func NewSpectator(campaign *engine.Service, conn *websocket.Conn) *Spectator {
	return &Spectator{
		Campaign: campaign,
		Conn:     conn,
		Send:     make(chan api.ServerResponse, 256),
	}
}

// readPump handles the HELLO handshake, then drains and discards whatever
// else the client sends.
func (s *Spectator) readPump() {
	defer func() {
		if s.ID != "" {
			s.Campaign.Hub.Unregister(s.ID)
			logger.Log.WithField("spectator", s.ID).Info("Spectator disconnected")
		}
		if err := s.Conn.Close(); err != nil {
			logger.Log.WithError(err).Debug("close websocket connection failed")
		}
	}()

	s.Conn.SetReadLimit(maxMessageSize)
	if err := s.Conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		logger.Log.WithError(err).Warn("failed to set read deadline")
	}
	s.Conn.SetPongHandler(func(string) error {
		if err := s.Conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			logger.Log.WithError(err).Warn("failed to set pong read deadline")
		}
		return nil
	})

	var hello api.ClientCommand
	if err := s.Conn.ReadJSON(&hello); err != nil {
		logger.Log.Warn("Spectator handshake failed")
		return
	}

	s.ID = hello.Token
	if s.ID == "" {
		s.ID = domain.GenerateID()
	}
	logger.Log.WithField("spectator", s.ID).Info("Spectator connected")

	updates := s.Campaign.Hub.Register(s.ID)
	go func() {
		for msg := range updates {
			s.Send <- msg
		}
		close(s.Send)
	}()

	// First frame immediately, without waiting for the next turn.
	s.Campaign.Hub.SendTo(s.ID, s.Campaign.Snapshot())

	for {
		var cmd api.ClientCommand
		if err := s.Conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Log.WithError(err).Error("Spectator read error")
			}
			break
		}
		// Spectators cannot mutate the simulation; commands are ignored.
	}
}

// writePump pushes hub frames to the socket and keeps it alive with pings.
func (s *Spectator) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		if err := s.Conn.Close(); err != nil {
			logger.Log.WithError(err).Debug("close websocket connection in writePump failed")
		}
	}()

	for {
		select {
		case message, ok := <-s.Send:
			if err := s.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logger.Log.WithError(err).Warn("failed to set write deadline")
			}
			if !ok {
				if err := s.Conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					logger.Log.WithError(err).Debug("write close message failed")
				}
				return
			}
			if err := s.Conn.WriteJSON(message); err != nil {
				logger.Log.WithError(err).Debug("write json message failed")
				return
			}

		case <-ticker.C:
			if err := s.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logger.Log.WithError(err).Warn("failed to set ping write deadline")
			}
			if err := s.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				logger.Log.WithError(err).Debug("ping failed")
				return
			}
		}
	}
}
