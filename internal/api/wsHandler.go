package api

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cast"
	"play4peace-server/internal/core"
	"play4peace-server/internal/entities"
)

var ws = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsConn serialises writes; gorilla/websocket allows one concurrent writer.
type wsConn struct {
	mu     sync.Mutex
	socket *websocket.Conn
}

func (c *wsConn) send(payload interface{}) error {
	output, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.socket.WriteMessage(websocket.TextMessage, output)
}

// WsHandler speaks a small JSON command protocol. Every message carries a
// Type; replies echo it. Subscribed games push RosterChanged messages.
func (s *Server) WsHandler(w http.ResponseWriter, r *http.Request) {
	user, err := s.authenticate(r)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, "authentication required")
		return
	}

	socket, err := ws.Upgrade(w, r, nil)
	if err != nil {
		log.Debug().Err(err).Msg("upgrade")
		return
	}
	defer socket.Close()

	conn := &wsConn{socket: socket}
	userID := user.ID.String()
	s.Users.Touch(r.Context(), user.ID)

	log.Info().Str("user", userID).Int64("connections", s.conns.Inc()).Msg("Conn opened")
	subscriptions := make(map[uuid.UUID]func())
	defer func() {
		for _, cancel := range subscriptions {
			cancel()
		}
		log.Info().Str("user", userID).Int64("connections", s.conns.Dec()).Msg("Conn destroyed")
	}()

	for {
		_, bytes, err := socket.ReadMessage()
		if err != nil {
			break
		}

		var msg map[string]interface{}
		if err := json.Unmarshal(bytes, &msg); err != nil {
			_ = conn.send(map[string]interface{}{"Error": "invalid message"})
			continue
		}

		msgType, ok := msg["Type"]
		if !ok {
			continue
		}
		response := make(map[string]interface{})
		response["Type"] = msgType

		switch msgType {
		case "GetGames":
			games, err := s.Games.List(r.Context())
			if err != nil {
				response["Error"] = err.Error()
				break
			}
			views := make([]GameView, 0, len(games))
			for _, g := range games {
				views = append(views, gameView(g))
			}
			response["Games"] = views

		case "JoinGame", "LeaveGame", "ToggleAttendance":
			gameID, err := uuid.Parse(cast.ToString(msg["GameId"]))
			if err != nil {
				response["Error"] = "invalid game id"
				break
			}

			var game entities.Game
			switch msgType {
			case "JoinGame":
				game, err = s.Roster.Join(r.Context(), gameID, userID)
			case "LeaveGame":
				game, err = s.Roster.Leave(r.Context(), gameID, userID)
			default:
				game, err = s.Roster.Toggle(r.Context(), gameID, userID)
			}
			response["Result"] = err == nil
			if err != nil {
				response["Error"] = err.Error()
				response["Retry"] = core.IsTransient(err)
				break
			}
			response["Game"] = s.gameDetail(r, game)

		case "Subscribe":
			gameID, err := uuid.Parse(cast.ToString(msg["GameId"]))
			if err != nil {
				response["Error"] = "invalid game id"
				break
			}
			if _, ok := subscriptions[gameID]; !ok {
				events, cancel := s.Hub.Subscribe(gameID)
				subscriptions[gameID] = cancel
				go s.forward(conn, r, events)
			}
			response["Result"] = true

		case "Unsubscribe":
			gameID, err := uuid.Parse(cast.ToString(msg["GameId"]))
			if err == nil {
				if cancel, ok := subscriptions[gameID]; ok {
					cancel()
					delete(subscriptions, gameID)
				}
			}
			response["Result"] = err == nil

		default:
			response["Error"] = "unknown message type"
		}

		if err := conn.send(response); err != nil {
			log.Err(err).Msg("ws write")
			break
		}
	}
}

// forward pushes hub events to the socket until the subscription is closed.
func (s *Server) forward(conn *wsConn, r *http.Request, events <-chan core.RosterEvent) {
	for ev := range events {
		game := entities.Game{ID: ev.GameID, Attendees: ev.Attendees, Version: ev.Version}
		err := conn.send(map[string]interface{}{
			"Type":      "RosterChanged",
			"GameId":    ev.GameID.String(),
			"Action":    ev.Action,
			"UserId":    ev.UserID,
			"Version":   ev.Version,
			"Attendees": ev.Attendees,
			"Roster":    s.Roster.Seats(game),
			"Names":     s.Users.DisplayNames(r.Context(), ev.Attendees),
		})
		if err != nil {
			log.Debug().Err(err).Msg("ws push")
		}
	}
}
