package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"play4peace-server/internal/core"
	"play4peace-server/internal/entities"
)

type GameView struct {
	entities.Game
	SpotsLeft int
	IsFull    bool
}

type SeatView struct {
	UserID string
	Name   string
	Label  string
	Seat   core.SeatSlot
}

type GameDetail struct {
	GameView
	Names  map[string]string
	Roster []SeatView
}

func gameView(g entities.Game) GameView {
	return GameView{Game: g, SpotsLeft: core.SpotsLeft(g), IsFull: core.IsFull(g)}
}

func (s *Server) gameDetail(r *http.Request, g entities.Game) GameDetail {
	names := s.Users.DisplayNames(r.Context(), g.Attendees)
	entries := s.Roster.Seats(g)
	seats := make([]SeatView, 0, len(entries))
	for _, e := range entries {
		seats = append(seats, SeatView{
			UserID: e.UserID,
			Name:   names[e.UserID],
			Label:  core.ShortLabel(names[e.UserID]),
			Seat:   e.Seat,
		})
	}
	return GameDetail{GameView: gameView(g), Names: names, Roster: seats}
}

func (s *Server) GamesHandler(w http.ResponseWriter, r *http.Request) {
	games, err := s.Games.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	views := make([]GameView, 0, len(games))
	for _, g := range games {
		views = append(views, gameView(g))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) GameHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	game, _, err := s.Roster.Roster(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.gameDetail(r, game))
}

// AttendanceHandler joins, leaves or toggles the caller on a game roster.
func (s *Server) AttendanceHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	user, _ := currentUser(r)
	userID := user.ID.String()

	var (
		game entities.Game
		err  error
	)
	switch mux.Vars(r)["action"] {
	case "join":
		game, err = s.Roster.Join(r.Context(), id, userID)
	case "leave":
		game, err = s.Roster.Leave(r.Context(), id, userID)
	default:
		game, err = s.Roster.Toggle(r.Context(), id, userID)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.gameDetail(r, game))
}

type Profile struct {
	User          entities.User
	GamesAttended int
}

func (s *Server) MeHandler(w http.ResponseWriter, r *http.Request) {
	user, _ := currentUser(r)
	n, err := s.Users.GamesAttended(r.Context(), user.ID.String())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Profile{User: user, GamesAttended: n})
}
