package api

import (
	"net/http"

	"github.com/google/uuid"
)

type LoginRequest struct {
	Name  string
	Token string
}

type LoginResponse struct {
	UserId string
	Token  string
}

// LoginHandler registers a new user by name, or confirms an existing token.
func (s *Server) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var loginRequest LoginRequest
	if !decodeBody(w, r, &loginRequest) {
		return
	}

	if len(loginRequest.Token) == 0 {
		user, err := s.Users.Register(r.Context(), loginRequest.Name)
		if err != nil {
			writeError(w, r, err)
			return
		}

		token, err := s.Tokens.GenerateToken(user.ID)
		if err != nil {
			writeError(w, r, err)
			return
		}

		okResponse(w, user.ID, token)
		return
	}

	id, err := s.Tokens.CheckToken(loginRequest.Token)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, "invalid token")
		return
	}
	if _, err := s.Users.Get(r.Context(), id); err != nil {
		writeMessage(w, http.StatusUnauthorized, "unknown user")
		return
	}
	s.Users.Touch(r.Context(), id)

	okResponse(w, id, loginRequest.Token)
}

func okResponse(w http.ResponseWriter, userId uuid.UUID, token string) {
	writeJSON(w, http.StatusOK, LoginResponse{userId.String(), token})
}
