package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"play4peace-server/internal/core"
	"play4peace-server/internal/entities"
)

const maxUploadBytes = 32 << 20

func (s *Server) CreateGameHandler(w http.ResponseWriter, r *http.Request) {
	var in core.NewGame
	if !decodeBody(w, r, &in) {
		return
	}
	game, err := s.Games.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, gameView(game))
}

func (s *Server) UpdateGameHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var update entities.GameUpdate
	if !decodeBody(w, r, &update) {
		return
	}
	game, err := s.Games.Update(r.Context(), id, update)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, gameView(game))
}

func (s *Server) DeleteGameHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := s.Games.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type AnnouncementRequest struct {
	Title   string
	Content string
}

func (s *Server) CreateAnnouncementHandler(w http.ResponseWriter, r *http.Request) {
	var in AnnouncementRequest
	if !decodeBody(w, r, &in) {
		return
	}
	user, _ := currentUser(r)
	a, err := s.Announcements.Create(r.Context(), in.Title, in.Content, user.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (s *Server) UpdateAnnouncementHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var update entities.AnnouncementUpdate
	if !decodeBody(w, r, &update) {
		return
	}
	a, err := s.Announcements.Update(r.Context(), id, update)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) DeleteAnnouncementHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := s.Announcements.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AdminPhotosHandler lists every photo, hidden ones included, grouped by week.
func (s *Server) AdminPhotosHandler(w http.ResponseWriter, r *http.Request) {
	photos, err := s.Photos.ListAll(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, core.GroupByWeek(photos))
}

// UploadPhotosHandler takes a multipart form with a weekDate field and one or
// more files under "photos".
func (s *Server) UploadPhotosHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid upload")
		return
	}
	weekDate := r.FormValue("weekDate")
	files := r.MultipartForm.File["photos"]
	if len(files) == 0 {
		writeMessage(w, http.StatusBadRequest, "no photos")
		return
	}

	user, _ := currentUser(r)
	uploaded := make([]entities.Photo, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			writeError(w, r, err)
			return
		}
		photo, err := s.Photos.Upload(r.Context(), fh.Filename, weekDate, user.Name, f)
		f.Close()
		if err != nil {
			writeError(w, r, err)
			return
		}
		uploaded = append(uploaded, photo)
	}
	log.Info().Int("count", len(uploaded)).Str("week", weekDate).Msg("photos uploaded")
	writeJSON(w, http.StatusCreated, uploaded)
}

type VisibleResponse struct {
	WeekDate string
	Updated  int64
}

func (s *Server) MakeWeekVisibleHandler(w http.ResponseWriter, r *http.Request) {
	week := mux.Vars(r)["week"]
	n, err := s.Photos.MakeWeekVisible(r.Context(), week)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, VisibleResponse{WeekDate: week, Updated: n})
}

func (s *Server) DeletePhotoHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := s.Photos.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) UsersHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	result, err := s.Users.Page(r.Context(), q.Get("q"), page)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) UpdateUserHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var update entities.UserUpdate
	if !decodeBody(w, r, &update) {
		return
	}
	user, err := s.Users.Update(r.Context(), id, update)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
