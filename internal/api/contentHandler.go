package api

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"os"
	"path"
	"strings"

	"play4peace-server/internal/core"
	"play4peace-server/internal/entities"
)

type AnnouncementView struct {
	entities.Announcement
	HTML string
}

func (s *Server) AnnouncementsHandler(w http.ResponseWriter, r *http.Request) {
	list, err := s.Announcements.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	views := make([]AnnouncementView, 0, len(list))
	for _, a := range list {
		html, err := core.RenderContent(a.Content)
		if err != nil {
			writeError(w, r, err)
			return
		}
		views = append(views, AnnouncementView{Announcement: a, HTML: html})
	}
	writeJSON(w, http.StatusOK, views)
}

// PhotosHandler serves the public gallery: visible photos grouped by week.
func (s *Server) PhotosHandler(w http.ResponseWriter, r *http.Request) {
	photos, err := s.Photos.ListVisible(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, core.GroupByWeek(photos))
}

func (s *Server) MediaHandler(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(r.URL.Path, "/media/")
	f, err := s.Photos.Open(key)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) || core.IsInvalid(err) {
			writeMessage(w, http.StatusNotFound, "not found")
			return
		}
		writeError(w, r, err)
		return
	}
	defer f.Close()

	if ct := mime.TypeByExtension(path.Ext(key)); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if _, err := io.Copy(w, f); err != nil {
		writeError(w, r, err)
	}
}
