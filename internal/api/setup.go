package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"go.uber.org/atomic"
	"golang.org/x/net/netutil"
	"play4peace-server/internal/auth"
	"play4peace-server/internal/core"
)

type Services struct {
	Roster        *core.Roster
	Games         *core.Games
	Users         *core.Users
	Announcements *core.Announcements
	Photos        *core.Photos
	Hub           *core.Hub
	Tokens        *auth.Tokens
}

type Server struct {
	Services
	origins []string
	conns   *atomic.Int64
}

func NewServer(services Services, origins []string) *Server {
	return &Server{Services: services, origins: origins, conns: atomic.NewInt64(0)}
}

func (s *Server) Router() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/login", s.LoginHandler).Methods(http.MethodPost)
	r.HandleFunc("/ws", s.WsHandler)

	r.HandleFunc("/games", s.GamesHandler).Methods(http.MethodGet)
	r.HandleFunc("/games/{id}", s.GameHandler).Methods(http.MethodGet)
	r.Handle("/games/{id}/{action:join|leave|toggle}", s.requireUser(http.HandlerFunc(s.AttendanceHandler))).Methods(http.MethodPost)
	r.Handle("/me", s.requireUser(http.HandlerFunc(s.MeHandler))).Methods(http.MethodGet)
	r.HandleFunc("/announcements", s.AnnouncementsHandler).Methods(http.MethodGet)
	r.HandleFunc("/photos", s.PhotosHandler).Methods(http.MethodGet)
	r.PathPrefix("/media/").HandlerFunc(s.MediaHandler).Methods(http.MethodGet)

	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(s.requireUser, s.requireAdmin)
	admin.HandleFunc("/games", s.CreateGameHandler).Methods(http.MethodPost)
	admin.HandleFunc("/games/{id}", s.UpdateGameHandler).Methods(http.MethodPatch)
	admin.HandleFunc("/games/{id}", s.DeleteGameHandler).Methods(http.MethodDelete)
	admin.HandleFunc("/announcements", s.CreateAnnouncementHandler).Methods(http.MethodPost)
	admin.HandleFunc("/announcements/{id}", s.UpdateAnnouncementHandler).Methods(http.MethodPatch)
	admin.HandleFunc("/announcements/{id}", s.DeleteAnnouncementHandler).Methods(http.MethodDelete)
	admin.HandleFunc("/photos", s.AdminPhotosHandler).Methods(http.MethodGet)
	admin.HandleFunc("/photos", s.UploadPhotosHandler).Methods(http.MethodPost)
	admin.HandleFunc("/photos/weeks/{week}/visible", s.MakeWeekVisibleHandler).Methods(http.MethodPost)
	admin.HandleFunc("/photos/{id}", s.DeletePhotoHandler).Methods(http.MethodDelete)
	admin.HandleFunc("/users", s.UsersHandler).Methods(http.MethodGet)
	admin.HandleFunc("/users/{id}", s.UpdateUserHandler).Methods(http.MethodPatch)

	var h http.Handler = r
	h = accessLog(h)
	h = handlers.RecoveryHandler(handlers.RecoveryLogger(recoveryLogger{}))(h)
	h = handlers.CORS(
		handlers.AllowedOrigins(s.origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
	)(h)
	return h
}

// Serve runs until ctx is cancelled, then drains in-flight requests.
// maxConns caps simultaneous connections, websockets included; 0 means no cap.
func Serve(ctx context.Context, addr string, maxConns int, h http.Handler) error {
	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	if maxConns > 0 {
		l = netutil.LimitListener(l, maxConns)
	}

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", l.Addr().String()).Int("max_conns", maxConns).Msg("listening")
		errc <- srv.Serve(l)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
