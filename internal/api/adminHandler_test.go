package api

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"testing"

	"play4peace-server/internal/core"
	"play4peace-server/internal/entities"
)

func TestAdminRoutesRequireAdmin(t *testing.T) {
	env := newTestEnv(t)
	alice := env.login("Alice")

	resp := env.do(http.MethodPost, "/admin/games", alice.Token, core.NewGame{Date: "2030-05-04", Time: "10:00", Location: "Pitch"})
	expectStatus(t, resp, http.StatusForbidden)

	resp = env.do(http.MethodGet, "/admin/users", "", nil)
	expectStatus(t, resp, http.StatusUnauthorized)
}

func TestAdminGameLifecycle(t *testing.T) {
	env := newTestEnv(t)
	admin := env.login(adminName)
	game := env.createGame(admin.Token, 0)
	if game.Capacity != core.DefaultCapacity {
		t.Errorf("Capacity = %d, want default %d", game.Capacity, core.DefaultCapacity)
	}
	path := "/admin/games/" + game.ID.String()

	resp := env.do(http.MethodPatch, path, admin.Token, map[string]interface{}{"Capacity": 5, "Location": "North Pitch"})
	expectStatus(t, resp, http.StatusOK)
	var updated GameView
	decodeJSON(t, resp, &updated)
	if updated.Capacity != 5 || updated.Location != "North Pitch" || updated.Version != game.Version+1 {
		t.Errorf("PATCH = %+v", updated)
	}

	tests := []struct {
		name string
		body interface{}
		want int
	}{
		{"zero capacity", map[string]interface{}{"Capacity": 0}, http.StatusBadRequest},
		{"bad date", map[string]interface{}{"Date": "04/05/2030"}, http.StatusBadRequest},
		{"empty", map[string]interface{}{}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.do(http.MethodPatch, path, admin.Token, tt.body)
			expectStatus(t, resp, tt.want)
		})
	}

	resp = env.do(http.MethodDelete, path, admin.Token, nil)
	expectStatus(t, resp, http.StatusNoContent)
	resp = env.do(http.MethodDelete, path, admin.Token, nil)
	expectStatus(t, resp, http.StatusNotFound)
	resp = env.do(http.MethodGet, "/games/"+game.ID.String(), "", nil)
	expectStatus(t, resp, http.StatusNotFound)
}

func TestAdminAnnouncements(t *testing.T) {
	env := newTestEnv(t)
	admin := env.login(adminName)

	resp := env.do(http.MethodPost, "/admin/announcements", admin.Token, AnnouncementRequest{Title: "Kit", Content: "Bring **both** shirts"})
	expectStatus(t, resp, http.StatusCreated)
	var created entities.Announcement
	decodeJSON(t, resp, &created)
	if created.Author != adminName {
		t.Errorf("Author = %q, want %q", created.Author, adminName)
	}

	resp = env.do(http.MethodPost, "/admin/announcements", admin.Token, AnnouncementRequest{Title: "", Content: "x"})
	expectStatus(t, resp, http.StatusBadRequest)

	title := "Kit update"
	resp = env.do(http.MethodPatch, "/admin/announcements/"+created.ID.String(), admin.Token, entities.AnnouncementUpdate{Title: &title})
	expectStatus(t, resp, http.StatusOK)

	resp = env.do(http.MethodGet, "/announcements", "", nil)
	expectStatus(t, resp, http.StatusOK)
	var views []AnnouncementView
	decodeJSON(t, resp, &views)
	if len(views) != 1 || views[0].Title != title || !strings.Contains(views[0].HTML, "<strong>both</strong>") {
		t.Errorf("GET /announcements = %+v", views)
	}

	resp = env.do(http.MethodDelete, "/admin/announcements/"+created.ID.String(), admin.Token, nil)
	expectStatus(t, resp, http.StatusNoContent)
}

func uploadRequest(t *testing.T, env *testEnv, token, weekDate string, files map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("weekDate", weekDate); err != nil {
		t.Fatal(err)
	}
	for name, content := range files {
		fw, err := mw.CreateFormFile("photos", name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := io.WriteString(fw, content); err != nil {
			t.Fatal(err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}

	req, err := http.NewRequest(http.MethodPost, env.http.URL+"/admin/photos", &body)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestAdminPhotos(t *testing.T) {
	env := newTestEnv(t)
	admin := env.login(adminName)

	resp := env.send(uploadRequest(t, env, admin.Token, "2030-05-04", map[string]string{"goal.jpg": "jpeg-bytes"}))
	expectStatus(t, resp, http.StatusCreated)
	var uploaded []entities.Photo
	decodeJSON(t, resp, &uploaded)
	if len(uploaded) != 1 || uploaded[0].Visible || uploaded[0].UploadedBy != adminName {
		t.Fatalf("upload = %+v", uploaded)
	}
	photo := uploaded[0]

	resp = env.send(uploadRequest(t, env, admin.Token, "not-a-date", map[string]string{"a.jpg": "x"}))
	expectStatus(t, resp, http.StatusBadRequest)
	resp = env.send(uploadRequest(t, env, admin.Token, "2030-05-04", nil))
	expectStatus(t, resp, http.StatusBadRequest)

	var weeks []core.PhotoWeek
	resp = env.do(http.MethodGet, "/photos", "", nil)
	expectStatus(t, resp, http.StatusOK)
	decodeJSON(t, resp, &weeks)
	if len(weeks) != 0 {
		t.Errorf("hidden photos are public: %+v", weeks)
	}

	resp = env.do(http.MethodGet, "/admin/photos", admin.Token, nil)
	expectStatus(t, resp, http.StatusOK)
	decodeJSON(t, resp, &weeks)
	if len(weeks) != 1 || len(weeks[0].Photos) != 1 {
		t.Errorf("GET /admin/photos = %+v", weeks)
	}

	resp = env.do(http.MethodPost, "/admin/photos/weeks/2030-05-04/visible", admin.Token, nil)
	expectStatus(t, resp, http.StatusOK)
	var visible VisibleResponse
	decodeJSON(t, resp, &visible)
	if visible.Updated != 1 {
		t.Errorf("Updated = %d, want 1", visible.Updated)
	}

	resp = env.do(http.MethodGet, "/photos", "", nil)
	expectStatus(t, resp, http.StatusOK)
	decodeJSON(t, resp, &weeks)
	if len(weeks) != 1 || weeks[0].WeekDate != "2030-05-04" || weeks[0].Photos[0].ID != photo.ID {
		t.Errorf("GET /photos = %+v", weeks)
	}

	resp = env.do(http.MethodGet, photo.URL, "", nil)
	expectStatus(t, resp, http.StatusOK)
	content, _ := io.ReadAll(resp.Body)
	if string(content) != "jpeg-bytes" {
		t.Errorf("media body = %q", content)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/jpeg" {
		t.Errorf("Content-Type = %q", ct)
	}

	resp = env.do(http.MethodGet, "/media/private/x.jpg", "", nil)
	expectStatus(t, resp, http.StatusNotFound)

	resp = env.do(http.MethodDelete, "/admin/photos/"+photo.ID.String(), admin.Token, nil)
	expectStatus(t, resp, http.StatusNoContent)
	resp = env.do(http.MethodGet, photo.URL, "", nil)
	expectStatus(t, resp, http.StatusNotFound)
}

func TestAdminUsers(t *testing.T) {
	env := newTestEnv(t)
	admin := env.login(adminName)
	alice := env.login("Alice")
	env.login("Alison")
	env.login("Bob")

	resp := env.do(http.MethodGet, "/admin/users?q=ali", admin.Token, nil)
	expectStatus(t, resp, http.StatusOK)
	var page core.UserPage
	decodeJSON(t, resp, &page)
	if page.Total != 2 || page.Page != 1 || len(page.Users) != 2 {
		t.Errorf("GET /admin/users = %+v", page)
	}

	promote := true
	resp = env.do(http.MethodPatch, "/admin/users/"+alice.UserId, admin.Token, entities.UserUpdate{IsAdmin: &promote})
	expectStatus(t, resp, http.StatusOK)

	// Alice's existing token now opens admin routes.
	resp = env.do(http.MethodGet, "/admin/users", alice.Token, nil)
	expectStatus(t, resp, http.StatusOK)

	blank := " "
	resp = env.do(http.MethodPatch, "/admin/users/"+alice.UserId, admin.Token, entities.UserUpdate{Name: &blank})
	expectStatus(t, resp, http.StatusBadRequest)
}
