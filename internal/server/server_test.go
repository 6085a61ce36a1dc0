package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/raheva/mirror/internal/config"
	"github.com/raheva/mirror/internal/db"
	"github.com/raheva/mirror/internal/guest"
	"github.com/raheva/mirror/internal/hub"
	"github.com/raheva/mirror/internal/models"
	"github.com/raheva/mirror/internal/recording"
	"github.com/raheva/mirror/internal/session"
)

type noopRecorder struct{}

func (noopRecorder) Start(ctx context.Context) *recording.Job { return nil }
func (noopRecorder) Stop(ctx context.Context) bool            { return false }
func (noopRecorder) TagGuest(ctx context.Context, name string) {}

func newTestServer(t *testing.T, cfg config.Config) *Server {
	t.Helper()
	gdb, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error = %v", err)
	}
	if err := db.AutoMigrate(gdb); err != nil {
		t.Fatalf("AutoMigrate() error = %v", err)
	}
	if err := gdb.Create(&models.Guest{FirstName: "Sam", LastName: "Parker", Relation: "Friend", TableNumber: "4"}).Error; err != nil {
		t.Fatalf("seeding guest: %v", err)
	}

	dir, err := guest.NewGormDirectory(gdb)
	if err != nil {
		t.Fatalf("NewGormDirectory() error = %v", err)
	}
	resolver, err := guest.NewResolver(dir)
	if err != nil {
		t.Fatalf("NewResolver() error = %v", err)
	}

	h := hub.New(`<span class="line fancy">Welcome!</span>`)
	sess, err := session.NewController(session.Opts{
		WakePhrase:      "mirror mirror",
		CoupleNames:     "Maya & Daniel",
		WatchdogTimeout: time.Minute,
		Display:         h,
		Recorder:        noopRecorder{},
		Resolver:        resolver,
	})
	if err != nil {
		t.Fatalf("NewController() error = %v", err)
	}
	ledger, err := recording.NewGormLedger(recording.GormLedgerOpts{DB: gdb, BaseURL: "https://media.example.com"})
	if err != nil {
		t.Fatalf("NewGormLedger() error = %v", err)
	}

	srv, err := New(Opts{
		Config:   cfg,
		DB:       gdb,
		Hub:      h,
		Session:  sess,
		Resolver: resolver,
		Ledger:   ledger,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshaling body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestMirrorStateAndUpdateText(t *testing.T) {
	srv := newTestServer(t, config.Config{})

	w := doJSON(t, srv, http.MethodPost, "/api/update-text", map[string]string{"text": "Hello!"})
	if w.Code != http.StatusOK {
		t.Fatalf("update-text status = %d", w.Code)
	}

	w = doJSON(t, srv, http.MethodGet, "/api/mirror", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("mirror status = %d", w.Code)
	}
	var state struct {
		Text         string `json:"text"`
		OriginalText string `json:"original_text"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &state); err != nil {
		t.Fatalf("decoding state: %v", err)
	}
	if state.Text != "Hello!" {
		t.Errorf("text = %q, want Hello!", state.Text)
	}
	if !strings.Contains(state.OriginalText, "Welcome!") {
		t.Errorf("original_text = %q", state.OriginalText)
	}
}

func TestUpdateTextRequiresBody(t *testing.T) {
	srv := newTestServer(t, config.Config{})
	w := doJSON(t, srv, http.MethodPost, "/api/update-text", map[string]string{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestResetRestoresOriginalText(t *testing.T) {
	srv := newTestServer(t, config.Config{})
	doJSON(t, srv, http.MethodPost, "/api/update-text", map[string]string{"text": "temp"})
	w := doJSON(t, srv, http.MethodPost, "/api/reset", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("reset status = %d", w.Code)
	}
	if got := srv.hub.CurrentText(); !strings.Contains(got, "Welcome!") {
		t.Errorf("text after reset = %q", got)
	}
}

func TestTranscriptActivatesSession(t *testing.T) {
	srv := newTestServer(t, config.Config{})

	w := doJSON(t, srv, http.MethodPost, "/api/transcript", map[string]string{
		"text": "mirror mirror on the wall",
		"role": session.RoleGuest,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("transcript status = %d", w.Code)
	}
	var resp struct {
		Activated bool `json:"activated"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if !resp.Activated {
		t.Fatal("session should be activated")
	}
}

func TestWelcomeEndpoint(t *testing.T) {
	srv := newTestServer(t, config.Config{})
	doJSON(t, srv, http.MethodPost, "/api/transcript", map[string]string{"text": "mirror mirror"})

	w := doJSON(t, srv, http.MethodPost, "/api/welcome", map[string]string{"name": "sam parker"})
	if w.Code != http.StatusOK {
		t.Fatalf("welcome status = %d", w.Code)
	}
	var resp struct {
		GuestName string `json:"guest_name"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.GuestName != "Sam Parker" {
		t.Errorf("guest_name = %q, want Sam Parker", resp.GuestName)
	}
	if !strings.Contains(srv.hub.CurrentText(), "Welcome, Sam Parker!") {
		t.Errorf("display text = %q", srv.hub.CurrentText())
	}
}

func TestGuestSearch(t *testing.T) {
	srv := newTestServer(t, config.Config{})

	w := doJSON(t, srv, http.MethodPost, "/api/guest/search", map[string]string{"name": "sam"})
	if w.Code != http.StatusOK {
		t.Fatalf("search status = %d", w.Code)
	}
	var resp struct {
		Found       bool   `json:"found"`
		Name        string `json:"name"`
		TableNumber string `json:"table_number"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if !resp.Found || resp.Name != "Sam Parker" || resp.TableNumber != "4" {
		t.Errorf("resp = %+v", resp)
	}

	w = doJSON(t, srv, http.MethodPost, "/api/guest/search", map[string]string{"name": "nobody here"})
	if w.Code != http.StatusOK {
		t.Fatalf("search status = %d", w.Code)
	}
	var miss struct {
		Found bool `json:"found"`
	}
	json.Unmarshal(w.Body.Bytes(), &miss)
	if miss.Found {
		t.Error("unknown guest reported as found")
	}
}

func TestVideoAdminFlow(t *testing.T) {
	srv := newTestServer(t, config.Config{
		LiveKit: config.LiveKitConfig{Room: "mirror-room"},
	})

	w := doJSON(t, srv, http.MethodPost, "/api/videos/simple", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", w.Code, w.Body.String())
	}
	var created struct {
		ID       uint   `json:"id"`
		Filename string `json:"filename"`
	}
	json.Unmarshal(w.Body.Bytes(), &created)
	if !strings.HasPrefix(created.Filename, "recordings/") {
		t.Errorf("filename = %q", created.Filename)
	}

	w = doJSON(t, srv, http.MethodPut, fmt.Sprintf("/api/videos/%d/complete", created.ID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("complete status = %d", w.Code)
	}

	w = doJSON(t, srv, http.MethodGet, "/api/videos?status=completed", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var list struct {
		Count int `json:"count"`
	}
	json.Unmarshal(w.Body.Bytes(), &list)
	if list.Count != 1 {
		t.Errorf("completed videos = %d, want 1", list.Count)
	}
}

func TestCompleteUnknownVideo(t *testing.T) {
	srv := newTestServer(t, config.Config{})
	w := doJSON(t, srv, http.MethodPut, "/api/videos/9999/complete", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestAdminRoutesRequireLogin(t *testing.T) {
	cfg := config.Config{Server: config.ServerConfig{AdminPassword: "hunter2"}}
	srv := newTestServer(t, cfg)

	if w := doJSON(t, srv, http.MethodGet, "/api/videos", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated list status = %d, want 401", w.Code)
	}

	if w := doJSON(t, srv, http.MethodPost, "/api/login", map[string]string{"password": "wrong"}); w.Code != http.StatusUnauthorized {
		t.Errorf("bad login status = %d, want 401", w.Code)
	}

	w := doJSON(t, srv, http.MethodPost, "/api/login", map[string]string{"password": "hunter2"})
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d", w.Code)
	}
	cookie := &http.Cookie{Name: authCookie, Value: "hunter2"}
	if w := doJSON(t, srv, http.MethodGet, "/api/videos", nil, cookie); w.Code != http.StatusOK {
		t.Errorf("authenticated list status = %d, want 200", w.Code)
	}
}

func TestSSESendsConnectedAndUpdates(t *testing.T) {
	srv := newTestServer(t, config.Config{})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/events", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /api/events: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q", ct)
	}

	reader := bufio.NewReader(resp.Body)
	readEvent := func() (string, string) {
		t.Helper()
		var event, data string
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				t.Fatalf("reading stream: %v", err)
			}
			line = strings.TrimRight(line, "\n")
			switch {
			case strings.HasPrefix(line, "event: "):
				event = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				data = strings.TrimPrefix(line, "data: ")
			case line == "" && event != "":
				return event, data
			}
		}
	}

	event, _ := readEvent()
	if event != hub.EventConnected {
		t.Fatalf("first event = %q, want connected", event)
	}

	// Wait for the subscriber to register, then broadcast.
	deadline := time.After(2 * time.Second)
	for srv.hub.ViewerCount() == 0 {
		select {
		case <-deadline:
			t.Fatal("viewer never registered")
		case <-time.After(5 * time.Millisecond):
		}
	}
	srv.hub.SetText("Hello stream")

	event, data := readEvent()
	if event != hub.EventTextUpdate {
		t.Fatalf("second event = %q, want text_update", event)
	}
	var ev hub.Event
	if err := json.Unmarshal([]byte(data), &ev); err != nil {
		t.Fatalf("decoding event: %v", err)
	}
	if ev.Text != "Hello stream" {
		t.Errorf("event text = %q", ev.Text)
	}
}
