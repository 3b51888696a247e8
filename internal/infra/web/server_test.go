//go:build !integration

package web

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"telegram-bingo-bot/internal/config"
	"telegram-bingo-bot/internal/domain"
	"telegram-bingo-bot/internal/domain/model"
	"telegram-bingo-bot/internal/usecase"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

type stubStats struct {
	snapshot *usecase.Stats
	err      error
}

func (s *stubStats) Snapshot(ctx context.Context) (*usecase.Stats, error) {
	return s.snapshot, s.err
}

type stubBroadcasts struct {
	staged []*model.Broadcast
}

func (s *stubBroadcasts) Stage(ctx context.Context, b *model.Broadcast) (string, error) {
	if err := b.Validate(); err != nil {
		return "", err
	}
	s.staged = append(s.staged, b)
	return "bc-1", nil
}

func (s *stubBroadcasts) Fetch(ctx context.Context, id string) (*model.Broadcast, error) {
	return nil, domain.ErrBroadcastNotFound
}

func (s *stubBroadcasts) Execute(ctx context.Context, id string, initiatorChatID int64) (*model.BroadcastReport, error) {
	return nil, domain.ErrBroadcastNotFound
}

func (s *stubBroadcasts) Enqueue(id string, initiatorChatID int64) error { return nil }

func newTestServer(t *testing.T) (*Server, *stubBroadcasts) {
	t.Helper()
	broadcasts := &stubBroadcasts{}
	stats := &stubStats{snapshot: &usecase.Stats{TotalUsers: 10, ActiveUsers: 4, TakenAt: time.Now()}}
	cfg := &config.HTTPConfig{
		Port:         3001,
		PublicDomain: "https://files.example.com",
		UploadDir:    t.TempDir(),
		AdminSecret:  "s3cret",
	}
	auth := NewAuthManager(cfg.AdminSecret, false, time.Hour)
	return NewServer(stats, broadcasts, auth, cfg, newTestLogger()), broadcasts
}

// minimal valid PNG header; DetectContentType only needs the signature.
var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)

func multipartBody(t *testing.T, field, filename, contentType string, payload []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(payload); err != nil {
		t.Fatalf("write part: %v", err)
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestUpload(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.Router()

	t.Run("accepts a png and returns its public url", func(t *testing.T) {
		body, ct := multipartBody(t, "image", "logo.png", "image/png", pngBytes)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", body)
		req.Header.Set("Content-Type", ct)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
		var resp struct {
			Success  bool   `json:"success"`
			URL      string `json:"url"`
			Filename string `json:"filename"`
			Size     int64  `json:"size"`
			MimeType string `json:"mimetype"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !resp.Success || resp.MimeType != "image/png" {
			t.Fatalf("resp = %+v", resp)
		}
		if !strings.HasPrefix(resp.URL, "https://files.example.com/uploads/") {
			t.Fatalf("url = %q", resp.URL)
		}
		if !strings.HasSuffix(resp.Filename, ".png") {
			t.Fatalf("filename = %q", resp.Filename)
		}
		if resp.Size != int64(len(pngBytes)) {
			t.Fatalf("size = %d, want %d", resp.Size, len(pngBytes))
		}
	})

	t.Run("rejects non-image content", func(t *testing.T) {
		body, ct := multipartBody(t, "image", "notes.txt", "text/plain", []byte("hello world, definitely not an image"))
		req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", body)
		req.Header.Set("Content-Type", ct)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnsupportedMediaType {
			t.Fatalf("status = %d", rec.Code)
		}
		var resp map[string]string
		_ = json.Unmarshal(rec.Body.Bytes(), &resp)
		if resp["error"] == "" {
			t.Fatalf("error body missing: %s", rec.Body.String())
		}
	})

	t.Run("rejects oversize payloads", func(t *testing.T) {
		big := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{1}, MaxUploadBytes+1024)...)
		body, ct := multipartBody(t, "image", "huge.png", "image/png", big)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", body)
		req.Header.Set("Content-Type", ct)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusRequestEntityTooLarge {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("requires the image form field", func(t *testing.T) {
		body, ct := multipartBody(t, "file", "logo.png", "image/png", pngBytes)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", body)
		req.Header.Set("Content-Type", ct)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("accepts svg by declared type", func(t *testing.T) {
		svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg"></svg>`)
		body, ct := multipartBody(t, "image", "logo.svg", "image/svg+xml", svg)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", body)
		req.Header.Set("Content-Type", ct)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
	})
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["status"] != "ok" || resp["timestamp"] == "" {
		t.Fatalf("resp = %v", resp)
	}
}

func TestAdminAPI(t *testing.T) {
	srv, broadcasts := newTestServer(t)
	router := srv.Router()

	login := func(t *testing.T, secret string) (*httptest.ResponseRecorder, string) {
		t.Helper()
		body, _ := json.Marshal(map[string]string{"secret": secret})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		var resp map[string]string
		_ = json.Unmarshal(rec.Body.Bytes(), &resp)
		return rec, resp["token"]
	}

	t.Run("login rejects a wrong secret", func(t *testing.T) {
		rec, _ := login(t, "wrong")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("stats requires a session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("stats with a minted token", func(t *testing.T) {
		rec, token := login(t, "s3cret")
		if rec.Code != http.StatusOK || token == "" {
			t.Fatalf("login status = %d token = %q", rec.Code, token)
		}

		req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		var resp map[string]any
		_ = json.Unmarshal(rec.Body.Bytes(), &resp)
		if resp["total_users"] != float64(10) || resp["active_users"] != float64(4) {
			t.Fatalf("resp = %v", resp)
		}
	})

	t.Run("panel can stage a broadcast", func(t *testing.T) {
		_, token := login(t, "s3cret")
		body, _ := json.Marshal(map[string]any{
			"text": "hello",
			"buttons": []map[string]string{
				{"text": "Play", "url": "https://hagere-online.com"},
			},
		})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/broadcasts", bytes.NewReader(body))
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
		if len(broadcasts.staged) != 1 || broadcasts.staged[0].Text != "hello" {
			t.Fatalf("staged = %+v", broadcasts.staged)
		}
	})

	t.Run("empty broadcast rejected", func(t *testing.T) {
		_, token := login(t, "s3cret")
		req := httptest.NewRequest(http.MethodPost, "/api/v1/broadcasts", strings.NewReader(`{}`))
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", rec.Code)
		}
	})
}
