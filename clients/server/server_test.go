package server

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/xob0t/covergen/pkg/batch"
	"github.com/xob0t/covergen/pkg/config"
	"github.com/xob0t/covergen/pkg/framesource"
	"github.com/xob0t/covergen/pkg/imageio"
	"github.com/xob0t/covergen/pkg/logging"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T, failing string) *Server {
	t.Helper()
	src := framesource.Func(func(_ context.Context, path string, _ float64) (image.Image, error) {
		if filepath.Base(path) == failing {
			return nil, framesource.ErrSeekPastEnd
		}
		return imageio.NewSolidImage(160, 90, color.RGBA{20, 20, 20, 255}), nil
	})

	cfg := config.Default()
	cfg.Render.FontSize = 24
	s, err := New(cfg, &batch.Coordinator{Frames: src, Logger: logging.NewNop()}, logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

type part struct {
	field, filename string
	data            []byte
}

func multipartBody(t *testing.T, fields map[string]string, files ...part) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	for _, f := range files {
		fw, err := w.CreateFormFile(f.field, f.filename)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write(f.data); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return &body, w.FormDataContentType()
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, imageio.NewSolidImage(w, h, color.RGBA{0, 0, 0, 255})); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, "")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Status   string          `json:"status"`
		Binaries map[string]bool `json:"binaries"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status == "" {
		t.Fatal("expected a status")
	}
	if _, ok := body.Binaries["ffmpeg"]; !ok {
		t.Fatalf("binaries = %v, want ffmpeg entry", body.Binaries)
	}
}

func TestRender(t *testing.T) {
	s := newTestServer(t, "")

	tests := []struct {
		name     string
		fields   map[string]string
		wantCode int
		wantType string
	}{
		{"jpeg default", map[string]string{"title": "My Trip"}, http.StatusOK, "image/jpeg"},
		{"png format", map[string]string{"title": "My Trip", "format": "png"}, http.StatusOK, "image/png"},
		{"no stroke", map[string]string{"title": "My Trip", "stroke_offset": "0"}, http.StatusOK, "image/jpeg"},
		{"bad color", map[string]string{"title": "x", "text_color": "yellow"}, http.StatusBadRequest, ""},
		{"bad size", map[string]string{"title": "x", "font_size": "big"}, http.StatusBadRequest, ""},
		{"bad format", map[string]string{"title": "x", "format": "gif"}, http.StatusBadRequest, ""},
		{"unknown font", map[string]string{"title": "x", "font_id": "nope"}, http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, contentType := multipartBody(t, tt.fields, part{"image", "still.png", pngBytes(t, 320, 180)})
			req := httptest.NewRequest(http.MethodPost, "/api/render", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()
			s.Router().ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantCode != http.StatusOK {
				return
			}
			if got := rec.Header().Get("Content-Type"); got != tt.wantType {
				t.Fatalf("content type = %q, want %q", got, tt.wantType)
			}
			img, err := imageio.Decode(rec.Body)
			if err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if b := img.Bounds(); b.Dx() != 320 || b.Dy() != 180 {
				t.Fatalf("size = %v, want 320x180", b)
			}
		})
	}
}

func TestRenderRequiresImage(t *testing.T) {
	s := newTestServer(t, "")
	body, contentType := multipartBody(t, map[string]string{"title": "x"})
	req := httptest.NewRequest(http.MethodPost, "/api/render", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestFontLifecycle(t *testing.T) {
	s := newTestServer(t, "")
	router := s.Router()

	body, contentType := multipartBody(t, nil, part{"file", "Go Regular.ttf", goregular.TTF})
	req := httptest.NewRequest(http.MethodPost, "/api/fonts", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload status = %d: %s", rec.Code, rec.Body.String())
	}
	var uploaded fontAsset
	if err := json.Unmarshal(rec.Body.Bytes(), &uploaded); err != nil {
		t.Fatal(err)
	}
	if uploaded.ID == "" || uploaded.Name != "Go Regular.ttf" {
		t.Fatalf("uploaded = %+v", uploaded)
	}

	body, contentType = multipartBody(t, map[string]string{"title": "Hi", "font_id": uploaded.ID},
		part{"image", "still.png", pngBytes(t, 200, 100)})
	req = httptest.NewRequest(http.MethodPost, "/api/render", body)
	req.Header.Set("Content-Type", contentType)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("render with uploaded font = %d: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/fonts", nil))
	var listed struct {
		Fonts []fontAsset `json:"fonts"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatal(err)
	}
	if len(listed.Fonts) != 1 || listed.Fonts[0].ID != uploaded.ID {
		t.Fatalf("listed = %+v", listed.Fonts)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/fonts/"+uploaded.ID, nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/fonts/"+uploaded.ID, nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", rec.Code)
	}
}

func TestUploadRejectsInvalidFont(t *testing.T) {
	s := newTestServer(t, "")
	body, contentType := multipartBody(t, nil, part{"file", "broken.ttf", []byte("not a font")})
	req := httptest.NewRequest(http.MethodPost, "/api/fonts", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	entries, err := os.ReadDir(s.tmpDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("rejected font left files behind: %v", entries)
	}
}

func TestBatch(t *testing.T) {
	s := newTestServer(t, "b.mkv")
	folder := t.TempDir()
	for _, name := range []string{"a.mp4", "b.mkv", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(folder, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name     string
		body     string
		wantCode int
	}{
		{"partial failure", `{"folder": "` + folder + `"}`, http.StatusOK},
		{"missing folder", `{"folder": "` + filepath.Join(folder, "nope") + `"}`, http.StatusBadRequest},
		{"negative seek", `{"folder": "` + folder + `", "seek_seconds": -1}`, http.StatusBadRequest},
		{"no folder", `{}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/batch", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			s.Router().ServeHTTP(rec, req)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantCode != http.StatusOK {
				return
			}
			var report batch.Report
			if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
				t.Fatalf("decode report: %v", err)
			}
			if report.Attempted != 2 || report.Succeeded != 1 || report.Failed != 1 {
				t.Fatalf("report = %+v", report)
			}
			if report.Failures[0].Name != "b.mkv" || report.Failures[0].Reason != batch.ReasonFrame {
				t.Fatalf("failures = %+v", report.Failures)
			}
		})
	}
}
