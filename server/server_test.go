package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"auto_wechat_article_studio/generator"
	"auto_wechat_article_studio/publisher"
	"auto_wechat_article_studio/studio"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	st, err := studio.New(generator.MockLLM{}, nil, nil, studio.Options{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	srv, err := New(st, publisher.Config{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	return srv.Routes()
}

func TestSessionCreateAndGet(t *testing.T) {
	h := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/sessions", strings.NewReader(`{"topic":"测试主题"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("create: status %d, body %s", rec.Code, rec.Body.String())
	}

	var created sessionResp
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatal(err)
	}
	if created.SessionID == "" {
		t.Fatal("missing session_id")
	}
	if created.Draft.HTML == "" {
		t.Fatal("draft has no html")
	}

	req = httptest.NewRequest(http.MethodGet, "/api/sessions/"+created.SessionID, nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: status %d", rec.Code)
	}
	var got sessionResp
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.Draft.HTML != created.Draft.HTML {
		t.Error("get returned different draft")
	}
}

func TestSessionNotFound(t *testing.T) {
	h := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/sessions/does-not-exist", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status %d, want 404", rec.Code)
	}
}

func TestSessionRejectsTrailingSegments(t *testing.T) {
	h := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/sessions", strings.NewReader(`{"topic":"测试主题"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("create: status %d", rec.Code)
	}
	var created sessionResp
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{
		"/api/sessions/" + created.SessionID + "/narrate/extra/junk",
		"/api/sessions/" + created.SessionID + "/publish/x",
	} {
		req = httptest.NewRequest(http.MethodPost, path, nil)
		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: status %d, want 404", path, rec.Code)
		}
	}
}

func TestSessionCreateRejectsGet(t *testing.T) {
	h := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status %d, want 405", rec.Code)
	}
}
