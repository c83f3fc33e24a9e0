package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestJSONResultWrites(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(http.StatusCreated, map[string]any{"success": true, "id": 7}).Write(rec)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected JSON content type, got %q", ct)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if body["success"] != true {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestErrorEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(http.StatusForbidden, "insufficient permissions").Write(rec)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if body["success"] != false || body["message"] != "insufficient permissions" {
		t.Fatalf("unexpected envelope: %v", body)
	}
}

func TestWithCookieSetsSessionCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(http.StatusOK, map[string]any{"success": true}).
		WithCookie("session_id", "abc123").
		Write(rec)

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected 1 cookie, got %d", len(cookies))
	}
	c := cookies[0]
	if c.Name != "session_id" || c.Value != "abc123" {
		t.Fatalf("unexpected cookie: %v", c)
	}
	if !c.HttpOnly || c.Path != "/" {
		t.Fatalf("expected HttpOnly path=/ cookie, got %+v", c)
	}
}

func TestWithExpiredCookieClears(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(http.StatusOK, map[string]any{"success": true}).
		WithExpiredCookie("session_id").
		Write(rec)

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected 1 cookie, got %d", len(cookies))
	}
	if cookies[0].MaxAge >= 0 {
		t.Fatalf("expected expiring cookie, got MaxAge %d", cookies[0].MaxAge)
	}
}

func TestRawResultAndHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	Raw(http.StatusOK, "text/csv", []byte("id,name\n1,Nina Simone\n")).
		WithHeader("Content-Disposition", `attachment; filename="artists.csv"`).
		Write(rec)

	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Fatalf("expected CSV content type, got %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); cd == "" {
		t.Fatalf("expected Content-Disposition header")
	}
	if rec.Body.String() != "id,name\n1,Nina Simone\n" {
		t.Fatalf("unexpected body: %q", rec.Body.String())
	}
}

func TestZeroStatusDefaultsToOK(t *testing.T) {
	rec := httptest.NewRecorder()
	Text(0, "ok").Write(rec)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
