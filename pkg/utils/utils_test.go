package utils

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDecodeJSON(t *testing.T) {
	var body struct {
		Text string `json:"text"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"text":"hi"}`))
	if err := DecodeJSON(httptest.NewRecorder(), req, &body); err != nil {
		t.Fatalf("DecodeJSON err: %v", err)
	}
	if body.Text != "hi" {
		t.Fatalf("unexpected text %q", body.Text)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	if err := DecodeJSON(httptest.NewRecorder(), req, &body); err != nil {
		t.Fatalf("empty body should decode, got %v", err)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{"))
	if err := DecodeJSON(httptest.NewRecorder(), req, &body); err == nil {
		t.Fatal("expected error for malformed json")
	}
}

func TestSendSSEEvent(t *testing.T) {
	rec := httptest.NewRecorder()
	SetupSSEHeaders(rec)

	if err := SendSSEEvent(rec, rec, "result", map[string]string{"emotion": "Angry"}); err != nil {
		t.Fatalf("SendSSEEvent err: %v", err)
	}
	if err := SendSSEComment(rec, rec, "ping"); err != nil {
		t.Fatalf("SendSSEComment err: %v", err)
	}

	want := "event: result\ndata: {\"emotion\":\"Angry\"}\n\n: ping\n\n"
	if rec.Body.String() != want {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
	if rec.Header().Get("Content-Type") != "text/event-stream" {
		t.Fatal("missing event-stream content type")
	}
}
