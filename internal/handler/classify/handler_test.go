package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	analysis "github.com/zhouzirui/callpulse/backend/internal/analysis/emotion"
	emotionservice "github.com/zhouzirui/callpulse/backend/internal/service/emotion"
)

type stubBackend struct {
	content string
}

func (b stubBackend) Name() string { return "stub" }

func (b stubBackend) Complete(ctx context.Context, text string) (string, error) {
	return b.content, nil
}

func setupRouter(backend emotionservice.Backend) *chi.Mux {
	classifier := analysis.NewClassifier(analysis.NopLexicon{}, nil, nil)
	svc := emotionservice.NewService(backend, classifier, emotionservice.Config{})
	handler := New(svc, analysis.NewFiller(func(int) int { return 0 }))

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r
}

func postClassify(t *testing.T, r http.Handler, target, body string) (*httptest.ResponseRecorder, analysis.Result) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	var result analysis.Result
	if resp.Code == http.StatusOK {
		if err := json.Unmarshal(resp.Body.Bytes(), &result); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp, result
}

func TestClassifyAngryText(t *testing.T) {
	r := setupRouter(nil)

	resp, result := postClassify(t, r, "/classify", `{"text":"I am angry"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if result.Emotion != analysis.Angry {
		t.Fatalf("expected Angry, got %s", result.Emotion)
	}
	if result.Priority != analysis.PriorityHigh {
		t.Fatalf("expected high priority, got %s", result.Priority)
	}
	if result.Source != analysis.SourceLocal {
		t.Fatalf("expected local source, got %s", result.Source)
	}
}

func TestClassifyNullTextIsNeutral(t *testing.T) {
	r := setupRouter(nil)

	for _, body := range []string{`{"text":null}`, `{}`, ``} {
		resp, result := postClassify(t, r, "/classify", body)
		if resp.Code != http.StatusOK {
			t.Fatalf("body %q: expected 200, got %d", body, resp.Code)
		}
		if result.Emotion != analysis.Neutral || result.SentimentScore != 5 {
			t.Fatalf("body %q: expected Neutral/5, got %s/%v", body, result.Emotion, result.SentimentScore)
		}
	}
}

func TestClassifyInvalidBody(t *testing.T) {
	r := setupRouter(nil)

	resp, _ := postClassify(t, r, "/classify", `{"text":`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestClassifyRemote(t *testing.T) {
	r := setupRouter(stubBackend{content: `{"emotion":"Disappointed","sentimentScore":3.5}`})

	_, result := postClassify(t, r, "/classify?remote=true", `{"text":"that was not great"}`)
	if result.Emotion != analysis.Disappointed {
		t.Fatalf("expected Disappointed, got %s", result.Emotion)
	}
	if result.Source != analysis.SourceRemote {
		t.Fatalf("expected remote source, got %s", result.Source)
	}

	_, local := postClassify(t, r, "/classify", `{"text":"that was not great"}`)
	if local.Source != analysis.SourceLocal {
		t.Fatalf("expected local source without remote flag, got %s", local.Source)
	}
}

func TestFiller(t *testing.T) {
	r := setupRouter(nil)

	tests := []struct {
		target string
		status int
	}{
		{target: "/filler", status: http.StatusOK},
		{target: "/filler?kind=compliment", status: http.StatusOK},
		{target: "/filler?kind=acknowledge&emotion=angry", status: http.StatusOK},
		{target: "/filler?kind=joke", status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, tt.target, nil))
		if resp.Code != tt.status {
			t.Fatalf("%s: expected %d, got %d", tt.target, tt.status, resp.Code)
		}
		if tt.status != http.StatusOK {
			continue
		}

		var body map[string]string
		if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
			t.Fatalf("%s: decode: %v", tt.target, err)
		}
		if body["text"] == "" {
			t.Fatalf("%s: expected filler text", tt.target)
		}
	}
}
