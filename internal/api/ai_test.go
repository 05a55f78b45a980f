package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/fathima-sithara/session-broker/internal/broker"
	"github.com/fathima-sithara/session-broker/internal/config"
	"github.com/fathima-sithara/session-broker/internal/httpclient"
	"github.com/fathima-sithara/session-broker/internal/lingua"
	"github.com/fathima-sithara/session-broker/internal/ws"
)

func newTestApp(upstream config.UpstreamConfig) (*fiber.App, *broker.Broker) {
	log := zap.NewNop().Sugar()
	b := broker.New(log, 16)
	gw := ws.NewGateway(b, nil, nil, log, time.Second, time.Second, 1024)
	hc := httpclient.New(httpclient.Config{InitialDelay: 10 * time.Millisecond, MaxRetries: 3})
	lc := lingua.New(hc, upstream, log)
	return NewServer(b, gw, lc, log), b
}

func postJSON(t *testing.T, app *fiber.App, path string, body string) (*http.Response, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp, out
}

func TestHealth(t *testing.T) {
	app, _ := newTestApp(config.UpstreamConfig{})
	req := httptest.NewRequest(http.MethodGet, "/v1/health", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d, want 200", resp.StatusCode)
	}
}

func TestDetectAndTranslate_MissingFieldsRejectedBeforeUpstream(t *testing.T) {
	var upstreamCalls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&upstreamCalls, 1)
	}))
	defer srv.Close()

	app, _ := newTestApp(config.UpstreamConfig{DetectURL: srv.URL, TranslateURL: srv.URL})

	for _, body := range []string{`{}`, `{"text":"Hola"}`, `{"targetLanguage":"en"}`, `not json`} {
		resp, out := postJSON(t, app, "/v1/detect-and-translate", body)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("body=%s status=%d, want 400", body, resp.StatusCode)
		}
		if out["error"] == nil {
			t.Fatalf("body=%s response missing error field: %v", body, out)
		}
	}
	if atomic.LoadInt32(&upstreamCalls) != 0 {
		t.Fatalf("upstream called %d times for malformed requests", upstreamCalls)
	}
}

func TestDetectAndTranslate_SameLanguageShortCircuits(t *testing.T) {
	var translateCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/detect", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"detections":[[{"language":"es"}]]}}`))
	})
	mux.HandleFunc("/translate", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&translateCalls, 1)
		w.Write([]byte(`{"data":{"translations":[{"translatedText":"x"}]}}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	app, _ := newTestApp(config.UpstreamConfig{
		DetectURL:    srv.URL + "/detect",
		TranslateURL: srv.URL + "/translate",
	})

	resp, out := postJSON(t, app, "/v1/detect-and-translate", `{"text":"Hola","targetLanguage":"es"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d, want 200", resp.StatusCode)
	}
	if out["detectedLanguage"] != "es" || out["translatedText"] != "Hola" {
		t.Fatalf("response=%v", out)
	}
	if out["message"] == nil {
		t.Fatalf("same-language response missing message: %v", out)
	}
	if atomic.LoadInt32(&translateCalls) != 0 {
		t.Fatal("translation endpoint called despite matching language")
	}
}

func TestDetectAndTranslate_TranslatesWhenLanguagesDiffer(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/detect", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"detections":[[{"language":"es"}]]}}`))
	})
	mux.HandleFunc("/translate", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"translations":[{"translatedText":"Hello"}]}}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	app, _ := newTestApp(config.UpstreamConfig{
		DetectURL:    srv.URL + "/detect",
		TranslateURL: srv.URL + "/translate",
	})

	resp, out := postJSON(t, app, "/v1/detect-and-translate", `{"text":"Hola","targetLanguage":"en"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d, want 200", resp.StatusCode)
	}
	if out["detectedLanguage"] != "es" || out["translatedText"] != "Hello" {
		t.Fatalf("response=%v", out)
	}
}

func TestDetectAndTranslate_UpstreamStructuralFailureIs500(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{}}`))
	}))
	defer srv.Close()

	app, _ := newTestApp(config.UpstreamConfig{DetectURL: srv.URL})

	resp, out := postJSON(t, app, "/v1/detect-and-translate", `{"text":"Hola","targetLanguage":"en"}`)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status=%d, want 500", resp.StatusCode)
	}
	if out["error"] == nil || out["details"] == nil {
		t.Fatalf("response=%v, want error and details", out)
	}
}

func TestSummarizeConversation_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"summary":"short recap"}`))
	}))
	defer srv.Close()

	app, _ := newTestApp(config.UpstreamConfig{SummarizeURL: srv.URL})

	resp, out := postJSON(t, app, "/v1/summarize-conversation", `{"conversationText":"A: hi"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d, want 200", resp.StatusCode)
	}
	if out["summary"] != "short recap" {
		t.Fatalf("response=%v", out)
	}
}

func TestSummarizeConversation_MissingFieldIs400(t *testing.T) {
	app, _ := newTestApp(config.UpstreamConfig{})
	resp, out := postJSON(t, app, "/v1/summarize-conversation", `{}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status=%d, want 400", resp.StatusCode)
	}
	if out["error"] == nil {
		t.Fatalf("response missing error: %v", out)
	}
}

func TestSummarizeConversation_UpstreamFailureIs500(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	app, _ := newTestApp(config.UpstreamConfig{SummarizeURL: srv.URL})

	resp, out := postJSON(t, app, "/v1/summarize-conversation", `{"conversationText":"A: hi"}`)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status=%d, want 500", resp.StatusCode)
	}
	if out["error"] == nil {
		t.Fatalf("response missing error: %v", out)
	}
}

func TestRoomMembersView(t *testing.T) {
	app, b := newTestApp(config.UpstreamConfig{})
	a := b.Connect()
	c := b.Connect()
	b.Join(a.ID, "r1")
	b.Join(c.ID, "r1")

	req := httptest.NewRequest(http.MethodGet, "/v1/rooms/r1/members", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	var out struct {
		Status string   `json:"status"`
		Data   []string `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Status != "success" {
		t.Fatalf("status=%q", out.Status)
	}
	if len(out.Data) != 2 || out.Data[0] != a.ID || out.Data[1] != c.ID {
		t.Fatalf("data=%v, want [%s %s] in join order", out.Data, a.ID, c.ID)
	}
}

func TestRoomMembersUnknownRoomEmpty(t *testing.T) {
	app, _ := newTestApp(config.UpstreamConfig{})
	req := httptest.NewRequest(http.MethodGet, "/v1/rooms/ghost/members", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d, want 200", resp.StatusCode)
	}
	var out struct {
		Data []string `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Data) != 0 {
		t.Fatalf("data=%v, want empty", out.Data)
	}
}
