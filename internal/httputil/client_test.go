package httputil

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestStandardClientAgainstServer(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			body, _ := io.ReadAll(r.Body)
			w.WriteHeader(http.StatusAccepted)
			w.Write(body)
			return
		}
		w.Write([]byte("pong"))
	}))
	defer srv.Close()

	client := NewStandardClient(nil)

	resp, err := client.Get(srv.URL)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "pong" {
		t.Errorf("GET body = %q, want pong", body)
	}

	resp, err = client.Post(srv.URL, "application/json", strings.NewReader(`{"ok":true}`))
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Errorf("POST status = %d, want 202", resp.StatusCode)
	}
	if string(body) != `{"ok":true}` {
		t.Errorf("POST echo = %q", body)
	}
}

func TestMockClientReplaysQueue(t *testing.T) {
	t.Parallel()

	mock := NewMockHTTPClient()
	mock.AddResponse(http.StatusOK, `{"status":"ok"}`).
		AddResponse(http.StatusUnprocessableEntity, `{"error":"invalid input"}`).
		AddErrorResponse(errors.New("connection refused"))

	resp, err := mock.Post("http://bridge/ingest", "application/json", strings.NewReader("one"))
	if err != nil {
		t.Fatalf("first post: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("first status = %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp, err = mock.Post("http://bridge/ingest", "application/json", strings.NewReader("two"))
	if err != nil {
		t.Fatalf("second post: %v", err)
	}
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("second status = %d", resp.StatusCode)
	}
	resp.Body.Close()

	if _, err := mock.Get("http://bridge/payload"); err == nil {
		t.Fatal("third call should surface the queued transport error")
	}

	// queue drained: default is an empty 200
	resp, err = mock.Get("http://bridge/payload")
	if err != nil {
		t.Fatalf("drained queue: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("default status = %d", resp.StatusCode)
	}
	resp.Body.Close()

	if got := mock.RequestCount(); got != 4 {
		t.Errorf("RequestCount = %d, want 4", got)
	}
	if got := string(mock.RequestBody(1)); got != "two" {
		t.Errorf("RequestBody(1) = %q, want two", got)
	}
	if got := mock.RequestURL(3); got != "http://bridge/payload" {
		t.Errorf("RequestURL(3) = %q", got)
	}
	if mock.RequestBody(99) != nil {
		t.Error("out-of-range body should be nil")
	}
}

func TestMockClientReset(t *testing.T) {
	t.Parallel()

	mock := NewMockHTTPClient()
	mock.AddResponse(http.StatusTeapot, "")
	if _, err := mock.Get("http://bridge/health"); err != nil {
		t.Fatalf("get: %v", err)
	}

	mock.Reset()
	if mock.RequestCount() != 0 {
		t.Error("reset should clear recorded requests")
	}

	resp, err := mock.Get("http://bridge/health")
	if err != nil {
		t.Fatalf("get after reset: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status after reset = %d, want default 200", resp.StatusCode)
	}
	resp.Body.Close()
}
