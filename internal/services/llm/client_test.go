package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFrame(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte{0xFF, 0xD8, 0xFF, 0xD9}, 0o644); err != nil {
		t.Fatalf("write frame: %v", err)
	}
	return path
}

func TestClientDescribeFrames(t *testing.T) {
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Bearer test" {
			t.Fatalf("unexpected authorization header %q", auth)
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("read request body: %v", err)
		}
		gotBody = body
		payload := map[string]any{
			"choices": []any{
				map[string]any{
					"message": map[string]any{
						"content": "A woman walks through a sunlit garden toward a wooden gate.",
					},
				},
			},
		}
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			t.Fatalf("encode response: %v", err)
		}
	}))
	defer server.Close()

	frame := writeFrame(t, t.TempDir(), "frame_0.jpg")
	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo-vision"})
	text, err := client.DescribeFrames(context.Background(), []string{frame}, 6.5)
	if err != nil {
		t.Fatalf("DescribeFrames returned error: %v", err)
	}
	if !strings.Contains(text, "sunlit garden") {
		t.Fatalf("unexpected description: %q", text)
	}
	if !strings.Contains(string(gotBody), "data:image/jpeg;base64,") {
		t.Fatal("expected frame encoded as data URI in request body")
	}
}

func TestClientDescribeFramesRequiresFrames(t *testing.T) {
	client := NewClient(Config{APIKey: "test", Model: "demo"})
	if _, err := client.DescribeFrames(context.Background(), nil, 5); err == nil {
		t.Fatal("expected error for empty frame list")
	}
}

func TestClientDescribeFramesRetriesServerError(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		payload := map[string]any{
			"choices": []any{
				map[string]any{"message": map[string]any{"content": "Two riders cross a ridge."}},
			},
		}
		_ = json.NewEncoder(w).Encode(payload)
	}))
	defer server.Close()

	frame := writeFrame(t, t.TempDir(), "frame_0.jpg")
	client := NewClient(
		Config{APIKey: "test", BaseURL: server.URL, Model: "demo"},
		WithRetryBackoff(time.Millisecond, 5*time.Millisecond),
	)
	text, err := client.DescribeFrames(context.Background(), []string{frame}, 4)
	if err != nil {
		t.Fatalf("DescribeFrames returned error: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls)
	}
	if text != "Two riders cross a ridge." {
		t.Fatalf("unexpected description: %q", text)
	}
}

func TestClientDescribeFramesDoesNotRetryClientError(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	frame := writeFrame(t, t.TempDir(), "frame_0.jpg")
	client := NewClient(Config{APIKey: "bad", BaseURL: server.URL, Model: "demo"})
	if _, err := client.DescribeFrames(context.Background(), []string{frame}, 4); err == nil {
		t.Fatal("expected error for unauthorized request")
	}
	if calls != 1 {
		t.Fatalf("expected single attempt, got %d", calls)
	}
}

func TestClientHealthCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]any{
			"choices": []any{
				map[string]any{"message": map[string]any{"content": "ok"}},
			},
		}
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			t.Fatalf("encode response: %v", err)
		}
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model"})
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck returned error: %v", err)
	}
}

func TestClientHealthCheckFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "bad", BaseURL: server.URL, Model: "demo"})
	if err := client.HealthCheck(context.Background()); err == nil {
		t.Fatal("expected health check to fail")
	}
}
