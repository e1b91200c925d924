//go:build integration
// +build integration

package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"
)

func envOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func baseURL() string {
	return envOrDefault("INTEGRATION_BASE_URL", "http://localhost:8080")
}

// doJSON sends payload (if any) as JSON and decodes the JSON response body.
func doJSON(t *testing.T, method, url string, payload interface{}) (int, map[string]interface{}) {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, url, err)
	}
	defer resp.Body.Close()

	var out map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode %s %s response: %v", method, url, err)
	}
	return resp.StatusCode, out
}

// createQuestion adds a uniquely worded question and returns its id and text.
func createQuestion(t *testing.T, prefix string, category int) (int, string) {
	t.Helper()

	text := fmt.Sprintf("%s %d?", prefix, time.Now().UnixNano())
	status, out := doJSON(t, http.MethodPost, baseURL()+"/questions", map[string]interface{}{
		"question":   text,
		"answer":     "integration",
		"category":   category,
		"difficulty": 2,
	})
	if status != http.StatusOK {
		t.Fatalf("create question: expected 200, got %d: %v", status, out)
	}
	id, ok := out["created"].(float64)
	if !ok {
		t.Fatalf("create question: missing created id: %v", out)
	}
	return int(id), text
}

func deleteQuestion(t *testing.T, id int) {
	t.Helper()
	status, out := doJSON(t, http.MethodDelete, fmt.Sprintf("%s/questions/%d", baseURL(), id), nil)
	if status != http.StatusOK {
		t.Fatalf("delete question %d: expected 200, got %d: %v", id, status, out)
	}
}
