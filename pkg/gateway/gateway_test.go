package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestComplete_ReturnsTrimmedContent(t *testing.T) {
	var gotPath string
	var gotBody chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		fmt.Fprint(w, `{"choices": [{"message": {"role": "assistant", "content": "  hello there\n"}}]}`)
	}))
	defer server.Close()

	client := NewClient(server.URL+"/", "mistral")
	got, err := client.Complete(context.Background(), "say hello")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != "hello there" {
		t.Errorf("Complete() = %q, want %q", got, "hello there")
	}
	if gotPath != "/chat/completions" {
		t.Errorf("request path = %q, want /chat/completions", gotPath)
	}
	if gotBody.Model != "mistral" {
		t.Errorf("request model = %q, want mistral", gotBody.Model)
	}
	if len(gotBody.Messages) != 1 || gotBody.Messages[0].Role != "user" || gotBody.Messages[0].Content != "say hello" {
		t.Errorf("request messages = %+v", gotBody.Messages)
	}
	if gotBody.Stream {
		t.Error("request stream = true, want false")
	}
}

func TestComplete_GatewayErrorPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error": {"message": "model not found"}}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "missing-model")
	_, err := client.Complete(context.Background(), "prompt")
	if err == nil {
		t.Fatal("Complete() error = nil, want gateway error")
	}
	if !strings.Contains(err.Error(), "model not found") {
		t.Errorf("error = %q, want the gateway's message", err)
	}
}

func TestComplete_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices": []}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "mistral")
	_, err := client.Complete(context.Background(), "prompt")
	if err == nil {
		t.Fatal("Complete() error = nil, want no-choices error")
	}
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestIsTimeout(t *testing.T) {
	if !IsTimeout(context.DeadlineExceeded) {
		t.Error("IsTimeout(context.DeadlineExceeded) = false")
	}
	if !IsTimeout(fmt.Errorf("call failed: %w", context.DeadlineExceeded)) {
		t.Error("IsTimeout(wrapped deadline) = false")
	}
	if !IsTimeout(fmt.Errorf("do: %w", timeoutErr{})) {
		t.Error("IsTimeout(net timeout) = false")
	}
	if IsTimeout(errors.New("connection refused")) {
		t.Error("IsTimeout(plain error) = true")
	}
	if IsTimeout(context.Canceled) {
		t.Error("IsTimeout(context.Canceled) = true")
	}
}
