package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"
)

func TestComplete(t *testing.T) {
	// 模拟 API 服务器
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("Expected POST request, got %s", r.Method)
		}
		if r.Header.Get("Authorization") != "Bearer test-token" {
			t.Errorf("Expected Bearer test-token, got %s", r.Header.Get("Authorization"))
		}

		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		if req.Model != "test-model" {
			t.Errorf("Expected test-model, got %s", req.Model)
		}
		if len(req.Messages) != 1 || !strings.Contains(req.Messages[0].Content, "测试内容") {
			t.Errorf("Prompt not forwarded: %+v", req.Messages)
		}

		resp := ChatResponse{
			Choices: []struct {
				Message struct {
					Content string `json:"content"`
				} `json:"message"`
			}{
				{
					Message: struct {
						Content string `json:"content"`
					}{Content: `{"spam": 0.1, "toxic": 0.0, "inappropriate": 0.0, "overall": 0.1, "label": "clean"}`},
				},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	// 设置环境变量
	os.Setenv("LLM_BASE_URL", server.URL)
	os.Setenv("LLM_TOKEN", "test-token")
	os.Setenv("LLM_MODEL", "test-model")

	// 获取服务（重置单例以便重新加载配置）
	llmService = nil
	s := GetLLMService()

	if !s.Configured() {
		t.Fatal("service should be configured")
	}

	raw, err := s.Complete(context.Background(), "请评估：测试内容", 300, 0.1)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if !strings.Contains(raw, `"label": "clean"`) {
		t.Errorf("unexpected response: %s", raw)
	}
}

func TestCompleteNotConfigured(t *testing.T) {
	os.Unsetenv("LLM_BASE_URL")
	os.Unsetenv("LLM_MODEL")
	llmService = nil
	s := GetLLMService()

	if s.Configured() {
		t.Fatal("service should not be configured")
	}
	if _, err := s.Complete(context.Background(), "x", 10, 0); err == nil {
		t.Error("expected error when not configured")
	}
}

func TestCompleteContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer server.Close()

	os.Setenv("LLM_BASE_URL", server.URL)
	os.Setenv("LLM_TOKEN", "test-token")
	os.Setenv("LLM_MODEL", "test-model")
	llmService = nil
	s := GetLLMService()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := s.Complete(ctx, "x", 10, 0); err == nil {
		t.Error("expected error when context deadline exceeded")
	}
}

func TestCompleteUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	os.Setenv("LLM_BASE_URL", server.URL)
	os.Setenv("LLM_TOKEN", "test-token")
	os.Setenv("LLM_MODEL", "test-model")
	llmService = nil
	s := GetLLMService()

	_, err := s.Complete(context.Background(), "x", 10, 0)
	if err == nil || !strings.Contains(err.Error(), "429") {
		t.Errorf("expected 429 error, got %v", err)
	}
}
