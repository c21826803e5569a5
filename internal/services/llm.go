package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// LLMService 封装 OpenAI 兼容的 chat completions 接口，
// 审核流水线把它当内容安全分类器用（实现 moderation.Classifier）。
type LLMService struct {
	baseURL string
	token   string
	model   string
	client  *http.Client
}

var llmService *LLMService

// GetLLMService 获取单例服务，配置从环境变量读取
func GetLLMService() *LLMService {
	if llmService == nil {
		llmService = &LLMService{
			baseURL: os.Getenv("LLM_BASE_URL"),
			token:   os.Getenv("LLM_TOKEN"),
			model:   os.Getenv("LLM_MODEL"),
			// 超时由调用方的 ctx 控制，这里只兜底
			client: &http.Client{Timeout: 30 * time.Second},
		}
	}
	return llmService
}

// Configured 是否配置了外部 LLM 服务
func (s *LLMService) Configured() bool {
	return s.baseURL != "" && s.model != ""
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete 发起一次补全调用。ctx 取消或到期时请求随之中止。
func (s *LLMService) Complete(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	if !s.Configured() {
		return "", fmt.Errorf("llm service not configured")
	}

	reqBody := ChatRequest{
		Model:       s.model,
		Messages:    []ChatMessage{{Role: "user", Content: prompt}},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("llm api returned %d: %s", resp.StatusCode, string(body))
	}

	var chatResp ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("failed to decode llm response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("llm response has no choices")
	}

	return chatResp.Choices[0].Message.Content, nil
}
