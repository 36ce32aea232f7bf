package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// TextGenerator answers a single-shot prompt. No conversation state is kept
// server-side; callers re-send context as needed.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// coachPreamble keeps the assistant on work-related topics only.
const coachPreamble = `Respond as a career coach who only answers questions about work and jobs. ` +
	`If asked something unrelated, reply: "I am an assistant designed to help with work-related questions, I cannot answer that."`

var ErrNotConfigured = errors.New("text generation not configured")

// GeminiClient calls the generativelanguage generateContent endpoint.
type GeminiClient struct {
	Endpoint string
	APIKey   string
	HTTP     *http.Client
}

func NewGeminiClient(endpoint, apiKey string) *GeminiClient {
	return &GeminiClient{Endpoint: endpoint, APIKey: apiKey, HTTP: &http.Client{Timeout: 30 * time.Second}}
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	if c.APIKey == "" {
		return "", ErrNotConfigured
	}
	body := geminiRequest{Contents: []geminiContent{{Parts: []geminiPart{{Text: coachPreamble + "\n\n" + prompt}}}}}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encode prompt: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint+"?key="+c.APIKey, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("call gemini: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini returned status %d: %s", resp.StatusCode, raw)
	}
	var out geminiResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("no candidates returned")
	}
	return out.Candidates[0].Content.Parts[0].Text, nil
}
