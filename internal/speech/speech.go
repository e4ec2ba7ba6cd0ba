// Package speech provides the text-to-speech collaborator client.
// Voice output is cosmetic; session state and scoring never depend on it.
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.openai.com"

// Synthesizer turns plain text into playable audio bytes.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// OpenAIClient talks to an OpenAI-compatible audio/speech API.
type OpenAIClient struct {
	baseURL    string
	apiKey     string
	model      string
	voice      string
	httpClient *http.Client
}

// NewOpenAIClient creates a TTS client. Empty baseURL targets the hosted
// OpenAI API; empty model/voice use tts-1 with the alloy voice.
func NewOpenAIClient(baseURL, apiKey, model, voice string) *OpenAIClient {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if model == "" {
		model = "tts-1"
	}
	if voice == "" {
		voice = "alloy"
	}
	return &OpenAIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		voice:   voice,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type speechRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
	Voice string `json:"voice"`
}

// Synthesize renders text as audio bytes (mp3).
func (c *OpenAIClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	body, err := json.Marshal(speechRequest{Model: c.model, Input: text, Voice: c.voice})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/audio/speech", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("API error %d: %s", resp.StatusCode, string(raw))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}
	return audio, nil
}
