package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Twahaaa/JOURNY/internal/apperr"
	"github.com/Twahaaa/JOURNY/internal/config"
	"github.com/Twahaaa/JOURNY/internal/models"
)

// Analyzer produces an analysis report for raw journal text.
type Analyzer interface {
	Analyze(ctx context.Context, entryText string) (models.Analysis, error)
}

const analysisSystemPrompt = "You are a journaling analysis assistant. " +
	"Always respond ONLY in a valid JSON object with the keys: summary, mood, habits_and_patterns, concerns, and suggestions."

const analysisPromptTemplate = `Analyze the following journal entry and return a JSON object with the following keys:
1. "summary": a brief summary of the entry,
2. "mood": the emotional tone of the writer,
3. "habits_and_patterns": behavioral patterns visible in the text,
4. "concerns": gentle, non-diagnostic wellbeing concerns,
5. "suggestions": 2-3 actionable suggestions.
Always respond ONLY in a valid JSON format with these exact keys.
Journal Entry: %s`

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

type completionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// CompletionClient calls an OpenAI-compatible chat-completions endpoint,
// Azure flavour: api-key header plus api-version query parameter. One
// blocking round trip per call, bounded by the client timeout; there is no
// automatic retry.
type CompletionClient struct {
	endpoint   string
	apiKey     string
	apiVersion string
	model      string
	httpClient *http.Client
}

func NewCompletionClient(cfg *config.Config) *CompletionClient {
	timeout := cfg.AnalysisTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &CompletionClient{
		endpoint:   strings.TrimRight(cfg.OpenAIEndpoint, "/"),
		apiKey:     cfg.OpenAIAPIKey,
		apiVersion: cfg.OpenAIAPIVersion,
		model:      cfg.OpenAIModel,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Analyze sends the fixed instruction prompt plus the entry text and parses
// the completion strictly as JSON. Empty or unparsable completions are hard
// failures.
func (c *CompletionClient) Analyze(ctx context.Context, entryText string) (models.Analysis, error) {
	reqBody := completionRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: analysisSystemPrompt},
			{Role: "user", Content: fmt.Sprintf(analysisPromptTemplate, entryText)},
		},
	}
	reqBody.ResponseFormat.Type = "json_object"

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, apperr.Analysis("Failed to analyze entry.", err)
	}

	url := c.endpoint + "/chat/completions"
	if c.apiVersion != "" {
		url += "?api-version=" + c.apiVersion
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, apperr.Analysis("Failed to analyze entry.", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperr.Analysis("Failed to analyze entry.", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, apperr.Analysis("Failed to analyze entry.",
			fmt.Errorf("completion endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	var chatResp completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, apperr.Analysis("Failed to analyze entry.", fmt.Errorf("decode completion response: %w", err))
	}

	if len(chatResp.Choices) == 0 || strings.TrimSpace(chatResp.Choices[0].Message.Content) == "" {
		return nil, apperr.Analysis("Failed to analyze entry.",
			fmt.Errorf("received an empty analysis from the AI model"))
	}

	var analysis models.Analysis
	if err := json.Unmarshal([]byte(chatResp.Choices[0].Message.Content), &analysis); err != nil {
		return nil, apperr.Analysis("Failed to analyze entry.", fmt.Errorf("analysis is not valid JSON: %w", err))
	}

	return analysis, nil
}
