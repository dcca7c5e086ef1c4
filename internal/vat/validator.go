package vat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Result is the structured verdict returned by the validation service.
type Result struct {
	IsValid           bool   `json:"isValid"`
	ValidationDetails string `json:"validationDetails"`
}

// Validator is the single-call capability the handlers depend on; tests swap
// in a deterministic implementation.
type Validator interface {
	Validate(ctx context.Context, vatNumber string) (*Result, error)
}

// ErrEmptyVATNumber is returned before any request leaves the process.
var ErrEmptyVATNumber = errors.New("vat number is empty")

const systemPrompt = `You are an AI assistant specializing in validating Value Added Tax (VAT) identification numbers. You will receive a VAT number as input and determine if it is valid based on general VAT validation rules and patterns. Consider common VAT formats and structures.

You will make a determination as to whether the VAT number is valid or not, and set the isValid output field appropriately. Provide details about the validation in the validationDetails output field, including any errors or inconsistencies found.

Respond with a single JSON object of the form {"isValid": boolean, "validationDetails": string} and nothing else.`

// AIValidator asks an OpenAI-compatible chat-completions endpoint for a
// structured verdict. One best-effort round trip per call: no caching, no
// retry, no rate limiting.
type AIValidator struct {
	url        string
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewAIValidator(url, apiKey, model string) *AIValidator {
	return &AIValidator{
		url:    url,
		apiKey: apiKey,
		model:  model,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat *struct {
		Type string `json:"type"`
	} `json:"response_format,omitempty"`
	Temperature float64 `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (v *AIValidator) Validate(ctx context.Context, vatNumber string) (*Result, error) {
	if strings.TrimSpace(vatNumber) == "" {
		return nil, ErrEmptyVATNumber
	}

	payload := chatRequest{
		Model: v.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: "VAT Number: " + vatNumber},
		},
		ResponseFormat: &struct {
			Type string `json:"type"`
		}{Type: "json_object"},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("vat: failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("vat: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if v.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+v.apiKey)
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vat: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("vat: failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("vat: service returned status %d", resp.StatusCode)
	}

	var chat chatResponse
	if err := json.Unmarshal(respBody, &chat); err != nil {
		return nil, fmt.Errorf("vat: failed to parse response: %w", err)
	}
	if len(chat.Choices) == 0 {
		return nil, errors.New("vat: response contained no choices")
	}

	var result Result
	if err := json.Unmarshal([]byte(chat.Choices[0].Message.Content), &result); err != nil {
		return nil, fmt.Errorf("vat: malformed verdict: %w", err)
	}
	return &result, nil
}
