package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

const preamble = `Assistant for the AirDarwin autopilot.
Provides flight safety and technical support.
Gives short, clear answers.

Question: `

// HTTPBackend talks to an Ollama compatible /api/generate endpoint.
type HTTPBackend struct {
	Endpoint string
	Model    string
	Client   *http.Client
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

// Generate implements Backend.
func (b *HTTPBackend) Generate(ctx context.Context, question string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:  b.Model,
		Prompt: preamble + question + "\nAnswer:",
	})
	if err != nil {
		return "", err
	}
	url := strings.TrimRight(b.Endpoint, "/") + "/api/generate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	client := b.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("generate: %s: %s", resp.Status, out.Error)
	}
	if _, after, ok := strings.Cut(out.Response, "Answer:"); ok {
		return after, nil
	}
	return out.Response, nil
}
