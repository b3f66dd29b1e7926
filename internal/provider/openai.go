package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/WoldamlakDebasu/Cognidoc/internal/domain"
)

// OpenAIConfig configures the OpenAI-compatible clients. APIKey comes
// from the environment, never from the config file.
type OpenAIConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// OpenAIEmbedder generates embeddings through any OpenAI-compatible
// /embeddings endpoint.
type OpenAIEmbedder struct {
	cfg        OpenAIConfig
	dimension  int
	httpClient *http.Client
}

// NewOpenAIEmbedder creates an embedder for the given model and
// dimension (e.g. 1536 for text-embedding-3-small).
func NewOpenAIEmbedder(cfg OpenAIConfig, dimension int) *OpenAIEmbedder {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "text-embedding-3-small"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = EmbedTimeout
	}
	return &OpenAIEmbedder{
		cfg:        cfg,
		dimension:  dimension,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Dimension returns the configured embedding dimension.
func (e *OpenAIEmbedder) Dimension() int { return e.dimension }

// Embed returns an embedding vector for the given text.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	body := map[string]any{
		"input": text,
		"model": e.cfg.Model,
	}
	var out struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := e.post(ctx, "/embeddings", body, &out); err != nil {
		return nil, &domain.ProviderError{Provider: "embedding", Op: "embed", Err: err}
	}
	if len(out.Data) == 0 || len(out.Data[0].Embedding) == 0 {
		return nil, &domain.ProviderError{Provider: "embedding", Op: "embed", Err: fmt.Errorf("no embedding returned")}
	}
	vec := out.Data[0].Embedding
	if len(vec) != e.dimension {
		return nil, &domain.ProviderError{
			Provider: "embedding", Op: "embed",
			Err: fmt.Errorf("model returned %d dimensions, configured for %d", len(vec), e.dimension),
		}
	}
	return vec, nil
}

func (e *OpenAIEmbedder) post(ctx context.Context, path string, body, out any) error {
	return postJSON(ctx, e.httpClient, e.cfg.BaseURL+path, e.cfg.APIKey, body, out)
}

// OpenAIGenerator produces answers through any OpenAI-compatible
// /chat/completions endpoint.
type OpenAIGenerator struct {
	cfg        OpenAIConfig
	httpClient *http.Client
}

// NewOpenAIGenerator creates a chat-completion backed generator.
func NewOpenAIGenerator(cfg OpenAIConfig) *OpenAIGenerator {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = GenerateTimeout
	}
	return &OpenAIGenerator{cfg: cfg, httpClient: &http.Client{Timeout: cfg.Timeout}}
}

// Generate runs the prompt through the chat endpoint and returns the
// first choice.
func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	body := map[string]any{
		"model": g.cfg.Model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"max_tokens":  500,
		"temperature": 0.1,
	}
	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := postJSON(ctx, g.httpClient, g.cfg.BaseURL+"/chat/completions", g.cfg.APIKey, body, &out); err != nil {
		return "", &domain.ProviderError{Provider: "generation", Op: "generate", Err: err}
	}
	if len(out.Choices) == 0 {
		return "", &domain.ProviderError{Provider: "generation", Op: "generate", Err: fmt.Errorf("no response from model")}
	}
	return out.Choices[0].Message.Content, nil
}

// postJSON sends a JSON body and decodes a JSON response, with a Bearer
// token when a key is set.
func postJSON(ctx context.Context, client *http.Client, url, apiKey string, body, out any) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API error: %d - %s", resp.StatusCode, string(payload))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
