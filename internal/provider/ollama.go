package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/WoldamlakDebasu/Cognidoc/internal/domain"
)

// OllamaEmbedder generates text embeddings through a local Ollama server.
type OllamaEmbedder struct {
	baseURL    string
	model      string
	dimension  int
	httpClient *http.Client
}

// NewOllamaEmbedder creates an embedder for the given model. The
// dimension must match the model's output (e.g. 768 for nomic-embed-text).
func NewOllamaEmbedder(baseURL, model string, dimension int) *OllamaEmbedder {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "nomic-embed-text"
	}
	return &OllamaEmbedder{
		baseURL:    baseURL,
		model:      model,
		dimension:  dimension,
		httpClient: &http.Client{Timeout: EmbedTimeout},
	}
}

// Dimension returns the configured embedding dimension.
func (e *OllamaEmbedder) Dimension() int { return e.dimension }

// Embed generates an embedding for the given text.
func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &domain.ProviderError{Provider: "embedding", Op: "embed", Err: fmt.Errorf("text cannot be empty")}
	}

	payload := map[string]any{
		"model":  e.model,
		"prompt": text,
	}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, &domain.ProviderError{Provider: "embedding", Op: "embed", Err: err}
	}

	url := fmt.Sprintf("%s/api/embeddings", e.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, &domain.ProviderError{Provider: "embedding", Op: "embed", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, &domain.ProviderError{Provider: "embedding", Op: "embed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &domain.ProviderError{
			Provider: "embedding", Op: "embed",
			Err: fmt.Errorf("ollama API error: %d - %s", resp.StatusCode, string(body)),
		}
	}

	var result struct {
		Embedding []float32 `json:"embedding"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &domain.ProviderError{Provider: "embedding", Op: "embed", Err: err}
	}
	if len(result.Embedding) == 0 {
		return nil, &domain.ProviderError{Provider: "embedding", Op: "embed", Err: fmt.Errorf("empty embedding returned")}
	}
	if len(result.Embedding) != e.dimension {
		return nil, &domain.ProviderError{
			Provider: "embedding", Op: "embed",
			Err: fmt.Errorf("model returned %d dimensions, configured for %d", len(result.Embedding), e.dimension),
		}
	}
	return result.Embedding, nil
}

// OllamaGenerator produces answers through a local Ollama server.
type OllamaGenerator struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewOllamaGenerator creates a generator for the given model.
func NewOllamaGenerator(baseURL, model string, timeout time.Duration) *OllamaGenerator {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if timeout <= 0 {
		timeout = GenerateTimeout
	}
	return &OllamaGenerator{
		baseURL:    baseURL,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// generateResponse mirrors Ollama's streaming generate payload.
type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Generate runs the prompt to completion and returns the full response.
func (g *OllamaGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	payload := map[string]any{
		"model":  g.model,
		"prompt": prompt,
		"stream": false,
		"options": map[string]any{
			"temperature": 0.1,
		},
	}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", &domain.ProviderError{Provider: "generation", Op: "generate", Err: err}
	}

	url := fmt.Sprintf("%s/api/generate", g.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return "", &domain.ProviderError{Provider: "generation", Op: "generate", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", &domain.ProviderError{Provider: "generation", Op: "generate", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", &domain.ProviderError{
			Provider: "generation", Op: "generate",
			Err: fmt.Errorf("ollama API error: %d - %s", resp.StatusCode, string(body)),
		}
	}

	var result strings.Builder
	decoder := json.NewDecoder(resp.Body)
	for {
		var genResp generateResponse
		if err := decoder.Decode(&genResp); err != nil {
			if err == io.EOF {
				break
			}
			return "", &domain.ProviderError{Provider: "generation", Op: "generate", Err: err}
		}
		result.WriteString(genResp.Response)
		if genResp.Done {
			break
		}
	}
	return strings.TrimSpace(result.String()), nil
}
