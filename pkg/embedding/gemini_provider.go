package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const geminiModel = "text-embedding-004"

type geminiContentPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiContentPart `json:"parts"`
}

type geminiRequest struct {
	Model    string        `json:"model"`
	Content  geminiContent `json:"content"`
	TaskType string        `json:"task_type,omitempty"`
}

type geminiResponse struct {
	Embedding struct {
		Values []float32 `json:"values"`
	} `json:"embedding"`
}

type GeminiProvider struct {
	ApiKey  string
	baseURL string
	client  *http.Client
}

func NewGeminiProvider(apiKey string) *GeminiProvider {
	return &GeminiProvider{
		ApiKey:  apiKey,
		baseURL: "https://generativelanguage.googleapis.com/v1/models",
		client:  defaultHTTPClient(),
	}
}

func (p *GeminiProvider) Generate(ctx context.Context, text string) ([]float32, error) {
	geminiReqJson, err := json.Marshal(geminiRequest{
		Model:    geminiModel,
		Content:  geminiContent{Parts: []geminiContentPart{{Text: text}}},
		TaskType: "SEMANTIC_SIMILARITY",
	})
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/%s:embedContent", p.baseURL, geminiModel)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(geminiReqJson))
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-goog-api-key", p.ApiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	resByte, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("error from gemini response, code %d, body %s", res.StatusCode, string(resByte))
	}

	var resEmbedding geminiResponse
	if err := json.Unmarshal(resByte, &resEmbedding); err != nil {
		return nil, err
	}
	if len(resEmbedding.Embedding.Values) == 0 {
		return nil, fmt.Errorf("gemini returned an empty embedding")
	}

	return Normalize(resEmbedding.Embedding.Values), nil
}
