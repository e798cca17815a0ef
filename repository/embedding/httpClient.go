package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"booklend/util/httpx"
)

const embedURL = "https://generativelanguage.googleapis.com/v1beta/models/gemini-embedding-001:embedContent"

type httpProvider struct {
	apiKey string
	client *http.Client
}

func NewHTTP(apiKey string) Provider {
	return &httpProvider{apiKey: apiKey, client: httpx.Client()}
}

func (p *httpProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	body := map[string]any{
		"model": "models/gemini-embedding-001",
		"content": map[string]any{
			"parts": []map[string]string{{"text": text}},
		},
	}
	b, _ := json.Marshal(body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, embedURL, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("embedding request failed: %s", resp.Status)
	}

	var out struct {
		Embedding struct {
			Values []float32 `json:"values"`
		} `json:"embedding"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if len(out.Embedding.Values) == 0 {
		return nil, errors.New("embedding: empty vector")
	}
	return out.Embedding.Values, nil
}
