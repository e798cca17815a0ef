package emotion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"booklend/model"
	"booklend/util/httpx"
)

const classifyURL = "https://api-inference.huggingface.co/models/j-hartmann/emotion-english-distilroberta-base"

type httpProvider struct {
	token  string
	client *http.Client
}

func NewHTTP(token string) Provider {
	return &httpProvider{token: token, client: httpx.Client()}
}

func (p *httpProvider) Classify(ctx context.Context, text string) (model.EmotionScores, error) {
	var zero model.EmotionScores

	b, _ := json.Marshal(map[string]string{"inputs": text})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, classifyURL, bytes.NewReader(b))
	if err != nil {
		return zero, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.token)

	resp, err := p.client.Do(req)
	if err != nil {
		return zero, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return zero, fmt.Errorf("emotion request failed: %s", resp.Status)
	}

	// The model answers [[{"label":"joy","score":0.9}, ...]].
	var out [][]struct {
		Label string  `json:"label"`
		Score float64 `json:"score"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return zero, err
	}
	if len(out) == 0 {
		return zero, nil
	}

	var scores model.EmotionScores
	for _, item := range out[0] {
		switch item.Label {
		case "joy":
			scores.Joy = item.Score
		case "sadness":
			scores.Sadness = item.Score
		case "fear":
			scores.Fear = item.Score
		case "surprise":
			scores.Surprise = item.Score
		case "anger":
			scores.Anger = item.Score
		}
	}
	return scores, nil
}
