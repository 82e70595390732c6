package narration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultElevenLabsURL = "https://api.elevenlabs.io/v1"

// ElevenLabsClient streams synthesized speech from the ElevenLabs API.
// BaseURL is overridable for tests.
type ElevenLabsClient struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

func NewElevenLabsClient(apiKey string) *ElevenLabsClient {
	return &ElevenLabsClient{
		APIKey:     apiKey,
		BaseURL:    defaultElevenLabsURL,
		HTTPClient: &http.Client{Timeout: 120 * time.Second},
	}
}

type ttsRequest struct {
	Text    string `json:"text"`
	ModelID string `json:"model_id"`
}

// Synthesize performs one text-to-speech call and returns the raw audio
// bytes.
func (c *ElevenLabsClient) Synthesize(ctx context.Context, text, voice, model string) ([]byte, error) {
	bodyBytes, err := json.Marshal(ttsRequest{Text: text, ModelID: model})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/text-to-speech/%s", c.BaseURL, voice)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, err
	}
	req.Header.Set("xi-api-key", c.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return nil, fmt.Errorf("elevenlabs HTTP %d: %s", resp.StatusCode, msg)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read audio stream: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("elevenlabs returned an empty audio stream")
	}
	return audio, nil
}
