package gemini

import (
	"context"
	"encoding/json"
	"fmt"
)

// VideoConfig is the fixed per-request generation configuration.
type VideoConfig struct {
	AspectRatio     string `json:"aspectRatio"`
	Resolution      string `json:"resolution"`
	DurationSeconds int    `json:"durationSeconds"`
}

// Operation is the client-side handle of a long-running VEO generation.
// Done transitions false→true exactly once; after that the response or
// error is read once by the caller.
type Operation struct {
	Name     string `json:"name"`
	Done     bool   `json:"done"`
	Metadata struct {
		ProgressPercentage int `json:"progressPercentage"`
	} `json:"metadata"`
	Response *videoResult `json:"response"`
	Error    *APIError    `json:"error"`
}

type videoResult struct {
	GeneratedVideos []struct {
		Video struct {
			// base64 on the wire, decoded by encoding/json
			VideoBytes []byte `json:"videoBytes"`
		} `json:"video"`
	} `json:"generatedVideos"`
}

// VideoBytes returns the rendered clip bytes, or nil when the operation
// finished without a video payload.
func (op *Operation) VideoBytes() []byte {
	if op.Response == nil || len(op.Response.GeneratedVideos) == 0 {
		return nil
	}
	return op.Response.GeneratedVideos[0].Video.VideoBytes
}

type generateVideosRequest struct {
	Instances  []videoInstance `json:"instances"`
	Parameters VideoConfig     `json:"parameters"`
}

type videoInstance struct {
	Prompt string     `json:"prompt"`
	Video  *seedVideo `json:"video,omitempty"`
}

type seedVideo struct {
	VideoBytes []byte `json:"videoBytes"`
	MimeType   string `json:"mimeType"`
}

// GenerateVideos submits one VEO generation and returns its operation
// handle without waiting. A non-nil seed carries the previous clip's bytes
// so the new clip extends its motion (scene extension).
func (c *Client) GenerateVideos(ctx context.Context, model, prompt string, seed []byte, cfg VideoConfig) (*Operation, error) {
	url := fmt.Sprintf("%s/models/%s:predictLongRunning?key=%s", c.BaseURL, model, c.APIKey)

	instance := videoInstance{Prompt: prompt}
	if len(seed) > 0 {
		instance.Video = &seedVideo{VideoBytes: seed, MimeType: "video/mp4"}
	}

	respBytes, err := c.post(ctx, url, generateVideosRequest{
		Instances:  []videoInstance{instance},
		Parameters: cfg,
	})
	if err != nil {
		return nil, err
	}

	var op Operation
	if err := json.Unmarshal(respBytes, &op); err != nil {
		return nil, fmt.Errorf("parse operation: %w", err)
	}
	if op.Name == "" {
		return nil, fmt.Errorf("submit returned no operation name")
	}
	return &op, nil
}

// GetOperation refreshes an operation handle by name.
func (c *Client) GetOperation(ctx context.Context, name string) (*Operation, error) {
	url := fmt.Sprintf("%s/%s?key=%s", c.BaseURL, name, c.APIKey)

	respBytes, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}

	var op Operation
	if err := json.Unmarshal(respBytes, &op); err != nil {
		return nil, fmt.Errorf("parse operation: %w", err)
	}
	return &op, nil
}
