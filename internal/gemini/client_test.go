package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(srv *httptest.Server) *Client {
	c := NewClient("test-key")
	c.BaseURL = srv.URL
	return c
}

func TestGenerateText(t *testing.T) {
	var gotPath, gotKey string
	var gotReq generateContentRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		fmt.Fprint(w, `{"candidates":[{"content":{"parts":[{"text":"Hello, "},{"text":"world"}]}}]}`)
	}))
	defer srv.Close()

	text, err := newTestClient(srv).GenerateText(context.Background(), "gemini-2.0-flash-exp", "describe the repo")
	require.NoError(t, err)
	assert.Equal(t, "Hello, world", text, "parts of the first candidate are concatenated")
	assert.Equal(t, "/models/gemini-2.0-flash-exp:generateContent", gotPath)
	assert.Equal(t, "test-key", gotKey)
	require.Len(t, gotReq.Contents, 1)
	assert.Equal(t, "describe the repo", gotReq.Contents[0].Parts[0].Text)
}

func TestGenerateTextAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error":{"code":429,"message":"quota exceeded"}}`)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).GenerateText(context.Background(), "m", "p")
	assert.ErrorContains(t, err, "gemini error 429: quota exceeded")
}

func TestGenerateTextHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).GenerateText(context.Background(), "m", "p")
	assert.ErrorContains(t, err, "gemini HTTP 500")
}

func TestGenerateTextNoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"candidates":[]}`)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).GenerateText(context.Background(), "m", "p")
	assert.ErrorContains(t, err, "no candidates")
}

func TestGenerateVideos(t *testing.T) {
	var gotPath string
	var gotReq generateVideosRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		fmt.Fprint(w, `{"name":"operations/abc123","done":false}`)
	}))
	defer srv.Close()

	cfg := VideoConfig{AspectRatio: "16:9", Resolution: "1080p", DurationSeconds: 8}
	op, err := newTestClient(srv).GenerateVideos(context.Background(), "veo-3.1-fast-generate-preview", "a calm ocean", nil, cfg)
	require.NoError(t, err)
	assert.Equal(t, "operations/abc123", op.Name)
	assert.False(t, op.Done)

	assert.Equal(t, "/models/veo-3.1-fast-generate-preview:predictLongRunning", gotPath)
	require.Len(t, gotReq.Instances, 1)
	assert.Equal(t, "a calm ocean", gotReq.Instances[0].Prompt)
	assert.Nil(t, gotReq.Instances[0].Video, "unseeded request must not carry a video block")
	assert.Equal(t, cfg, gotReq.Parameters)
}

func TestGenerateVideosWithSeed(t *testing.T) {
	var gotReq generateVideosRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		fmt.Fprint(w, `{"name":"operations/abc123"}`)
	}))
	defer srv.Close()

	seed := []byte("previous-clip-bytes")
	_, err := newTestClient(srv).GenerateVideos(context.Background(), "m", "p", seed, VideoConfig{})
	require.NoError(t, err)

	require.NotNil(t, gotReq.Instances[0].Video)
	assert.Equal(t, seed, gotReq.Instances[0].Video.VideoBytes)
	assert.Equal(t, "video/mp4", gotReq.Instances[0].Video.MimeType)
}

func TestGenerateVideosMissingOperationName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).GenerateVideos(context.Background(), "m", "p", nil, VideoConfig{})
	assert.ErrorContains(t, err, "no operation name")
}

func TestGetOperation(t *testing.T) {
	video := base64.StdEncoding.EncodeToString([]byte("clip-bytes"))
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		fmt.Fprintf(w, `{"name":"operations/abc123","done":true,"response":{"generatedVideos":[{"video":{"videoBytes":%q}}]}}`, video)
	}))
	defer srv.Close()

	op, err := newTestClient(srv).GetOperation(context.Background(), "operations/abc123")
	require.NoError(t, err)
	assert.Equal(t, "/operations/abc123", gotPath)
	assert.True(t, op.Done)
	assert.Equal(t, []byte("clip-bytes"), op.VideoBytes())
}

func TestGetOperationProgress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"name":"operations/abc123","done":false,"metadata":{"progressPercentage":42}}`)
	}))
	defer srv.Close()

	op, err := newTestClient(srv).GetOperation(context.Background(), "operations/abc123")
	require.NoError(t, err)
	assert.False(t, op.Done)
	assert.Equal(t, 42, op.Metadata.ProgressPercentage)
}

func TestVideoBytesAbsent(t *testing.T) {
	op := &Operation{Done: true}
	assert.Nil(t, op.VideoBytes())

	var empty Operation
	require.NoError(t, json.Unmarshal([]byte(`{"done":true,"response":{"generatedVideos":[]}}`), &empty))
	assert.Nil(t, empty.VideoBytes())
}
