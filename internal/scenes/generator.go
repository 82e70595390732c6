// Package scenes drives per-scene VEO clip generation and the sequential
// clip chain that feeds each scene the previous scene's clip as a seed.
package scenes

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"repo-explainer/internal/config"
	"repo-explainer/internal/gemini"
	"repo-explainer/internal/script"
	"repo-explainer/internal/types"
)

// VideoClient is the asynchronous video-generation capability: a
// non-blocking submit plus a poll-by-name refresh.
type VideoClient interface {
	GenerateVideos(ctx context.Context, model, prompt string, seed []byte, cfg gemini.VideoConfig) (*gemini.Operation, error)
	GetOperation(ctx context.Context, name string) (*gemini.Operation, error)
}

// Generator renders one scene at a time. Expected failure modes (failed
// operation, empty payload, timeout) come back as ordinary errors for the
// chain to skip; it never panics.
type Generator struct {
	client       VideoClient
	model        string
	genCfg       gemini.VideoConfig
	outDir       string
	pollInterval time.Duration
	maxWait      time.Duration
}

func NewGenerator(client VideoClient, cfg *config.Config, outDir string) *Generator {
	return &Generator{
		client: client,
		model:  cfg.VeoModel(),
		genCfg: gemini.VideoConfig{
			AspectRatio:     cfg.Video.AspectRatio,
			Resolution:      cfg.Video.Resolution,
			DurationSeconds: script.SceneSeconds,
		},
		outDir:       outDir,
		pollInterval: time.Duration(cfg.Video.PollIntervalSec) * time.Second,
		maxWait:      time.Duration(cfg.Video.MaxWaitSec) * time.Second,
	}
}

// Generate submits one scene's generation, polls it to completion, and
// persists the clip. prevClip, when non-empty, is read from disk and sent
// as the seed so motion continues across the scene boundary.
func (g *Generator) Generate(ctx context.Context, scene types.Scene, prevClip string) (string, error) {
	prompt := scene.VisualPrompt
	if scene.AudioCues != "" {
		prompt += "\n\nAudio: " + scene.AudioCues
	}

	var seed []byte
	if prevClip != "" {
		data, err := os.ReadFile(prevClip)
		if err != nil {
			return "", fmt.Errorf("read previous clip: %w", err)
		}
		seed = data
		log.Printf("[scenes]    Using scene extension from previous clip (%d bytes)", len(seed))
	}

	op, err := g.client.GenerateVideos(ctx, g.model, prompt, seed, g.genCfg)
	if err != nil {
		return "", fmt.Errorf("submit scene %d: %w", scene.Number, err)
	}

	log.Printf("[scenes]    ⏳ Waiting for clip generation (this may take 1-3 minutes)...")
	op, err = g.waitForOperation(ctx, op)
	if err != nil {
		return "", fmt.Errorf("scene %d: %w", scene.Number, err)
	}

	// Exactly one terminal read of the operation's result.
	if op.Error != nil {
		return "", fmt.Errorf("scene %d generation failed: %s", scene.Number, op.Error.Message)
	}
	video := op.VideoBytes()
	if len(video) == 0 {
		return "", fmt.Errorf("scene %d finished without a video payload", scene.Number)
	}

	clipPath := filepath.Join(g.outDir, fmt.Sprintf("scene_%d.mp4", scene.Number))
	if err := os.WriteFile(clipPath, video, 0644); err != nil {
		return "", fmt.Errorf("save scene %d clip: %w", scene.Number, err)
	}
	return clipPath, nil
}

// waitForOperation polls at a fixed interval until the operation is done,
// bounded by maxWait and by context cancellation. Progress is logged as it
// is reported.
func (g *Generator) waitForOperation(ctx context.Context, op *gemini.Operation) (*gemini.Operation, error) {
	deadline := time.Now().Add(g.maxWait)
	for !op.Done {
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("generation timed out after %s", g.maxWait)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(g.pollInterval):
		}

		refreshed, err := g.client.GetOperation(ctx, op.Name)
		if err != nil {
			return nil, fmt.Errorf("poll operation %s: %w", op.Name, err)
		}
		op = refreshed
		if !op.Done && op.Metadata.ProgressPercentage > 0 {
			log.Printf("[scenes]    Progress: %d%%", op.Metadata.ProgressPercentage)
		}
	}
	return op, nil
}
