package scenes

import (
	"context"
	"log"

	"repo-explainer/internal/types"
)

// ClipGenerator renders a single scene clip. *Generator implements it; tests
// stub it with scripted outcomes.
type ClipGenerator interface {
	Generate(ctx context.Context, scene types.Scene, prevClip string) (string, error)
}

// Chain runs clip generation strictly in scene order. The serialization is
// inherent: scene N+1's seed bytes only exist once scene N has resolved.
type Chain struct {
	gen ClipGenerator
}

func NewChain(gen ClipGenerator) *Chain {
	return &Chain{gen: gen}
}

// Run attempts every scene, never stopping at a failure. A failed scene is
// skipped, and the next scene seeds from the most recent successful clip
// (or runs unseeded if none exists yet). The returned paths preserve scene
// order with gaps removed.
func (c *Chain) Run(ctx context.Context, s *types.VideoScript) ([]string, []types.ClipResult) {
	log.Println("[scenes] 🎬 Generating all video clips with scene extension...")

	var paths []string
	results := make([]types.ClipResult, 0, len(s.Scenes))
	prevClip := ""
	prevScene := 0

	for _, scene := range s.Scenes {
		log.Printf("[scenes] 🎥 Scene %d/%d: %s", scene.Number, len(s.Scenes), scene.Title)

		path, err := c.gen.Generate(ctx, scene, prevClip)
		if err != nil {
			log.Printf("[scenes] ⚠️ Scene %d failed: %v — continuing with remaining scenes", scene.Number, err)
			results = append(results, types.ClipResult{SceneNumber: scene.Number, Error: err.Error()})
			continue
		}

		log.Printf("[scenes] ✅ Scene %d generated: %s", scene.Number, path)
		results = append(results, types.ClipResult{
			SceneNumber: scene.Number,
			Path:        path,
			SeededFrom:  prevScene,
		})
		paths = append(paths, path)
		prevClip = path
		prevScene = scene.Number
	}

	log.Printf("[scenes] ✅ Generated %d/%d video clips", len(paths), len(s.Scenes))
	return paths, results
}
