// Package narration synthesizes the voiceover track from a video script.
package narration

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"

	"repo-explainer/internal/types"
)

// SpeechClient is the speech-synthesis capability.
type SpeechClient interface {
	Synthesize(ctx context.Context, text, voice, model string) ([]byte, error)
}

type Synthesizer struct {
	client SpeechClient
	voice  string
	model  string
}

func New(client SpeechClient, voice, model string) *Synthesizer {
	return &Synthesizer{client: client, voice: voice, model: model}
}

// FullScript joins every scene's voiceover line, in scene order, with
// single spaces into one narration take.
func FullScript(s *types.VideoScript) string {
	lines := make([]string, 0, len(s.Scenes))
	for _, sc := range s.Scenes {
		if sc.VoiceoverText != "" {
			lines = append(lines, sc.VoiceoverText)
		}
	}
	return strings.Join(lines, " ")
}

// Run synthesizes the narration and persists it to one file. Failure is
// non-fatal: it returns an empty path and composition proceeds without a
// voiceover track.
func (s *Synthesizer) Run(ctx context.Context, script *types.VideoScript, outDir string) string {
	log.Println("[narration] 🎙️ Generating voiceover...")

	full := FullScript(script)
	audio, err := s.client.Synthesize(ctx, full, s.voice, s.model)
	if err != nil {
		log.Printf("[narration] ⚠️ Voiceover synthesis failed: %v — continuing without narration", err)
		return ""
	}

	path := filepath.Join(outDir, "voiceover.mp3")
	if err := os.WriteFile(path, audio, 0644); err != nil {
		log.Printf("[narration] ⚠️ Could not save voiceover: %v — continuing without narration", err)
		return ""
	}

	log.Printf("[narration] ✅ Voiceover generated: %s", path)
	return path
}
