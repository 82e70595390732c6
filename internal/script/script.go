// Package script turns a project understanding into the fixed-shape
// 5-scene video script everything downstream depends on.
package script

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"repo-explainer/internal/jsonx"
	"repo-explainer/internal/types"
)

const (
	SceneCount   = 5
	SceneSeconds = 8
)

// TextGenerator is the text-generation capability the composer needs.
type TextGenerator interface {
	GenerateText(ctx context.Context, model, prompt string) (string, error)
}

type Composer struct {
	gen   TextGenerator
	model string
}

func New(gen TextGenerator, model string) *Composer {
	return &Composer{gen: gen, model: model}
}

// Run generates the script. There is no meaningful default script, so a
// malformed response is retried once and then fatal for the run.
func (c *Composer) Run(ctx context.Context, analysis *types.ProjectUnderstanding) (*types.VideoScript, error) {
	log.Println("[script] 📝 Generating video script...")

	prompt := buildPrompt(analysis)

	var lastErr error
	for attempt := 1; attempt <= 2; attempt++ {
		text, err := c.gen.GenerateText(ctx, c.model, prompt)
		if err != nil {
			lastErr = err
		} else {
			s, err := Parse(text)
			if err == nil {
				log.Printf("[script] ✅ Generated %d-scene script: %s", len(s.Scenes), s.VideoTitle)
				for _, sc := range s.Scenes {
					log.Printf("[script]    Scene %d: %s", sc.Number, sc.Title)
				}
				return s, nil
			}
			lastErr = err
		}
		if attempt < 2 {
			log.Printf("[script] ⚠️ Attempt %d failed: %v — retrying once", attempt, lastErr)
		}
	}
	return nil, fmt.Errorf("compose script: %w", lastErr)
}

// Parse validates and normalizes raw model output: exactly SceneCount
// scenes, numbers matching 1-based position, every duration SceneSeconds.
func Parse(text string) (*types.VideoScript, error) {
	var s types.VideoScript
	if err := jsonx.Unmarshal(text, &s); err != nil {
		return nil, err
	}
	if len(s.Scenes) != SceneCount {
		return nil, fmt.Errorf("expected %d scenes, got %d", SceneCount, len(s.Scenes))
	}
	for i := range s.Scenes {
		if s.Scenes[i].VisualPrompt == "" {
			return nil, fmt.Errorf("scene %d has no visual_prompt", i+1)
		}
		if s.Scenes[i].VoiceoverText == "" {
			return nil, fmt.Errorf("scene %d has no voiceover_text", i+1)
		}
		s.Scenes[i].Number = i + 1
		s.Scenes[i].Duration = SceneSeconds
	}
	return &s, nil
}

func buildPrompt(analysis *types.ProjectUnderstanding) string {
	analysisJSON, err := json.MarshalIndent(analysis, "", "  ")
	if err != nil {
		analysisJSON = []byte("{}")
	}

	var sb strings.Builder
	sb.WriteString("Create a compelling 40-second explainer video script for this software project.\n\n")
	sb.WriteString("Project Analysis:\n")
	sb.Write(analysisJSON)
	sb.WriteString(`

Create a 5-scene script (8 seconds each) with cinematic visual descriptions:

Scene 1 (HOOK - 8 seconds):
- Visually striking intro
- Show the project name and tagline
- Modern tech aesthetic with gradients and animations

Scene 2 (PROBLEM - 8 seconds):
- Visualize the problem this solves
- Use metaphors and relatable scenarios
- Dynamic infographic style

Scene 3 (SOLUTION - 8 seconds):
- Show how it works (architecture visualization)
- Animated diagrams showing data flow
- Clean, technical but accessible

Scene 4 (KEY FEATURES - 8 seconds):
- Highlight 2-3 standout features
- Each feature gets a visual moment
- Smooth transitions between features

Scene 5 (GET STARTED - 8 seconds):
- Quick installation/getting started visual
- Call to action
- Project logo/name with link/GitHub stars

For each scene provide:
1. Visual description (detailed video-generation prompt - include camera movements, lighting, colors, objects)
2. Voiceover narration text (natural, conversational, ~20-25 words for 8-second scenes)
3. Audio cues (ambient sounds, effects the video model should generate)

Return as JSON:
{
    "scenes": [
        {
            "number": 1,
            "title": "Scene title",
            "duration": 8,
            "visual_prompt": "Extremely detailed prompt with cinematic details...",
            "voiceover_text": "What the narrator says...",
            "audio_cues": "background sounds, effects..."
        }
    ],
    "video_title": "Project Name: Tagline",
    "overall_style": "modern tech + dynamic infographics"
}

Make the visual prompts EXTREMELY detailed for best results - include specific camera movements (dolly, pan, zoom), lighting (soft, dramatic, neon), colors (hex codes), composition, and transitions.`)

	return sb.String()
}
