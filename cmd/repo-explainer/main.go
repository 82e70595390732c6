package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"repo-explainer/internal/analyze"
	"repo-explainer/internal/compose"
	"repo-explainer/internal/config"
	"repo-explainer/internal/gemini"
	"repo-explainer/internal/music"
	"repo-explainer/internal/narration"
	"repo-explainer/internal/pipeline"
	"repo-explainer/internal/repofetch"
	"repo-explainer/internal/scenes"
	"repo-explainer/internal/script"
	"repo-explainer/internal/types"
)

var (
	outputPath string
	preview    bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:          "repo-explainer <repository>",
	Short:        "Generate a narrated explainer video from a source repository",
	Long:         "repo-explainer inspects a repository, writes a 5-scene script with Gemini,\nrenders the scenes with VEO, narrates them with ElevenLabs, and composes\none 40-second explainer video.",
	Args:         cobra.ExactArgs(1),
	RunE:         run,
	SilenceUsage: true,
}

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove all cached run artifacts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if err := os.RemoveAll(cfg.Paths.CacheDir); err != nil {
			return err
		}
		log.Printf("🧹 Removed %s", cfg.Paths.CacheDir)
		return nil
	},
}

func main() {
	// .env is local-dev convenience; CI supplies real env vars
	_ = godotenv.Load()
	log.SetFlags(0)

	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output video path (default: explainer_TIMESTAMP.mp4)")
	rootCmd.Flags().BoolVarP(&preview, "preview", "p", false, "generate and print the script without creating video (no video/speech cost)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "config file path")
	rootCmd.AddCommand(cleanCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("❌ %v", err)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	creds, err := config.LoadCredentials(preview)
	if err != nil {
		return err
	}

	if outputPath == "" {
		outputPath = fmt.Sprintf("explainer_%s.mp4", time.Now().Format("20060102_150405"))
	}

	runID := strings.Split(uuid.NewString(), "-")[0]
	runDir := filepath.Join(cfg.Paths.CacheDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return fmt.Errorf("create run dir: %w", err)
	}

	log.Println("🎬 Repo Explainer Video Generator")
	log.Printf("📁 Repository: %s", args[0])
	log.Printf("💾 Output: %s", outputPath)
	log.Printf("🎥 Quality: %s | Model: %s | Run: %s", cfg.Video.Resolution, cfg.VeoModel(), runID)

	ctx := context.Background()

	repoPath, err := repofetch.Prepare(ctx, args[0], filepath.Join(runDir, "repo_clone"))
	if err != nil {
		return err
	}

	textClient := gemini.NewClient(creds.GeminiAPIKey)
	analyzer := analyze.New(textClient, cfg.Gemini.TextModel)
	scripter := script.New(textClient, cfg.Gemini.TextModel)

	if preview {
		// the video/speech/music/compose stages are never constructed in
		// preview mode; Preview does not reach them
		p := pipeline.New(runID, runDir, analyzer, scripter, nil, nil, nil, nil)
		return runPreview(ctx, p, repoPath)
	}

	generator := scenes.NewGenerator(textClient, cfg, runDir)
	chain := scenes.NewChain(generator)
	narrator := narration.New(narration.NewElevenLabsClient(creds.ElevenLabsAPIKey), cfg.Narration.Voice, cfg.Narration.Model)
	musicProvider := music.New(cfg.Music.TrackPath)
	composer := compose.New(cfg.Video.FPS, cfg.Video.Resolution, runDir)

	p := pipeline.New(runID, runDir, analyzer, scripter, chain, narrator, musicProvider, composer)
	out, err := p.Generate(ctx, repoPath, outputPath)
	if err != nil {
		return err
	}

	log.Printf("\n🎉 Success! Your explainer video is ready:\n   %s", out)
	return nil
}

// runPreview runs the pipeline through script composition only and prints
// the result.
func runPreview(ctx context.Context, p *pipeline.Pipeline, repoPath string) error {
	log.Println("\n🎭 PREVIEW MODE - Script generation only (no video)")

	videoScript, err := p.Preview(ctx, repoPath)
	if err != nil {
		return err
	}

	printScript(videoScript)
	log.Println("\n✅ Preview complete! To generate the actual video, run without --preview")
	return nil
}

func printScript(s *types.VideoScript) {
	rule := strings.Repeat("=", 80)
	log.Printf("\n%s\n📋 GENERATED SCRIPT PREVIEW\n%s", rule, rule)
	log.Printf("\n🎬 Video Title: %s", s.VideoTitle)
	log.Printf("🎨 Style: %s", s.OverallStyle)

	for _, sc := range s.Scenes {
		log.Printf("\n%s", strings.Repeat("─", 80))
		log.Printf("Scene %d: %s (%ds)", sc.Number, sc.Title, sc.Duration)
		log.Printf("\n🎥 Visual Prompt:\n   %s", sc.VisualPrompt)
		log.Printf("\n🎙️ Voiceover:\n   %q", sc.VoiceoverText)
		cues := sc.AudioCues
		if cues == "" {
			cues = "None"
		}
		log.Printf("\n🔊 Audio Cues:\n   %s", cues)
	}
	log.Printf("\n%s", rule)
}
