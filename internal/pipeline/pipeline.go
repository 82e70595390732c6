// Package pipeline sequences the full run: digest → analysis → script →
// clip chain ∥ narration ∥ music → composition. It decides which failures
// abort the run and which degrade it.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"repo-explainer/internal/digest"
	"repo-explainer/internal/types"
)

// The stage capabilities, satisfied by the concrete components and stubbed
// in tests.
type (
	Analyzer interface {
		Run(ctx context.Context, d *digest.Digest) (*types.ProjectUnderstanding, error)
	}
	ScriptComposer interface {
		Run(ctx context.Context, analysis *types.ProjectUnderstanding) (*types.VideoScript, error)
	}
	ClipChain interface {
		Run(ctx context.Context, s *types.VideoScript) ([]string, []types.ClipResult)
	}
	Narrator interface {
		Run(ctx context.Context, s *types.VideoScript, outDir string) string
	}
	MusicProvider interface {
		Run(ctx context.Context, totalSec int, outDir string) string
	}
	VideoComposer interface {
		Run(ctx context.Context, clips []string, narrationPath, musicPath, outputPath string) (string, error)
	}
)

type Pipeline struct {
	runID  string
	runDir string

	analyzer Analyzer
	scripter ScriptComposer
	chain    ClipChain
	narrator Narrator
	music    MusicProvider
	composer VideoComposer
}

func New(runID, runDir string, analyzer Analyzer, scripter ScriptComposer, chain ClipChain, narrator Narrator, music MusicProvider, composer VideoComposer) *Pipeline {
	return &Pipeline{
		runID:    runID,
		runDir:   runDir,
		analyzer: analyzer,
		scripter: scripter,
		chain:    chain,
		narrator: narrator,
		music:    music,
		composer: composer,
	}
}

// Generate runs the whole pipeline against an already-resolved repository
// path. The run state is re-saved after every stage so a failed run still
// records how far it got and how many scenes succeeded.
func (p *Pipeline) Generate(ctx context.Context, repoPath, outputPath string) (string, error) {
	state := &types.RunState{
		RunID:      p.runID,
		Repository: repoPath,
		StartedAt:  time.Now().UTC().Format(time.RFC3339),
	}
	defer func() {
		state.CompletedAt = time.Now().UTC().Format(time.RFC3339)
		p.saveState(state)
	}()

	log.Println("\n━━━ STAGE 1: Repository Digest ━━━")
	d, err := digest.Build(repoPath)
	if err != nil {
		state.Error = fmt.Sprintf("digest: %v", err)
		return "", fmt.Errorf("build digest: %w", err)
	}
	state.Digest = &types.DigestSummary{
		ReadmeFound: d.Readme != "",
		Manifests:   len(d.Manifests),
		Docs:        len(d.Docs),
		Sources:     len(d.Sources),
	}
	p.saveState(state)

	log.Println("\n━━━ STAGE 2: Project Analysis ━━━")
	analysis, err := p.analyzer.Run(ctx, d)
	if err != nil {
		state.Error = fmt.Sprintf("analysis: %v", err)
		return "", err
	}
	state.Analysis = analysis
	p.saveState(state)

	log.Println("\n━━━ STAGE 3: Script Composition ━━━")
	videoScript, err := p.scripter.Run(ctx, analysis)
	if err != nil {
		state.Error = fmt.Sprintf("script: %v", err)
		return "", err
	}
	state.Script = videoScript
	p.saveState(state)

	// Narration and music have no data dependency on the clip chain, so
	// they run alongside it. Both absorb their own failures (absence);
	// only the chain's outcome gates the run.
	log.Println("\n━━━ STAGE 4: Clip Chain + Narration + Music ━━━")
	var (
		clips         []string
		clipResults   []types.ClipResult
		narrationPath string
		musicPath     string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		clips, clipResults = p.chain.Run(gctx, videoScript)
		return nil
	})
	g.Go(func() error {
		narrationPath = p.narrator.Run(gctx, videoScript, p.runDir)
		return nil
	})
	g.Go(func() error {
		musicPath = p.music.Run(gctx, videoScript.TotalSeconds(), p.runDir)
		return nil
	})
	if err := g.Wait(); err != nil {
		state.Error = err.Error()
		return "", err
	}
	state.Clips = clipResults
	state.NarrationFile = narrationPath
	state.MusicFile = musicPath
	p.saveState(state)

	succeeded := len(clips)
	if succeeded == 0 {
		state.Error = "no video clips could be generated"
		return "", fmt.Errorf("failed to generate any video clips (0/%d scenes succeeded)", len(videoScript.Scenes))
	}
	if succeeded < len(videoScript.Scenes) {
		log.Printf("⚠️ %d/%d scenes succeeded — composing a shorter video", succeeded, len(videoScript.Scenes))
	}

	log.Println("\n━━━ STAGE 5: Composition ━━━")
	out, err := p.composer.Run(ctx, clips, narrationPath, musicPath, outputPath)
	if err != nil {
		state.Error = fmt.Sprintf("composition (%d/%d scenes succeeded): %v", succeeded, len(videoScript.Scenes), err)
		return "", err
	}
	state.VideoFile = out
	return out, nil
}

// Preview runs the text-only front of the pipeline: digest, analysis, and
// script composition. The clip, narration, music, and composition stages are
// never touched, so a preview costs no video or speech API calls.
func (p *Pipeline) Preview(ctx context.Context, repoPath string) (*types.VideoScript, error) {
	log.Println("\n━━━ STAGE 1: Repository Digest ━━━")
	d, err := digest.Build(repoPath)
	if err != nil {
		return nil, fmt.Errorf("build digest: %w", err)
	}

	log.Println("\n━━━ STAGE 2: Project Analysis ━━━")
	analysis, err := p.analyzer.Run(ctx, d)
	if err != nil {
		return nil, err
	}

	log.Println("\n━━━ STAGE 3: Script Composition ━━━")
	return p.scripter.Run(ctx, analysis)
}

func (p *Pipeline) saveState(state *types.RunState) {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		log.Printf("Warning: could not marshal run state: %v", err)
		return
	}
	path := filepath.Join(p.runDir, "run_state.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		log.Printf("Warning: could not save %s: %v", path, err)
	}
}
