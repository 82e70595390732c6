// Package analyze turns a repository digest into a structured project
// understanding via one text-generation call. Malformed model output is
// recovered locally with a fixed fallback record; it never fails the run.
package analyze

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"repo-explainer/internal/digest"
	"repo-explainer/internal/jsonx"
	"repo-explainer/internal/types"
)

// Caps on how much of the digest is embedded in the prompt.
const (
	maxReadmeChars   = 10000
	maxManifestChars = 5000
	maxPreviewChars  = 500
)

// TextGenerator is the text-generation capability the analyzer needs.
type TextGenerator interface {
	GenerateText(ctx context.Context, model, prompt string) (string, error)
}

type Analyzer struct {
	gen   TextGenerator
	model string
}

func New(gen TextGenerator, model string) *Analyzer {
	return &Analyzer{gen: gen, model: model}
}

// Run analyzes the digest. Parse failures and missing fields produce the
// fallback record; only transport-level errors surface to the caller.
func (a *Analyzer) Run(ctx context.Context, d *digest.Digest) (*types.ProjectUnderstanding, error) {
	log.Println("[analyze] 🤖 Analyzing repository content...")

	text, err := a.gen.GenerateText(ctx, a.model, buildPrompt(d))
	if err != nil {
		return nil, fmt.Errorf("analyze repository: %w", err)
	}

	var pu types.ProjectUnderstanding
	if err := jsonx.Unmarshal(text, &pu); err != nil {
		log.Printf("[analyze] ⚠️ Failed to parse analysis JSON — using fallback: %v", err)
		return Fallback(d.Name), nil
	}
	if !valid(&pu) {
		log.Println("[analyze] ⚠️ Analysis JSON missing required fields — using fallback")
		return Fallback(d.Name), nil
	}

	log.Printf("[analyze] ✅ Repository analysis complete: %s — %s", pu.Name, pu.Tagline)
	return &pu, nil
}

// Fallback is the deterministic record substituted when the model's
// analysis cannot be parsed.
func Fallback(name string) *types.ProjectUnderstanding {
	return &types.ProjectUnderstanding{
		Name:           name,
		Tagline:        "An open source project",
		Problem:        "Solving software challenges",
		Solution:       "Providing tools and libraries",
		Architecture:   "Modern software architecture",
		KeyFeatures:    []string{"Open source", "Well documented", "Active development"},
		TechStack:      []string{"Various technologies"},
		GettingStarted: "See README for installation",
		TargetAudience: "Developers",
	}
}

func valid(pu *types.ProjectUnderstanding) bool {
	return pu.Name != "" &&
		pu.Tagline != "" &&
		pu.Problem != "" &&
		pu.Solution != "" &&
		pu.Architecture != "" &&
		len(pu.KeyFeatures) > 0 &&
		len(pu.TechStack) > 0 &&
		pu.GettingStarted != "" &&
		pu.TargetAudience != ""
}

func buildPrompt(d *digest.Digest) string {
	var sb strings.Builder
	sb.WriteString("Analyze this software repository and provide a comprehensive understanding:\n\n")

	sb.WriteString("README:\n")
	sb.WriteString(clip(d.Readme, maxReadmeChars))
	sb.WriteString("\n\n")

	sb.WriteString("Package/Config Files:\n")
	sb.WriteString(clip(marshalIndent(d.Manifests), maxManifestChars))
	sb.WriteString("\n\n")

	if len(d.Docs) > 0 {
		sb.WriteString("Documentation:\n")
		for _, doc := range d.Docs {
			sb.WriteString(doc.Name)
			sb.WriteString(":\n")
			sb.WriteString(clip(doc.Content, maxPreviewChars))
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	type preview struct {
		Name    string `json:"name"`
		Preview string `json:"preview"`
	}
	previews := make([]preview, 0, len(d.Sources))
	for _, f := range d.Sources {
		previews = append(previews, preview{Name: f.Name, Preview: clip(f.Content, maxPreviewChars)})
	}
	sb.WriteString("Code Samples:\n")
	sb.WriteString(marshalIndent(previews))
	sb.WriteString("\n\n")

	sb.WriteString(`Provide a structured analysis in JSON format:
{
    "name": "Project name",
    "tagline": "One-sentence description",
    "problem": "What problem does it solve?",
    "solution": "How does it solve it?",
    "architecture": "High-level architecture/approach",
    "key_features": ["feature1", "feature2", "feature3"],
    "tech_stack": ["tech1", "tech2"],
    "getting_started": "Quick start steps",
    "target_audience": "Who is this for?"
}

Be concise and focus on what would make a compelling 40-second explainer video.`)

	return sb.String()
}

func marshalIndent(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
