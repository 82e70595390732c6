package types

// ProjectUnderstanding is the structured analysis of a repository, parsed
// from the text model's response.
type ProjectUnderstanding struct {
	Name           string   `json:"name"`
	Tagline        string   `json:"tagline"`
	Problem        string   `json:"problem"`
	Solution       string   `json:"solution"`
	Architecture   string   `json:"architecture"`
	KeyFeatures    []string `json:"key_features"`
	TechStack      []string `json:"tech_stack"`
	GettingStarted string   `json:"getting_started"`
	TargetAudience string   `json:"target_audience"`
}

// Scene is one 8-second segment of the explainer video.
type Scene struct {
	Number        int    `json:"number"`
	Title         string `json:"title"`
	Duration      int    `json:"duration"`
	VisualPrompt  string `json:"visual_prompt"`
	VoiceoverText string `json:"voiceover_text"`
	AudioCues     string `json:"audio_cues"`
}

// VideoScript is the full 5-scene script for one video.
type VideoScript struct {
	VideoTitle   string  `json:"video_title"`
	OverallStyle string  `json:"overall_style"`
	Scenes       []Scene `json:"scenes"`
}

// TotalSeconds is the sum of all scene durations. The music track is cut to
// at least this length.
func (s *VideoScript) TotalSeconds() int {
	total := 0
	for _, sc := range s.Scenes {
		total += sc.Duration
	}
	return total
}

// ClipResult records the outcome of one scene's clip generation.
// SeededFrom is the scene number whose clip seeded this one (0 = unseeded).
type ClipResult struct {
	SceneNumber int    `json:"scene_number"`
	Path        string `json:"path,omitempty"`
	SeededFrom  int    `json:"seeded_from,omitempty"`
	Error       string `json:"error,omitempty"`
}

// DigestSummary records how much signal the digest stage collected.
type DigestSummary struct {
	ReadmeFound bool `json:"readme_found"`
	Manifests   int  `json:"manifests"`
	Docs        int  `json:"docs"`
	Sources     int  `json:"sources"`
}

// RunState tracks the full state of one pipeline run. It is re-saved to the
// run directory after every stage so a failed run still shows how far it got.
type RunState struct {
	RunID         string                `json:"run_id"`
	Repository    string                `json:"repository"`
	StartedAt     string                `json:"started_at"`
	CompletedAt   string                `json:"completed_at,omitempty"`
	Digest        *DigestSummary        `json:"digest,omitempty"`
	Analysis      *ProjectUnderstanding `json:"analysis,omitempty"`
	Script        *VideoScript          `json:"script,omitempty"`
	Clips         []ClipResult          `json:"clips,omitempty"`
	NarrationFile string                `json:"narration_file,omitempty"`
	MusicFile     string                `json:"music_file,omitempty"`
	VideoFile     string                `json:"video_file,omitempty"`
	Error         string                `json:"error,omitempty"`
}
