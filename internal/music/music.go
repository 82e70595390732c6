// Package music supplies the background audio track. With no track
// configured it synthesizes silence matching the script duration; a
// configured track is looped so it always covers at least that long. The
// composer owns trimming, never this package.
package music

import (
	"context"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
)

type Provider struct {
	trackPath string
}

func New(trackPath string) *Provider {
	return &Provider{trackPath: trackPath}
}

// Run writes a background track at least totalSec seconds long and returns
// its path. Failure is non-fatal: the video ships without music.
func (p *Provider) Run(ctx context.Context, totalSec int, outDir string) string {
	log.Println("[music] 🎵 Preparing background music...")

	out := filepath.Join(outDir, "background_music.mp3")

	var args []string
	if p.trackPath != "" {
		if _, err := os.Stat(p.trackPath); err != nil {
			log.Printf("[music] ⚠️ Configured track not found: %v — using silent placeholder", err)
			args = silenceArgs(totalSec, out)
		} else {
			args = loopArgs(p.trackPath, totalSec, out)
		}
	} else {
		log.Printf("[music] ⚠️ No track configured — writing %ds silent placeholder (set music.track_path for a real lo-fi track)", totalSec)
		args = silenceArgs(totalSec, out)
	}

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		log.Printf("[music] ⚠️ ffmpeg failed: %v — continuing without music", err)
		return ""
	}

	log.Printf("[music] ✅ Background music ready: %s", out)
	return out
}

// silenceArgs synthesizes totalSec seconds of stereo silence.
func silenceArgs(totalSec int, out string) []string {
	return []string{"-y",
		"-f", "lavfi",
		"-i", "anullsrc=r=44100:cl=stereo",
		"-t", strconv.Itoa(totalSec),
		"-c:a", "libmp3lame",
		"-q:a", "4",
		out,
	}
}

// loopArgs loops the configured track to cover totalSec seconds.
func loopArgs(track string, totalSec int, out string) []string {
	return []string{"-y",
		"-stream_loop", "-1",
		"-i", track,
		"-t", strconv.Itoa(totalSec),
		"-c:a", "libmp3lame",
		"-q:a", "4",
		out,
	}
}
