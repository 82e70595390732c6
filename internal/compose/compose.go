// Package compose assembles the final artifact: all chain clips
// concatenated in scene order, narration at full gain, music attenuated,
// muxed into one MP4.
package compose

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// MusicGain is the background music's share of nominal volume. Narration
// intelligibility takes priority, so music never plays at full gain.
const MusicGain = 0.3

type Composer struct {
	fps     int
	width   int
	height  int
	workDir string

	// probe and run are swappable for tests; production wires ffprobe/ffmpeg.
	probe func(ctx context.Context, path string) (float64, error)
	run   func(ctx context.Context, args []string) error
}

func New(fps int, resolution, workDir string) *Composer {
	w, h := 1920, 1080
	if resolution == "720p" {
		w, h = 1280, 720
	}
	return &Composer{
		fps:     fps,
		width:   w,
		height:  h,
		workDir: workDir,
		probe:   probeDuration,
		run:     runFFmpeg,
	}
}

// Run concatenates the clips, mixes the audio tracks, and encodes the final
// video. Unloadable clips and audio tracks are dropped with a warning; zero
// loadable clips is fatal. Intermediate files are removed on every path.
func (c *Composer) Run(ctx context.Context, clips []string, narrationPath, musicPath, outputPath string) (string, error) {
	log.Println("[compose] 🎬 Composing final video...")

	var loadable []string
	for i, clip := range clips {
		if _, err := c.probe(ctx, clip); err != nil {
			log.Printf("[compose] ⚠️ Failed to load clip %d/%d: %v — dropping it", i+1, len(clips), err)
			continue
		}
		loadable = append(loadable, clip)
		log.Printf("[compose]    ✓ Loaded clip %d/%d", i+1, len(clips))
	}
	if len(loadable) == 0 {
		return "", fmt.Errorf("no video clips could be loaded")
	}

	// Step 1: concatenate clips, normalizing resolution and frame rate.
	log.Println("[compose]    Stitching clips together...")
	listFile := filepath.Join(c.workDir, "clips_concat.txt")
	if err := writeConcatList(listFile, loadable); err != nil {
		return "", fmt.Errorf("write concat list: %w", err)
	}
	silentVideo := filepath.Join(c.workDir, "video_silent.mp4")
	defer os.Remove(listFile)
	defer os.Remove(silentVideo)

	if err := c.run(ctx, c.concatArgs(listFile, silentVideo)); err != nil {
		return "", fmt.Errorf("ffmpeg concat clips: %w", err)
	}

	// Audio tracks that fail to load are dropped, not fatal.
	if narrationPath != "" {
		if _, err := c.probe(ctx, narrationPath); err != nil {
			log.Printf("[compose] ⚠️ Failed to load voiceover: %v — dropping it", err)
			narrationPath = ""
		} else {
			log.Println("[compose]    ✓ Added voiceover")
		}
	}
	if musicPath != "" {
		if _, err := c.probe(ctx, musicPath); err != nil {
			log.Printf("[compose] ⚠️ Failed to load music: %v — dropping it", err)
			musicPath = ""
		} else {
			log.Printf("[compose]    ✓ Added background music (%.0f%% volume)", MusicGain*100)
		}
	}

	videoDur, err := c.probe(ctx, silentVideo)
	if err != nil {
		return "", fmt.Errorf("probe concatenated video: %w", err)
	}

	// Step 2: mix audio and mux the final file.
	log.Printf("[compose] 💾 Rendering final video to %s...", outputPath)
	if err := c.run(ctx, muxArgs(silentVideo, narrationPath, musicPath, videoDur, outputPath)); err != nil {
		return "", fmt.Errorf("ffmpeg mux: %w", err)
	}

	if fi, err := os.Stat(outputPath); err == nil {
		log.Printf("[compose] 📊 File size: %.2f MB", float64(fi.Size())/(1024*1024))
	}
	log.Printf("[compose] ✅ Video composition complete: %s", outputPath)
	return outputPath, nil
}

func writeConcatList(listFile string, clips []string) error {
	lines := make([]string, 0, len(clips))
	for _, clip := range clips {
		abs, err := filepath.Abs(clip)
		if err != nil {
			abs = clip
		}
		lines = append(lines, fmt.Sprintf("file '%s'", abs))
	}
	return os.WriteFile(listFile, []byte(strings.Join(lines, "\n")), 0644)
}

// concatArgs re-encodes while concatenating: clips from the generation API
// can differ slightly in resolution and frame rate, so each one is scaled
// and padded to the target frame instead of naively stacked.
func (c *Composer) concatArgs(listFile, out string) []string {
	vf := fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2,setsar=1",
		c.width, c.height, c.width, c.height,
	)
	return []string{"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listFile,
		"-vf", vf,
		"-r", strconv.Itoa(c.fps),
		"-c:v", "libx264",
		"-preset", "medium",
		"-crf", "22",
		"-pix_fmt", "yuv420p",
		"-an",
		out,
	}
}

// muxArgs attaches the available audio tracks to the concatenated video.
// Narration plays at full gain; music is attenuated to MusicGain; with both
// present they are mixed additively. -shortest ends the output at the
// shortest stream, so it is only used when music is in the mix (music always
// covers the full video). Narration alone is usually shorter than the video,
// so it is padded with silence and the output is bounded to videoDur instead
// of letting -shortest cut the last clips.
func muxArgs(video, narration, music string, videoDur float64, out string) []string {
	args := []string{"-y", "-i", video}

	switch {
	case narration != "" && music != "":
		args = append(args, "-i", narration, "-i", music,
			"-filter_complex",
			fmt.Sprintf("[2:a]volume=%.1f[music];[1:a][music]amix=inputs=2:duration=longest:normalize=0[aout]", MusicGain),
			"-map", "0:v", "-map", "[aout]",
			"-c:a", "aac", "-b:a", "192k", "-shortest",
		)
	case narration != "":
		args = append(args, "-i", narration,
			"-filter_complex", "[1:a]apad[aout]",
			"-map", "0:v", "-map", "[aout]",
			"-c:a", "aac", "-b:a", "192k",
			"-t", fmt.Sprintf("%.3f", videoDur),
		)
	case music != "":
		args = append(args, "-i", music,
			"-filter_complex", fmt.Sprintf("[1:a]volume=%.1f[aout]", MusicGain),
			"-map", "0:v", "-map", "[aout]",
			"-c:a", "aac", "-b:a", "192k", "-shortest",
		)
	default:
		args = append(args, "-map", "0:v", "-an")
	}

	args = append(args,
		"-c:v", "copy",
		"-movflags", "+faststart",
		out,
	)
	return args
}

func runFFmpeg(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// probeDuration asks ffprobe for a media file's duration; an error means
// the file is unloadable.
func probeDuration(ctx context.Context, path string) (float64, error) {
	out, err := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	).Output()
	if err != nil {
		return 0, err
	}
	var dur float64
	_, err = fmt.Sscanf(strings.TrimSpace(string(out)), "%f", &dur)
	return dur, err
}
