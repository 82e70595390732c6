package script

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repo-explainer/internal/analyze"
)

func sceneJSON(n int) string {
	return fmt.Sprintf(`{
		"number": %d,
		"title": "Scene %d",
		"duration": 8,
		"visual_prompt": "visual %d",
		"voiceover_text": "voiceover %d",
		"audio_cues": "cues %d"
	}`, n, n, n, n, n)
}

func scriptJSON(sceneCount int) string {
	s := `{"video_title": "Demo: A demo project", "overall_style": "modern tech", "scenes": [`
	for i := 1; i <= sceneCount; i++ {
		if i > 1 {
			s += ","
		}
		s += sceneJSON(i)
	}
	return s + "]}"
}

// sequenceGen returns queued responses in order across calls.
type sequenceGen struct {
	responses []string
	errs      []error
	calls     int
}

func (s *sequenceGen) GenerateText(ctx context.Context, model, prompt string) (string, error) {
	i := s.calls
	s.calls++
	if i >= len(s.responses) {
		return "", fmt.Errorf("unexpected extra generation call %d", i+1)
	}
	if s.errs != nil && s.errs[i] != nil {
		return "", s.errs[i]
	}
	return s.responses[i], nil
}

func TestRunValidScript(t *testing.T) {
	gen := &sequenceGen{responses: []string{scriptJSON(5)}}
	c := New(gen, "test-model")

	s, err := c.Run(context.Background(), analyze.Fallback("demo"))
	require.NoError(t, err)
	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, "Demo: A demo project", s.VideoTitle)
	require.Len(t, s.Scenes, 5)
	assert.Equal(t, 40, s.TotalSeconds())
}

func TestRunFencedScript(t *testing.T) {
	gen := &sequenceGen{responses: []string{"```json\n" + scriptJSON(5) + "\n```"}}
	s, err := New(gen, "test-model").Run(context.Background(), analyze.Fallback("demo"))
	require.NoError(t, err)
	assert.Len(t, s.Scenes, 5)
}

func TestRunRetriesOnceThenSucceeds(t *testing.T) {
	gen := &sequenceGen{responses: []string{"not json", scriptJSON(5)}}
	s, err := New(gen, "test-model").Run(context.Background(), analyze.Fallback("demo"))
	require.NoError(t, err)
	assert.Equal(t, 2, gen.calls)
	assert.Len(t, s.Scenes, 5)
}

func TestRunFatalAfterRetry(t *testing.T) {
	gen := &sequenceGen{responses: []string{"not json", "still not json"}}
	_, err := New(gen, "test-model").Run(context.Background(), analyze.Fallback("demo"))
	assert.ErrorContains(t, err, "compose script")
	assert.Equal(t, 2, gen.calls)
}

func TestRunRetriesTransportError(t *testing.T) {
	gen := &sequenceGen{
		responses: []string{"", scriptJSON(5)},
		errs:      []error{fmt.Errorf("connection reset"), nil},
	}
	s, err := New(gen, "test-model").Run(context.Background(), analyze.Fallback("demo"))
	require.NoError(t, err)
	assert.Len(t, s.Scenes, 5)
}

func TestParseNormalizesNumbersAndDurations(t *testing.T) {
	// model got numbers and durations wrong; parser pins them to position/8s
	raw := scriptJSON(5)
	s, err := Parse(raw)
	require.NoError(t, err)
	for i, sc := range s.Scenes {
		assert.Equal(t, i+1, sc.Number)
		assert.Equal(t, SceneSeconds, sc.Duration)
	}

	var shuffled = `{"video_title": "t", "overall_style": "s", "scenes": [` +
		sceneJSON(9) + "," + sceneJSON(8) + "," + sceneJSON(7) + "," + sceneJSON(6) + "," + sceneJSON(2) + "]}"
	s, err = Parse(shuffled)
	require.NoError(t, err)
	for i, sc := range s.Scenes {
		assert.Equal(t, i+1, sc.Number)
	}
	assert.Equal(t, 40, s.TotalSeconds())
}

func TestParseRejectsWrongSceneCount(t *testing.T) {
	_, err := Parse(scriptJSON(4))
	assert.ErrorContains(t, err, "expected 5 scenes")
	_, err = Parse(scriptJSON(6))
	assert.Error(t, err)
}

func TestParseRejectsEmptyPrompts(t *testing.T) {
	raw := `{"video_title": "t", "overall_style": "s", "scenes": [` +
		sceneJSON(1) + "," + sceneJSON(2) + "," + sceneJSON(3) + "," + sceneJSON(4) + "," +
		`{"number": 5, "title": "end", "duration": 8, "visual_prompt": "", "voiceover_text": "bye"}]}`
	_, err := Parse(raw)
	assert.ErrorContains(t, err, "scene 5 has no visual_prompt")
}
