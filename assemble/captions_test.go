package assemble

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finshorts-pipeline/types"
)

func captionedScene(words []types.Word) types.Scene {
	return types.Scene{
		Number: 1,
		Start:  words[0].Start,
		End:    words[len(words)-1].End,
		Words:  words,
		Captions: types.CaptionSpec{
			Enabled: true,
			Words:   words,
			Style: types.CaptionStyle{
				FontSize:      72,
				ActiveColor:   "#FFD700",
				InactiveColor: "#FFFFFF",
				PositionY:     1350,
			},
		},
	}
}

func TestBuildASSOneEventPerWord(t *testing.T) {
	scene := captionedScene([]types.Word{
		{Text: "Tesla", Start: 0.0, End: 0.4},
		{Text: "stock", Start: 0.4, End: 0.8},
		{Text: "surged", Start: 0.9, End: 1.3},
	})

	out := buildASS([]types.Scene{scene}, scene.Captions.Style, 1080, 1920)

	assert.Equal(t, 3, strings.Count(out, "Dialogue:"))
	assert.Contains(t, out, "Dialogue: 0,0:00:00.00,0:00:00.40,")
	assert.Contains(t, out, "Dialogue: 0,0:00:00.90,0:00:01.30,")
	// Every event shows the full scene text.
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "Dialogue:") {
			assert.Contains(t, line, "Tesla")
			assert.Contains(t, line, "surged")
		}
	}
}

func TestBuildASSHighlightsActiveWord(t *testing.T) {
	scene := captionedScene([]types.Word{
		{Text: "up", Start: 0.0, End: 0.3},
		{Text: "big", Start: 0.3, End: 0.6},
	})

	out := buildASS([]types.Scene{scene}, scene.Captions.Style, 1080, 1920)

	// #FFD700 gold -> ASS &H0000D7FF.
	assert.Contains(t, out, `{\c&H0000D7FF}up{\c&H00FFFFFF}`)
	assert.Contains(t, out, `{\c&H0000D7FF}big{\c&H00FFFFFF}`)
}

func TestBuildASSSkipsZeroDurationWords(t *testing.T) {
	scene := captionedScene([]types.Word{
		{Text: "ok", Start: 0.0, End: 0.3},
		{Text: "glitch", Start: 0.5, End: 0.5},
	})
	out := buildASS([]types.Scene{scene}, scene.Captions.Style, 1080, 1920)
	assert.Equal(t, 1, strings.Count(out, "Dialogue:"))
}

func TestASSTimestamp(t *testing.T) {
	assert.Equal(t, "0:00:00.00", assTimestamp(0))
	assert.Equal(t, "0:00:05.25", assTimestamp(5.25))
	assert.Equal(t, "0:01:01.50", assTimestamp(61.5))
	assert.Equal(t, "1:01:05.10", assTimestamp(3665.1))
	assert.Equal(t, "0:00:00.00", assTimestamp(-2))
}

func TestASSColor(t *testing.T) {
	assert.Equal(t, "&H0000D7FF", assColor("#FFD700", "fb"))
	assert.Equal(t, "&H00FFFFFF", assColor("#FFFFFF", "fb"))
	assert.Equal(t, "&H00FF0000", assColor("0000FF", "fb"))
	assert.Equal(t, "fb", assColor("", "fb"))
	assert.Equal(t, "fb", assColor("#ZZZZZZ", "fb"))
}

func TestWriteASSNoEnabledScenes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "captions.ass")
	got, err := WriteASS([]types.Scene{{Number: 1}}, types.CaptionStyle{}, 1080, 1920, path)
	require.NoError(t, err)
	assert.Empty(t, got)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestWriteASSCreatesFile(t *testing.T) {
	scene := captionedScene([]types.Word{{Text: "hi", Start: 0, End: 0.5}})
	path := filepath.Join(t.TempDir(), "captions.ass")

	got, err := WriteASS([]types.Scene{scene}, scene.Captions.Style, 1080, 1920, path)
	require.NoError(t, err)
	assert.Equal(t, path, got)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[Script Info]")
	assert.Contains(t, string(data), "PlayResY: 1920")
}
