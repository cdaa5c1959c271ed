package plan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finshorts-pipeline/types"
)

func TestBuildRejectsZeroScenes(t *testing.T) {
	_, err := Build(nil, BuildInputs{Narration: "narration.mp3", FPS: 30})
	assert.ErrorIs(t, err, types.ErrInvalidTimeline)
}

func TestBuildRejectsOverlappingScenes(t *testing.T) {
	scenes := sampleScenes(2)
	scenes[1].Start = scenes[0].End - 0.5
	_, err := Build(scenes, BuildInputs{Narration: "narration.mp3", FPS: 30})
	assert.ErrorIs(t, err, types.ErrInvalidTimeline)
}

func TestBuildDurationIsLastSceneEnd(t *testing.T) {
	scenes := sampleScenes(3)
	p, err := Build(scenes, BuildInputs{
		Title:      "Test Short",
		Resolution: "1080x1920",
		FPS:        30,
		Narration:  "narration.mp3",
		Music:      "music.mp3",
		MusicVol:   0.22,
	})
	require.NoError(t, err)

	assert.Equal(t, types.PlanSchemaVersion, p.SchemaVersion)
	assert.Equal(t, scenes[2].End, p.Metadata.DurationSeconds)
	assert.Equal(t, 1.0, p.Audio.Narration.Volume)
	require.NotNil(t, p.Audio.Music)
	assert.Equal(t, 0.22, p.Audio.Music.Volume)
	assert.True(t, p.Audio.Music.Loop)
}

func TestBuildWithoutMusic(t *testing.T) {
	p, err := Build(sampleScenes(1), BuildInputs{Narration: "narration.mp3", FPS: 30, Resolution: "1080x1920"})
	require.NoError(t, err)
	assert.Nil(t, p.Audio.Music)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "production_plan.json")

	p, err := Build(sampleScenes(2), BuildInputs{
		Title:      "Round Trip",
		Resolution: "1080x1920",
		FPS:        30,
		Narration:  "narration.mp3",
	})
	require.NoError(t, err)
	require.NoError(t, Save(p, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, p, loaded)
}

func TestLoadMissingPlanIsMissingInput(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.ErrorIs(t, err, types.ErrMissingInput)
}

func TestLoadRejectsUnknownSchemaVersion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plan.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"schema_version": 99, "scenes": []}`), 0644))

	_, err := Load(path)
	assert.ErrorIs(t, err, types.ErrMalformedInput)
}

func TestLoadTimestampsValidation(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadTimestamps(filepath.Join(dir, "timestamps.json"))
	assert.ErrorIs(t, err, types.ErrMissingInput)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"words": [{"word": "a", "start": 2.0, "end": 1.0}]}`), 0644))
	_, err = LoadTimestamps(bad)
	assert.ErrorIs(t, err, types.ErrMalformedInput)

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte(`{"words": []}`), 0644))
	_, err = LoadTimestamps(empty)
	assert.ErrorIs(t, err, types.ErrMalformedInput)

	good := filepath.Join(dir, "good.json")
	require.NoError(t, os.WriteFile(good, []byte(`{"words": [{"word": "hi", "start": 0.0, "end": 0.4}], "text": "hi"}`), 0644))
	ts, err := LoadTimestamps(good)
	require.NoError(t, err)
	assert.Len(t, ts.Words, 1)
}

func TestLoadManifestPrefersImagePath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "illustrations_manifest.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"images": [
			{"image_id": 1, "image_path": "a.png"},
			{"image_id": 2, "file_path": "b.png"}
		],
		"total_count": 2
	}`), 0644))

	paths, err := LoadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.png", "b.png"}, paths)
}
