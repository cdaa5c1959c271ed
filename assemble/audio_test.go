package assemble

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finshorts-pipeline/types"
)

func touch(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	return path
}

func TestResolveAudioRequiresNarration(t *testing.T) {
	_, err := resolveAudio(types.AudioSpec{}, 10)
	assert.ErrorIs(t, err, types.ErrMissingInput)

	_, err = resolveAudio(types.AudioSpec{
		Narration: types.AudioTrack{File: filepath.Join(t.TempDir(), "gone.mp3"), Volume: 1},
	}, 10)
	assert.ErrorIs(t, err, types.ErrMissingInput)
}

func TestResolveAudioWithMusic(t *testing.T) {
	dir := t.TempDir()
	narration := touch(t, dir, "narration.mp3")
	music := touch(t, dir, "music.mp3")

	m, err := resolveAudio(types.AudioSpec{
		Narration: types.AudioTrack{File: narration, Volume: 1.0},
		Music:     &types.AudioTrack{File: music, Volume: 0.22, Loop: true},
	}, 55.2)
	require.NoError(t, err)

	assert.Equal(t, narration, m.Narration)
	assert.Equal(t, 1.0, m.NarrationVol)
	assert.Equal(t, music, m.Music)
	assert.Equal(t, 0.22, m.MusicVol)
	assert.True(t, m.LoopMusic)
	assert.Equal(t, 55.2, m.Total)
}

func TestResolveAudioMissingMusicDegrades(t *testing.T) {
	dir := t.TempDir()
	narration := touch(t, dir, "narration.mp3")

	m, err := resolveAudio(types.AudioSpec{
		Narration: types.AudioTrack{File: narration, Volume: 1.0},
		Music:     &types.AudioTrack{File: filepath.Join(dir, "gone.mp3"), Volume: 0.22},
	}, 10)
	require.NoError(t, err, "a missing music bed must not fail the render")
	assert.Empty(t, m.Music)
	assert.Equal(t, narration, m.Narration)
}

func TestResolveAudioDefaultsZeroVolumes(t *testing.T) {
	dir := t.TempDir()
	narration := touch(t, dir, "narration.mp3")
	music := touch(t, dir, "music.mp3")

	m, err := resolveAudio(types.AudioSpec{
		Narration: types.AudioTrack{File: narration},
		Music:     &types.AudioTrack{File: music},
	}, 10)
	require.NoError(t, err)
	assert.Equal(t, 1.0, m.NarrationVol)
	assert.Equal(t, 0.2, m.MusicVol)
}
