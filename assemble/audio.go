package assemble

import (
	"fmt"
	"log"
	"os"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"finshorts-pipeline/types"
)

// MixSpec is the resolved audio mix for one render: which files go in,
// at what gains, and the exact output length. Resolution is separated
// from graph construction so the degrade-to-narration-only decision is
// testable without ffmpeg.
type MixSpec struct {
	Narration    string
	NarrationVol float64
	Music        string
	MusicVol     float64
	LoopMusic    bool
	Total        float64
}

// resolveAudio validates the plan's audio section against the files on
// disk. Narration is mandatory; a missing or unreadable music bed
// degrades to narration-only with a warning rather than failing the
// render.
func resolveAudio(src types.AudioSpec, total float64) (MixSpec, error) {
	if src.Narration.File == "" {
		return MixSpec{}, fmt.Errorf("%w: plan has no narration track", types.ErrMissingInput)
	}
	if _, err := os.Stat(src.Narration.File); err != nil {
		return MixSpec{}, fmt.Errorf("%w: narration audio %s", types.ErrMissingInput, src.Narration.File)
	}

	m := MixSpec{
		Narration:    src.Narration.File,
		NarrationVol: src.Narration.Volume,
		Total:        total,
	}
	if m.NarrationVol <= 0 {
		m.NarrationVol = 1.0
	}

	if src.Music != nil && src.Music.File != "" {
		if _, err := os.Stat(src.Music.File); err != nil {
			log.Printf("[assemble] ⚠️ music bed %s not found, rendering narration only", src.Music.File)
		} else {
			m.Music = src.Music.File
			m.MusicVol = src.Music.Volume
			m.LoopMusic = src.Music.Loop
			if m.MusicVol <= 0 {
				m.MusicVol = 0.2
			}
		}
	}
	return m, nil
}

// audioStream builds the mixed audio stream for the render. Both legs
// are forced to exactly Total seconds — narration is padded with
// silence, music is looped then trimmed — so the mix can never shorten
// or lengthen the video.
func audioStream(m MixSpec) *ffmpeg.Stream {
	narration := ffmpeg.Input(m.Narration).Audio().
		Filter("volume", ffmpeg.Args{fmt.Sprintf("%g", m.NarrationVol)}).
		Filter("apad", ffmpeg.Args{}).
		Filter("atrim", ffmpeg.Args{}, ffmpeg.KwArgs{"duration": m.Total}).
		Filter("asetpts", ffmpeg.Args{"PTS-STARTPTS"})

	if m.Music == "" {
		return narration
	}

	musicInput := ffmpeg.KwArgs{}
	if m.LoopMusic {
		musicInput["stream_loop"] = -1
	}
	music := ffmpeg.Input(m.Music, musicInput).Audio().
		Filter("volume", ffmpeg.Args{fmt.Sprintf("%g", m.MusicVol)}).
		Filter("atrim", ffmpeg.Args{}, ffmpeg.KwArgs{"duration": m.Total}).
		Filter("asetpts", ffmpeg.Args{"PTS-STARTPTS"})

	// duration=first keeps the padded narration leg authoritative;
	// normalize=0 preserves the configured gains instead of rescaling.
	return ffmpeg.Filter([]*ffmpeg.Stream{narration, music}, "amix", ffmpeg.Args{},
		ffmpeg.KwArgs{"inputs": 2, "duration": "first", "normalize": 0})
}
