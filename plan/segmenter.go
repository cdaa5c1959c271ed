package plan

import (
	"strings"

	"finshorts-pipeline/types"
)

// Segment converts a flat word timeline into ordered scenes, splitting
// on natural speech pauses and a maximum scene-duration ceiling.
//
// A boundary is forced after a word when:
//   - the gap to the next word exceeds pauseThreshold, or
//   - the accumulated duration since scene start exceeds maxSceneSec, or
//   - the word is the last one overall.
//
// The next scene starts at the next word's start, not the previous
// word's end, so inter-scene gaps stay outside every scene's bounds.
// The duration ceiling only fires after accumulation: a single word
// longer than maxSceneSec still forms one scene.
func Segment(words []types.Word, maxSceneSec, pauseThreshold float64) []types.Scene {
	if len(words) == 0 {
		return nil
	}

	var scenes []types.Scene
	var acc []types.Word
	sceneStart := words[0].Start
	number := 1

	for i, w := range words {
		acc = append(acc, w)

		split := false
		if i < len(words)-1 && words[i+1].Start-w.End > pauseThreshold {
			split = true
		}
		if w.End-sceneStart > maxSceneSec {
			split = true
		}
		if i == len(words)-1 {
			split = true
		}
		if !split {
			continue
		}

		end := acc[len(acc)-1].End
		scenes = append(scenes, types.Scene{
			Number:   number,
			Start:    sceneStart,
			End:      end,
			Duration: end - sceneStart,
			Text:     joinWords(acc),
			Words:    append([]types.Word(nil), acc...),
		})
		number++
		acc = acc[:0]
		if i < len(words)-1 {
			sceneStart = words[i+1].Start
		}
	}

	return scenes
}

func joinWords(words []types.Word) string {
	parts := make([]string, 0, len(words))
	for _, w := range words {
		if t := strings.TrimSpace(w.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}
