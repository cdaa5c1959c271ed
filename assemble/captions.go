package assemble

import (
	"fmt"
	"os"
	"strings"

	"finshorts-pipeline/types"
)

// Captions are rendered by ffmpeg's subtitle filter rather than the
// frame compositor: libass gives us proper font shaping and outline
// for free, and as the last filter in the chain the captions land on
// top of every pixel layer, which is where they belong.

// buildASS emits one dialogue event per word: the event spans exactly
// that word's [start, end) window and shows the scene's full text with
// the active word recolored. Timing comes straight from the scene's
// own word list, so captions can never drift from the narration.
func buildASS(scenes []types.Scene, style types.CaptionStyle, width, height int) string {
	var b strings.Builder

	fontSize := style.FontSize
	if fontSize <= 0 {
		fontSize = 72
	}
	marginV := height - style.PositionY
	if style.PositionY <= 0 || marginV < 0 {
		marginV = 480
	}
	bold := 0
	if style.FontWeight == "bold" {
		bold = 1
	}

	fmt.Fprintf(&b, `[Script Info]
Title: Captions
ScriptType: v4.00+
PlayResX: %d
PlayResY: %d
WrapStyle: 0

[V4+ Styles]
Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding
Style: Default,Arial,%d,%s,%s,&H00000000,&H80000000,%d,0,0,0,100,100,0,0,1,3,1,2,60,60,%d,1

[Events]
Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text
`, width, height, fontSize, assColor(style.InactiveColor, "&H00FFFFFF"), assColor(style.ActiveColor, "&H0000D7FF"), bold, marginV)

	active := assColor(style.ActiveColor, "&H0000D7FF")
	inactive := assColor(style.InactiveColor, "&H00FFFFFF")

	for _, s := range scenes {
		words := s.Captions.Words
		for i, w := range words {
			if w.End <= w.Start {
				continue
			}
			fmt.Fprintf(&b, "Dialogue: 0,%s,%s,Default,,0,0,0,,%s\n",
				assTimestamp(w.Start), assTimestamp(w.End), highlightLine(words, i, active, inactive))
		}
	}
	return b.String()
}

// highlightLine renders the scene's words with the word at idx in the
// active color and the rest in the inactive color.
func highlightLine(words []types.Word, idx int, active, inactive string) string {
	parts := make([]string, len(words))
	for i, w := range words {
		text := escapeASS(w.Text)
		if i == idx {
			parts[i] = fmt.Sprintf("{\\c%s}%s{\\c%s}", active, text, inactive)
		} else {
			parts[i] = text
		}
	}
	return fmt.Sprintf("{\\c%s}%s", inactive, strings.Join(parts, " "))
}

// assTimestamp formats seconds as H:MM:SS.CC (centisecond precision,
// which is all the ASS format carries).
func assTimestamp(sec float64) string {
	if sec < 0 {
		sec = 0
	}
	cs := int(sec*100 + 0.5)
	h := cs / 360000
	m := cs / 6000 % 60
	s := cs / 100 % 60
	c := cs % 100
	return fmt.Sprintf("%d:%02d:%02d.%02d", h, m, s, c)
}

// assColor converts "#RRGGBB" to the ASS &H00BBGGRR form, falling back
// when the input is missing or malformed.
func assColor(hex, fallback string) string {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(hex) != 6 {
		return fallback
	}
	var r, g, b int
	if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b); err != nil {
		return fallback
	}
	return fmt.Sprintf("&H00%02X%02X%02X", b, g, r)
}

func escapeASS(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "{", "(")
	s = strings.ReplaceAll(s, "}", ")")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}

// WriteASS renders the caption track for every caption-enabled scene
// and writes it next to the other run artifacts. It returns "" when no
// scene has captions enabled.
func WriteASS(scenes []types.Scene, style types.CaptionStyle, width, height int, path string) (string, error) {
	var enabled []types.Scene
	for _, s := range scenes {
		if s.Captions.Enabled && len(s.Captions.Words) > 0 {
			enabled = append(enabled, s)
		}
	}
	if len(enabled) == 0 {
		return "", nil
	}
	if err := os.WriteFile(path, []byte(buildASS(enabled, style, width, height)), 0o644); err != nil {
		return "", fmt.Errorf("write captions: %w", err)
	}
	return path, nil
}
