package assemble

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"finshorts-pipeline/types"
)

// RenderSettings are the encode parameters for one output file.
type RenderSettings struct {
	Width    int
	Height   int
	FPS      int
	Bitrate  string
	ASSPath  string // optional caption track
	AudioMix MixSpec
	OutPath  string
}

// render streams the compositor's raw RGBA frames into one ffmpeg
// process that encodes video, burns in captions, and mixes audio in a
// single pass. The encode writes to a temp path and renames on
// success, so a killed or failed render can never leave a truncated
// file at the output path.
func render(ctx context.Context, comp *Compositor, s RenderSettings) error {
	pr, pw := io.Pipe()

	video := ffmpeg.Input("pipe:", ffmpeg.KwArgs{
		"format":     "rawvideo",
		"pix_fmt":    "rgba",
		"video_size": fmt.Sprintf("%dx%d", s.Width, s.Height),
		"framerate":  s.FPS,
	})
	if s.ASSPath != "" {
		video = video.Filter("ass", ffmpeg.Args{escapeFilterPath(s.ASSPath)})
	}

	audio := audioStream(s.AudioMix)

	tmpPath := s.OutPath + ".partial.mp4"
	var stderr bytes.Buffer
	cmd := ffmpeg.Output([]*ffmpeg.Stream{video, audio}, tmpPath, ffmpeg.KwArgs{
		"c:v":      "libx264",
		"pix_fmt":  "yuv420p",
		"b:v":      s.Bitrate,
		"r":        s.FPS,
		"c:a":      "aac",
		"b:a":      "192k",
		"movflags": "+faststart",
	}).OverWriteOutput().WithInput(pr).WithErrorOutput(&stderr).Compile()

	if err := cmd.Start(); err != nil {
		pw.Close()
		return fmt.Errorf("%w: start ffmpeg: %v", types.ErrEncodingFailure, err)
	}

	// Kill the encoder if the render deadline passes; Wait below picks
	// up the resulting exit error.
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			cmd.Process.Kill()
		case <-done:
		}
	}()

	// Stream in a goroutine: if ffmpeg dies mid-encode the writer would
	// otherwise block on the pipe forever. Closing the read end after
	// Wait unblocks it.
	streamDone := make(chan error, 1)
	go func() {
		err := comp.Stream(ctx, pw)
		pw.Close()
		streamDone <- err
	}()

	waitErr := cmd.Wait()
	pr.Close()
	streamErr := <-streamDone
	close(done)

	if err := ctx.Err(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: render aborted: %v", types.ErrEncodingFailure, err)
	}
	if waitErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: ffmpeg: %v: %s", types.ErrEncodingFailure, waitErr, stderrTail(stderr.String()))
	}
	if streamErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: frame stream: %v", types.ErrEncodingFailure, streamErr)
	}

	if err := os.Rename(tmpPath, s.OutPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("finalize output: %w", err)
	}
	log.Printf("[assemble] ✅ encoded %d frames to %s", comp.FrameCount(), s.OutPath)
	return nil
}

// escapeFilterPath makes a path safe inside an ffmpeg filter argument.
func escapeFilterPath(p string) string {
	p = filepath.ToSlash(p)
	return strings.ReplaceAll(p, ":", "\\:")
}

// stderrTail keeps the last few lines of ffmpeg's chatter, which is
// where the actual error lives.
func stderrTail(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > 6 {
		lines = lines[len(lines)-6:]
	}
	return strings.Join(lines, " | ")
}
