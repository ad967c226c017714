// Package embedded reads container-level technical and descriptive
// metadata directly from the media file via ffprobe, and classifies the
// audio format (codec, CBR/VBR, banded quality score).
package embedded

import (
	"context"
	"encoding/json"
	"os/exec"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// probeResult mirrors the ffprobe JSON output we consume.
type probeResult struct {
	Streams  []probeStream  `json:"streams"`
	Chapters []probeChapter `json:"chapters"`
	Format   probeFormat    `json:"format"`
}

type probeStream struct {
	Index       int               `json:"index"`
	CodecName   string            `json:"codec_name"`
	CodecType   string            `json:"codec_type"`
	Duration    string            `json:"duration"`
	BitRate     string            `json:"bit_rate"`
	SampleRate  string            `json:"sample_rate"`
	Channels    int               `json:"channels"`
	Disposition map[string]int    `json:"disposition"`
	Tags        map[string]string `json:"tags"`
}

type probeChapter struct {
	ID        int64             `json:"id"`
	StartTime string            `json:"start_time"`
	EndTime   string            `json:"end_time"`
	Tags      map[string]string `json:"tags"`
}

type probeFormat struct {
	Filename   string            `json:"filename"`
	Duration   string            `json:"duration"`
	BitRate    string            `json:"bit_rate"`
	FormatName string            `json:"format_name"`
	Tags       map[string]string `json:"tags"`
}

// Prober runs a container inspection. The default implementation shells
// out to ffprobe; tests inject a canned result.
type Prober func(ctx context.Context, path string) (*probeResult, error)

// ffprobeProber builds a Prober that executes the given ffprobe binary.
func ffprobeProber(binary string) Prober {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	return func(ctx context.Context, path string) (*probeResult, error) {
		cmd := exec.CommandContext(ctx, binary,
			"-v", "error", "-hide_banner",
			"-show_format", "-show_streams", "-show_chapters",
			"-of", "json", "--", path)
		output, err := cmd.CombinedOutput()
		if err != nil {
			return nil, eris.Wrapf(err, "ffprobe: inspect %s: %s", path, strings.TrimSpace(string(output)))
		}
		var result probeResult
		if err := json.Unmarshal(output, &result); err != nil {
			return nil, eris.Wrap(err, "ffprobe: parse output")
		}
		return &result, nil
	}
}

// firstAudioStream returns the first audio stream, or nil.
func (r *probeResult) firstAudioStream() *probeStream {
	for i := range r.Streams {
		if strings.EqualFold(r.Streams[i].CodecType, "audio") {
			return &r.Streams[i]
		}
	}
	return nil
}

// hasCoverArt reports an attached-picture or embedded image stream.
func (r *probeResult) hasCoverArt() bool {
	for _, s := range r.Streams {
		if !strings.EqualFold(s.CodecType, "video") {
			continue
		}
		if s.Disposition["attached_pic"] == 1 {
			return true
		}
		switch strings.ToLower(s.CodecName) {
		case "mjpeg", "png", "bmp":
			return true
		}
	}
	return false
}

// parseProbeFloat parses ffprobe's stringly numerics; unknown is 0.
func parseProbeFloat(value string) float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || parsed < 0 {
		return 0
	}
	return parsed
}
