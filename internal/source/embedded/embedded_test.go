package embedded

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillaudio/quill/internal/model"
	"github.com/quillaudio/quill/internal/source"
)

func fakeProber(result *probeResult, err error) Prober {
	return func(context.Context, string) (*probeResult, error) {
		return result, err
	}
}

func mediaFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	return path
}

func TestExtract(t *testing.T) {
	result := &probeResult{
		Streams: []probeStream{
			{
				Index: 0, CodecType: "audio", CodecName: "aac",
				Duration: "58403.2", BitRate: "127998", SampleRate: "44100", Channels: 2,
			},
			{
				Index: 1, CodecType: "video", CodecName: "mjpeg",
				Disposition: map[string]int{"attached_pic": 1},
			},
		},
		Chapters: []probeChapter{
			{StartTime: "600.0", Tags: map[string]string{"title": "Chapter 2"}},
			{StartTime: "0.0", Tags: map[string]string{"title": "Chapter 1"}},
		},
		Format: probeFormat{
			Duration: "58403.5",
			Tags: map[string]string{
				"title":     "Project Hail Mary",
				"artist":    "Andy Weir",
				"composer":  "Ray Porter",
				"publisher": "Audible Studios",
				"language":  "eng",
				"genre":     "Science Fiction/Sci-Fi",
			},
		},
	}

	e := New("", WithProber(fakeProber(result, nil)))
	fs, err := e.Extract(context.Background(), source.Request{
		MediaFile: mediaFile(t, "book.m4b"),
	})
	require.NoError(t, err)

	assert.Equal(t, model.SourceEmbedded, fs.Source())
	assert.Equal(t, 58403.2, fs[model.FieldDurationSec])
	assert.Equal(t, 127998, fs[model.FieldBitrate])
	assert.Equal(t, 44100, fs[model.FieldSampleRate])
	assert.Equal(t, 2, fs[model.FieldChannels])
	assert.Equal(t, true, fs[model.FieldHasCover])
	assert.Equal(t, "Project Hail Mary", fs[model.FieldTitle])
	assert.Equal(t, []string{"Andy Weir"}, fs[model.FieldAuthors])
	assert.Equal(t, []string{"Ray Porter"}, fs[model.FieldNarrators])
	assert.Equal(t, []string{"Science Fiction", "Sci-Fi"}, fs[model.FieldGenres])

	// Chapters are sorted by offset and reindexed.
	chapters, ok := fs[model.FieldChapters].([]model.Chapter)
	require.True(t, ok)
	require.Len(t, chapters, 2)
	assert.Equal(t, model.Chapter{Index: 0, Title: "Chapter 1", StartSec: 0}, chapters[0])
	assert.Equal(t, model.Chapter{Index: 1, Title: "Chapter 2", StartSec: 600}, chapters[1])

	// Non-standard bitrate classifies as VBR in the mid band.
	assert.Equal(t, "aac", fs[model.FieldCodec])
	assert.Equal(t, EncodingVBR, fs[model.FieldEncodingMode])
	assert.Equal(t, 0.5, fs[model.FieldQualityScore])
	assert.Equal(t, ProvenanceContainer, fs[model.FieldFormatProvenance])
}

func TestExtractNoCover(t *testing.T) {
	result := &probeResult{
		Streams: []probeStream{{CodecType: "audio", CodecName: "mp3", Duration: "100"}},
	}
	e := New("", WithProber(fakeProber(result, nil)))
	fs, err := e.Extract(context.Background(), source.Request{MediaFile: mediaFile(t, "b.mp3")})
	require.NoError(t, err)

	// A false cover flag is a real answer, not an absent field.
	v, present := fs[model.FieldHasCover]
	require.True(t, present)
	assert.Equal(t, false, v)
}

func TestExtractFallsBackToFormatDuration(t *testing.T) {
	result := &probeResult{
		Streams: []probeStream{{CodecType: "audio", CodecName: "mp3"}},
		Format:  probeFormat{Duration: "1234.5", BitRate: "128000"},
	}
	e := New("", WithProber(fakeProber(result, nil)))
	fs, err := e.Extract(context.Background(), source.Request{MediaFile: mediaFile(t, "b.mp3")})
	require.NoError(t, err)
	assert.Equal(t, 1234.5, fs[model.FieldDurationSec])
	assert.Equal(t, 128000, fs[model.FieldBitrate])
}

func TestExtractProbeFailure(t *testing.T) {
	e := New("", WithProber(fakeProber(nil, assert.AnError)))
	_, err := e.Extract(context.Background(), source.Request{MediaFile: mediaFile(t, "b.m4b")})
	require.Error(t, err)
	assert.True(t, model.IsSourceUnreadable(err))
}

func TestExtractMissingFile(t *testing.T) {
	e := New("")
	_, err := e.Extract(context.Background(), source.Request{
		MediaFile: filepath.Join(t.TempDir(), "gone.m4b"),
	})
	require.Error(t, err)
	assert.True(t, model.IsSourceUnreadable(err))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		result *probeResult
		path   string
		codec  string
		mode   string
		score  float64
		origin string
	}{
		{
			"lossless flac",
			&probeResult{Streams: []probeStream{{CodecType: "audio", CodecName: "flac", BitRate: "900000"}}},
			"b.flac", "flac", EncodingCBR, 1.0, ProvenanceContainer,
		},
		{
			"standard cbr rate",
			&probeResult{Streams: []probeStream{{CodecType: "audio", CodecName: "mp3", BitRate: "320000"}}},
			"b.mp3", "mp3", EncodingCBR, 0.9, ProvenanceContainer,
		},
		{
			"low bitrate vbr",
			&probeResult{Streams: []probeStream{{CodecType: "audio", CodecName: "aac", BitRate: "63001"}}},
			"b.m4b", "aac", EncodingVBR, 0.3, ProvenanceContainer,
		},
		{
			"extension fallback",
			&probeResult{},
			"b.opus", "opus", EncodingVBR, 0.1, ProvenanceExtension,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Classify(tt.result, tt.path)
			assert.Equal(t, tt.codec, c.Codec)
			assert.Equal(t, tt.mode, c.EncodingMode)
			assert.Equal(t, tt.score, c.QualityScore)
			assert.Equal(t, tt.origin, c.Provenance)
		})
	}
}
