package embedded

import (
	"context"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/quillaudio/quill/internal/model"
	"github.com/quillaudio/quill/internal/source"
)

// Embedded reads technical and descriptive tags from the media container.
type Embedded struct {
	probe Prober
}

// Option configures the embedded source.
type Option func(*Embedded)

// WithProber replaces the ffprobe executor (used by tests).
func WithProber(p Prober) Option {
	return func(e *Embedded) {
		if p != nil {
			e.probe = p
		}
	}
}

// New creates the embedded source using the given ffprobe binary
// ("ffprobe" when empty).
func New(ffprobeBinary string, opts ...Option) *Embedded {
	e := &Embedded{probe: ffprobeProber(ffprobeBinary)}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name returns the source identifier.
func (e *Embedded) Name() string {
	return model.SourceEmbedded
}

// Extract probes the media file and builds a field set from whatever the
// container yields. A container that cannot be opened or parsed is a
// SourceUnreadableError; a partially readable one produces the fields
// that were read.
func (e *Embedded) Extract(ctx context.Context, req source.Request) (model.RawFieldSet, error) {
	path := req.MediaFile
	if path == "" {
		path = req.Path
	}
	if _, err := os.Stat(path); err != nil {
		return nil, &model.SourceUnreadableError{Source: e.Name(), Path: path, Err: err}
	}

	result, err := e.probe(ctx, path)
	if err != nil {
		return nil, &model.SourceUnreadableError{Source: e.Name(), Path: path, Err: err}
	}

	fs := model.NewRawFieldSet(model.SourceEmbedded)

	// Duration from stream timing, not tag metadata: prefer the audio
	// stream's own duration, fall back to the container figure.
	var duration float64
	audio := result.firstAudioStream()
	if audio != nil {
		duration = parseProbeFloat(audio.Duration)
	}
	if duration == 0 {
		duration = parseProbeFloat(result.Format.Duration)
	}
	fs.Set(model.FieldDurationSec, duration)

	if audio != nil {
		fs.Set(model.FieldBitrate, int(parseProbeFloat(audio.BitRate)))
		fs.Set(model.FieldSampleRate, int(parseProbeFloat(audio.SampleRate)))
		fs.Set(model.FieldChannels, audio.Channels)
	}
	if !fs.HasField(model.FieldBitrate) {
		fs.Set(model.FieldBitrate, int(parseProbeFloat(result.Format.BitRate)))
	}

	fs.Set(model.FieldChapters, chapterList(result))
	fs[model.FieldHasCover] = result.hasCoverArt()

	// Descriptive container tags, when present.
	tags := lowerTags(result.Format.Tags)
	fs.Set(model.FieldTitle, tags["title"])
	if artist := firstNonEmpty(tags["artist"], tags["album_artist"], tags["author"]); artist != "" {
		fs.Set(model.FieldAuthors, splitTagNames(artist))
	}
	if narrator := firstNonEmpty(tags["composer"], tags["narrator"], tags["narratedby"]); narrator != "" {
		fs.Set(model.FieldNarrators, splitTagNames(narrator))
	}
	fs.Set(model.FieldPublisher, tags["publisher"])
	fs.Set(model.FieldLanguage, tags["language"])
	if genre := tags["genre"]; genre != "" {
		fs.Set(model.FieldGenres, splitTagNames(genre))
	}

	format := Classify(result, path)
	fs.Set(model.FieldCodec, format.Codec)
	fs.Set(model.FieldEncodingMode, format.EncodingMode)
	fs.Set(model.FieldQualityScore, format.QualityScore)
	fs.Set(model.FieldFormatProvenance, format.Provenance)

	zap.L().Debug("embedded: extracted container metadata",
		zap.String("path", path),
		zap.Float64("duration_sec", duration),
		zap.String("codec", format.Codec),
		zap.Int("fields", len(fs.FieldNames())),
	)

	return fs, nil
}

// chapterList converts probe chapters into the canonical shape, sorted
// by start offset.
func chapterList(result *probeResult) []model.Chapter {
	if len(result.Chapters) == 0 {
		return nil
	}
	chapters := make([]model.Chapter, 0, len(result.Chapters))
	for _, ch := range result.Chapters {
		chapters = append(chapters, model.Chapter{
			Title:    ch.Tags["title"],
			StartSec: parseProbeFloat(ch.StartTime),
		})
	}
	sort.SliceStable(chapters, func(i, j int) bool {
		return chapters[i].StartSec < chapters[j].StartSec
	})
	for i := range chapters {
		chapters[i].Index = i
	}
	return chapters
}

func lowerTags(tags map[string]string) map[string]string {
	out := make(map[string]string, len(tags))
	for k, v := range tags {
		out[strings.ToLower(k)] = strings.TrimSpace(v)
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func splitTagNames(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == ';' || r == '/' || r == '&'
	})
	var names []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			names = append(names, p)
		}
	}
	return names
}
