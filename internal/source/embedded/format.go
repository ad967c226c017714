package embedded

import (
	"path/filepath"
	"strings"
)

// Format provenance markers: whether the classification was read from
// container metadata or inferred from the file extension as a fallback.
const (
	ProvenanceContainer = "container"
	ProvenanceExtension = "extension"
)

// Encoding modes.
const (
	EncodingCBR = "cbr"
	EncodingVBR = "vbr"
)

// Classification describes the audio format of a file.
type Classification struct {
	Codec        string
	EncodingMode string
	QualityScore float64
	Provenance   string
}

var losslessCodecs = map[string]bool{
	"flac": true, "alac": true, "wavpack": true, "ape": true,
	"pcm_s16le": true, "pcm_s24le": true, "pcm_s32le": true,
	"pcm_f32le": true, "truehd": true,
}

// extensionCodecs maps file extensions to the codec they imply, used
// only when the container reports nothing.
var extensionCodecs = map[string]string{
	".flac": "flac",
	".m4b":  "aac",
	".m4a":  "aac",
	".aac":  "aac",
	".mp3":  "mp3",
	".ogg":  "vorbis",
	".opus": "opus",
	".wav":  "pcm_s16le",
}

// standardCBRRates are the common constant MP3/AAC bitrates in bits/s.
// A stream bitrate landing on one of these suggests constant-rate
// encoding; anything else is treated as VBR.
var standardCBRRates = map[int64]bool{
	32000: true, 40000: true, 48000: true, 56000: true, 64000: true,
	80000: true, 96000: true, 112000: true, 128000: true, 160000: true,
	192000: true, 224000: true, 256000: true, 320000: true,
}

// Classify determines codec, encoding mode, and a banded quality score
// in [0,1] for the probed file. Lossless codecs always score 1.0; lossy
// scores descend by bitrate band. When the container reports no codec,
// the extension supplies a fallback guess and the provenance says so.
func Classify(result *probeResult, path string) Classification {
	c := Classification{Provenance: ProvenanceContainer}

	var bitrate int64
	if audio := result.firstAudioStream(); audio != nil {
		c.Codec = strings.ToLower(audio.CodecName)
		bitrate = int64(parseProbeFloat(audio.BitRate))
	}
	if bitrate == 0 {
		bitrate = int64(parseProbeFloat(result.Format.BitRate))
	}

	if c.Codec == "" {
		ext := strings.ToLower(filepath.Ext(path))
		if codec, ok := extensionCodecs[ext]; ok {
			c.Codec = codec
			c.Provenance = ProvenanceExtension
		}
	}

	if losslessCodecs[c.Codec] {
		c.EncodingMode = EncodingCBR
		c.QualityScore = 1.0
		return c
	}

	c.EncodingMode = EncodingVBR
	if standardCBRRates[bitrate] {
		c.EncodingMode = EncodingCBR
	}
	c.QualityScore = lossyQualityBand(bitrate)
	return c
}

// lossyQualityBand maps a lossy bitrate to a quality band.
func lossyQualityBand(bitrate int64) float64 {
	switch {
	case bitrate >= 256000:
		return 0.9
	case bitrate >= 128000:
		return 0.7
	case bitrate >= 64000:
		return 0.5
	case bitrate > 0:
		return 0.3
	default:
		// No bitrate reported at all.
		return 0.1
	}
}
