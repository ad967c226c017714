// Package pathinfo parses the canonical audiobook naming convention into
// a raw field set. The grammar, in order:
//
//	Title - vol_NN (YYYY) (Author) {ASIN.XXXXXXXXXX} [uploader]
//
// Every token is optional. Unrecognizable segments are omitted rather
// than errored; a path with no recognizable tokens still yields a title
// from the raw name stem.
package pathinfo

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/quillaudio/quill/internal/model"
	"github.com/quillaudio/quill/internal/source"
)

// Precompiled at package level to avoid per-call recompilation.
var (
	reASIN     = regexp.MustCompile(`\{ASIN\.([A-Za-z0-9]{10})\}`)
	reUploader = regexp.MustCompile(`\[([^\[\]]+)\]`)
	reVolume   = regexp.MustCompile(`(?i)\bvol[._ ]?(\d+(?:\.\d+)?)\b`)
	reParen    = regexp.MustCompile(`\(([^()]*)\)`)
	reYear     = regexp.MustCompile(`^\d{4}$`)

	audioExtensions = map[string]bool{
		".m4b": true, ".m4a": true, ".mp3": true, ".flac": true,
		".ogg": true, ".opus": true, ".aac": true, ".wav": true,
	}
)

// PathInfo extracts metadata from the item's directory or file name.
type PathInfo struct{}

// New creates the path parser source.
func New() *PathInfo {
	return &PathInfo{}
}

// Name returns the source identifier.
func (p *PathInfo) Name() string {
	return model.SourcePathInfo
}

// Extract parses the naming convention out of req.Path. The only error
// condition is an unreadable path; malformed names degrade to a field
// set with just the source marker and a best-effort title.
func (p *PathInfo) Extract(_ context.Context, req source.Request) (model.RawFieldSet, error) {
	if _, err := os.Stat(req.Path); err != nil {
		return nil, &model.SourceUnreadableError{Source: p.Name(), Path: req.Path, Err: err}
	}

	fs := model.NewRawFieldSet(model.SourcePathInfo)
	Parse(stem(req.Path), fs)
	return fs, nil
}

// Parse fills fs from a bare name (no directory, no extension). Exposed
// separately so callers can parse candidate names without touching the
// filesystem.
func Parse(name string, fs model.RawFieldSet) {
	rest := name

	// Braced external identifier.
	if m := reASIN.FindStringSubmatch(rest); m != nil {
		fs.Set(model.FieldASIN, strings.ToUpper(m[1]))
		rest = strings.Replace(rest, m[0], "", 1)
	}

	// Bracketed uploader tag.
	if m := reUploader.FindStringSubmatch(rest); m != nil {
		fs.Set(model.FieldUploaderTag, strings.TrimSpace(m[1]))
		rest = strings.Replace(rest, m[0], "", 1)
	}

	// Series volume marker.
	if m := reVolume.FindStringSubmatch(rest); m != nil {
		fs.Set(model.FieldVolume, m[1])
		rest = strings.Replace(rest, m[0], "", 1)
	}

	// Parenthesized year and author. The year is the 4-digit group; any
	// other group is taken as the author.
	for _, m := range reParen.FindAllStringSubmatch(rest, -1) {
		inner := strings.TrimSpace(m[1])
		if reYear.MatchString(inner) {
			if year, err := strconv.Atoi(inner); err == nil {
				fs.Set(model.FieldYear, year)
			}
		} else if inner != "" && !fs.HasField(model.FieldAuthors) {
			fs.Set(model.FieldAuthors, splitNames(inner))
		}
		rest = strings.Replace(rest, m[0], "", 1)
	}

	title, subtitle := splitTitle(rest)
	if title == "" {
		// No recognizable structure at all: fall back to the raw stem.
		title = strings.TrimSpace(name)
	}
	fs.Set(model.FieldTitle, title)
	fs.Set(model.FieldSubtitle, subtitle)
}

// stem returns the base name with a trailing audio extension removed.
func stem(path string) string {
	base := filepath.Base(filepath.Clean(path))
	if ext := strings.ToLower(filepath.Ext(base)); audioExtensions[ext] {
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return base
}

// splitTitle separates "Title - Subtitle" or "Title: Subtitle" leftovers
// after token removal, tolerating stray separators.
func splitTitle(rest string) (title, subtitle string) {
	rest = strings.TrimSpace(rest)
	rest = strings.Trim(rest, "-– ")
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return "", ""
	}

	if before, after, found := strings.Cut(rest, " - "); found {
		return strings.TrimSpace(before), strings.TrimSpace(strings.Trim(after, "-– "))
	}
	if before, after, found := strings.Cut(rest, ": "); found {
		return strings.TrimSpace(before), strings.TrimSpace(after)
	}
	return rest, ""
}

// splitNames splits a multi-author segment on the usual separators.
func splitNames(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == ';' || r == '&'
	})
	var names []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			names = append(names, p)
		}
	}
	return names
}
