// Package source defines the extraction contract every metadata source
// implements and the registry mapping content types to their ordered
// source lists.
package source

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/quillaudio/quill/internal/model"
)

// ContentTypeAudiobook is the only content type shipped today; the
// registry keeps the pipeline open to others.
const ContentTypeAudiobook = "audiobook"

// Request carries everything a source might need to extract fields for
// one item. Each source uses the parts relevant to it and ignores the
// rest.
type Request struct {
	// Path is the item path as given by the caller (directory or file).
	Path string
	// MediaFile is the primary media file within the item, when known.
	MediaFile string
	// ASIN is the external catalog identifier, when given or derived.
	ASIN string
}

// Source extracts a RawFieldSet for an item. Implementations never
// panic on malformed input: unparseable segments are omitted and only
// genuine failures (unreadable files, failed lookups) return errors.
type Source interface {
	// Name returns the stable source identifier used in precedence
	// rules and provenance entries.
	Name() string
	// Extract produces this source's field set for the item.
	Extract(ctx context.Context, req Request) (model.RawFieldSet, error)
}

// Registry maps content types to ordered source lists. Registration
// happens at startup; lookups afterward are read-only.
type Registry struct {
	byType map[string][]Source
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byType: make(map[string][]Source)}
}

// Register appends sources for a content type, preserving order.
func (r *Registry) Register(contentType string, sources ...Source) {
	r.byType[contentType] = append(r.byType[contentType], sources...)
}

// SourcesFor returns the ordered source list for a content type.
func (r *Registry) SourcesFor(contentType string) ([]Source, error) {
	sources, ok := r.byType[contentType]
	if !ok || len(sources) == 0 {
		return nil, eris.Errorf("source: no sources registered for content type %q", contentType)
	}
	return sources, nil
}

// SourceNames returns the identifiers registered for a content type,
// used to validate precedence tables at startup.
func (r *Registry) SourceNames(contentType string) []string {
	sources := r.byType[contentType]
	names := make([]string, 0, len(sources))
	for _, s := range sources {
		names = append(names, s.Name())
	}
	return names
}
