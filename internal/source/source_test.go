package source

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillaudio/quill/internal/model"
)

type stubSource struct{ name string }

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Extract(context.Context, Request) (model.RawFieldSet, error) {
	return model.NewRawFieldSet(s.name), nil
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register(ContentTypeAudiobook, &stubSource{name: "first"}, &stubSource{name: "second"})
	r.Register(ContentTypeAudiobook, &stubSource{name: "third"})

	sources, err := r.SourcesFor(ContentTypeAudiobook)
	require.NoError(t, err)
	require.Len(t, sources, 3)
	assert.Equal(t, []string{"first", "second", "third"}, r.SourceNames(ContentTypeAudiobook))
}

func TestRegistryUnknownContentType(t *testing.T) {
	r := NewRegistry()
	_, err := r.SourcesFor("podcast")
	assert.Error(t, err)
	assert.Empty(t, r.SourceNames("podcast"))
}
