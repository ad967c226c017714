// Package engine orchestrates a resolution run: detect the content
// type, fan the registered sources out, merge their field sets under
// the precedence rules, and validate the merged record.
package engine

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/quillaudio/quill/internal/merge"
	"github.com/quillaudio/quill/internal/model"
	"github.com/quillaudio/quill/internal/source"
	"github.com/quillaudio/quill/internal/validate"
)

// audioExtensions is the extension set that marks an item as an
// audiobook for content-type detection.
var audioExtensions = map[string]bool{
	".m4b":  true,
	".m4a":  true,
	".mp3":  true,
	".aac":  true,
	".flac": true,
	".ogg":  true,
	".opus": true,
	".wma":  true,
	".wav":  true,
}

const defaultSourceTimeout = 45 * time.Second

// Engine wires the source registry, merge service, and validator into
// a single resolution pipeline.
type Engine struct {
	registry      *source.Registry
	merger        *merge.Service
	validator     *validate.Validator
	sourceTimeout time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithSourceTimeout bounds each individual source extraction.
func WithSourceTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.sourceTimeout = d
		}
	}
}

// New creates an Engine over a populated registry.
func New(registry *source.Registry, merger *merge.Service, validator *validate.Validator, opts ...Option) *Engine {
	e := &Engine{
		registry:      registry,
		merger:        merger,
		validator:     validator,
		sourceTimeout: defaultSourceTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Result is the full outcome of one resolution run.
type Result struct {
	// RunID identifies this run in logs and the history store.
	RunID string
	// ContentType is the detected content type for the item.
	ContentType string
	// Record is the merged record with per-field provenance.
	Record *model.MergedRecord
	// Validation is the policy verdict for the record. Source and
	// merge warnings are folded into Validation.Warnings.
	Validation model.ValidationResult
	// RawSets holds each source's extracted field set, in registry
	// order, for inspection tooling. Failed sources are absent.
	RawSets []model.RawFieldSet
	// Warnings lists non-fatal degradations: unreachable sources,
	// dropped fields, missing catalog records.
	Warnings []string
}

// DetectContentType classifies an item by its media file extension,
// falling back to the item path itself.
func DetectContentType(req source.Request) (string, error) {
	for _, p := range []string{req.MediaFile, req.Path} {
		if p == "" {
			continue
		}
		if audioExtensions[strings.ToLower(filepath.Ext(p))] {
			return source.ContentTypeAudiobook, nil
		}
	}
	if req.MediaFile == "" && req.Path != "" {
		// Directory items carry no extension; audiobooks are the only
		// content type shipped, so a bare directory resolves as one.
		return source.ContentTypeAudiobook, nil
	}
	return "", eris.Errorf("engine: unsupported media type for %s", req.MediaFile)
}

// Resolve runs the pipeline for one item and returns the merged record
// with its validation verdict.
func (e *Engine) Resolve(ctx context.Context, req source.Request) (*model.MergedRecord, model.ValidationResult, error) {
	res, err := e.ResolveWithDetail(ctx, req)
	if err != nil {
		return nil, model.ValidationResult{}, err
	}
	return res.Record, res.Validation, nil
}

// ResolveWithDetail runs the pipeline and additionally returns each
// source's raw field set and the run's warnings.
//
// Source failures degrade rather than abort: a failed source
// contributes no fields and a warning. The run fails outright only
// when the registry has no sources for the content type, the context
// is cancelled, or no source yields a title.
func (e *Engine) ResolveWithDetail(ctx context.Context, req source.Request) (*Result, error) {
	contentType, err := DetectContentType(req)
	if err != nil {
		return nil, err
	}

	sources, err := e.registry.SourcesFor(contentType)
	if err != nil {
		return nil, err
	}

	res := &Result{
		RunID:       uuid.NewString(),
		ContentType: contentType,
	}
	log := zap.L().With(zap.String("run_id", res.RunID), zap.String("path", req.Path))
	log.Info("engine: resolving item", zap.Int("sources", len(sources)))

	sets := make([]model.RawFieldSet, len(sources))
	var (
		mu       sync.Mutex
		warnings []string
	)

	// The path source runs first: it is cheap, local, and supplies the
	// catalog identifier the remote source keys on.
	remote := make([]int, 0, len(sources))
	for i, src := range sources {
		if src.Name() != model.SourcePathInfo {
			remote = append(remote, i)
			continue
		}
		fs, err := e.extract(ctx, src, req)
		if err != nil {
			warnings = append(warnings, sourceWarning(src.Name(), err))
			continue
		}
		sets[i] = fs
		if req.ASIN == "" {
			if asin, ok := fs[model.FieldASIN].(string); ok {
				req.ASIN = asin
			}
		}
	}

	// Remote failures, including caller cancellation, degrade to
	// warnings: the run proceeds on whatever sets were obtained.
	var g errgroup.Group
	for _, i := range remote {
		i := i
		src := sources[i]
		g.Go(func() error {
			fs, err := e.extract(ctx, src, req)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				warnings = append(warnings, sourceWarning(src.Name(), err))
				return nil
			}
			sets[i] = fs
			return nil
		})
	}
	_ = g.Wait()

	populated := make([]model.RawFieldSet, 0, len(sets))
	for _, fs := range sets {
		if fs != nil {
			populated = append(populated, fs)
		}
	}
	if len(populated) == 0 {
		return nil, eris.Wrapf(model.ErrNoIdentity, "engine: every source failed for %s", req.Path)
	}

	record, mergeWarnings, err := e.merger.Merge(contentType, populated)
	if err != nil {
		return nil, eris.Wrap(err, "engine: merge")
	}
	warnings = append(warnings, mergeWarnings...)

	if !record.Has(model.FieldTitle) {
		return nil, eris.Wrapf(model.ErrNoIdentity, "engine: %s", req.Path)
	}

	validation := e.validator.Validate(record)
	validation.Warnings = append(validation.Warnings, warnings...)

	res.Record = record
	res.Validation = validation
	res.RawSets = populated
	res.Warnings = warnings

	log.Info("engine: item resolved",
		zap.Bool("valid", validation.Valid),
		zap.Float64("completeness", validation.Completeness),
		zap.Int("warnings", len(validation.Warnings)))
	return res, nil
}

// extract runs one source under the per-source timeout.
func (e *Engine) extract(ctx context.Context, src source.Source, req source.Request) (model.RawFieldSet, error) {
	ctx, cancel := context.WithTimeout(ctx, e.sourceTimeout)
	defer cancel()
	return src.Extract(ctx, req)
}

// sourceWarning phrases a source failure for the run's warning list.
func sourceWarning(name string, err error) string {
	switch {
	case errors.Is(err, model.ErrCatalogNotFound):
		return fmt.Sprintf("%s: no catalog record for item", name)
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Sprintf("%s: source unavailable: timed out", name)
	case errors.Is(err, context.Canceled):
		return fmt.Sprintf("%s: source unavailable: cancelled", name)
	default:
		return fmt.Sprintf("%s: source unavailable: %s", name, err)
	}
}
