// Package catalog implements the remote catalog source: an Audnexus
// lookup by ASIN behind a TTL response cache, a shared rate limiter
// (inside the client), and bounded retry with exponential backoff on
// transient failures only.
package catalog

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/quillaudio/quill/internal/cache"
	"github.com/quillaudio/quill/internal/model"
	"github.com/quillaudio/quill/internal/resilience"
	"github.com/quillaudio/quill/internal/sanitize"
	"github.com/quillaudio/quill/internal/source"
	"github.com/quillaudio/quill/pkg/audnexus"
)

// Catalog looks up items in the remote catalog. The cache and the
// client's rate limiter are the only state shared across calls; both are
// safe for concurrent resolutions.
type Catalog struct {
	client  audnexus.Client
	cache   *cache.TTL[model.RawFieldSet]
	retry   resilience.RetryConfig
	timeout time.Duration
}

// Option configures the catalog source.
type Option func(*Catalog)

// WithRetryConfig overrides the retry policy.
func WithRetryConfig(cfg resilience.RetryConfig) Option {
	return func(c *Catalog) {
		c.retry = cfg
	}
}

// WithTimeout bounds each lookup (including retries). Zero disables the
// bound, leaving only the caller's context deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Catalog) {
		c.timeout = d
	}
}

// New creates the catalog source around a client and an explicitly
// injected response cache.
func New(client audnexus.Client, responseCache *cache.TTL[model.RawFieldSet], opts ...Option) *Catalog {
	c := &Catalog{
		client:  client,
		cache:   responseCache,
		retry:   resilience.DefaultRetryConfig(),
		timeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the source identifier.
func (c *Catalog) Name() string {
	return model.SourceCatalog
}

// Extract looks up req.ASIN. A 404-equivalent surfaces as
// model.ErrCatalogNotFound (terminal); network, timeout, and 5xx
// failures are retried per policy and then surfaced as transient.
func (c *Catalog) Extract(ctx context.Context, req source.Request) (model.RawFieldSet, error) {
	if req.ASIN == "" {
		return nil, eris.New("catalog: no external identifier for item")
	}

	if cached, ok := c.cache.Get(req.ASIN); ok {
		zap.L().Debug("catalog: cache hit", zap.String("asin", req.ASIN))
		return cached, nil
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	fs, err := resilience.DoVal(ctx, c.retry, func(ctx context.Context) (model.RawFieldSet, error) {
		return c.fetch(ctx, req.ASIN)
	})
	if err != nil {
		if errors.Is(err, audnexus.ErrNotFound) {
			return nil, eris.Wrapf(model.ErrCatalogNotFound, "catalog: asin %s", req.ASIN)
		}
		return nil, classifyTransient(err)
	}

	c.cache.Put(req.ASIN, fs)
	return fs, nil
}

// fetch performs one lookup attempt: book payload plus the chapter
// endpoint. A missing chapter list is not fatal; the book alone is a
// usable result.
func (c *Catalog) fetch(ctx context.Context, asin string) (model.RawFieldSet, error) {
	book, err := c.client.GetBook(ctx, asin)
	if err != nil {
		return nil, classifyTransient(err)
	}

	fs := bookFieldSet(book)

	chapters, err := c.client.GetChapters(ctx, asin)
	switch {
	case err == nil:
		fs.Set(model.FieldChapters, chapterList(chapters))
	case errors.Is(err, audnexus.ErrNotFound):
		zap.L().Debug("catalog: no chapter data", zap.String("asin", asin))
	default:
		zap.L().Warn("catalog: chapter lookup failed, continuing with book data",
			zap.String("asin", asin),
			zap.Error(err),
		)
	}

	return fs, nil
}

// classifyTransient wraps retryable failures so the retry loop and the
// engine's error taxonomy both recognize them. Not-found and malformed
// requests pass through untouched.
func classifyTransient(err error) error {
	var statusErr *audnexus.StatusError
	if errors.As(err, &statusErr) && resilience.IsTransientHTTPStatus(statusErr.Code) {
		return resilience.NewTransientError(err, statusErr.Code)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return resilience.NewTransientError(err, 0)
	}
	return err
}

// bookFieldSet flattens the catalog book payload. Descriptive lists are
// preserved both as plain string lists and as detailed objects carrying
// the catalog's identifiers.
func bookFieldSet(book *audnexus.Book) model.RawFieldSet {
	fs := model.NewRawFieldSet(model.SourceCatalog)

	fs.Set(model.FieldASIN, book.ASIN)
	fs.Set(model.FieldTitle, book.Title)
	fs.Set(model.FieldSubtitle, book.Subtitle)
	fs.Set(model.FieldPublisher, book.PublisherName)
	fs.Set(model.FieldLanguage, book.Language)
	fs.Set(model.FieldReleaseDate, book.ReleaseDate)

	if len(book.ReleaseDate) >= 4 {
		if year, err := strconv.Atoi(book.ReleaseDate[:4]); err == nil {
			fs.Set(model.FieldYear, year)
		}
	}

	fs.Set(model.FieldAuthors, personNames(book.Authors))
	fs.Set(model.FieldAuthorsDetail, personDetails(book.Authors))
	fs.Set(model.FieldNarrators, personNames(book.Narrators))
	fs.Set(model.FieldNarratorsDetail, personDetails(book.Narrators))

	var genres, tags []string
	for _, g := range book.Genres {
		switch g.Type {
		case "tag":
			tags = append(tags, g.Name)
		default:
			genres = append(genres, g.Name)
		}
	}
	fs.Set(model.FieldGenres, genres)
	fs.Set(model.FieldTags, tags)

	if book.SeriesPrimary != nil {
		fs.Set(model.FieldSeriesName, book.SeriesPrimary.Name)
		fs.Set(model.FieldSeriesPosition, book.SeriesPrimary.Position)
	}

	if book.RuntimeLengthMin > 0 {
		// Catalog runtime is a minute-granularity approximation; the
		// embedded source supplies the authoritative duration.
		fs.Set(model.FieldDurationSec, float64(book.RuntimeLengthMin)*60)
	}

	summary := book.Summary
	if summary == "" {
		summary = book.Description
	}
	if summary != "" {
		fs.Set(model.FieldSummary, sanitize.HTMLToText(summary))
		fs.Set(model.FieldSummaryHTML, summary)
	}

	return fs
}

func personNames(people []audnexus.Person) []string {
	names := make([]string, 0, len(people))
	for _, p := range people {
		if p.Name != "" {
			names = append(names, p.Name)
		}
	}
	return names
}

func personDetails(people []audnexus.Person) []model.Person {
	details := make([]model.Person, 0, len(people))
	for _, p := range people {
		if p.Name != "" {
			details = append(details, model.Person{Name: p.Name, ASIN: p.ASIN})
		}
	}
	return details
}

// chapterList converts millisecond offsets to the canonical
// second-granularity shape.
func chapterList(list *audnexus.ChapterList) []model.Chapter {
	chapters := make([]model.Chapter, 0, len(list.Chapters))
	for i, ch := range list.Chapters {
		chapters = append(chapters, model.Chapter{
			Index:    i,
			Title:    ch.Title,
			StartSec: float64(ch.StartOffsetMs) / 1000,
		})
	}
	return chapters
}
