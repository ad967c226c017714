package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/quillaudio/quill/internal/cache"
	"github.com/quillaudio/quill/internal/config"
	"github.com/quillaudio/quill/internal/engine"
	"github.com/quillaudio/quill/internal/mapper"
	"github.com/quillaudio/quill/internal/merge"
	"github.com/quillaudio/quill/internal/model"
	"github.com/quillaudio/quill/internal/resilience"
	"github.com/quillaudio/quill/internal/source"
	"github.com/quillaudio/quill/internal/source/catalog"
	"github.com/quillaudio/quill/internal/source/embedded"
	"github.com/quillaudio/quill/internal/source/pathinfo"
	"github.com/quillaudio/quill/internal/store"
	"github.com/quillaudio/quill/internal/validate"
	"github.com/quillaudio/quill/pkg/audnexus"
)

// buildEngine wires the full resolution pipeline from configuration.
func buildEngine(cfg *config.Config) (*engine.Engine, error) {
	client := audnexus.NewClient(cfg.Catalog.BaseURL,
		audnexus.WithRateLimit(cfg.Catalog.RatePerSec, cfg.Catalog.RateBurst),
		audnexus.WithTimeout(time.Duration(cfg.Catalog.TimeoutSecs)*time.Second),
	)

	responseCache := cache.NewTTL[model.RawFieldSet](
		cfg.Catalog.CacheEntries,
		time.Duration(cfg.Catalog.CacheTTLMins)*time.Minute,
	)

	retry := resilience.DefaultRetryConfig()
	if cfg.Catalog.RetryAttempts > 0 {
		retry.MaxAttempts = cfg.Catalog.RetryAttempts
	}

	registry := source.NewRegistry()
	registry.Register(source.ContentTypeAudiobook,
		pathinfo.New(),
		embedded.New(cfg.Probe.FfprobePath),
		catalog.New(client, responseCache,
			catalog.WithRetryConfig(retry),
			catalog.WithTimeout(time.Duration(cfg.Catalog.TimeoutSecs)*time.Second),
		),
	)

	known := registry.SourceNames(source.ContentTypeAudiobook)

	var (
		rules *model.RuleSet
		err   error
	)
	if cfg.Rules.File != "" {
		rules, err = merge.LoadRuleSet(cfg.Rules.File, known)
	} else {
		rules, err = merge.DefaultRuleSet(known)
	}
	if err != nil {
		return nil, eris.Wrap(err, "load precedence rules")
	}

	policy := validate.DefaultPolicy()
	if cfg.Policy.File != "" {
		policy, err = validate.LoadPolicy(cfg.Policy.File)
		if err != nil {
			return nil, eris.Wrap(err, "load validation policy")
		}
	}

	return engine.New(
		registry,
		merge.New(rules),
		validate.New(policy),
		engine.WithSourceTimeout(time.Duration(cfg.Engine.SourceTimeoutSecs)*time.Second),
	), nil
}

// loadTarget resolves a target name to its field map. The built-in
// generic map is always available.
func loadTarget(cfg *config.Config, name string) (mapper.FieldMap, error) {
	if path, ok := cfg.Targets.Maps[name]; ok {
		return mapper.LoadFieldMap(path)
	}
	if name == "generic" {
		return mapper.Generic(), nil
	}
	return mapper.FieldMap{}, eris.Errorf("unknown target %q", name)
}

// initStore opens and migrates the resolution history database.
func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.NewSQLite(cfg.Store.Path)
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}
