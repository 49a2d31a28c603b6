// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package resolve turns an entity name into an AmbiguityResult: it fetches
// the entity's page with retries, classifies it, and extracts either the
// disambiguation candidates or an article summary.
package resolve

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/pdiddy/ambiguity-engine/internal/wiki"
	"github.com/pdiddy/ambiguity-engine/pkg/types"
)

// Resolver resolves entities against the configured site. It holds no
// per-call state and is safe for concurrent use as long as its Fetcher's
// Sleep is.
type Resolver struct {
	Fetcher *Fetcher
	cfg     types.ResolverConfig
	log     zerolog.Logger
}

// New returns a Resolver that fetches through client.
func New(client *http.Client, cfg types.ResolverConfig, log zerolog.Logger) *Resolver {
	return &Resolver{
		Fetcher: NewFetcher(client, cfg, log),
		cfg:     cfg,
		log:     log.With().Str("component", "resolve").Logger(),
	}
}

// Resolve fetches the page for entity and returns exactly one of a
// disambiguation result (capped at Limits.MaxCandidates), an article
// result paired with the final page URL, or a failure. It never panics on
// page content and never returns an error: failures are values.
func (r *Resolver) Resolve(ctx context.Context, entity string) types.AmbiguityResult {
	page, err := r.Fetcher.Fetch(ctx, entity)
	if err != nil {
		var f *types.Failure
		if !errors.As(err, &f) {
			f = &types.Failure{Kind: types.FailureTransientNetwork, Detail: err.Error()}
		}
		return types.Failed(f)
	}

	kind := wiki.Classify(page.Doc, r.cfg.Site)
	r.log.Debug().
		Str("entity", entity).
		Stringer("kind", kind).
		Str("url", page.FinalURL).
		Str("content_type", page.ContentType).
		Bool("lenient", page.Lenient).
		Msg("classified page")

	switch kind {
	case types.DisambiguationPage:
		return types.Disambiguated(capCandidates(wiki.ExtractCandidates(page.Doc, r.cfg.Site), r.cfg.Limits.MaxCandidates))
	default:
		return types.Article(wiki.ExtractSummary(page.Doc, r.cfg.Site, r.cfg.Limits), page.FinalURL)
	}
}

// capCandidates keeps the first limit candidates. A non-positive limit keeps all.
func capCandidates(c []types.Candidate, limit int) []types.Candidate {
	if limit > 0 && len(c) > limit {
		return c[:limit]
	}
	return c
}
