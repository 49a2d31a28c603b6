// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/pdiddy/ambiguity-engine/internal/httputil"
	"github.com/pdiddy/ambiguity-engine/internal/wiki"
	"github.com/pdiddy/ambiguity-engine/pkg/types"
)

// maxProcessingDetail bounds the detail kept from a processing error.
const maxProcessingDetail = 100

// maxBodyBytes bounds how much of a page is read.
const maxBodyBytes = 16 << 20

// Page is a fetched and parsed encyclopedia page.
type Page struct {
	// ContentType is the response Content-Type header.
	ContentType string

	// FinalURL is the URL after redirects.
	FinalURL string

	// Doc is the parsed document.
	Doc *goquery.Document

	// Lenient reports whether the fallback parser produced Doc.
	Lenient bool
}

// Fetcher performs page fetches with bounded retries.
type Fetcher struct {
	client *http.Client
	cfg    types.ResolverConfig
	log    zerolog.Logger

	// Sleep pauses between attempts. Tests replace it to record pauses.
	Sleep httputil.Sleeper
}

// NewFetcher returns a Fetcher using client for transport.
func NewFetcher(client *http.Client, cfg types.ResolverConfig, log zerolog.Logger) *Fetcher {
	return &Fetcher{
		client: client,
		cfg:    cfg,
		log:    log.With().Str("component", "fetch").Logger(),
		Sleep:  httputil.Sleep,
	}
}

// PageURL returns the page address for entity. The entity is appended
// verbatim apart from stray percent signs, which are escaped; the transport
// percent-encodes the rest when the request is sent.
func PageURL(site types.SiteConfig, entity string) string {
	return strings.TrimRight(site.Origin, "/") + site.PagePath + escapeStrayPercent(entity)
}

// escapeStrayPercent rewrites every "%" not followed by two hex digits as
// "%25". Valid escapes are kept so already-encoded titles round-trip.
func escapeStrayPercent(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && !(i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2])) {
			b.WriteString("%25")
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

// Fetch retrieves and parses the page for entity. The returned error is
// always a *types.Failure:
//
//   - not_found on HTTP 404, after a single attempt;
//   - max_retries_exceeded after the attempt budget is spent on transient
//     or processing failures, carrying the last failure's detail;
//   - cancelled when ctx ends during a request or a backoff pause.
func (f *Fetcher) Fetch(ctx context.Context, entity string) (*Page, error) {
	target := PageURL(f.cfg.Site, entity)
	retry := httputil.NewRetry(f.cfg.Retry.MaxAttempts, f.cfg.Retry.TransientBackoff, f.cfg.Retry.ProcessingBackoff)
	log := f.log.With().Str("entity", entity).Logger()

	for {
		page, outcome, failure := f.attempt(ctx, target)
		if ctx.Err() != nil {
			return nil, cancelled(ctx)
		}

		var act httputil.Action
		retry, act = retry.Next(outcome)

		switch act.Kind {
		case httputil.ActionStop:
			switch retry.State {
			case httputil.Succeeded:
				return page, nil
			case httputil.PermanentlyFailed:
				return nil, failure
			default:
				log.Warn().Int("attempts", retry.Attempt).Str("last_error", failure.Detail).Msg("giving up on entity")
				return nil, &types.Failure{Kind: types.FailureMaxRetriesExceeded, Detail: failure.Detail}
			}

		case httputil.ActionSleep:
			log.Debug().
				Int("attempt", retry.Attempt).
				Int("max_attempts", retry.MaxAttempts).
				Str("kind", string(failure.Kind)).
				Str("error", failure.Detail).
				Dur("backoff", act.Delay).
				Msg("attempt failed, backing off")
			if err := f.Sleep(ctx, act.Delay); err != nil {
				return nil, cancelled(ctx)
			}
			retry, _ = retry.Next(httputil.OutcomeWoke)
		}
	}
}

// attempt makes one request and classifies its outcome. failure is nil
// only on success.
func (f *Fetcher) attempt(ctx context.Context, target string) (*Page, httputil.Outcome, *types.Failure) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		// A URL the transport cannot build will not improve on retry.
		return nil, httputil.OutcomePermanent, types.NewFailure(types.FailureNotFound, "invalid page URL: %v", err)
	}
	if f.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", f.cfg.UserAgent)
	}
	if f.cfg.AcceptLanguage != "" {
		req.Header.Set("Accept-Language", f.cfg.AcceptLanguage)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, httputil.OutcomeTransient, types.NewFailure(types.FailureTransientNetwork, "Connection Error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		io.Copy(io.Discard, resp.Body)
		return nil, httputil.OutcomePermanent, &types.Failure{Kind: types.FailureNotFound, Detail: types.PageNotFound}
	}
	if resp.StatusCode >= http.StatusBadRequest {
		io.Copy(io.Discard, resp.Body)
		return nil, httputil.OutcomeTransient, types.NewFailure(types.FailureTransientHTTP, "HTTP Error %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, httputil.OutcomeTransient, types.NewFailure(types.FailureTransientNetwork, "Connection Error: reading body: %v", err)
	}

	contentType := resp.Header.Get("Content-Type")
	doc, lenient, err := wiki.ParseDocument(body, contentType)
	if err != nil {
		return nil, httputil.OutcomeProcessing, &types.Failure{
			Kind:   types.FailureMarkupProcessing,
			Detail: processingDetail(err),
		}
	}
	if lenient {
		f.log.Debug().Str("url", target).Msg("strict parser rejected markup, used lenient parser")
	}
	if err := wiki.CheckContent(doc, f.cfg.Site); err != nil {
		return nil, httputil.OutcomeProcessing, &types.Failure{
			Kind:   types.FailureMarkupProcessing,
			Detail: processingDetail(err),
		}
	}

	return &Page{
		ContentType: contentType,
		FinalURL:    resp.Request.URL.String(),
		Doc:         doc,
		Lenient:     lenient,
	}, httputil.OutcomeSuccess, nil
}

func processingDetail(err error) string {
	msg := err.Error()
	if r := []rune(msg); len(r) > maxProcessingDetail {
		msg = string(r[:maxProcessingDetail])
	}
	return "Processing Error: " + msg
}

func cancelled(ctx context.Context) *types.Failure {
	err := context.Cause(ctx)
	if err == nil {
		err = ctx.Err()
	}
	detail := "resolution cancelled"
	if err != nil && !errors.Is(err, context.Canceled) {
		detail = fmt.Sprintf("resolution cancelled: %v", err)
	}
	return &types.Failure{Kind: types.FailureCancelled, Detail: detail}
}
