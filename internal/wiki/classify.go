// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package wiki

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/ambiguity-engine/pkg/types"
)

// HasDisambigMarker reports whether the document contains the
// disambiguation notice container with the given id.
func HasDisambigMarker(doc *goquery.Document, markerID string) bool {
	if markerID == "" {
		return false
	}
	return doc.Find("#"+markerID).Length() > 0
}

// TitleHasDisambigPhrase reports whether the document title contains the
// localized disambiguation phrase.
func TitleHasDisambigPhrase(doc *goquery.Document, phrase string) bool {
	if phrase == "" {
		return false
	}
	return strings.Contains(doc.Find("title").First().Text(), phrase)
}

// Classify decides between a disambiguation page and an article. Either
// signal is enough; a page with neither is an article. NotFound is never
// returned here: the fetch step reports missing pages.
func Classify(doc *goquery.Document, site types.SiteConfig) types.PageKind {
	if HasDisambigMarker(doc, site.DisambigMarkerID) || TitleHasDisambigPhrase(doc, site.DisambigTitlePhrase) {
		return types.DisambiguationPage
	}
	return types.ArticlePage
}
