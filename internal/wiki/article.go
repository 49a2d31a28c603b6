// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package wiki

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/ambiguity-engine/internal/textclean"
	"github.com/pdiddy/ambiguity-engine/pkg/types"
)

const ellipsis = "..."

// ErrNoContent is returned by CheckContent when an article page lacks the
// main content container.
var ErrNoContent = errors.New("no content container")

// CheckContent reports an article page without the content container as
// ErrNoContent. Such a page is usually an error or maintenance page served
// with a success status, so it is treated as a processing failure and
// fetched again. Disambiguation pages are never rejected: a missing
// container there yields no candidates.
func CheckContent(doc *goquery.Document, site types.SiteConfig) error {
	if Classify(doc, site) == types.DisambiguationPage {
		return nil
	}
	if doc.Find("#"+site.ContentID).Length() == 0 {
		return fmt.Errorf("%w: #%s", ErrNoContent, site.ContentID)
	}
	return nil
}

// ExtractSummary returns the first direct-child paragraph of the content
// container whose cleaned text is longer than limits.MinParagraphLength
// runes, truncated to limits.SummaryLimit runes plus "..." when longer.
// Paragraphs nested in infoboxes, tables or notices are never considered.
// It returns types.SummaryNotAvailable when no paragraph qualifies.
func ExtractSummary(doc *goquery.Document, site types.SiteConfig, limits types.ExtractionLimits) string {
	container := articleContainer(doc, site.ContentID)
	if container.Length() == 0 {
		return types.SummaryNotAvailable
	}

	summary := types.SummaryNotAvailable
	container.ChildrenFiltered("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		text := textclean.Clean(p.Text())
		if utf8.RuneCountInString(text) <= limits.MinParagraphLength {
			return true
		}
		summary = Truncate(text, limits.SummaryLimit)
		return false
	})
	return summary
}

// articleContainer returns the element whose children are the article
// paragraphs. Current MediaWiki output nests them in .mw-parser-output
// under the content container; older output has them directly under it.
func articleContainer(doc *goquery.Document, contentID string) *goquery.Selection {
	content := doc.Find("#" + contentID).First()
	if output := content.ChildrenFiltered(".mw-parser-output").First(); output.Length() > 0 {
		return output
	}
	return content
}

// Truncate cuts text to limit runes and appends "..." when it was longer.
// A non-positive limit disables truncation.
func Truncate(text string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return string(runes[:limit]) + ellipsis
}
