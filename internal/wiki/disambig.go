// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package wiki

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/pdiddy/ambiguity-engine/internal/textclean"
	"github.com/pdiddy/ambiguity-engine/pkg/types"
)

// contextCutset is trimmed from both ends of the text that accompanies a
// link in a list item.
const contextCutset = " \t\r\n:,-–•"

// section is a second-level heading and the list that follows it.
type section struct {
	title string
	list  *goquery.Selection
}

// ExtractCandidates walks the content container of a disambiguation page
// and returns its candidates in document order. Items of top-level lists
// come first; items of lists that follow a second-level heading come after
// them, labelled with the heading. The result is not capped.
func ExtractCandidates(doc *goquery.Document, site types.SiteConfig) []types.Candidate {
	content := doc.Find("#" + site.ContentID).First()
	if content.Length() == 0 {
		return nil
	}

	sections := findSections(content)
	sectioned := make(map[*html.Node]bool, len(sections))
	for _, s := range sections {
		sectioned[s.list.Get(0)] = true
	}

	var candidates []types.Candidate

	// Flat pass.
	content.Find("ul li").Each(func(_ int, item *goquery.Selection) {
		if inSectionedList(item, sectioned) {
			return
		}
		link := item.Find("a[href]").First()
		if link.Length() == 0 {
			return
		}
		label := joinedText(link, " ")
		if note := itemContext(item, label); note != "" {
			label = fmt.Sprintf("%s (%s)", label, note)
		}
		href, _ := link.Attr("href")
		candidates = append(candidates, types.Candidate{
			Label: label,
			Link:  ResolveLink(site.Origin, href),
		})
	})

	// Sectioned pass.
	for _, s := range sections {
		s.list.Find("li").Each(func(_ int, item *goquery.Selection) {
			link := item.Find("a[href]").First()
			if link.Length() == 0 {
				return
			}
			href, _ := link.Attr("href")
			candidates = append(candidates, types.Candidate{
				Label: fmt.Sprintf("%s (%s)", joinedText(link, ""), s.title),
				Link:  ResolveLink(site.Origin, href),
			})
		})
	}

	return candidates
}

// findSections returns, for every second-level heading that is a direct
// child of a parser output block, the first sibling list that follows it
// before the next second-level heading. Headings appear either bare or
// wrapped in <div class="mw-heading mw-heading2">.
func findSections(content *goquery.Selection) []section {
	blocks := content.Find(".mw-parser-output")
	if blocks.Length() == 0 {
		blocks = content
	}

	var sections []section
	blocks.Each(func(_ int, block *goquery.Selection) {
		block.Children().Each(func(_ int, child *goquery.Selection) {
			heading := headingOf(child)
			if heading == nil {
				return
			}
			title := textclean.Clean(heading.Text())
			child.NextAll().EachWithBreak(func(_ int, sib *goquery.Selection) bool {
				if headingOf(sib) != nil {
					return false
				}
				if goquery.NodeName(sib) == "ul" {
					sections = append(sections, section{title: title, list: sib})
					return false
				}
				return true
			})
		})
	})
	return sections
}

// headingOf returns the h2 that sel is or wraps, or nil.
func headingOf(sel *goquery.Selection) *goquery.Selection {
	switch goquery.NodeName(sel) {
	case "h2":
		return sel
	case "div":
		if sel.HasClass("mw-heading") || sel.HasClass("mw-heading2") {
			if h2 := sel.ChildrenFiltered("h2"); h2.Length() > 0 {
				return h2.First()
			}
		}
	}
	return nil
}

// inSectionedList reports whether item belongs to one of the section lists,
// directly or through a nested list.
func inSectionedList(item *goquery.Selection, sectioned map[*html.Node]bool) bool {
	for _, n := range item.ParentsFiltered("ul").Nodes {
		if sectioned[n] {
			return true
		}
	}
	return false
}

// itemContext returns the text of item outside its link, without nested
// lists, normalized and trimmed of separators.
func itemContext(item *goquery.Selection, linkText string) string {
	own := item.Clone()
	own.Find("ul, ol").Remove()
	rest := strings.ReplaceAll(joinedText(own, " "), linkText, "")
	return strings.Trim(textclean.Clean(rest), contextCutset)
}

// joinedText concatenates the trimmed text nodes under sel with sep,
// skipping empty ones. Flat-list labels join with a space; section labels
// join with no separator.
func joinedText(sel *goquery.Selection, sep string) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return strings.Join(parts, sep)
}

// ResolveLink percent-decodes href and prefixes it with origin. Links that
// are already absolute are returned decoded but otherwise unchanged.
func ResolveLink(origin, href string) string {
	decoded, err := url.PathUnescape(href)
	if err != nil {
		decoded = href
	}
	if strings.HasPrefix(decoded, "http://") || strings.HasPrefix(decoded, "https://") {
		return decoded
	}
	if strings.HasPrefix(decoded, "//") {
		if u, err := url.Parse(origin); err == nil && u.Scheme != "" {
			return u.Scheme + ":" + decoded
		}
	}
	return strings.TrimRight(origin, "/") + decoded
}
