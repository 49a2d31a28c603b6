// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"strings"
	"time"
)

// Sentinel strings written in place of candidate or summary text.
const (
	NoDisambiguationFound = "No disambiguation found"
	SummaryNotAvailable   = "Summary not available"
	PageNotFound          = "Page not found"
)

// Row status values, matching the Status column of the entity sheet.
const (
	StatusSuccess = "Success"
	StatusFailed  = "Failed"
)

// listSeparator joins meanings and links in the rendered columns.
const listSeparator = ";\n"

// Entity is one row of the entity list.
type Entity struct {
	// Index is the stable position of the entity in the list.
	Index int `json:"index" yaml:"index"`

	// Name is the mention to resolve, e.g. "ঢাকা".
	Name string `json:"name" yaml:"name"`

	// Processed reports whether a previous run already recorded a result.
	Processed bool `json:"processed" yaml:"processed"`
}

// PageKind is the classification of a fetched page.
type PageKind int

const (
	ArticlePage PageKind = iota
	DisambiguationPage
	NotFound
)

func (k PageKind) String() string {
	switch k {
	case ArticlePage:
		return "article"
	case DisambiguationPage:
		return "disambiguation"
	case NotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Candidate is one referent listed on a disambiguation page.
type Candidate struct {
	// Label is the link text, optionally followed by a parenthesized
	// context phrase or section title.
	Label string `json:"label" yaml:"label"`

	// Link is the absolute URL of the referent's page.
	Link string `json:"link" yaml:"link"`
}

// ResultKind names which shape of AmbiguityResult is populated.
type ResultKind string

const (
	ResultDisambiguated ResultKind = "disambiguated"
	ResultArticle       ResultKind = "article"
	ResultFailure       ResultKind = "failure"
)

// AmbiguityResult is the outcome of resolving one entity. Exactly one of
// Candidates (disambiguated), Summary/Link (article) or Failure is
// meaningful, selected by Kind.
type AmbiguityResult struct {
	Kind       ResultKind  `json:"kind" yaml:"kind"`
	Candidates []Candidate `json:"candidates,omitempty" yaml:"candidates,omitempty"`
	Summary    string      `json:"summary,omitempty" yaml:"summary,omitempty"`
	Link       string      `json:"link,omitempty" yaml:"link,omitempty"`
	Failure    *Failure    `json:"failure,omitempty" yaml:"failure,omitempty"`
}

// Disambiguated builds a disambiguation result.
func Disambiguated(candidates []Candidate) AmbiguityResult {
	return AmbiguityResult{Kind: ResultDisambiguated, Candidates: candidates}
}

// Article builds an article result.
func Article(summary, link string) AmbiguityResult {
	return AmbiguityResult{Kind: ResultArticle, Summary: summary, Link: link}
}

// Failed builds a failure result.
func Failed(f *Failure) AmbiguityResult {
	return AmbiguityResult{Kind: ResultFailure, Failure: f}
}

// IsFailure reports whether the result carries a failure.
func (r AmbiguityResult) IsFailure() bool {
	return r.Kind == ResultFailure
}

// Status returns the row status written next to the result.
func (r AmbiguityResult) Status() string {
	if r.IsFailure() {
		return StatusFailed
	}
	return StatusSuccess
}

// Meanings renders the "Ambiguity Data" column: candidate labels joined by
// ";\n", the article summary, or the failure detail. A disambiguation page
// with no candidates renders as NoDisambiguationFound.
func (r AmbiguityResult) Meanings() string {
	switch r.Kind {
	case ResultDisambiguated:
		if len(r.Candidates) == 0 {
			return NoDisambiguationFound
		}
		labels := make([]string, len(r.Candidates))
		for i, c := range r.Candidates {
			labels[i] = c.Label
		}
		return strings.Join(labels, listSeparator)
	case ResultArticle:
		return r.Summary
	case ResultFailure:
		if r.Failure == nil {
			return ""
		}
		return r.Failure.Detail
	default:
		return ""
	}
}

// Links renders the "Source Links" column. It is empty for failures and
// for disambiguation pages without candidates.
func (r AmbiguityResult) Links() string {
	switch r.Kind {
	case ResultDisambiguated:
		links := make([]string, len(r.Candidates))
		for i, c := range r.Candidates {
			links[i] = c.Link
		}
		return strings.Join(links, listSeparator)
	case ResultArticle:
		return r.Link
	default:
		return ""
	}
}

// Record is a stored entity together with its latest result.
type Record struct {
	Entity    `yaml:",inline"`
	Status    string          `json:"status" yaml:"status"`
	Result    AmbiguityResult `json:"result" yaml:"result"`
	UpdatedAt time.Time       `json:"updated_at" yaml:"updated_at"`
}
