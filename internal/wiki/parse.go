// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package wiki reads encyclopedia pages: it parses markup, classifies a
// page as a disambiguation index or an article, and extracts candidates
// or a summary from it.
package wiki

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// ErrMalformedMarkup is returned by StrictParser when it refuses a page.
// Callers fall back to LenientParser.
var ErrMalformedMarkup = errors.New("malformed markup")

// StrictParser accepts only well-formed UTF-8 without NUL bytes.
type StrictParser struct{}

// Parse parses body, refusing it with ErrMalformedMarkup when it is not
// valid UTF-8 or contains a NUL byte.
func (StrictParser) Parse(body []byte, _ string) (*goquery.Document, error) {
	if !utf8.Valid(body) {
		return nil, fmt.Errorf("%w: invalid UTF-8", ErrMalformedMarkup)
	}
	if bytes.IndexByte(body, 0) >= 0 {
		return nil, fmt.Errorf("%w: NUL byte in body", ErrMalformedMarkup)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMarkup, err)
	}
	return doc, nil
}

// LenientParser transcodes the body using the declared or sniffed charset,
// replaces invalid sequences, and parses with scripting disabled so that
// <noscript> content stays in the tree.
type LenientParser struct{}

// Parse decodes and parses body. It fails only when the body cannot be read.
func (LenientParser) Parse(body []byte, contentType string) (*goquery.Document, error) {
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		r = bytes.NewReader(body)
	}
	decoded, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("decoding body: %w", err)
	}
	text := strings.ToValidUTF8(string(decoded), "�")
	text = strings.ReplaceAll(text, "\x00", "")

	root, err := html.ParseWithOptions(strings.NewReader(text), html.ParseOptionEnableScripting(false))
	if err != nil {
		return nil, fmt.Errorf("parsing markup: %w", err)
	}
	return goquery.NewDocumentFromNode(root), nil
}

// ParseDocument tries the strict parser first and falls back to the
// lenient one only when the strict parser reports ErrMalformedMarkup.
// fellBack reports whether the lenient parser produced the document.
func ParseDocument(body []byte, contentType string) (doc *goquery.Document, fellBack bool, err error) {
	doc, err = StrictParser{}.Parse(body, contentType)
	if err == nil {
		return doc, false, nil
	}
	if !errors.Is(err, ErrMalformedMarkup) {
		return nil, false, err
	}
	doc, err = LenientParser{}.Parse(body, contentType)
	if err != nil {
		return nil, true, err
	}
	return doc, true, nil
}
