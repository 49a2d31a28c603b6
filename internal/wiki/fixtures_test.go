// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package wiki

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/ambiguity-engine/pkg/types"
)

// dhakaLead is the lead paragraph of the article fixture after cleaning.
const dhakaLead = "ঢাকা বাংলাদেশের রাজধানী ও বৃহত্তম শহর। এটি ঢাকা বিভাগের প্রশাসনিক কেন্দ্র এবং দক্ষিণ এশিয়ার অন্যতম প্রধান অর্থনৈতিক ও সাংস্কৃতিক কেন্দ্র।"

// articleHTML mirrors current MediaWiki output for an article: an infobox
// holding its own paragraph, an empty paragraph, a short hatnote-like
// paragraph and then the lead.
const articleHTML = `<!DOCTYPE html>
<html lang="bn"><head><title>ঢাকা - উইকিপিডিয়া</title></head>
<body>
<div id="mw-content-text" class="mw-body-content">
<div class="mw-content-ltr mw-parser-output" lang="bn" dir="ltr">
<table class="infobox"><tbody><tr><td>
<p>এই অনুচ্ছেদটি তথ্যছকের ভেতরে আছে এবং এটি সারাংশ হিসেবে ব্যবহার করা উচিত নয়, যদিও এটি যথেষ্ট দীর্ঘ একটি অনুচ্ছেদ।</p>
</td></tr></tbody></table>
<p class="mw-empty-elt">
</p>
<p>ঢাকা দক্ষিণ এশিয়ার একটি শহর।</p>
<p><b>ঢাকা</b> বাংলাদেশের রাজধানী ও বৃহত্তম শহর।<sup id="cite_ref-1" class="reference"><a href="#cite_note-1">[১]</a></sup> এটি ঢাকা বিভাগের প্রশাসনিক কেন্দ্র এবং দক্ষিণ এশিয়ার অন্যতম প্রধান অর্থনৈতিক ও
সাংস্কৃতিক কেন্দ্র।<sup class="reference"><a href="#cite_note-2">[২]</a></sup></p>
<p>দ্বিতীয় অনুচ্ছেদ যা কখনো সারাংশ হবে না কারণ প্রথম যোগ্য অনুচ্ছেদটি ইতিমধ্যে পাওয়া গেছে এবং নির্বাচন সেখানেই থামে।</p>
</div></div>
</body></html>`

// disambigHTML is a disambiguation page with one flat list of two
// candidates and one section holding a third.
const disambigHTML = `<!DOCTYPE html>
<html lang="bn"><head><title>ঢাকা (দ্ব্যর্থতা নিরসন) - উইকিপিডিয়া</title></head>
<body>
<div id="mw-content-text" class="mw-body-content">
<div class="mw-content-ltr mw-parser-output" lang="bn" dir="ltr">
<p><b>ঢাকা</b> শব্দটি দিয়ে বোঝানো হতে পারে:</p>
<ul>
<li><a href="/wiki/%E0%A6%A2%E0%A6%BE%E0%A6%95%E0%A6%BE" title="ঢাকা">ঢাকা</a>, বাংলাদেশের রাজধানী</li>
<li><a href="/wiki/ঢাকা_বিভাগ" title="ঢাকা বিভাগ">ঢাকা বিভাগ</a></li>
</ul>
<div class="mw-heading mw-heading2"><h2 id="জেলা">জেলা</h2><span class="mw-editsection"><span class="mw-editsection-bracket">[</span><a href="/w/index.php?title=ঢাকা_(দ্ব্যর্থতা_নিরসন)&amp;action=edit&amp;section=1">সম্পাদনা</a><span class="mw-editsection-bracket">]</span></span></div>
<ul>
<li><a href="/wiki/ঢাকা_জেলা" title="ঢাকা জেলা">ঢাকা জেলা</a> – ঢাকা বিভাগের একটি জেলা</li>
</ul>
<div id="disambigbox" class="metadata plainlinks dmbox">
<table><tbody><tr><td>এটি একটি দ্ব্যর্থতা নিরসন পাতা।</td></tr></tbody></table>
</div>
</div></div>
</body></html>`

// legacyDisambigHTML uses the older layout: bare h2 headings with inline
// edit links, no marker box, and the phrase only in the title.
const legacyDisambigHTML = `<html><head><title>বুধ (দ্ব্যর্থতা নিরসন) - উইকিপিডিয়া</title></head>
<body><div id="mw-content-text"><div class="mw-parser-output">
<p><b>বুধ</b> বলতে বোঝাতে পারে:</p>
<h2><span class="mw-headline" id="জ্যোতির্বিজ্ঞান">জ্যোতির্বিজ্ঞান</span><span class="mw-editsection"><span class="mw-editsection-bracket">[</span><a href="/w/index.php?title=x&amp;action=edit&amp;section=1">সম্পাদনা</a><span class="mw-editsection-bracket">]</span></span></h2>
<p>সৌরজগতে:</p>
<ul>
<li><a href="/wiki/বুধ_(গ্রহ)">বুধ (গ্রহ)</a></li>
</ul>
<h2><span class="mw-headline">খালি অংশ</span></h2>
<p>এখানে কোনো তালিকা নেই।</p>
<h2><span class="mw-headline">পুরাণ</span></h2>
<ul>
<li><a href="/wiki/বুধ_(দেবতা)">বুধ (দেবতা)</a></li>
<li>লিংক ছাড়া একটি ভুক্তি</li>
</ul>
</div></div></body></html>`

func mustParse(t *testing.T, markup string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	require.NoError(t, err)
	return doc
}

func testSite() types.SiteConfig {
	return types.DefaultResolverConfig().Site
}

func testLimits() types.ExtractionLimits {
	return types.DefaultResolverConfig().Limits
}
