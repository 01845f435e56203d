// Package extract separates prose from citations and URLs in generated
// answers. Everything here is pure string processing; network validation of
// the extracted URLs lives in the links package.
package extract

import (
	"regexp"
	"strings"
)

// urlPattern matches an HTTP(S) URL up to the first character that cannot
// appear in one. Compiled once at package level for performance.
var urlPattern = regexp.MustCompile("https?://[^\\s<>\"{}|\\\\^`\\[\\]]+")

var (
	// Citation markers in the four shapes generators emit.
	bracketCitation  = regexp.MustCompile(`\[\d+\]`)
	cornerCitation   = regexp.MustCompile(`【[^】]*】`)
	parenCitation    = regexp.MustCompile(`\(\d+\)`)
	compoundCitation = regexp.MustCompile(`\[\d+:\d+[^\]]*\]`)

	boldSpan    = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicSpan  = regexp.MustCompile(`\*(.*?)\*`)
	codeSpan    = regexp.MustCompile("`(.*?)`")
	headingMark = regexp.MustCompile(`(?m)^#{1,6}\s*`)

	numberedItem = regexp.MustCompile(`(?m)^\d+\.\s*`)
	bulletItem   = regexp.MustCompile(`(?m)^\s*[-•]\s*`)

	blankLines = regexp.MustCompile(`\n\s*\n`)
	spaceRuns  = regexp.MustCompile(`\s+`)
)

// closingPhrases are boilerplate call-to-action endings stripped only when
// they are the last non-whitespace content of the answer.
var closingPhrases = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\s*References?:\s*$`),
	regexp.MustCompile(`(?i)\s*For more information,?\s*see:\s*$`),
	regexp.MustCompile(`(?i)\s*For more information,?\s*visit:\s*$`),
	regexp.MustCompile(`(?i)\s*For more details,?\s*see:\s*$`),
	regexp.MustCompile(`(?i)\s*Learn more:\s*$`),
	regexp.MustCompile(`(?i)\s*Learn more at:\s*$`),
	regexp.MustCompile(`(?i)\s*More information:\s*$`),
	regexp.MustCompile(`(?i)\s*Additional resources:\s*$`),
}

// markdownLink matches [text](url) and captures the URL.
var markdownLink = regexp.MustCompile(`\[.*?\]\((https?://[^)]+)\)`)

// plainURL is the lenient variant used when harvesting URLs for link
// validation; it stops at whitespace or a closing parenthesis.
var plainURL = regexp.MustCompile(`https?://[^\s)]+`)

// trailingPunct trims sentence punctuation that the URL grammar swallowed.
var trailingPunct = regexp.MustCompile(`[.,;!?]+$`)

// Extract removes URLs, citation markers, and markdown formatting from a
// generated answer. It returns the cleaned prose and the URLs in order of
// first appearance. URLs are left exactly as matched, trailing punctuation
// included; duplicates are retained (the orchestrator dedups via set union).
// Extract is deterministic and idempotent on its own output.
func Extract(text string) (string, []string) {
	if text == "" {
		return "", nil
	}

	urls := urlPattern.FindAllString(text, -1)

	// URL removal comes first so citation-looking fragments embedded in a
	// URL are never separately stripped.
	clean := urlPattern.ReplaceAllString(text, "")

	clean = bracketCitation.ReplaceAllString(clean, "")
	clean = cornerCitation.ReplaceAllString(clean, "")
	clean = parenCitation.ReplaceAllString(clean, "")
	clean = compoundCitation.ReplaceAllString(clean, "")

	clean = boldSpan.ReplaceAllString(clean, "$1")
	clean = italicSpan.ReplaceAllString(clean, "$1")
	clean = codeSpan.ReplaceAllString(clean, "$1")
	clean = headingMark.ReplaceAllString(clean, "")

	clean = numberedItem.ReplaceAllString(clean, "")
	clean = bulletItem.ReplaceAllString(clean, "")

	for _, p := range closingPhrases {
		clean = p.ReplaceAllString(clean, "")
	}

	clean = blankLines.ReplaceAllString(clean, " ")
	clean = spaceRuns.ReplaceAllString(clean, " ")
	clean = strings.TrimSpace(clean)

	return clean, urls
}

// CitedURLs harvests URLs for link validation: markdown links and plain
// URLs, deduplicated in order of first appearance, with trailing sentence
// punctuation trimmed. This is the flavor fed to the link checker; Extract
// keeps URLs verbatim for the documentation list.
func CitedURLs(text string) []string {
	var out []string
	seen := make(map[string]bool)

	add := func(u string) {
		u = trailingPunct.ReplaceAllString(u, "")
		if u == "" || seen[u] {
			return
		}
		seen[u] = true
		out = append(out, u)
	}

	for _, m := range markdownLink.FindAllStringSubmatch(text, -1) {
		add(m[1])
	}
	for _, u := range plainURL.FindAllString(text, -1) {
		add(u)
	}
	return out
}
