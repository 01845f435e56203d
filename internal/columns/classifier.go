// Package columns resolves which spreadsheet columns hold the questions,
// the answers to be written, and the documentation links. Classification is
// delegated to an external text-classification capability; parsing its
// reply and the deterministic fallback live here.
package columns

import (
	"strings"
)

// Mapping names the resolved columns. Empty string means the role could not
// be resolved. A sheet is only processable when both the question and the
// answer column resolved.
type Mapping struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Docs     string `json:"docs"`
}

// Usable reports whether a sheet with this mapping can be processed at all.
func (m Mapping) Usable() bool {
	return m.Question != "" && m.Answer != ""
}

// ParseResponse parses the classifier backend's textual contract: three
// lines of the form "<Role> Column: <name-or-NONE>". Names that do not
// match an actual header are treated as unresolved, never invented.
func ParseResponse(response string, headers []string) Mapping {
	return Mapping{
		Question: matchHeader(extractColumnName(response, "Question Column:"), headers),
		Answer:   matchHeader(extractColumnName(response, "Response Column:"), headers),
		Docs:     matchHeader(extractColumnName(response, "Documentation Column:"), headers),
	}
}

func extractColumnName(response, prefix string) string {
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, prefix) {
			continue
		}
		name := strings.TrimSpace(strings.TrimPrefix(line, prefix))
		name = strings.Trim(name, `"'[]`)
		if strings.EqualFold(name, "NONE") {
			return ""
		}
		return name
	}
	return ""
}

// explicitNone reports whether the reply names NONE for the role, as
// opposed to omitting the line or naming an unmatched header.
func explicitNone(response, prefix string) bool {
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, prefix) {
			continue
		}
		name := strings.TrimSpace(strings.TrimPrefix(line, prefix))
		name = strings.Trim(name, `"'[]`)
		return strings.EqualFold(name, "NONE")
	}
	return false
}

func matchHeader(name string, headers []string) string {
	if name == "" {
		return ""
	}
	for _, h := range headers {
		if h == name {
			return h
		}
	}
	return ""
}

// Fallback resolves columns without the classifier: case-insensitive
// keyword match on header names first, then positional defaults for roles
// still open. Headers already claimed by another role are skipped.
func Fallback(headers []string) Mapping {
	kw := keywords()
	var m Mapping
	claimed := make(map[string]bool)

	pick := func(words []string) string {
		for _, h := range headers {
			if claimed[h] {
				continue
			}
			lower := strings.ToLower(h)
			for _, w := range words {
				if strings.Contains(lower, w) {
					claimed[h] = true
					return h
				}
			}
		}
		return ""
	}

	m.Question = pick(kw.ColumnKeywords.Question)
	m.Answer = pick(kw.ColumnKeywords.Answer)
	m.Docs = pick(kw.ColumnKeywords.Documentation)

	// Positional defaults: first unclaimed header per unresolved role, in
	// role order.
	positional := func() string {
		for _, h := range headers {
			if !claimed[h] {
				claimed[h] = true
				return h
			}
		}
		return ""
	}
	if m.Question == "" {
		m.Question = positional()
	}
	if m.Answer == "" {
		m.Answer = positional()
	}
	if m.Docs == "" {
		m.Docs = positional()
	}
	return m
}

// Resolve merges a parsed classifier reply with the fallback: any role the
// classifier left open is filled deterministically. The docs role is
// optional, so a reply naming it NONE keeps it absent rather than filling
// it positionally.
func Resolve(response string, headers []string) Mapping {
	m := ParseResponse(response, headers)
	docsNone := explicitNone(response, "Documentation Column:")
	if m.Question != "" && m.Answer != "" && (m.Docs != "" || docsNone) {
		return m
	}
	fb := Fallback(headers)
	if m.Question == "" {
		m.Question = fb.Question
	}
	if m.Answer == "" {
		m.Answer = fb.Answer
	}
	if m.Docs == "" && !docsNone {
		m.Docs = fb.Docs
	}
	return m
}
