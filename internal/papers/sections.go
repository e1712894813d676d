package papers

import (
	"regexp"
	"strings"
)

// sectionPatterns are the standard academic headings, checked
// case-insensitively. Order matters: earlier names win when two overlap.
var sectionPatterns = []string{
	"abstract",
	"introduction",
	"background",
	"related work",
	"literature review",
	"preliminaries",
	"problem statement",
	"methodology",
	"methods",
	"method",
	"proposed method",
	"proposed approach",
	"analytical model",
	"system model",
	"architecture",
	"system design",
	"implementation",
	"experiments",
	"experimental setup",
	"experimental setups",
	"experimental design",
	"evaluation",
	"evaluation results",
	"datasets",
	"datasets and metrics",
	"results",
	"performance analysis",
	"discussion",
	"conclusion",
	"conclusions",
	"future work",
	"summary",
	"acknowledgments",
	"references",
}

// numberedHeaderRe matches headers like "1. Introduction" or
// "2.3 System Model" on their own line. Group 2 is the title text.
var numberedHeaderRe = regexp.MustCompile(`(?:\n|^)((?:\d+\.)*\d+\.?\s+([A-Z][A-Za-z\s]{3,60}))\s*(?:\n|$)`)

var (
	keywordRes  = make(map[string]*regexp.Regexp, len(sectionPatterns))
	boundaryRes = make(map[string]*regexp.Regexp, len(sectionPatterns))
)

func init() {
	for _, name := range sectionPatterns {
		quoted := regexp.QuoteMeta(name)
		keywordRes[name] = regexp.MustCompile(`(?i)(?:\n|^)\s*(?:\d+\.?\s*)?` + quoted + `\s*(?:\n|$)`)
		boundaryRes[name] = regexp.MustCompile(`(?i)\n\s*(?:\d+\.?\s*)?` + quoted + `\s*(?:\n|$)`)
	}
}

type discoveredHeader struct {
	title   string
	content string
	start   int
}

// DetectSections segments a paper into its logical parts. It first collects
// numbered headers of any title, then anchors the standard academic
// sections by keyword, folds in numbered headers that match nothing known,
// and finally recovers an Abstract from the dense text before the first
// header when no explicit one was found.
func DetectSections(text string) map[string]string {
	sections := make(map[string]string)
	discovered := findNumberedHeaders(text)

	for _, name := range sectionPatterns {
		loc := keywordRes[name].FindStringIndex(text)
		if loc == nil {
			continue
		}
		start := loc[1]

		// The section runs until the next known heading or numbered
		// header, whichever comes first.
		next := len(text)
		for _, other := range sectionPatterns {
			if other == name {
				continue
			}
			if m := boundaryRes[other].FindStringIndex(text[start:]); m != nil && start+m[0] < next {
				next = start + m[0]
			}
		}
		for _, dh := range discovered {
			if dh.start > loc[0] && dh.start < next {
				next = dh.start
			}
		}

		if content := strings.TrimSpace(text[start:next]); content != "" {
			sections[titleCase(name)] = content
		}
	}

	// Numbered headers whose title matches no known section get kept
	// under their own name.
	for _, dh := range discovered {
		titleLower := strings.ToLower(dh.title)
		isNew := true
		for key := range sections {
			keyLower := strings.ToLower(key)
			if strings.Contains(keyLower, titleLower) || strings.Contains(titleLower, keyLower) {
				isNew = false
				break
			}
		}
		if isNew {
			sections[dh.title] = dh.content
		}
	}

	// Papers often open with the abstract as a bare dense paragraph under
	// the title block, with no "Abstract" heading to anchor on.
	if _, ok := sections["Abstract"]; !ok {
		if abstract := fallbackAbstract(text, sections); abstract != "" {
			sections["Abstract"] = abstract
		}
	}

	return sections
}

func findNumberedHeaders(text string) []discoveredHeader {
	matches := numberedHeaderRe.FindAllStringSubmatchIndex(text, -1)

	var headers []discoveredHeader
	for i, m := range matches {
		title := strings.TrimSpace(text[m[4]:m[5]])
		start := m[1]
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}

		content := strings.TrimSpace(text[start:end])
		if content == "" {
			continue
		}
		headers = append(headers, discoveredHeader{
			title:   title,
			content: content,
			start:   m[0],
		})
	}
	return headers
}

// fallbackAbstract takes the text before the first detected section body,
// skips the sparse title and author lines, and returns everything from the
// first dense line on, capped at 30 lines.
func fallbackAbstract(text string, sections map[string]string) string {
	firstHeader := len(text)
	for _, content := range sections {
		if pos := strings.Index(text, content); pos != -1 && pos < firstHeader {
			firstHeader = pos
		}
	}

	var lines []string
	found := false
	for _, line := range strings.Split(text[:firstHeader], "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if len(line) > 60 {
			found = true
		}
		if found {
			lines = append(lines, line)
		}
	}

	if len(lines) > 30 {
		lines = lines[:30]
	}
	return strings.Join(lines, "\n")
}

// titleCase uppercases the first letter of every word, matching the keys
// used for detected sections ("related work" becomes "Related Work").
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
