// Package sanitizer repairs near-JSON text emitted by generative models into
// syntactically valid JSON. The repair is structural only; no rule looks at
// the meaning of the content. Rules are ordered, independent and idempotent,
// and sanitization never fails: the output is always some text, even if it
// remains unparsable downstream.
package sanitizer

import (
	"regexp"
	"strings"
	"unicode"
)

// Rule is one named repair heuristic.
type Rule struct {
	Name  string
	Apply func(string) string
}

var (
	fenceTagRE      = regexp.MustCompile(`(?i)^\s*json\b`)
	tripleQuotedRE  = regexp.MustCompile(`(?s)'''.*?'''|""".*?"""`)
	questionFieldRE = regexp.MustCompile(`("question"\s*:\s*")((?:[^"])*)(")`)
	blankLineRE     = regexp.MustCompile(`\n[ \t]*\n`)
	strayStringRE   = regexp.MustCompile(`,\s*"[^"]*"\s*(?:,\s*)?(\})`)
	optionsKeyRE    = regexp.MustCompile(`"options"\s*:\s*`)
)

// DefaultRules is the repair pipeline in application order.
var DefaultRules = []Rule{
	{Name: "strip_formatting", Apply: stripFormatting},
	{Name: "drop_code_blocks", Apply: dropCodeBlocks},
	{Name: "truncate_question_prose", Apply: truncateQuestionProse},
	{Name: "collapse_newlines", Apply: collapseNewlines},
	{Name: "drop_nonprintable", Apply: dropNonPrintable},
	{Name: "drop_stray_strings", Apply: dropStrayStrings},
	{Name: "bracket_options", Apply: bracketOptions},
	{Name: "ensure_array", Apply: ensureArray},
}

// Sanitize applies every repair rule in order.
func Sanitize(raw string) string {
	s := raw
	for _, rule := range DefaultRules {
		s = rule.Apply(s)
	}
	return s
}

// stripFormatting removes backtick and backslash characters outright, plus
// the bare "json" language tag a stripped markdown fence leaves behind.
func stripFormatting(s string) string {
	s = strings.ReplaceAll(s, "`", "")
	s = strings.ReplaceAll(s, "\\", "")
	return fenceTagRE.ReplaceAllString(s, "")
}

// dropCodeBlocks removes balanced triple-quoted blocks (either quote style)
// entirely, content included. These are embedded source code the model was
// told not to emit.
func dropCodeBlocks(s string) string {
	return tripleQuotedRE.ReplaceAllString(s, "")
}

// truncateQuestionProse keeps only the text before an embedded blank-line
// separator inside a "question" value; anything after it is trailing prose.
func truncateQuestionProse(s string) string {
	return questionFieldRE.ReplaceAllStringFunc(s, func(m string) string {
		sub := questionFieldRE.FindStringSubmatch(m)
		value := sub[2]
		if loc := blankLineRE.FindStringIndex(value); loc != nil {
			value = strings.TrimSpace(value[:loc[0]])
		}
		return sub[1] + value + sub[3]
	})
}

// collapseNewlines replaces literal newlines with single spaces; JSON string
// values must not contain raw newlines.
func collapseNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.ReplaceAll(s, "\n", " ")
}

func dropNonPrintable(s string) string {
	return strings.Map(func(r rune) rune {
		if r == ' ' || unicode.IsPrint(r) {
			return r
		}
		return -1
	}, s)
}

// dropStrayStrings removes a trailing key-less string token before a closing
// brace. These are hallucinated fragments, never valid members.
func dropStrayStrings(s string) string {
	return strayStringRE.ReplaceAllString(s, "$1")
}

// bracketOptions wraps an un-bracketed "options" value (a bare list of
// quoted strings) in [ ]. The scan stops before a quoted string that is
// followed by ':' so the next object key is never swallowed into the list.
func bracketOptions(s string) string {
	var b strings.Builder
	i := 0
	for {
		loc := optionsKeyRE.FindStringIndex(s[i:])
		if loc == nil {
			b.WriteString(s[i:])
			return b.String()
		}
		end := i + loc[1]
		b.WriteString(s[i : i+loc[0]])
		b.WriteString(s[i+loc[0] : end])
		rest := s[end:]

		if strings.HasPrefix(rest, "{") {
			i = end
			continue
		}

		if strings.HasPrefix(rest, "[") {
			// Opened but possibly never closed. Rewrite the list with a
			// guaranteed closing bracket when the original one is absent.
			inner := rest[1:]
			lastEnd := scanStringList(inner)
			if lastEnd > 0 {
				p := lastEnd
				for p < len(inner) && (inner[p] == ' ' || inner[p] == '\t') {
					p++
				}
				if p >= len(inner) || inner[p] != ']' {
					b.WriteString("[")
					b.WriteString(inner[:lastEnd])
					b.WriteString("]")
					i = end + 1 + lastEnd
					continue
				}
			}
			i = end
			continue
		}

		lastEnd := scanStringList(rest)
		if lastEnd > 0 {
			b.WriteString("[")
			b.WriteString(rest[:lastEnd])
			b.WriteString("]")
			i = end + lastEnd
		} else {
			i = end
		}
	}
}

// scanStringList returns the end offset of the last quoted string belonging
// to a bare comma-separated list at the start of s, or -1 when s does not
// begin with one.
func scanStringList(s string) int {
	j := 0
	lastEnd := -1
	for {
		for j < len(s) && (s[j] == ' ' || s[j] == '\t') {
			j++
		}
		if j >= len(s) || s[j] != '"' {
			break
		}
		k := strings.IndexByte(s[j+1:], '"')
		if k < 0 {
			break
		}
		strEnd := j + 1 + k + 1

		p := strEnd
		for p < len(s) && (s[p] == ' ' || s[p] == '\t') {
			p++
		}
		if p < len(s) && s[p] == ':' {
			// The string is the next object key, not a list element.
			break
		}
		lastEnd = strEnd
		if p < len(s) && s[p] == ',' {
			j = p + 1
			continue
		}
		break
	}
	return lastEnd
}

// ensureArray makes the overall payload array-delimited.
func ensureArray(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	if !strings.HasPrefix(s, "[") {
		s = "[" + s
	}
	if !strings.HasSuffix(s, "]") {
		s = s + "]"
	}
	return s
}
