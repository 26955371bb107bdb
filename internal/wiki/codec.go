// Package wiki converts between markdown and the legacy line-oriented wiki
// markup dialect used by non-modern deployments.
//
// Both directions are independent, total, line-oriented substitutions with
// a small state machine for code fences, the same shape as a classic
// note-format converter. Input that matches no rule passes through
// unchanged.
package wiki

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Placeholder used to protect already-converted emphasis markers from the
// following substitution passes. Chosen outside the printable range so it
// cannot collide with document text.
const marker = "\x00"

// Codec converts markdown to and from wiki markup. Stateless; safe for
// concurrent use.
type Codec struct{}

// NewCodec constructs a codec.
func NewCodec() *Codec {
	return &Codec{}
}

var (
	mdHeadingPattern   = regexp.MustCompile(`^(#{1,6})\s+(.*)$`)
	mdFencePattern     = regexp.MustCompile("^```\\s*([A-Za-z0-9+#_-]*)\\s*$")
	mdBulletPattern    = regexp.MustCompile(`^(\s*)[-*+]\s+(.*)$`)
	mdQuotePattern     = regexp.MustCompile(`^>\s?(.*)$`)
	mdImagePattern     = regexp.MustCompile(`!\[([^\]]*)\]\(([^)\s]+)\)`)
	mdLinkPattern      = regexp.MustCompile(`\[([^\]]+)\]\(([^)\s]+)\)`)
	mdAutolinkPattern  = regexp.MustCompile(`<(https?://[^>\s]+)>`)
	mdCodeSpanPattern  = regexp.MustCompile("`([^`]+)`")
	mdBoldStarPattern  = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	mdBoldUnderPattern = regexp.MustCompile(`__([^_]+)__`)
	mdItalicPattern    = regexp.MustCompile(`\*([^*]+)\*`)
	mdStrikePattern    = regexp.MustCompile(`~~([^~]+)~~`)
)

// MarkdownToWiki converts markdown into wiki markup.
func (c *Codec) MarkdownToWiki(markdown string) string {
	lines := strings.Split(markdown, "\n")
	out := make([]string, 0, len(lines))
	inCode := false

	for _, line := range lines {
		if m := mdFencePattern.FindStringSubmatch(line); m != nil {
			if !inCode {
				inCode = true
				if m[1] != "" {
					out = append(out, "{code:"+m[1]+"}")
				} else {
					out = append(out, "{code}")
				}
			} else {
				inCode = false
				out = append(out, "{code}")
			}
			continue
		}
		if inCode {
			out = append(out, line)
			continue
		}

		if m := mdHeadingPattern.FindStringSubmatch(line); m != nil {
			out = append(out, fmt.Sprintf("h%d. %s", len(m[1]), convertInlineToWiki(m[2])))
			continue
		}
		if m := mdQuotePattern.FindStringSubmatch(line); m != nil {
			out = append(out, "bq. "+convertInlineToWiki(m[1]))
			continue
		}
		if m := mdBulletPattern.FindStringSubmatch(line); m != nil {
			depth := len(m[1])/2 + 1
			out = append(out, strings.Repeat("*", depth)+" "+convertInlineToWiki(m[2]))
			continue
		}
		// Ordered list items retain their numeral-dot form.
		out = append(out, convertInlineToWiki(line))
	}

	return strings.Join(out, "\n")
}

// convertInlineToWiki applies the inline substitution table to one line.
// Bold passes through a placeholder so the italic pass cannot re-match the
// freshly emitted single asterisks.
func convertInlineToWiki(line string) string {
	line = mdImagePattern.ReplaceAllStringFunc(line, func(s string) string {
		m := mdImagePattern.FindStringSubmatch(s)
		if m[1] == "" {
			return "!" + m[2] + "!"
		}
		return "!" + m[2] + "|alt=" + m[1] + "!"
	})
	line = mdLinkPattern.ReplaceAllString(line, "[$1|$2]")
	line = mdAutolinkPattern.ReplaceAllString(line, "[$1]")
	line = mdCodeSpanPattern.ReplaceAllString(line, "{{$1}}")
	line = mdBoldStarPattern.ReplaceAllString(line, marker+"$1"+marker)
	line = mdBoldUnderPattern.ReplaceAllString(line, marker+"$1"+marker)
	line = mdItalicPattern.ReplaceAllString(line, "_${1}_")
	line = mdStrikePattern.ReplaceAllString(line, "-$1-")
	line = strings.ReplaceAll(line, marker, "*")
	return line
}

var (
	wikiHeadingPattern   = regexp.MustCompile(`^h([1-6])\.\s*(.*)$`)
	wikiCodeOpenPattern  = regexp.MustCompile(`^\{code(?::([^}]*))?\}\s*$`)
	wikiQuotePattern     = regexp.MustCompile(`^bq\.\s*(.*)$`)
	wikiBulletPattern    = regexp.MustCompile(`^(\*+)\s+(.*)$`)
	wikiOrderedPattern   = regexp.MustCompile(`^(#+)\s+(.*)$`)
	wikiMonospacePattern = regexp.MustCompile(`\{\{([^}]+)\}\}`)
	wikiSmartLinkPattern = regexp.MustCompile(`\[([^|\]]*)\|([^|\]]+)\|smart-link\]`)
	wikiMentionPattern   = regexp.MustCompile(`\[~accountid:([^\]]+)\]`)
	wikiLinkPattern      = regexp.MustCompile(`\[([^|\]]+)\|([^\]]+)\]`)
	wikiBareLinkPattern  = regexp.MustCompile(`\[(https?://[^\]|]+)\]`)
	wikiImageAltPattern  = regexp.MustCompile(`!([^|!\s]+)\|alt=([^!]*)!`)
	wikiImagePattern     = regexp.MustCompile(`!([^|!\s]+)!`)
	wikiBoldPattern      = regexp.MustCompile(`\*([^*]+)\*`)
	wikiItalicPattern    = regexp.MustCompile(`_([^_]+)_`)
)

// WikiToMarkdown converts wiki markup into markdown.
func (c *Codec) WikiToMarkdown(wiki string) string {
	lines := strings.Split(wiki, "\n")
	out := make([]string, 0, len(lines))
	inCode := false

	for _, line := range lines {
		if m := wikiCodeOpenPattern.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			if !inCode {
				inCode = true
				if m[1] != "" {
					out = append(out, "```"+strings.TrimSpace(m[1]))
				} else {
					out = append(out, "```")
				}
			} else {
				inCode = false
				out = append(out, "```")
			}
			continue
		}
		if inCode {
			out = append(out, line)
			continue
		}

		if m := wikiHeadingPattern.FindStringSubmatch(line); m != nil {
			out = append(out, strings.Repeat("#", int(m[1][0]-'0'))+" "+convertInlineToMarkdown(m[2]))
			continue
		}
		if m := wikiQuotePattern.FindStringSubmatch(line); m != nil {
			out = append(out, "> "+convertInlineToMarkdown(m[1]))
			continue
		}
		if m := wikiBulletPattern.FindStringSubmatch(line); m != nil {
			indent := strings.Repeat("  ", len(m[1])-1)
			out = append(out, indent+"- "+convertInlineToMarkdown(m[2]))
			continue
		}
		if m := wikiOrderedPattern.FindStringSubmatch(line); m != nil {
			indent := strings.Repeat("  ", len(m[1])-1)
			out = append(out, indent+"1. "+convertInlineToMarkdown(m[2]))
			continue
		}
		out = append(out, convertInlineToMarkdown(line))
	}

	return strings.Join(out, "\n")
}

// convertInlineToMarkdown applies the reverse substitution table plus the
// two normalizations the forward direction never needs: account-id mention
// resolution and smart-link expansion.
func convertInlineToMarkdown(line string) string {
	line = wikiSmartLinkPattern.ReplaceAllStringFunc(line, func(s string) string {
		m := wikiSmartLinkPattern.FindStringSubmatch(s)
		return "[" + smartLinkLabel(m[1], m[2]) + "](" + m[2] + ")"
	})
	line = wikiMentionPattern.ReplaceAllString(line, "User:$1")
	line = wikiImageAltPattern.ReplaceAllString(line, "![$2]($1)")
	line = wikiBareLinkPattern.ReplaceAllString(line, "<$1>")
	line = wikiLinkPattern.ReplaceAllString(line, "[$1]($2)")
	line = wikiImagePattern.ReplaceAllString(line, "![]($1)")
	line = wikiMonospacePattern.ReplaceAllString(line, "`$1`")
	line = wikiBoldPattern.ReplaceAllString(line, marker+"$1"+marker)
	line = wikiItalicPattern.ReplaceAllString(line, "*$1*")
	line = strings.ReplaceAll(line, marker, "**")
	return line
}

// smartLinkLabel keeps the given label when it already reads like a title,
// otherwise derives one from the trailing path segment of the URL.
func smartLinkLabel(label, rawURL string) string {
	label = strings.TrimSpace(label)
	if label != "" && label != rawURL && !strings.HasPrefix(label, "http://") && !strings.HasPrefix(label, "https://") {
		return label
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	last := segments[len(segments)-1]
	if last == "" {
		if parsed.Host != "" {
			return parsed.Host
		}
		return rawURL
	}
	last = strings.NewReplacer("-", " ", "_", " ", "+", " ").Replace(last)
	return strings.TrimSpace(last)
}
