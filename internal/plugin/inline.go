package plugin

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	gast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// Inline plugin syntax forms:
//
//	{status:color=green}On track{/status}
//	{date:2025-03-01}
//	@handle or @[Display Name]
//
// Each parser claims its span only on a full match; anything else is left
// for the standard inline rules so malformed syntax degrades to literal
// text instead of failing.

var statusPattern = regexp.MustCompile(`^\{status:color=([a-zA-Z]+)\}(.*?)\{/status\}`)

// statusColors is the closed badge palette. Unknown colors normalize to
// neutral rather than rejecting the badge.
var statusColors = map[string]struct{}{
	"neutral": {},
	"purple":  {},
	"blue":    {},
	"red":     {},
	"yellow":  {},
	"green":   {},
}

type statusParser struct{}

// NewStatusParser recognizes `{status:color=<palette>}text{/status}` badges.
func NewStatusParser() parser.InlineParser {
	return &statusParser{}
}

func (p *statusParser) Trigger() []byte {
	return []byte{'{'}
}

func (p *statusParser) Parse(parent gast.Node, block text.Reader, pc parser.Context) gast.Node {
	line, _ := block.PeekLine()
	match := statusPattern.FindSubmatch(line)
	if match == nil {
		return nil
	}
	block.Advance(len(match[0]))
	return NewInline("status", map[string]string{
		"text":  string(match[2]),
		"color": NormalizeStatusColor(string(match[1])),
	})
}

// NormalizeStatusColor lower-cases the color and folds anything outside
// the palette onto neutral.
func NormalizeStatusColor(color string) string {
	normalized := strings.ToLower(strings.TrimSpace(color))
	if _, ok := statusColors[normalized]; !ok {
		return "neutral"
	}
	return normalized
}

var datePattern = regexp.MustCompile(`^\{date:(\d{4}-\d{2}-\d{2})\}`)

type dateParser struct{}

// NewDateParser recognizes `{date:YYYY-MM-DD}` stamps. The calendar date
// is converted to an epoch-millisecond timestamp string at UTC midnight.
func NewDateParser() parser.InlineParser {
	return &dateParser{}
}

func (p *dateParser) Trigger() []byte {
	return []byte{'{'}
}

func (p *dateParser) Parse(parent gast.Node, block text.Reader, pc parser.Context) gast.Node {
	line, _ := block.PeekLine()
	match := datePattern.FindSubmatch(line)
	if match == nil {
		return nil
	}

	day, err := time.ParseInLocation("2006-01-02", string(match[1]), time.UTC)
	if err != nil {
		// Well-formed shape but an impossible date: leave it as text.
		return nil
	}

	block.Advance(len(match[0]))
	return NewInline("date", map[string]string{
		"timestamp": strconv.FormatInt(day.UnixMilli(), 10),
	})
}

var (
	mentionBracketPattern = regexp.MustCompile(`^@\[([^\]\r\n]+)\]`)
	mentionBarePattern    = regexp.MustCompile(`^@([a-zA-Z0-9_][a-zA-Z0-9_.-]*)`)
)

type mentionParser struct{}

// NewMentionParser recognizes `@handle` and `@[Display Name]` user
// references.
func NewMentionParser() parser.InlineParser {
	return &mentionParser{}
}

func (p *mentionParser) Trigger() []byte {
	return []byte{'@'}
}

func (p *mentionParser) Parse(parent gast.Node, block text.Reader, pc parser.Context) gast.Node {
	// A preceding word character means this @ is part of a larger token,
	// most likely an email address.
	if prev := block.PrecendingCharacter(); unicode.IsLetter(prev) || unicode.IsDigit(prev) {
		return nil
	}

	line, _ := block.PeekLine()
	consumed := 0
	var name string
	if match := mentionBracketPattern.FindSubmatch(line); match != nil {
		consumed = len(match[0])
		name = strings.TrimSpace(string(match[1]))
	} else if match := mentionBarePattern.FindSubmatch(line); match != nil {
		// Sentence punctuation after a bare handle belongs to the text,
		// not the handle.
		handle := strings.TrimRight(string(match[1]), ".-")
		consumed = len(match[0]) - (len(match[1]) - len(handle))
		name = handle
	}
	if name == "" {
		return nil
	}

	block.Advance(consumed)
	return NewInline("mention", map[string]string{
		"id":   name,
		"text": "@" + name,
	})
}
