// Package markdown turns markdown source text into a goldmark AST with the
// engine's plugin syntax recognized ahead of the standard constructs.
//
// Parsing is total: structurally arbitrary input never fails, worst case
// unrecognized spans survive as literal text. The parser is stateless and
// safe for unlimited concurrent use.
package markdown

import (
	"github.com/yuin/goldmark"
	gast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/goliatone/go-markup/internal/plugin"
)

// Parser wraps a configured goldmark instance. Construct once and reuse;
// per-call state lives entirely in the reader and parser context.
type Parser struct {
	md goldmark.Markdown
}

// Goldmark registers standard block parsers between 100 (setext heading)
// and 1000 (paragraph), and inline parsers between 100 (code span) and 500
// (emphasis). The plugin fence must win against the paragraph parser, and
// plugin inline parsers must run before emphasis and linkify claim their
// trigger characters.
const (
	fenceParserPriority      = 690
	inlineParserBasePriority = 150
)

// NewParser builds a parser recognizing GFM tables, strikethrough,
// autolinks, and every plugin registered in the registry.
func NewParser(registry *plugin.Registry) *Parser {
	parserOptions := []parser.Option{
		parser.WithBlockParsers(
			util.Prioritized(plugin.NewFenceParser(registry), fenceParserPriority),
		),
	}

	inlineParsers := []util.PrioritizedValue{}
	extenders := []goldmark.Extender{
		extension.Table,
		extension.Strikethrough,
		extension.Linkify,
	}
	for i, desc := range registry.InlinePlugins() {
		if desc.Inline != nil {
			inlineParsers = append(inlineParsers, util.Prioritized(desc.Inline, inlineParserBasePriority+i))
		}
		if desc.Extender != nil {
			extenders = append(extenders, desc.Extender)
		}
	}
	if len(inlineParsers) > 0 {
		parserOptions = append(parserOptions, parser.WithInlineParsers(inlineParsers...))
	}

	md := goldmark.New(
		goldmark.WithExtensions(extenders...),
		goldmark.WithParserOptions(parserOptions...),
	)
	return &Parser{md: md}
}

// Parse converts markdown source into a document AST. The source slice is
// returned alongside the tree because goldmark nodes reference text by
// segment offsets into it.
func (p *Parser) Parse(source []byte) (gast.Node, []byte) {
	if source == nil {
		source = []byte{}
	}
	return p.md.Parser().Parse(text.NewReader(source)), source
}

// ParseString is a convenience wrapper over Parse.
func (p *Parser) ParseString(source string) (gast.Node, []byte) {
	return p.Parse([]byte(source))
}
