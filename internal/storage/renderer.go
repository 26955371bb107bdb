// Package storage renders an ADF document tree into legacy Confluence-style
// storage markup: an HTML-like tag vocabulary plus structured macros for
// code blocks, panels, and expands.
//
// Rendering is total over arbitrary trees, including documents that were
// never produced by this engine: unknown node types degrade to paragraph
// rendering of their text instead of failing.
package storage

import (
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-markup/internal/adf"
	"github.com/goliatone/go-markup/internal/logging"
	"github.com/goliatone/go-markup/pkg/interfaces"
)

// markOrder fixes the nesting order when one text run carries several
// marks: outermost first, code always innermost.
var markOrder = []string{"link", "strong", "em", "underline", "strike", "code"}

var markTags = map[string]string{
	"strong":    "strong",
	"em":        "em",
	"code":      "code",
	"strike":    "s",
	"underline": "u",
}

// Renderer emits legacy storage markup. It is stateless and safe for
// concurrent use.
type Renderer struct {
	logger interfaces.Logger
}

// Option customizes renderer behaviour.
type Option func(*Renderer)

// WithLogger attaches a logger used for structured diagnostics.
func WithLogger(logger interfaces.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRenderer constructs a storage renderer.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{logger: logging.NoOp()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render converts a document tree into storage markup. An empty or absent
// content array renders a single empty paragraph marker, never the empty
// string, so round-trips stay non-degenerate.
func (r *Renderer) Render(doc any) string {
	node, ok := adf.AsNode(doc)
	if !ok {
		return "<p/>"
	}
	children := adf.Children(node)
	if len(children) == 0 {
		return "<p/>"
	}

	var b strings.Builder
	for _, child := range children {
		r.renderBlock(&b, child)
	}
	out := b.String()
	if strings.TrimSpace(out) == "" {
		return "<p/>"
	}
	return out
}

func (r *Renderer) renderBlock(b *strings.Builder, v any) {
	node, ok := adf.AsNode(v)
	if !ok {
		return
	}

	switch adf.NodeType(node) {
	case "paragraph":
		b.WriteString("<p>")
		r.renderInlineChildren(b, node)
		b.WriteString("</p>")

	case "heading":
		level := intAttr(node, "level", 1)
		if level < 1 || level > 6 {
			level = 1
		}
		fmt.Fprintf(b, "<h%d>", level)
		r.renderInlineChildren(b, node)
		fmt.Fprintf(b, "</h%d>", level)

	case "bulletList":
		r.renderWrapped(b, node, "ul")

	case "orderedList":
		r.renderWrapped(b, node, "ol")

	case "listItem":
		r.renderWrapped(b, node, "li")

	case "codeBlock":
		r.renderCodeMacro(b, node)

	case "blockquote":
		r.renderWrapped(b, node, "blockquote")

	case "table":
		r.renderWrapped(b, node, "table")

	case "tableRow":
		r.renderWrapped(b, node, "tr")

	case "tableHeader":
		r.renderWrapped(b, node, "th")

	case "tableCell":
		r.renderWrapped(b, node, "td")

	case "rule":
		b.WriteString("<hr/>")

	case "panel":
		r.renderPanelMacro(b, node)

	case "expand":
		r.renderExpandMacro(b, node)

	case "mediaSingle", "layoutSection", "layoutColumn":
		// Layout containers have no storage-markup equivalent; their
		// content renders flat.
		for _, child := range adf.Children(node) {
			r.renderBlock(b, child)
		}

	case "media":
		if id := adf.StringAttr(node, "id"); id != "" {
			fmt.Fprintf(b, `<ri:attachment ri:filename=%q/>`, html.EscapeString(id))
		}

	default:
		r.renderUnknown(b, node)
	}
}

// renderWrapped renders the node's block children inside a tag pair.
func (r *Renderer) renderWrapped(b *strings.Builder, node adf.Node, tag string) {
	b.WriteString("<" + tag + ">")
	for _, child := range adf.Children(node) {
		r.renderBlock(b, child)
	}
	b.WriteString("</" + tag + ">")
}

// renderCodeMacro emits the Confluence code macro. The payload is embedded
// verbatim inside CDATA; no escaping is performed on the code text.
func (r *Renderer) renderCodeMacro(b *strings.Builder, node adf.Node) {
	b.WriteString(`<ac:structured-macro ac:name="code">`)
	if lang := adf.StringAttr(node, "language"); lang != "" {
		fmt.Fprintf(b, `<ac:parameter ac:name="language">%s</ac:parameter>`, html.EscapeString(lang))
	}
	b.WriteString("<ac:plain-text-body><![CDATA[")
	for _, child := range adf.Children(node) {
		if text, ok := adf.AsNode(child); ok {
			b.WriteString(adf.TextValue(text))
		}
	}
	b.WriteString("]]></ac:plain-text-body></ac:structured-macro>")
}

func (r *Renderer) renderPanelMacro(b *strings.Builder, node adf.Node) {
	macro := adf.StringAttr(node, "panelType")
	switch macro {
	case "info", "note", "warning":
	case "success":
		macro = "tip"
	case "error":
		macro = "warning"
	default:
		macro = "info"
	}
	fmt.Fprintf(b, `<ac:structured-macro ac:name=%q><ac:rich-text-body>`, macro)
	for _, child := range adf.Children(node) {
		r.renderBlock(b, child)
	}
	b.WriteString("</ac:rich-text-body></ac:structured-macro>")
}

func (r *Renderer) renderExpandMacro(b *strings.Builder, node adf.Node) {
	b.WriteString(`<ac:structured-macro ac:name="expand">`)
	if title := adf.StringAttr(node, "title"); title != "" {
		fmt.Fprintf(b, `<ac:parameter ac:name="title">%s</ac:parameter>`, html.EscapeString(title))
	}
	b.WriteString("<ac:rich-text-body>")
	for _, child := range adf.Children(node) {
		r.renderBlock(b, child)
	}
	b.WriteString("</ac:rich-text-body></ac:structured-macro>")
}

// renderUnknown keeps unrecognized node types readable by folding their
// text into a paragraph.
func (r *Renderer) renderUnknown(b *strings.Builder, node adf.Node) {
	r.logger.Debug("unknown storage node type, rendering as paragraph", "type", adf.NodeType(node))
	text := adf.PlainText(node)
	if text == "" {
		return
	}
	b.WriteString("<p>")
	b.WriteString(html.EscapeString(text))
	b.WriteString("</p>")
}

func (r *Renderer) renderInlineChildren(b *strings.Builder, node adf.Node) {
	for _, child := range adf.Children(node) {
		r.renderInline(b, child)
	}
}

func (r *Renderer) renderInline(b *strings.Builder, v any) {
	node, ok := adf.AsNode(v)
	if !ok {
		return
	}

	switch adf.NodeType(node) {
	case "text":
		r.renderText(b, node)

	case "hardBreak":
		b.WriteString("<br/>")

	case "status":
		b.WriteString(html.EscapeString(adf.StringAttr(node, "text")))

	case "date":
		b.WriteString(html.EscapeString(formatTimestamp(adf.StringAttr(node, "timestamp"))))

	case "mention":
		b.WriteString(html.EscapeString(adf.StringAttr(node, "text")))

	case "emoji":
		text := adf.StringAttr(node, "text")
		if text == "" {
			text = adf.StringAttr(node, "shortName")
		}
		b.WriteString(html.EscapeString(text))

	default:
		b.WriteString(html.EscapeString(adf.PlainText(node)))
	}
}

// renderText wraps the escaped text in its mark tags following the fixed
// deterministic nesting order.
func (r *Renderer) renderText(b *strings.Builder, node adf.Node) {
	href := ""
	present := map[string]bool{}
	for _, raw := range adf.Marks(node) {
		mark, ok := adf.AsNode(raw)
		if !ok {
			continue
		}
		markType := adf.NodeType(mark)
		present[markType] = true
		if markType == "link" {
			href = adf.StringAttr(mark, "href")
		}
	}

	var open, clos strings.Builder
	for _, markType := range markOrder {
		if !present[markType] {
			continue
		}
		if markType == "link" {
			fmt.Fprintf(&open, `<a href=%q>`, html.EscapeString(href))
			clos.WriteString("</a>")
			continue
		}
		tag := markTags[markType]
		open.WriteString("<" + tag + ">")
		clos.WriteString("</" + tag + ">")
	}

	// Closing tags unwind in reverse of the opening order.
	closing := reverseTags(clos.String())

	b.WriteString(open.String())
	b.WriteString(html.EscapeString(adf.TextValue(node)))
	b.WriteString(closing)
}

// reverseTags reverses a concatenation of closing tags.
func reverseTags(tags string) string {
	var parts []string
	for _, part := range strings.SplitAfter(tags, ">") {
		if part != "" {
			parts = append(parts, part)
		}
	}
	var b strings.Builder
	for i := len(parts) - 1; i >= 0; i-- {
		b.WriteString(parts[i])
	}
	return b.String()
}

func intAttr(node adf.Node, key string, fallback int) int {
	switch value := adf.Attrs(node)[key].(type) {
	case int:
		return value
	case float64:
		return int(value)
	case string:
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

// formatTimestamp renders an epoch-millisecond string as an ISO date,
// falling back to the raw value when unparseable.
func formatTimestamp(raw string) string {
	millis, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return raw
	}
	return time.UnixMilli(millis).UTC().Format("2006-01-02")
}
