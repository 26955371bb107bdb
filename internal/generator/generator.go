// Package generator walks a markdown AST and emits an ADF document tree.
//
// Generation is a total function: an internal fault is recovered at the
// top level and converted into a single-paragraph plain-text document
// carrying the original source, never an error to the caller.
package generator

import (
	"bytes"

	gast "github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/goliatone/go-markup/internal/adf"
	"github.com/goliatone/go-markup/internal/logging"
	"github.com/goliatone/go-markup/internal/plugin"
	"github.com/goliatone/go-markup/pkg/interfaces"
)

// Generator converts goldmark ASTs into ADF documents, dispatching plugin
// nodes through the registry. It holds no per-conversion state and is safe
// for concurrent use.
type Generator struct {
	registry *plugin.Registry
	logger   interfaces.Logger
}

// Option customizes generator behaviour.
type Option func(*Generator)

// WithLogger attaches a logger used for structured diagnostics.
func WithLogger(logger interfaces.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// New constructs a generator bound to the plugin registry.
func New(registry *plugin.Registry, opts ...Option) *Generator {
	g := &Generator{
		registry: registry,
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate converts the document AST into an ADF doc node. On any internal
// fault it falls back to a plain-text document preserving the source.
func (g *Generator) Generate(doc gast.Node, source []byte) (result adf.Node) {
	defer func() {
		if r := recover(); r != nil {
			g.logger.Error("adf generation fault, falling back to plain text", "panic", r)
			result = fallbackDocument(source)
		}
	}()

	if doc == nil {
		return adf.Doc(nil)
	}
	return adf.Doc(g.convertChildren(doc, source))
}

// fallbackDocument wraps the original source verbatim in a one-paragraph
// document, the generator's terminal safety net.
func fallbackDocument(source []byte) adf.Node {
	text := string(bytes.TrimSpace(source))
	if text == "" {
		return adf.Doc(nil)
	}
	return adf.Doc([]adf.Node{adf.Paragraph(adf.Text(text))})
}

// convertChildren converts the direct children of n, dropping empty
// results (e.g. blank paragraphs).
func (g *Generator) convertChildren(n gast.Node, source []byte) []adf.Node {
	var nodes []adf.Node
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		nodes = append(nodes, g.convertBlock(child, source)...)
	}
	return nodes
}

// convertBlock maps one block-level AST node onto its ADF equivalent.
// Unknown block kinds degrade to their converted children so content is
// never silently lost.
func (g *Generator) convertBlock(n gast.Node, source []byte) []adf.Node {
	switch node := n.(type) {
	case *gast.Paragraph, *gast.TextBlock:
		content := g.convertInlineChildren(n, source, nil)
		if len(content) == 0 {
			return nil
		}
		return []adf.Node{adf.Paragraph(content...)}

	case *gast.Heading:
		level := node.Level
		if level < 1 {
			level = 1
		}
		if level > 6 {
			level = 6
		}
		return []adf.Node{{
			"type":    "heading",
			"attrs":   adf.Node{"level": level},
			"content": inlineContent(g.convertInlineChildren(node, source, nil)),
		}}

	case *gast.List:
		listType := "bulletList"
		if node.IsOrdered() {
			listType = "orderedList"
		}
		return []adf.Node{{
			"type":    listType,
			"content": g.convertListItems(node, source),
		}}

	case *gast.FencedCodeBlock:
		code := codeText(node.Lines(), source)
		adfNode := adf.Node{
			"type":    "codeBlock",
			"content": []adf.Node{{"type": "text", "text": code}},
		}
		if lang := string(node.Language(source)); lang != "" {
			adfNode["attrs"] = adf.Node{"language": lang}
		}
		return []adf.Node{adfNode}

	case *gast.CodeBlock:
		return []adf.Node{{
			"type":    "codeBlock",
			"content": []adf.Node{{"type": "text", "text": codeText(node.Lines(), source)}},
		}}

	case *gast.Blockquote:
		return []adf.Node{{
			"type":    "blockquote",
			"content": blockContent(g.convertChildren(node, source)),
		}}

	case *gast.ThematicBreak:
		return []adf.Node{{"type": "rule"}}

	case *extast.Table:
		return []adf.Node{g.convertTable(node, source)}

	case *plugin.Block:
		return g.renderPlugin(node, source, g.convertChildren(node, source))

	default:
		if desc, ok := g.registry.RendererFor(n); ok && desc.Kind == plugin.KindBlock {
			return desc.Render(n, source, g.convertChildren(n, source))
		}
		if n.HasChildren() && n.Type() == gast.TypeBlock {
			return g.convertChildren(n, source)
		}
		return nil
	}
}

// renderPlugin dispatches a plugin node through its registered renderer. A
// node with no renderer degrades to a paragraph of its raw text.
func (g *Generator) renderPlugin(n gast.Node, source []byte, children []adf.Node) []adf.Node {
	desc, ok := g.registry.RendererFor(n)
	if !ok || desc.Render == nil {
		g.logger.Warn("no renderer for plugin node, degrading to paragraph", "kind", n.Kind().String())
		return degradeToParagraph(n, source, children)
	}
	rendered := desc.Render(n, source, children)
	if rendered == nil {
		return degradeToParagraph(n, source, children)
	}
	return rendered
}

func degradeToParagraph(n gast.Node, source []byte, children []adf.Node) []adf.Node {
	if len(children) > 0 {
		return children
	}
	text := string(n.Text(source))
	if text == "" {
		return nil
	}
	return []adf.Node{adf.Paragraph(adf.Text(text))}
}

// convertListItems wraps each list item's block content in a listItem node.
// Nested lists stay inside their parent item.
func (g *Generator) convertListItems(list *gast.List, source []byte) []adf.Node {
	items := []adf.Node{}
	for child := list.FirstChild(); child != nil; child = child.NextSibling() {
		item, ok := child.(*gast.ListItem)
		if !ok {
			continue
		}
		items = append(items, adf.Node{
			"type":    "listItem",
			"content": blockContent(g.convertChildren(item, source)),
		})
	}
	return items
}

// convertInlineChildren flattens the inline children of a block node into
// text/hardBreak/plugin nodes. The marks slice carries accumulated
// formatting from enclosing inline nodes and is copied before extension so
// sibling branches never share backing arrays.
func (g *Generator) convertInlineChildren(n gast.Node, source []byte, marks []adf.Node) []adf.Node {
	var nodes []adf.Node

	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		switch node := child.(type) {
		case *gast.Text:
			segment := node.Segment.Value(source)
			if len(segment) > 0 {
				nodes = append(nodes, adf.Text(string(segment), copyMarks(marks)...))
			}
			if node.HardLineBreak() {
				nodes = append(nodes, adf.HardBreak())
			} else if node.SoftLineBreak() {
				nodes = append(nodes, adf.Text(" ", copyMarks(marks)...))
			}

		case *gast.String:
			if len(node.Value) > 0 {
				nodes = append(nodes, adf.Text(string(node.Value), copyMarks(marks)...))
			}

		case *gast.Emphasis:
			markType := "em"
			if node.Level == 2 {
				markType = "strong"
			}
			extended := append(copyMarks(marks), adf.Mark(markType))
			nodes = append(nodes, g.convertInlineChildren(node, source, extended)...)

		case *gast.CodeSpan:
			extended := append(copyMarks(marks), adf.Mark("code"))
			nodes = append(nodes, adf.Text(string(node.Text(source)), extended...))

		case *gast.Link:
			extended := append(copyMarks(marks), adf.LinkMark(string(node.Destination)))
			nodes = append(nodes, g.convertInlineChildren(node, source, extended)...)

		case *gast.AutoLink:
			url := string(node.URL(source))
			nodes = append(nodes, adf.Text(url, append(copyMarks(marks), adf.LinkMark(url))...))

		case *gast.Image:
			alt := string(node.Text(source))
			if alt == "" {
				alt = string(node.Destination)
			}
			extended := append(copyMarks(marks), adf.LinkMark(string(node.Destination)))
			nodes = append(nodes, adf.Text(alt, extended...))

		case *extast.Strikethrough:
			extended := append(copyMarks(marks), adf.Mark("strike"))
			nodes = append(nodes, g.convertInlineChildren(node, source, extended)...)

		case *gast.RawHTML:
			continue

		case *plugin.Inline:
			nodes = append(nodes, g.renderPlugin(node, source, nil)...)

		default:
			if desc, ok := g.registry.RendererFor(child); ok && desc.Kind == plugin.KindInline {
				nodes = append(nodes, g.renderPlugin(child, source, nil)...)
				continue
			}
			if child.HasChildren() {
				nodes = append(nodes, g.convertInlineChildren(child, source, marks)...)
			}
		}
	}

	return mergeTextNodes(nodes)
}

// convertTable maps a GFM table onto an ADF table. The header row, always
// first when present, produces tableHeader cells; every other row produces
// tableCell nodes.
func (g *Generator) convertTable(table *extast.Table, source []byte) adf.Node {
	rows := []adf.Node{}
	for child := table.FirstChild(); child != nil; child = child.NextSibling() {
		switch row := child.(type) {
		case *extast.TableHeader:
			rows = append(rows, adf.Node{
				"type":    "tableRow",
				"content": g.convertTableCells(row, source, "tableHeader"),
			})
		case *extast.TableRow:
			rows = append(rows, adf.Node{
				"type":    "tableRow",
				"content": g.convertTableCells(row, source, "tableCell"),
			})
		}
	}
	return adf.Node{
		"type":    "table",
		"content": rows,
	}
}

func (g *Generator) convertTableCells(row gast.Node, source []byte, cellType string) []adf.Node {
	cells := []adf.Node{}
	for child := row.FirstChild(); child != nil; child = child.NextSibling() {
		if _, ok := child.(*extast.TableCell); !ok {
			continue
		}
		inline := g.convertInlineChildren(child, source, nil)
		cells = append(cells, adf.Node{
			"type":    cellType,
			"content": []adf.Node{adf.Paragraph(inline...)},
		})
	}
	return cells
}

// mergeTextNodes concatenates adjacent text nodes carrying identical marks.
// Extensions such as Linkify split logical text runs at probe points;
// merging keeps the emitted document minimal.
func mergeTextNodes(nodes []adf.Node) []adf.Node {
	if len(nodes) <= 1 {
		return nodes
	}
	merged := []adf.Node{nodes[0]}
	for _, node := range nodes[1:] {
		prev := merged[len(merged)-1]
		if adf.NodeType(prev) == "text" && adf.NodeType(node) == "text" && marksEqual(prev, node) {
			prev["text"] = adf.TextValue(prev) + adf.TextValue(node)
			continue
		}
		merged = append(merged, node)
	}
	return merged
}

func marksEqual(a, b adf.Node) bool {
	aMarks := adf.Marks(a)
	bMarks := adf.Marks(b)
	if len(aMarks) != len(bMarks) {
		return false
	}
	for i := range aMarks {
		am, aok := adf.AsNode(aMarks[i])
		bm, bok := adf.AsNode(bMarks[i])
		if !aok || !bok {
			return false
		}
		if adf.NodeType(am) != adf.NodeType(bm) {
			return false
		}
		if adf.StringAttr(am, "href") != adf.StringAttr(bm, "href") {
			return false
		}
	}
	return true
}

// inlineContent normalizes nil inline slices to empty arrays so container
// nodes always serialize with a content key.
func inlineContent(nodes []adf.Node) []adf.Node {
	if nodes == nil {
		return []adf.Node{}
	}
	return nodes
}

func blockContent(nodes []adf.Node) []adf.Node {
	if len(nodes) == 0 {
		return []adf.Node{adf.Paragraph()}
	}
	return nodes
}

// codeText joins the raw lines of a code block, trimming the final
// newline. Marks never apply inside code blocks.
func codeText(lines *text.Segments, source []byte) string {
	var buf bytes.Buffer
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		buf.Write(line.Value(source))
	}
	code := buf.String()
	if len(code) > 0 && code[len(code)-1] == '\n' {
		code = code[:len(code)-1]
	}
	return code
}

func copyMarks(marks []adf.Node) []adf.Node {
	if marks == nil {
		return nil
	}
	result := make([]adf.Node, len(marks))
	copy(result, marks)
	return result
}
