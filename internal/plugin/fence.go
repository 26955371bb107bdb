package plugin

import (
	"bytes"
	"regexp"
	"strings"

	gast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// Plugin block syntax is a fenced region:
//
//	:::name key="value"
//	body (markdown blocks, including nested fences)
//	:::
//
// Fences balance by nearest-enclosing match: a bare `:::` line always
// closes the innermost open fence, tracked as a stack in parser.Context.

var (
	fenceOpenPattern  = regexp.MustCompile(`^:::([a-zA-Z][a-zA-Z0-9_-]*)(?:[ \t]+(.*))?[ \t]*$`)
	fenceClosePattern = regexp.MustCompile(`^ {0,3}:::[ \t]*$`)
	fenceAttrPattern  = regexp.MustCompile(`([a-zA-Z_][a-zA-Z0-9_-]*)\s*=\s*(?:"([^"]*)"|([^\s"]+))`)
)

var openFencesKey = parser.NewContextKey()

// FenceParser is the shared goldmark block parser for every block-level
// plugin in the registry. A single instance handles all names so the open
// fence stack stays coherent across nested regions.
type FenceParser struct {
	registry *Registry
}

// NewFenceParser builds the fence parser bound to the given registry.
func NewFenceParser(registry *Registry) *FenceParser {
	return &FenceParser{registry: registry}
}

// Trigger implements parser.BlockParser.
func (p *FenceParser) Trigger() []byte {
	return []byte{':'}
}

// Open recognizes an opening fence whose name is a registered block plugin.
func (p *FenceParser) Open(parent gast.Node, reader text.Reader, pc parser.Context) (gast.Node, parser.State) {
	line, segment := reader.PeekLine()
	pos := pc.BlockOffset()
	if pos < 0 || pos >= len(line) || line[pos] != ':' {
		return nil, parser.NoChildren
	}

	match := fenceOpenPattern.FindSubmatch(bytes.TrimRight(line[pos:], "\r\n"))
	if match == nil {
		return nil, parser.NoChildren
	}

	name := strings.ToLower(string(match[1]))
	desc, ok := p.registry.Find(name)
	if !ok || desc.Kind != KindBlock {
		return nil, parser.NoChildren
	}

	node := NewBlock(name, parseFenceAttrs(string(match[2])))
	pushFence(pc, node)
	reader.Advance(segment.Len() - 1)
	return node, parser.HasChildren
}

// Continue keeps consuming body lines until the nearest-enclosing close
// fence arrives. A bare `:::` line only closes this node when it is the
// innermost open fence; otherwise the line flows through to the nested
// fence opened after it.
func (p *FenceParser) Continue(node gast.Node, reader text.Reader, pc parser.Context) parser.State {
	line, segment := reader.PeekLine()
	if fenceClosePattern.Match(bytes.TrimRight(line, "\r\n")) {
		if topFence(pc) == node {
			reader.Advance(segment.Len() - 1)
			return parser.Close
		}
	}
	return parser.Continue | parser.HasChildren
}

// Close implements parser.BlockParser. The fence stack entry is removed
// here so forced closes at end of input (unterminated fences) unwind too.
func (p *FenceParser) Close(node gast.Node, reader text.Reader, pc parser.Context) {
	popFence(pc, node)
}

// CanInterruptParagraph implements parser.BlockParser.
func (p *FenceParser) CanInterruptParagraph() bool { return true }

// CanAcceptIndentedLine implements parser.BlockParser.
func (p *FenceParser) CanAcceptIndentedLine() bool { return false }

func pushFence(pc parser.Context, node *Block) {
	stack, _ := pc.Get(openFencesKey).([]*Block)
	pc.Set(openFencesKey, append(stack, node))
}

func popFence(pc parser.Context, node gast.Node) {
	stack, _ := pc.Get(openFencesKey).([]*Block)
	for i := len(stack) - 1; i >= 0; i-- {
		if gast.Node(stack[i]) == node {
			pc.Set(openFencesKey, append(stack[:i:i], stack[i+1:]...))
			return
		}
	}
}

func topFence(pc parser.Context) gast.Node {
	stack, _ := pc.Get(openFencesKey).([]*Block)
	if len(stack) == 0 {
		return nil
	}
	return stack[len(stack)-1]
}

// parseFenceAttrs extracts key="value" pairs (quotes optional) from the
// remainder of an opening fence line. Unparseable fragments are ignored.
func parseFenceAttrs(raw string) map[string]string {
	attrs := map[string]string{}
	for _, match := range fenceAttrPattern.FindAllStringSubmatch(raw, -1) {
		value := match[2]
		if value == "" {
			value = match[3]
		}
		attrs[strings.ToLower(match[1])] = value
	}
	return attrs
}
