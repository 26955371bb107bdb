package plugin

import (
	gast "github.com/yuin/goldmark/ast"
)

// KindPluginBlock is the node kind shared by all fence-based plugin blocks.
var KindPluginBlock = gast.NewNodeKind("MarkupPluginBlock")

// KindPluginInline is the node kind shared by brace/at inline plugins.
var KindPluginInline = gast.NewNodeKind("MarkupPluginInline")

// Block is the AST container produced when a `:::name` fence is recognized.
// Its children are the markdown blocks parsed between the fences.
type Block struct {
	gast.BaseBlock

	// PluginName is the registry name that matched the opening fence.
	PluginName string
	// Attrs carries the key="value" pairs from the opening fence line.
	Attrs map[string]string
}

// NewBlock constructs a plugin block node.
func NewBlock(name string, attrs map[string]string) *Block {
	if attrs == nil {
		attrs = map[string]string{}
	}
	return &Block{PluginName: name, Attrs: attrs}
}

// Kind implements ast.Node.
func (n *Block) Kind() gast.NodeKind { return KindPluginBlock }

// Dump implements ast.Node.
func (n *Block) Dump(source []byte, level int) {
	gast.DumpHelper(n, source, level, map[string]string{
		"PluginName": n.PluginName,
	}, nil)
}

// Inline is the AST leaf produced when an inline plugin syntax form is
// recognized. The recognized payload lives entirely in Attrs.
type Inline struct {
	gast.BaseInline

	// PluginName is the registry name that matched the inline syntax.
	PluginName string
	// Attrs carries the recognized attribute values (text, color, ...).
	Attrs map[string]string
}

// NewInline constructs a plugin inline node.
func NewInline(name string, attrs map[string]string) *Inline {
	if attrs == nil {
		attrs = map[string]string{}
	}
	return &Inline{PluginName: name, Attrs: attrs}
}

// Kind implements ast.Node.
func (n *Inline) Kind() gast.NodeKind { return KindPluginInline }

// Dump implements ast.Node.
func (n *Inline) Dump(source []byte, level int) {
	gast.DumpHelper(n, source, level, map[string]string{
		"PluginName": n.PluginName,
	}, nil)
}
