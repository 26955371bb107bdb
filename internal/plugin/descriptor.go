// Package plugin implements the closed extension mechanism for custom
// markdown syntax: a static registry of named descriptors, each pairing a
// recognition rule (a goldmark block fence or inline parser) with a
// renderer that emits ADF nodes for the recognized construct.
//
// The plugin set is closed and statically registered at process start.
// Adding a plugin means adding one descriptor to the builtin catalogue;
// there is no runtime loading.
package plugin

import (
	"github.com/yuin/goldmark"
	gast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"

	"github.com/goliatone/go-markup/internal/adf"
)

// Kind distinguishes block-level from inline-level plugins.
type Kind string

const (
	// KindBlock marks plugins recognized by the shared `:::name` fence parser.
	KindBlock Kind = "block"
	// KindInline marks plugins recognized by a dedicated inline parser.
	KindInline Kind = "inline"
)

// RenderFunc turns a recognized AST node into one or more ADF nodes. The
// children argument carries the node's already-converted content for
// container plugins; leaf plugins ignore it.
type RenderFunc func(node gast.Node, source []byte, children []adf.Node) []adf.Node

// Descriptor describes one plugin: its unique name, level, parse hook, and
// document renderer. Exactly one of the parse hooks applies per plugin:
// block plugins are matched by the shared fence parser (no hook needed),
// inline plugins supply either an Inline parser or a full goldmark
// Extender plus the NodeKind it produces.
type Descriptor struct {
	// Name is the unique lower-case plugin identifier.
	Name string
	// Kind is the plugin level, block or inline.
	Kind Kind
	// Priority orders plugins of the same kind; lower runs first.
	Priority int
	// Inline is the goldmark inline parser recognizing this plugin's syntax.
	Inline parser.InlineParser
	// Extender installs a third-party goldmark extension in place of Inline.
	Extender goldmark.Extender
	// NodeKind identifies AST nodes produced by Extender-based plugins.
	// Plugins using the generic Block/Inline nodes leave it zero.
	NodeKind gast.NodeKind
	// Render converts the plugin's AST node into ADF nodes.
	Render RenderFunc
}
