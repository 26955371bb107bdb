// Package adf models the Atlassian Document Format: the versioned JSON
// document tree (`{"type":"doc","version":1}`) consumed by Jira and
// Confluence Cloud content APIs.
//
// Nodes are generic JSON-like maps so a converted document can be passed
// straight to encoding/json without an intermediate serialization step.
package adf

// Node represents a single ADF node.
//
// Every node carries at least a "type" key. Depending on the type it may
// also carry "content" (child nodes), "attrs" (type-specific attributes
// such as heading level or link href), "text" (leaf text content), and
// "marks" (inline formatting such as strong or link).
type Node map[string]any

// Doc wraps block-level nodes in a version 1 document root. A nil or empty
// content slice yields a valid document with an empty content array.
func Doc(content []Node) Node {
	if content == nil {
		content = []Node{}
	}
	return Node{
		"type":    "doc",
		"version": 1,
		"content": content,
	}
}

// Paragraph wraps inline nodes in a paragraph block.
func Paragraph(content ...Node) Node {
	if content == nil {
		content = []Node{}
	}
	return Node{"type": "paragraph", "content": content}
}

// Text builds a leaf text node carrying the supplied marks. Empty mark
// slices are omitted entirely to keep the serialized document minimal.
func Text(text string, marks ...Node) Node {
	node := Node{"type": "text", "text": text}
	if len(marks) > 0 {
		node["marks"] = marks
	}
	return node
}

// Mark builds a plain mark object such as {"type":"strong"}.
func Mark(markType string) Node {
	return Node{"type": markType}
}

// LinkMark builds a link mark pointing at href.
func LinkMark(href string) Node {
	return Node{"type": "link", "attrs": Node{"href": href}}
}

// HardBreak builds a hardBreak inline node.
func HardBreak() Node {
	return Node{"type": "hardBreak"}
}

// NodeType returns the "type" value of an arbitrary tree value, tolerating
// both Node and plain map[string]any shapes (documents decoded from JSON).
func NodeType(v any) string {
	if n, ok := AsNode(v); ok {
		if t, ok := n["type"].(string); ok {
			return t
		}
	}
	return ""
}

// AsNode normalizes tree values into Node. Documents produced by this
// package arrive as Node; documents decoded from JSON arrive as
// map[string]any.
func AsNode(v any) (Node, bool) {
	switch t := v.(type) {
	case Node:
		return t, true
	case map[string]any:
		return Node(t), true
	default:
		return nil, false
	}
}

// Children returns the "content" entries of a node as a generic slice.
// Both []Node and []any (JSON-decoded) shapes are supported.
func Children(n Node) []any {
	switch c := n["content"].(type) {
	case []Node:
		out := make([]any, len(c))
		for i, child := range c {
			out[i] = child
		}
		return out
	case []any:
		return c
	default:
		return nil
	}
}

// Attrs returns the node's attribute map, or an empty map when absent.
func Attrs(n Node) Node {
	if attrs, ok := AsNode(n["attrs"]); ok {
		return attrs
	}
	return Node{}
}

// StringAttr reads a string attribute, returning "" when missing or of the
// wrong type.
func StringAttr(n Node, key string) string {
	if s, ok := Attrs(n)[key].(string); ok {
		return s
	}
	return ""
}

// Marks returns the node's marks as a generic slice.
func Marks(n Node) []any {
	switch m := n["marks"].(type) {
	case []Node:
		out := make([]any, len(m))
		for i, mark := range m {
			out[i] = mark
		}
		return out
	case []any:
		return m
	default:
		return nil
	}
}

// TextValue returns the "text" value of a leaf node.
func TextValue(n Node) string {
	if s, ok := n["text"].(string); ok {
		return s
	}
	return ""
}

// PlainText flattens a node subtree into its concatenated text content.
// Used by fallback paths that degrade unknown structures to paragraphs.
func PlainText(v any) string {
	n, ok := AsNode(v)
	if !ok {
		return ""
	}
	if text := TextValue(n); text != "" {
		return text
	}
	var out string
	for _, child := range Children(n) {
		out += PlainText(child)
	}
	return out
}
