package plugin

import (
	"strconv"
	"strings"

	emoji "github.com/yuin/goldmark-emoji"
	east "github.com/yuin/goldmark-emoji/ast"
	gast "github.com/yuin/goldmark/ast"

	"github.com/goliatone/go-markup/internal/adf"
)

// DefaultRegistry builds, populates, and seals the registry with the
// builtin plugin catalogue. Any error here is a startup configuration
// fault and should abort initialization.
func DefaultRegistry() (*Registry, error) {
	registry := NewRegistry(NewValidator())
	for _, desc := range BuiltinDescriptors() {
		if err := registry.Register(desc); err != nil {
			return nil, err
		}
	}
	registry.Seal()
	return registry, nil
}

// BuiltinDescriptors returns the closed plugin catalogue shipped with the
// engine.
func BuiltinDescriptors() []Descriptor {
	return []Descriptor{
		panelDescriptor(),
		expandDescriptor(),
		mediaDescriptor(),
		layoutDescriptor(),
		columnDescriptor(),
		statusDescriptor(),
		dateDescriptor(),
		mentionDescriptor(),
		emojiDescriptor(),
	}
}

var panelTypes = map[string]struct{}{
	"info":    {},
	"note":    {},
	"warning": {},
	"success": {},
	"error":   {},
}

func panelDescriptor() Descriptor {
	return Descriptor{
		Name:     "panel",
		Kind:     KindBlock,
		Priority: 10,
		Render: func(node gast.Node, source []byte, children []adf.Node) []adf.Node {
			block, ok := node.(*Block)
			if !ok {
				return nil
			}
			panelType := strings.ToLower(strings.TrimSpace(block.Attrs["type"]))
			if _, known := panelTypes[panelType]; !known {
				panelType = "info"
			}
			return []adf.Node{{
				"type":    "panel",
				"attrs":   adf.Node{"panelType": panelType},
				"content": blockContent(children),
			}}
		},
	}
}

func expandDescriptor() Descriptor {
	return Descriptor{
		Name:     "expand",
		Kind:     KindBlock,
		Priority: 20,
		Render: func(node gast.Node, source []byte, children []adf.Node) []adf.Node {
			block, ok := node.(*Block)
			if !ok {
				return nil
			}
			return []adf.Node{{
				"type":    "expand",
				"attrs":   adf.Node{"title": block.Attrs["title"]},
				"content": blockContent(children),
			}}
		},
	}
}

func mediaDescriptor() Descriptor {
	return Descriptor{
		Name:     "media",
		Kind:     KindBlock,
		Priority: 30,
		Render: func(node gast.Node, source []byte, children []adf.Node) []adf.Node {
			block, ok := node.(*Block)
			if !ok {
				return nil
			}

			mediaType := strings.ToLower(strings.TrimSpace(block.Attrs["type"]))
			if mediaType == "" {
				mediaType = "file"
			}
			attrs := adf.Node{
				"type": mediaType,
				"id":   block.Attrs["id"],
			}
			if collection := block.Attrs["collection"]; collection != "" {
				attrs["collection"] = collection
			}
			if width, ok := numericAttr(block.Attrs["width"]); ok {
				attrs["width"] = width
			}
			if height, ok := numericAttr(block.Attrs["height"]); ok {
				attrs["height"] = height
			}

			single := adf.Node{
				"type":    "mediaSingle",
				"content": []adf.Node{{"type": "media", "attrs": attrs}},
			}
			if layout := strings.ToLower(strings.TrimSpace(block.Attrs["layout"])); layout != "" {
				single["attrs"] = adf.Node{"layout": layout}
			}
			return []adf.Node{single}
		},
	}
}

func layoutDescriptor() Descriptor {
	return Descriptor{
		Name:     "layout",
		Kind:     KindBlock,
		Priority: 40,
		Render: func(node gast.Node, source []byte, children []adf.Node) []adf.Node {
			columns := make([]adf.Node, 0, len(children))
			var stray []adf.Node
			for _, child := range children {
				if adf.NodeType(child) == "layoutColumn" {
					columns = append(columns, child)
					continue
				}
				stray = append(stray, child)
			}
			// Content outside an explicit column gets its own column so
			// nothing is dropped.
			if len(stray) > 0 {
				columns = append(columns, adf.Node{
					"type":    "layoutColumn",
					"content": stray,
				})
			}
			if len(columns) == 0 {
				columns = append(columns, adf.Node{
					"type":    "layoutColumn",
					"content": []adf.Node{adf.Paragraph()},
				})
			}
			return []adf.Node{{
				"type":    "layoutSection",
				"content": columns,
			}}
		},
	}
}

func columnDescriptor() Descriptor {
	return Descriptor{
		Name:     "column",
		Kind:     KindBlock,
		Priority: 50,
		Render: func(node gast.Node, source []byte, children []adf.Node) []adf.Node {
			block, ok := node.(*Block)
			if !ok {
				return nil
			}
			column := adf.Node{
				"type":    "layoutColumn",
				"content": blockContent(children),
			}
			if width, ok := numericAttr(block.Attrs["width"]); ok {
				column["attrs"] = adf.Node{"width": width}
			}
			return []adf.Node{column}
		},
	}
}

func statusDescriptor() Descriptor {
	return Descriptor{
		Name:     "status",
		Kind:     KindInline,
		Priority: 10,
		Inline:   NewStatusParser(),
		Render: func(node gast.Node, source []byte, children []adf.Node) []adf.Node {
			inline, ok := node.(*Inline)
			if !ok {
				return nil
			}
			return []adf.Node{{
				"type": "status",
				"attrs": adf.Node{
					"text":  inline.Attrs["text"],
					"color": NormalizeStatusColor(inline.Attrs["color"]),
				},
			}}
		},
	}
}

func dateDescriptor() Descriptor {
	return Descriptor{
		Name:     "date",
		Kind:     KindInline,
		Priority: 20,
		Inline:   NewDateParser(),
		Render: func(node gast.Node, source []byte, children []adf.Node) []adf.Node {
			inline, ok := node.(*Inline)
			if !ok {
				return nil
			}
			return []adf.Node{{
				"type":  "date",
				"attrs": adf.Node{"timestamp": inline.Attrs["timestamp"]},
			}}
		},
	}
}

func mentionDescriptor() Descriptor {
	return Descriptor{
		Name:     "mention",
		Kind:     KindInline,
		Priority: 30,
		Inline:   NewMentionParser(),
		Render: func(node gast.Node, source []byte, children []adf.Node) []adf.Node {
			inline, ok := node.(*Inline)
			if !ok {
				return nil
			}
			return []adf.Node{{
				"type": "mention",
				"attrs": adf.Node{
					"id":   inline.Attrs["id"],
					"text": inline.Attrs["text"],
				},
			}}
		},
	}
}

func emojiDescriptor() Descriptor {
	return Descriptor{
		Name:     "emoji",
		Kind:     KindInline,
		Priority: 40,
		Extender: emoji.Emoji,
		NodeKind: east.KindEmoji,
		Render: func(node gast.Node, source []byte, children []adf.Node) []adf.Node {
			em, ok := node.(*east.Emoji)
			if !ok {
				return nil
			}
			attrs := adf.Node{
				"shortName": ":" + string(em.ShortName) + ":",
			}
			if em.Value != nil && len(em.Value.Unicode) > 0 {
				attrs["text"] = string(em.Value.Unicode)
			}
			return []adf.Node{{
				"type":  "emoji",
				"attrs": attrs,
			}}
		},
	}
}

// blockContent guarantees container plugins always carry at least one
// block; an empty fenced body yields an empty paragraph, not an error.
func blockContent(children []adf.Node) []adf.Node {
	if len(children) == 0 {
		return []adf.Node{adf.Paragraph()}
	}
	return children
}

func numericAttr(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}
