package storage

import (
	"strings"
	"testing"

	"github.com/goliatone/go-markup/internal/adf"
)

func TestRenderEmptyDocument(t *testing.T) {
	r := NewRenderer()

	tests := []struct {
		name string
		doc  any
	}{
		{"nil input", nil},
		{"non-node input", 42},
		{"empty doc", adf.Doc(nil)},
		{"doc of empty paragraph", adf.Doc([]adf.Node{})},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := r.Render(tc.doc); got != "<p/>" {
				t.Fatalf("expected <p/>, got %q", got)
			}
		})
	}
}

func TestRenderParagraphAndHeading(t *testing.T) {
	r := NewRenderer()
	doc := adf.Doc([]adf.Node{
		{"type": "heading", "attrs": adf.Node{"level": 2}, "content": []adf.Node{adf.Text("Title")}},
		adf.Paragraph(adf.Text("body")),
	})
	got := r.Render(doc)
	want := "<h2>Title</h2><p>body</p>"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestRenderMarkNestingOrder(t *testing.T) {
	r := NewRenderer()
	doc := adf.Doc([]adf.Node{
		adf.Paragraph(adf.Text("x", adf.Mark("code"), adf.Mark("strong"), adf.LinkMark("https://e.com"))),
	})
	got := r.Render(doc)
	want := `<p><a href="https://e.com"><strong><code>x</code></strong></a></p>`
	if got != want {
		t.Fatalf("expected deterministic mark nesting %q, got %q", want, got)
	}
}

func TestRenderEscapesText(t *testing.T) {
	r := NewRenderer()
	doc := adf.Doc([]adf.Node{adf.Paragraph(adf.Text(`<b> & "quotes"`))})
	got := r.Render(doc)
	if strings.Contains(got, "<b>") {
		t.Fatalf("expected markup characters escaped, got %q", got)
	}
	if !strings.Contains(got, "&lt;b&gt;") || !strings.Contains(got, "&amp;") {
		t.Fatalf("expected escaped entities, got %q", got)
	}
}

func TestRenderCodeMacro(t *testing.T) {
	r := NewRenderer()
	doc := adf.Doc([]adf.Node{{
		"type":    "codeBlock",
		"attrs":   adf.Node{"language": "go"},
		"content": []adf.Node{{"type": "text", "text": `fmt.Println("<hi>")`}},
	}})
	got := r.Render(doc)

	want := `<ac:structured-macro ac:name="code"><ac:parameter ac:name="language">go</ac:parameter>` +
		`<ac:plain-text-body><![CDATA[fmt.Println("<hi>")]]></ac:plain-text-body></ac:structured-macro>`
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestRenderPanelMacroMapping(t *testing.T) {
	r := NewRenderer()

	tests := []struct {
		panelType string
		macro     string
	}{
		{"info", "info"},
		{"note", "note"},
		{"warning", "warning"},
		{"success", "tip"},
		{"error", "warning"},
		{"mystery", "info"},
	}
	for _, tc := range tests {
		t.Run(tc.panelType, func(t *testing.T) {
			doc := adf.Doc([]adf.Node{{
				"type":    "panel",
				"attrs":   adf.Node{"panelType": tc.panelType},
				"content": []adf.Node{adf.Paragraph(adf.Text("x"))},
			}})
			got := r.Render(doc)
			if !strings.Contains(got, `ac:name="`+tc.macro+`"`) {
				t.Fatalf("expected %s macro for %s panel, got %q", tc.macro, tc.panelType, got)
			}
			if !strings.Contains(got, "<ac:rich-text-body><p>x</p></ac:rich-text-body>") {
				t.Fatalf("expected rich text body, got %q", got)
			}
		})
	}
}

func TestRenderExpandMacro(t *testing.T) {
	r := NewRenderer()
	doc := adf.Doc([]adf.Node{{
		"type":    "expand",
		"attrs":   adf.Node{"title": "More"},
		"content": []adf.Node{adf.Paragraph(adf.Text("details"))},
	}})
	got := r.Render(doc)
	if !strings.Contains(got, `<ac:parameter ac:name="title">More</ac:parameter>`) {
		t.Fatalf("expected title parameter, got %q", got)
	}
}

func TestRenderListsAndTable(t *testing.T) {
	r := NewRenderer()
	doc := adf.Doc([]adf.Node{
		{"type": "bulletList", "content": []adf.Node{
			{"type": "listItem", "content": []adf.Node{adf.Paragraph(adf.Text("one"))}},
		}},
		{"type": "table", "content": []adf.Node{
			{"type": "tableRow", "content": []adf.Node{
				{"type": "tableHeader", "content": []adf.Node{adf.Paragraph(adf.Text("h"))}},
			}},
			{"type": "tableRow", "content": []adf.Node{
				{"type": "tableCell", "content": []adf.Node{adf.Paragraph(adf.Text("c"))}},
			}},
		}},
	})
	got := r.Render(doc)
	if !strings.Contains(got, "<ul><li><p>one</p></li></ul>") {
		t.Fatalf("expected list markup, got %q", got)
	}
	if !strings.Contains(got, "<table><tr><th><p>h</p></th></tr><tr><td><p>c</p></td></tr></table>") {
		t.Fatalf("expected table markup, got %q", got)
	}
}

func TestRenderLayoutContainersFlatten(t *testing.T) {
	r := NewRenderer()
	doc := adf.Doc([]adf.Node{{
		"type": "layoutSection",
		"content": []adf.Node{{
			"type":    "layoutColumn",
			"content": []adf.Node{adf.Paragraph(adf.Text("flat"))},
		}},
	}})
	if got := r.Render(doc); got != "<p>flat</p>" {
		t.Fatalf("expected flattened layout content, got %q", got)
	}
}

func TestRenderMediaAttachment(t *testing.T) {
	r := NewRenderer()
	doc := adf.Doc([]adf.Node{{
		"type": "mediaSingle",
		"content": []adf.Node{{
			"type":  "media",
			"attrs": adf.Node{"type": "file", "id": "diagram.png"},
		}},
	}})
	if got := r.Render(doc); got != `<ri:attachment ri:filename="diagram.png"/>` {
		t.Fatalf("expected attachment reference, got %q", got)
	}
}

func TestRenderInlineExtensions(t *testing.T) {
	r := NewRenderer()
	doc := adf.Doc([]adf.Node{adf.Paragraph(
		adf.Node{"type": "status", "attrs": adf.Node{"text": "On track", "color": "green"}},
		adf.Text(" "),
		adf.Node{"type": "mention", "attrs": adf.Node{"id": "alice", "text": "@alice"}},
		adf.Text(" "),
		adf.Node{"type": "date", "attrs": adf.Node{"timestamp": "0"}},
		adf.Node{"type": "hardBreak"},
		adf.Node{"type": "emoji", "attrs": adf.Node{"shortName": ":smile:", "text": "\U0001F604"}},
	)})
	got := r.Render(doc)
	want := "<p>On track @alice 1970-01-01<br/>\U0001F604</p>"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestRenderUnknownNodeDegradesToParagraph(t *testing.T) {
	r := NewRenderer()
	doc := adf.Doc([]adf.Node{{
		"type":    "decisionList",
		"content": []adf.Node{{"type": "decisionItem", "content": []adf.Node{adf.Text("keep it")}}},
	}})
	if got := r.Render(doc); got != "<p>keep it</p>" {
		t.Fatalf("expected text folded into a paragraph, got %q", got)
	}
}

func TestFormatTimestamp(t *testing.T) {
	if got := formatTimestamp("0"); got != "1970-01-01" {
		t.Fatalf("expected 1970-01-01, got %q", got)
	}
	if got := formatTimestamp("not-a-number"); got != "not-a-number" {
		t.Fatalf("expected raw value passthrough, got %q", got)
	}
}
