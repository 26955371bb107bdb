package markup

import (
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-markup/internal/adf"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("build engine: %v", err)
	}
	return engine
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := Config{Detection: DetectionConfig{CacheTTL: -time.Second}}
	_, err := New(cfg)
	if err == nil {
		t.Fatalf("expected validation error for negative TTL")
	}
	if !IsConfigError(err) {
		t.Fatalf("expected config error classification, got %v", err)
	}
}

func TestMarkdownToADF(t *testing.T) {
	engine := newTestEngine(t)
	doc := engine.MarkdownToADF("# Hello\n\nsome **bold** text\n")

	if adf.NodeType(doc) != "doc" || doc["version"] != 1 {
		t.Fatalf("expected versioned doc root, got %v", doc)
	}
	if !strings.Contains(adf.PlainText(doc), "bold") {
		t.Fatalf("expected content preserved, got %q", adf.PlainText(doc))
	}
}

func TestMarkdownToStorage(t *testing.T) {
	engine := newTestEngine(t)
	got := engine.MarkdownToStorage("# Hi\n")
	if got != "<h1>Hi</h1>" {
		t.Fatalf("expected heading markup, got %q", got)
	}
}

func TestRenderStorageToleratesForeignDocuments(t *testing.T) {
	engine := newTestEngine(t)
	if got := engine.RenderStorage(nil); got != "<p/>" {
		t.Fatalf("expected <p/> for nil document, got %q", got)
	}
	foreign := map[string]any{
		"type":    "doc",
		"version": 1,
		"content": []any{
			map[string]any{"type": "paragraph", "content": []any{
				map[string]any{"type": "text", "text": "decoded"},
			}},
		},
	}
	if got := engine.RenderStorage(foreign); got != "<p>decoded</p>" {
		t.Fatalf("expected decoded JSON document to render, got %q", got)
	}
}

func TestWikiRoundTripThroughFacade(t *testing.T) {
	engine := newTestEngine(t)
	wiki := engine.MarkdownToWiki("## Notes\n\n**key** point\n")
	if !strings.Contains(wiki, "h2. Notes") || !strings.Contains(wiki, "*key*") {
		t.Fatalf("unexpected wiki output: %q", wiki)
	}
	back := engine.WikiToMarkdown(wiki)
	if !strings.Contains(back, "## Notes") || !strings.Contains(back, "**key**") {
		t.Fatalf("unexpected round trip: %q", back)
	}
}

func TestClassify(t *testing.T) {
	engine := newTestEngine(t)
	if got := engine.Classify("https://acme.atlassian.net"); got != DeploymentCloud {
		t.Fatalf("expected cloud, got %s", got)
	}
	if got := engine.Classify("https://jira.acme.com"); got != DeploymentServer {
		t.Fatalf("expected server, got %s", got)
	}
	if got := engine.Classify(""); got != DeploymentUnknown {
		t.Fatalf("expected unknown, got %s", got)
	}
	engine.ClearDetectionCache()
}

func TestConvertEndToEnd(t *testing.T) {
	engine := newTestEngine(t)

	cloud := engine.Convert("# Hello\n", "https://acme.atlassian.net", "", "alice")
	if cloud.Format != FormatADF {
		t.Fatalf("expected adf on cloud, got %s", cloud.Format)
	}
	if doc, ok := adf.AsNode(cloud.Content); !ok || adf.NodeType(doc) != "doc" {
		t.Fatalf("expected document content, got %T", cloud.Content)
	}

	server := engine.Convert("**x**\n", "https://jira.acme.com", "", "alice")
	if server.Format != FormatWiki {
		t.Fatalf("expected wiki on server, got %s", server.Format)
	}
	if content, ok := server.Content.(string); !ok || !strings.Contains(content, "*x*") {
		t.Fatalf("expected wiki markup, got %v", server.Content)
	}

	forced := engine.Convert("# T\n", "https://acme.atlassian.net", FormatStorage, "alice")
	if forced.Format != FormatStorage {
		t.Fatalf("expected forced storage, got %s", forced.Format)
	}
}

func TestConvertNeverFails(t *testing.T) {
	engine := newTestEngine(t)
	inputs := []string{
		"",
		":::panel\nunterminated",
		"{status:color=}broken{/status}",
		"né unicode \x00 control",
		strings.Repeat("*", 500),
	}
	for _, input := range inputs {
		result := engine.Convert(input, "https://acme.atlassian.net", "", "")
		if result.Content == nil {
			t.Fatalf("expected non-nil content for %q", input)
		}
	}
}

func TestParseFormatFacade(t *testing.T) {
	if ParseFormat("adf") != FormatADF {
		t.Fatalf("expected adf")
	}
	if ParseFormat("nonsense") != Format("") {
		t.Fatalf("expected empty format for unknown input")
	}
}

func TestWithRegistryOverride(t *testing.T) {
	engine, err := New(DefaultConfig(), WithRegistry(nil))
	if err != nil {
		t.Fatalf("nil registry option must fall back to builtin: %v", err)
	}
	doc := engine.MarkdownToADF(":::panel\nhi\n:::\n")
	if !strings.Contains(adf.PlainText(doc), "hi") {
		t.Fatalf("expected builtin plugins active, got %v", doc)
	}
}
