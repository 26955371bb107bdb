package plugin

import (
	"errors"
	"testing"

	gast "github.com/yuin/goldmark/ast"

	"github.com/goliatone/go-markup/internal/adf"
)

func noopRender(gast.Node, []byte, []adf.Node) []adf.Node {
	return []adf.Node{}
}

func blockDescriptor(name string, priority int) Descriptor {
	return Descriptor{
		Name:     name,
		Kind:     KindBlock,
		Priority: priority,
		Render:   noopRender,
	}
}

func TestRegisterRejectsDuplicateNames(t *testing.T) {
	registry := NewRegistry(NewValidator())
	if err := registry.Register(blockDescriptor("alpha", 1)); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}
	err := registry.Register(blockDescriptor("alpha", 2))
	if !errors.Is(err, ErrDuplicateDescriptor) {
		t.Fatalf("expected ErrDuplicateDescriptor, got %v", err)
	}
}

func TestRegisterNormalizesNameCase(t *testing.T) {
	registry := NewRegistry(nil)
	if err := registry.Register(blockDescriptor("alpha", 1)); err != nil {
		t.Fatalf("registration failed: %v", err)
	}
	err := registry.Register(blockDescriptor("ALPHA", 2))
	if !errors.Is(err, ErrDuplicateDescriptor) {
		t.Fatalf("expected case-folded duplicate to fail, got %v", err)
	}
	if _, ok := registry.Find("Alpha"); !ok {
		t.Fatalf("expected case-insensitive lookup to succeed")
	}
}

func TestSealPreventsLateRegistration(t *testing.T) {
	registry := NewRegistry(nil)
	registry.Seal()
	err := registry.Register(blockDescriptor("late", 1))
	if !errors.Is(err, ErrRegistrySealed) {
		t.Fatalf("expected ErrRegistrySealed, got %v", err)
	}
}

func TestBlockPluginsOrderedByPriorityThenName(t *testing.T) {
	registry := NewRegistry(nil)
	for _, desc := range []Descriptor{
		blockDescriptor("zeta", 10),
		blockDescriptor("beta", 10),
		blockDescriptor("omega", 5),
	} {
		if err := registry.Register(desc); err != nil {
			t.Fatalf("register %s: %v", desc.Name, err)
		}
	}

	ordered := registry.BlockPlugins()
	got := make([]string, 0, len(ordered))
	for _, desc := range ordered {
		got = append(got, desc.Name)
	}
	want := []string{"omega", "beta", "zeta"}
	if len(got) != len(want) {
		t.Fatalf("expected %d plugins, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
}

func TestRendererForResolvesPluginNodesByName(t *testing.T) {
	registry := NewRegistry(nil)
	if err := registry.Register(blockDescriptor("panel", 1)); err != nil {
		t.Fatalf("register: %v", err)
	}

	desc, ok := registry.RendererFor(NewBlock("panel", nil))
	if !ok {
		t.Fatalf("expected renderer for panel block")
	}
	if desc.Name != "panel" {
		t.Fatalf("expected panel descriptor, got %s", desc.Name)
	}

	if _, ok := registry.RendererFor(NewBlock("missing", nil)); ok {
		t.Fatalf("expected no renderer for unregistered plugin")
	}
}

func TestDefaultRegistryIsSealedAndComplete(t *testing.T) {
	registry, err := DefaultRegistry()
	if err != nil {
		t.Fatalf("DefaultRegistry failed: %v", err)
	}

	for _, name := range []string{"panel", "expand", "media", "layout", "column", "status", "date", "mention", "emoji"} {
		if _, ok := registry.Find(name); !ok {
			t.Fatalf("expected builtin plugin %s", name)
		}
	}

	err = registry.Register(blockDescriptor("custom", 1))
	if !errors.Is(err, ErrRegistrySealed) {
		t.Fatalf("expected default registry to be sealed, got %v", err)
	}
}
