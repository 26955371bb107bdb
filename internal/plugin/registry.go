package plugin

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	gast "github.com/yuin/goldmark/ast"
)

// Registry is the immutable-after-init table of plugin descriptors. It is
// populated during a single initialization phase, sealed, and then shared
// read-only by the parser and generator across any number of goroutines.
type Registry struct {
	mu          sync.RWMutex
	descriptors map[string]Descriptor
	byKind      map[gast.NodeKind]Descriptor
	validator   DescriptorValidator
	sealed      bool
}

// DescriptorValidator abstracts descriptor validation so callers can
// customize behaviour in tests.
type DescriptorValidator interface {
	ValidateDescriptor(desc Descriptor) error
}

// NewRegistry constructs a registry using the supplied validator.
func NewRegistry(validator DescriptorValidator) *Registry {
	return &Registry{
		descriptors: make(map[string]Descriptor),
		byKind:      make(map[gast.NodeKind]Descriptor),
		validator:   validator,
	}
}

// Register stores a descriptor if it passes validation and the name is not
// taken. Duplicate registration is a configuration fault surfaced at
// startup, never at conversion time.
func (r *Registry) Register(desc Descriptor) error {
	name := strings.TrimSpace(strings.ToLower(desc.Name))
	if name == "" {
		return ErrInvalidDescriptor
	}
	desc.Name = name

	if r.validator != nil {
		if err := r.validator.ValidateDescriptor(desc); err != nil {
			return err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return ErrRegistrySealed
	}
	if _, exists := r.descriptors[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateDescriptor, name)
	}

	r.descriptors[name] = desc
	if desc.NodeKind != 0 {
		r.byKind[desc.NodeKind] = desc
	}
	return nil
}

// Seal freezes the registry. Further Register calls fail with
// ErrRegistrySealed, making the no-writer-after-init invariant explicit.
func (r *Registry) Seal() {
	r.mu.Lock()
	r.sealed = true
	r.mu.Unlock()
}

// Find returns the descriptor registered under name.
func (r *Registry) Find(name string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	desc, ok := r.descriptors[strings.ToLower(strings.TrimSpace(name))]
	return desc, ok
}

// BlockPlugins returns the block-level descriptors ordered by priority,
// then name.
func (r *Registry) BlockPlugins() []Descriptor {
	return r.byKindOrdered(KindBlock)
}

// InlinePlugins returns the inline-level descriptors ordered by priority,
// then name.
func (r *Registry) InlinePlugins() []Descriptor {
	return r.byKindOrdered(KindInline)
}

func (r *Registry) byKindOrdered(kind Kind) []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Descriptor, 0, len(r.descriptors))
	for _, desc := range r.descriptors {
		if desc.Kind == kind {
			result = append(result, desc)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Priority != result[j].Priority {
			return result[i].Priority < result[j].Priority
		}
		return result[i].Name < result[j].Name
	})
	return result
}

// RendererFor resolves the descriptor responsible for rendering the given
// AST node: generic plugin nodes resolve by name, extender-produced nodes
// resolve by their registered node kind.
func (r *Registry) RendererFor(node gast.Node) (Descriptor, bool) {
	switch n := node.(type) {
	case *Block:
		return r.Find(n.PluginName)
	case *Inline:
		return r.Find(n.PluginName)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	desc, ok := r.byKind[node.Kind()]
	return desc, ok
}
