// Package router decides which output format a conversion should produce
// for a given target deployment and performs the conversion, honoring
// forced overrides and staged rollout configuration.
//
// The router is the engine's outer error boundary: any fault escaping a
// converter is caught here and turned into a plain-text fallback result
// carrying the original input, never a propagated failure.
package router

import (
	"fmt"

	"github.com/goliatone/go-markup/internal/deploy"
	"github.com/goliatone/go-markup/internal/generator"
	"github.com/goliatone/go-markup/internal/logging"
	"github.com/goliatone/go-markup/internal/markdown"
	"github.com/goliatone/go-markup/internal/storage"
	"github.com/goliatone/go-markup/internal/wiki"
	"github.com/goliatone/go-markup/pkg/interfaces"
)

// DiagnosticType categorizes non-fatal conversion notes.
type DiagnosticType string

const (
	// DiagnosticConversionFault reports a converter fault that triggered
	// the plain-text fallback.
	DiagnosticConversionFault DiagnosticType = "conversion_fault"
	// DiagnosticUnknownDeployment reports that the base URL could not be
	// classified and the legacy path was chosen by default.
	DiagnosticUnknownDeployment DiagnosticType = "unknown_deployment"
)

// Diagnostic is a non-fatal note attached to a conversion result.
type Diagnostic struct {
	Type    DiagnosticType `json:"type"`
	Message string         `json:"message"`
}

// Result is the tagged outcome of a routed conversion. Content holds an
// ADF document node for FormatADF and a markup string for every other
// format; it is never nil.
type Result struct {
	Format         Format       `json:"format"`
	Deployment     deploy.Type  `json:"deployment"`
	Content        any          `json:"content"`
	RolloutApplied bool         `json:"rolloutApplied"`
	Diagnostics    []Diagnostic `json:"diagnostics,omitempty"`
}

// Router wires the converters behind a deployment-aware format decision.
// All held collaborators are safe for concurrent use, so a single Router
// can serve any number of goroutines.
type Router struct {
	parser     *markdown.Parser
	generator  *generator.Generator
	storage    *storage.Renderer
	wiki       *wiki.Codec
	classifier *deploy.Classifier
	rollout    RolloutConfig
	logger     interfaces.Logger
}

// Option customizes router behaviour.
type Option func(*Router)

// WithLogger attaches a logger used for structured diagnostics.
func WithLogger(logger interfaces.Logger) Option {
	return func(r *Router) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New constructs a router over the supplied converters.
func New(
	parser *markdown.Parser,
	gen *generator.Generator,
	storageRenderer *storage.Renderer,
	wikiCodec *wiki.Codec,
	classifier *deploy.Classifier,
	rollout RolloutConfig,
	opts ...Option,
) *Router {
	r := &Router{
		parser:     parser,
		generator:  gen,
		storage:    storageRenderer,
		wiki:       wikiCodec,
		classifier: classifier,
		rollout:    rollout,
		logger:     logging.NoOp(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Convert routes one markdown conversion. The result always carries
// usable content: converter faults degrade to FormatPlainText with a
// diagnostic instead of surfacing.
func (r *Router) Convert(source, baseURL string, forced Format, callerID string) (result Result) {
	classification := r.classifier.Classify(baseURL)
	format, rolloutApplied := Decide(classification, forced, r.rollout, callerID)

	defer func() {
		if rec := recover(); rec != nil {
			logging.WithConversionContext(r.logger, baseURL, string(format)).
				Error("conversion fault, returning plain text fallback", "panic", rec)
			result = Result{
				Format:         FormatPlainText,
				Deployment:     classification,
				Content:        source,
				RolloutApplied: rolloutApplied,
				Diagnostics: []Diagnostic{{
					Type:    DiagnosticConversionFault,
					Message: fmt.Sprintf("conversion fault: %v", rec),
				}},
			}
		}
	}()

	result = Result{
		Format:         format,
		Deployment:     classification,
		RolloutApplied: rolloutApplied,
	}
	if classification == deploy.TypeUnknown {
		result.Diagnostics = append(result.Diagnostics, Diagnostic{
			Type:    DiagnosticUnknownDeployment,
			Message: "base URL could not be classified, using legacy format",
		})
	}

	switch format {
	case FormatADF:
		doc, src := r.parser.ParseString(source)
		result.Content = r.generator.Generate(doc, src)
	case FormatStorage:
		doc, src := r.parser.ParseString(source)
		result.Content = r.storage.Render(r.generator.Generate(doc, src))
	case FormatWiki:
		result.Content = r.wiki.MarkdownToWiki(source)
	default:
		result.Format = FormatPlainText
		result.Content = source
	}
	return result
}

// ClearDetectionCache drops every cached deployment classification.
func (r *Router) ClearDetectionCache() {
	r.classifier.ClearCache()
}
