// Package markup converts author-facing markdown (extended with custom
// block and inline plugin syntax) into the structured document format
// consumed by modern collaboration deployments, renders that format into
// legacy storage markup, converts markdown to and from legacy wiki
// markup, and routes between those outputs per target deployment with
// staged rollout support.
//
// The conversion entry points never fail: malformed input degrades to
// literal text and internal faults degrade to plain-text results carrying
// the original source.
package markup

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-markup/internal/adf"
	"github.com/goliatone/go-markup/internal/deploy"
	"github.com/goliatone/go-markup/internal/generator"
	"github.com/goliatone/go-markup/internal/logging"
	"github.com/goliatone/go-markup/internal/markdown"
	"github.com/goliatone/go-markup/internal/plugin"
	"github.com/goliatone/go-markup/internal/router"
	"github.com/goliatone/go-markup/internal/storage"
	"github.com/goliatone/go-markup/internal/wiki"
	"github.com/goliatone/go-markup/pkg/interfaces"
)

// Public aliases so hosts consume the engine without importing internal
// packages.
type (
	// Document is a structured-document (ADF) node.
	Document = adf.Node
	// Format tags a conversion output representation.
	Format = router.Format
	// Result is the tagged outcome of a routed conversion.
	Result = router.Result
	// Diagnostic is a non-fatal conversion note.
	Diagnostic = router.Diagnostic
	// DeploymentType is the cloud/server/unknown classification.
	DeploymentType = deploy.Type
)

// Re-exported format and deployment constants.
const (
	FormatADF       = router.FormatADF
	FormatStorage   = router.FormatStorage
	FormatWiki      = router.FormatWiki
	FormatPlainText = router.FormatPlainText

	DeploymentCloud   = deploy.TypeCloud
	DeploymentServer  = deploy.TypeServer
	DeploymentUnknown = deploy.TypeUnknown
)

// ParseFormat normalizes a forced-format string; unrecognized values mean
// "no override".
func ParseFormat(raw string) Format {
	return router.ParseFormat(raw)
}

// Engine is the assembled conversion subsystem. Construct once at process
// start and share freely: every method is safe for concurrent use.
type Engine struct {
	registry   *plugin.Registry
	parser     *markdown.Parser
	generator  *generator.Generator
	storage    *storage.Renderer
	wiki       *wiki.Codec
	classifier *deploy.Classifier
	router     *router.Router
}

// Option customizes engine construction.
type Option func(*engineOptions)

type engineOptions struct {
	provider interfaces.LoggerProvider
	registry *plugin.Registry
}

// WithLoggerProvider supplies the logger provider used to create module
// scoped loggers for every converter.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(o *engineOptions) {
		if provider != nil {
			o.provider = provider
		}
	}
}

// WithRegistry overrides the builtin plugin catalogue. The registry must
// already be sealed; the engine never mutates it.
func WithRegistry(registry *plugin.Registry) Option {
	return func(o *engineOptions) {
		if registry != nil {
			o.registry = registry
		}
	}
}

// New assembles an engine from the supplied configuration. Configuration
// faults, including duplicate plugin registration, fail here rather than
// at conversion time.
func New(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "markup: invalid configuration").
			WithTextCode("MARKUP_CONFIG_INVALID")
	}

	options := engineOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	registry := options.registry
	if registry == nil {
		built, err := plugin.DefaultRegistry()
		if err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "markup: plugin registration failed").
				WithTextCode("MARKUP_PLUGIN_REGISTRATION")
		}
		registry = built
	}

	parser := markdown.NewParser(registry)
	gen := generator.New(registry,
		generator.WithLogger(logging.GeneratorLogger(options.provider)))
	storageRenderer := storage.NewRenderer(
		storage.WithLogger(logging.ModuleLogger(options.provider, "markup.storage")))
	wikiCodec := wiki.NewCodec()
	classifier := deploy.NewClassifier(deploy.Config{
		CloudSuffixes: cfg.Detection.CloudSuffixes,
		CacheTTL:      cfg.Detection.CacheTTL,
	}, deploy.WithLogger(logging.ModuleLogger(options.provider, "markup.deploy")))

	return &Engine{
		registry:   registry,
		parser:     parser,
		generator:  gen,
		storage:    storageRenderer,
		wiki:       wikiCodec,
		classifier: classifier,
		router: router.New(parser, gen, storageRenderer, wikiCodec, classifier, cfg.Rollout,
			router.WithLogger(logging.RouterLogger(options.provider))),
	}, nil
}

// MarkdownToADF converts markdown into a structured document. Total: any
// input yields a valid document, worst case a plain-text paragraph.
func (e *Engine) MarkdownToADF(source string) Document {
	doc, src := e.parser.ParseString(source)
	return e.generator.Generate(doc, src)
}

// MarkdownToStorage converts markdown into legacy storage markup.
func (e *Engine) MarkdownToStorage(source string) string {
	return e.storage.Render(e.MarkdownToADF(source))
}

// RenderStorage renders an already-held structured document into legacy
// storage markup. Tolerates documents this engine never produced.
func (e *Engine) RenderStorage(doc any) string {
	return e.storage.Render(doc)
}

// MarkdownToWiki converts markdown into legacy wiki markup.
func (e *Engine) MarkdownToWiki(source string) string {
	return e.wiki.MarkdownToWiki(source)
}

// WikiToMarkdown converts legacy wiki markup into markdown.
func (e *Engine) WikiToMarkdown(source string) string {
	return e.wiki.WikiToMarkdown(source)
}

// Classify returns the deployment type for a base URL, consulting the
// TTL-bounded detection cache.
func (e *Engine) Classify(baseURL string) DeploymentType {
	return e.classifier.Classify(baseURL)
}

// Convert routes one conversion: classifies the deployment, decides the
// output format (honoring the forced override and rollout configuration),
// runs the matching converter, and returns the tagged result. It never
// fails; see router.Result.
func (e *Engine) Convert(source, baseURL string, forced Format, callerID string) Result {
	return e.router.Convert(source, baseURL, forced, callerID)
}

// ClearDetectionCache drops every cached deployment classification. The
// plugin registry is immutable and has no equivalent operation.
func (e *Engine) ClearDetectionCache() {
	e.router.ClearDetectionCache()
}

// IsConfigError reports whether err originated from engine configuration
// validation, letting hosts distinguish startup faults from wiring bugs.
func IsConfigError(err error) bool {
	if err == nil {
		return false
	}
	return goerrors.IsCategory(err, goerrors.CategoryValidation) ||
		errors.Is(err, ErrCacheTTLInvalid) ||
		errors.Is(err, plugin.ErrDuplicateDescriptor) ||
		errors.Is(err, plugin.ErrInvalidDescriptor)
}
