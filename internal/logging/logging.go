package logging

import (
	"context"
	"maps"
	"strings"

	"github.com/goliatone/go-markup/pkg/interfaces"
)

const (
	rootModule      = "markup"
	generatorModule = "markup.generator"
	routerModule    = "markup.router"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The returned logger attaches
// the module identifier as structured context so downstream entries can be
// filtered predictably.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// GeneratorLogger returns the logger namespace reserved for ADF generation.
func GeneratorLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, generatorModule)
}

// RouterLogger returns the logger namespace reserved for format routing.
func RouterLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, routerModule)
}

// WithConversionContext enriches the provided logger with common routing
// fields such as the target base URL and the decided format. Empty values
// are ignored.
func WithConversionContext(logger interfaces.Logger, baseURL, format string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(baseURL); trimmed != "" {
		fields["base_url"] = trimmed
	}
	if trimmed := strings.TrimSpace(format); trimmed != "" {
		fields["format"] = trimmed
	}
	return WithFields(logger, fields)
}

// WithFields attaches structured fields to a logger when the implementation
// supports the optional FieldsLogger extension. Callers can pass nil or an
// empty map to skip allocation safely.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	if logger == nil || len(fields) == 0 {
		return logger
	}

	if fieldsLogger, ok := logger.(interfaces.FieldsLogger); ok {
		copied := make(map[string]any, len(fields))
		maps.Copy(copied, fields)
		return fieldsLogger.WithFields(copied)
	}

	return logger
}

// NoOp returns a logger that drops every log entry. It satisfies the Logger
// contract so converters can safely operate when logging is disabled.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
