package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	markup "github.com/goliatone/go-markup"
	"github.com/goliatone/go-markup/internal/logging/gologger"
)

var engineBuilder = buildEngine

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("markup: %v", err)
	}
}

func run(args []string, stdout io.Writer) error {
	flags := flag.NewFlagSet("markup", flag.ContinueOnError)
	var (
		inputPath = flags.String("input", "", "Markdown file to convert (defaults to stdin)")
		baseURL   = flags.String("base-url", "", "Deployment base URL used for classification and routing")
		format    = flags.String("format", "", "Force an output format: adf, storage, wiki, or plain")
		callerID  = flags.String("caller", "", "Caller identity used for deterministic rollout bucketing")
		wikiIn    = flags.Bool("from-wiki", false, "Treat input as wiki markup and convert it to markdown")
		logLevel  = flags.String("log-level", "info", "Log level: trace, debug, info, warn, error")
		logFormat = flags.String("log-format", "console", "Log format: json, console, or pretty")
	)
	if err := flags.Parse(args); err != nil {
		return err
	}

	source, err := readSource(*inputPath)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	engine, err := engineBuilder(*logLevel, *logFormat)
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}

	if *wikiIn {
		fmt.Fprintln(stdout, engine.WikiToMarkdown(source))
		return nil
	}

	result := engine.Convert(source, *baseURL, markup.ParseFormat(*format), *callerID)
	return writeResult(stdout, result)
}

func buildEngine(logLevel, logFormat string) (*markup.Engine, error) {
	cfg := markup.ConfigFromEnv(os.Getenv)
	cfg.Logging.Level = logLevel
	cfg.Logging.Format = logFormat

	provider, err := gologger.NewProvider(gologger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		return nil, err
	}

	return markup.New(cfg, markup.WithLoggerProvider(provider))
}

func readSource(path string) (string, error) {
	if path == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func writeResult(stdout io.Writer, result markup.Result) error {
	switch content := result.Content.(type) {
	case string:
		fmt.Fprintf(stdout, "Format: %s\nDeployment: %s\n\n%s\n", result.Format, result.Deployment, content)
	default:
		payload, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
		fmt.Fprintln(stdout, string(payload))
	}
	for _, diag := range result.Diagnostics {
		fmt.Fprintf(os.Stderr, "warning [%s]: %s\n", diag.Type, diag.Message)
	}
	return nil
}
