// Package deploy classifies target base URLs into deployment types and
// caches the results under a TTL.
//
// Classification is a pure suffix match over the URL host: known cloud
// hosting suffixes mean cloud, any other well-formed http(s) URL means
// server, and everything else is unknown. The suffix set is configuration,
// not a hard-coded assumption.
package deploy

import (
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-markup/internal/logging"
	"github.com/goliatone/go-markup/pkg/interfaces"
)

// Type is the deployment classification derived from a base URL.
type Type string

const (
	// TypeCloud marks deployments hosted on a known cloud domain suffix.
	TypeCloud Type = "cloud"
	// TypeServer marks self-hosted deployments (any other http(s) URL).
	TypeServer Type = "server"
	// TypeUnknown marks empty, unparseable, or non-http(s) input.
	TypeUnknown Type = "unknown"
)

// DefaultCloudSuffixes lists the hosting domain suffixes that qualify a
// deployment as cloud.
var DefaultCloudSuffixes = []string{
	".atlassian.net",
	".jira.com",
	".jira-dev.com",
}

// Config captures classifier options.
type Config struct {
	// CloudSuffixes overrides the known cloud-hosting suffix set.
	CloudSuffixes []string
	// CacheTTL bounds how long classifications are cached.
	CacheTTL time.Duration
	// Clock overrides time.Now; tests use it to step through TTL windows.
	Clock func() time.Time
}

// Classifier derives and caches deployment types. Safe for concurrent use;
// all cache access happens under the cache's own lock.
type Classifier struct {
	suffixes []string
	cache    *cache
	logger   interfaces.Logger
}

// Option customizes classifier behaviour.
type Option func(*Classifier)

// WithLogger attaches a logger used for structured diagnostics.
func WithLogger(logger interfaces.Logger) Option {
	return func(c *Classifier) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClassifier constructs a classifier from the supplied configuration.
func NewClassifier(cfg Config, opts ...Option) *Classifier {
	suffixes := cfg.CloudSuffixes
	if len(suffixes) == 0 {
		suffixes = DefaultCloudSuffixes
	}
	normalized := make([]string, 0, len(suffixes))
	for _, suffix := range suffixes {
		suffix = strings.ToLower(strings.TrimSpace(suffix))
		if suffix == "" {
			continue
		}
		if !strings.HasPrefix(suffix, ".") {
			suffix = "." + suffix
		}
		normalized = append(normalized, suffix)
	}

	c := &Classifier{
		suffixes: normalized,
		cache:    newCache(cfg.CacheTTL, cfg.Clock),
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify returns the deployment type for baseURL. Repeated calls with
// the same URL inside the TTL window return the cached result without
// re-evaluating the match rule.
func (c *Classifier) Classify(baseURL string) Type {
	key := normalizeKey(baseURL)
	if key == "" {
		return TypeUnknown
	}

	if cached, ok := c.cache.get(key); ok {
		return cached
	}

	classification := c.evaluate(key)
	c.cache.set(key, classification)
	c.logger.Debug("classified deployment", "base_url", key, "type", string(classification))
	return classification
}

// ClearCache drops every cached classification.
func (c *Classifier) ClearCache() {
	c.cache.clear()
}

// CacheSize reports the number of live cache entries.
func (c *Classifier) CacheSize() int {
	return c.cache.len()
}

func (c *Classifier) evaluate(normalizedURL string) Type {
	parsed, err := url.Parse(normalizedURL)
	if err != nil || parsed.Host == "" {
		return TypeUnknown
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return TypeUnknown
	}

	host := parsed.Hostname()
	for _, suffix := range c.suffixes {
		if strings.HasSuffix(host, suffix) {
			return TypeCloud
		}
	}
	return TypeServer
}
