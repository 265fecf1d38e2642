package config

import "strings"

// normalizer maps case-insensitive user input onto a typed enum value.
type normalizer[T ~string] struct {
	values map[string]T
	def    T
}

func newNormalizer[T ~string](def T, values ...T) normalizer[T] {
	m := make(map[string]T, len(values))
	for _, v := range values {
		m[string(v)] = v
	}
	return normalizer[T]{values: m, def: def}
}

// normalize returns the matched value or the default for empty/unknown input.
func (n normalizer[T]) normalize(raw string) T {
	if v, ok := n.lookup(raw); ok {
		return v
	}
	return n.def
}

func (n normalizer[T]) lookup(raw string) (T, bool) {
	v, ok := n.values[strings.ToLower(strings.TrimSpace(raw))]
	return v, ok
}

// Environment selects development or production behaviour (minification, analytics, drafts).
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"
)

var envNormalizer = newNormalizer(EnvDevelopment, EnvDevelopment, EnvProduction)

// NormalizeEnvironment accepts "production"/"prod" and defaults everything else to development.
func NormalizeEnvironment(raw string) Environment {
	if strings.EqualFold(strings.TrimSpace(raw), "prod") {
		return EnvProduction
	}
	return envNormalizer.normalize(raw)
}

// TemplateEngine selects how Markdown bodies are pre-processed before conversion.
type TemplateEngine string

const (
	TemplateEngineGo   TemplateEngine = "go"
	TemplateEngineNone TemplateEngine = "none"
)

var templateEngineNormalizer = newNormalizer(TemplateEngineGo, TemplateEngineGo, TemplateEngineNone)

func NormalizeTemplateEngine(raw string) TemplateEngine { return templateEngineNormalizer.normalize(raw) }

// PermalinkPlacement positions the heading permalink relative to the heading text.
type PermalinkPlacement string

const (
	PlacementBefore PermalinkPlacement = "before"
	PlacementAfter  PermalinkPlacement = "after"
)

var placementNormalizer = newNormalizer(PlacementBefore, PlacementBefore, PlacementAfter)

func NormalizePlacement(raw string) PermalinkPlacement { return placementNormalizer.normalize(raw) }

// RetryBackoffMode enumerates supported backoff strategies for retries.
type RetryBackoffMode string

const (
	RetryBackoffFixed       RetryBackoffMode = "fixed"
	RetryBackoffLinear      RetryBackoffMode = "linear"
	RetryBackoffExponential RetryBackoffMode = "exponential"
)

var retryNormalizer = newNormalizer[RetryBackoffMode]("", RetryBackoffFixed, RetryBackoffLinear, RetryBackoffExponential)

// NormalizeRetryBackoff returns the typed mode, or "" for unknown input.
func NormalizeRetryBackoff(raw string) RetryBackoffMode { return retryNormalizer.normalize(raw) }

// LogLevel enumerates supported logging levels.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

var logLevelNormalizer = newNormalizer(LogLevelInfo, LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError)

func NormalizeLogLevel(raw string) LogLevel { return logLevelNormalizer.normalize(raw) }

// LogFormat enumerates supported log output formats.
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

var logFormatNormalizer = newNormalizer(LogFormatText, LogFormatJSON, LogFormatText)

func NormalizeLogFormat(raw string) LogFormat { return logFormatNormalizer.normalize(raw) }
