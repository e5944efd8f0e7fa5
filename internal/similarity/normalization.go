package similarity

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// PackageRule rewrites package names matching Pattern (a regular expression)
// with Replacement, which may reference capture groups.
type PackageRule struct {
	Pattern     string `mapstructure:"pattern" toml:"pattern" yaml:"pattern" json:"pattern"`
	Replacement string `mapstructure:"replacement" toml:"replacement" yaml:"replacement" json:"replacement"`
}

// NormalizationRules configures name normalization for one run
type NormalizationRules struct {
	// Packages are tried in order; the first matching rule applies
	Packages []PackageRule
	// Classifiers are wildcard patterns with a single '*', such as "*Custom".
	// The literal part outside the wildcard is stripped from matching names.
	Classifiers []string
}

type packageRule struct {
	re          *regexp.Regexp
	replacement string
}

type classifierRule struct {
	pattern string
	prefix  string
	suffix  string
}

// NormalizationHandler answers NormalizeClassifierRequest and
// NormalizePackageRequest. It is immutable after construction.
type NormalizationHandler struct {
	packages    []packageRule
	classifiers []classifierRule
}

// NewNormalizationHandler compiles the rules. Malformed rules are logged,
// skipped and returned; the handler leaves names they would have covered
// untouched.
func NewNormalizationHandler(rules NormalizationRules, logger *slog.Logger) (*NormalizationHandler, []error) {
	if logger == nil {
		logger = slog.Default()
	}
	h := &NormalizationHandler{}
	var skipped []error

	for _, rule := range rules.Packages {
		re, err := regexp.Compile(rule.Pattern)
		if err != nil {
			err = fmt.Errorf("package normalization pattern %q: %w", rule.Pattern, err)
			logger.Warn("ignoring malformed normalization rule", "error", err)
			skipped = append(skipped, err)
			continue
		}
		h.packages = append(h.packages, packageRule{re: re, replacement: rule.Replacement})
	}

	for _, pattern := range rules.Classifiers {
		rule, err := compileClassifierPattern(pattern)
		if err != nil {
			logger.Warn("ignoring malformed normalization rule", "error", err)
			skipped = append(skipped, err)
			continue
		}
		h.classifiers = append(h.classifiers, rule)
	}
	return h, skipped
}

func compileClassifierPattern(pattern string) (classifierRule, error) {
	if strings.Count(pattern, "*") != 1 {
		return classifierRule{}, fmt.Errorf("classifier normalization pattern %q: must contain exactly one '*'", pattern)
	}
	if pattern == "*" {
		return classifierRule{}, fmt.Errorf("classifier normalization pattern %q: nothing to strip", pattern)
	}
	if !doublestar.ValidatePattern(pattern) || strings.ContainsAny(pattern, "/?[]{}") {
		return classifierRule{}, fmt.Errorf("classifier normalization pattern %q: invalid wildcard", pattern)
	}
	prefix, suffix, _ := strings.Cut(pattern, "*")
	return classifierRule{pattern: pattern, prefix: prefix, suffix: suffix}, nil
}

// CanHandle implements Handler
func (h *NormalizationHandler) CanHandle(kind RequestKind) bool {
	return kind == KindNormalizeClassifier || kind == KindNormalizePackage
}

// Handle implements Handler
func (h *NormalizationHandler) Handle(req Request) (any, error) {
	switch r := req.(type) {
	case NormalizeClassifierRequest:
		return h.NormalizeClassifier(r.Name), nil
	case NormalizePackageRequest:
		return h.NormalizePackage(r.Name), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnhandledRequestKind, req.Kind())
}

// NormalizeClassifier strips the literal part of the first matching wildcard
// pattern. Names that would become empty are returned unchanged.
func (h *NormalizationHandler) NormalizeClassifier(name string) string {
	for _, rule := range h.classifiers {
		matched, err := doublestar.Match(rule.pattern, name)
		if err != nil || !matched {
			continue
		}
		stripped := strings.TrimSuffix(strings.TrimPrefix(name, rule.prefix), rule.suffix)
		if stripped == "" {
			return name
		}
		return stripped
	}
	return name
}

// NormalizePackage rewrites the name with the first matching package rule
func (h *NormalizationHandler) NormalizePackage(name string) string {
	for _, rule := range h.packages {
		if rule.re.MatchString(name) {
			return rule.re.ReplaceAllString(name, rule.replacement)
		}
	}
	return name
}

// HasRules reports whether any rule survived compilation
func (h *NormalizationHandler) HasRules() bool {
	return len(h.packages) > 0 || len(h.classifiers) > 0
}

// NewDefaultRegistry wires a normalization handler and a similarity handler
// into a registry. Skipped normalization rules are returned. When no rule
// survives, the normalization handler is left out and names pass through
// unchanged.
func NewDefaultRegistry(rules NormalizationRules, logger *slog.Logger) (*Registry, []error) {
	norm, skipped := NewNormalizationHandler(rules, logger)
	registry := NewRegistry()
	if norm.HasRules() {
		registry.Register(norm)
	}
	registry.Register(NewSimilarityHandler(registry))
	return registry, skipped
}
