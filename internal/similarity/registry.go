package similarity

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ludo-technologies/variscan/internal/parser"
)

// ErrUnhandledRequestKind is returned when no registered handler accepts a request
var ErrUnhandledRequestKind = errors.New("unhandled request kind")

// RequestKind classifies requests for handler dispatch
type RequestKind string

const (
	KindNormalizeClassifier RequestKind = "normalize-classifier"
	KindNormalizePackage    RequestKind = "normalize-package"
	KindSimilarity          RequestKind = "similarity"
)

// Request is an immutable unit of work processed by a Registry
type Request interface {
	Kind() RequestKind
	Params() any
}

// Handler processes the request kinds it advertises
type Handler interface {
	CanHandle(kind RequestKind) bool
	Handle(req Request) (any, error)
}

// NormalizeClassifierRequest asks for the normalized form of a classifier name
type NormalizeClassifierRequest struct {
	Name string
}

// Kind implements Request
func (r NormalizeClassifierRequest) Kind() RequestKind { return KindNormalizeClassifier }

// Params implements Request
func (r NormalizeClassifierRequest) Params() any { return r.Name }

// NormalizePackageRequest asks for the normalized form of a package name
type NormalizePackageRequest struct {
	Name string
}

// Kind implements Request
func (r NormalizePackageRequest) Kind() RequestKind { return KindNormalizePackage }

// Params implements Request
func (r NormalizePackageRequest) Params() any { return r.Name }

// SimilarityRequest asks whether two nodes are similar under a rule set.
// The handler answers with a Verdict.
type SimilarityRequest struct {
	Left    *parser.Node
	Right   *parser.Node
	RuleSet RuleSet
}

// Kind implements Request
func (r SimilarityRequest) Kind() RequestKind { return KindSimilarity }

// Params implements Request
func (r SimilarityRequest) Params() any { return r }

// Registry dispatches requests to the first registered handler accepting them.
// Handlers must not be registered while requests are being processed.
type Registry struct {
	handlers []Handler
}

// NewRegistry creates a registry with the given handlers in order
func NewRegistry(handlers ...Handler) *Registry {
	return &Registry{handlers: handlers}
}

// Register appends a handler
func (r *Registry) Register(h Handler) {
	r.handlers = append(r.handlers, h)
}

// Process invokes the first handler whose CanHandle accepts the request kind
func (r *Registry) Process(req Request) (any, error) {
	if r != nil {
		for _, h := range r.handlers {
			if h.CanHandle(req.Kind()) {
				return h.Handle(req)
			}
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnhandledRequestKind, req.Kind())
}

// NormalizeClassifier normalizes a classifier name, returning the name
// unchanged when no handler is registered.
func (r *Registry) NormalizeClassifier(name string) string {
	return r.normalize(NormalizeClassifierRequest{Name: name}, name)
}

// NormalizePackage normalizes a package name, returning the name unchanged
// when no handler is registered.
func (r *Registry) NormalizePackage(name string) string {
	return r.normalize(NormalizePackageRequest{Name: name}, name)
}

// NormalizeQualified normalizes a dotted classifier path: the package part
// with the package rules and the simple name with the classifier rules.
func (r *Registry) NormalizeQualified(path string) string {
	pkg, name := splitQualified(path)
	if pkg == "" {
		return r.NormalizeClassifier(name)
	}
	return r.NormalizePackage(pkg) + "." + r.NormalizeClassifier(name)
}

// Similar runs a SimilarityRequest and converts the answer to a Verdict
func (r *Registry) Similar(left, right *parser.Node, ruleSet RuleSet) (Verdict, error) {
	result, err := r.Process(SimilarityRequest{Left: left, Right: right, RuleSet: ruleSet})
	if err != nil {
		return Undecided, err
	}
	verdict, ok := result.(Verdict)
	if !ok {
		return Undecided, fmt.Errorf("similarity handler returned %T", result)
	}
	return verdict, nil
}

func (r *Registry) normalize(req Request, fallback string) string {
	result, err := r.Process(req)
	if err != nil {
		return fallback
	}
	if s, ok := result.(string); ok {
		return s
	}
	return fallback
}

func splitQualified(path string) (pkg, name string) {
	i := strings.LastIndexByte(path, '.')
	if i < 0 {
		return "", path
	}
	return path[:i], path[i+1:]
}

// SimilarityHandler answers SimilarityRequests with a fresh checker per
// request, so it is safe for concurrent use.
type SimilarityHandler struct {
	registry *Registry
}

// NewSimilarityHandler creates a handler whose checkers normalize names
// through the given registry
func NewSimilarityHandler(registry *Registry) *SimilarityHandler {
	return &SimilarityHandler{registry: registry}
}

// CanHandle implements Handler
func (h *SimilarityHandler) CanHandle(kind RequestKind) bool {
	return kind == KindSimilarity
}

// Handle implements Handler
func (h *SimilarityHandler) Handle(req Request) (any, error) {
	sr, ok := req.(SimilarityRequest)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected request type %T", ErrUnhandledRequestKind, req)
	}
	return NewChecker(sr.RuleSet, h.registry).IsSimilar(sr.Left, sr.Right), nil
}
