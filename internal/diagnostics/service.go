package diagnostics

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/suykerbuyk/physics-lens/internal/compliance"
	"github.com/suykerbuyk/physics-lens/internal/patterns"
	"github.com/suykerbuyk/physics-lens/internal/physics"
	"github.com/suykerbuyk/physics-lens/internal/sanitize"
)

// Request is one component to evaluate. Source, Types and Observed are
// optional.
type Request struct {
	Component string               `json:"component"`
	Source    string               `json:"source,omitempty"`
	Types     []string             `json:"types,omitempty"`
	Observed  *compliance.Observed `json:"observed,omitempty"`
}

// Result is produced fresh per call and never retained by the service.
type Result struct {
	Component   string             `json:"component"`
	Effect      physics.Effect     `json:"effect"`
	Issues      []compliance.Issue `json:"issues"`
	Compliance  compliance.Result  `json:"compliance"`
	Suggestions []string           `json:"suggestions"`
	Signals     []string           `json:"signals,omitempty"`
}

// Compliant reports whether all three physics layers passed.
func (r *Result) Compliant() bool {
	return compliance.IsFullyCompliant(r.Compliance)
}

// Service ties classification, compliance and pattern matching together.
// It holds no mutable state and is safe for concurrent use.
type Service struct {
	matcher *patterns.Matcher
}

type options struct {
	custom []patterns.Pattern
}

// Option configures a Service.
type Option func(*options)

// WithPatterns appends custom patterns after the built-in catalog.
func WithPatterns(ps ...patterns.Pattern) Option {
	return func(o *options) {
		o.custom = append(o.custom, ps...)
	}
}

// New constructs a Service.
func New(opts ...Option) *Service {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return &Service{matcher: patterns.NewMatcher(o.custom...)}
}

// Analyze evaluates a component by name and optional source text. Without a
// live measurement the compliance baseline is full compliance.
func (s *Service) Analyze(component, source string) *Result {
	return s.Evaluate(Request{Component: component, Source: source})
}

// Evaluate is Analyze with declared types and measured physics.
func (s *Service) Evaluate(req Request) *Result {
	src := sanitize.StripComments(req.Source)

	signals := componentSignals(req.Component)
	types := append([]string(nil), req.Types...)
	if src != "" {
		signals = append(signals, sourceSignals(src)...)
		types = append(types, declaredTypes(src)...)
	}

	effect := physics.Classify(signals, types)

	result := &Result{
		Component: req.Component,
		Effect:    effect,
		Issues:    []compliance.Issue{},
		Signals:   signals,
	}

	if req.Observed != nil {
		result.Compliance = compliance.Check(effect, *req.Observed)
		result.Issues = append(result.Issues, compliance.ToIssues(result.Compliance)...)
	} else {
		result.Compliance = compliance.Baseline(effect)
	}

	result.Issues = append(result.Issues, detectAntiPatterns(src)...)
	result.Suggestions = suggestionsFor(effect, result.Compliant())

	return result
}

// CheckCompliance reports whether observed physics fully match effect.
func (s *Service) CheckCompliance(effect physics.Effect, observed compliance.Observed) bool {
	return compliance.IsFullyCompliant(compliance.Check(effect, observed))
}

// Match scores symptom text against the catalog.
func (s *Service) Match(symptom string) []patterns.MatchResult {
	return s.matcher.Match(symptom)
}

// Diagnose explains the most likely pattern for symptom text.
func (s *Service) Diagnose(symptom string) string {
	return s.matcher.Diagnose(symptom)
}

// AnalyzeAll evaluates requests concurrently with at most limit in flight
// (limit <= 0 means unbounded). Results keep input order.
func (s *Service) AnalyzeAll(ctx context.Context, reqs []Request, limit int) ([]*Result, error) {
	results := make([]*Result, len(reqs))

	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, req := range reqs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = s.Evaluate(req)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
