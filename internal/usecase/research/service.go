package research

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/hoplite/internal/domain"
	"github.com/kailas-cloud/hoplite/internal/domain/plan/complexity"
	"github.com/kailas-cloud/hoplite/internal/domain/plan/coverage"
	"github.com/kailas-cloud/hoplite/internal/domain/retrieval"
	"github.com/kailas-cloud/hoplite/internal/metrics"
	"github.com/kailas-cloud/hoplite/internal/usecase/planner"
)

// Options are the per-session planning knobs. All values come from config;
// the service keeps no tunable state of its own.
type Options struct {
	MinHops             int
	MaxHops             int
	TopK                int
	MaxSubqueriesPerHop int
	Concurrency         int
	CoverageThreshold   float64
	MinConfidence       float64
}

// Normalize applies defaults for unset knobs.
func (o Options) Normalize() Options {
	if o.MinHops < 1 {
		o.MinHops = 1
	}
	if o.MaxHops < o.MinHops {
		o.MaxHops = o.MinHops
	}
	if o.TopK <= 0 {
		o.TopK = 5
	}
	if o.MaxSubqueriesPerHop <= 0 {
		o.MaxSubqueriesPerHop = 3
	}
	if o.Concurrency <= 0 {
		o.Concurrency = 4
	}
	if o.Concurrency > 5 {
		o.Concurrency = 5
	}
	if o.CoverageThreshold <= 0 {
		o.CoverageThreshold = coverage.DefaultThreshold
	}
	if o.MinConfidence <= 0 {
		o.MinConfidence = 0.7
	}
	return o
}

// Result is the outcome of one research session.
type Result struct {
	Answer     string
	Documents  []retrieval.Document
	Hops       []retrieval.HopRecord
	Complexity complexity.Complexity
	Coverage   *coverage.Coverage
	StopReason string
}

// Service orchestrates one multi-hop research session per question: plan,
// retrieve hop by hop, track coverage, stop, synthesize.
type Service struct {
	retriever Retriever
	generator TextGenerator

	analyzer   *planner.Analyzer
	extractor  *planner.Extractor
	subqueries *planner.Generator
	scorer     *planner.Scorer
	policy     *planner.Policy

	logger *zap.Logger
}

// New creates a research service around a retriever.
func New(retriever Retriever, logger *zap.Logger) *Service {
	return &Service{
		retriever:  retriever,
		analyzer:   planner.NewAnalyzer(),
		extractor:  planner.NewExtractor(),
		subqueries: planner.NewGenerator(),
		scorer:     planner.NewScorer(),
		policy:     planner.NewPolicy(),
		logger:     logger,
	}
}

// WithGenerator attaches an optional text generator, used for aspect
// refinement, subquery rephrasing and answer synthesis.
func (s *Service) WithGenerator(g TextGenerator) *Service {
	s.generator = g
	s.extractor = s.extractor.WithGenerator(g)
	s.subqueries = s.subqueries.WithGenerator(g)
	return s
}

// Ask runs a full research session for one question.
func (s *Service) Ask(ctx context.Context, question string, opts Options) (*Result, error) {
	if strings.TrimSpace(question) == "" {
		return nil, domain.ErrEmptyQuestion
	}
	opts = opts.Normalize()
	bounds := planner.Bounds{MinHops: opts.MinHops, MaxHops: opts.MaxHops}

	cmplx := s.analyzer.Analyze(question, bounds)
	cov := s.extractor.Extract(ctx, question)
	tracker := planner.NewTracker(opts.CoverageThreshold)

	// The per-hop request count scales with the complexity estimate: a
	// question estimated at n hops issues at most n subqueries per hop, up
	// to the configured ceiling.
	budget := s.subqueries.Budget(cmplx, bounds)
	if budget < opts.MaxSubqueriesPerHop {
		opts.MaxSubqueriesPerHop = budget
	}

	s.logger.Debug("Session planned",
		zap.Float64("complexity_score", cmplx.Score()),
		zap.Int("estimated_hops", cmplx.EstimatedHops()),
		zap.Int("subquery_budget", budget),
		zap.Int("aspects", len(cov.Aspects())),
	)

	res := &Result{Complexity: cmplx, Coverage: cov}
	issued := make(map[string]struct{})
	var stopReason string

	for hop := 1; hop <= opts.MaxHops; hop++ {
		subqueries := s.planHop(ctx, question, cov, opts, issued)

		record := retrieval.HopRecord{Hop: hop}
		record.Subqueries = s.retrieveAll(ctx, subqueries, opts)

		hopDocs := record.Documents()
		res.Documents = append(res.Documents, hopDocs...)
		tracker.Update(cov, hopDocs, hop)

		cont, reason := s.policy.ShouldContinue(
			res.Documents, hop, bounds, cov, opts.CoverageThreshold, opts.MinConfidence)
		record.Continued = cont
		record.Reasoning = reason
		res.Hops = append(res.Hops, record)
		stopReason = reason

		s.logger.Debug("Hop finished",
			zap.Int("hop", hop),
			zap.Int("documents", len(hopDocs)),
			zap.Bool("continue", cont),
			zap.String("reason", reason),
		)

		if !cont {
			break
		}
	}

	res.StopReason = stopReason
	res.Answer = s.synthesize(ctx, question, res.Documents)

	metrics.ResearchSessionsTotal.WithLabelValues("ok").Inc()
	metrics.ResearchHopsPerSession.Observe(float64(len(res.Hops)))
	metrics.ResearchStopDecisionsTotal.WithLabelValues(stopRuleFor(stopReason)).Inc()

	return res, nil
}

// planHop picks this hop's subqueries: aspect-targeted candidates for the
// still-uncovered aspects, ranked against the question, minus anything
// already issued in an earlier hop.
func (s *Service) planHop(
	ctx context.Context, question string, cov *coverage.Coverage,
	opts Options, issued map[string]struct{},
) []planner.AspectSubquery {
	targets := cov.Uncovered(opts.CoverageThreshold)
	if len(targets) == 0 {
		targets = cov.Aspects()
	}

	candidates := s.subqueries.GenerateForAspects(ctx, question, targets, opts.MaxSubqueriesPerHop*2)

	fresh := candidates[:0]
	for _, c := range candidates {
		if _, dup := issued[c.Subquery]; dup {
			continue
		}
		fresh = append(fresh, c)
	}
	if len(fresh) == 0 {
		// Every candidate was issued before; re-probe the weakest aspects
		// with the non-adaptive templates.
		for _, sq := range s.subqueries.Generate(question) {
			if _, dup := issued[sq]; dup {
				continue
			}
			fresh = append(fresh, planner.AspectSubquery{Subquery: sq})
			break
		}
	}
	if len(fresh) == 0 {
		return nil
	}

	byText := make(map[string]planner.AspectSubquery, len(fresh))
	texts := make([]string, 0, len(fresh))
	for _, c := range fresh {
		byText[c.Subquery] = c
		texts = append(texts, c.Subquery)
	}

	ranked := s.scorer.Score(question, texts)
	out := make([]planner.AspectSubquery, 0, opts.MaxSubqueriesPerHop)
	for _, r := range ranked {
		if len(out) >= opts.MaxSubqueriesPerHop {
			break
		}
		c, ok := byText[r.Subquery()]
		if !ok {
			continue
		}
		issued[c.Subquery] = struct{}{}
		out = append(out, c)
	}
	return out
}

// retrieveAll runs the hop's subqueries in parallel with bounded concurrency
// and waits for all of them. A failed subquery is recorded and never fails
// the hop.
func (s *Service) retrieveAll(
	ctx context.Context, subqueries []planner.AspectSubquery, opts Options,
) []retrieval.SubqueryResult {
	if len(subqueries) == 0 {
		return nil
	}

	results := make([]retrieval.SubqueryResult, len(subqueries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	for i, sq := range subqueries {
		i, sq := i, sq
		g.Go(func() error {
			start := time.Now()
			docs, err := s.retriever.Retrieve(gctx, sq.Subquery, opts.TopK)
			metrics.RetrievalRequestDuration.Observe(time.Since(start).Seconds())

			r := retrieval.SubqueryResult{Subquery: sq.Subquery, Aspect: sq.Aspect}
			if err != nil {
				metrics.RetrievalFailuresTotal.Inc()
				r.Failed = true
				r.Error = fmt.Sprintf("retrieve: %v", err)
				s.logger.Warn("Subquery retrieval failed",
					zap.String("subquery", sq.Subquery),
					zap.Error(err),
				)
			} else {
				r.Documents = docs
			}
			results[i] = r
			return nil
		})
	}
	_ = g.Wait() // workers never return errors; failures live in results

	return results
}

const answerSystemPrompt = "You answer the user's question strictly from the " +
	"provided documents. Cite document titles inline. If the documents are " +
	"insufficient, say so."

const (
	maxAnswerDocs    = 6
	maxSnippetDocs   = 3
	snippetMaxRunes  = 400
	answerMaxTokens  = 700
	promptContentCap = 1200
)

// synthesize produces the final answer: generator-written when one is
// available, extractive snippets otherwise. Always non-empty.
func (s *Service) synthesize(ctx context.Context, question string, docs []retrieval.Document) string {
	top := topByScore(docs, maxAnswerDocs)

	if s.generator != nil && s.generator.IsAvailable() && len(top) > 0 {
		var b strings.Builder
		b.WriteString("Question: " + question + "\n\nDocuments:\n")
		for i := range top {
			b.WriteString(fmt.Sprintf("[%s]\n%s\n\n", top[i].Title(), truncate(top[i].Content(), promptContentCap)))
		}
		answer, err := s.generator.GenerateText(ctx, b.String(), answerSystemPrompt, answerMaxTokens)
		if err == nil && strings.TrimSpace(answer) != "" {
			return strings.TrimSpace(answer)
		}
		s.logger.Warn("Answer synthesis failed, falling back to snippets", zap.Error(err))
	}

	return extractiveAnswer(question, top)
}

// extractiveAnswer assembles the best snippets verbatim.
func extractiveAnswer(question string, top []retrieval.Document) string {
	if len(top) == 0 {
		return "No relevant documents were found for this question."
	}
	if len(top) > maxSnippetDocs {
		top = top[:maxSnippetDocs]
	}
	var b strings.Builder
	b.WriteString("Based on the retrieved documents:\n")
	for i := range top {
		b.WriteString(fmt.Sprintf("\n%s: %s\n", top[i].Title(), truncate(top[i].Content(), snippetMaxRunes)))
	}
	return b.String()
}

// topByScore returns up to n documents sorted by descending score, with
// duplicate title+content pairs removed.
func topByScore(docs []retrieval.Document, n int) []retrieval.Document {
	seen := make(map[string]struct{}, len(docs))
	uniq := make([]retrieval.Document, 0, len(docs))
	for i := range docs {
		key := docs[i].Title() + "\x00" + docs[i].Content()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		uniq = append(uniq, docs[i])
	}
	sort.SliceStable(uniq, func(i, j int) bool { return uniq[i].Score() > uniq[j].Score() })
	if len(uniq) > n {
		uniq = uniq[:n]
	}
	return uniq
}

func truncate(s string, maxRunes int) string {
	r := []rune(s)
	if len(r) <= maxRunes {
		return s
	}
	return string(r[:maxRunes]) + "…"
}

// stopRuleFor maps a stop reason to a low-cardinality metric label.
func stopRuleFor(reason string) string {
	switch {
	case strings.HasPrefix(reason, "maximum hops"):
		return "max_hops"
	case strings.HasPrefix(reason, "core aspects covered"):
		return "coverage"
	case strings.HasPrefix(reason, "sufficient high-quality"):
		return "quality"
	default:
		return "other"
	}
}
