package planner

import (
	"testing"

	"github.com/kailas-cloud/hoplite/internal/domain/plan/aspect"
	"github.com/kailas-cloud/hoplite/internal/domain/plan/coverage"
	"github.com/kailas-cloud/hoplite/internal/domain/retrieval"
)

func testCoverage(t *testing.T) *coverage.Coverage {
	t.Helper()
	def, err := aspect.New("definition: kubernetes", aspect.Definition, 1.0, []string{"kubernetes"})
	if err != nil {
		t.Fatal(err)
	}
	eval, err := aspect.New("evaluation: kubernetes scaling", aspect.Evaluation, 0.7,
		[]string{"kubernetes", "scaling"})
	if err != nil {
		t.Fatal(err)
	}
	return coverage.New([]aspect.Aspect{def, eval})
}

func TestTrackerUpdate_MatchingDocumentCoversAspect(t *testing.T) {
	tr := NewTracker(0.5)
	cov := testCoverage(t)

	doc := retrieval.Reconstruct("Kubernetes", "Kubernetes is a container orchestrator.", 0.9)
	tr.Update(cov, []retrieval.Document{doc}, 1)

	if got := cov.Score("definition: kubernetes"); got != 0.9 {
		t.Errorf("definition score %f, want 0.9", got)
	}
	if got := cov.CoveredAtHop("definition: kubernetes"); got != 1 {
		t.Errorf("covered at hop %d, want 1", got)
	}
	// Only one of two keywords matched: 0.5 * 0.9 = 0.45, below threshold.
	if got := cov.Score("evaluation: kubernetes scaling"); got != 0.45 {
		t.Errorf("evaluation score %f, want 0.45", got)
	}
	if got := cov.CoveredAtHop("evaluation: kubernetes scaling"); got != 0 {
		t.Errorf("evaluation covered at hop %d, want uncovered", got)
	}
}

func TestTrackerUpdate_ScoresNeverDecrease(t *testing.T) {
	tr := NewTracker(0.5)
	cov := testCoverage(t)

	good := retrieval.Reconstruct("Kubernetes", "Kubernetes orchestrates containers.", 0.9)
	tr.Update(cov, []retrieval.Document{good}, 1)

	weak := retrieval.Reconstruct("Kubernetes intro", "A short note on kubernetes.", 0.3)
	tr.Update(cov, []retrieval.Document{weak}, 2)

	if got := cov.Score("definition: kubernetes"); got != 0.9 {
		t.Errorf("score decreased to %f after a weaker hop", got)
	}
	if got := cov.CoveredAtHop("definition: kubernetes"); got != 1 {
		t.Errorf("covered hop rewritten to %d, want 1", got)
	}
}

func TestTrackerUpdate_BestDocumentWinsWithinHop(t *testing.T) {
	tr := NewTracker(0.5)
	cov := testCoverage(t)

	docs := []retrieval.Document{
		retrieval.Reconstruct("Off topic", "Nothing relevant here.", 0.95),
		retrieval.Reconstruct("Kubernetes scaling", "Kubernetes scaling with autoscalers.", 0.8),
		retrieval.Reconstruct("Kubernetes", "kubernetes basics", 0.4),
	}
	tr.Update(cov, docs, 1)

	// Both keywords matched by the 0.8 doc: 1.0 * 0.8.
	if got := cov.Score("evaluation: kubernetes scaling"); got != 0.8 {
		t.Errorf("evaluation score %f, want 0.8", got)
	}
}

func TestTrackerUpdate_NoDocumentsIsNoop(t *testing.T) {
	tr := NewTracker(0.5)
	cov := testCoverage(t)

	tr.Update(cov, nil, 1)

	if got := cov.Score("definition: kubernetes"); got != 0 {
		t.Errorf("score %f after empty hop, want 0", got)
	}
}

func TestNewTracker_DefaultThreshold(t *testing.T) {
	if got := NewTracker(0).Threshold(); got != coverage.DefaultThreshold {
		t.Errorf("threshold %f, want default %f", got, coverage.DefaultThreshold)
	}
	if got := NewTracker(0.7).Threshold(); got != 0.7 {
		t.Errorf("threshold %f, want 0.7", got)
	}
}
