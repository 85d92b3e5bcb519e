package orchestrator

import (
	"testing"

	"github.com/nidhogg/teamlens/internal/layer"
)

func TestKeywordScorerRanksExactMatchesHigher(t *testing.T) {
	entries := []layer.Entry{
		{Content: "database migration rollback plan"},
		{Content: "team offsite agenda"},
	}
	scores := KeywordScorer{}.Score("database migration", entries)

	if len(scores) != 2 {
		t.Fatalf("got %d scores, want 2", len(scores))
	}
	if scores[0] <= scores[1] {
		t.Errorf("matching entry scored %v, non-matching %v", scores[0], scores[1])
	}
	if scores[1] != 0 {
		t.Errorf("non-matching entry scored %v, want 0", scores[1])
	}
}

func TestKeywordSimilarityBounds(t *testing.T) {
	kw := tokenize("incident response runbook")
	for _, content := range []string{
		"incident response runbook",
		"incident response",
		"runbook",
		"",
	} {
		got := keywordSimilarity(kw, content)
		if got < 0 || got > 1 {
			t.Errorf("similarity(%q) = %v, out of [0,1]", content, got)
		}
	}
	if keywordSimilarity(nil, "anything") != 0 {
		t.Error("empty keyword set should score 0")
	}
}

func TestTokenize(t *testing.T) {
	got := tokenize("Deploy v2: roll-out, ASAP!")
	want := []string{"deploy", "v2", "roll-out", "asap"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: got %q, want %q", i, got[i], want[i])
		}
	}
}
