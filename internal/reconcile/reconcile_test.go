package reconcile

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hyperjump/oralarg/internal/models"
	"github.com/hyperjump/oralarg/internal/storage"
	"go.uber.org/zap"
)

func TestReconcile(t *testing.T) {
	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "db.sqlite"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	ctx := context.Background()

	transcripts := []*models.Transcript{
		{Term: 2011, Docket: "11-182", FileName: "11-182.pdf"},
		{Term: 2012, Docket: "12-7", FileName: "12-7.pdf"},
		{Term: 1990, Docket: "105", FileName: "105.pdf"},
		{Term: 2009, Docket: "08-205", FileName: "08-205.pdf"},
		{Term: 2008, Docket: "08-205", FileName: "08-205_Reargued.pdf"},
		{Term: 2013, Docket: "", FileName: "unknown.pdf"},
	}
	for _, tr := range transcripts {
		if err := store.UpsertTranscript(ctx, tr); err != nil {
			t.Fatal(err)
		}
	}
	cases := []*models.Case{
		{VoteID: "2011-001-01", Term: 2011, Docket: "11-182"},
		{VoteID: "2011-001-02", Term: 2011, Docket: "11-182"},
		{VoteID: "2012-001-01", Term: 2012, Docket: "A-12-7"},
		{VoteID: "1990-001-01", Term: 1990, Docket: "105, ORIG"},
		{VoteID: "2009-001-01", Term: 2008, Docket: "08-205"},
		{VoteID: "2000-001-01", Term: 2000, Docket: "99-1"},
		{VoteID: "2000-002-01", Term: 2000, Docket: ""},
	}
	for _, c := range cases {
		if _, err := store.UpsertCase(ctx, c); err != nil {
			t.Fatal(err)
		}
	}

	cov, err := Reconcile(ctx, store, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if cov.Cases != 7 || cov.CasesWithTranscript != 5 || cov.LinkedThisRun != 5 {
		t.Errorf("case coverage = %+v", cov)
	}
	if cov.Transcripts != 6 || cov.TranscriptsWithCases != 4 {
		t.Errorf("transcript coverage = %+v", cov)
	}
	if cov.CasePercent != 71.43 || cov.TranscriptPercent != 66.67 {
		t.Errorf("percentages = %v, %v", cov.CasePercent, cov.TranscriptPercent)
	}

	stored, err := store.ListCases(ctx)
	if err != nil {
		t.Fatal(err)
	}
	links := make(map[string]*int64)
	for _, c := range stored {
		links[c.VoteID] = c.TranscriptID
	}
	// The 2008-term case links to the reargued 2008 transcript, not the later one.
	if id := links["2009-001-01"]; id == nil || *id != transcripts[4].ID {
		t.Errorf("same-docket case linked to %v, want %d", id, transcripts[4].ID)
	}
	if id := links["1990-001-01"]; id == nil || *id != transcripts[2].ID {
		t.Errorf("original-jurisdiction case linked to %v", id)
	}
	if links["2000-001-01"] != nil || links["2000-002-01"] != nil {
		t.Error("unmatched cases were linked")
	}

	again, err := Reconcile(ctx, store, nil)
	if err != nil {
		t.Fatal(err)
	}
	if again.LinkedThisRun != 0 || again.CasesWithTranscript != 5 {
		t.Errorf("second run = %+v", again)
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		part, total int64
		want        float64
	}{
		{0, 0, 0},
		{1, 3, 33.33},
		{2, 3, 66.67},
		{5, 5, 100},
	}
	for _, tt := range tests {
		if got := percent(tt.part, tt.total); got != tt.want {
			t.Errorf("percent(%d, %d) = %v, want %v", tt.part, tt.total, got, tt.want)
		}
	}
}
