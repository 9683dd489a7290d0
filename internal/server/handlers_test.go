package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hyperjump/oralarg/internal/config"
	"github.com/hyperjump/oralarg/internal/extract"
	"github.com/hyperjump/oralarg/internal/ingest"
	"github.com/hyperjump/oralarg/internal/keyword"
	"github.com/hyperjump/oralarg/internal/models"
	"github.com/hyperjump/oralarg/internal/reconcile"
	"github.com/hyperjump/oralarg/internal/storage"
	"github.com/hyperjump/oralarg/internal/transcript/transcripttest"
	"go.uber.org/zap"
)

type fixture struct {
	handler http.Handler
	store   *storage.SQLiteStorage
	good    *models.Transcript
	flagged *models.Transcript
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewSQLiteStorage(filepath.Join(dir, "db.sqlite"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	kw, err := keyword.NewBleveIndex(filepath.Join(dir, "bleve"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = kw.Close() })

	ctx := context.Background()
	in := ingest.NewIngester(store, extract.NewExtractor(),
		ingest.WithLogger(zap.NewNop()), ingest.WithKeywordIndex(kw))
	good, _, err := in.ProcessDocument(ctx, "11-182.pdf", 2011, "11-182", transcripttest.Sample())
	if err != nil {
		t.Fatal(err)
	}
	flagged, _, err := in.ProcessDocument(ctx, "12-7.pdf", 2012, "12-7", transcripttest.SampleWithoutEnd())
	if err != nil {
		t.Fatal(err)
	}
	decided := time.Date(2012, 6, 25, 0, 0, 0, 0, time.UTC)
	if _, err := store.UpsertCase(ctx, &models.Case{VoteID: "2011-050-01", Term: 2011, Docket: "11-182", DecisionDate: &decided}); err != nil {
		t.Fatal(err)
	}
	if _, err := reconcile.Reconcile(ctx, store, zap.NewNop()); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.Storage.DatabasePath = filepath.Join(dir, "db.sqlite")
	cfg.Storage.BleveIndexPath = filepath.Join(dir, "bleve")
	srv := NewServer(store, kw, cfg, zap.NewNop())
	return &fixture{handler: srv.Router(), store: store, good: good, flagged: flagged}
}

func (f *fixture) do(t *testing.T, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	r := httptest.NewRequest(method, target, &buf)
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, r)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("decode: %v\n%s", err, w.Body.String())
	}
}

func TestHandleHealth(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	var out map[string]string
	decode(t, w, &out)
	if out["status"] != "ok" {
		t.Errorf("body = %v", out)
	}
}

func TestHandleStatus(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodGet, "/api/v1/status", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	var out StatusResponse
	decode(t, w, &out)
	want := uint64(2 * (transcripttest.PetitionerStatements + transcripttest.RespondentStatements))
	if out.Stats == nil || out.Transcripts != 2 || out.FlaggedTranscripts != 1 || out.Cases != 1 {
		t.Errorf("stats = %+v", out.Stats)
	}
	if out.IndexedStatements != want {
		t.Errorf("indexed statements = %d, want %d", out.IndexedStatements, want)
	}
	if out.DiskUsageBytes == nil || *out.DiskUsageBytes == 0 {
		t.Error("disk usage should be reported")
	}
}

func TestHandleListTranscripts(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name   string
		query  string
		status int
		want   []string
	}{
		{"all", "", http.StatusOK, []string{"11-182.pdf", "12-7.pdf"}},
		{"by term", "?term=2012", http.StatusOK, []string{"12-7.pdf"}},
		{"flagged", "?flagged=true", http.StatusOK, []string{"12-7.pdf"}},
		{"limit", "?limit=1", http.StatusOK, []string{"11-182.pdf"}},
		{"offset past end", "?offset=5", http.StatusOK, []string{}},
		{"bad term", "?term=abc", http.StatusBadRequest, nil},
		{"bad flagged", "?flagged=maybe", http.StatusBadRequest, nil},
		{"negative limit", "?limit=-1", http.StatusBadRequest, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(t, http.MethodGet, "/api/v1/transcripts"+tt.query, nil)
			if w.Code != tt.status {
				t.Fatalf("status: got %d, want %d (%s)", w.Code, tt.status, w.Body.String())
			}
			if tt.status != http.StatusOK {
				return
			}
			var out struct {
				Transcripts []*models.Transcript `json:"transcripts"`
				Total       int                  `json:"total"`
			}
			decode(t, w, &out)
			if out.Total != len(tt.want) || len(out.Transcripts) != len(tt.want) {
				t.Fatalf("got %d transcripts, want %v", len(out.Transcripts), tt.want)
			}
			for i, tr := range out.Transcripts {
				if tr.FileName != tt.want[i] {
					t.Errorf("transcript %d = %s, want %s", i, tr.FileName, tt.want[i])
				}
				if tr.RawText != "" {
					t.Error("list should not include raw text")
				}
			}
		})
	}
}

func TestHandleGetTranscript(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, fmt.Sprintf("/api/v1/transcripts/%d", f.good.ID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	var tr models.Transcript
	decode(t, w, &tr)
	if tr.Docket != "11-182" || tr.Term != 2011 {
		t.Errorf("transcript = %+v", tr)
	}
	if len(tr.Statements) != transcripttest.PetitionerStatements+transcripttest.RespondentStatements {
		t.Errorf("statements = %d", len(tr.Statements))
	}
	if tr.RawText != "" {
		t.Error("raw text should be omitted unless requested")
	}

	w = f.do(t, http.MethodGet, fmt.Sprintf("/api/v1/transcripts/%d?raw=true", f.good.ID), nil)
	var withRaw models.Transcript
	decode(t, w, &withRaw)
	if !strings.Contains(withRaw.RawText, "P R O C E E D I N G S") {
		t.Error("raw=true should include raw text")
	}

	for target, want := range map[string]int{
		"/api/v1/transcripts/9999": http.StatusNotFound,
		"/api/v1/transcripts/abc":  http.StatusBadRequest,
		"/api/v1/transcripts/0":    http.StatusBadRequest,
	} {
		if w := f.do(t, http.MethodGet, target, nil); w.Code != want {
			t.Errorf("%s: got %d, want %d", target, w.Code, want)
		}
	}
}

func TestHandleListFlags(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, fmt.Sprintf("/api/v1/transcripts/%d/flags", f.flagged.ID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	var out struct {
		RedFlags []*models.RedFlag `json:"red_flags"`
	}
	decode(t, w, &out)
	if len(out.RedFlags) != 1 || out.RedFlags[0].TranscriptID != f.flagged.ID {
		t.Errorf("red flags = %+v", out.RedFlags)
	}

	w = f.do(t, http.MethodGet, fmt.Sprintf("/api/v1/transcripts/%d/flags", f.good.ID), nil)
	out.RedFlags = nil
	decode(t, w, &out)
	if out.RedFlags == nil || len(out.RedFlags) != 0 {
		t.Errorf("well-formed transcript should have an empty flag list, got %v", out.RedFlags)
	}

	if w := f.do(t, http.MethodGet, "/api/v1/transcripts/9999/flags", nil); w.Code != http.StatusNotFound {
		t.Errorf("missing transcript: got %d", w.Code)
	}
}

func TestHandleGetStatement(t *testing.T) {
	f := newFixture(t)
	stored, err := f.store.GetTranscript(context.Background(), f.good.ID)
	if err != nil {
		t.Fatal(err)
	}
	first := stored.Statements[0]

	w := f.do(t, http.MethodGet, fmt.Sprintf("/api/v1/statements/%d", first.ID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	var st models.Statement
	decode(t, w, &st)
	if st.Speaker != "MR. SMITH" || !st.SpeakerIsPetitioner || len(st.Paragraphs) == 0 {
		t.Errorf("statement = %+v", st)
	}

	if w := f.do(t, http.MethodGet, "/api/v1/statements/999999", nil); w.Code != http.StatusNotFound {
		t.Errorf("missing statement: got %d", w.Code)
	}
}

func TestHandleSearch(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/v1/search",
		keyword.Query{Query: "example", Speaker: "JUSTICE BREYER", Term: 2011, Limit: 5})
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d (%s)", w.Code, w.Body.String())
	}
	var resp keyword.Response
	decode(t, w, &resp)
	if resp.Total != 5 {
		t.Errorf("total = %d, want 5", resp.Total)
	}
	for _, r := range resp.Results {
		if r.Speaker != "JUSTICE BREYER" || r.TranscriptID != f.good.ID || r.Term != 2011 {
			t.Errorf("result = %+v", r)
		}
	}

	if w := f.do(t, http.MethodPost, "/api/v1/search", keyword.Query{}); w.Code != http.StatusBadRequest {
		t.Errorf("empty query: got %d", w.Code)
	}
	r := httptest.NewRequest(http.MethodPost, "/api/v1/search", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, r)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad body: got %d", rec.Code)
	}
}

func TestHandleCoverageAndCases(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/api/v1/coverage", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	var cov reconcile.Coverage
	decode(t, w, &cov)
	if cov.Cases != 1 || cov.CasesWithTranscript != 1 || cov.CasePercent != 100 {
		t.Errorf("case coverage = %+v", cov)
	}
	if cov.Transcripts != 2 || cov.TranscriptsWithCases != 1 || cov.TranscriptPercent != 50 {
		t.Errorf("transcript coverage = %+v", cov)
	}

	w = f.do(t, http.MethodGet, "/api/v1/cases", nil)
	var out struct {
		Cases []*models.Case `json:"cases"`
	}
	decode(t, w, &out)
	if len(out.Cases) != 1 || out.Cases[0].TranscriptID == nil || *out.Cases[0].TranscriptID != f.good.ID {
		t.Errorf("cases = %+v", out.Cases)
	}
}
