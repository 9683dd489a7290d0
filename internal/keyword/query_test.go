package keyword

import (
	"context"
	"testing"

	"github.com/hyperjump/oralarg/internal/config"
)

func TestRun(t *testing.T) {
	idx := newTestIndex(t)
	seed(t, idx)
	cfg := &config.SearchConfig{DefaultLimit: 10, MaxLimit: 1, Fuzziness: 2}
	ctx := context.Background()

	t.Run("limit clamped", func(t *testing.T) {
		resp, err := Run(ctx, idx, &Query{Query: "statute", Limit: 50}, cfg)
		if err != nil {
			t.Fatal(err)
		}
		if resp.Total != 1 || len(resp.Results) != 1 {
			t.Errorf("total = %d, want 1", resp.Total)
		}
		if resp.AutoFuzzy {
			t.Error("exact hit should not be marked auto fuzzy")
		}
	})

	t.Run("auto fuzzy retry", func(t *testing.T) {
		resp, err := Run(ctx, idx, &Query{Query: "  statuet ", Speaker: "MR. SMITH"}, cfg)
		if err != nil {
			t.Fatal(err)
		}
		if !resp.AutoFuzzy || resp.Total != 1 || resp.Results[0].StatementID != 1 {
			t.Errorf("resp = %+v", resp)
		}
		if resp.Query != "statuet" {
			t.Errorf("query = %q, want trimmed", resp.Query)
		}
	})

	t.Run("no results is empty slice", func(t *testing.T) {
		resp, err := Run(ctx, idx, &Query{Query: "habeas", Phrase: true}, cfg)
		if err != nil {
			t.Fatal(err)
		}
		if resp.Results == nil || resp.Total != 0 || resp.AutoFuzzy {
			t.Errorf("resp = %+v", resp)
		}
	})
}
