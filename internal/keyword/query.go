package keyword

import (
	"context"
	"strings"
	"time"

	"github.com/hyperjump/oralarg/internal/config"
)

// Query is a statement search request as accepted by the API and the CLI.
type Query struct {
	Query   string `json:"query"`
	Limit   int    `json:"limit,omitempty"`
	Speaker string `json:"speaker,omitempty"`
	Side    string `json:"side,omitempty"`
	Term    int    `json:"term,omitempty"`
	Phrase  bool   `json:"phrase,omitempty"`
	Fuzzy   bool   `json:"fuzzy,omitempty"`
}

// Response is the result of Run.
type Response struct {
	Query     string    `json:"query"`
	Total     int       `json:"total"`
	QueryTime int64     `json:"query_time_ms"`
	AutoFuzzy bool      `json:"auto_fuzzy,omitempty"`
	Results   []*Result `json:"results"`
}

// Run executes q against idx. The limit is clamped to cfg; when an exact
// search finds nothing it is retried once with fuzzy matching.
func Run(ctx context.Context, idx StatementIndex, q *Query, cfg *config.SearchConfig) (*Response, error) {
	start := time.Now()
	limit := q.Limit
	if limit <= 0 {
		limit = cfg.DefaultLimit
	}
	if cfg.MaxLimit > 0 && limit > cfg.MaxLimit {
		limit = cfg.MaxLimit
	}
	opts := &SearchOptions{
		Speaker:      q.Speaker,
		Side:         q.Side,
		Term:         q.Term,
		Phrase:       q.Phrase,
		FuzzyEnabled: q.Fuzzy,
		Fuzziness:    cfg.Fuzziness,
	}
	text := strings.TrimSpace(q.Query)
	results, err := idx.Search(ctx, text, limit, opts)
	if err != nil {
		return nil, err
	}
	resp := &Response{Query: text}
	if len(results) == 0 && !opts.FuzzyEnabled && !opts.Phrase {
		opts.FuzzyEnabled = true
		fuzzy, fuzzyErr := idx.Search(ctx, text, limit, opts)
		if fuzzyErr == nil && len(fuzzy) > 0 {
			results = fuzzy
			resp.AutoFuzzy = true
		}
	}
	if results == nil {
		results = []*Result{}
	}
	resp.Results = results
	resp.Total = len(results)
	resp.QueryTime = time.Since(start).Milliseconds()
	return resp, nil
}
