package keyword

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	blevequery "github.com/blevesearch/bleve/v2/search/query"
)

// BleveIndex implements StatementIndex using Bleve.
type BleveIndex struct {
	index bleve.Index
}

var _ StatementIndex = (*BleveIndex)(nil)

// NewBleveIndex creates or opens a Bleve index at path.
// An existing index is reopened so already-processed transcripts stay searchable.
// If you change the index mapping in code, remove the index directory and re-run process.
func NewBleveIndex(path string) (*BleveIndex, error) {
	im := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	// Standard analyzer (lowercase + tokenize, no stemming) so legal terms of art match exactly.
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("content", textFieldMapping)
	keywordFieldMapping := bleve.NewKeywordFieldMapping()
	for _, f := range []string{"speaker", "side", "transcript", "docket", "file_name", "role"} {
		docMapping.AddFieldMappingsAt(f, keywordFieldMapping)
	}
	docMapping.AddFieldMappingsAt("term", bleve.NewNumericFieldMapping())
	im.AddDocumentMapping("statement", docMapping)
	im.DefaultType = "statement"
	im.DefaultMapping = docMapping

	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open Bleve index: %w", openErr)
		}
		return &BleveIndex{index: index}, nil
	}

	index, err := bleve.New(path, im)
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &BleveIndex{index: index}, nil
}

// Index adds or replaces the statement document.
func (b *BleveIndex) Index(ctx context.Context, doc *StatementDoc) error {
	role := "advocate"
	if doc.Justice {
		role = "justice"
	}
	return b.index.Index(docID(doc.StatementID), map[string]interface{}{
		"content":    doc.Content,
		"speaker":    doc.Speaker,
		"side":       doc.Side,
		"role":       role,
		"transcript": strconv.FormatInt(doc.TranscriptID, 10),
		"docket":     doc.Docket,
		"file_name":  doc.FileName,
		"term":       float64(doc.Term),
	})
}

// Search runs a match (or phrase, or fuzzy) query over statement content,
// restricted by opts, and returns up to limit hits with highlighted fragments.
func (b *BleveIndex) Search(ctx context.Context, query string, limit int, opts *SearchOptions) ([]*Result, error) {
	if opts == nil {
		opts = &SearchOptions{}
	}
	fuzziness := 2
	if opts.Fuzziness > 0 {
		fuzziness = opts.Fuzziness
	}

	var q blevequery.Query
	switch {
	case opts.Phrase:
		pq := bleve.NewMatchPhraseQuery(query)
		pq.SetField("content")
		q = pq
	case opts.FuzzyEnabled:
		q = buildFuzzyQuery(query, fuzziness, "content")
	default:
		mq := bleve.NewMatchQuery(query)
		mq.SetField("content")
		q = mq
	}

	conjuncts := []blevequery.Query{q}
	if opts.Speaker != "" {
		tq := bleve.NewTermQuery(strings.ToUpper(strings.TrimSpace(opts.Speaker)))
		tq.SetField("speaker")
		conjuncts = append(conjuncts, tq)
	}
	if opts.Side != "" {
		tq := bleve.NewTermQuery(strings.ToLower(opts.Side))
		tq.SetField("side")
		conjuncts = append(conjuncts, tq)
	}
	if opts.Term != 0 {
		v := float64(opts.Term)
		inclusive := true
		nq := bleve.NewNumericRangeInclusiveQuery(&v, &v, &inclusive, &inclusive)
		nq.SetField("term")
		conjuncts = append(conjuncts, nq)
	}
	if len(conjuncts) > 1 {
		q = bleve.NewConjunctionQuery(conjuncts...)
	}

	search := bleve.NewSearchRequest(q)
	search.Size = limit
	search.Fields = []string{"speaker", "side", "transcript", "term", "file_name"}
	search.Highlight = bleve.NewHighlight()
	results, err := b.index.SearchInContext(ctx, search)
	if err != nil {
		return nil, fmt.Errorf("Bleve search failed: %w", err)
	}

	out := make([]*Result, 0, len(results.Hits))
	for _, hit := range results.Hits {
		id, err := parseDocID(hit.ID)
		if err != nil {
			return nil, err
		}
		r := &Result{
			StatementID: id,
			Score:       hit.Score,
			Speaker:     stringField(hit.Fields, "speaker"),
			Side:        stringField(hit.Fields, "side"),
			FileName:    stringField(hit.Fields, "file_name"),
			Fragments:   hit.Fragments["content"],
		}
		r.TranscriptID, _ = strconv.ParseInt(stringField(hit.Fields, "transcript"), 10, 64)
		if term, ok := hit.Fields["term"].(float64); ok {
			r.Term = int(term)
		}
		out = append(out, r)
	}
	return out, nil
}

func stringField(fields map[string]interface{}, name string) string {
	s, _ := fields[name].(string)
	return s
}

// tokenizeQuery splits query into lowercase terms.
func tokenizeQuery(query string) []string {
	return strings.Fields(strings.ToLower(query))
}

// buildFuzzyQuery creates a disjunction of FuzzyQueries for each term in the query.
func buildFuzzyQuery(queryStr string, fuzziness int, field string) blevequery.Query {
	terms := tokenizeQuery(queryStr)
	if len(terms) == 0 {
		mq := bleve.NewMatchQuery(queryStr)
		mq.SetField(field)
		return mq
	}

	queries := make([]blevequery.Query, 0, len(terms))
	for _, term := range terms {
		fq := bleve.NewFuzzyQuery(term)
		fq.SetFuzziness(fuzziness)
		fq.SetField(field)
		queries = append(queries, fq)
	}
	if len(queries) == 1 {
		return queries[0]
	}
	return bleve.NewDisjunctionQuery(queries...)
}

// Delete removes one statement from the index.
func (b *BleveIndex) Delete(ctx context.Context, statementID int64) error {
	return b.index.Delete(docID(statementID))
}

// DeleteTranscript removes every statement of a transcript.
func (b *BleveIndex) DeleteTranscript(ctx context.Context, transcriptID int64) error {
	tq := bleve.NewTermQuery(strconv.FormatInt(transcriptID, 10))
	tq.SetField("transcript")
	for {
		req := bleve.NewSearchRequest(tq)
		req.Size = 500
		results, err := b.index.SearchInContext(ctx, req)
		if err != nil {
			return fmt.Errorf("Bleve search failed: %w", err)
		}
		if len(results.Hits) == 0 {
			return nil
		}
		batch := b.index.NewBatch()
		for _, hit := range results.Hits {
			batch.Delete(hit.ID)
		}
		if err := b.index.Batch(batch); err != nil {
			return fmt.Errorf("failed to delete transcript %d from index: %w", transcriptID, err)
		}
	}
}

// DocCount returns the total number of statements in the index.
func (b *BleveIndex) DocCount() (uint64, error) {
	return b.index.DocCount()
}

// Close closes the Bleve index.
func (b *BleveIndex) Close() error {
	return b.index.Close()
}
