// Package scdb loads case records from a Supreme Court Database
// case-centered docket export, as CSV or XLSX.
package scdb

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/hyperjump/oralarg/internal/models"
	"github.com/hyperjump/oralarg/internal/storage"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"
)

// Columns read from the export. Other columns are ignored.
const (
	ColVoteID       = "voteId"
	ColDecisionType = "decisionType"
	ColTerm         = "term"
	ColDocket       = "docket"
	ColChief        = "chief"
	ColDateDecision = "dateDecision"
)

var requiredColumns = []string{ColVoteID, ColDecisionType, ColTerm, ColDocket, ColChief, ColDateDecision}

// ErrMissingColumn is returned when the header lacks a required column.
var ErrMissingColumn = errors.New("missing column")

// Load reads every well-formed case row from path. The format follows the
// extension: .xlsx reads the first sheet, anything else is parsed as CSV.
// Malformed rows are logged and skipped.
func Load(path string, logger *zap.Logger) ([]*models.Case, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var (
		rows [][]string
		err  error
	)
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		rows, err = readXLSX(path)
	} else {
		rows, err = readCSV(path)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	cols, err := indexHeader(rows[0])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	var out []*models.Case
	for i, row := range rows[1:] {
		c, err := parseRow(row, cols)
		if err != nil {
			logger.Warn("skipping malformed case row", zap.Int("row", i+2), zap.Error(err))
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// ImportResult counts what Import did.
type ImportResult struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

// Import stores cases, leaving rows whose vote ID is already stored untouched.
func Import(ctx context.Context, store storage.Storage, cases []*models.Case, logger *zap.Logger) (*ImportResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	res := &ImportResult{}
	for _, c := range cases {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		created, err := store.UpsertCase(ctx, c)
		if err != nil {
			return res, err
		}
		if !created {
			res.Skipped++
			continue
		}
		res.Created++
		logger.Debug("loaded case", zap.String("vote_id", c.VoteID), zap.String("docket", c.Docket))
	}
	return res, nil
}

func readCSV(path string) ([][]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read case file: %w", err)
	}
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	var src io.Reader = bytes.NewReader(raw)
	// The published export is Latin-1.
	if !utf8.Valid(raw) {
		src = charmap.ISO8859_1.NewDecoder().Reader(src)
	}
	r := csv.NewReader(src)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse case CSV: %w", err)
	}
	return rows, nil
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open case workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("get rows for sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

func indexHeader(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("%q: %w", name, ErrMissingColumn)
		}
	}
	return cols, nil
}

func parseRow(row []string, cols map[string]int) (*models.Case, error) {
	get := func(name string) string {
		if i := cols[name]; i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	c := &models.Case{
		VoteID:       get(ColVoteID),
		Docket:       get(ColDocket),
		ChiefJustice: get(ColChief),
	}
	if c.VoteID == "" {
		return nil, errors.New("empty vote id")
	}
	var err error
	if c.Term, err = strconv.Atoi(get(ColTerm)); err != nil {
		return nil, fmt.Errorf("term: %w", err)
	}
	if v := get(ColDecisionType); v != "" {
		if c.DecisionType, err = strconv.Atoi(v); err != nil {
			return nil, fmt.Errorf("decision type: %w", err)
		}
	}
	if v := get(ColDateDecision); v != "" {
		d, err := parseDate(v)
		if err != nil {
			return nil, fmt.Errorf("decision date: %w", err)
		}
		c.DecisionDate = &d
	}
	return c, nil
}

// parseDate accepts the export's month/day/year form, ISO dates and the
// short form spreadsheet tools render date cells as.
func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{"1/2/2006", "2006-01-02", "01-02-06"} {
		if d, err := time.Parse(layout, s); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
