package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"go.uber.org/zap"
)

var termDirRe = regexp.MustCompile(`^\d{4}$`)

// TermGroup is one term directory and the transcript files in it, in name order.
type TermGroup struct {
	Term  int
	Dir   string
	Files []string
}

// ParseTerm returns the term year for a directory name such as "2011".
func ParseTerm(name string) (int, bool) {
	if !termDirRe.MatchString(name) {
		return 0, false
	}
	term, err := strconv.Atoi(name)
	return term, err == nil
}

// ListTermGroups enumerates root/<term>/<file>. Hidden entries are skipped;
// directories whose name is not a four-digit term are logged and skipped.
// accept filters files; nil accepts every regular file.
func ListTermGroups(root string, accept func(path string) bool, logger *zap.Logger) ([]TermGroup, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read transcripts root: %w", err)
	}

	var groups []TermGroup
	for _, e := range entries {
		if isHidden(e.Name()) || !e.IsDir() {
			continue
		}
		term, ok := ParseTerm(e.Name())
		if !ok {
			logger.Info("skipping non-term directory", zap.String("dir", e.Name()))
			continue
		}
		dir := filepath.Join(root, e.Name())
		files, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("read term directory %s: %w", dir, err)
		}
		g := TermGroup{Term: term, Dir: dir}
		for _, f := range files {
			path := filepath.Join(dir, f.Name())
			if isHidden(f.Name()) || !isRegular(path) {
				continue
			}
			if accept != nil && !accept(path) {
				logger.Debug("skipping unsupported file", zap.String("path", path))
				continue
			}
			g.Files = append(g.Files, path)
		}
		groups = append(groups, g)
	}
	return groups, nil
}
