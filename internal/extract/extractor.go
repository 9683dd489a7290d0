// Package extract provides text extraction from transcript files.
package extract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// ErrUnsupportedFormat is returned for file extensions with no extractor.
var ErrUnsupportedFormat = errors.New("unsupported format")

// TextExtractor is the extraction collaborator used by ingestion.
type TextExtractor interface {
	Extract(path string) (string, error)
}

// Extractor extracts plain text from transcript files.
type Extractor struct{}

// NewExtractor returns a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Supported reports whether path has an extension Extract understands.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf", ".txt":
		return true
	}
	return false
}

// Extract reads the file at path and returns its text content.
// PDF text is rebuilt row by row so line structure survives; .txt is returned as-is (UTF-8 validated).
func (e *Extractor) Extract(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(path))
	return e.ExtractBytes(content, ext)
}

// ExtractBytes extracts text from content based on the given extension.
// ext should include the leading dot (e.g. ".pdf").
func (e *Extractor) ExtractBytes(content []byte, ext string) (string, error) {
	switch ext {
	case ".pdf":
		return extractPDF(content)
	case ".txt":
		return extractPlain(content)
	default:
		return "", fmt.Errorf("%q: %w", ext, ErrUnsupportedFormat)
	}
}

// TextOrEmpty extracts path with e and returns "" on any failure, logging the
// error. An empty body later yields the standard set of red flags.
func TextOrEmpty(e TextExtractor, path string, logger *zap.Logger) string {
	text, err := e.Extract(path)
	if err != nil {
		if logger != nil {
			logger.Warn("text extraction failed", zap.String("path", path), zap.Error(err))
		}
		return ""
	}
	return text
}
