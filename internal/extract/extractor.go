// Package extract pulls plain text out of uploaded document files.
package extract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupported is returned for file types the pipeline cannot ingest.
var ErrUnsupported = errors.New("unsupported file type")

// supportedExts lists the extensions accepted for indexing.
var supportedExts = map[string]bool{
	".pdf":  true,
	".docx": true,
	".xlsx": true,
	".txt":  true,
	".md":   true,
}

// Extractor extracts text content from supported document formats.
type Extractor struct{}

// NewExtractor returns a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Supported reports whether files with the given extension can be ingested.
// ext includes the leading dot and is matched case-insensitively.
func Supported(ext string) bool {
	return supportedExts[strings.ToLower(ext)]
}

// Extract reads the file at path and returns its text content.
// Unsupported extensions return ErrUnsupported; uploads are rejected
// up front rather than indexed as garbage.
func (e *Extractor) Extract(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return e.ExtractBytes(content, filepath.Ext(path))
}

// ExtractBytes extracts text from content based on the given extension.
// ext should include the leading dot (e.g. ".pdf").
func (e *Extractor) ExtractBytes(content []byte, ext string) (string, error) {
	switch strings.ToLower(ext) {
	case ".pdf":
		return extractPDF(content)
	case ".docx":
		return extractDOCX(content)
	case ".xlsx":
		return extractExcel(content)
	case ".txt", ".md":
		return extractPlain(content)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupported, ext)
	}
}
