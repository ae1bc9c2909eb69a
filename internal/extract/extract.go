// Package extract pulls plain text out of document files so the indexing
// pipeline can chunk and embed it. Supported formats: PDF, DOCX and plain
// text (.txt/.md).
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"docsearch/internal/domain"
)

type FileExtractor struct{}

func New() *FileExtractor { return &FileExtractor{} }

func (e *FileExtractor) Extract(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", &domain.ExtractError{Path: path, Err: err}
	}
	var text string
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".pdf":
		text, err = pdfText(data)
	case ".docx":
		text, err = docxText(data)
	case ".txt", ".md":
		text = string(data)
	default:
		err = fmt.Errorf("unsupported format %s, use PDF, DOCX or plain text", ext)
	}
	if err != nil {
		return "", &domain.ExtractError{Path: path, Err: err}
	}
	return text, nil
}
