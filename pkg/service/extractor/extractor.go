// Package extractor turns uploaded files into plain text for ingestion.
package extractor

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/RafieAmandio/Teacher-RAG/pkg/domain/interfaces"
	"github.com/ledongthuc/pdf"
	"github.com/m-mizutani/goerr/v2"
)

var (
	ErrUnsupportedFormat = goerr.New("unsupported file format")
	ErrNoText            = goerr.New("no text could be extracted")
)

// SupportedExtensions lists the upload types the extractor understands
var SupportedExtensions = []string{".pdf", ".txt", ".md", ".markdown"}

// Extractor dispatches on the file extension
type Extractor struct{}

var _ interfaces.TextExtractor = &Extractor{}

func New() *Extractor {
	return &Extractor{}
}

// IsSupported reports whether name has an extension the extractor can parse
func IsSupported(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, s := range SupportedExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

func (x *Extractor) Extract(ctx context.Context, name string, data []byte) (string, error) {
	var (
		text string
		err  error
	)

	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		text, err = extractPDF(data)
	case ".txt", ".md", ".markdown":
		text, err = extractText(data)
	default:
		return "", goerr.Wrap(ErrUnsupportedFormat, "cannot extract text", goerr.V("name", name))
	}
	if err != nil {
		return "", goerr.Wrap(err, "failed to extract text", goerr.V("name", name))
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", goerr.Wrap(ErrNoText, "extracted text is empty", goerr.V("name", name))
	}
	return text, nil
}

func extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", goerr.Wrap(err, "failed to open PDF")
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", goerr.Wrap(err, "failed to read PDF text", goerr.V("pages", reader.NumPage()))
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", goerr.Wrap(err, "failed to read PDF text")
	}
	return buf.String(), nil
}

func extractText(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(data) {
		return "", goerr.New("text file is not valid UTF-8")
	}
	return strings.ReplaceAll(string(data), "\r\n", "\n"), nil
}
