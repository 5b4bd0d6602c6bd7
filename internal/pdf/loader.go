// Package pdf extracts plain text from PDF documents.
package pdf

import (
	"errors"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// ErrLoadFailed indicates the source document could not be read or parsed.
var ErrLoadFailed = errors.New("document load failed")

// Loader extracts text from PDF files on the local filesystem.
type Loader struct{}

// NewLoader creates a PDF loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load extracts one text block per page, in page order. Pages that yield no
// text are skipped. Unreadable or unparseable files surface as ErrLoadFailed;
// the caller treats this as fatal, not retryable.
func (l *Loader) Load(path string) ([]string, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrLoadFailed, path, err)
	}
	defer file.Close()

	var blocks []string
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("%w: page %d of %s: %v", ErrLoadFailed, pageNum, path, err)
		}
		if text != "" {
			blocks = append(blocks, text)
		}
	}

	return blocks, nil
}
