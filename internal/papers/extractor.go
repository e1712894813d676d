// Package papers turns uploaded PDFs into section-labeled text ready for
// ingestion. Extraction is best effort: unreadable pages are skipped, and
// section detection falls back to coarser heuristics when a paper does not
// follow the usual layout.
package papers

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dslipak/pdf"
)

// pageExtractTimeout bounds text extraction for a single page. The parser
// can hang on malformed content streams.
const pageExtractTimeout = 10 * time.Second

// Paper is the extracted representation of one uploaded document.
type Paper struct {
	ID       string
	FullText string
	Sections map[string]string
}

// Processor extracts text and sections from PDF files.
type Processor struct {
	logger *slog.Logger
}

// NewProcessor creates a Processor. If logger is nil, slog.Default() is
// used.
func NewProcessor(logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{logger: logger}
}

// Process extracts the full text of the PDF at path and segments it into
// sections.
func (p *Processor) Process(path, paperID string) (*Paper, error) {
	text, err := p.ExtractText(path)
	if err != nil {
		return nil, err
	}

	sections := DetectSections(text)
	p.logger.Info("Processed paper",
		"paper", paperID,
		"chars", len(text),
		"sections", len(sections))

	return &Paper{
		ID:       paperID,
		FullText: text,
		Sections: sections,
	}, nil
}

// ExtractText reads every page of the PDF and returns the concatenated
// text. Pages that fail to parse are skipped with a warning; the result is
// ErrNoText when nothing could be read at all.
func (p *Processor) ExtractText(path string) (string, error) {
	f, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf %s: %w", path, err)
	}

	var parts []string
	numPages := f.NumPage()
	for i := 1; i <= numPages; i++ {
		page := f.Page(i)
		if page.V.IsNull() {
			continue
		}

		content, err := extractPage(page)
		if err != nil {
			p.logger.Warn("Skipping unreadable page", "path", path, "page", i, "error", err)
			continue
		}
		parts = append(parts, content)
	}

	full := strings.TrimSpace(strings.Join(parts, "\n"))
	if full == "" {
		return "", fmt.Errorf("%w: %s", ErrNoText, path)
	}
	return full, nil
}

// extractPage guards GetPlainText with a timeout so one bad page cannot
// stall the whole upload.
func extractPage(page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	ch := make(chan result, 1)

	go func() {
		content, err := page.GetPlainText(nil)
		ch <- result{content, err}
	}()

	select {
	case r := <-ch:
		return r.content, r.err
	case <-time.After(pageExtractTimeout):
		return "", fmt.Errorf("page extraction timed out after %s", pageExtractTimeout)
	}
}
