package papers

import (
	"io"
	"log/slog"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExtractText_MissingFile(t *testing.T) {
	p := NewProcessor(testLogger())

	if _, err := p.ExtractText("testdata/does-not-exist.pdf"); err == nil {
		t.Error("Expected error for a missing file, got nil")
	}
}

func TestProcess_MissingFile(t *testing.T) {
	p := NewProcessor(testLogger())

	if _, err := p.Process("testdata/does-not-exist.pdf", "paper-1"); err == nil {
		t.Error("Expected error for a missing file, got nil")
	}
}
