package chunker

import (
	"strings"
	"unicode/utf8"
)

// Defaults match the original deployment: 500-byte spans with a 50-byte
// overlap carried between neighbours.
const (
	DefaultMaxSize = 500
	DefaultOverlap = 50
)

// Span is one contiguous piece of the input text. Overlap records how many
// leading bytes were carried over from the end of the previous span, so
// concatenating Text[Overlap:] across spans reproduces the input exactly.
type Span struct {
	Text    string
	Overlap int
}

// Splitter cuts plain text into spans of bounded size. Sizes are measured
// in bytes of UTF-8 text; cuts never land inside a multi-byte rune.
//
// Whole paragraphs are packed together while they fit. A paragraph larger
// than the maximum is split at sentence boundaries, and a single oversized
// sentence falls back to fixed-width windows. Adjacent spans share an
// overlap so that sentences straddling a cut stay searchable.
type Splitter struct {
	maxSize int
	overlap int
}

// Option configures a Splitter.
type Option func(*Splitter)

// WithMaxSize sets the span size ceiling in bytes.
func WithMaxSize(n int) Option {
	return func(s *Splitter) { s.maxSize = n }
}

// WithOverlap sets how many bytes adjacent spans share.
func WithOverlap(n int) Option {
	return func(s *Splitter) { s.overlap = n }
}

// NewSplitter creates a Splitter with the given options. Out-of-range
// values fall back to safe ones: a non-positive max size becomes the
// default, a negative overlap becomes zero, and an overlap at or above the
// max size is reduced to a quarter of it.
func NewSplitter(opts ...Option) *Splitter {
	s := &Splitter{maxSize: DefaultMaxSize, overlap: DefaultOverlap}
	for _, opt := range opts {
		opt(s)
	}
	if s.maxSize <= 0 {
		s.maxSize = DefaultMaxSize
	}
	if s.overlap < 0 {
		s.overlap = 0
	}
	if s.overlap >= s.maxSize {
		s.overlap = s.maxSize / 4
	}
	return s
}

// MaxSize returns the span size ceiling in bytes.
func (s *Splitter) MaxSize() int { return s.maxSize }

// Overlap returns the overlap carried between adjacent spans, in bytes.
func (s *Splitter) Overlap() int { return s.overlap }

// Split cuts text into spans no larger than the configured maximum. Text
// that already fits comes back as a single span. Empty or whitespace-only
// input yields no spans.
//
// Every byte of the input lands in exactly one span (plus the recorded
// overlap seeds), so the original text can be rebuilt from the result. The
// only spans allowed to exceed the maximum are single runes wider than the
// window, which cannot be split.
func (s *Splitter) Split(text string) []Span {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if len(text) <= s.maxSize {
		return []Span{{Text: text}}
	}

	var spans []Span
	var buf strings.Builder
	carried := 0

	flush := func() {
		span := buf.String()
		spans = append(spans, Span{Text: span, Overlap: carried})
		seed := overlapTail(span, s.overlap)
		buf.Reset()
		carried = len(seed)
		buf.WriteString(seed)
	}

	for _, unit := range s.units(text) {
		if buf.Len() > carried && buf.Len()+len(unit) > s.maxSize {
			flush()
		}
		if buf.Len() == carried && carried > 0 && carried+len(unit) > s.maxSize {
			// The seed alone would push this span over the cap.
			buf.Reset()
			carried = 0
		}
		buf.WriteString(unit)
	}
	if buf.Len() > carried {
		spans = append(spans, Span{Text: buf.String(), Overlap: carried})
	}
	return spans
}

// units breaks text into pieces that each fit the max size: paragraphs
// where possible, sentences where a paragraph is too large, fixed windows
// where even a sentence is too large.
func (s *Splitter) units(text string) []string {
	var units []string
	for _, para := range strings.SplitAfter(text, "\n\n") {
		if para == "" {
			continue
		}
		if len(para) <= s.maxSize {
			units = append(units, para)
			continue
		}
		for _, sent := range splitSentences(para) {
			if len(sent) <= s.maxSize {
				units = append(units, sent)
				continue
			}
			units = append(units, hardWindows(sent, s.maxSize-s.overlap)...)
		}
	}
	return units
}

// splitSentences cuts after ". ", "! ", "? " and bare newlines, keeping
// every byte of the input.
func splitSentences(text string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '.', '!', '?':
			if i+1 < len(text) && (text[i+1] == ' ' || text[i+1] == '\n') {
				parts = append(parts, text[start:i+2])
				start = i + 2
				i++
			}
		case '\n':
			parts = append(parts, text[start:i+1])
			start = i + 1
		}
	}
	if start < len(text) {
		parts = append(parts, text[start:])
	}
	return parts
}

// hardWindows slices text into windows of at most width bytes, backing off
// to rune starts so no window splits a rune. A single rune wider than the
// window is emitted whole.
func hardWindows(text string, width int) []string {
	if width < 1 {
		width = 1
	}
	var parts []string
	for start := 0; start < len(text); {
		end := start + width
		if end >= len(text) {
			parts = append(parts, text[start:])
			break
		}
		for end > start && !utf8.RuneStart(text[end]) {
			end--
		}
		if end == start {
			_, size := utf8.DecodeRuneInString(text[start:])
			end = start + size
		}
		parts = append(parts, text[start:end])
		start = end
	}
	return parts
}

// overlapTail returns at most n trailing bytes of text, trimmed forward to
// a rune boundary. Text no longer than n yields an empty seed; carrying the
// whole previous span forward would only duplicate it.
func overlapTail(text string, n int) string {
	if n <= 0 || len(text) <= n {
		return ""
	}
	i := len(text) - n
	for i < len(text) && !utf8.RuneStart(text[i]) {
		i++
	}
	return text[i:]
}
