package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"
)

// rebuild joins spans back into the original text, dropping the carried
// overlap bytes from each span.
func rebuild(spans []Span) string {
	var b strings.Builder
	for _, s := range spans {
		b.WriteString(s.Text[s.Overlap:])
	}
	return b.String()
}

// TestSplit_ShortTextSingleSpan tests that text within the limit is returned whole.
func TestSplit_ShortTextSingleSpan(t *testing.T) {
	input := "Attention mechanisms weight token interactions by learned relevance."

	s := NewSplitter(WithMaxSize(500), WithOverlap(50))
	spans := s.Split(input)

	if len(spans) != 1 {
		t.Fatalf("Expected 1 span, got %d", len(spans))
	}
	if spans[0].Text != input {
		t.Errorf("Span text altered: expected %q, got %q", input, spans[0].Text)
	}
	if spans[0].Overlap != 0 {
		t.Errorf("First span overlap: expected 0, got %d", spans[0].Overlap)
	}
}

// TestSplit_EmptyInput tests that empty and whitespace-only text yields no spans.
func TestSplit_EmptyInput(t *testing.T) {
	s := NewSplitter()

	for _, input := range []string{"", "   ", "\n\n\t\n"} {
		if spans := s.Split(input); len(spans) != 0 {
			t.Errorf("Input %q: expected 0 spans, got %d", input, len(spans))
		}
	}
}

// TestSplit_ParagraphBoundaries tests that small paragraphs are packed
// together and cuts land between paragraphs, not inside them.
func TestSplit_ParagraphBoundaries(t *testing.T) {
	paras := []string{
		"The encoder stacks six identical layers.",
		"Each layer applies self-attention followed by a feed-forward block.",
		"Residual connections wrap both sublayers.",
		"Layer normalization keeps activations stable during training.",
	}
	input := strings.Join(paras, "\n\n")

	s := NewSplitter(WithMaxSize(120), WithOverlap(0))
	spans := s.Split(input)

	if len(spans) < 2 {
		t.Fatalf("Expected multiple spans, got %d", len(spans))
	}
	for i, span := range spans {
		if len(span.Text) > 120 {
			t.Errorf("Span %d exceeds max size: %d bytes", i, len(span.Text))
		}
	}
	for _, para := range paras {
		found := false
		for _, span := range spans {
			if strings.Contains(span.Text, para) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Paragraph split across spans: %q", para)
		}
	}
	if got := rebuild(spans); got != input {
		t.Errorf("Rebuilt text differs from input:\nwant %q\ngot  %q", input, got)
	}
}

// TestSplit_Reconstruction tests that stripping the recorded overlaps and
// concatenating spans reproduces the input byte for byte.
func TestSplit_Reconstruction(t *testing.T) {
	input := strings.Join([]string{
		"Abstract. We study retrieval quality under domain shift. " +
			"Our benchmark covers four corpora and three embedding families. " +
			"Results indicate that recall degrades sharply past 512 tokens.",
		"We fine-tune each encoder for ten epochs. The learning rate follows " +
			"a linear warmup over the first thousand steps. Checkpoints are " +
			"selected by validation recall at cutoff ten.",
		"Short closing remark.",
	}, "\n\n")

	for _, overlap := range []int{0, 15, 40} {
		s := NewSplitter(WithMaxSize(100), WithOverlap(overlap))
		spans := s.Split(input)
		if len(spans) < 3 {
			t.Fatalf("Overlap %d: expected several spans, got %d", overlap, len(spans))
		}
		if got := rebuild(spans); got != input {
			t.Errorf("Overlap %d: rebuilt text differs from input:\nwant %q\ngot  %q", overlap, input, got)
		}
	}
}

// TestSplit_OverlapCarried tests that each span after the first starts with
// the tail of its predecessor.
func TestSplit_OverlapCarried(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 12; i++ {
		b.WriteString("Every run reports the mean across five seeds and the deviation. ")
	}
	input := b.String()

	s := NewSplitter(WithMaxSize(200), WithOverlap(30))
	spans := s.Split(input)

	if len(spans) < 3 {
		t.Fatalf("Expected several spans, got %d", len(spans))
	}
	for i := 1; i < len(spans); i++ {
		if spans[i].Overlap != 30 {
			t.Errorf("Span %d overlap: expected 30, got %d", i, spans[i].Overlap)
			continue
		}
		prev := spans[i-1].Text
		carried := spans[i].Text[:spans[i].Overlap]
		if !strings.HasSuffix(prev, carried) {
			t.Errorf("Span %d does not start with the tail of span %d: %q vs ...%q",
				i, i-1, carried, prev[len(prev)-30:])
		}
	}
}

// TestSplit_OversizedSentenceHardWindows tests the fallback for text with no
// paragraph or sentence boundaries at all.
func TestSplit_OversizedSentenceHardWindows(t *testing.T) {
	input := strings.Repeat("x", 1000)

	s := NewSplitter(WithMaxSize(100), WithOverlap(10))
	spans := s.Split(input)

	if len(spans) < 10 {
		t.Fatalf("Expected at least 10 spans, got %d", len(spans))
	}
	for i, span := range spans {
		if len(span.Text) > 100 {
			t.Errorf("Span %d exceeds max size: %d bytes", i, len(span.Text))
		}
	}
	if got := rebuild(spans); got != input {
		t.Errorf("Rebuilt text differs from input (lengths %d vs %d)", len(input), len(got))
	}
}

// TestSplit_SentenceFallback tests that an oversized paragraph is cut at
// sentence boundaries before any hard slicing happens.
func TestSplit_SentenceFallback(t *testing.T) {
	sentences := []string{
		"The first corpus contains abstracts from machine learning venues.",
		"The second corpus contains full-text biology preprints.",
		"The third corpus mixes both domains to stress transfer.",
		"Evaluation uses recall at ten under exact nearest neighbour search.",
	}
	input := strings.Join(sentences, " ")

	s := NewSplitter(WithMaxSize(150), WithOverlap(0))
	spans := s.Split(input)

	if len(spans) < 2 {
		t.Fatalf("Expected multiple spans, got %d", len(spans))
	}
	for _, sentence := range sentences {
		found := false
		for _, span := range spans {
			if strings.Contains(span.Text, sentence) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Sentence split mid-way: %q", sentence)
		}
	}
	if got := rebuild(spans); got != input {
		t.Errorf("Rebuilt text differs from input:\nwant %q\ngot  %q", input, got)
	}
}

// TestSplit_MultiByteRunes tests that hard windows never cut inside a rune.
func TestSplit_MultiByteRunes(t *testing.T) {
	input := strings.Repeat("позиционное кодирование ", 40)

	s := NewSplitter(WithMaxSize(97), WithOverlap(13))
	spans := s.Split(input)

	if len(spans) < 5 {
		t.Fatalf("Expected several spans, got %d", len(spans))
	}
	for i, span := range spans {
		if !utf8.ValidString(span.Text) {
			t.Errorf("Span %d is not valid UTF-8: %q", i, span.Text)
		}
	}
	if got := rebuild(spans); got != input {
		t.Errorf("Rebuilt text differs from input (lengths %d vs %d)", len(input), len(got))
	}
}

// TestNewSplitter_ClampsOptions tests fallback behavior for unusable options.
func TestNewSplitter_ClampsOptions(t *testing.T) {
	s := NewSplitter(WithMaxSize(0), WithOverlap(-5))
	if s.MaxSize() != DefaultMaxSize {
		t.Errorf("Max size: expected default %d, got %d", DefaultMaxSize, s.MaxSize())
	}
	if s.Overlap() != 0 {
		t.Errorf("Overlap: expected 0, got %d", s.Overlap())
	}

	s = NewSplitter(WithMaxSize(100), WithOverlap(100))
	if s.Overlap() != 25 {
		t.Errorf("Overlap at max size: expected clamp to 25, got %d", s.Overlap())
	}
}
