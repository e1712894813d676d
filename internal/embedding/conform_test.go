package embedding

import "testing"

// TestConform_MatchingDimension tests that a correctly sized vector passes
// through untouched.
func TestConform_MatchingDimension(t *testing.T) {
	vec := []float32{0.1, 0.2, 0.3}

	out, adjusted := Conform(vec, 3)

	if adjusted {
		t.Error("Expected no adjustment for matching dimension")
	}
	if len(out) != 3 {
		t.Errorf("Expected length 3, got %d", len(out))
	}
	for i := range vec {
		if out[i] != vec[i] {
			t.Errorf("Element %d changed: expected %v, got %v", i, vec[i], out[i])
		}
	}
}

// TestConform_ShortVectorZeroPadded tests that an undersized vector is
// padded with zeros up to the target dimension.
func TestConform_ShortVectorZeroPadded(t *testing.T) {
	vec := make([]float32, 512)
	for i := range vec {
		vec[i] = 0.5
	}

	out, adjusted := Conform(vec, 768)

	if !adjusted {
		t.Error("Expected adjustment flag for short vector")
	}
	if len(out) != 768 {
		t.Fatalf("Expected length 768, got %d", len(out))
	}
	for i := 0; i < 512; i++ {
		if out[i] != 0.5 {
			t.Errorf("Element %d: expected 0.5, got %v", i, out[i])
		}
	}
	for i := 512; i < 768; i++ {
		if out[i] != 0 {
			t.Errorf("Padding element %d: expected 0, got %v", i, out[i])
		}
	}
}

// TestConform_LongVectorTruncated tests that an oversized vector is cut to
// the target dimension.
func TestConform_LongVectorTruncated(t *testing.T) {
	vec := make([]float32, 1536)
	for i := range vec {
		vec[i] = float32(i)
	}

	out, adjusted := Conform(vec, 768)

	if !adjusted {
		t.Error("Expected adjustment flag for long vector")
	}
	if len(out) != 768 {
		t.Fatalf("Expected length 768, got %d", len(out))
	}
	if out[767] != 767 {
		t.Errorf("Last element: expected 767, got %v", out[767])
	}
}

// TestConform_NilVector tests that a nil vector becomes an all-zero vector
// of the target dimension.
func TestConform_NilVector(t *testing.T) {
	out, adjusted := Conform(nil, 4)

	if !adjusted {
		t.Error("Expected adjustment flag for nil vector")
	}
	if len(out) != 4 {
		t.Fatalf("Expected length 4, got %d", len(out))
	}
	for i, v := range out {
		if v != 0 {
			t.Errorf("Element %d: expected 0, got %v", i, v)
		}
	}
}
