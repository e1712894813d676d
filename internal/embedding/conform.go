package embedding

// Conform forces vec to exactly dim entries. Longer vectors are truncated,
// shorter ones zero-padded. The flag reports whether the vector had to be
// adjusted; callers log adjusted vectors as a provider contract violation
// rather than failing the pipeline.
func Conform(vec []float32, dim int) ([]float32, bool) {
	if len(vec) == dim {
		return vec, false
	}
	out := make([]float32, dim)
	copy(out, vec)
	return out, true
}
