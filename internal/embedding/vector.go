package embedding

import "math"

// Normalize scales v to unit length in place and returns it. Zero vectors are
// returned unchanged.
func Normalize(v []float64) []float64 {
	norm := 0.0
	for _, x := range v {
		norm += x * x
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return v
	}
	for i := range v {
		v[i] /= norm
	}
	return v
}

// Cosine returns the cosine similarity of a and b, in [-1, 1]. Vectors of
// different length or with zero norm score 0.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	s := dot / (math.Sqrt(na) * math.Sqrt(nb))
	// clamp rounding noise
	return math.Max(-1, math.Min(1, s))
}

// FromFloat32 widens a float32 vector as returned by most model SDKs.
func FromFloat32(in []float32) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}
	return out
}
