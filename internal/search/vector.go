package search

import "math"

// SparseVector holds the non-zero entries of a vector. Indices are
// strictly increasing.
type SparseVector struct {
	Indices []int
	Values  []float64
}

// Norm is the Euclidean length of the vector.
func (s SparseVector) Norm() float64 {
	var sum float64
	for _, x := range s.Values {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// Normalize returns a unit-length copy. The zero vector is returned as is.
func (s SparseVector) Normalize() SparseVector {
	norm := s.Norm()
	if norm == 0 {
		return s
	}
	values := make([]float64, len(s.Values))
	for i, x := range s.Values {
		values[i] = x / norm
	}
	return SparseVector{Indices: s.Indices, Values: values}
}

// Dot is the inner product of two sparse vectors.
func Dot(a, b SparseVector) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(a.Indices) && j < len(b.Indices) {
		switch {
		case a.Indices[i] == b.Indices[j]:
			sum += a.Values[i] * b.Values[j]
			i++
			j++
		case a.Indices[i] < b.Indices[j]:
			i++
		default:
			j++
		}
	}
	return sum
}

// CosineSimilarity calculates the cosine similarity between two vectors.
// A zero vector on either side yields 0.
func CosineSimilarity(a, b SparseVector) float64 {
	normA, normB := a.Norm(), b.Norm()
	if normA == 0 || normB == 0 {
		return 0
	}
	return Dot(a, b) / (normA * normB)
}
