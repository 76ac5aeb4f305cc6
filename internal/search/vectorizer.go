package search

import (
	"math"
	"sort"
)

// DefaultMaxFeatures caps the vocabulary size.
const DefaultMaxFeatures = 4000

// Vectorizer turns text into a vector
type Vectorizer interface {
	Fit(docs []string)
	Transform(text string) SparseVector
}

// TFIDFVectorizer implements Term Frequency - Inverse Document Frequency
// over unigrams and bigrams. Vectors are L2 normalized.
type TFIDFVectorizer struct {
	MaxFeatures int
	Vocabulary  map[string]int
	IDF         []float64
}

func NewTFIDFVectorizer(maxFeatures int) *TFIDFVectorizer {
	return &TFIDFVectorizer{
		MaxFeatures: maxFeatures,
		Vocabulary:  make(map[string]int),
	}
}

// Fit analyzes the corpus to build vocabulary and IDF stats. When the
// corpus has more distinct terms than MaxFeatures, the most frequent terms
// across the whole corpus are kept, ties going to the alphabetically
// smaller term.
func (v *TFIDFVectorizer) Fit(docs []string) {
	docCount := float64(len(docs))
	termCounts := make(map[string]int)
	docCounts := make(map[string]int)

	// 1. Count term and document occurrences
	for _, doc := range docs {
		seenInDoc := make(map[string]bool)
		for _, term := range Analyze(doc) {
			termCounts[term]++
			if !seenInDoc[term] {
				docCounts[term]++
				seenInDoc[term] = true
			}
		}
	}

	terms := make([]string, 0, len(termCounts))
	for term := range termCounts {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	// 2. Limit vocabulary
	if v.MaxFeatures > 0 && len(terms) > v.MaxFeatures {
		sort.SliceStable(terms, func(i, j int) bool {
			return termCounts[terms[i]] > termCounts[terms[j]]
		})
		terms = terms[:v.MaxFeatures]
		sort.Strings(terms)
	}

	// 3. Calculate IDF
	v.Vocabulary = make(map[string]int, len(terms))
	v.IDF = make([]float64, len(terms))
	for i, term := range terms {
		v.Vocabulary[term] = i
		// idf = ln((1 + N) / (1 + df)) + 1
		v.IDF[i] = math.Log((1+docCount)/(1+float64(docCounts[term]))) + 1
	}
}

// Transform converts text to a vector based on the learned vocabulary.
// Terms outside the vocabulary are ignored.
func (v *TFIDFVectorizer) Transform(text string) SparseVector {
	tf := make(map[int]float64)
	for _, term := range Analyze(text) {
		if idx, exists := v.Vocabulary[term]; exists {
			tf[idx]++
		}
	}

	vec := SparseVector{
		Indices: make([]int, 0, len(tf)),
		Values:  make([]float64, 0, len(tf)),
	}
	for idx := range tf {
		vec.Indices = append(vec.Indices, idx)
	}
	sort.Ints(vec.Indices)
	for _, idx := range vec.Indices {
		vec.Values = append(vec.Values, tf[idx]*v.IDF[idx])
	}

	return vec.Normalize()
}

// VocabularySize is the number of fitted terms.
func (v *TFIDFVectorizer) VocabularySize() int {
	return len(v.Vocabulary)
}
