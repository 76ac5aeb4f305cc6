// Package search builds a TF-IDF similarity index over cleaned restaurant
// records and answers cuisine queries against it.
package search

import (
	"errors"
	"sort"
	"strings"

	"github.com/cuisine-engine/backend/internal/cleaning"
)

// ErrEmptyDataset is returned by Build when there is nothing to index.
var ErrEmptyDataset = errors.New("search: cleaned dataset has no rows")

// Recommendation is what callers get back for each ranked restaurant.
type Recommendation struct {
	DisplayName string  `json:"display_name"`
	Rating      float64 `json:"rating"`
}

// Hit holds a matching record and its similarity to the query
type Hit struct {
	Record     cleaning.CleanRecord
	Similarity float64
	row        int
}

// Index holds the fitted vectorizer and one vector per record. It is
// read-only after Build and safe for concurrent queries.
type Index struct {
	records    []cleaning.CleanRecord
	vectors    []SparseVector
	vectorizer *TFIDFVectorizer
}

type buildOptions struct {
	maxFeatures int
}

// Option tunes index construction.
type Option func(*buildOptions)

// WithMaxFeatures overrides the vocabulary cap.
func WithMaxFeatures(n int) Option {
	return func(o *buildOptions) {
		o.maxFeatures = n
	}
}

// Build fits the vectorizer on every record's cuisines and reviews and
// vectorizes each record. Rows keep the order of records.
func Build(records []cleaning.CleanRecord, opts ...Option) (*Index, error) {
	if len(records) == 0 {
		return nil, ErrEmptyDataset
	}

	o := buildOptions{maxFeatures: DefaultMaxFeatures}
	for _, opt := range opts {
		opt(&o)
	}

	// 1. Extract raw text for training
	docs := make([]string, len(records))
	for i, rec := range records {
		docs[i] = rec.CleanCuisines + " " + rec.CleanReviews
	}

	// 2. Fit the vectorizer
	vectorizer := NewTFIDFVectorizer(o.maxFeatures)
	vectorizer.Fit(docs)

	// 3. Vectorize all documents
	vectors := make([]SparseVector, len(docs))
	for i, doc := range docs {
		vectors[i] = vectorizer.Transform(doc)
	}

	return &Index{
		records:    append([]cleaning.CleanRecord(nil), records...),
		vectors:    vectors,
		vectorizer: vectorizer,
	}, nil
}

// Len is the number of indexed records.
func (idx *Index) Len() int {
	return len(idx.records)
}

// Records returns a copy of the indexed table.
func (idx *Index) Records() []cleaning.CleanRecord {
	return append([]cleaning.CleanRecord(nil), idx.records...)
}

// VocabularySize is the number of terms in the fitted vocabulary.
func (idx *Index) VocabularySize() int {
	return idx.vectorizer.VocabularySize()
}

// Search returns up to topN records whose cuisines contain the query as a
// substring, ranked by similarity to the query and then by rating.
//
// The filter is plain substring containment, so "pan" also matches
// "japanese".
func (idx *Index) Search(cuisine string, topN int) []Hit {
	query := strings.TrimSpace(strings.ToLower(cuisine))
	if query == "" || topN < 1 {
		return []Hit{}
	}

	hits := make([]Hit, 0)
	for i, rec := range idx.records {
		if strings.Contains(rec.CleanCuisines, query) {
			hits = append(hits, Hit{Record: rec, row: i})
		}
	}
	if len(hits) == 0 {
		return hits
	}

	queryVector := idx.vectorizer.Transform(query)
	for i := range hits {
		hits[i].Similarity = CosineSimilarity(queryVector, idx.vectors[hits[i].row])
	}

	SortHits(hits)

	if len(hits) > topN {
		return hits[:topN]
	}
	return hits
}

// Recommend is Search reduced to display names and ratings.
func (idx *Index) Recommend(cuisine string, topN int) []Recommendation {
	hits := idx.Search(cuisine, topN)
	out := make([]Recommendation, len(hits))
	for i, hit := range hits {
		out[i] = Recommendation{
			DisplayName: hit.Record.DisplayName,
			Rating:      hit.Record.Rating,
		}
	}
	return out
}

// SortHits orders hits by similarity, then rating, both descending. Equal
// hits keep their relative order.
func SortHits(hits []Hit) {
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		return hits[i].Record.Rating > hits[j].Record.Rating
	})
}
