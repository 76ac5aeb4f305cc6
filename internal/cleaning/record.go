// Package cleaning turns noisy restaurant rows into a canonical,
// de-duplicated table ready for indexing.
package cleaning

// RawRecord is one source row keyed by its column name. Values are
// whatever the loader produced: strings, numbers or nil.
type RawRecord map[string]any

// ColumnMap names the source columns that feed each cleaned field.
type ColumnMap struct {
	Name     string
	Cuisines string
	Reviews  string
	Rating   string
}

// DefaultColumns matches the Zomato restaurant dataset layout.
var DefaultColumns = ColumnMap{
	Name:     "name",
	Cuisines: "cuisines",
	Reviews:  "reviews_list",
	Rating:   "rate",
}

// CleanRecord is a single restaurant after cleaning. One exists per
// canonical name and it is never mutated after Preprocess returns.
type CleanRecord struct {
	CanonicalName string  `json:"canonical_name"`
	DisplayName   string  `json:"display_name"`
	CleanCuisines string  `json:"clean_cuisines"`
	CleanReviews  string  `json:"clean_reviews"`
	Rating        float64 `json:"rating"`
}

// Report counts what Preprocess did with its input.
type Report struct {
	Input        int
	MissingField int
	BadRating    int
	RejectedName int
	Duplicates   int
	Output       int
}

// Dropped is the number of input rows that did not survive.
func (r Report) Dropped() int {
	return r.Input - r.Output
}
