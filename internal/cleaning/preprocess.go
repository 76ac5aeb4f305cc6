package cleaning

import (
	"sort"
	"strings"
)

// Preprocess cleans raw rows into a table with one record per canonical
// name. Rows with a missing column, an unparseable rating or a rejected
// name are dropped silently; the returned Report says how many.
//
// When several rows share a canonical name the highest rating wins. On an
// exact rating tie the row seen first in the input wins. The result is
// ordered by canonical name.
func Preprocess(rows []RawRecord, columns ColumnMap) ([]CleanRecord, Report) {
	report := Report{Input: len(rows)}

	best := make(map[string]int)
	var kept []CleanRecord

	for _, row := range rows {
		name, okName := field(row, columns.Name)
		cuisines, okCuisines := field(row, columns.Cuisines)
		reviews, okReviews := field(row, columns.Reviews)
		rawRating, okRating := field(row, columns.Rating)
		if !okName || !okCuisines || !okReviews || !okRating {
			report.MissingField++
			continue
		}

		rating, ok := ParseRating(rawRating)
		if !ok {
			report.BadRating++
			continue
		}

		canonical := CleanName(toText(name))
		if canonical == "" {
			report.RejectedName++
			continue
		}

		rec := CleanRecord{
			CanonicalName: canonical,
			CleanCuisines: CleanCuisines(toText(cuisines)),
			CleanReviews:  CleanReviewFast(reviews),
			Rating:        rating,
		}

		if i, seen := best[canonical]; seen {
			report.Duplicates++
			if rec.Rating > kept[i].Rating {
				kept[i] = rec
			}
			continue
		}
		best[canonical] = len(kept)
		kept = append(kept, rec)
	}

	sort.Slice(kept, func(i, j int) bool {
		return kept[i].CanonicalName < kept[j].CanonicalName
	})
	for i := range kept {
		kept[i].DisplayName = DisplayName(kept[i].CanonicalName)
	}

	report.Output = len(kept)
	return kept, report
}

// Cuisines lists the distinct cuisine words longer than three letters
// found across records, sorted.
func Cuisines(records []CleanRecord) []string {
	seen := make(map[string]struct{})
	for _, rec := range records {
		for _, tag := range strings.Fields(rec.CleanCuisines) {
			if len(tag) > 3 {
				seen[tag] = struct{}{}
			}
		}
	}

	out := make([]string, 0, len(seen))
	for tag := range seen {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

func field(row RawRecord, column string) (any, bool) {
	v, ok := row[column]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}
