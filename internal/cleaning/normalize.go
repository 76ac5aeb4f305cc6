package cleaning

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MaxReviewChars bounds how much of a raw review is ever looked at.
const MaxReviewChars = 250

var parenthesized = regexp.MustCompile(`\(.*?\)`)

var rejectedNames = map[string]struct{}{
	"rated": {},
	"new":   {},
	"na":    {},
	"null":  {},
	"none":  {},
	"-":     {},
	"":      {},
}

// NormalizeText lowercases text, drops parenthesized annotations, turns
// everything that is not an ASCII letter or whitespace into a space and
// collapses the result to single-spaced words.
func NormalizeText(text string) string {
	text = strings.ToLower(text)
	text = parenthesized.ReplaceAllString(text, "")
	return lettersOnly(text)
}

// lettersOnly keeps ASCII letters, replaces anything else with a space
// and collapses whitespace.
func lettersOnly(text string) string {
	mapped := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return r
		}
		return ' '
	}, text)
	return strings.Join(strings.Fields(mapped), " ")
}

// CleanName returns the canonical form of a restaurant name, or "" when
// the name is a placeholder or too short to identify anything.
func CleanName(name string) string {
	name = NormalizeText(name)
	if _, rejected := rejectedNames[name]; rejected || len(name) < 3 {
		return ""
	}
	return name
}

// CleanReviewFast converts v to text, keeps at most MaxReviewChars
// characters and normalizes only that prefix.
func CleanReviewFast(v any) string {
	return NormalizeText(truncate(toText(v), MaxReviewChars))
}

// truncate keeps the first max characters of s.
func truncate(s string, max int) string {
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}

// CleanCuisines normalizes the cuisine list. Unlike NormalizeText it
// keeps parenthesized content.
func CleanCuisines(cuisines string) string {
	return lettersOnly(strings.ToLower(cuisines))
}

// ParseRating extracts a numeric rating from values such as "4.1/5",
// " 3.9 /5" or 4.5. ok is false for anything that is not a finite number.
func ParseRating(v any) (rating float64, ok bool) {
	switch val := v.(type) {
	case nil:
		return 0, false
	case float64:
		rating = val
	case float32:
		rating = float64(val)
	case int:
		rating = float64(val)
	case int64:
		rating = float64(val)
	default:
		text := strings.TrimSpace(strings.ReplaceAll(toText(val), "/5", ""))
		parsed, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return 0, false
		}
		rating = parsed
	}
	if math.IsNaN(rating) || math.IsInf(rating, 0) {
		return 0, false
	}
	return rating, true
}

// DisplayName title-cases a canonical name for presentation.
func DisplayName(canonical string) string {
	return cases.Title(language.Und).String(canonical)
}

func toText(v any) string {
	switch val := v.(type) {
	case nil:
		return "None"
	case string:
		return val
	case []byte:
		return string(val)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
