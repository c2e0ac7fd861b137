package matching

import "strings"

// Similarity returns the Sorensen-Dice coefficient over character bigrams
// of the case-folded inputs. An empty input scores 0 even against another
// empty input; absence earns no credit. The measure is symmetric and
// reflexive, and grows with the number of shared bigrams.
func Similarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}

	ra := []rune(a)
	rb := []rune(b)
	// Single-rune inputs carry no bigrams; unequal ones share nothing.
	if len(ra) < 2 || len(rb) < 2 {
		return 0
	}

	counts := make(map[string]int, len(ra)-1)
	for i := 0; i < len(ra)-1; i++ {
		counts[string(ra[i:i+2])]++
	}

	shared := 0
	for i := 0; i < len(rb)-1; i++ {
		bigram := string(rb[i : i+2])
		if counts[bigram] > 0 {
			counts[bigram]--
			shared++
		}
	}

	return float64(2*shared) / float64((len(ra)-1)+(len(rb)-1))
}
