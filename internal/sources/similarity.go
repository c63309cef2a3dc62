package sources

import "strings"

// TitleSimilarityThreshold is the minimum similarity ratio between a guessed
// title and an index candidate for the candidate to count as a match.
const TitleSimilarityThreshold = 0.80

// TitleSimilarity returns the Ratcliff/Obershelp similarity of two titles
// in [0,1], case-insensitive and whitespace-normalized.
func TitleSimilarity(a, b string) float64 {
	return ratio(normalizeTitle(a), normalizeTitle(b))
}

func normalizeTitle(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// ratio is the Ratcliff/Obershelp measure: twice the number of matching
// characters over the combined length, where matches are counted by
// recursing around the longest common substring.
func ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 && len(rb) == 0 {
		return 1
	}
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	return 2 * float64(matchingChars(ra, rb)) / float64(len(ra)+len(rb))
}

func matchingChars(a, b []rune) int {
	ai, bi, size := longestCommonRun(a, b)
	if size == 0 {
		return 0
	}
	return size +
		matchingChars(a[:ai], b[:bi]) +
		matchingChars(a[ai+size:], b[bi+size:])
}

// longestCommonRun finds the longest common substring of a and b, preferring
// the earliest occurrence in a on ties.
func longestCommonRun(a, b []rune) (ai, bi, size int) {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] != b[j-1] {
				cur[j] = 0
				continue
			}
			cur[j] = prev[j-1] + 1
			if cur[j] > size {
				size = cur[j]
				ai = i - size
				bi = j - size
			}
		}
		prev, cur = cur, prev
		clear(cur)
	}
	return ai, bi, size
}
