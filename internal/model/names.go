package model

// NameDistance is the Levenshtein distance between two names divided by the
// length of the longer one. Identical names have distance 0.
func NameDistance(a, b string) float64 {
	if a == b {
		return 0
	}

	longest := max(len([]rune(a)), len([]rune(b)))
	if longest == 0 {
		return 0
	}

	return float64(levenshtein(a, b)) / float64(longest)
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}

	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)

	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i

		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}

			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}

		prev, curr = curr, prev
	}

	return prev[len(rb)]
}
