package postprocess

// CountAtLeast returns how many detections have a score of at least minScore.
//
// The whole set is scanned rather than stopping at the first score below the
// threshold, so the count stays correct when the ordering is only approximate.
func CountAtLeast(set DetectionSet, minScore float32) int {
	k := 0
	for _, d := range set {
		if d.Score >= minScore {
			k++
		}
	}
	return k
}

// Filter keeps the leading min(maxN, k) detections, where k is the number of
// detections scoring at least minScore.
//
// The set is expected to be sorted by descending score; Filter does not sort.
// Out-of-domain parameters degrade to an empty result instead of an error: a
// maxN of zero or less returns nothing, and a minScore above every score returns
// nothing. The input is never modified.
//
// Arguments:
//   - set: Detections sorted by descending score.
//   - maxN: The maximum number of detections to keep.
//   - minScore: The minimum score threshold.
//
// Returns:
//   - DetectionSet: A new, possibly empty, prefix of the input.
//
// Example:
//
// ```go
//
//	// scores [0.9, 0.5, 0.2, 0.1]
//	out := Filter(set, 5, 0.15)
//	// out scores [0.9, 0.5, 0.2]
//
// ```
func Filter(set DetectionSet, maxN int, minScore float32) DetectionSet {
	if maxN <= 0 {
		return DetectionSet{}
	}
	n := min(maxN, CountAtLeast(set, minScore))
	out := make(DetectionSet, n)
	copy(out, set[:n])
	return out
}

// NewFilter returns Filter as a Postprocessor.
func NewFilter(maxN int, minScore float32) Postprocessor {
	return func(set DetectionSet) DetectionSet {
		return Filter(set, maxN, minScore)
	}
}
