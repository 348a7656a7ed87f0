// Package relevance converts metric-native distances into the store's
// higher-is-better relevance scale and back into the normalized distance
// exposed in result metadata.
package relevance

import "github.com/arvencloud/vectorstore/backend"

// Score converts a native distance into a relevance value, higher = more
// similar. Inner product already grows with similarity and passes through
// unchanged; for distance metrics (smaller = more similar) the score is
// 1 - distance. This is a fixed sign convention, not a normalization to
// [0,1]: threshold values are on this convention's scale.
func Score(nativeDistance float64, metric backend.Metric) float64 {
	if metric == backend.MetricIP {
		return nativeDistance
	}
	return 1 - nativeDistance
}

// StoredDistance derives the metadata distance from a relevance value:
// 0 = identical, growing with dissimilarity, regardless of which metric
// produced the relevance.
func StoredDistance(relevance float64) float64 {
	return 1 - relevance
}
