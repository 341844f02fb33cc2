package segment

import "sort"

// Summary is the five-number summary of a sample.
type Summary struct {
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
}

// IQR returns the inter-quartile range Q3-Q1.
func (s Summary) IQR() float64 {
	return s.Q3 - s.Q1
}

// FiveNumberSummary summarizes values. The input is not modified.
func FiveNumberSummary(values []float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}
	sorted := sortedCopy(values)
	return Summary{
		Min:    sorted[0],
		Q1:     percentile(sorted, 25),
		Median: percentile(sorted, 50),
		Q3:     percentile(sorted, 75),
		Max:    sorted[len(sorted)-1],
	}
}

// Median returns the middle value of values, averaging the two middle values
// for an even count. Returns 0 for an empty sample.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return percentile(sortedCopy(values), 50)
}

// percentile interpolates linearly between the closest ranks of an already
// sorted sample.
func percentile(sorted []float64, p float64) float64 {
	pos := p / 100 * float64(len(sorted)-1)
	lo := int(pos)
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

func sortedCopy(values []float64) []float64 {
	out := make([]float64, len(values))
	copy(out, values)
	sort.Float64s(out)
	return out
}
