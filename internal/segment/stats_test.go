package segment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFiveNumberSummary(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   Summary
	}{
		{"single", []float64{7}, Summary{7, 7, 7, 7, 7}},
		{"four values", []float64{4, 1, 3, 2}, Summary{1, 1.75, 2.5, 3.25, 4}},
		{"five values", []float64{10, 20, 30, 40, 50}, Summary{10, 20, 30, 40, 50}},
		{"empty", nil, Summary{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FiveNumberSummary(tt.values)
			assert.InDelta(t, tt.want.Min, got.Min, 1e-9)
			assert.InDelta(t, tt.want.Q1, got.Q1, 1e-9)
			assert.InDelta(t, tt.want.Median, got.Median, 1e-9)
			assert.InDelta(t, tt.want.Q3, got.Q3, 1e-9)
			assert.InDelta(t, tt.want.Max, got.Max, 1e-9)
		})
	}
}

func TestFiveNumberSummary_DoesNotModifyInput(t *testing.T) {
	values := []float64{3, 1, 2}
	FiveNumberSummary(values)
	assert.Equal(t, []float64{3, 1, 2}, values)
}

func TestSummary_IQR(t *testing.T) {
	s := FiveNumberSummary([]float64{10, 20, 30, 100})
	assert.InDelta(t, 30.0, s.IQR(), 1e-9)
}

func TestMedian(t *testing.T) {
	assert.Equal(t, 0.0, Median(nil))
	assert.Equal(t, 2.0, Median([]float64{3, 1, 2}))
	assert.Equal(t, 87.5, Median([]float64{20, 20, 50, 50, 80, 80, 95, 110, 110, 140}))
}
