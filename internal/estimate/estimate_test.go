package estimate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"img2pdf/internal/domain"
)

func TestSize_WorkedExamples(t *testing.T) {
	e := Size([]int64{1_000_000}, 90)
	assert.Equal(t, int64(1_040_000), e.Bytes)
	// 1,040,000 bytes is below one MiB, so it renders in KiB.
	assert.Equal(t, "1016KB", e.Formatted)

	e = Size([]int64{500_000, 500_000}, 60)
	assert.Equal(t, int64(390_000), e.Bytes)
	assert.Equal(t, "381KB", e.Formatted)
}

func TestSize_ClampsQualityBeforeLookup(t *testing.T) {
	sizes := []int64{123_456, 654_321, 42}

	assert.Equal(t, Size(sizes, 10), Size(sizes, 5))
	assert.Equal(t, Size(sizes, 10), Size(sizes, -40))
	assert.Equal(t, Size(sizes, 100), Size(sizes, 150))
}

func TestRatio_BoundariesAreClosedBelow(t *testing.T) {
	tests := []struct {
		q    domain.Quality
		want float64
	}{
		{100, 0.8},
		{90, 0.8},
		{89, 0.5},
		{75, 0.5},
		{74, 0.3},
		{50, 0.3},
		{49, 0.15},
		{10, 0.15},
		{150, 0.8},
		{0, 0.15},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, Ratio(tc.q), "quality %d", tc.q)
	}
}

func TestSize_PerBandBytes(t *testing.T) {
	tests := []struct {
		q    domain.Quality
		want int64
	}{
		{90, 1040},
		{89, 650},
		{75, 650},
		{74, 390},
		{50, 390},
		{49, 195},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, Size([]int64{1000}, tc.q).Bytes, "quality %d", tc.q)
	}
}

func TestSize_EmptyInput(t *testing.T) {
	e := Size(nil, 75)
	assert.Equal(t, int64(0), e.Bytes)
	assert.Equal(t, "0KB", e.Formatted)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "1024KB", Format(1024*1024))
	assert.Equal(t, "1.0MB", Format(1024*1024+1))
	assert.Equal(t, "2.5MB", Format(2.5*1024*1024))
	assert.Equal(t, "1KB", Format(1000))
}

func TestSize_Deterministic(t *testing.T) {
	sizes := []int64{10, 20, 30_000_000}
	assert.Equal(t, Size(sizes, 77), Size(sizes, 77))
}
