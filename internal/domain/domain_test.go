package domain

import "testing"

func TestClampQuality(t *testing.T) {
	tests := []struct {
		in   int
		want Quality
	}{
		{-5, 10},
		{5, 10},
		{10, 10},
		{55, 55},
		{100, 100},
		{150, 100},
	}
	for _, tc := range tests {
		if got := ClampQuality(tc.in); got != tc.want {
			t.Errorf("ClampQuality(%d) = %d, want %d", tc.in, got, tc.want)
		}
		if got := Quality(tc.in).Clamped(); got != tc.want {
			t.Errorf("Quality(%d).Clamped() = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestExceedsPixels(t *testing.T) {
	tests := []struct {
		w, h  int
		limit int64
		want  bool
	}{
		{100, 100, 10000, false},
		{100, 101, 10000, true},
		{200000, 200000, DefaultMaxImagePixels, true},
		{8000, 8000, DefaultMaxImagePixels, false},
		{200000, 200000, 0, false},
	}
	for _, tc := range tests {
		if got := ExceedsPixels(tc.w, tc.h, tc.limit); got != tc.want {
			t.Errorf("ExceedsPixels(%d, %d, %d) = %v, want %v", tc.w, tc.h, tc.limit, got, tc.want)
		}
	}
}
