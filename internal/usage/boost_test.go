package usage

import (
	"math"
	"testing"
	"time"
)

func TestRecency(t *testing.T) {
	tests := []struct {
		name string
		age  uint64
		want float64
	}{
		{"just now", 0, 1.0},
		{"under an hour", 3599, 1.0},
		{"half a day", 43200, 0.9},
		{"month or older", 2592000, 0.1},
		{"a year", 31536000, 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Recency(tt.age)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Recency(%d) = %v, want %v", tt.age, got, tt.want)
			}
		})
	}
}

func TestRecency_NonIncreasing(t *testing.T) {
	prev := Recency(0)
	for age := uint64(0); age <= 3*2592000; age += 900 {
		got := Recency(age)
		if got > prev+1e-12 {
			t.Fatalf("Recency(%d) = %v > previous %v", age, got, prev)
		}
		if got < 0.1 || got > 1.0 {
			t.Fatalf("Recency(%d) = %v outside [0.1, 1]", age, got)
		}
		prev = got
	}
}

func TestFrequency(t *testing.T) {
	tests := []struct {
		count uint32
		want  float64
	}{
		{0, 0},
		{1, 0},
		{2, math.Log(2) / 10},
		{100, math.Log(100) / 10},
		{1 << 30, 1.0},
	}

	for _, tt := range tests {
		got := Frequency(tt.count)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Frequency(%d) = %v, want %v", tt.count, got, tt.want)
		}
	}
}

func TestBoost_Monotonic(t *testing.T) {
	now := time.Unix(1700000000, 0)
	ages := []uint64{0, 60, 3599, 3600, 7200, 86399, 86400, 200000, 604799, 604800, 1000000, 2591999, 2592000, 9999999}
	counts := []uint32{1, 2, 3, 10, 100, 1000, 22027, 1 << 20, ^uint32(0)}

	for _, count := range counts {
		prev := math.Inf(1)
		for _, age := range ages {
			b := Boost(Stats{LastUsed: uint64(now.Unix()) - age, UseCount: count}, now)
			if b < 0 || b > 1 {
				t.Errorf("Boost(age=%d, count=%d) = %v outside [0, 1]", age, count, b)
			}
			if b > prev+1e-12 {
				t.Errorf("Boost increased with age at age=%d count=%d: %v > %v", age, count, b, prev)
			}
			prev = b
		}
	}

	for _, age := range ages {
		prev := math.Inf(-1)
		for _, count := range counts {
			b := Boost(Stats{LastUsed: uint64(now.Unix()) - age, UseCount: count}, now)
			if b < prev-1e-12 {
				t.Errorf("Boost decreased with count at age=%d count=%d: %v < %v", age, count, b, prev)
			}
			prev = b
		}
	}
}

func TestStatsAge_FutureIsZero(t *testing.T) {
	now := time.Unix(1000, 0)
	s := Stats{LastUsed: 5000, UseCount: 1}
	if got := s.Age(now); got != 0 {
		t.Errorf("Age() = %d, want 0", got)
	}
	if got := Boost(s, now); math.Abs(got-0.7) > 1e-9 {
		t.Errorf("Boost() = %v, want 0.7", got)
	}
}

func TestClassify(t *testing.T) {
	now := time.Unix(1700000000, 0)
	at := func(daysAgo int) uint64 {
		return uint64(now.Add(-time.Duration(daysAgo) * 24 * time.Hour).Unix())
	}

	tests := []struct {
		name  string
		stats Stats
		want  string
	}{
		{"never", Stats{}, "never"},
		{"daily", Stats{LastUsed: at(0), UseCount: 12}, "daily"},
		{"recent but rare", Stats{LastUsed: at(0), UseCount: 1}, "weekly"},
		{"weekly", Stats{LastUsed: at(5), UseCount: 3}, "weekly"},
		{"monthly", Stats{LastUsed: at(20), UseCount: 3}, "monthly"},
		{"rarely", Stats{LastUsed: at(90), UseCount: 50}, "rarely"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.stats, now); got != tt.want {
				t.Errorf("Classify() = %q, want %q", got, tt.want)
			}
		})
	}
}
