package gamification

import (
	"errors"
	"testing"
)

func TestLevelFor(t *testing.T) {
	tests := []struct {
		xp   int
		want int
	}{
		{-50, 1},
		{0, 1},
		{99, 1},
		{100, 2},
		{399, 2},
		{400, 3},
		{899, 3},
		{900, 4},
		{10_000, 11},
	}
	for _, tt := range tests {
		if got := LevelFor(tt.xp); got != tt.want {
			t.Errorf("LevelFor(%d) = %d, want %d", tt.xp, got, tt.want)
		}
	}
}

func TestThresholdRoundTrip(t *testing.T) {
	for level := 1; level <= 200; level++ {
		th := ThresholdFor(level)
		if got := LevelFor(th); got != level {
			t.Fatalf("LevelFor(ThresholdFor(%d)=%d) = %d", level, th, got)
		}
		if level > 1 {
			if got := LevelFor(th - 1); got != level-1 {
				t.Fatalf("LevelFor(%d) = %d, want %d", th-1, got, level-1)
			}
		}
	}
}

func TestNewBalance(t *testing.T) {
	b := NewBalance(250)
	if b.Level != 2 || b.LevelFloor != 100 || b.NextLevelAt != 400 {
		t.Fatalf("NewBalance(250) = %+v", b)
	}
	if b.Progress != 0.5 {
		t.Errorf("progress: got %v, want 0.5", b.Progress)
	}

	neg := NewBalance(-10)
	if neg.XP != 0 || neg.Level != 1 || neg.Progress != 0 {
		t.Errorf("NewBalance(-10) = %+v", neg)
	}
}

func TestValidateAward(t *testing.T) {
	tests := []struct {
		name    string
		amount  int
		reason  string
		wantErr error
	}{
		{"valid", 50, "read article", nil},
		{"negative correction", -20, "duplicate", nil},
		{"zero", 0, "nothing", ErrZeroAward},
		{"too large", MaxAward + 1, "bulk", ErrAwardTooLarge},
		{"too small", -MaxAward - 1, "bulk", ErrAwardTooLarge},
		{"blank reason", 10, "   ", ErrNoReason},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAward(tt.amount, tt.reason)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateAward(%d, %q) = %v, want %v", tt.amount, tt.reason, err, tt.wantErr)
			}
		})
	}
}
