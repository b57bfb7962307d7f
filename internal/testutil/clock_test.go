package testutil

import (
	"testing"
	"time"
)

func TestClock_Frozen(t *testing.T) {
	start := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	clk := NewClock(start)

	if !clk.Now().Equal(start) {
		t.Errorf("Now() = %v, want %v", clk.Now(), start)
	}
	if !clk.Now().Equal(clk.Now()) {
		t.Error("frozen clock moved between calls")
	}
}

func TestClock_Advance(t *testing.T) {
	start := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	clk := NewClock(start)

	clk.Advance(90 * time.Second)
	want := start.Add(90 * time.Second)
	if !clk.Now().Equal(want) {
		t.Errorf("Now() after Advance = %v, want %v", clk.Now(), want)
	}
}

func TestClock_Set(t *testing.T) {
	clk := NewClock(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))

	target := time.Date(2026, 9, 15, 8, 30, 0, 0, time.UTC)
	clk.Set(target)
	if !clk.Now().Equal(target) {
		t.Errorf("Now() after Set = %v, want %v", clk.Now(), target)
	}
}
