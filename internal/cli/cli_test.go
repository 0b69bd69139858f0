package cli

import (
	"testing"
	"time"
)

func TestTargetMonth(t *testing.T) {
	year, month, err := targetMonth("2024-04")
	if err != nil {
		t.Fatalf("targetMonth: %v", err)
	}
	if year != 2024 || month != 4 {
		t.Errorf("got %d-%d", year, month)
	}

	if _, _, err := targetMonth("April 2024"); err == nil {
		t.Error("expected an error for a non YYYY-MM value")
	}

	year, month, err = targetMonth("")
	if err != nil {
		t.Fatalf("targetMonth(\"\"): %v", err)
	}
	now := time.Now()
	if year != now.Year() || month != int(now.Month()) {
		t.Errorf("empty flag must default to the current month, got %d-%d", year, month)
	}
}
