package daily

import (
	"testing"
	"time"
)

func TestDateKey(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*3600)
	got := DateKey(time.Date(2025, 3, 2, 5, 0, 0, 0, loc))
	if got != "2025-03-01" {
		t.Errorf("DateKey = %s, want 2025-03-01 (UTC)", got)
	}
}

func TestSeed(t *testing.T) {
	morning := time.Date(2025, 3, 1, 1, 0, 0, 0, time.UTC)
	evening := time.Date(2025, 3, 1, 23, 0, 0, 0, time.UTC)
	nextDay := time.Date(2025, 3, 2, 1, 0, 0, 0, time.UTC)

	if Seed(morning, "salt") != Seed(evening, "salt") {
		t.Error("seed changed within a day")
	}
	if Seed(morning, "salt") == Seed(nextDay, "salt") {
		t.Error("seed repeated across days")
	}
	if Seed(morning, "salt") == Seed(morning, "pepper") {
		t.Error("salt did not affect seed")
	}
	for _, d := range []time.Time{morning, nextDay} {
		if Seed(d, "salt") < 0 {
			t.Error("seed must be non-negative")
		}
	}
}
