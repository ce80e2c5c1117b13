package timeline

import "testing"

func TestIsVisibleScenarioA(t *testing.T) {
	timer := Timer{OffsetMS: 1000, Duration: 2000, OriginalDuration: 2000, Rate: 1, Start: 0}

	cases := []struct {
		global float64
		want   bool
	}{
		{999, false},
		{1000, true},
		{3000, true},
		{3001, false},
	}
	for _, c := range cases {
		got := IsVisible(timer, c.global)
		if got != c.want {
			t.Errorf("IsVisible(%v) = %v, want %v", c.global, got, c.want)
		}
	}
}

func TestOriginalTimeMonotonicAndClamped(t *testing.T) {
	timer := Timer{OffsetMS: 0, Duration: 1, OriginalDuration: 2000, Rate: 1, Start: 0}

	lower := timer.Start * timer.OriginalDuration
	upper := timer.OriginalDuration

	var prev float64 = -1
	for global := timer.OffsetMS; global <= timer.OffsetMS+TrimmedDuration(timer)+500; global += 50 {
		got := OriginalTime(timer, global)
		if got < lower || got > upper {
			t.Fatalf("OriginalTime(%v) = %v out of bounds [%v,%v]", global, got, lower, upper)
		}
		if got < prev {
			t.Fatalf("OriginalTime not monotonic: at global=%v got %v, previous %v", global, got, prev)
		}
		prev = got
	}
}

func TestTransitionActiveWindow(t *testing.T) {
	timer := Timer{OffsetMS: 0, Duration: 1, OriginalDuration: 1000, Rate: 1, Start: 0}
	duration := 200.0
	end := TransitionEnd(timer)

	if TransitionActive(timer, duration, end-duration/2-1) {
		t.Error("expected transition inactive just before window")
	}
	if !TransitionActive(timer, duration, end-duration/2) {
		t.Error("expected transition active at window start")
	}
	if !TransitionActive(timer, duration, end+duration/2-1) {
		t.Error("expected transition active just before window end")
	}
	if TransitionActive(timer, duration, end+duration/2) {
		t.Error("expected transition inactive at window end (half-open)")
	}
}
