package timeline

// SequenceTime returns a Sequence's local time at global time globalMS
// (spec §4.8: sequence_time = global_time - offset).
func SequenceTime(t Timer, globalMS float64) float64 {
	return globalMS - t.OffsetMS
}

// TrimmedDuration returns how long t's trimmed content plays back for, in
// milliseconds (spec §4.8: trimmed_duration = duration * (originalDuration / rate)).
func TrimmedDuration(t Timer) float64 {
	if t.Rate == 0 {
		return 0
	}
	return t.Duration * (t.OriginalDuration / t.Rate)
}

// IsVisible reports whether t's sequence is on-screen at globalMS. The
// upper bound is closed (spec §8 Open Questions: "Visibility check uses a
// closed upper bound (<= trimmed_duration) which can render one frame past
// a theoretical end boundary when stepping exactly on the edge") — this is
// preserved as-is rather than changed to an open bound.
func IsVisible(t Timer, globalMS float64) bool {
	st := SequenceTime(t, globalMS)
	return st >= 0 && st <= TrimmedDuration(t)
}

// OriginalTime maps global time to a time within the sequence's original
// (untrimmed) source, for feeding a video decoder's frame_at (spec §4.8:
// original_time = clamp(sequence_time*rate + start*originalDuration,
// start*originalDuration, originalDuration)).
//
// The upper clamp bound is originalDuration, not
// start*originalDuration+trimmed_duration — this is preserved exactly per
// spec §9 Open Questions ("getOriginalTime clamps to originalDuration
// rather than to start*originalDuration + trimmed_duration; whether this
// is intended for time-stretched sources is unclear") rather than guessed
// at and "fixed".
func OriginalTime(t Timer, globalMS float64) float64 {
	st := SequenceTime(t, globalMS)
	raw := st*t.Rate + t.Start*t.OriginalDuration
	lower := t.Start * t.OriginalDuration
	upper := t.OriginalDuration
	if raw < lower {
		return lower
	}
	if raw > upper {
		return upper
	}
	return raw
}

// TransitionEnd is the global time at which the sequence with timer t
// ends (t.OffsetMS + TrimmedDuration(t)).
func TransitionEnd(t Timer) float64 {
	return t.OffsetMS + TrimmedDuration(t)
}

// TransitionTime returns the local clock (spec §4.8) for a transition of
// duration durationMS attached to sequence timer t, at global time
// globalMS: transition_time = global_time - (S.end - D/2).
func TransitionTime(t Timer, durationMS, globalMS float64) float64 {
	return globalMS - (TransitionEnd(t) - durationMS/2)
}

// TransitionActive reports whether a transition of duration durationMS is
// active at globalMS (0 <= transition_time < D).
func TransitionActive(t Timer, durationMS, globalMS float64) bool {
	tt := TransitionTime(t, durationMS, globalMS)
	return tt >= 0 && tt < durationMS
}

// TransitionParameter returns the transition's normalised progress in
// [0,1): transition_time / D. Callers must only invoke this when
// TransitionActive reports true.
func TransitionParameter(t Timer, durationMS, globalMS float64) float64 {
	if durationMS == 0 {
		return 0
	}
	return TransitionTime(t, durationMS, globalMS) / durationMS
}
