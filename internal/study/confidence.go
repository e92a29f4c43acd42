package study

// CardHistory is one card's answer record within a session. A miss resets
// the streak, so confidence reflects the current run of correct answers,
// not the lifetime average.
type CardHistory struct {
	Attempts int
	Correct  int
	Streak   int
}

// Record returns the history updated with one more answer.
func (h CardHistory) Record(correct bool) CardHistory {
	h.Attempts++
	if correct {
		h.Correct++
		h.Streak++
	} else {
		h.Streak = 0
	}
	return h
}

// Confidence levels reported in learn-mode progress ticks.
const (
	ConfidenceNone = 0
	ConfidenceMax  = 5
)

// Confidence maps a card history to a 0..5 level. Unseen and just-missed
// cards sit at 0; each correct answer in the current streak raises the
// level by one up to the cap.
func Confidence(h CardHistory) int {
	if h.Attempts == 0 || h.Streak == 0 {
		return ConfidenceNone
	}
	if h.Streak > ConfidenceMax {
		return ConfidenceMax
	}
	return h.Streak
}
